/*
Package engine is the work-hour regulation and payroll compliance core.

PURPOSE:
  Decides whether worked or proposed time intervals comply with a worker
  category's rule set, splits worked time into pay-rate buckets, and
  aggregates those buckets into period payroll totals.

KEY CONCEPTS IN THIS FILE (types.go):
  - WorkedInterval: one completed clock-in/clock-out pair (the atomic unit)
  - ProposedShift: a candidate future interval, never persisted here
  - IntervalStatus: active -> completed -> {approved|rejected} -> paid
  - HourBreakdown: classified hours per pay-rate bucket
  - WorkerProfile: category + hourly rate, supplied by the directory

DESIGN PRINCIPLES:
  1. Every engine operation is a synchronous, stateless computation over
     data read from the injected stores. The engine never writes.
  2. Calls for different workers are independent; calls for the SAME worker
     must be serialized by the caller (check-then-act).
  3. decimal.Decimal everywhere hours or money flow; the classified bucket
     hours sum to the input duration exactly.

SEE ALSO:
  - classifier.go: pay-rate bucket classification
  - validator.go:  completed-interval compliance checks
  - scheduler.go:  proposed-shift pre-commit checks
  - payroll.go:    period aggregation
*/
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string
type IntervalID string

// NewIntervalID mints a fresh interval identifier.
func NewIntervalID() IntervalID {
	return IntervalID(uuid.NewString())
}

// =============================================================================
// INTERVAL STATUS - Lifecycle of a worked interval
// =============================================================================

type IntervalStatus string

const (
	IntervalActive    IntervalStatus = "active"    // clocked in, not yet out
	IntervalCompleted IntervalStatus = "completed" // clocked out, awaiting review
	IntervalApproved  IntervalStatus = "approved"  // cleared for payroll, now immutable
	IntervalRejected  IntervalStatus = "rejected"
	IntervalPaid      IntervalStatus = "paid"
)

// CanTransition reports whether a status change is legal.
func (s IntervalStatus) CanTransition(to IntervalStatus) bool {
	switch s {
	case IntervalActive:
		return to == IntervalCompleted
	case IntervalCompleted:
		return to == IntervalApproved || to == IntervalRejected
	case IntervalApproved:
		return to == IntervalPaid
	default:
		return false
	}
}

// Payable reports whether the interval counts toward payroll.
func (s IntervalStatus) Payable() bool {
	return s == IntervalApproved || s == IntervalPaid
}

// =============================================================================
// WORKED INTERVAL
// =============================================================================

// WorkedInterval is one completed clock-in/clock-out pair with an optional
// unpaid break, pinned to the rule set version in effect at validation time.
// Once approved for payroll it is immutable.
type WorkedInterval struct {
	ID           IntervalID
	WorkerID     WorkerID
	ClockIn      time.Time
	ClockOut     time.Time
	BreakMinutes int
	RuleSetID    rules.RuleSetID
	Status       IntervalStatus
}

// GrossHours is clock-out minus clock-in, break included.
func (wi WorkedInterval) GrossHours() decimal.Decimal {
	return durationHours(wi.ClockOut.Sub(wi.ClockIn))
}

// NetHours is the worked time with the break deducted. Clamped at zero so a
// recorded break longer than the interval cannot go negative.
func (wi WorkedInterval) NetHours() decimal.Decimal {
	net := wi.GrossHours().Sub(minutesToHours(wi.BreakMinutes))
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// =============================================================================
// PROPOSED SHIFT
// =============================================================================

// ProposedShift is a candidate future interval. It exists only transiently
// during scheduling validation; the engine never reserves or persists it.
type ProposedShift struct {
	WorkerID WorkerID
	Start    time.Time
	End      time.Time
}

func (ps ProposedShift) Hours() decimal.Decimal {
	return durationHours(ps.End.Sub(ps.Start))
}

// =============================================================================
// WORKER PROFILE
// =============================================================================

// WorkerProfile carries what the engine needs to know about a worker:
// which category's rules apply and what an hour of regular work pays.
type WorkerProfile struct {
	ID         WorkerID
	Name       string
	Category   rules.Category
	HourlyRate decimal.Decimal
}

// =============================================================================
// HOUR BREAKDOWN - Classified hours per pay-rate bucket
// =============================================================================

// HourBreakdown splits an interval's (or period's) hours into pay-rate
// buckets. Invariant: the buckets always sum to the classified input hours.
type HourBreakdown struct {
	Regular         decimal.Decimal `json:"regular"`
	Overtime        decimal.Decimal `json:"overtime"`
	PremiumOvertime decimal.Decimal `json:"premium_overtime"`
	Weekend         decimal.Decimal `json:"weekend"`
	Holiday         decimal.Decimal `json:"holiday"`
}

// Total sums all buckets.
func (hb HourBreakdown) Total() decimal.Decimal {
	return hb.Regular.
		Add(hb.Overtime).
		Add(hb.PremiumOvertime).
		Add(hb.Weekend).
		Add(hb.Holiday)
}

// Add returns the bucket-wise sum of two breakdowns.
func (hb HourBreakdown) Add(other HourBreakdown) HourBreakdown {
	return HourBreakdown{
		Regular:         hb.Regular.Add(other.Regular),
		Overtime:        hb.Overtime.Add(other.Overtime),
		PremiumOvertime: hb.PremiumOvertime.Add(other.PremiumOvertime),
		Weekend:         hb.Weekend.Add(other.Weekend),
		Holiday:         hb.Holiday.Add(other.Holiday),
	}
}
