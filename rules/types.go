/*
Package rules defines the versioned work-hour rule sets that the
compliance engine evaluates against.

PURPOSE:
  A RuleSet is the complete contract for one worker category: hour caps,
  break mandates, scheduling restrictions, and pay-rate multipliers. Rule
  sets are IMMUTABLE, date-ranged versions. A rule change never mutates an
  existing version; it creates a new one with a later EffectiveFrom. Settled
  payroll therefore stays stable under later rule changes.

KEY CONCEPTS IN THIS FILE (types.go):
  - RuleSet: one immutable version of a category's rules
  - HourRules / BreakRules / SchedulingRules / RateTable: the rule groups
  - TimeOfDay: minute-of-day for scheduling windows
  - Status: draft -> effective -> expired

DESIGN PRINCIPLES:
  1. Immutability: versions are append-only; corrections are new versions
  2. Precision: decimal.Decimal for every hour and multiplier
  3. Validation at construction: New() rejects malformed rule sets so the
     validators downstream never see one (see validate.go)

SEE ALSO:
  - validate.go: construction-time invariant checks
  - resolve.go: effective-version resolution for a date
  - engine: the validators and classifier that consume rule sets
*/
package rules

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RuleSetID string

// Category identifies a worker category (e.g. "standard", "healthcare").
// Each category has its own versioned rule set history.
type Category string

// =============================================================================
// STATUS - Rule set lifecycle
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"
	StatusEffective Status = "effective"
	StatusExpired   Status = "expired"
)

// CanTransition reports whether a status change is legal.
// Lifecycle: draft -> effective -> expired. No way back.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusEffective
	case StatusEffective:
		return to == StatusExpired
	default:
		return false
	}
}

// =============================================================================
// TIME OF DAY - Scheduling window boundaries
// =============================================================================

// TimeOfDay is a minute offset from midnight (0..1439).
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// OfClock extracts the time-of-day from a timestamp.
func OfClock(ts time.Time) TimeOfDay {
	return NewTimeOfDay(ts.Hour(), ts.Minute())
}

// =============================================================================
// RULE GROUPS
// =============================================================================

// HourRules caps how much a worker may work per day and per week, and
// defines where overtime begins.
type HourRules struct {
	StandardPerDay  decimal.Decimal  `json:"standard_per_day"`
	MaxPerDay       decimal.Decimal  `json:"max_per_day"`
	StandardPerWeek decimal.Decimal  `json:"standard_per_week"`
	MaxPerWeek      decimal.Decimal  `json:"max_per_week"`
	MinPerWeek      *decimal.Decimal `json:"min_per_week,omitempty"`

	// Overtime thresholds. Hours beyond the daily threshold in one interval,
	// or beyond the weekly threshold across a week, classify as overtime.
	DailyOvertimeThreshold  decimal.Decimal `json:"daily_overtime_threshold"`
	WeeklyOvertimeThreshold decimal.Decimal `json:"weekly_overtime_threshold"`
}

// BreakRules mandates rest within and between shifts.
type BreakRules struct {
	MinBreakMinutes int `json:"min_break_minutes"`

	// MaxWorkWithoutBreak is the shift length (hours) beyond which the
	// minimum break becomes mandatory.
	MaxWorkWithoutBreak decimal.Decimal `json:"max_work_without_break"`

	LunchRequired bool `json:"lunch_required"`
	LunchMinutes  int  `json:"lunch_minutes"`

	// RestBetweenShifts is the minimum gap (hours) between one shift's
	// clock-out and the next shift's clock-in.
	RestBetweenShifts decimal.Decimal `json:"rest_between_shifts"`
}

// SchedulingRules restrict when shifts may be proposed.
type SchedulingRules struct {
	MaxConsecutiveDays int `json:"max_consecutive_days"`
	MinRestDaysPerWeek int `json:"min_rest_days_per_week"`
	AdvanceNoticeHours int `json:"advance_notice_hours"`

	// Optional time-of-day window. Nil means unrestricted.
	EarliestStart *TimeOfDay `json:"earliest_start,omitempty"`
	LatestEnd     *TimeOfDay `json:"latest_end,omitempty"`

	WeekendAllowed    bool `json:"weekend_allowed"`
	HolidayAllowed    bool `json:"holiday_allowed"`
	NightShiftAllowed bool `json:"night_shift_allowed"`

	// ConsecutiveLookbackDays bounds the backward walk when counting
	// consecutive working days. Zero means DefaultConsecutiveLookback.
	ConsecutiveLookbackDays int `json:"consecutive_lookback_days,omitempty"`
}

// DefaultConsecutiveLookback bounds the consecutive-day walk when a rule
// set does not set its own lookback.
const DefaultConsecutiveLookback = 14

// Lookback returns the effective lookback window in days.
func (s SchedulingRules) Lookback() int {
	if s.ConsecutiveLookbackDays > 0 {
		return s.ConsecutiveLookbackDays
	}
	return DefaultConsecutiveLookback
}

// RateTable holds pay multipliers per classification bucket. Regular hours
// always pay 1.0x. Nil pointers mean the bucket is not configured: the
// classifier then never routes hours into it.
type RateTable struct {
	Overtime        decimal.Decimal  `json:"overtime"`
	PremiumOvertime *decimal.Decimal `json:"premium_overtime,omitempty"`
	Weekend         *decimal.Decimal `json:"weekend,omitempty"`
	Holiday         *decimal.Decimal `json:"holiday,omitempty"`
}

// =============================================================================
// RULE SET - One immutable version
// =============================================================================

type RuleSet struct {
	ID       RuleSetID `json:"id"`
	Category Category  `json:"category"`
	Name     string    `json:"name"`
	Version  int       `json:"version"`

	// Default marks the version pre-selected for new workers in the
	// category. At most one version per category may be default; the store
	// boundary owns that invariant (SetDefault is atomic).
	Default bool   `json:"default"`
	Status  Status `json:"status"`

	EffectiveFrom time.Time  `json:"effective_from"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`

	Hours      HourRules       `json:"hours"`
	Breaks     BreakRules      `json:"breaks"`
	Scheduling SchedulingRules `json:"scheduling"`
	Rates      RateTable       `json:"rates"`
}

// ActiveAt reports whether this version governs the given instant:
// effective status, effective-from reached, not yet expired.
func (rs *RuleSet) ActiveAt(at time.Time) bool {
	if rs.Status != StatusEffective {
		return false
	}
	if at.Before(rs.EffectiveFrom) {
		return false
	}
	if rs.ExpiresAt != nil && !at.Before(*rs.ExpiresAt) {
		return false
	}
	return true
}
