/*
validate.go - Construction-time rule set validation

PURPOSE:
  A malformed rule set (maxPerWeek < standardPerWeek, daily overtime
  threshold above the daily cap, ...) must be rejected when the rule set is
  AUTHORED, never when a worked interval is validated against it. New() is
  the only sanctioned way to build a RuleSet; everything downstream may
  assume the invariants hold.

ERROR CONTRACT:
  Violated invariants come back as *InvariantError wrapping ErrInvariant,
  naming the offending field. Callers match with errors.Is(err, ErrInvariant).

SEE ALSO:
  - types.go: the invariant list in context
  - factory: JSON configs run struct-tag validation before landing here
*/
package rules

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvariant is the sentinel for malformed rule set definitions.
var ErrInvariant = errors.New("rule set invariant violated")

// InvariantError names the field that breaks a rule set invariant.
type InvariantError struct {
	Field   string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("rule set invariant violated: %s: %s", e.Field, e.Message)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

func invariant(field, message string) error {
	return &InvariantError{Field: field, Message: message}
}

// New validates a candidate rule set and returns it with defaults applied.
// The input is taken by value; the returned copy is the one to keep.
func New(rs RuleSet) (*RuleSet, error) {
	if rs.Category == "" {
		return nil, invariant("category", "must not be empty")
	}
	if rs.Version < 1 {
		return nil, invariant("version", "must be >= 1")
	}
	if rs.EffectiveFrom.IsZero() {
		return nil, invariant("effective_from", "must be set")
	}
	if rs.ExpiresAt != nil && !rs.ExpiresAt.After(rs.EffectiveFrom) {
		return nil, invariant("expires_at", "must be after effective_from")
	}
	if rs.Status == "" {
		rs.Status = StatusDraft
	}

	if err := rs.Hours.validate(); err != nil {
		return nil, err
	}
	if err := rs.Breaks.validate(); err != nil {
		return nil, err
	}
	if err := rs.Scheduling.validate(); err != nil {
		return nil, err
	}
	if err := rs.Rates.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (h HourRules) validate() error {
	if !h.MaxPerDay.IsPositive() {
		return invariant("hours.max_per_day", "must be positive")
	}
	if !h.MaxPerWeek.IsPositive() {
		return invariant("hours.max_per_week", "must be positive")
	}
	if h.MaxPerWeek.LessThan(h.StandardPerWeek) {
		return invariant("hours.max_per_week", "must be >= standard_per_week")
	}
	if h.MaxPerDay.LessThan(h.StandardPerDay) {
		return invariant("hours.max_per_day", "must be >= standard_per_day")
	}
	if h.DailyOvertimeThreshold.GreaterThan(h.MaxPerDay) {
		return invariant("hours.daily_overtime_threshold", "must be <= max_per_day")
	}
	if !h.DailyOvertimeThreshold.IsPositive() {
		return invariant("hours.daily_overtime_threshold", "must be positive")
	}
	if !h.WeeklyOvertimeThreshold.IsPositive() {
		return invariant("hours.weekly_overtime_threshold", "must be positive")
	}
	if h.MinPerWeek != nil {
		if h.MinPerWeek.IsNegative() {
			return invariant("hours.min_per_week", "must not be negative")
		}
		if h.MinPerWeek.GreaterThan(h.MaxPerWeek) {
			return invariant("hours.min_per_week", "must be <= max_per_week")
		}
	}
	// A day of work can never exceed a week's cap.
	if h.MaxPerDay.GreaterThan(h.MaxPerWeek) {
		return invariant("hours.max_per_day", "must be <= max_per_week")
	}
	return nil
}

func (b BreakRules) validate() error {
	if b.MinBreakMinutes < 0 {
		return invariant("breaks.min_break_minutes", "must not be negative")
	}
	if b.MaxWorkWithoutBreak.IsNegative() {
		return invariant("breaks.max_work_without_break", "must not be negative")
	}
	if b.LunchRequired && b.LunchMinutes <= 0 {
		return invariant("breaks.lunch_minutes", "must be positive when lunch is required")
	}
	if b.RestBetweenShifts.IsNegative() {
		return invariant("breaks.rest_between_shifts", "must not be negative")
	}
	return nil
}

func (s SchedulingRules) validate() error {
	if s.MaxConsecutiveDays < 0 {
		return invariant("scheduling.max_consecutive_days", "must not be negative")
	}
	if s.MinRestDaysPerWeek < 0 || s.MinRestDaysPerWeek > 7 {
		return invariant("scheduling.min_rest_days_per_week", "must be between 0 and 7")
	}
	if s.AdvanceNoticeHours < 0 {
		return invariant("scheduling.advance_notice_hours", "must not be negative")
	}
	if s.EarliestStart != nil && (*s.EarliestStart < 0 || *s.EarliestStart > 1439) {
		return invariant("scheduling.earliest_start", "must be a valid time of day")
	}
	if s.LatestEnd != nil && (*s.LatestEnd < 0 || *s.LatestEnd > 1439) {
		return invariant("scheduling.latest_end", "must be a valid time of day")
	}
	if s.EarliestStart != nil && s.LatestEnd != nil && *s.LatestEnd <= *s.EarliestStart {
		return invariant("scheduling.latest_end", "must be after earliest_start")
	}
	if s.ConsecutiveLookbackDays < 0 {
		return invariant("scheduling.consecutive_lookback_days", "must not be negative")
	}
	// The walk must be able to reach the consecutive-day limit.
	if s.MaxConsecutiveDays > 0 && s.Lookback() < s.MaxConsecutiveDays {
		return invariant("scheduling.consecutive_lookback_days", "must cover max_consecutive_days")
	}
	return nil
}

func (r RateTable) validate() error {
	one := decimal.NewFromInt(1)
	if r.Overtime.LessThan(one) {
		return invariant("rates.overtime", "must be >= 1.0")
	}
	for field, rate := range map[string]*decimal.Decimal{
		"rates.premium_overtime": r.PremiumOvertime,
		"rates.weekend":          r.Weekend,
		"rates.holiday":          r.Holiday,
	} {
		if rate != nil && rate.LessThan(one) {
			return invariant(field, "must be >= 1.0")
		}
	}
	return nil
}
