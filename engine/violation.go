/*
violation.go - Structured compliance outcomes

PURPOSE:
  Violations, conflicts, and recommendations are DATA returned to the
  caller, never exceptions. A violation carries its severity plus the
  measured and allowed values so callers can render exact messages and
  decide what blocks. The engine only decides compliance; policy about
  blocking lives with the caller.

SEVERITY CONTRACT:
  warning  - advisory, never blocks (e.g. missed lunch)
  error    - breach of a hard cap (daily/weekly hours, missing break)
  critical - breach with acute safety impact (rest period)
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// VIOLATIONS - Breaches found on completed intervals
// =============================================================================

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Blocking reports whether the severity should stop an action for callers
// that follow the default policy.
func (s Severity) Blocking() bool {
	return s == SeverityError || s == SeverityCritical
}

type ViolationType string

const (
	ViolationDailyLimit   ViolationType = "DAILY_HOUR_LIMIT"
	ViolationMissingBreak ViolationType = "MISSING_BREAK"
	ViolationMissingLunch ViolationType = "MISSING_LUNCH"
	ViolationWeeklyLimit  ViolationType = "WEEKLY_HOUR_LIMIT"
	ViolationRestPeriod   ViolationType = "REST_PERIOD"
)

// Violation is one detected breach with measured-vs-allowed evidence.
type Violation struct {
	Type     ViolationType   `json:"type"`
	Severity Severity        `json:"severity"`
	Message  string          `json:"message"`
	Measured decimal.Decimal `json:"measured"`
	Allowed  decimal.Decimal `json:"allowed"`
}

// =============================================================================
// CONFLICTS - Reasons a proposed shift cannot be scheduled
// =============================================================================

type ConflictType string

const (
	ConflictAdvanceNotice  ConflictType = "ADVANCE_NOTICE"
	ConflictTimeWindow     ConflictType = "TIME_WINDOW"
	ConflictWeekend        ConflictType = "WEEKEND_NOT_ALLOWED"
	ConflictHoliday        ConflictType = "HOLIDAY_NOT_ALLOWED"
	ConflictNightShift     ConflictType = "NIGHT_SHIFT_NOT_ALLOWED"
	ConflictConsecutiveDay ConflictType = "CONSECUTIVE_DAYS"
	ConflictWeeklyLimit    ConflictType = "WEEKLY_HOUR_LIMIT"
	ConflictMinRestDays    ConflictType = "MIN_REST_DAYS"
	ConflictRestPeriod     ConflictType = "REST_PERIOD"
)

type Conflict struct {
	Type     ConflictType    `json:"type"`
	Message  string          `json:"message"`
	Measured decimal.Decimal `json:"measured"`
	Allowed  decimal.Decimal `json:"allowed"`
}

// Recommendation is advice attached to a schedulable shift. Never blocking.
type Recommendation struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Value   decimal.Decimal `json:"value"`
}

const (
	RecommendOvertime = "OVERTIME_EXPECTED"
	RecommendBreak    = "SCHEDULE_BREAK"
	RecommendLunch    = "SCHEDULE_LUNCH"
)

// =============================================================================
// RESULTS
// =============================================================================

// ValidationResult is the outcome of validating one completed interval.
// The breakdown is ALWAYS populated, violations or not: classification and
// compliance are separate concerns.
type ValidationResult struct {
	IsValid    bool            `json:"is_valid"`
	Violations []Violation     `json:"violations"`
	Warnings   []string        `json:"warnings"`
	Breakdown  HourBreakdown   `json:"breakdown"`
	ShiftHours decimal.Decimal `json:"shift_hours"`
	RuleSetID  rules.RuleSetID `json:"rule_set_id"`
}

// ShiftValidationResult is the outcome of a pre-commit scheduling check.
type ShiftValidationResult struct {
	CanSchedule     bool             `json:"can_schedule"`
	Conflicts       []Conflict       `json:"conflicts"`
	Recommendations []Recommendation `json:"recommendations"`
	RuleSetID       rules.RuleSetID  `json:"rule_set_id"`
}

// =============================================================================
// PAYROLL SUMMARY
// =============================================================================

// PayBreakdown is the gross pay per classification bucket.
type PayBreakdown struct {
	Regular         decimal.Decimal `json:"regular"`
	Overtime        decimal.Decimal `json:"overtime"`
	PremiumOvertime decimal.Decimal `json:"premium_overtime"`
	Weekend         decimal.Decimal `json:"weekend"`
	Holiday         decimal.Decimal `json:"holiday"`
	TotalGross      decimal.Decimal `json:"total_gross"`
}

// PeriodViolation ties a violation found during the payroll scan to the
// interval it occurred on. Informational only; it never blocks pay.
type PeriodViolation struct {
	IntervalID IntervalID `json:"interval_id"`
	Date       time.Time  `json:"date"`
	Violation  Violation  `json:"violation"`
}

// PayrollSummary aggregates a worker's classified hours and gross pay over
// a pay period. Compliance findings ride along without affecting pay.
type PayrollSummary struct {
	WorkerID      WorkerID          `json:"worker_id"`
	PeriodStart   time.Time         `json:"period_start"`
	PeriodEnd     time.Time         `json:"period_end"`
	IntervalCount int               `json:"interval_count"`
	Hours         HourBreakdown     `json:"hours"`
	Pay           PayBreakdown      `json:"pay"`
	Violations    []PeriodViolation `json:"violations"`
}
