/*
validator.go - Work-hour validation of completed intervals

PURPOSE:
  Checks one completed clock-in/clock-out pair against the worker's
  effective rule set: daily cap, break mandate, lunch mandate, weekly cap,
  rest period. Always computes the classified hour breakdown, violations or
  not - classification and compliance are separate concerns.

SIDE EFFECTS:
  None. The validator only reads; recording and approving intervals happens
  at the caller's boundary.

CHECK ORDER (fixed, so violation lists are deterministic):
  daily limit -> break mandate -> lunch mandate -> weekly limit -> rest period
*/
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// lunchEligibleHours is the shift length at which a required lunch applies.
var lunchEligibleHours = decimal.NewFromInt(6)

// ValidateWorkedInterval validates a completed interval that has not been
// recorded yet. Weekly sums include the interval itself on top of history.
func (e *Engine) ValidateWorkedInterval(ctx context.Context, workerID WorkerID, clockIn, clockOut time.Time, breakMinutes int) (*ValidationResult, error) {
	wi := WorkedInterval{
		ID:           NewIntervalID(),
		WorkerID:     workerID,
		ClockIn:      clockIn,
		ClockOut:     clockOut,
		BreakMinutes: breakMinutes,
		Status:       IntervalCompleted,
	}
	return e.validateInterval(ctx, wi)
}

// ValidateRecordedInterval validates an interval that already exists in the
// history store, excluding it from its own weekly accumulation.
func (e *Engine) ValidateRecordedInterval(ctx context.Context, wi WorkedInterval) (*ValidationResult, error) {
	return e.validateInterval(ctx, wi)
}

func (e *Engine) validateInterval(ctx context.Context, wi WorkedInterval) (*ValidationResult, error) {
	if !wi.ClockOut.After(wi.ClockIn) {
		return nil, ErrInvalidInterval
	}

	rs, err := e.effectiveRuleSet(ctx, wi.WorkerID, wi.ClockIn)
	if err != nil {
		return nil, err
	}

	shiftHours := wi.NetHours()

	weekFrom, weekTo := weekBounds(wi.ClockIn, e.weekStart)
	weekIntervals, err := e.history.IntervalsInRange(ctx, wi.WorkerID, weekFrom, weekTo)
	if err != nil {
		return nil, dependency("history store", err)
	}

	// Accumulate the rest of the week, excluding this interval if the
	// history already contains it.
	weekOthers := decimal.Zero
	priorWeekly := decimal.Zero
	for _, other := range weekIntervals {
		if other.ID == wi.ID {
			continue
		}
		weekOthers = weekOthers.Add(other.NetHours())
		if other.ClockIn.Before(wi.ClockIn) {
			priorWeekly = priorWeekly.Add(other.NetHours())
		}
	}
	weekTotal := weekOthers.Add(shiftHours)

	result := &ValidationResult{
		ShiftHours: shiftHours,
		RuleSetID:  rs.ID,
	}

	// Daily limit.
	if shiftHours.GreaterThan(rs.Hours.MaxPerDay) {
		result.Violations = append(result.Violations, Violation{
			Type:     ViolationDailyLimit,
			Severity: SeverityError,
			Message: fmt.Sprintf("shift of %sh exceeds the daily maximum of %sh",
				shiftHours.StringFixed(2), rs.Hours.MaxPerDay.StringFixed(2)),
			Measured: shiftHours,
			Allowed:  rs.Hours.MaxPerDay,
		})
	}

	// Break mandate.
	minBreak := decimal.NewFromInt(int64(rs.Breaks.MinBreakMinutes))
	if shiftHours.GreaterThan(rs.Breaks.MaxWorkWithoutBreak) && wi.BreakMinutes < rs.Breaks.MinBreakMinutes {
		result.Violations = append(result.Violations, Violation{
			Type:     ViolationMissingBreak,
			Severity: SeverityError,
			Message: fmt.Sprintf("shift over %sh requires a break of at least %d minutes, got %d",
				rs.Breaks.MaxWorkWithoutBreak.StringFixed(2), rs.Breaks.MinBreakMinutes, wi.BreakMinutes),
			Measured: decimal.NewFromInt(int64(wi.BreakMinutes)),
			Allowed:  minBreak,
		})
	}

	// Lunch mandate. Advisory only.
	if rs.Breaks.LunchRequired && shiftHours.GreaterThanOrEqual(lunchEligibleHours) && wi.BreakMinutes < rs.Breaks.LunchMinutes {
		result.Violations = append(result.Violations, Violation{
			Type:     ViolationMissingLunch,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("shift of %sh should include a %d minute lunch",
				shiftHours.StringFixed(2), rs.Breaks.LunchMinutes),
			Measured: decimal.NewFromInt(int64(wi.BreakMinutes)),
			Allowed:  decimal.NewFromInt(int64(rs.Breaks.LunchMinutes)),
		})
	}

	// Weekly limit, including this interval.
	if weekTotal.GreaterThan(rs.Hours.MaxPerWeek) {
		result.Violations = append(result.Violations, Violation{
			Type:     ViolationWeeklyLimit,
			Severity: SeverityError,
			Message: fmt.Sprintf("weekly total of %sh exceeds the maximum of %sh",
				weekTotal.StringFixed(2), rs.Hours.MaxPerWeek.StringFixed(2)),
			Measured: weekTotal,
			Allowed:  rs.Hours.MaxPerWeek,
		})
	}

	// Rest period since the previous shift's clock-out.
	if rs.Breaks.RestBetweenShifts.IsPositive() {
		prev, err := e.history.LastIntervalBefore(ctx, wi.WorkerID, wi.ClockIn)
		if err != nil {
			return nil, dependency("history store", err)
		}
		if prev != nil && prev.ID != wi.ID {
			gap := durationHours(wi.ClockIn.Sub(prev.ClockOut))
			if gap.LessThan(rs.Breaks.RestBetweenShifts) {
				result.Violations = append(result.Violations, Violation{
					Type:     ViolationRestPeriod,
					Severity: SeverityCritical,
					Message: fmt.Sprintf("only %sh of rest since previous shift, %sh required",
						gap.StringFixed(2), rs.Breaks.RestBetweenShifts.StringFixed(2)),
					Measured: gap,
					Allowed:  rs.Breaks.RestBetweenShifts,
				})
			}
		}
	}

	// Classification happens regardless of violations.
	result.Breakdown = Classify(ClassifyInput{
		Rules:            rs,
		Hours:            shiftHours,
		PriorWeeklyHours: priorWeekly,
		Weekend:          isWeekend(wi.ClockIn),
		Holiday:          e.calendar.IsHoliday(wi.ClockIn),
	})

	overtime := result.Breakdown.Overtime.Add(result.Breakdown.PremiumOvertime)
	if overtime.IsPositive() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("interval includes %sh of overtime", overtime.StringFixed(2)))
	}
	if weekTotal.GreaterThan(rs.Hours.StandardPerWeek) && !weekTotal.GreaterThan(rs.Hours.MaxPerWeek) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("weekly total of %sh exceeds the standard week of %sh",
				weekTotal.StringFixed(2), rs.Hours.StandardPerWeek.StringFixed(2)))
	}

	result.IsValid = true
	for _, v := range result.Violations {
		if v.Severity.Blocking() {
			result.IsValid = false
			break
		}
	}
	return result, nil
}
