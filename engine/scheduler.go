/*
scheduler.go - Pre-commit validation of proposed shifts

PURPOSE:
  Gate a candidate future interval BEFORE it is committed: advance notice,
  time-of-day windows, weekend/holiday/night restrictions, consecutive-day
  limits, weekly caps, and rest periods against both completed work and
  already-scheduled shifts. The engine does not reserve or persist the
  shift; two concurrent validations for the same worker can both pass and
  jointly violate once committed - serialization is the caller's job.

CONFLICTS vs RECOMMENDATIONS:
  Conflicts block scheduling. When there are none, the validator emits
  advisory recommendations (expected overtime, break planning) that never
  block.
*/
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/rules"
)

// ValidateProposedShift checks whether a future shift can be scheduled.
func (e *Engine) ValidateProposedShift(ctx context.Context, workerID WorkerID, start, end time.Time) (*ShiftValidationResult, error) {
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}

	rs, err := e.effectiveRuleSet(ctx, workerID, start)
	if err != nil {
		return nil, err
	}

	shift := ProposedShift{WorkerID: workerID, Start: start, End: end}
	hours := shift.Hours()
	result := &ShiftValidationResult{RuleSetID: rs.ID}

	addConflict := func(c Conflict) { result.Conflicts = append(result.Conflicts, c) }

	// Advance notice.
	if rs.Scheduling.AdvanceNoticeHours > 0 {
		notice := durationHours(start.Sub(e.now()))
		required := decimal.NewFromInt(int64(rs.Scheduling.AdvanceNoticeHours))
		if notice.LessThan(required) {
			addConflict(Conflict{
				Type: ConflictAdvanceNotice,
				Message: fmt.Sprintf("shift requires %dh advance notice, only %sh given",
					rs.Scheduling.AdvanceNoticeHours, notice.StringFixed(1)),
				Measured: notice,
				Allowed:  required,
			})
		}
	}

	// Time-of-day window.
	if rs.Scheduling.EarliestStart != nil {
		startOfClock := int(rules.OfClock(start))
		if startOfClock < int(*rs.Scheduling.EarliestStart) {
			addConflict(Conflict{
				Type: ConflictTimeWindow,
				Message: fmt.Sprintf("shift starts at %02d:%02d, earliest allowed is %s",
					start.Hour(), start.Minute(), rs.Scheduling.EarliestStart),
				Measured: decimal.NewFromInt(int64(startOfClock)),
				Allowed:  decimal.NewFromInt(int64(*rs.Scheduling.EarliestStart)),
			})
		}
	}
	if rs.Scheduling.LatestEnd != nil {
		endOfClock := int(rules.OfClock(end))
		// An end on a later day is past any same-day window.
		if !sameDay(start, end) || endOfClock > int(*rs.Scheduling.LatestEnd) {
			addConflict(Conflict{
				Type: ConflictTimeWindow,
				Message: fmt.Sprintf("shift ends at %02d:%02d, latest allowed is %s",
					end.Hour(), end.Minute(), rs.Scheduling.LatestEnd),
				Measured: decimal.NewFromInt(int64(endOfClock)),
				Allowed:  decimal.NewFromInt(int64(*rs.Scheduling.LatestEnd)),
			})
		}
	}

	// Weekend / holiday / night restrictions.
	if isWeekend(start) && !rs.Scheduling.WeekendAllowed {
		addConflict(Conflict{
			Type:    ConflictWeekend,
			Message: "weekend shifts are not allowed for this category",
		})
	}
	if e.calendar.IsHoliday(start) && !rs.Scheduling.HolidayAllowed {
		addConflict(Conflict{
			Type:    ConflictHoliday,
			Message: "holiday shifts are not allowed for this category",
		})
	}
	if !rs.Scheduling.NightShiftAllowed && isNightShift(start, end) {
		addConflict(Conflict{
			Type:    ConflictNightShift,
			Message: "night shifts are not allowed for this category",
		})
	}

	// Consecutive working days, walked backward from the day before.
	if rs.Scheduling.MaxConsecutiveDays > 0 {
		streak, err := e.consecutiveDaysBefore(ctx, workerID, start, rs.Scheduling.Lookback())
		if err != nil {
			return nil, err
		}
		if streak >= rs.Scheduling.MaxConsecutiveDays {
			addConflict(Conflict{
				Type: ConflictConsecutiveDay,
				Message: fmt.Sprintf("worker has worked %d consecutive days, maximum is %d",
					streak, rs.Scheduling.MaxConsecutiveDays),
				Measured: decimal.NewFromInt(int64(streak)),
				Allowed:  decimal.NewFromInt(int64(rs.Scheduling.MaxConsecutiveDays)),
			})
		}
	}

	// Weekly hour cap including the proposed shift.
	weekFrom, weekTo := weekBounds(start, e.weekStart)
	weekIntervals, err := e.history.IntervalsInRange(ctx, workerID, weekFrom, weekTo)
	if err != nil {
		return nil, dependency("history store", err)
	}
	weekHours := decimal.Zero
	workedDays := map[string]bool{}
	for _, wi := range weekIntervals {
		weekHours = weekHours.Add(wi.NetHours())
		workedDays[startOfDay(wi.ClockIn).Format("2006-01-02")] = true
	}
	projected := weekHours.Add(hours)
	if projected.GreaterThan(rs.Hours.MaxPerWeek) {
		addConflict(Conflict{
			Type: ConflictWeeklyLimit,
			Message: fmt.Sprintf("scheduling would bring the week to %sh, maximum is %sh",
				projected.StringFixed(2), rs.Hours.MaxPerWeek.StringFixed(2)),
			Measured: projected,
			Allowed:  rs.Hours.MaxPerWeek,
		})
	}

	// Minimum rest days per week.
	if rs.Scheduling.MinRestDaysPerWeek > 0 {
		workedDays[startOfDay(start).Format("2006-01-02")] = true
		maxWorkingDays := 7 - rs.Scheduling.MinRestDaysPerWeek
		if len(workedDays) > maxWorkingDays {
			addConflict(Conflict{
				Type: ConflictMinRestDays,
				Message: fmt.Sprintf("scheduling leaves fewer than %d rest days this week",
					rs.Scheduling.MinRestDaysPerWeek),
				Measured: decimal.NewFromInt(int64(len(workedDays))),
				Allowed:  decimal.NewFromInt(int64(maxWorkingDays)),
			})
		}
	}

	// Rest period against the most recent prior interval, completed or
	// already scheduled.
	if rs.Breaks.RestBetweenShifts.IsPositive() {
		latestEnd, err := e.latestWorkEndBefore(ctx, workerID, start)
		if err != nil {
			return nil, err
		}
		if latestEnd != nil {
			gap := durationHours(start.Sub(*latestEnd))
			if gap.LessThan(rs.Breaks.RestBetweenShifts) {
				addConflict(Conflict{
					Type: ConflictRestPeriod,
					Message: fmt.Sprintf("only %sh of rest before the proposed start, %sh required",
						gap.StringFixed(2), rs.Breaks.RestBetweenShifts.StringFixed(2)),
					Measured: gap,
					Allowed:  rs.Breaks.RestBetweenShifts,
				})
			}
		}
	}

	result.CanSchedule = len(result.Conflicts) == 0
	if !result.CanSchedule {
		return result, nil
	}

	// Advisory recommendations for a schedulable shift.
	priorWeekly := decimal.Zero
	for _, wi := range weekIntervals {
		if wi.ClockIn.Before(start) {
			priorWeekly = priorWeekly.Add(wi.NetHours())
		}
	}
	breakdown := Classify(ClassifyInput{
		Rules:            rs,
		Hours:            hours,
		PriorWeeklyHours: priorWeekly,
		Weekend:          isWeekend(start),
		Holiday:          e.calendar.IsHoliday(start),
	})
	if overtime := breakdown.Overtime.Add(breakdown.PremiumOvertime); overtime.IsPositive() {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Code:    RecommendOvertime,
			Message: fmt.Sprintf("shift would incur %sh of overtime", overtime.StringFixed(2)),
			Value:   overtime,
		})
	}
	if hours.GreaterThan(rs.Breaks.MaxWorkWithoutBreak) && rs.Breaks.MinBreakMinutes > 0 {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Code: RecommendBreak,
			Message: fmt.Sprintf("plan a break of at least %d minutes during this shift",
				rs.Breaks.MinBreakMinutes),
			Value: decimal.NewFromInt(int64(rs.Breaks.MinBreakMinutes)),
		})
	}
	if rs.Breaks.LunchRequired && hours.GreaterThanOrEqual(lunchEligibleHours) {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Code: RecommendLunch,
			Message: fmt.Sprintf("plan a %d minute lunch during this shift",
				rs.Breaks.LunchMinutes),
			Value: decimal.NewFromInt(int64(rs.Breaks.LunchMinutes)),
		})
	}
	return result, nil
}

// consecutiveDaysBefore counts contiguous days with any completed work,
// walking backward day by day from the day before the reference date, within
// a bounded lookback window.
func (e *Engine) consecutiveDaysBefore(ctx context.Context, workerID WorkerID, ref time.Time, lookbackDays int) (int, error) {
	day := startOfDay(ref)
	from := day.AddDate(0, 0, -lookbackDays)
	intervals, err := e.history.IntervalsInRange(ctx, workerID, from, day)
	if err != nil {
		return 0, dependency("history store", err)
	}

	worked := map[string]bool{}
	for _, wi := range intervals {
		worked[startOfDay(wi.ClockIn).Format("2006-01-02")] = true
	}

	streak := 0
	for i := 1; i <= lookbackDays; i++ {
		d := day.AddDate(0, 0, -i)
		if !worked[d.Format("2006-01-02")] {
			break
		}
		streak++
	}
	return streak, nil
}

// latestWorkEndBefore finds the most recent end of work before the given
// instant, across completed history and (when wired) scheduled shifts.
func (e *Engine) latestWorkEndBefore(ctx context.Context, workerID WorkerID, before time.Time) (*time.Time, error) {
	var latest *time.Time

	prev, err := e.history.LastIntervalBefore(ctx, workerID, before)
	if err != nil {
		return nil, dependency("history store", err)
	}
	if prev != nil {
		end := prev.ClockOut
		latest = &end
	}

	if e.schedule != nil {
		scheduled, err := e.schedule.LastShiftBefore(ctx, workerID, before)
		if err != nil {
			return nil, dependency("schedule store", err)
		}
		if scheduled != nil && (latest == nil || scheduled.End.After(*latest)) {
			end := scheduled.End
			latest = &end
		}
	}
	return latest, nil
}
