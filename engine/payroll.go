/*
payroll.go - Period payroll aggregation

PURPOSE:
  Aggregates a worker's approved intervals over a pay period through the
  hour classifier and computes gross pay per bucket. Compliance reporting
  rides along: every interval in the period is re-run through the work-hour
  validator and any finding is attached to the summary, but findings never
  block pay. Pay computation and compliance reporting are independent
  outputs of the same scan.

DETERMINISM:
  Same period + same rule set versions + unchanged history => identical
  PayrollSummary. Intervals are processed in clock-in order, buckets
  accumulate in a fixed order, and rounding happens once at the end.

WEEKLY RE-ACCUMULATION:
  For each interval the weekly accumulation is recomputed from approved
  intervals starting earlier in the same week - including intervals before
  the period start when the period begins mid-week.
*/
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/rules"
)

// ComputePayroll aggregates classified hours and gross pay for the worker
// over [periodStart, periodEnd).
func (e *Engine) ComputePayroll(ctx context.Context, workerID WorkerID, periodStart, periodEnd time.Time) (*PayrollSummary, error) {
	if !periodEnd.After(periodStart) {
		return nil, ErrInvalidPeriod
	}

	profile, err := e.workers.Profile(ctx, workerID)
	if err != nil {
		return nil, dependency("worker directory", err)
	}

	// Reach back to the start of the week containing the period start so
	// mid-week period boundaries still see the full weekly accumulation.
	weekAnchor, _ := weekBounds(periodStart, e.weekStart)
	intervals, err := e.history.IntervalsInRange(ctx, workerID, weekAnchor, periodEnd)
	if err != nil {
		return nil, dependency("history store", err)
	}

	approved := make([]WorkedInterval, 0, len(intervals))
	for _, wi := range intervals {
		if wi.Status.Payable() {
			approved = append(approved, wi)
		}
	}
	sort.Slice(approved, func(i, j int) bool {
		if !approved[i].ClockIn.Equal(approved[j].ClockIn) {
			return approved[i].ClockIn.Before(approved[j].ClockIn)
		}
		return approved[i].ID < approved[j].ID
	})

	summary := &PayrollSummary{
		WorkerID:    workerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	pay := PayBreakdown{}

	for idx, wi := range approved {
		if wi.ClockIn.Before(periodStart) {
			continue // weekly context only
		}

		rs, err := e.effectiveRuleSet(ctx, workerID, wi.ClockIn)
		if err != nil {
			return nil, err
		}

		weekFrom, _ := weekBounds(wi.ClockIn, e.weekStart)
		priorWeekly := decimal.Zero
		for _, earlier := range approved[:idx] {
			if !earlier.ClockIn.Before(weekFrom) && earlier.ClockIn.Before(wi.ClockIn) {
				priorWeekly = priorWeekly.Add(earlier.NetHours())
			}
		}

		breakdown := Classify(ClassifyInput{
			Rules:            rs,
			Hours:            wi.NetHours(),
			PriorWeeklyHours: priorWeekly,
			Weekend:          isWeekend(wi.ClockIn),
			Holiday:          e.calendar.IsHoliday(wi.ClockIn),
		})

		summary.Hours = summary.Hours.Add(breakdown)
		summary.IntervalCount++
		accumulatePay(&pay, breakdown, profile.HourlyRate, rs.Rates)

		// Compliance reporting only; never blocks pay.
		report, err := e.ValidateRecordedInterval(ctx, wi)
		if err != nil {
			return nil, err
		}
		for _, v := range report.Violations {
			summary.Violations = append(summary.Violations, PeriodViolation{
				IntervalID: wi.ID,
				Date:       startOfDay(wi.ClockIn),
				Violation:  v,
			})
		}
	}

	summary.Pay = roundPay(pay)
	return summary, nil
}

// accumulatePay adds one interval's bucket pay: hours x hourly rate x the
// bucket's rate multiplier from the interval's own rule set version.
func accumulatePay(pay *PayBreakdown, hours HourBreakdown, hourlyRate decimal.Decimal, rates rules.RateTable) {
	one := decimal.NewFromInt(1)

	premiumRate := rates.Overtime
	if rates.PremiumOvertime != nil {
		premiumRate = *rates.PremiumOvertime
	}
	weekendRate := one
	if rates.Weekend != nil {
		weekendRate = *rates.Weekend
	}
	holidayRate := one
	if rates.Holiday != nil {
		holidayRate = *rates.Holiday
	}

	pay.Regular = pay.Regular.Add(hours.Regular.Mul(hourlyRate))
	pay.Overtime = pay.Overtime.Add(hours.Overtime.Mul(hourlyRate).Mul(rates.Overtime))
	pay.PremiumOvertime = pay.PremiumOvertime.Add(hours.PremiumOvertime.Mul(hourlyRate).Mul(premiumRate))
	pay.Weekend = pay.Weekend.Add(hours.Weekend.Mul(hourlyRate).Mul(weekendRate))
	pay.Holiday = pay.Holiday.Add(hours.Holiday.Mul(hourlyRate).Mul(holidayRate))
}

// roundPay rounds every bucket to cents once, after all accumulation.
func roundPay(pay PayBreakdown) PayBreakdown {
	out := PayBreakdown{
		Regular:         pay.Regular.Round(2),
		Overtime:        pay.Overtime.Round(2),
		PremiumOvertime: pay.PremiumOvertime.Round(2),
		Weekend:         pay.Weekend.Round(2),
		Holiday:         pay.Holiday.Round(2),
	}
	out.TotalGross = out.Regular.
		Add(out.Overtime).
		Add(out.PremiumOvertime).
		Add(out.Weekend).
		Add(out.Holiday)
	return out
}
