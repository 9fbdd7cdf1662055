/*
classifier.go - Pure hour classification

PURPOSE:
  Splits one interval's worked hours into pay-rate buckets. Pure function:
  same inputs, same breakdown, no reads, no clock.

PRECEDENCE (order matters for edge cases, do not reorder):
  1. Holiday with a configured holiday rate: whole interval -> holiday. Stop.
  2. Weekend with a configured weekend rate: whole interval -> weekend. Stop.
  3. Daily split: regular up to the daily overtime threshold, rest overtime.
  4. Weekly override: when the week's accumulation crosses the weekly
     threshold inside this interval, overtime grows to cover the excess
     (never shrinks below the daily split).
  5. Premium carve-out: with a premium rate configured, overtime beyond
     PremiumOvertimeAfterHours moves to the premium bucket.

INVARIANT:
  regular + overtime + premium + weekend + holiday == input hours, exactly,
  for every valid input. All arithmetic is decimal and subtractive, so the
  buckets partition the input with no drift.
*/
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/rules"
)

// PremiumOvertimeAfterHours is the daily overtime beyond which hours shift
// into the premium-overtime bucket (when a premium rate is configured).
var PremiumOvertimeAfterHours = decimal.NewFromInt(4)

// ClassifyInput bundles the classifier's inputs.
type ClassifyInput struct {
	Rules *rules.RuleSet

	// Hours is the interval's net worked hours (break already deducted).
	Hours decimal.Decimal

	// PriorWeeklyHours is the worker's accumulated hours in the same week
	// from intervals that started before this one.
	PriorWeeklyHours decimal.Decimal

	Weekend bool
	Holiday bool
}

// Classify splits the interval's hours into pay-rate buckets.
func Classify(in ClassifyInput) HourBreakdown {
	var out HourBreakdown

	if in.Hours.Sign() <= 0 {
		return out
	}

	// Holiday takes precedence over weekend when a date is both.
	if in.Holiday && in.Rules.Rates.Holiday != nil {
		out.Holiday = in.Hours
		return out
	}
	if in.Weekend && in.Rules.Rates.Weekend != nil {
		out.Weekend = in.Hours
		return out
	}

	daily := in.Rules.Hours.DailyOvertimeThreshold
	out.Regular = decimal.Min(in.Hours, daily)
	out.Overtime = decimal.Max(decimal.Zero, in.Hours.Sub(daily))

	// Weekly override: hours past the weekly threshold are overtime even if
	// the daily split called them regular.
	weekly := in.Rules.Hours.WeeklyOvertimeThreshold
	weekTotal := in.PriorWeeklyHours.Add(in.Hours)
	if weekTotal.GreaterThan(weekly) {
		weeklyOvertime := decimal.Min(in.Hours, weekTotal.Sub(weekly))
		out.Overtime = decimal.Max(out.Overtime, weeklyOvertime)
		out.Regular = in.Hours.Sub(out.Overtime)
	}

	if in.Rules.Rates.PremiumOvertime != nil && out.Overtime.GreaterThan(PremiumOvertimeAfterHours) {
		out.PremiumOvertime = out.Overtime.Sub(PremiumOvertimeAfterHours)
		out.Overtime = PremiumOvertimeAfterHours
	}

	return out
}
