package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// CLASSIFIER TESTS
// =============================================================================

func classify(t *testing.T, hours, priorWeekly float64, weekend, holiday bool, mutate func(*rules.RuleSet)) engine.HourBreakdown {
	t.Helper()
	rs := standardRules()
	if mutate != nil {
		mutate(&rs)
	}
	return engine.Classify(engine.ClassifyInput{
		Rules:            &rs,
		Hours:            d(hours),
		PriorWeeklyHours: d(priorWeekly),
		Weekend:          weekend,
		Holiday:          holiday,
	})
}

func TestClassify_WithinDailyThreshold_AllRegular(t *testing.T) {
	out := classify(t, 8, 0, false, false, nil)
	assert.True(t, out.Regular.Equal(d(8)), "regular = %s", out.Regular)
	assert.True(t, out.Overtime.IsZero())
	assert.True(t, out.PremiumOvertime.IsZero())
}

func TestClassify_PastDailyThreshold_SplitsIntoOvertime(t *testing.T) {
	out := classify(t, 10, 0, false, false, nil)
	assert.True(t, out.Regular.Equal(d(8)), "regular = %s", out.Regular)
	assert.True(t, out.Overtime.Equal(d(2)), "overtime = %s", out.Overtime)
}

func TestClassify_WeeklyOverride_GrowsOvertime(t *testing.T) {
	// GIVEN: 38h already worked this week, weekly threshold 40
	// WHEN:  classifying a 5h interval
	// THEN:  3h cross the weekly threshold and become overtime
	out := classify(t, 5, 38, false, false, nil)
	assert.True(t, out.Regular.Equal(d(2)), "regular = %s", out.Regular)
	assert.True(t, out.Overtime.Equal(d(3)), "overtime = %s", out.Overtime)
}

func TestClassify_WeeklyOverride_NeverShrinksDailySplit(t *testing.T) {
	// 10h interval at 32h prior: daily split says 2h overtime, weekly says
	// 42-40 = 2h. Overtime stays 2h, not 4h.
	out := classify(t, 10, 32, false, false, nil)
	assert.True(t, out.Regular.Equal(d(8)), "regular = %s", out.Regular)
	assert.True(t, out.Overtime.Equal(d(2)), "overtime = %s", out.Overtime)
}

func TestClassify_PremiumCarveOut(t *testing.T) {
	// 14h interval: 8 regular, 6 overtime, of which 2 beyond the 4h premium
	// boundary move to the premium bucket.
	out := classify(t, 14, 0, false, false, nil)
	assert.True(t, out.Regular.Equal(d(8)), "regular = %s", out.Regular)
	assert.True(t, out.Overtime.Equal(d(4)), "overtime = %s", out.Overtime)
	assert.True(t, out.PremiumOvertime.Equal(d(2)), "premium = %s", out.PremiumOvertime)
}

func TestClassify_NoPremiumRate_OvertimeStaysWhole(t *testing.T) {
	out := classify(t, 14, 0, false, false, func(rs *rules.RuleSet) {
		rs.Rates.PremiumOvertime = nil
	})
	assert.True(t, out.Overtime.Equal(d(6)), "overtime = %s", out.Overtime)
	assert.True(t, out.PremiumOvertime.IsZero())
}

func TestClassify_Weekend_WholeIntervalWeekendBucket(t *testing.T) {
	out := classify(t, 10, 38, true, false, nil)
	assert.True(t, out.Weekend.Equal(d(10)), "weekend = %s", out.Weekend)
	assert.True(t, out.Regular.IsZero())
	assert.True(t, out.Overtime.IsZero())
}

func TestClassify_HolidayBeatsWeekend(t *testing.T) {
	rs := standardRules()
	rs.Rates.Holiday = dp(2.5)
	out := engine.Classify(engine.ClassifyInput{
		Rules: &rs, Hours: d(8), Weekend: true, Holiday: true,
	})
	assert.True(t, out.Holiday.Equal(d(8)), "holiday = %s", out.Holiday)
	assert.True(t, out.Weekend.IsZero())
}

func TestClassify_UnconfiguredSpecialRates_FallThroughToDailySplit(t *testing.T) {
	// Weekend without a weekend rate behaves like a weekday.
	out := classify(t, 10, 0, true, false, func(rs *rules.RuleSet) {
		rs.Rates.Weekend = nil
	})
	assert.True(t, out.Regular.Equal(d(8)), "regular = %s", out.Regular)
	assert.True(t, out.Overtime.Equal(d(2)), "overtime = %s", out.Overtime)
	assert.True(t, out.Weekend.IsZero())
}

func TestClassify_ZeroHours_EmptyBreakdown(t *testing.T) {
	out := classify(t, 0, 10, true, true, nil)
	assert.True(t, out.Total().IsZero())
}

func TestClassify_BucketsAlwaysSumToInput(t *testing.T) {
	// The bucket-sum invariant has to hold exactly, including fractional
	// hours and week boundaries that fall inside the interval.
	cases := []struct {
		hours   float64
		prior   float64
		weekend bool
		holiday bool
	}{
		{7.75, 0, false, false},
		{9.25, 36.5, false, false},
		{12, 39.99, false, false},
		{14, 55, false, false},
		{6.5, 0, true, false},
		{8.25, 40, false, true},
		{0.25, 39.9, false, false},
		{11.5, 33.33, false, false},
	}
	for _, tc := range cases {
		out := classify(t, tc.hours, tc.prior, tc.weekend, tc.holiday, func(rs *rules.RuleSet) {
			rs.Rates.Holiday = dp(2.5)
		})
		want := decimal.NewFromFloat(tc.hours)
		assert.True(t, out.Total().Equal(want),
			"hours=%v prior=%v weekend=%v holiday=%v: sum %s != %s",
			tc.hours, tc.prior, tc.weekend, tc.holiday, out.Total(), want)
	}
}
