package factory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/factory"
	"github.com/warp/compliance-engine/rules"
)

const standardJSON = `{
	"id": "standard-v1",
	"category": "standard",
	"name": "Standard Full-Time",
	"version": 1,
	"effective_from": "2025-01-01",
	"hours": {
		"standard_per_day": 8, "max_per_day": 12,
		"standard_per_week": 40, "max_per_week": 60,
		"daily_overtime_threshold": 8, "weekly_overtime_threshold": 40
	},
	"breaks": {
		"min_break_minutes": 30, "max_work_without_break": 5,
		"lunch_required": true, "lunch_minutes": 30,
		"rest_between_shifts": 11
	},
	"scheduling": {
		"max_consecutive_days": 6, "advance_notice_hours": 24,
		"earliest_start": "06:00", "latest_end": "22:00",
		"weekend_allowed": true
	},
	"rates": {"overtime": 1.5, "premium_overtime": 2.0, "weekend": 1.25}
}`

func TestParse_ValidDefinition(t *testing.T) {
	f := factory.NewFactory()
	rs, err := f.Parse([]byte(standardJSON))
	require.NoError(t, err)

	assert.Equal(t, rules.RuleSetID("standard-v1"), rs.ID)
	assert.Equal(t, rules.Category("standard"), rs.Category)
	assert.Equal(t, rules.StatusEffective, rs.Status)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), rs.EffectiveFrom)

	assert.True(t, rs.Hours.MaxPerDay.Equal(decimal.NewFromInt(12)))
	assert.True(t, rs.Rates.Overtime.Equal(decimal.NewFromFloat(1.5)))
	require.NotNil(t, rs.Rates.PremiumOvertime)
	assert.True(t, rs.Rates.PremiumOvertime.Equal(decimal.NewFromFloat(2.0)))
	assert.Nil(t, rs.Rates.Holiday)

	require.NotNil(t, rs.Scheduling.EarliestStart)
	assert.Equal(t, rules.NewTimeOfDay(6, 0), *rs.Scheduling.EarliestStart)
	require.NotNil(t, rs.Scheduling.LatestEnd)
	assert.Equal(t, rules.NewTimeOfDay(22, 0), *rs.Scheduling.LatestEnd)
}

func TestParse_MalformedJSON_Rejected(t *testing.T) {
	f := factory.NewFactory()
	_, err := f.Parse([]byte(`{"id": `))
	assert.Error(t, err)
}

func TestBuild_MissingRequiredFields_Rejected(t *testing.T) {
	f := factory.NewFactory()
	_, err := f.Build(factory.RuleSetJSON{ID: "x", Version: 1})
	assert.Error(t, err)
}

func TestBuild_InvariantViolation_SurfacesRuleError(t *testing.T) {
	// Struct-tag validation passes but the rule invariants do not:
	// max_per_week below standard_per_week.
	f := factory.NewFactory()
	cfg := factory.RuleSetJSON{
		ID: "bad-v1", Category: "standard", Name: "Bad", Version: 1,
		EffectiveFrom: "2025-01-01",
		Hours: factory.HoursJSON{
			StandardPerDay: 8, MaxPerDay: 12,
			StandardPerWeek: 40, MaxPerWeek: 30,
			DailyOvertimeThreshold: 8, WeeklyOvertimeThreshold: 40,
		},
		Rates: factory.RatesJSON{Overtime: 1.5},
	}
	_, err := f.Build(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rules.ErrInvariant))
}

func TestBuild_BadTimeOfDay_Rejected(t *testing.T) {
	f := factory.NewFactory()
	cfg := factory.RuleSetJSON{
		ID: "bad-v1", Category: "standard", Name: "Bad", Version: 1,
		EffectiveFrom: "2025-01-01",
		Hours: factory.HoursJSON{
			StandardPerDay: 8, MaxPerDay: 12,
			StandardPerWeek: 40, MaxPerWeek: 60,
			DailyOvertimeThreshold: 8, WeeklyOvertimeThreshold: 40,
		},
		Scheduling: factory.SchedulingJSON{EarliestStart: "25:99"},
		Rates:      factory.RatesJSON{Overtime: 1.5},
	}
	_, err := f.Build(cfg)
	assert.Error(t, err)
}

func TestBuiltIn_PresetsAreValid(t *testing.T) {
	presets, err := factory.BuiltIn("2025-01-01")
	require.NoError(t, err)
	require.Len(t, presets, 4)

	categories := map[rules.Category]bool{}
	for _, rs := range presets {
		categories[rs.Category] = true
		assert.True(t, rs.Default, "%s should be its category default", rs.ID)
		assert.Equal(t, rules.StatusEffective, rs.Status)

		// Presets must survive re-validation untouched.
		_, err := rules.New(rs)
		assert.NoError(t, err, "preset %s", rs.ID)
	}
	for _, want := range []rules.Category{"standard", "retail", "healthcare", "contractor"} {
		assert.True(t, categories[want], "missing preset for %s", want)
	}
}
