package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/engine/store"
	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// The fixed clock is Monday 2025-03-03 08:00 UTC. The surrounding week runs
// Mon Mar 3 .. Sun Mar 9.

const testWorker = engine.WorkerID("w-1")

func testNow() time.Time {
	return time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
}

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func dp(v float64) *decimal.Decimal {
	dec := decimal.NewFromFloat(v)
	return &dec
}

func standardRules() rules.RuleSet {
	return rules.RuleSet{
		ID:            "standard-v1",
		Category:      "standard",
		Name:          "Standard Full-Time",
		Version:       1,
		Status:        rules.StatusEffective,
		EffectiveFrom: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Hours: rules.HourRules{
			StandardPerDay:          d(8),
			MaxPerDay:               d(12),
			StandardPerWeek:         d(40),
			MaxPerWeek:              d(60),
			DailyOvertimeThreshold:  d(8),
			WeeklyOvertimeThreshold: d(40),
		},
		Breaks: rules.BreakRules{
			MinBreakMinutes:     30,
			MaxWorkWithoutBreak: d(5),
			LunchRequired:       true,
			LunchMinutes:        30,
			RestBetweenShifts:   d(11),
		},
		Scheduling: rules.SchedulingRules{
			MaxConsecutiveDays: 6,
			MinRestDaysPerWeek: 1,
			AdvanceNoticeHours: 24,
			WeekendAllowed:     true,
		},
		Rates: rules.RateTable{
			Overtime:        d(1.5),
			PremiumOvertime: dp(2.0),
			Weekend:         dp(1.25),
		},
	}
}

type testEnv struct {
	eng *engine.Engine
	mem *store.Memory
}

func newTestEnv(t *testing.T, opts ...engine.Option) *testEnv {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.CreateWorker(ctx, engine.WorkerProfile{
		ID:         testWorker,
		Name:       "Test Worker",
		Category:   "standard",
		HourlyRate: d(20),
	}))
	require.NoError(t, mem.CreateRuleSet(ctx, standardRules()))

	opts = append([]engine.Option{
		engine.WithScheduleStore(mem),
		engine.WithNow(testNow),
	}, opts...)
	return &testEnv{eng: engine.New(mem, mem, mem, opts...), mem: mem}
}

// replaceRules swaps the category's rule set for a customized one.
func (env *testEnv) replaceRules(t *testing.T, mutate func(*rules.RuleSet)) {
	t.Helper()
	rs := standardRules()
	rs.ID = "standard-v2"
	rs.Version = 2
	mutate(&rs)
	require.NoError(t, env.mem.CreateRuleSet(context.Background(), rs))
}

// at builds a timestamp on a March 2025 day.
func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, time.UTC)
}

// record stores a worked interval and returns its ID.
func (env *testEnv) record(t *testing.T, clockIn, clockOut time.Time, breakMinutes int, status engine.IntervalStatus) engine.IntervalID {
	t.Helper()
	wi := engine.WorkedInterval{
		ID:           engine.NewIntervalID(),
		WorkerID:     testWorker,
		ClockIn:      clockIn,
		ClockOut:     clockOut,
		BreakMinutes: breakMinutes,
		RuleSetID:    "standard-v1",
		Status:       status,
	}
	require.NoError(t, env.mem.RecordInterval(context.Background(), wi))
	return wi.ID
}

// holidayOn marks exactly one day as a holiday.
type holidayOn struct{ day time.Time }

func (h holidayOn) IsHoliday(date time.Time) bool {
	return date.Year() == h.day.Year() && date.YearDay() == h.day.YearDay()
}

// brokenStore fails every read, for dependency-error tests.
type brokenStore struct{}

var errStoreDown = errors.New("connection refused")

func (brokenStore) EffectiveFor(context.Context, engine.WorkerID, time.Time) (*rules.RuleSet, error) {
	return nil, errStoreDown
}

func (brokenStore) IntervalsInRange(context.Context, engine.WorkerID, time.Time, time.Time) ([]engine.WorkedInterval, error) {
	return nil, errStoreDown
}

func (brokenStore) LastIntervalBefore(context.Context, engine.WorkerID, time.Time) (*engine.WorkedInterval, error) {
	return nil, errStoreDown
}
