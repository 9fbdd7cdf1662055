package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/compliance-engine/api"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/engine/store"
	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// TEST SETUP
// =============================================================================
// The fixed clock is Monday 2025-03-03 08:00 UTC.

func testNow() time.Time {
	return time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
}

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func standardRules() rules.RuleSet {
	premium := d(2.0)
	weekend := d(1.25)
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
			AdvanceNoticeHours: 24,
			WeekendAllowed:     true,
		},
		Rates: rules.RateTable{
			Overtime:        d(1.5),
			PremiumOvertime: &premium,
			Weekend:         &weekend,
		},
	}
}

func newTestAPI(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.CreateWorker(ctx, engine.WorkerProfile{
		ID: "w-1", Name: "Test Worker", Category: "standard", HourlyRate: d(20),
	}))
	require.NoError(t, mem.CreateRuleSet(ctx, standardRules()))

	eng := engine.New(mem, mem, mem,
		engine.WithScheduleStore(mem),
		engine.WithNow(testNow),
	)
	h := api.NewHandler(eng, mem, zap.NewNop())
	return api.NewRouter(h), mem
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

// =============================================================================
// WORKER ENDPOINTS
// =============================================================================

func TestAPI_CreateAndListWorkers(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/workers", map[string]any{
		"id": "w-2", "name": "Second", "category": "standard", "hourly_rate": 18.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/workers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var workers []map[string]any
	decode(t, rec, &workers)
	assert.Len(t, workers, 2)
}

func TestAPI_CreateWorker_MissingFields_BadRequest(t *testing.T) {
	router, _ := newTestAPI(t)
	rec := doJSON(t, router, http.MethodPost, "/api/workers", map[string]any{
		"name": "No ID",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GetWorker_Unknown_NotFound(t *testing.T) {
	router, _ := newTestAPI(t)
	rec := doJSON(t, router, http.MethodGet, "/api/workers/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_EffectiveRuleSet(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/workers/w-1/ruleset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rs map[string]any
	decode(t, rec, &rs)
	assert.Equal(t, "standard-v1", rs["id"])
}

func TestAPI_EffectiveRuleSet_Uncovered_Unprocessable(t *testing.T) {
	router, mem := newTestAPI(t)
	require.NoError(t, mem.CreateWorker(context.Background(), engine.WorkerProfile{
		ID: "w-3", Name: "Uncovered", Category: "uncovered", HourlyRate: d(10),
	}))

	rec := doJSON(t, router, http.MethodGet, "/api/workers/w-3/ruleset", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// =============================================================================
// RULE SET ENDPOINTS
// =============================================================================

func TestAPI_CreateRuleSet(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/rulesets", map[string]any{
		"config": map[string]any{
			"id": "standard-v2", "category": "standard", "name": "Standard v2",
			"version": 2, "effective_from": "2025-06-01",
			"hours": map[string]any{
				"standard_per_day": 8, "max_per_day": 10,
				"standard_per_week": 38, "max_per_week": 48,
				"daily_overtime_threshold": 8, "weekly_overtime_threshold": 38,
			},
			"breaks": map[string]any{
				"min_break_minutes": 30, "max_work_without_break": 5,
				"rest_between_shifts": 11,
			},
			"scheduling": map[string]any{"advance_notice_hours": 24},
			"rates":      map[string]any{"overtime": 1.5},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/rulesets?category=standard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var versions []map[string]any
	decode(t, rec, &versions)
	assert.Len(t, versions, 2)
}

func TestAPI_CreateRuleSet_BrokenInvariant_BadRequest(t *testing.T) {
	router, _ := newTestAPI(t)
	rec := doJSON(t, router, http.MethodPost, "/api/rulesets", map[string]any{
		"config": map[string]any{
			"id": "bad-v1", "category": "standard", "name": "Bad",
			"version": 3, "effective_from": "2025-06-01",
			"hours": map[string]any{
				"standard_per_day": 8, "max_per_day": 12,
				"standard_per_week": 40, "max_per_week": 30,
				"daily_overtime_threshold": 8, "weekly_overtime_threshold": 40,
			},
			"rates": map[string]any{"overtime": 1.5},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// INTERVAL ENDPOINTS
// =============================================================================

func TestAPI_RecordInterval_ReturnsValidation(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/workers/w-1/intervals", map[string]any{
		"clock_in":      "2025-03-03T09:00:00Z",
		"clock_out":     "2025-03-03T17:45:00Z",
		"break_minutes": 45,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		IntervalID string `json:"interval_id"`
		Validation struct {
			IsValid bool `json:"is_valid"`
		} `json:"validation"`
	}
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.IntervalID)
	assert.True(t, resp.Validation.IsValid)
}

func TestAPI_RecordInterval_ViolationsDoNotBlock(t *testing.T) {
	// A 13h shift breaches the daily cap but the record is still stored.
	router, mem := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/workers/w-1/intervals", map[string]any{
		"clock_in":  "2025-03-03T08:00:00Z",
		"clock_out": "2025-03-03T21:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		IntervalID string `json:"interval_id"`
		Validation struct {
			IsValid bool `json:"is_valid"`
		} `json:"validation"`
	}
	decode(t, rec, &resp)
	assert.False(t, resp.Validation.IsValid)

	wi, err := mem.GetInterval(context.Background(), engine.IntervalID(resp.IntervalID))
	require.NoError(t, err)
	assert.Equal(t, engine.IntervalCompleted, wi.Status)
}

func TestAPI_RecordInterval_ClockOrder_BadRequest(t *testing.T) {
	router, _ := newTestAPI(t)
	rec := doJSON(t, router, http.MethodPost, "/api/workers/w-1/intervals", map[string]any{
		"clock_in":  "2025-03-03T17:00:00Z",
		"clock_out": "2025-03-03T09:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_IntervalLifecycle(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/workers/w-1/intervals", map[string]any{
		"clock_in":      "2025-03-03T09:00:00Z",
		"clock_out":     "2025-03-03T17:30:00Z",
		"break_minutes": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		IntervalID string `json:"interval_id"`
	}
	decode(t, rec, &created)

	rec = doJSON(t, router, http.MethodPost, "/api/intervals/"+created.IntervalID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dto map[string]any
	decode(t, rec, &dto)
	assert.Equal(t, "approved", dto["status"])

	// Rejecting an approved interval is an illegal transition.
	rec = doJSON(t, router, http.MethodPost, "/api/intervals/"+created.IntervalID+"/reject", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/intervals/"+created.IntervalID+"/pay", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &dto)
	assert.Equal(t, "paid", dto["status"])
}

// =============================================================================
// VALIDATION ENDPOINTS
// =============================================================================

func TestAPI_ValidateShift_CommitPersistsSchedulable(t *testing.T) {
	router, mem := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/validations/shift", map[string]any{
		"worker_id": "w-1",
		"start":     "2025-03-05T09:00:00Z",
		"end":       "2025-03-05T17:00:00Z",
		"commit":    true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		CanSchedule bool `json:"can_schedule"`
	}
	decode(t, rec, &result)
	assert.True(t, result.CanSchedule)

	shift, err := mem.LastShiftBefore(context.Background(), "w-1",
		time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, shift)
}

func TestAPI_ValidateShift_ConflictedNeverPersisted(t *testing.T) {
	// Four hours of notice against a 24h requirement.
	router, mem := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/validations/shift", map[string]any{
		"worker_id": "w-1",
		"start":     "2025-03-03T12:00:00Z",
		"end":       "2025-03-03T16:00:00Z",
		"commit":    true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		CanSchedule bool             `json:"can_schedule"`
		Conflicts   []map[string]any `json:"conflicts"`
	}
	decode(t, rec, &result)
	assert.False(t, result.CanSchedule)
	assert.NotEmpty(t, result.Conflicts)

	shift, err := mem.LastShiftBefore(context.Background(), "w-1",
		time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, shift)
}

func TestAPI_ValidateInterval_DryRun(t *testing.T) {
	router, mem := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/validations/interval", map[string]any{
		"worker_id":     "w-1",
		"clock_in":      "2025-03-03T08:00:00Z",
		"clock_out":     "2025-03-03T19:00:00Z",
		"break_minutes": 60,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		IsValid   bool `json:"is_valid"`
		Breakdown struct {
			Regular  string `json:"regular"`
			Overtime string `json:"overtime"`
		} `json:"breakdown"`
	}
	decode(t, rec, &result)
	assert.True(t, result.IsValid)
	assert.Equal(t, "8", result.Breakdown.Regular)
	assert.Equal(t, "2", result.Breakdown.Overtime)

	// Dry run: nothing stored.
	intervals, err := mem.IntervalsInRange(context.Background(), "w-1",
		time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

// =============================================================================
// PAYROLL ENDPOINT
// =============================================================================

func TestAPI_Payroll(t *testing.T) {
	router, mem := newTestAPI(t)
	ctx := context.Background()
	require.NoError(t, mem.RecordInterval(ctx, engine.WorkedInterval{
		ID: "i-1", WorkerID: "w-1",
		ClockIn:  time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
		ClockOut: time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC),
		BreakMinutes: 60, RuleSetID: "standard-v1",
		Status: engine.IntervalApproved,
	}))

	rec := doJSON(t, router, http.MethodGet,
		"/api/workers/w-1/payroll?start=2025-03-03&end=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary struct {
		IntervalCount int `json:"interval_count"`
		Pay           struct {
			TotalGross string `json:"total_gross"`
		} `json:"pay"`
	}
	decode(t, rec, &summary)
	assert.Equal(t, 1, summary.IntervalCount)
	assert.Equal(t, "160", summary.Pay.TotalGross)
}

func TestAPI_Payroll_MissingBounds_BadRequest(t *testing.T) {
	router, _ := newTestAPI(t)
	rec := doJSON(t, router, http.MethodGet, "/api/workers/w-1/payroll?start=2025-03-03", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
