/*
Package factory provides JSON to Go rule set conversion.

PURPOSE:
  Converts JSON rule set definitions into validated rules.RuleSet versions.
  HR can author rule sets as JSON - the factory applies struct-tag
  validation, builds the decimal fields, and runs the construction-time
  invariant checks, so a malformed definition never reaches a store.

JSON SCHEMA:
  {
    "id": "standard-v1",
    "category": "standard",
    "name": "Standard Full-Time",
    "version": 1,
    "effective_from": "2024-01-01",
    "hours": {"standard_per_day": 8, "max_per_day": 12,
              "standard_per_week": 40, "max_per_week": 60,
              "daily_overtime_threshold": 8, "weekly_overtime_threshold": 40},
    "breaks": {"min_break_minutes": 30, "max_work_without_break": 5,
               "lunch_required": true, "lunch_minutes": 30,
               "rest_between_shifts": 11},
    "scheduling": {"max_consecutive_days": 6, "advance_notice_hours": 24,
                   "weekend_allowed": true},
    "rates": {"overtime": 1.5, "premium_overtime": 2.0, "weekend": 1.25}
  }

SEE ALSO:
  - rules/validate.go: the invariant checks this factory feeds into
  - cmd/server: seeds the built-in category rule sets
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleSetJSON is the JSON representation of one rule set version.
type RuleSetJSON struct {
	ID            string          `json:"id" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Version       int             `json:"version" validate:"min=1"`
	Default       bool            `json:"default,omitempty"`
	EffectiveFrom string          `json:"effective_from" validate:"required"`
	ExpiresAt     string          `json:"expires_at,omitempty"`
	Hours         HoursJSON       `json:"hours" validate:"required"`
	Breaks        BreaksJSON      `json:"breaks"`
	Scheduling    SchedulingJSON  `json:"scheduling"`
	Rates         RatesJSON       `json:"rates" validate:"required"`
}

type HoursJSON struct {
	StandardPerDay          float64  `json:"standard_per_day" validate:"gt=0"`
	MaxPerDay               float64  `json:"max_per_day" validate:"gt=0"`
	StandardPerWeek         float64  `json:"standard_per_week" validate:"gt=0"`
	MaxPerWeek              float64  `json:"max_per_week" validate:"gt=0"`
	MinPerWeek              *float64 `json:"min_per_week,omitempty" validate:"omitempty,gte=0"`
	DailyOvertimeThreshold  float64  `json:"daily_overtime_threshold" validate:"gt=0"`
	WeeklyOvertimeThreshold float64  `json:"weekly_overtime_threshold" validate:"gt=0"`
}

type BreaksJSON struct {
	MinBreakMinutes     int     `json:"min_break_minutes" validate:"gte=0"`
	MaxWorkWithoutBreak float64 `json:"max_work_without_break" validate:"gte=0"`
	LunchRequired       bool    `json:"lunch_required,omitempty"`
	LunchMinutes        int     `json:"lunch_minutes,omitempty" validate:"gte=0"`
	RestBetweenShifts   float64 `json:"rest_between_shifts" validate:"gte=0"`
}

type SchedulingJSON struct {
	MaxConsecutiveDays      int    `json:"max_consecutive_days" validate:"gte=0"`
	MinRestDaysPerWeek      int    `json:"min_rest_days_per_week" validate:"gte=0,lte=7"`
	AdvanceNoticeHours      int    `json:"advance_notice_hours" validate:"gte=0"`
	EarliestStart           string `json:"earliest_start,omitempty"`
	LatestEnd               string `json:"latest_end,omitempty"`
	WeekendAllowed          bool   `json:"weekend_allowed,omitempty"`
	HolidayAllowed          bool   `json:"holiday_allowed,omitempty"`
	NightShiftAllowed       bool   `json:"night_shift_allowed,omitempty"`
	ConsecutiveLookbackDays int    `json:"consecutive_lookback_days,omitempty" validate:"gte=0"`
}

type RatesJSON struct {
	Overtime        float64  `json:"overtime" validate:"gte=1"`
	PremiumOvertime *float64 `json:"premium_overtime,omitempty" validate:"omitempty,gte=1"`
	Weekend         *float64 `json:"weekend,omitempty" validate:"omitempty,gte=1"`
	Holiday         *float64 `json:"holiday,omitempty" validate:"omitempty,gte=1"`
}

// =============================================================================
// FACTORY
// =============================================================================

type Factory struct {
	validate *validator.Validate
}

func NewFactory() *Factory {
	return &Factory{validate: validator.New()}
}

// Parse converts a JSON rule set definition into a validated rules.RuleSet.
func (f *Factory) Parse(data []byte) (*rules.RuleSet, error) {
	var cfg RuleSetJSON
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rule set JSON: %w", err)
	}
	return f.Build(cfg)
}

// Build converts an already-unmarshaled definition.
func (f *Factory) Build(cfg RuleSetJSON) (*rules.RuleSet, error) {
	if err := f.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("rule set config validation failed: %w", err)
	}

	effectiveFrom, err := parseDate(cfg.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid effective_from: %w", err)
	}

	rs := rules.RuleSet{
		ID:            rules.RuleSetID(cfg.ID),
		Category:      rules.Category(cfg.Category),
		Name:          cfg.Name,
		Version:       cfg.Version,
		Default:       cfg.Default,
		Status:        rules.StatusEffective,
		EffectiveFrom: effectiveFrom,
		Hours: rules.HourRules{
			StandardPerDay:          decimal.NewFromFloat(cfg.Hours.StandardPerDay),
			MaxPerDay:               decimal.NewFromFloat(cfg.Hours.MaxPerDay),
			StandardPerWeek:         decimal.NewFromFloat(cfg.Hours.StandardPerWeek),
			MaxPerWeek:              decimal.NewFromFloat(cfg.Hours.MaxPerWeek),
			DailyOvertimeThreshold:  decimal.NewFromFloat(cfg.Hours.DailyOvertimeThreshold),
			WeeklyOvertimeThreshold: decimal.NewFromFloat(cfg.Hours.WeeklyOvertimeThreshold),
		},
		Breaks: rules.BreakRules{
			MinBreakMinutes:     cfg.Breaks.MinBreakMinutes,
			MaxWorkWithoutBreak: decimal.NewFromFloat(cfg.Breaks.MaxWorkWithoutBreak),
			LunchRequired:       cfg.Breaks.LunchRequired,
			LunchMinutes:        cfg.Breaks.LunchMinutes,
			RestBetweenShifts:   decimal.NewFromFloat(cfg.Breaks.RestBetweenShifts),
		},
		Scheduling: rules.SchedulingRules{
			MaxConsecutiveDays:      cfg.Scheduling.MaxConsecutiveDays,
			MinRestDaysPerWeek:      cfg.Scheduling.MinRestDaysPerWeek,
			AdvanceNoticeHours:      cfg.Scheduling.AdvanceNoticeHours,
			WeekendAllowed:          cfg.Scheduling.WeekendAllowed,
			HolidayAllowed:          cfg.Scheduling.HolidayAllowed,
			NightShiftAllowed:       cfg.Scheduling.NightShiftAllowed,
			ConsecutiveLookbackDays: cfg.Scheduling.ConsecutiveLookbackDays,
		},
		Rates: rules.RateTable{
			Overtime:        decimal.NewFromFloat(cfg.Rates.Overtime),
			PremiumOvertime: optionalRate(cfg.Rates.PremiumOvertime),
			Weekend:         optionalRate(cfg.Rates.Weekend),
			Holiday:         optionalRate(cfg.Rates.Holiday),
		},
	}

	if cfg.Hours.MinPerWeek != nil {
		v := decimal.NewFromFloat(*cfg.Hours.MinPerWeek)
		rs.Hours.MinPerWeek = &v
	}
	if cfg.ExpiresAt != "" {
		expires, err := parseDate(cfg.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_at: %w", err)
		}
		rs.ExpiresAt = &expires
	}
	if cfg.Scheduling.EarliestStart != "" {
		tod, err := parseTimeOfDay(cfg.Scheduling.EarliestStart)
		if err != nil {
			return nil, fmt.Errorf("invalid earliest_start: %w", err)
		}
		rs.Scheduling.EarliestStart = &tod
	}
	if cfg.Scheduling.LatestEnd != "" {
		tod, err := parseTimeOfDay(cfg.Scheduling.LatestEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid latest_end: %w", err)
		}
		rs.Scheduling.LatestEnd = &tod
	}

	return rules.New(rs)
}

func optionalRate(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseTimeOfDay(s string) (rules.TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return rules.NewTimeOfDay(t.Hour(), t.Minute()), nil
}
