package factory

// =============================================================================
// BUILT-IN CATEGORY PRESETS
// =============================================================================
// Starting points for the common worker categories. Seeded by cmd/server
// and reused by tests; production deployments author their own versions.

import "github.com/warp/compliance-engine/rules"

// BuiltIn returns validated rule sets for the built-in categories, all
// effective from the given date string (YYYY-MM-DD).
func BuiltIn(effectiveFrom string) ([]rules.RuleSet, error) {
	f := NewFactory()
	premiumOT := 2.0
	weekend := 1.25
	holiday := 2.5
	contractorWeekend := 1.0

	configs := []RuleSetJSON{
		{
			ID: "standard-v1", Category: "standard", Name: "Standard Full-Time",
			Version: 1, Default: true, EffectiveFrom: effectiveFrom,
			Hours: HoursJSON{
				StandardPerDay: 8, MaxPerDay: 12,
				StandardPerWeek: 40, MaxPerWeek: 60,
				DailyOvertimeThreshold: 8, WeeklyOvertimeThreshold: 40,
			},
			Breaks: BreaksJSON{
				MinBreakMinutes: 30, MaxWorkWithoutBreak: 5,
				LunchRequired: true, LunchMinutes: 30,
				RestBetweenShifts: 11,
			},
			Scheduling: SchedulingJSON{
				MaxConsecutiveDays: 6, MinRestDaysPerWeek: 1,
				AdvanceNoticeHours: 24, WeekendAllowed: true,
			},
			Rates: RatesJSON{Overtime: 1.5, PremiumOvertime: &premiumOT, Weekend: &weekend},
		},
		{
			ID: "retail-v1", Category: "retail", Name: "Retail Shift Staff",
			Version: 1, Default: true, EffectiveFrom: effectiveFrom,
			Hours: HoursJSON{
				StandardPerDay: 8, MaxPerDay: 10,
				StandardPerWeek: 38, MaxPerWeek: 48,
				DailyOvertimeThreshold: 8, WeeklyOvertimeThreshold: 38,
			},
			Breaks: BreaksJSON{
				MinBreakMinutes: 20, MaxWorkWithoutBreak: 4.5,
				LunchRequired: true, LunchMinutes: 45,
				RestBetweenShifts: 12,
			},
			Scheduling: SchedulingJSON{
				MaxConsecutiveDays: 5, MinRestDaysPerWeek: 2,
				AdvanceNoticeHours: 48,
				EarliestStart:      "06:00", LatestEnd: "22:00",
				WeekendAllowed: true, HolidayAllowed: true,
			},
			Rates: RatesJSON{Overtime: 1.5, Weekend: &weekend, Holiday: &holiday},
		},
		{
			ID: "healthcare-v1", Category: "healthcare", Name: "Healthcare Rotational",
			Version: 1, Default: true, EffectiveFrom: effectiveFrom,
			Hours: HoursJSON{
				StandardPerDay: 12, MaxPerDay: 14,
				StandardPerWeek: 36, MaxPerWeek: 48,
				DailyOvertimeThreshold: 12, WeeklyOvertimeThreshold: 36,
			},
			Breaks: BreaksJSON{
				MinBreakMinutes: 45, MaxWorkWithoutBreak: 6,
				LunchRequired: true, LunchMinutes: 45,
				RestBetweenShifts: 10,
			},
			Scheduling: SchedulingJSON{
				MaxConsecutiveDays: 4, MinRestDaysPerWeek: 2,
				AdvanceNoticeHours: 12,
				WeekendAllowed:     true, HolidayAllowed: true, NightShiftAllowed: true,
			},
			Rates: RatesJSON{Overtime: 1.5, PremiumOvertime: &premiumOT, Weekend: &weekend, Holiday: &holiday},
		},
		{
			ID: "contractor-v1", Category: "contractor", Name: "Independent Contractor",
			Version: 1, Default: true, EffectiveFrom: effectiveFrom,
			Hours: HoursJSON{
				StandardPerDay: 8, MaxPerDay: 12,
				StandardPerWeek: 40, MaxPerWeek: 50,
				DailyOvertimeThreshold: 10, WeeklyOvertimeThreshold: 45,
			},
			Breaks: BreaksJSON{
				MinBreakMinutes: 0, MaxWorkWithoutBreak: 0,
				RestBetweenShifts: 8,
			},
			Scheduling: SchedulingJSON{
				MaxConsecutiveDays: 10, ConsecutiveLookbackDays: 14,
				WeekendAllowed:     true, HolidayAllowed: true, NightShiftAllowed: true,
			},
			Rates: RatesJSON{Overtime: 1.0, Weekend: &contractorWeekend},
		},
	}

	out := make([]rules.RuleSet, 0, len(configs))
	for _, cfg := range configs {
		rs, err := f.Build(cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, *rs)
	}
	return out, nil
}
