package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/calendar"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStatic_ExplicitDates(t *testing.T) {
	cal := calendar.NewStatic(day(2025, time.July, 4))
	cal.Add(day(2025, time.November, 27))

	assert.True(t, cal.IsHoliday(day(2025, time.July, 4)))
	assert.True(t, cal.IsHoliday(day(2025, time.November, 27)))
	assert.False(t, cal.IsHoliday(day(2025, time.July, 5)))

	// Time of day within the date does not matter.
	assert.True(t, cal.IsHoliday(time.Date(2025, time.July, 4, 14, 30, 0, 0, time.UTC)))
}

func TestRecurring_YearlyRules(t *testing.T) {
	cal, err := calendar.NewRecurring(
		"FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25",
		"FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1",
	)
	require.NoError(t, err)

	// The recurrence holds across years.
	assert.True(t, cal.IsHoliday(day(2024, time.December, 25)))
	assert.True(t, cal.IsHoliday(day(2031, time.December, 25)))
	assert.True(t, cal.IsHoliday(day(2026, time.January, 1)))
	assert.False(t, cal.IsHoliday(day(2025, time.December, 24)))
	assert.False(t, cal.IsHoliday(day(2025, time.June, 15)))
}

func TestRecurring_InvalidRule_RejectedUpFront(t *testing.T) {
	_, err := calendar.NewRecurring("NOT-AN-RRULE")
	assert.Error(t, err)
}

func TestMulti_Union(t *testing.T) {
	national, err := calendar.NewRecurring("FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1")
	require.NoError(t, err)
	company := calendar.NewStatic(day(2025, time.March, 14))

	cal := calendar.Multi{national, company}
	assert.True(t, cal.IsHoliday(day(2025, time.January, 1)))
	assert.True(t, cal.IsHoliday(day(2025, time.March, 14)))
	assert.False(t, cal.IsHoliday(day(2025, time.March, 15)))
}
