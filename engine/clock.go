package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME HELPERS - Day and week arithmetic
// =============================================================================

// DefaultWeekStart anchors weekly accumulation. Weekly caps, the weekly
// overtime threshold, and payroll re-accumulation all share this boundary.
const DefaultWeekStart = time.Monday

var sixty = decimal.NewFromInt(60)

func durationHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Minute)).Div(sixty)
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// weekBounds returns the half-open week [start, end) containing t for the
// given week-start day.
func weekBounds(t time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	day := startOfDay(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Night window: shifts touching [22:00, 06:00) count as night shifts.
const (
	nightStartHour = 22
	nightEndHour   = 6
)

// isNightShift reports whether any part of [start, end) falls inside the
// night window.
func isNightShift(start, end time.Time) bool {
	for cur := start; cur.Before(end); cur = cur.Add(time.Hour) {
		h := cur.Hour()
		if h >= nightStartHour || h < nightEndHour {
			return true
		}
	}
	// The sweep is hour-granular; check the final boundary too.
	lastHour := end.Add(-time.Minute).Hour()
	return end.After(start) && (lastHour >= nightStartHour || lastHour < nightEndHour)
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Calendar answers whether a date is a public holiday. Injected so a real
// calendar can replace the default without touching classification logic.
type Calendar interface {
	IsHoliday(date time.Time) bool
}

// DefaultCalendar treats no date as a holiday, matching upstream behavior
// when no calendar is wired.
type DefaultCalendar struct{}

func (DefaultCalendar) IsHoliday(time.Time) bool { return false }
