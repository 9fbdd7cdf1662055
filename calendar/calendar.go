/*
Package calendar provides holiday calendar implementations for the engine.

PURPOSE:
  The engine consumes the Calendar interface and defaults to "no date is a
  holiday". This package supplies real implementations:
  - Static:    an explicit list of dates
  - Recurring: RRULE-based recurrences (e.g. "every Dec 25")
  - Multi:     union of several calendars

  Recurrences use the same RRULE grammar scheduling tools exchange, so a
  company's existing holiday definitions can be loaded verbatim.

USAGE:
  cal, err := calendar.NewRecurring(
      "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", // Christmas
      "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1",   // New Year
  )
  eng := engine.New(store, store, store, engine.WithCalendar(cal))
*/
package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

const dayFormat = "2006-01-02"

// =============================================================================
// STATIC - Explicit holiday dates
// =============================================================================

type Static struct {
	dates map[string]bool
}

func NewStatic(dates ...time.Time) *Static {
	s := &Static{dates: make(map[string]bool, len(dates))}
	for _, d := range dates {
		s.dates[d.Format(dayFormat)] = true
	}
	return s
}

// Add registers another holiday date.
func (s *Static) Add(date time.Time) {
	s.dates[date.Format(dayFormat)] = true
}

func (s *Static) IsHoliday(date time.Time) bool {
	return s.dates[date.Format(dayFormat)]
}

// =============================================================================
// RECURRING - RRULE-based holidays
// =============================================================================

// rruleAnchor is a fixed DTSTART so recurrences expand over any query year.
var rruleAnchor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type Recurring struct {
	rules []*rrule.RRule
}

// NewRecurring parses RRULE strings (e.g. "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25").
// Invalid rules are rejected up front, not at lookup time.
func NewRecurring(ruleStrs ...string) (*Recurring, error) {
	r := &Recurring{}
	for i, s := range ruleStrs {
		rule, err := rrule.StrToRRule(s)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday rrule at index %d: %w", i, err)
		}
		rule.DTStart(rruleAnchor)
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

func (r *Recurring) IsHoliday(date time.Time) bool {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)
	for _, rule := range r.rules {
		if len(rule.Between(dayStart, dayEnd, true)) > 0 {
			return true
		}
	}
	return false
}

// =============================================================================
// MULTI - Union of calendars
// =============================================================================

type Calendar interface {
	IsHoliday(date time.Time) bool
}

type Multi []Calendar

func (m Multi) IsHoliday(date time.Time) bool {
	for _, c := range m {
		if c.IsHoliday(date) {
			return true
		}
	}
	return false
}
