// Package calendar lays out month grids and places events on them.
package calendar

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"itdash/internal/model"
)

// DateLayout is the wire format of event dates.
const DateLayout = "2006-01-02"

// Day is one cell of a month grid.
type Day struct {
	Date    time.Time
	InMonth bool
}

// Week is seven consecutive days starting on the grid's first weekday.
type Week [7]Day

// MonthGrid returns the whole weeks that cover month. Days before the 1st
// and after the last day belong to the neighbouring months and have
// InMonth false.
func MonthGrid(year int, month time.Month, weekStart time.Weekday) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	start := first.AddDate(0, 0, -lead)

	last := first.AddDate(0, 1, -1)
	cells := lead + last.Day()
	weeks := make([]Week, (cells+6)/7)

	for w := range weeks {
		for d := range 7 {
			date := start.AddDate(0, 0, w*7+d)
			weeks[w][d] = Day{Date: date, InMonth: date.Month() == month}
		}
	}
	return weeks
}

// NextMonth returns the month after (year, month).
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PrevMonth returns the month before (year, month).
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// EventsOn returns the events dated on day, ordered by time.
func EventsOn(events []model.Event, day time.Time) []model.Event {
	key := day.Format(DateLayout)
	var out []model.Event
	for _, e := range events {
		if e.Date == key {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Event) int { return cmp.Compare(a.Time, b.Time) })
	return out
}

// EventsInMonth returns the events dated inside month, ordered by date and
// time. Events whose date does not parse are skipped.
func EventsInMonth(events []model.Event, year int, month time.Month) []model.Event {
	var out []model.Event
	for _, e := range events {
		d, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			continue
		}
		if d.Year() == year && d.Month() == month {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Event) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.Time, b.Time))
	})
	return out
}
