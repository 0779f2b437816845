// Package okr implements the trajectory and status engine: period week math,
// per-week target generation and the weeks-behind status heuristic.
//
// Every function is pure. Callers pass dates and "now" explicitly; nothing
// here reads the wall clock, touches storage or returns an error. Degenerate
// input yields a defined fallback value instead.
package okr

import (
	"time"

	"github.com/starford/okrtrack/internal/models"
)

const day = 24 * time.Hour

// civil strips time-of-day and location, keeping the calendar date as seen
// in t's own location.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)) / day)
}

// MondayOf returns the Monday that begins the ISO week containing t, as a
// UTC calendar date.
func MondayOf(t time.Time) time.Time {
	d := civil(t)
	// Weekday: Sunday=0 ... Saturday=6; shift so Monday=0.
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// TotalWeeks returns ceil(inclusive day count / 7). An inverted range yields 0.
func TotalWeeks(start, end time.Time) int {
	days := daysBetween(start, end) + 1
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}

// CurrentWeek returns the 1-based week of the period containing now, with 0
// meaning the period has not started and TotalWeeks meaning it is over.
// Weeks are Monday-aligned: a period starting on a Wednesday is in week 1
// until the following Sunday.
func CurrentWeek(start, end, now time.Time) int {
	total := TotalWeeks(start, end)
	n := civil(now)
	if n.Before(civil(start)) {
		return 0
	}
	if n.After(civil(end)) {
		return total
	}
	week := daysBetween(MondayOf(start), MondayOf(n))/7 + 1
	if week > total {
		return total
	}
	return week
}

// WeekStart returns the Monday that begins the given 1-based week of a period
// starting at start. Week values below 1 map to week 1.
func WeekStart(start time.Time, week int) time.Time {
	if week < 1 {
		week = 1
	}
	return MondayOf(start).AddDate(0, 0, 7*(week-1))
}

// WeekOf maps a date onto the period's week index, lifting pre-period dates
// to week 1. It is how check-ins are assigned to weeks.
func WeekOf(start, end, date time.Time) int {
	w := CurrentWeek(start, end, date)
	if w < 1 {
		return 1
	}
	return w
}

// PeriodContext is the single canonical answer to "what week is it" for a
// period. Every view derives week numbers from this.
type PeriodContext struct {
	Name        string    `json:"name"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalWeeks  int       `json:"total_weeks"`
	CurrentWeek int       `json:"current_week"`
}

// PeriodContextFor computes the PeriodContext of p at now.
func PeriodContextFor(p models.Period, now time.Time) PeriodContext {
	return PeriodContext{
		Name:        p.Name,
		StartDate:   civil(p.StartDate),
		EndDate:     civil(p.EndDate),
		TotalWeeks:  TotalWeeks(p.StartDate, p.EndDate),
		CurrentWeek: CurrentWeek(p.StartDate, p.EndDate, now),
	}
}
