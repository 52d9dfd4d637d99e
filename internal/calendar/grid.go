// Package calendar provides the single month-grid bucketing implementation
// used by availability views. It is pure: every function is deterministic
// given its inputs and touches no shared state.
package calendar

import (
	"time"
)

// GridCells is the fixed size of a month view: 6 weeks of 7 days, enough to
// cover any month together with its leading and trailing neighbors.
const GridCells = 42

// Day is one cell of the grid, tagged with the month/today/past flags and
// the input items whose date component falls on it.
type Day[T any] struct {
	Date           time.Time
	IsCurrentMonth bool
	IsToday        bool
	IsPast         bool
	Items          []T
}

// MonthGrid buckets items into a 42-cell grid covering referenceMonth.
// Dates are interpreted in loc; weekStart selects the first column
// (TurnoPlus uses Monday). now only drives the IsToday/IsPast flags, so
// callers control it for reproducibility.
func MonthGrid[T any](
	items []T,
	dateOf func(T) time.Time,
	referenceMonth time.Time,
	now time.Time,
	weekStart time.Weekday,
	loc *time.Location,
) []Day[T] {
	ref := referenceMonth.In(loc)
	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)

	// Walk back from the 1st to the nearest weekStart.
	offset := (int(firstOfMonth.Weekday()) - int(weekStart) + 7) % 7
	gridStart := firstOfMonth.AddDate(0, 0, -offset)

	byDay := make(map[string][]T)
	for _, item := range items {
		key := dateOf(item).In(loc).Format(time.DateOnly)
		byDay[key] = append(byDay[key], item)
	}

	today := now.In(loc).Format(time.DateOnly)
	todayStart := startOfDay(now.In(loc))

	days := make([]Day[T], 0, GridCells)
	for i := 0; i < GridCells; i++ {
		date := gridStart.AddDate(0, 0, i)
		key := date.Format(time.DateOnly)

		days = append(days, Day[T]{
			Date:           date,
			IsCurrentMonth: date.Month() == ref.Month(),
			IsToday:        key == today,
			IsPast:         date.Before(todayStart),
			Items:          byDay[key],
		})
	}

	return days
}

// CountByDay groups items by their date component in loc and counts them.
// Keys use the YYYY-MM-DD format. The explicit location keeps midnight
// boundaries deterministic regardless of server timezone.
func CountByDay[T any](items []T, dateOf func(T) time.Time, loc *time.Location) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[dateOf(item).In(loc).Format(time.DateOnly)]++
	}
	return counts
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
