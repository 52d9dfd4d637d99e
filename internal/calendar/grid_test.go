package calendar

import (
	"testing"
	"time"
)

type datedItem struct {
	at time.Time
}

func itemAt(value string) datedItem {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return datedItem{at: t}
}

func dateOf(i datedItem) time.Time { return i.at }

func TestMonthGridShape(t *testing.T) {
	ref := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

	days := MonthGrid(nil, dateOf, ref, now, time.Monday, time.UTC)

	if len(days) != GridCells {
		t.Fatalf("expected %d cells, got %d", GridCells, len(days))
	}

	// October 2025 starts on a Wednesday; the grid must begin on Monday
	// September 29.
	first := days[0].Date
	if first.Weekday() != time.Monday {
		t.Fatalf("grid should start on Monday, got %s", first.Weekday())
	}
	if first.Day() != 29 || first.Month() != time.September {
		t.Fatalf("expected grid to start 2025-09-29, got %s", first.Format(time.DateOnly))
	}

	last := days[len(days)-1].Date
	if last.Day() != 9 || last.Month() != time.November {
		t.Fatalf("expected grid to end 2025-11-09, got %s", last.Format(time.DateOnly))
	}
}

func TestMonthGridFlags(t *testing.T) {
	ref := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

	days := MonthGrid(nil, dateOf, ref, now, time.Monday, time.UTC)

	var currentMonth, todays, pasts int
	for _, d := range days {
		if d.IsCurrentMonth {
			currentMonth++
		}
		if d.IsToday {
			todays++
			if d.Date.Day() != 15 {
				t.Fatalf("IsToday set on %s", d.Date.Format(time.DateOnly))
			}
			if d.IsPast {
				t.Fatal("today must not be flagged past")
			}
		}
		if d.IsPast {
			pasts++
		}
	}

	if currentMonth != 31 {
		t.Fatalf("October has 31 days, flagged %d", currentMonth)
	}
	if todays != 1 {
		t.Fatalf("expected exactly one today cell, got %d", todays)
	}
	// Sep 29 + 30 leading days plus Oct 1..14.
	if pasts != 2+14 {
		t.Fatalf("expected 16 past cells, got %d", pasts)
	}
}

func TestMonthGridBucketsItems(t *testing.T) {
	items := []datedItem{
		itemAt("2025-10-20T09:00:00Z"),
		itemAt("2025-10-20T09:30:00Z"),
		itemAt("2025-10-21T10:00:00Z"),
		itemAt("2025-11-02T10:00:00Z"), // outside the grid
	}

	ref := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	days := MonthGrid(items, dateOf, ref, now, time.Monday, time.UTC)

	byDate := make(map[string]Day[datedItem])
	for _, d := range days {
		byDate[d.Date.Format(time.DateOnly)] = d
	}

	if got := len(byDate["2025-10-20"].Items); got != 2 {
		t.Fatalf("expected 2 items on 2025-10-20, got %d", got)
	}
	if got := len(byDate["2025-10-21"].Items); got != 1 {
		t.Fatalf("expected 1 item on 2025-10-21, got %d", got)
	}
	// Nov 2 is within the 42-cell grid for October (ends Nov 9).
	if got := len(byDate["2025-11-02"].Items); got != 1 {
		t.Fatalf("expected 1 item on trailing day 2025-11-02, got %d", got)
	}
}

func TestMonthGridTimezoneBoundary(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 01:00 UTC on Oct 21 is still Oct 20 in Buenos Aires (UTC-3).
	items := []datedItem{itemAt("2025-10-21T01:00:00Z")}

	ref := time.Date(2025, time.October, 1, 0, 0, 0, 0, loc)
	now := time.Date(2025, time.October, 1, 0, 0, 0, 0, loc)

	days := MonthGrid(items, dateOf, ref, now, time.Monday, loc)
	for _, d := range days {
		key := d.Date.Format(time.DateOnly)
		if key == "2025-10-20" && len(d.Items) != 1 {
			t.Fatalf("item should bucket to Oct 20 in %s", loc)
		}
		if key == "2025-10-21" && len(d.Items) != 0 {
			t.Fatal("item must not bucket to Oct 21 in local time")
		}
	}
}

func TestCountByDay(t *testing.T) {
	items := []datedItem{
		itemAt("2025-10-20T09:00:00Z"),
		itemAt("2025-10-20T14:00:00Z"),
		itemAt("2025-10-22T09:00:00Z"),
	}

	counts := CountByDay(items, dateOf, time.UTC)

	if counts["2025-10-20"] != 2 || counts["2025-10-22"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 days, got %d", len(counts))
	}
}
