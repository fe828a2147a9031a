package availability

import (
	"testing"
	"time"
)

func TestMonthGridCoversWholeWeeks(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	now := date(2026, time.March, 10, 10, 0)

	cells := MonthGrid(2026, time.March, rules, now)
	if len(cells)%7 != 0 {
		t.Fatalf("grid length %d is not a multiple of 7", len(cells))
	}
	if cells[0].Date.Weekday() != time.Monday {
		t.Fatalf("grid should start on Monday, got %v", cells[0].Date.Weekday())
	}
	if cells[len(cells)-1].Date.Weekday() != time.Sunday {
		t.Fatalf("grid should end on Sunday, got %v", cells[len(cells)-1].Date.Weekday())
	}
}

func TestMonthGridFlags(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	now := date(2026, time.March, 10, 10, 0)

	cells := MonthGrid(2026, time.March, rules, now)
	byDay := map[string]CalendarDay{}
	for _, c := range cells {
		byDay[c.Date.Format("2006-01-02")] = c
	}

	today := byDay["2026-03-10"]
	if !today.Today || today.Past {
		t.Fatalf("2026-03-10 should be today: %+v", today)
	}

	past := byDay["2026-03-02"]
	if !past.Past || past.Selectable {
		t.Fatalf("past Monday should be unselectable: %+v", past)
	}
	if !past.HasRule {
		t.Fatal("HasRule ignores elapsed time and should be true for any Monday")
	}

	future := byDay["2026-03-16"]
	if !future.Selectable {
		t.Fatalf("future Monday should be selectable: %+v", future)
	}

	tuesday := byDay["2026-03-17"]
	if tuesday.HasRule || tuesday.Selectable {
		t.Fatalf("Tuesday has no rule and should be unselectable: %+v", tuesday)
	}
}

func TestMonthGridAdjacentMonthCellsNeverSelectable(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	now := date(2026, time.March, 10, 10, 0)

	// April 2026 starts on a Wednesday: the grid is padded with the last
	// days of March, including Monday 2026-03-30 which would otherwise be
	// selectable.
	cells := MonthGrid(2026, time.April, rules, now)
	for _, c := range cells {
		if !c.InMonth && c.Selectable {
			t.Fatalf("cell outside displayed month must not be selectable: %+v", c)
		}
	}
	if cells[0].Date.Format("2006-01-02") != "2026-03-30" {
		t.Fatalf("expected April grid to start at 2026-03-30, got %s", cells[0].Date.Format("2006-01-02"))
	}
}
