package availability

import (
	"reflect"
	"testing"
	"time"
)

// 2026-03-02 is a Monday.
func date(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestDateSelectablePastDates(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	now := date(2026, time.March, 4, 10, 0)

	if DateSelectable(date(2026, time.March, 2, 0, 0), rules, now) {
		t.Fatal("past Monday should not be selectable")
	}
	// Late in the day still counts as the same past date after normalization.
	if DateSelectable(date(2026, time.March, 2, 23, 59), rules, now) {
		t.Fatal("past date with time component should not be selectable")
	}
}

func TestDateSelectableNoWeekdayRule(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	now := date(2026, time.March, 2, 8, 0)

	// 2026-03-03 is a Tuesday, no rule.
	if DateSelectable(date(2026, time.March, 3, 0, 0), rules, now) {
		t.Fatal("date without a weekday rule should not be selectable")
	}
}

func TestDateSelectableTodayLeadMargin(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 10 * 60, Active: true}}
	today := date(2026, time.March, 2, 0, 0)

	// Rule ends 10:00; at 09:56 the remaining window is within the margin.
	if DateSelectable(today, rules, date(2026, time.March, 2, 9, 56)) {
		t.Fatal("rule ending within the lead margin should not make today selectable")
	}
	// Boundary: end == now+5 is not strictly greater.
	if DateSelectable(today, rules, date(2026, time.March, 2, 9, 55)) {
		t.Fatal("rule ending exactly at now+5min should not make today selectable")
	}
	if !DateSelectable(today, rules, date(2026, time.March, 2, 9, 54)) {
		t.Fatal("rule ending more than 5min from now should make today selectable")
	}
}

func TestDateSelectableFutureIgnoresTimeOfDay(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 10 * 60, Active: true}}
	// Late Sunday evening; next Monday's window is still fully offerable.
	now := date(2026, time.March, 1, 23, 0)

	if !DateSelectable(date(2026, time.March, 2, 0, 0), rules, now) {
		t.Fatal("future date with a weekday match should be selectable regardless of time")
	}
}

func TestRangesForDateWeekdayFilter(t *testing.T) {
	rules := []Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true},
		{Weekday: time.Wednesday, StartMinute: 14 * 60, EndMinute: 16 * 60, Active: true},
	}
	now := date(2026, time.February, 27, 8, 0)

	got := RangesForDate(date(2026, time.March, 2, 0, 0), rules, now)
	if len(got) != 1 || got[0].Weekday != time.Monday {
		t.Fatalf("expected only the Monday rule, got %+v", got)
	}
}

func TestRangesForDateFutureKeepsDeclaredOrder(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	rules := []Rule{
		{Weekday: time.Wednesday, StartMinute: 9 * 60, EndMinute: 11 * 60, Active: true},
		{Weekday: time.Wednesday, StartMinute: 14 * 60, EndMinute: 16 * 60, Active: true},
	}
	now := date(2026, time.March, 2, 10, 0)

	got := RangesForDate(date(2026, time.March, 4, 0, 0), rules, now)
	if len(got) != 2 {
		t.Fatalf("expected both Wednesday ranges, got %d", len(got))
	}
	if got[0].StartMinute != 9*60 || got[1].StartMinute != 14*60 {
		t.Fatalf("ranges out of declared order: %+v", got)
	}
}

func TestRangesForDateTodayDropsElapsed(t *testing.T) {
	rules := []Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 11 * 60, Active: true},
		{Weekday: time.Monday, StartMinute: 14 * 60, EndMinute: 16 * 60, Active: true},
	}
	now := date(2026, time.March, 2, 12, 0)

	got := RangesForDate(date(2026, time.March, 2, 0, 0), rules, now)
	if len(got) != 1 || got[0].StartMinute != 14*60 {
		t.Fatalf("expected only the afternoon range, got %+v", got)
	}

	// All ranges elapsed renders the same as nothing configured.
	got = RangesForDate(date(2026, time.March, 2, 0, 0), rules, date(2026, time.March, 2, 17, 0))
	if len(got) != 0 {
		t.Fatalf("expected no ranges after all have elapsed, got %+v", got)
	}
}

func TestRangesForDateDoesNotFilterInactive(t *testing.T) {
	// The enable flag exists in the data contract but resolution does not
	// consult it; callers filter beforehand if they want active-only.
	rules := []Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 11 * 60, Active: false},
	}
	now := date(2026, time.February, 27, 8, 0)

	got := RangesForDate(date(2026, time.March, 2, 0, 0), rules, now)
	if len(got) != 1 {
		t.Fatalf("inactive rule should still be returned, got %+v", got)
	}
}

func TestSlotsFutureFullRange(t *testing.T) {
	rule := Rule{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}
	now := date(2026, time.February, 26, 15, 30)

	got := Slots(rule, date(2026, time.March, 2, 0, 0), now)
	want := []string{
		"09:00", "09:15", "09:30", "09:45",
		"10:00", "10:15", "10:30", "10:45",
		"11:00", "11:15", "11:30", "11:45",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestSlotsEndBoundaryIsOpen(t *testing.T) {
	rule := Rule{Weekday: time.Monday, StartMinute: 17 * 60, EndMinute: 18 * 60, Active: true}
	now := date(2026, time.February, 26, 8, 0)

	got := Slots(rule, date(2026, time.March, 2, 0, 0), now)
	for _, s := range got {
		if s == "18:00" {
			t.Fatal("range ending at 18:00 must not offer 18:00 itself")
		}
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 slots, got %v", got)
	}
}

func TestSlotsTodayRoundsUpToQuarterHour(t *testing.T) {
	rule := Rule{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 11 * 60, Active: true}
	// 09:37 + 5min margin = 09:42, rounded up to 09:45.
	now := date(2026, time.March, 2, 9, 37)

	got := Slots(rule, date(2026, time.March, 2, 0, 0), now)
	want := []string{"09:45", "10:00", "10:15", "10:30", "10:45"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestSlotsTodayFullyElapsedRange(t *testing.T) {
	rule := Rule{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 10 * 60, Active: true}
	// 09:50 + 5 = 09:55, rounded up to 10:00, which is not < 10:00.
	now := date(2026, time.March, 2, 9, 50)

	if got := Slots(rule, date(2026, time.March, 2, 0, 0), now); len(got) != 0 {
		t.Fatalf("expected no slots, got %v", got)
	}
}

func TestSlotsTodayBeforeRangeStartsUnchanged(t *testing.T) {
	rule := Rule{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 10 * 60, Active: true}
	// 08:00 + 5 = 08:05 does not exceed the range start; no clipping.
	now := date(2026, time.March, 2, 8, 0)

	got := Slots(rule, date(2026, time.March, 2, 0, 0), now)
	want := []string{"09:00", "09:15", "09:30", "09:45"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestSlotsFutureOffGridStartIsLiteral(t *testing.T) {
	// An off-grid configured start is used as-is for future dates.
	rule := Rule{Weekday: time.Monday, StartMinute: 9*60 + 7, EndMinute: 10 * 60, Active: true}
	now := date(2026, time.February, 26, 8, 0)

	got := Slots(rule, date(2026, time.March, 2, 0, 0), now)
	want := []string{"09:07", "09:22", "09:37", "09:52"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestResolverIdempotence(t *testing.T) {
	rules := []Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true},
		{Weekday: time.Wednesday, StartMinute: 14 * 60, EndMinute: 16 * 60, Active: true},
	}
	now := date(2026, time.March, 2, 9, 37)
	day := date(2026, time.March, 2, 0, 0)

	if DateSelectable(day, rules, now) != DateSelectable(day, rules, now) {
		t.Fatal("DateSelectable is not idempotent")
	}
	if !reflect.DeepEqual(RangesForDate(day, rules, now), RangesForDate(day, rules, now)) {
		t.Fatal("RangesForDate is not idempotent")
	}
	if !reflect.DeepEqual(Slots(rules[0], day, now), Slots(rules[0], day, now)) {
		t.Fatal("Slots is not idempotent")
	}
}

func TestParseMinute(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"garbage", 0, true},
	}
	for _, c := range cases {
		got, err := ParseMinute(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseMinute(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMinute(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseMinute(%q) = %d, want %d", c.in, got, c.want)
		}
		if back := FormatMinute(got); back != c.in {
			t.Fatalf("FormatMinute(%d) = %q, want %q", got, back, c.in)
		}
	}
}
