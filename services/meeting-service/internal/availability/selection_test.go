package availability

import (
	"strings"
	"testing"
	"time"
)

func TestSelectionResetsDownstream(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	sel := NewSelection(rules)

	sel.SelectDate(date(2026, time.March, 2, 0, 0))
	if err := sel.SelectRange(rules[0]); err != nil {
		t.Fatalf("SelectRange failed: %v", err)
	}
	if err := sel.SelectInstant("09:30"); err != nil {
		t.Fatalf("SelectInstant failed: %v", err)
	}
	if sel.State() != StateInstantSelected {
		t.Fatalf("expected instant_selected, got %v", sel.State())
	}

	// Re-picking a date invalidates the range and instant.
	sel.SelectDate(date(2026, time.March, 9, 0, 0))
	if sel.State() != StateDateSelected || sel.Instant() != "" {
		t.Fatalf("selecting a new date should reset downstream choices: state=%v instant=%q", sel.State(), sel.Instant())
	}

	// Re-picking a range invalidates only the instant.
	if err := sel.SelectRange(rules[0]); err != nil {
		t.Fatalf("SelectRange failed: %v", err)
	}
	if err := sel.SelectInstant("10:00"); err != nil {
		t.Fatalf("SelectInstant failed: %v", err)
	}
	if err := sel.SelectRange(rules[0]); err != nil {
		t.Fatalf("SelectRange failed: %v", err)
	}
	if sel.State() != StateRangeSelected || sel.Instant() != "" {
		t.Fatalf("selecting a new range should reset the instant: state=%v instant=%q", sel.State(), sel.Instant())
	}
}

func TestSelectionOrderEnforced(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	sel := NewSelection(rules)

	if err := sel.SelectRange(rules[0]); err == nil {
		t.Fatal("expected error selecting a range before a date")
	}
	if err := sel.SelectInstant("09:00"); err == nil {
		t.Fatal("expected error selecting an instant before a range")
	}
}

func TestConfirmHappyPath(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	sel := NewSelection(rules)
	now := date(2026, time.February, 26, 10, 0)

	sel.SelectDate(date(2026, time.March, 2, 0, 0))
	_ = sel.SelectRange(rules[0])
	_ = sel.SelectInstant("09:30")
	sel.SetQuantity(2)

	if v := sel.Confirm(3, now); len(v) != 0 {
		t.Fatalf("expected no violations, got %v", v)
	}
	if sel.State() != StateConfirmed {
		t.Fatalf("expected confirmed, got %v", sel.State())
	}
}

func TestConfirmQuantityExceedsStock(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	sel := NewSelection(rules)
	now := date(2026, time.February, 26, 10, 0)

	sel.SelectDate(date(2026, time.March, 2, 0, 0))
	_ = sel.SelectRange(rules[0])
	_ = sel.SelectInstant("09:30")
	sel.SetQuantity(5)

	violations := sel.Confirm(3, now)
	if len(violations) != 1 {
		t.Fatalf("expected one violation, got %v", violations)
	}
	if !strings.Contains(violations[0], "5") || !strings.Contains(violations[0], "3") {
		t.Fatalf("violation should name the excess: %q", violations[0])
	}
	if sel.State() != StateInstantSelected {
		t.Fatalf("state must not advance on violation, got %v", sel.State())
	}
}

func TestConfirmReportsAllViolationsAtOnce(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true}}
	sel := NewSelection(rules)
	sel.SetQuantity(0)
	now := date(2026, time.February, 26, 10, 0)

	violations := sel.Confirm(3, now)
	// Missing date, range, instant, and non-positive quantity.
	if len(violations) != 4 {
		t.Fatalf("expected 4 violations, got %v", violations)
	}
	if sel.State() != StateNoDate {
		t.Fatalf("state must not advance, got %v", sel.State())
	}
}

func TestConfirmRevalidatesDateAgainstClock(t *testing.T) {
	rules := []Rule{{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 10 * 60, Active: true}}
	sel := NewSelection(rules)

	// Selected while the window was still open...
	sel.SelectDate(date(2026, time.March, 2, 0, 0))
	_ = sel.SelectRange(rules[0])
	_ = sel.SelectInstant("09:45")
	sel.SetQuantity(1)

	// ...but the clock advanced past the last offerable instant.
	violations := sel.Confirm(3, date(2026, time.March, 2, 9, 58))
	if len(violations) != 1 || !strings.Contains(violations[0], "no longer available") {
		t.Fatalf("expected date-no-longer-available violation, got %v", violations)
	}
	if sel.State() != StateInstantSelected {
		t.Fatalf("state must not advance, got %v", sel.State())
	}
}
