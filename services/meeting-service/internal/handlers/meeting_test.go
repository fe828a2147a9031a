package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/electromarket/electromarket/services/meeting-service/internal/availability"
)

// 2026-03-02 is a Monday.
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateSelectionAccepts(t *testing.T) {
	rules := []availability.Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true},
	}
	now := time.Date(2026, time.February, 26, 10, 0, 0, 0, time.UTC)

	if v := validateSelection(rules, day(2026, time.March, 2), "09:30", 2, 5, now); len(v) != 0 {
		t.Fatalf("expected no violations, got %v", v)
	}
}

func TestValidateSelectionRejectsOffSlotInstant(t *testing.T) {
	rules := []availability.Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true},
	}
	now := time.Date(2026, time.February, 26, 10, 0, 0, 0, time.UTC)

	// 09:20 falls inside the range but is not on the 15-minute grid.
	v := validateSelection(rules, day(2026, time.March, 2), "09:20", 1, 5, now)
	if len(v) == 0 {
		t.Fatal("expected a violation for an off-grid instant")
	}
	if !containsSubstring(v, "not offerable") {
		t.Fatalf("expected not-offerable violation, got %v", v)
	}
}

func TestValidateSelectionInstantOutsideAnyRange(t *testing.T) {
	rules := []availability.Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true},
	}
	now := time.Date(2026, time.February, 26, 10, 0, 0, 0, time.UTC)

	v := validateSelection(rules, day(2026, time.March, 2), "14:00", 1, 5, now)
	if !containsSubstring(v, "no time range selected") {
		t.Fatalf("expected no-range violation, got %v", v)
	}
}

func TestValidateSelectionQuantityExceedsStock(t *testing.T) {
	rules := []availability.Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true},
	}
	now := time.Date(2026, time.February, 26, 10, 0, 0, 0, time.UTC)

	v := validateSelection(rules, day(2026, time.March, 2), "09:30", 5, 3, now)
	if len(v) != 1 || !strings.Contains(v[0], "exceeds available stock") {
		t.Fatalf("expected stock violation, got %v", v)
	}
}

func TestValidateSelectionMultipleViolations(t *testing.T) {
	rules := []availability.Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, Active: true},
	}
	now := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

	// Past Monday, bogus time, zero quantity: all reported together.
	v := validateSelection(rules, day(2026, time.March, 2), "nonsense", 0, 3, now)
	if len(v) < 3 {
		t.Fatalf("expected at least 3 violations, got %v", v)
	}
	if !containsSubstring(v, "invalid meeting time") {
		t.Fatalf("expected invalid-time violation, got %v", v)
	}
	if !containsSubstring(v, "no longer available") {
		t.Fatalf("expected date violation, got %v", v)
	}
	if !containsSubstring(v, "positive") {
		t.Fatalf("expected quantity violation, got %v", v)
	}
}

func TestValidateSelectionTodayElapsedRange(t *testing.T) {
	rules := []availability.Rule{
		{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 10 * 60, Active: true},
	}
	// 09:50 on the meeting day itself: the last slot is gone.
	now := time.Date(2026, time.March, 2, 9, 50, 0, 0, time.UTC)

	v := validateSelection(rules, day(2026, time.March, 2), "09:45", 1, 5, now)
	if len(v) == 0 {
		t.Fatal("expected violations for a fully elapsed range")
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
