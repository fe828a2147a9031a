package availability

import (
	"fmt"
	"time"
)

const (
	// SlotStepMinutes is the granularity of offerable meeting instants.
	SlotStepMinutes = 15
	// LeadMarginMinutes keeps ranges that end within the next few minutes
	// from being offered with zero practical lead time.
	LeadMarginMinutes = 5
)

// Rule is one contiguous time-of-day window a seller is reachable on a given
// weekday. Start and end are minutes since midnight, start < end. Multiple
// rules may share a weekday (e.g. a morning and an afternoon block).
//
// Active mirrors the seller-facing enable flag. Resolution does not filter on
// it; callers that want only active rules filter before invoking.
type Rule struct {
	Weekday     time.Weekday `json:"weekday"`
	StartMinute int          `json:"start_minute"`
	EndMinute   int          `json:"end_minute"`
	Active      bool         `json:"active"`
}

// DateSelectable reports whether date can be picked for a meeting given the
// seller's rules and the current instant. Past dates are never selectable.
// Today is selectable only while at least one matching rule has more than
// LeadMarginMinutes of window left; any future date with a weekday match is
// selectable regardless of time of day.
func DateSelectable(date time.Time, rules []Rule, now time.Time) bool {
	d := midnight(date)
	today := midnight(now)
	if d.Before(today) {
		return false
	}

	if d.After(today) {
		for _, r := range rules {
			if r.Weekday == d.Weekday() {
				return true
			}
		}
		return false
	}

	cutoff := minuteOfDay(now) + LeadMarginMinutes
	for _, r := range rules {
		if r.Weekday == d.Weekday() && r.EndMinute > cutoff {
			return true
		}
	}
	return false
}

// RangesForDate returns the rules applicable to date, in input order.
// For today, ranges whose remaining window is within the lead margin are
// dropped; an empty result therefore does not distinguish "nothing
// configured" from "everything already elapsed".
func RangesForDate(date time.Time, rules []Rule, now time.Time) []Rule {
	d := midnight(date)
	isToday := d.Equal(midnight(now))
	cutoff := minuteOfDay(now) + LeadMarginMinutes

	var out []Rule
	for _, r := range rules {
		if r.Weekday != d.Weekday() {
			continue
		}
		if isToday && r.EndMinute <= cutoff {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Slots enumerates the offerable instants within rule on date, ascending,
// formatted as zero-padded HH:MM. For today the effective start is raised to
// now plus the lead margin and rounded up to the next quarter hour; future
// dates start at the rule's literal StartMinute, even when it is off-grid.
// The end boundary is open: a range ending at 18:00 never offers "18:00".
func Slots(rule Rule, date time.Time, now time.Time) []string {
	start := rule.StartMinute
	if midnight(date).Equal(midnight(now)) {
		floor := minuteOfDay(now) + LeadMarginMinutes
		if floor > start {
			start = roundUpTo(floor, SlotStepMinutes)
		}
	}

	var out []string
	for t := start; t < rule.EndMinute; t += SlotStepMinutes {
		out = append(out, FormatMinute(t))
	}
	return out
}

// FormatMinute renders minutes-since-midnight as zero-padded HH:MM.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseMinute is the inverse of FormatMinute.
func ParseMinute(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func roundUpTo(m, step int) int {
	return ((m + step - 1) / step) * step
}
