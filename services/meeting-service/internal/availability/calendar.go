package availability

import "time"

// CalendarDay is one cell of a displayed month grid. Cells are recomputed on
// every month navigation and never persisted.
type CalendarDay struct {
	Date       time.Time `json:"date"`
	InMonth    bool      `json:"in_month"`
	Past       bool      `json:"past"`
	Today      bool      `json:"today"`
	HasRule    bool      `json:"has_rule"`
	Selectable bool      `json:"selectable"`
}

// MonthGrid builds the calendar cells for year/month, padded with leading and
// trailing days so the grid starts on Monday and covers whole weeks. HasRule
// is a pure weekday match, ignoring remaining time; Selectable additionally
// requires the cell to belong to the displayed month and DateSelectable to
// hold at now.
func MonthGrid(year int, month time.Month, rules []Rule, now time.Time) []CalendarDay {
	loc := now.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -mondayOffset(first.Weekday()))
	end := last.AddDate(0, 0, 6-mondayOffset(last.Weekday()))

	today := midnight(now)

	var cells []CalendarDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		inMonth := d.Month() == month
		hasRule := false
		for _, r := range rules {
			if r.Weekday == d.Weekday() {
				hasRule = true
				break
			}
		}
		cells = append(cells, CalendarDay{
			Date:       d,
			InMonth:    inMonth,
			Past:       d.Before(today),
			Today:      d.Equal(today),
			HasRule:    hasRule,
			Selectable: inMonth && DateSelectable(d, rules, now),
		})
	}
	return cells
}

// mondayOffset maps a weekday to its zero-based position in a Monday-first week.
func mondayOffset(w time.Weekday) int {
	return (int(w) + 6) % 7
}
