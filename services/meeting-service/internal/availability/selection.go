package availability

import (
	"fmt"
	"time"
)

type State int

const (
	StateNoDate State = iota
	StateDateSelected
	StateRangeSelected
	StateInstantSelected
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateNoDate:
		return "no_date"
	case StateDateSelected:
		return "date_selected"
	case StateRangeSelected:
		return "range_selected"
	case StateInstantSelected:
		return "instant_selected"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Selection tracks a buyer's in-progress meeting choice: date, then coarse
// range, then discrete instant, then quantity. Picking an earlier step again
// resets everything downstream of it.
type Selection struct {
	rules    []Rule
	state    State
	date     time.Time
	rng      Rule
	instant  string
	quantity int
}

func NewSelection(rules []Rule) *Selection {
	return &Selection{rules: rules, state: StateNoDate, quantity: 1}
}

func (s *Selection) State() State     { return s.state }
func (s *Selection) Date() time.Time  { return s.date }
func (s *Selection) Range() Rule      { return s.rng }
func (s *Selection) Instant() string  { return s.instant }
func (s *Selection) Quantity() int    { return s.quantity }

// SelectDate sets the chosen date, discarding any previously chosen range and
// instant. Selectability is re-checked at confirmation time, not here.
func (s *Selection) SelectDate(date time.Time) {
	s.date = midnight(date)
	s.rng = Rule{}
	s.instant = ""
	s.state = StateDateSelected
}

// SelectRange sets the chosen coarse range, discarding any chosen instant.
func (s *Selection) SelectRange(r Rule) error {
	if s.state < StateDateSelected {
		return fmt.Errorf("select a date first")
	}
	s.rng = r
	s.instant = ""
	s.state = StateRangeSelected
	return nil
}

// SelectInstant sets the chosen discrete instant (HH:MM).
func (s *Selection) SelectInstant(instant string) error {
	if s.state < StateRangeSelected {
		return fmt.Errorf("select a time range first")
	}
	s.instant = instant
	s.state = StateInstantSelected
	return nil
}

func (s *Selection) SetQuantity(q int) {
	s.quantity = q
}

// Confirm validates every precondition and reports all violations at once.
// On any violation the state is unchanged; on success the selection moves to
// StateConfirmed. The date is re-checked against now because the wall clock
// may have advanced since the calendar was drawn.
func (s *Selection) Confirm(stock int, now time.Time) []string {
	var violations []string

	if s.state < StateDateSelected {
		violations = append(violations, "no date selected")
	}
	if s.state < StateRangeSelected {
		violations = append(violations, "no time range selected")
	}
	if s.state < StateInstantSelected {
		violations = append(violations, "no time selected")
	}
	if s.quantity <= 0 {
		violations = append(violations, "quantity must be a positive number")
	} else if s.quantity > stock {
		violations = append(violations, fmt.Sprintf("requested quantity %d exceeds available stock %d", s.quantity, stock))
	}
	if s.state >= StateDateSelected && !DateSelectable(s.date, s.rules, now) {
		violations = append(violations, "selected date is no longer available")
	}

	if len(violations) > 0 {
		return violations
	}
	s.state = StateConfirmed
	return nil
}
