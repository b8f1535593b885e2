package availability

import (
	"errors"

	"holidaze/internal/model"
)

// State of the two-tap range picker.
type State string

const (
	StateIdle        State = "idle"
	StateAwaitingEnd State = "awaiting_end"
)

var (
	ErrDateBooked      = errors.New("date already booked")
	ErrEndBeforeStart  = errors.New("end before start")
	ErrRangeBooked     = errors.New("range contains booked date(s)")
	ErrOutsideCalendar = errors.New("date outside calendar")
)

// Reason maps a selector error to a short label for metrics and logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrDateBooked):
		return "date_booked"
	case errors.Is(err, ErrEndBeforeStart):
		return "end_before_start"
	case errors.Is(err, ErrRangeBooked):
		return "range_booked"
	case errors.Is(err, ErrOutsideCalendar):
		return "outside_calendar"
	default:
		return "other"
	}
}

// Selection is a committed inclusive date range. The zero value is unset.
type Selection struct {
	From model.Day
	To   model.Day
}

// IsSet reports whether both ends are present.
func (s Selection) IsSet() bool {
	return !s.From.IsZero() && !s.To.IsZero()
}

// Includes reports whether d is inside the committed range.
func (s Selection) Includes(d model.Day) bool {
	return s.IsSet() && d.Between(s.From, s.To)
}

// bounded checkers also restrict which days may be clicked at all.
type bounded interface {
	Contains(d model.Day) bool
}

// Selector implements the two-tap protocol: the first free tap records a
// provisional start, the second resolves the range. Any rejection returns the
// picker to idle.
type Selector struct {
	checker   Checker
	state     State
	start     model.Day
	selection Selection
}

// NewSelector creates an idle selector that validates against c.
func NewSelector(c Checker) *Selector {
	if c == nil {
		c = Bookings(nil)
	}
	return &Selector{checker: c, state: StateIdle}
}

// SetChecker swaps the availability source, e.g. after bookings are re-fetched.
// The in-progress and committed selections are kept.
func (s *Selector) SetChecker(c Checker) {
	if c == nil {
		c = Bookings(nil)
	}
	s.checker = c
}

// Click processes one tap on day d. committed is true when the tap completed a
// valid range, which is then available from Selection.
func (s *Selector) Click(d model.Day) (committed bool, err error) {
	if d.IsZero() {
		return false, ErrOutsideCalendar
	}
	if b, ok := s.checker.(bounded); ok && !b.Contains(d) {
		return false, ErrOutsideCalendar
	}

	if s.state != StateAwaitingEnd {
		if s.checker.IsBooked(d) {
			return false, ErrDateBooked
		}
		// A new pair always discards the previous committed range.
		s.selection = Selection{}
		s.start = d
		s.state = StateAwaitingEnd
		return false, nil
	}

	start := s.start
	s.start = model.Day{}
	s.state = StateIdle

	if d.Before(start) {
		return false, ErrEndBeforeStart
	}
	for day := start; !day.After(d); day = day.AddDays(1) {
		if s.checker.IsBooked(day) {
			return false, ErrRangeBooked
		}
	}

	s.selection = Selection{From: start, To: d}
	return true, nil
}

// Reset drops the provisional start and the committed selection.
func (s *Selector) Reset() {
	s.state = StateIdle
	s.start = model.Day{}
	s.selection = Selection{}
}

func (s *Selector) State() State { return s.state }

// Start returns the provisional start while awaiting the second tap.
func (s *Selector) Start() model.Day { return s.start }

// Selection returns the committed range, if any.
func (s *Selector) Selection() Selection { return s.selection }
