package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire and display format of a calendar day.
const DayLayout = "2006-01-02"

// Day is a calendar date without time-of-day or zone. The zero value is "unset".
type Day struct {
	t time.Time // always midnight UTC
}

// NewDay builds a Day. Out-of-range values normalize the way time.Date does.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar date of t as seen in t's own location.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay accepts "YYYY-MM-DD" optionally followed by a time part
// ("2024-03-10T00:00:00.000Z"). Only the literal date is kept so that a
// zone offset can never move the day.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(DayLayout) {
		return Day{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", s)
	}
	if len(s) > len(DayLayout) && s[10] != 'T' && s[10] != ' ' {
		return Day{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", s)
	}
	t, err := time.Parse(DayLayout, s[:len(DayLayout)])
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", s)
	}
	return Day{t: t}, nil
}

// MustParseDay is ParseDay for constants in tests and fixtures.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) Year() int { return d.t.Year() }

func (d Day) Month() time.Month { return d.t.Month() }

func (d Day) DayOfMonth() int { return d.t.Day() }

func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time { return d.t }

func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

func (d Day) After(o Day) bool { return d.t.After(o.t) }

func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

// AddDays moves the day forward (or back for negative n).
func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

// Between reports whether from <= d <= to.
func (d Day) Between(from, to Day) bool {
	return !d.Before(from) && !d.After(to)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DayLayout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
