// Package availability turns a venue's bookings into a month of booked/free
// days and resolves two-tap date range selections against it.
package availability

import (
	"time"

	"holidaze/internal/model"
)

// CalendarDay is one cell of the availability grid.
type CalendarDay struct {
	Date     model.Day
	IsBooked bool
}

// Checker answers whether a day is occupied.
type Checker interface {
	IsBooked(d model.Day) bool
}

// Bookings answers IsBooked for any day, not only the displayed month.
type Bookings []model.Booking

// IsBooked reports whether d falls inside at least one booking.
func (bs Bookings) IsBooked(d model.Day) bool {
	for i := range bs {
		if bs[i].ContainsDay(d) {
			return true
		}
	}
	return false
}

// Grid is the ordered month of calendar days built by BuildMonth.
type Grid struct {
	year  int
	month time.Month
	days  []CalendarDay
}

// BuildMonth produces one CalendarDay per day of ref's month, day 1 through
// the last day, ascending. The bookings slice is only read.
func BuildMonth(bookings []model.Booking, ref time.Time) Grid {
	year, month := ref.Year(), ref.Month()
	n := DaysIn(month, year)
	days := make([]CalendarDay, 0, n)

	first := model.NewDay(year, month, 1)
	index := Bookings(bookings)
	for i := 0; i < n; i++ {
		d := first.AddDays(i)
		days = append(days, CalendarDay{Date: d, IsBooked: index.IsBooked(d)})
	}
	return Grid{year: year, month: month, days: days}
}

// Days returns a copy of the grid cells.
func (g Grid) Days() []CalendarDay {
	out := make([]CalendarDay, len(g.days))
	copy(out, g.days)
	return out
}

func (g Grid) Len() int { return len(g.days) }

// Year and Month of the grid.
func (g Grid) Year() int { return g.year }

func (g Grid) Month() time.Month { return g.month }

// First is day 1 of the grid's month.
func (g Grid) First() model.Day {
	return model.NewDay(g.year, g.month, 1)
}

// Contains reports whether d lies in the grid's month.
func (g Grid) Contains(d model.Day) bool {
	return !d.IsZero() && d.Year() == g.year && d.Month() == g.month
}

// IsBooked reports the booked flag of d; days outside the grid are free.
func (g Grid) IsBooked(d model.Day) bool {
	if !g.Contains(d) {
		return false
	}
	return g.days[d.DayOfMonth()-1].IsBooked
}

// FreeCount is the number of unbooked days in the grid.
func (g Grid) FreeCount() int {
	free := 0
	for _, d := range g.days {
		if !d.IsBooked {
			free++
		}
	}
	return free
}

// DaysIn returns the number of days in the month of the proleptic Gregorian calendar.
func DaysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
