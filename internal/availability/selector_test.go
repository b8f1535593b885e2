package availability

import (
	"testing"
	"time"

	"holidaze/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func march(day int) model.Day {
	return model.NewDay(2024, time.March, day)
}

func marchGrid(bookings ...model.Booking) Grid {
	return BuildMonth(bookings, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
}

func TestSelector_CommitsValidRange(t *testing.T) {
	s := NewSelector(marchGrid(booking("2024-03-10", "2024-03-12")))

	committed, err := s.Click(march(3))
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, StateAwaitingEnd, s.State())
	assert.True(t, march(3).Equal(s.Start()))

	committed, err = s.Click(march(9))
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, Selection{From: march(3), To: march(9)}, s.Selection())
}

func TestSelector_SingleDayRange(t *testing.T) {
	s := NewSelector(marchGrid())

	_, err := s.Click(march(5))
	require.NoError(t, err)
	committed, err := s.Click(march(5))
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, Selection{From: march(5), To: march(5)}, s.Selection())
}

func TestSelector_RejectsBookedStart(t *testing.T) {
	s := NewSelector(marchGrid(booking("2024-03-10", "2024-03-12")))

	_, err := s.Click(march(11))
	assert.ErrorIs(t, err, ErrDateBooked)
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Selection().IsSet())
}

func TestSelector_EndBeforeStart(t *testing.T) {
	s := NewSelector(marchGrid())

	_, err := s.Click(march(5))
	require.NoError(t, err)

	_, err = s.Click(march(3))
	assert.ErrorIs(t, err, ErrEndBeforeStart)
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.Start().IsZero())
	assert.False(t, s.Selection().IsSet())
}

func TestSelector_RangeContainsBookedDay(t *testing.T) {
	s := NewSelector(marchGrid(booking("2024-03-10", "2024-03-10")))

	_, err := s.Click(march(5))
	require.NoError(t, err)

	_, err = s.Click(march(15))
	assert.ErrorIs(t, err, ErrRangeBooked)
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Selection().IsSet())
}

func TestSelector_RangeEndingOnBookedDay(t *testing.T) {
	s := NewSelector(marchGrid(booking("2024-03-10", "2024-03-12")))

	_, err := s.Click(march(8))
	require.NoError(t, err)

	_, err = s.Click(march(10))
	assert.ErrorIs(t, err, ErrRangeBooked)
}

func TestSelector_NewPairDiscardsCommitted(t *testing.T) {
	s := NewSelector(marchGrid(booking("2024-03-20", "2024-03-21")))

	_, _ = s.Click(march(1))
	committed, err := s.Click(march(4))
	require.NoError(t, err)
	require.True(t, committed)

	// Tapping a booked day while idle is rejected and keeps the committed range.
	_, err = s.Click(march(20))
	assert.ErrorIs(t, err, ErrDateBooked)
	assert.Equal(t, Selection{From: march(1), To: march(4)}, s.Selection())

	// A free tap starts a new pair and drops the old range.
	_, err = s.Click(march(6))
	require.NoError(t, err)
	assert.False(t, s.Selection().IsSet())
	assert.Equal(t, StateAwaitingEnd, s.State())
}

func TestSelector_OutsideGrid(t *testing.T) {
	s := NewSelector(marchGrid())

	_, err := s.Click(model.NewDay(2024, time.April, 1))
	assert.ErrorIs(t, err, ErrOutsideCalendar)

	_, err = s.Click(model.Day{})
	assert.ErrorIs(t, err, ErrOutsideCalendar)
}

func TestSelector_AcrossMonthsWithBookings(t *testing.T) {
	s := NewSelector(Bookings{booking("2024-04-02", "2024-04-03")})

	_, err := s.Click(march(30))
	require.NoError(t, err)
	_, err = s.Click(model.NewDay(2024, time.April, 5))
	assert.ErrorIs(t, err, ErrRangeBooked)

	_, err = s.Click(march(30))
	require.NoError(t, err)
	committed, err := s.Click(model.NewDay(2024, time.April, 1))
	require.NoError(t, err)
	assert.True(t, committed)
}

func TestSelector_NeverCommitsBookedOrInverted(t *testing.T) {
	g := marchGrid(booking("2024-03-04", "2024-03-06"), booking("2024-03-18", "2024-03-18"))

	for a := 1; a <= 31; a++ {
		for b := 1; b <= 31; b++ {
			s := NewSelector(g)
			_, _ = s.Click(march(a))
			committed, _ := s.Click(march(b))
			if !committed {
				assert.False(t, s.Selection().IsSet())
				continue
			}
			sel := s.Selection()
			assert.False(t, sel.To.Before(sel.From), "inverted %s..%s", sel.From, sel.To)
			for d := sel.From; !d.After(sel.To); d = d.AddDays(1) {
				assert.False(t, g.IsBooked(d), "booked day %s committed", d)
			}
		}
	}
}

func TestSelector_Reset(t *testing.T) {
	s := NewSelector(marchGrid())
	_, _ = s.Click(march(1))
	_, _ = s.Click(march(2))
	_, _ = s.Click(march(3))

	s.Reset()
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.Start().IsZero())
	assert.False(t, s.Selection().IsSet())
}

func TestReason(t *testing.T) {
	assert.Equal(t, "date_booked", Reason(ErrDateBooked))
	assert.Equal(t, "end_before_start", Reason(ErrEndBeforeStart))
	assert.Equal(t, "range_booked", Reason(ErrRangeBooked))
	assert.Equal(t, "outside_calendar", Reason(ErrOutsideCalendar))
	assert.Equal(t, "other", Reason(assert.AnError))
}
