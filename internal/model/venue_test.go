package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr bool
	}{
		{"2024-03-10", NewDay(2024, time.March, 10), false},
		{"2024-03-10T00:00:00.000Z", NewDay(2024, time.March, 10), false},
		{"2024-03-10T23:30:00+05:00", NewDay(2024, time.March, 10), false},
		{"2024-03-10 12:00", NewDay(2024, time.March, 10), false},
		{"10-03-2024", Day{}, true},
		{"2024-03-1", Day{}, true},
		{"2024-03-10X", Day{}, true},
		{"", Day{}, true},
	}

	for _, tt := range tests {
		got, err := ParseDay(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input: %s", tt.in)
			continue
		}
		require.NoError(t, err, "input: %s", tt.in)
		assert.True(t, tt.want.Equal(got), "input: %s got %s", tt.in, got)
	}
}

func TestDayOf_IgnoresClock(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*3600)
	late := time.Date(2024, time.February, 29, 23, 59, 0, 0, loc)
	assert.Equal(t, "2024-02-29", DayOf(late).String())
}

func TestDay_JSON(t *testing.T) {
	var b Booking
	err := json.Unmarshal([]byte(`{"id":"b1","dateFrom":"2024-03-10T00:00:00.000Z","dateTo":"2024-03-12","guests":2}`), &b)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", b.DateFrom.String())
	assert.Equal(t, "2024-03-12", b.DateTo.String())
	assert.Equal(t, 2, b.Nights())

	out, err := json.Marshal(struct {
		From Day `json:"dateFrom"`
		To   Day `json:"dateTo"`
	}{b.DateFrom, Day{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dateFrom":"2024-03-10","dateTo":null}`, string(out))
}

func TestBooking_Nights(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     int
	}{
		{"two nights", "2024-03-10", "2024-03-12", 2},
		{"same day", "2024-03-10", "2024-03-10", 0},
		{"over month end", "2024-02-28", "2024-03-01", 2},
		{"reversed", "2024-03-12", "2024-03-10", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Booking{DateFrom: MustParseDay(tt.from), DateTo: MustParseDay(tt.to)}
			assert.Equal(t, tt.want, b.Nights())
		})
	}

	assert.Equal(t, 0, NightsBetween(Day{}, MustParseDay("2024-03-10")))
}

func TestBooking_ContainsDay(t *testing.T) {
	b := Booking{DateFrom: MustParseDay("2024-03-10"), DateTo: MustParseDay("2024-03-12")}

	assert.False(t, b.ContainsDay(MustParseDay("2024-03-09")))
	assert.True(t, b.ContainsDay(MustParseDay("2024-03-10")))
	assert.True(t, b.ContainsDay(MustParseDay("2024-03-11")))
	assert.True(t, b.ContainsDay(MustParseDay("2024-03-12")))
	assert.False(t, b.ContainsDay(MustParseDay("2024-03-13")))
}

func TestBooking_OverlapsWith(t *testing.T) {
	existing := Booking{DateFrom: MustParseDay("2024-03-10"), DateTo: MustParseDay("2024-03-12")}

	before := Booking{DateFrom: MustParseDay("2024-03-05"), DateTo: MustParseDay("2024-03-09")}
	assert.False(t, existing.OverlapsWith(&before))

	touching := Booking{DateFrom: MustParseDay("2024-03-12"), DateTo: MustParseDay("2024-03-14")}
	assert.True(t, existing.OverlapsWith(&touching))

	inside := Booking{DateFrom: MustParseDay("2024-03-11"), DateTo: MustParseDay("2024-03-11")}
	assert.True(t, existing.OverlapsWith(&inside))
}

func TestVenue_OwnedBy(t *testing.T) {
	v := Venue{Owner: &Profile{Name: "kari"}}
	assert.True(t, v.OwnedBy("kari"))
	assert.False(t, v.OwnedBy("ola"))
	assert.False(t, (&Venue{}).OwnedBy(""))
}
