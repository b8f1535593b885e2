package model

import "time"

// Media is an image attached to a venue or profile.
type Media struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Meta lists the amenities of a venue.
type Meta struct {
	WiFi      bool `json:"wifi"`
	Parking   bool `json:"parking"`
	Breakfast bool `json:"breakfast"`
	Pets      bool `json:"pets"`
}

// Location of a venue. All fields are optional on the remote side.
type Location struct {
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	Zip       string  `json:"zip,omitempty"`
	Country   string  `json:"country,omitempty"`
	Continent string  `json:"continent,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
}

// Profile is a registered user of the remote service.
type Profile struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio,omitempty"`
	Avatar       *Media    `json:"avatar,omitempty"`
	Banner       *Media    `json:"banner,omitempty"`
	VenueManager bool      `json:"venueManager"`
	Venues       []Venue   `json:"venues,omitempty"`
	Bookings     []Booking `json:"bookings,omitempty"`
}

// Venue represents a bookable listing.
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Media       []Media   `json:"media,omitempty"`
	Price       float64   `json:"price"`
	MaxGuests   int       `json:"maxGuests"`
	Rating      float64   `json:"rating"`
	Created     time.Time `json:"created,omitempty"`
	Updated     time.Time `json:"updated,omitempty"`
	Meta        Meta      `json:"meta"`
	Location    Location  `json:"location"`
	Owner       *Profile  `json:"owner,omitempty"`
	Bookings    []Booking `json:"bookings,omitempty"`
}

// OwnedBy reports whether the venue's owner is the named profile.
func (v *Venue) OwnedBy(name string) bool {
	return v.Owner != nil && name != "" && v.Owner.Name == name
}

// Booking represents a reserved inclusive date range on a venue.
type Booking struct {
	ID       string    `json:"id"`
	DateFrom Day       `json:"dateFrom"`
	DateTo   Day       `json:"dateTo"`
	Guests   int       `json:"guests"`
	Created  time.Time `json:"created,omitempty"`
	Updated  time.Time `json:"updated,omitempty"`
	Venue    *Venue    `json:"venue,omitempty"`
	Customer *Profile  `json:"customer,omitempty"`
}

// ContainsDay checks if the booking covers a specific day (inclusive on both ends).
func (b *Booking) ContainsDay(d Day) bool {
	return d.Between(b.DateFrom, b.DateTo)
}

// OverlapsWith checks if two bookings share at least one day.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return !b.DateTo.Before(other.DateFrom) && !other.DateTo.Before(b.DateFrom)
}

// Nights returns the number of nights between check-in and check-out.
// A same-day booking has zero nights.
func (b *Booking) Nights() int {
	return NightsBetween(b.DateFrom, b.DateTo)
}

// NightsBetween counts the nights from from to to, zero when either is unset
// or to is not after from.
func NightsBetween(from, to Day) int {
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return 0
	}
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}
