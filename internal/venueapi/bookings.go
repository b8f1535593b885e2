package venueapi

import (
	"context"
	"net/http"
	"net/url"

	"holidaze/internal/model"
)

// BookingRequest is the body of POST /holidaze/bookings.
type BookingRequest struct {
	DateFrom model.Day `json:"dateFrom"`
	DateTo   model.Day `json:"dateTo"`
	Guests   int       `json:"guests"`
	VenueID  string    `json:"venueId"`
}

// BookingUpdate is the body of PUT /holidaze/bookings/{id}. Nil fields are left unchanged.
type BookingUpdate struct {
	DateFrom *model.Day `json:"dateFrom,omitempty"`
	DateTo   *model.Day `json:"dateTo,omitempty"`
	Guests   *int       `json:"guests,omitempty"`
}

// CreateBooking books a venue for the token's user.
func (c *Client) CreateBooking(ctx context.Context, token string, req BookingRequest) (*model.Booking, error) {
	var out model.Booking
	err := c.send(ctx, &call{
		label:  "bookings.create",
		method: http.MethodPost,
		path:   "/holidaze/bookings",
		token:  token,
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "/holidaze/venues/"+url.PathEscape(req.VenueID))
	return &out, nil
}

// GetBooking loads a booking with its venue and customer.
func (c *Client) GetBooking(ctx context.Context, token, id string) (*model.Booking, error) {
	var out model.Booking
	err := c.send(ctx, &call{
		label:  "bookings.get",
		method: http.MethodGet,
		path:   "/holidaze/bookings/" + url.PathEscape(id),
		query:  url.Values{"_venue": {"true"}, "_customer": {"true"}},
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBooking changes dates or guest count of a booking.
func (c *Client) UpdateBooking(ctx context.Context, token, id string, upd BookingUpdate) (*model.Booking, error) {
	var out model.Booking
	err := c.send(ctx, &call{
		label:  "bookings.update",
		method: http.MethodPut,
		path:   "/holidaze/bookings/" + url.PathEscape(id),
		token:  token,
		body:   upd,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "/holidaze/venues")
	return &out, nil
}

// DeleteBooking cancels a booking.
func (c *Client) DeleteBooking(ctx context.Context, token, id string) error {
	err := c.send(ctx, &call{
		label:  "bookings.delete",
		method: http.MethodDelete,
		path:   "/holidaze/bookings/" + url.PathEscape(id),
		token:  token,
	})
	if err != nil {
		return err
	}
	c.invalidate(ctx, "/holidaze/venues")
	return nil
}

// ProfileBookings lists the bookings made by a profile, with venues embedded.
func (c *Client) ProfileBookings(ctx context.Context, token, name string) ([]model.Booking, error) {
	var out []model.Booking
	err := c.send(ctx, &call{
		label:  "profiles.bookings",
		method: http.MethodGet,
		path:   "/holidaze/profiles/" + url.PathEscape(name) + "/bookings",
		query:  url.Values{"_venue": {"true"}},
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
