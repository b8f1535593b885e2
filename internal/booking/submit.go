// Package booking submits date range bookings and manages the per-user
// venue viewing session that owns the calendar and range selector.
package booking

import (
	"context"
	"fmt"

	"holidaze/internal/availability"
	"holidaze/internal/metrics"
	"holidaze/internal/model"
	"holidaze/internal/session"
	"holidaze/internal/venueapi"

	"github.com/rs/zerolog"
)

const msgLoginToBook = "You must be logged in to book a venue"

// ValidationError is a local precondition failure. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Creator is the part of the remote API used to place bookings.
type Creator interface {
	CreateBooking(ctx context.Context, token string, req venueapi.BookingRequest) (*model.Booking, error)
}

// Updater is the part of the remote API used to change a booking.
type Updater interface {
	UpdateBooking(ctx context.Context, token, id string, upd venueapi.BookingUpdate) (*model.Booking, error)
}

// ChangeGuests sets the guest count of an existing booking. The guest checks
// are the same as for a new booking; maxGuests is skipped when unknown (0).
func ChangeGuests(ctx context.Context, api Updater, sess session.Session, id string, guests, maxGuests int) (*model.Booking, error) {
	switch {
	case !sess.LoggedIn():
		return nil, &ValidationError{Field: "auth", Message: "You must be logged in to change a booking"}
	case id == "":
		return nil, &ValidationError{Field: "booking", Message: "No booking selected"}
	case guests < 1:
		return nil, &ValidationError{Field: "guests", Message: "Number of guests must be at least 1"}
	case maxGuests > 0 && guests > maxGuests:
		return nil, &ValidationError{
			Field:   "guests",
			Message: fmt.Sprintf("This venue allows at most %d guests", maxGuests),
		}
	}
	return api.UpdateBooking(ctx, sess.Token, id, venueapi.BookingUpdate{Guests: &guests})
}

// Request is one booking submission.
type Request struct {
	VenueID   string
	Selection availability.Selection
	Guests    int
	// MaxGuests is the venue capacity; zero means unknown.
	MaxGuests int
}

// Submitter validates a request locally and forwards it to the remote service.
type Submitter struct {
	api    Creator
	logger zerolog.Logger
}

func NewSubmitter(api Creator, logger zerolog.Logger) *Submitter {
	return &Submitter{
		api:    api,
		logger: logger.With().Str("component", "booking").Logger(),
	}
}

// Validate checks the local preconditions in order: session token, complete
// selection, guest count, capacity.
func Validate(sess session.Session, req Request) error {
	if !sess.LoggedIn() {
		return &ValidationError{Field: "auth", Message: msgLoginToBook}
	}
	if !req.Selection.IsSet() {
		return &ValidationError{Field: "dates", Message: "Please select both a start and an end date"}
	}
	if req.Guests < 1 {
		return &ValidationError{Field: "guests", Message: "Number of guests must be at least 1"}
	}
	if req.MaxGuests > 0 && req.Guests > req.MaxGuests {
		return &ValidationError{
			Field:   "guests",
			Message: fmt.Sprintf("This venue allows at most %d guests", req.MaxGuests),
		}
	}
	if req.VenueID == "" {
		return &ValidationError{Field: "venue", Message: "No venue selected"}
	}
	return nil
}

// Submit places the booking. Validation failures return *ValidationError
// without any network call; remote rejections return *venueapi.APIError.
func (s *Submitter) Submit(ctx context.Context, sess session.Session, req Request) (*model.Booking, error) {
	if err := Validate(sess, req); err != nil {
		metrics.IncBookingSubmitted("invalid")
		return nil, err
	}

	booking, err := s.api.CreateBooking(ctx, sess.Token, venueapi.BookingRequest{
		DateFrom: req.Selection.From,
		DateTo:   req.Selection.To,
		Guests:   req.Guests,
		VenueID:  req.VenueID,
	})
	if err != nil {
		metrics.IncBookingSubmitted("rejected")
		s.logger.Warn().Err(err).
			Str("venue_id", req.VenueID).
			Str("from", req.Selection.From.String()).
			Str("to", req.Selection.To.String()).
			Int("status", venueapi.StatusCode(err)).
			Msg("booking rejected")
		return nil, err
	}

	metrics.IncBookingSubmitted("ok")
	s.logger.Info().
		Str("venue_id", req.VenueID).
		Str("booking_id", booking.ID).
		Str("user", sess.User.Name).
		Msg("booking created")
	return booking, nil
}
