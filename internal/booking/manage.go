package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"holidaze/internal/metrics"
	"holidaze/internal/model"
	"holidaze/internal/session"
	"holidaze/internal/venueapi"

	"github.com/rs/zerolog"
)

// VenueAPI is the part of the remote API used by venue managers.
type VenueAPI interface {
	GetVenue(ctx context.Context, id string, vq venueapi.VenueQuery) (*model.Venue, error)
	CreateVenue(ctx context.Context, token string, in venueapi.VenueInput) (*model.Venue, error)
	UpdateVenue(ctx context.Context, token, id string, in venueapi.VenueInput) (*model.Venue, error)
	DeleteVenue(ctx context.Context, token, id string) error
	ProfileVenues(ctx context.Context, token, name string) ([]model.Venue, error)
	GetBooking(ctx context.Context, token, id string) (*model.Booking, error)
}

// Manager performs venue manager actions after checking the session locally.
type Manager struct {
	api    VenueAPI
	logger zerolog.Logger
}

func NewManager(api VenueAPI, logger zerolog.Logger) *Manager {
	return &Manager{
		api:    api,
		logger: logger.With().Str("component", "venues").Logger(),
	}
}

// UpcomingBooking is a booking of one of the manager's venues.
type UpcomingBooking struct {
	VenueID    string
	VenueName  string
	VenuePrice float64
	Booking    model.Booking
}

// Total is the nightly venue price times the nights booked. Same-day bookings cost nothing.
func (u UpcomingBooking) Total() float64 {
	return float64(u.Booking.Nights()) * u.VenuePrice
}

// ValidateVenue checks a venue form before it is sent.
func ValidateVenue(in venueapi.VenueInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return &ValidationError{Field: "name", Message: "Venue name is required"}
	case in.Price < 0:
		return &ValidationError{Field: "price", Message: "Price cannot be negative"}
	case in.MaxGuests < 1:
		return &ValidationError{Field: "maxGuests", Message: "Max guests must be at least 1"}
	}
	for _, m := range in.Media {
		if !strings.HasPrefix(m.URL, "http://") && !strings.HasPrefix(m.URL, "https://") {
			return &ValidationError{Field: "media", Message: "Image URLs must start with http:// or https://"}
		}
	}
	return nil
}

func requireManager(sess session.Session, action string) error {
	if !sess.LoggedIn() {
		return &ValidationError{Field: "auth", Message: fmt.Sprintf("You must be logged in to %s a venue.", action)}
	}
	if !sess.User.VenueManager {
		return &ValidationError{Field: "auth", Message: fmt.Sprintf("You must be a venue manager to %s a venue.", action)}
	}
	return nil
}

// owned loads venue id and checks that the session user owns it.
func (m *Manager) owned(ctx context.Context, sess session.Session, id, action string) (*model.Venue, error) {
	venue, err := m.api.GetVenue(ctx, id, venueapi.VenueQuery{Owner: true, NoCache: true})
	if err != nil {
		return nil, err
	}
	if !venue.OwnedBy(sess.User.Name) {
		return nil, &ValidationError{Field: "auth", Message: fmt.Sprintf("You are not authorized to %s this venue.", action)}
	}
	return venue, nil
}

func (m *Manager) record(action string, err error) {
	metrics.IncVenueAction(action, actionResult(err))
}

// actionResult is the metrics label of a manager action outcome.
func actionResult(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "denied"
	default:
		return "error"
	}
}

// Create creates a venue owned by the session user.
func (m *Manager) Create(ctx context.Context, sess session.Session, in venueapi.VenueInput) (venue *model.Venue, err error) {
	defer func() { m.record("create", err) }()

	if err = requireManager(sess, "create"); err != nil {
		return nil, err
	}
	if err = ValidateVenue(in); err != nil {
		return nil, err
	}
	venue, err = m.api.CreateVenue(ctx, sess.Token, in)
	if err != nil {
		return nil, err
	}
	m.logger.Info().Str("venue_id", venue.ID).Str("user", sess.User.Name).Msg("venue created")
	return venue, nil
}

// Update replaces the editable fields of a venue the session user owns.
func (m *Manager) Update(ctx context.Context, sess session.Session, id string, in venueapi.VenueInput) (venue *model.Venue, err error) {
	defer func() { m.record("update", err) }()

	if err = requireManager(sess, "update"); err != nil {
		return nil, err
	}
	if err = ValidateVenue(in); err != nil {
		return nil, err
	}
	if _, err = m.owned(ctx, sess, id, "update"); err != nil {
		return nil, err
	}
	venue, err = m.api.UpdateVenue(ctx, sess.Token, id, in)
	if err != nil {
		return nil, err
	}
	m.logger.Info().Str("venue_id", id).Str("user", sess.User.Name).Msg("venue updated")
	return venue, nil
}

// Delete removes a venue the session user owns.
func (m *Manager) Delete(ctx context.Context, sess session.Session, id string) (err error) {
	defer func() { m.record("delete", err) }()

	if err = requireManager(sess, "delete"); err != nil {
		return err
	}
	if _, err = m.owned(ctx, sess, id, "delete"); err != nil {
		return err
	}
	if err = m.api.DeleteVenue(ctx, sess.Token, id); err != nil {
		return err
	}
	m.logger.Info().Str("venue_id", id).Str("user", sess.User.Name).Msg("venue deleted")
	return nil
}

// MyVenues lists the venues of the session user with their bookings.
func (m *Manager) MyVenues(ctx context.Context, sess session.Session) ([]model.Venue, error) {
	if err := requireManager(sess, "view"); err != nil {
		return nil, err
	}
	return m.api.ProfileVenues(ctx, sess.Token, sess.User.Name)
}

// UpcomingBookings collects bookings of the session user's venues starting on
// or after today, sorted by start date. Booking details that cannot be loaded
// are skipped.
func (m *Manager) UpcomingBookings(ctx context.Context, sess session.Session, today model.Day) ([]UpcomingBooking, error) {
	venues, err := m.MyVenues(ctx, sess)
	if err != nil {
		return nil, err
	}

	var out []UpcomingBooking
	for i := range venues {
		v := &venues[i]
		for _, b := range v.Bookings {
			if b.DateFrom.Before(today) {
				continue
			}
			details, err := m.api.GetBooking(ctx, sess.Token, b.ID)
			if err != nil {
				m.logger.Warn().Err(err).Str("booking_id", b.ID).Msg("load booking details")
				continue
			}
			out = append(out, UpcomingBooking{
				VenueID:    v.ID,
				VenueName:  v.Name,
				VenuePrice: v.Price,
				Booking:    *details,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Booking.DateFrom.Before(out[j].Booking.DateFrom)
	})
	return out, nil
}
