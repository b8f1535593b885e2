// Package session holds the authenticated identity that is passed explicitly
// into every call that needs it.
package session

import (
	"context"
	"errors"
	"time"

	"holidaze/internal/model"
)

// ErrNotFound is returned by stores when no session exists for a user.
var ErrNotFound = errors.New("session not found")

// Session is the token and profile obtained at login.
type Session struct {
	Token     string
	User      model.Profile
	CreatedAt time.Time
}

// Anonymous is the session of a user that has not logged in.
var Anonymous = Session{}

// LoggedIn reports whether the session carries an access token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// IsVenueManager reports whether the logged in user may manage venues.
func (s Session) IsVenueManager() bool {
	return s.LoggedIn() && s.User.VenueManager
}

// Store persists sessions per chat user.
type Store interface {
	GetSession(ctx context.Context, userID int64) (Session, error)
	SaveSession(ctx context.Context, userID int64, s Session) error
	DeleteSession(ctx context.Context, userID int64) error
}

// Load returns the stored session or Anonymous when there is none.
func Load(ctx context.Context, store Store, userID int64) (Session, error) {
	s, err := store.GetSession(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Anonymous, nil
	}
	if err != nil {
		return Anonymous, err
	}
	return s, nil
}
