package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"holidaze/internal/model"
	"holidaze/internal/session"
)

var _ session.Store = (*DB)(nil)

// GetSession returns the stored session of a Telegram user or session.ErrNotFound.
func (db *DB) GetSession(ctx context.Context, userID int64) (session.Session, error) {
	row := db.QueryRowContext(ctx, `
		SELECT token, name, email, bio, avatar_url, venue_manager, created_at
		FROM sessions
		WHERE telegram_id = ?`, userID)

	var (
		s                     session.Session
		email, bio, avatarURL sql.NullString
	)
	err := row.Scan(&s.Token, &s.User.Name, &email, &bio, &avatarURL, &s.User.VenueManager, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Anonymous, session.ErrNotFound
		}
		return session.Anonymous, err
	}
	s.User.Email = email.String
	s.User.Bio = bio.String
	if avatarURL.String != "" {
		s.User.Avatar = &model.Media{URL: avatarURL.String}
	}
	return s, nil
}

// SaveSession creates or replaces the session of a Telegram user.
func (db *DB) SaveSession(ctx context.Context, userID int64, s session.Session) error {
	now := time.Now()
	created := s.CreatedAt
	if created.IsZero() {
		created = now
	}
	avatarURL := ""
	if s.User.Avatar != nil {
		avatarURL = s.User.Avatar.URL
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (telegram_id, token, name, email, bio, avatar_url, venue_manager, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
			token = excluded.token,
			name = excluded.name,
			email = excluded.email,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			venue_manager = excluded.venue_manager,
			updated_at = excluded.updated_at`,
		userID, s.Token, s.User.Name, s.User.Email, s.User.Bio, avatarURL, s.User.VenueManager, created, now)
	return err
}

// DeleteSession logs a user out. Deleting a missing session is not an error.
func (db *DB) DeleteSession(ctx context.Context, userID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE telegram_id = ?`, userID)
	return err
}

// StoredSession is a session together with the Telegram user it belongs to.
type StoredSession struct {
	TelegramID int64
	Session    session.Session
}

// ListSessions returns all stored sessions ordered by Telegram ID.
func (db *DB) ListSessions(ctx context.Context) ([]StoredSession, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT telegram_id, token, name, email, bio, avatar_url, venue_manager, created_at
		FROM sessions
		ORDER BY telegram_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredSession
	for rows.Next() {
		var (
			rec                   StoredSession
			email, bio, avatarURL sql.NullString
		)
		s := &rec.Session
		if err := rows.Scan(&rec.TelegramID, &s.Token, &s.User.Name, &email, &bio, &avatarURL,
			&s.User.VenueManager, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.User.Email = email.String
		s.User.Bio = bio.String
		if avatarURL.String != "" {
			s.User.Avatar = &model.Media{URL: avatarURL.String}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
