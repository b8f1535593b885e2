package db

import (
	"context"
	"time"

	"holidaze/internal/model"
)

// BookingAttempt is one row of the booking audit log.
type BookingAttempt struct {
	ID         int64
	TelegramID int64
	VenueID    string
	DateFrom   model.Day
	DateTo     model.Day
	Guests     int
	Result     string
	Message    string
	BookingID  string
	CreatedAt  time.Time
}

// LogBookingAttempt appends a submission outcome to the audit log.
func (db *DB) LogBookingAttempt(ctx context.Context, a BookingAttempt) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO booking_log (telegram_id, venue_id, date_from, date_to, guests, result, message, booking_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.TelegramID, a.VenueID, a.DateFrom.String(), a.DateTo.String(), a.Guests, a.Result, a.Message, a.BookingID, time.Now())
	return err
}

// RecentBookingAttempts returns the latest attempts of a user, newest first.
func (db *DB) RecentBookingAttempts(ctx context.Context, telegramID int64, limit int) ([]BookingAttempt, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, telegram_id, venue_id, date_from, date_to, guests, result,
		       COALESCE(message, ''), COALESCE(booking_id, ''), created_at
		FROM booking_log
		WHERE telegram_id = ?
		ORDER BY id DESC
		LIMIT ?`, telegramID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookingAttempt
	for rows.Next() {
		var (
			a        BookingAttempt
			from, to string
		)
		if err := rows.Scan(&a.ID, &a.TelegramID, &a.VenueID, &from, &to, &a.Guests, &a.Result,
			&a.Message, &a.BookingID, &a.CreatedAt); err != nil {
			return nil, err
		}
		// Rejected submissions may carry an empty range.
		a.DateFrom, _ = model.ParseDay(from)
		a.DateTo, _ = model.ParseDay(to)
		out = append(out, a)
	}
	return out, rows.Err()
}
