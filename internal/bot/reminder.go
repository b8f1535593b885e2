package bot

import (
	"context"
	"fmt"
	"time"

	"holidaze/internal/metrics"
	"holidaze/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Telegram allows about 30 messages per second across all chats.
const (
	reminderRate  = 20
	reminderBurst = 5
)

// StartReminders sends check-in reminders every day at hour (local time)
// until ctx is done.
func (b *Bot) StartReminders(ctx context.Context, hour int) {
	go func() {
		timer := time.NewTimer(timeUntilNextHour(b.now(), hour))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				l := b.logger.With().Str("job", "reminders").Logger()
				b.sendCheckInReminders(l.WithContext(ctx))
				timer.Reset(timeUntilNextHour(b.now(), hour))
			}
		}
	}()
}

// sendCheckInReminders tells every logged in user about bookings that start tomorrow.
func (b *Bot) sendCheckInReminders(ctx context.Context) int {
	l := zerolog.Ctx(ctx)
	tomorrow := model.DayOf(b.now()).AddDays(1)

	sessions, err := b.store.ListSessions(ctx)
	if err != nil {
		l.Error().Err(err).Msg("reminder: list sessions")
		return 0
	}

	limiter := rate.NewLimiter(reminderRate, reminderBurst)
	sent := 0
	for _, rec := range sessions {
		sess := rec.Session
		if !sess.LoggedIn() {
			continue
		}
		bookings, err := b.api.ProfileBookings(ctx, sess.Token, sess.User.Name)
		if err != nil {
			l.Warn().Err(err).Int64("user_id", rec.TelegramID).Msg("reminder: load bookings")
			continue
		}
		for i := range bookings {
			if !bookings[i].DateFrom.Equal(tomorrow) {
				continue
			}
			if err := limiter.Wait(ctx); err != nil {
				return sent
			}
			msg := tgbotapi.NewMessage(rec.TelegramID, formatReminderMessage(&bookings[i]))
			if _, err := b.tg.Send(msg); err != nil {
				metrics.IncReminder("error")
				l.Warn().Err(err).Int64("user_id", rec.TelegramID).Msg("reminder: send")
				continue
			}
			metrics.IncReminder("ok")
			sent++
		}
	}
	l.Info().Int("sent", sent).Str("check_in", tomorrow.String()).Msg("reminders done")
	return sent
}

func formatReminderMessage(bk *model.Booking) string {
	name := "your venue"
	if bk.Venue != nil && bk.Venue.Name != "" {
		name = bk.Venue.Name
	}
	return fmt.Sprintf("⏰ Reminder: your stay at %s starts tomorrow, %s (until %s, %d guest(s)).",
		name, bk.DateFrom, bk.DateTo, bk.Guests)
}

func timeUntilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
