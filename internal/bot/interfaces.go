package bot

import (
	"context"

	"holidaze/internal/booking"
	"holidaze/internal/db"
	"holidaze/internal/model"
	"holidaze/internal/session"
	"holidaze/internal/venueapi"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the remote venue service as used by the bot.
type API interface {
	booking.Creator
	booking.Updater
	booking.VenueAPI

	Register(ctx context.Context, req venueapi.RegisterRequest) (*model.Profile, error)
	Login(ctx context.Context, creds venueapi.Credentials) (*venueapi.LoginResult, error)
	GetProfile(ctx context.Context, token, name string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, token, name string, upd venueapi.ProfileUpdate) (*model.Profile, error)
	ListVenues(ctx context.Context, opts venueapi.ListOptions) ([]model.Venue, venueapi.PageMeta, error)
	SearchVenues(ctx context.Context, query string, opts venueapi.ListOptions) ([]model.Venue, venueapi.PageMeta, error)
	ProfileBookings(ctx context.Context, token, name string) ([]model.Booking, error)
	DeleteBooking(ctx context.Context, token, id string) error
}

// Store persists sessions and the booking audit log.
type Store interface {
	session.Store
	ListSessions(ctx context.Context) ([]db.StoredSession, error)
	LogBookingAttempt(ctx context.Context, a db.BookingAttempt) error
}

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) StopReceivingUpdates() {
	c.api.StopReceivingUpdates()
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}
