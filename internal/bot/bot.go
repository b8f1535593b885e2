// Package bot is the Telegram front end: venue browsing, the availability
// calendar, booking, accounts and venue management.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"holidaze/internal/availability"
	"holidaze/internal/booking"
	"holidaze/internal/session"
	"holidaze/internal/venueapi"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const pageSize = 10

const (
	btnVenues     = "🏠 Venues"
	btnSearch     = "🔍 Search"
	btnMyBookings = "📅 My bookings"
	btnProfile    = "👤 Profile"
	btnMyVenues   = "🏢 My venues"
	btnNewVenue   = "➕ New venue"
	btnLogin      = "🔑 Log in"
	btnRegister   = "📝 Register"
	btnHelp       = "ℹ️ Help"
)

const helpText = `Commands:
/venues - browse venues
/search - search venues
/login, /register, /logout
/profile - your profile
/mybookings - your bookings
/myvenues, /newvenue, /upcoming - venue managers
/cancel - stop the current dialog`

// Bot handles Telegram updates for all users.
type Bot struct {
	api       API
	store     Store
	submitter *booking.Submitter
	manager   *booking.Manager
	tg        telegramClient
	state     *stateStore
	logger    *zerolog.Logger
	now       func() time.Time
}

// New connects to Telegram with token.
func New(token string, debug bool, api API, store Store, logger *zerolog.Logger) (*Bot, error) {
	tg, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	tg.Debug = debug
	return newBot(&realTelegramClient{api: tg}, api, store, logger)
}

// NewWithTelegramClient allows injecting a fake Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, api API, store Store, logger *zerolog.Logger) (*Bot, error) {
	return newBot(tg, api, store, logger)
}

func newBot(tg telegramClient, api API, store Store, logger *zerolog.Logger) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	if api == nil || store == nil {
		return nil, fmt.Errorf("api and store are required")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "bot").Logger()
	return &Bot{
		api:       api,
		store:     store,
		submitter: booking.NewSubmitter(api, l),
		manager:   booking.NewManager(api, l),
		tg:        tg,
		state:     newStateStore(),
		logger:    &l,
		now:       time.Now,
	}, nil
}

// Start polls updates and handles them one at a time until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	defer b.tg.StopReceivingUpdates()
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			b.handleUpdate(l.WithContext(ctx), &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil && update.Message.From != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Bool("command", update.Message.IsCommand()).
			Msg("handling message")
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	userID, chatID := msg.From.ID, msg.Chat.ID

	// Commands and menu buttons interrupt any active dialog.
	if b.handleCommand(ctx, msg, text) {
		return
	}

	st := b.state.get(userID)
	switch st.Step {
	case stepLoginEmail, stepLoginPassword:
		b.handleLoginStep(ctx, msg, st, text)
	case stepRegisterName, stepRegisterEmail, stepRegisterPassword:
		b.handleRegisterStep(ctx, msg, st, text)
	case stepSearch:
		st.Step = stepNone
		st.Query = text
		b.sendVenueList(ctx, chatID, userID, 0, 0)
	case stepBookingGuests:
		b.handleBookingGuestsStep(ctx, chatID, userID, st, text)
	case stepProfileBio, stepProfileAvatar:
		b.handleProfileStep(ctx, chatID, userID, st, text)
	case stepVenueName, stepVenueDescription, stepVenuePrice, stepVenueMaxGuests, stepVenueImage, stepVenueCity:
		b.handleVenueFormStep(ctx, chatID, userID, st, text)
	default:
		b.reply(chatID, "Choose an action from the menu or type /help.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	userID, chatID := msg.From.ID, msg.Chat.ID
	cmd := text
	if msg.IsCommand() {
		cmd = "/" + msg.Command()
	}

	switch cmd {
	case "/start":
		b.state.reset(userID)
		b.sendMainMenu(ctx, chatID, userID, "Welcome to Holidaze! Find a place to stay and book it right here.")
	case "/help", btnHelp:
		b.reply(chatID, helpText)
	case "/cancel":
		b.state.resetDialog(userID)
		b.sendMainMenu(ctx, chatID, userID, "Cancelled.")
	case "/venues", btnVenues:
		b.state.resetDialog(userID)
		b.state.get(userID).Query = ""
		b.sendVenueList(ctx, chatID, userID, 0, 0)
	case "/search", btnSearch:
		if q := strings.TrimSpace(msg.CommandArguments()); msg.IsCommand() && q != "" {
			b.state.resetDialog(userID)
			b.state.get(userID).Query = q
			b.sendVenueList(ctx, chatID, userID, 0, 0)
			return true
		}
		b.state.resetDialog(userID)
		b.state.get(userID).Step = stepSearch
		b.reply(chatID, "What are you looking for? Send a name or a word from the description.")
	case "/venue":
		id := strings.TrimSpace(msg.CommandArguments())
		if id == "" {
			b.reply(chatID, "Usage: /venue <id>")
			return true
		}
		b.openVenue(ctx, chatID, userID, id)
	case "/login", btnLogin:
		b.startLogin(chatID, userID)
	case "/register", btnRegister:
		b.startRegister(chatID, userID)
	case "/logout":
		b.logout(ctx, chatID, userID)
	case "/profile", btnProfile:
		b.state.resetDialog(userID)
		b.sendProfile(ctx, chatID, userID)
	case "/mybookings", btnMyBookings:
		b.state.resetDialog(userID)
		b.sendMyBookings(ctx, chatID, userID)
	case "/myvenues", btnMyVenues:
		b.state.resetDialog(userID)
		b.sendMyVenues(ctx, chatID, userID)
	case "/newvenue", btnNewVenue:
		b.startVenueForm(ctx, chatID, userID, nil)
	case "/upcoming":
		b.state.resetDialog(userID)
		b.sendUpcoming(ctx, chatID, userID)
	default:
		if msg.IsCommand() {
			b.reply(chatID, "Unknown command. Type /help.")
			return true
		}
		return false
	}
	return true
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.From == nil {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	data := cq.Data
	userID, chatID, msgID := cq.From.ID, cq.Message.Chat.ID, cq.Message.MessageID

	switch {
	case data == cbNoop:
		_ = b.answerCallback(cq.ID, "")
	case strings.HasPrefix(data, "cal:"):
		b.handleCalendarCallback(ctx, cq, data)
	case data == cbMenu:
		_ = b.answerCallback(cq.ID, "")
		b.sendMainMenu(ctx, chatID, userID, "Choose an action:")
	case strings.HasPrefix(data, cbPagePrefix):
		_ = b.answerCallback(cq.ID, "")
		page, err := parsePage(strings.TrimPrefix(data, cbPagePrefix))
		if err != nil {
			return
		}
		b.sendVenueList(ctx, chatID, userID, page, msgID)
	case data == cbBackToList:
		_ = b.answerCallback(cq.ID, "")
		b.sendVenueList(ctx, chatID, userID, b.state.get(userID).Page, 0)
	case strings.HasPrefix(data, cbVenuePrefix):
		_ = b.answerCallback(cq.ID, "")
		b.openVenue(ctx, chatID, userID, strings.TrimPrefix(data, cbVenuePrefix))
	case strings.HasPrefix(data, cbRegisterManagerPrefix):
		_ = b.answerCallback(cq.ID, "")
		b.finishRegister(ctx, chatID, userID, data == cbRegisterManagerYes)
	case strings.HasPrefix(data, cbMyBookingPrefix):
		b.handleMyBookingCallback(ctx, cq, strings.TrimPrefix(data, cbMyBookingPrefix))
	case strings.HasPrefix(data, cbManagerPrefix):
		b.handleManagerCallback(ctx, cq, strings.TrimPrefix(data, cbManagerPrefix))
	case strings.HasPrefix(data, cbFormPrefix):
		b.handleVenueFormCallback(ctx, cq, strings.TrimPrefix(data, cbFormPrefix))
	case strings.HasPrefix(data, cbProfilePrefix):
		_ = b.answerCallback(cq.ID, "")
		b.handleProfileCallback(ctx, chatID, userID, strings.TrimPrefix(data, cbProfilePrefix))
	default:
		_ = b.answerCallback(cq.ID, "")
	}
}

// session loads the explicit session of a Telegram user.
func (b *Bot) session(ctx context.Context, userID int64) session.Session {
	sess, err := session.Load(ctx, b.store, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("load session")
		return session.Anonymous
	}
	return sess
}

func (b *Bot) today() time.Time {
	return b.now()
}

func (b *Bot) sendMainMenu(ctx context.Context, chatID, userID int64, text string) {
	sess := b.session(ctx, userID)

	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnVenues),
			tgbotapi.NewKeyboardButton(btnSearch),
		),
	}
	switch {
	case !sess.LoggedIn():
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLogin),
			tgbotapi.NewKeyboardButton(btnRegister),
		))
	default:
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyBookings),
			tgbotapi.NewKeyboardButton(btnProfile),
		))
		if sess.IsVenueManager() {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(btnMyVenues),
				tgbotapi.NewKeyboardButton(btnNewVenue),
			))
		}
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnHelp)))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) answerCallback(id, text string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, text))
	return err
}

// replyError shows err to the user. Service messages are shown verbatim.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	b.reply(chatID, "⚠️ "+userMessage(ctx, err))
}

func userMessage(ctx context.Context, err error) string {
	var verr *booking.ValidationError
	var apiErr *venueapi.APIError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, availability.ErrDateBooked),
		errors.Is(err, availability.ErrEndBeforeStart),
		errors.Is(err, availability.ErrRangeBooked),
		errors.Is(err, availability.ErrOutsideCalendar):
		return err.Error()
	case errors.Is(err, booking.ErrNoVenue):
		return "Open a venue first."
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("request failed")
		return "request failed"
	}
}
