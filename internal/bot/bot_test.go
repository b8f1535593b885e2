package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"holidaze/internal/availability"
	"holidaze/internal/booking"
	"holidaze/internal/db"
	"holidaze/internal/model"
	"holidaze/internal/session"
	"holidaze/internal/venueapi"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: 1000 + f.nextID}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeTelegram) StopReceivingUpdates() {}

func (f *fakeTelegram) SelfUser() tgbotapi.User {
	return tgbotapi.User{UserName: "holidaze_test_bot"}
}

// texts returns the text of every sent or edited message.
func (f *fakeTelegram) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeTelegram) lastText() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

// toasts returns the texts of callback answers.
func (f *fakeTelegram) toasts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok && cb.Text != "" {
			out = append(out, cb.Text)
		}
	}
	return out
}

func (f *fakeTelegram) documents() []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) CreateBooking(ctx context.Context, token string, req venueapi.BookingRequest) (*model.Booking, error) {
	args := m.Called(ctx, token, req)
	v, _ := args.Get(0).(*model.Booking)
	return v, args.Error(1)
}

func (m *mockAPI) GetVenue(ctx context.Context, id string, vq venueapi.VenueQuery) (*model.Venue, error) {
	args := m.Called(ctx, id, vq)
	v, _ := args.Get(0).(*model.Venue)
	return v, args.Error(1)
}

func (m *mockAPI) CreateVenue(ctx context.Context, token string, in venueapi.VenueInput) (*model.Venue, error) {
	args := m.Called(ctx, token, in)
	v, _ := args.Get(0).(*model.Venue)
	return v, args.Error(1)
}

func (m *mockAPI) UpdateVenue(ctx context.Context, token, id string, in venueapi.VenueInput) (*model.Venue, error) {
	args := m.Called(ctx, token, id, in)
	v, _ := args.Get(0).(*model.Venue)
	return v, args.Error(1)
}

func (m *mockAPI) DeleteVenue(ctx context.Context, token, id string) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *mockAPI) ProfileVenues(ctx context.Context, token, name string) ([]model.Venue, error) {
	args := m.Called(ctx, token, name)
	v, _ := args.Get(0).([]model.Venue)
	return v, args.Error(1)
}

func (m *mockAPI) GetBooking(ctx context.Context, token, id string) (*model.Booking, error) {
	args := m.Called(ctx, token, id)
	v, _ := args.Get(0).(*model.Booking)
	return v, args.Error(1)
}

func (m *mockAPI) Register(ctx context.Context, req venueapi.RegisterRequest) (*model.Profile, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*model.Profile)
	return v, args.Error(1)
}

func (m *mockAPI) Login(ctx context.Context, creds venueapi.Credentials) (*venueapi.LoginResult, error) {
	args := m.Called(ctx, creds)
	v, _ := args.Get(0).(*venueapi.LoginResult)
	return v, args.Error(1)
}

func (m *mockAPI) GetProfile(ctx context.Context, token, name string) (*model.Profile, error) {
	args := m.Called(ctx, token, name)
	v, _ := args.Get(0).(*model.Profile)
	return v, args.Error(1)
}

func (m *mockAPI) UpdateProfile(ctx context.Context, token, name string, upd venueapi.ProfileUpdate) (*model.Profile, error) {
	args := m.Called(ctx, token, name, upd)
	v, _ := args.Get(0).(*model.Profile)
	return v, args.Error(1)
}

func (m *mockAPI) ListVenues(ctx context.Context, opts venueapi.ListOptions) ([]model.Venue, venueapi.PageMeta, error) {
	args := m.Called(ctx, opts)
	v, _ := args.Get(0).([]model.Venue)
	return v, args.Get(1).(venueapi.PageMeta), args.Error(2)
}

func (m *mockAPI) SearchVenues(ctx context.Context, query string, opts venueapi.ListOptions) ([]model.Venue, venueapi.PageMeta, error) {
	args := m.Called(ctx, query, opts)
	v, _ := args.Get(0).([]model.Venue)
	return v, args.Get(1).(venueapi.PageMeta), args.Error(2)
}

func (m *mockAPI) ProfileBookings(ctx context.Context, token, name string) ([]model.Booking, error) {
	args := m.Called(ctx, token, name)
	v, _ := args.Get(0).([]model.Booking)
	return v, args.Error(1)
}

func (m *mockAPI) DeleteBooking(ctx context.Context, token, id string) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *mockAPI) UpdateBooking(ctx context.Context, token, id string, upd venueapi.BookingUpdate) (*model.Booking, error) {
	args := m.Called(ctx, token, id, upd)
	v, _ := args.Get(0).(*model.Booking)
	return v, args.Error(1)
}

const (
	guestID   int64 = 100
	managerID int64 = 200
	anonID    int64 = 300
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func day(s string) model.Day { return model.MustParseDay(s) }

func newTestBot(t *testing.T) (*Bot, *fakeTelegram, *mockAPI, *db.DB) {
	t.Helper()
	store, err := db.NewDB(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, guestID, session.Session{Token: "tok", User: model.Profile{Name: "ola"}}))
	require.NoError(t, store.SaveSession(ctx, managerID, session.Session{
		Token: "mtok", User: model.Profile{Name: "kari", VenueManager: true},
	}))

	tg := &fakeTelegram{}
	api := &mockAPI{}
	b, err := NewWithTelegramClient(tg, api, store, nil)
	require.NoError(t, err)
	b.now = func() time.Time { return fixedNow }
	return b, tg, api, store
}

func textUpdate(userID int64, text string) *tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: userID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return &tgbotapi.Update{Message: msg}
}

func callbackUpdate(userID int64, msgID int, data string) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cq",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: msgID, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func cabin() *model.Venue {
	return &model.Venue{
		ID: "v-1", Name: "Cabin", Price: 100, MaxGuests: 4,
		Owner: &model.Profile{Name: "kari"},
		Bookings: []model.Booking{
			{ID: "b-10", DateFrom: day("2024-03-10"), DateTo: day("2024-03-10")},
		},
	}
}

func TestCalendarKeyboard(t *testing.T) {
	snap := booking.Snapshot{
		Venue:     *cabin(),
		Grid:      availability.BuildMonth(cabin().Bookings, fixedNow),
		State:     availability.StateIdle,
		Selection: availability.Selection{From: day("2024-03-05"), To: day("2024-03-06")},
		Guests:    2,
	}
	kb := CalendarKeyboard(snap).InlineKeyboard

	// month header, weekdays, 5 weeks, guests, actions, back
	require.Len(t, kb, 10)
	assert.Equal(t, "March 2024", kb[0][1].Text)
	assert.Equal(t, "Mo", kb[1][0].Text)

	// 2024-03-01 is a Friday.
	week1 := kb[2]
	require.Len(t, week1, 7)
	assert.Equal(t, " ", week1[3].Text)
	assert.Equal(t, "1", week1[4].Text)
	require.NotNil(t, week1[4].CallbackData)
	assert.Equal(t, "cal:d:2024-03-01", *week1[4].CallbackData)

	week2 := kb[3] // 4..10
	assert.Equal(t, "✓5", week2[1].Text)
	assert.Equal(t, "✓6", week2[2].Text)
	assert.Equal(t, "7", week2[3].Text)
	assert.Equal(t, "✖", week2[6].Text)

	last := kb[6] // 25..31
	assert.Equal(t, "31", last[6].Text)
	assert.Equal(t, "👥 2", kb[7][1].Text)

	snap.State = availability.StateAwaitingEnd
	snap.Start = day("2024-03-20")
	snap.Selection = availability.Selection{}
	kb = CalendarKeyboard(snap).InlineKeyboard
	assert.Equal(t, "▶20", kb[5][2].Text)
}

func TestVenueText(t *testing.T) {
	snap := booking.Snapshot{Venue: *cabin(), Selection: availability.Selection{From: day("2024-03-05"), To: day("2024-03-07")}}
	text := venueText(snap)
	assert.Contains(t, text, "Cabin")
	assert.Contains(t, text, "100 NOK per night")
	assert.Contains(t, text, "Selected 2024-03-05 → 2024-03-07 (2 night(s), 200 NOK total)")
}

func TestBot_BookingFlow(t *testing.T) {
	b, tg, api, store := newTestBot(t)
	ctx := context.Background()

	api.On("GetVenue", mock.Anything, "v-1", venueapi.VenueQuery{Bookings: true, Owner: true}).Return(cabin(), nil).Once()
	b.handleUpdate(ctx, textUpdate(guestID, "/venue v-1"))
	require.Contains(t, tg.lastText(), "Tap a check-in date")
	calMsg := b.state.get(guestID).CalendarMsgID
	require.NotZero(t, calMsg)

	b.handleUpdate(ctx, callbackUpdate(guestID, calMsg, "cal:d:2024-03-10"))
	assert.Contains(t, tg.toasts(), "date already booked")

	b.handleUpdate(ctx, callbackUpdate(guestID, calMsg, "cal:d:2024-03-05"))
	assert.Contains(t, tg.lastText(), "Check-in 2024-03-05")
	b.handleUpdate(ctx, callbackUpdate(guestID, calMsg, "cal:d:2024-03-07"))
	assert.Contains(t, tg.toasts(), "Dates selected")
	b.handleUpdate(ctx, callbackUpdate(guestID, calMsg, "cal:g:1"))

	api.On("CreateBooking", mock.Anything, "tok", venueapi.BookingRequest{
		DateFrom: day("2024-03-05"), DateTo: day("2024-03-07"), Guests: 2, VenueID: "v-1",
	}).Return(&model.Booking{ID: "b-new"}, nil).Once()

	refreshed := cabin()
	refreshed.Bookings = append(refreshed.Bookings, model.Booking{ID: "b-new", DateFrom: day("2024-03-05"), DateTo: day("2024-03-07")})
	api.On("GetVenue", mock.Anything, "v-1", venueapi.VenueQuery{Bookings: true, Owner: true, NoCache: true}).Return(refreshed, nil).Once()

	b.handleUpdate(ctx, callbackUpdate(guestID, calMsg, "cal:book"))

	assert.Contains(t, tg.texts(), "✅ Booked Cabin from 2024-03-05 to 2024-03-07 for 2 guest(s).")
	snap, ok := b.state.get(guestID).View.Snapshot()
	require.True(t, ok)
	assert.True(t, snap.Grid.IsBooked(day("2024-03-06")))
	assert.False(t, snap.Selection.IsSet())
	assert.Equal(t, 1, snap.Guests)

	attempts, err := store.RecentBookingAttempts(ctx, guestID, 5)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "ok", attempts[0].Result)
	assert.Equal(t, "b-new", attempts[0].BookingID)
	api.AssertExpectations(t)
}

func TestBot_BookRequiresLogin(t *testing.T) {
	b, tg, api, store := newTestBot(t)
	ctx := context.Background()

	api.On("GetVenue", mock.Anything, "v-1", mock.Anything).Return(cabin(), nil)
	b.handleUpdate(ctx, textUpdate(anonID, "/venue v-1"))
	calMsg := b.state.get(anonID).CalendarMsgID

	b.handleUpdate(ctx, callbackUpdate(anonID, calMsg, "cal:d:2024-03-05"))
	b.handleUpdate(ctx, callbackUpdate(anonID, calMsg, "cal:d:2024-03-06"))
	b.handleUpdate(ctx, callbackUpdate(anonID, calMsg, "cal:book"))

	assert.Contains(t, tg.texts(), "⚠️ You must be logged in to book a venue")
	api.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)

	attempts, err := store.RecentBookingAttempts(ctx, anonID, 5)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "invalid", attempts[0].Result)

	snap, _ := b.state.get(anonID).View.Snapshot()
	assert.True(t, snap.Selection.IsSet(), "selection kept for retry after login")
}

func TestBot_RemoteRejectionShownVerbatim(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	api.On("GetVenue", mock.Anything, "v-1", mock.Anything).Return(cabin(), nil)
	api.On("CreateBooking", mock.Anything, "tok", mock.Anything).
		Return(nil, &venueapi.APIError{Status: 409, Message: "The selected dates are no longer available"})

	b.handleUpdate(ctx, textUpdate(guestID, "/venue v-1"))
	calMsg := b.state.get(guestID).CalendarMsgID
	b.handleUpdate(ctx, callbackUpdate(guestID, calMsg, "cal:d:2024-03-12"))
	b.handleUpdate(ctx, callbackUpdate(guestID, calMsg, "cal:d:2024-03-13"))
	b.handleUpdate(ctx, callbackUpdate(guestID, calMsg, "cal:book"))

	assert.Contains(t, tg.texts(), "⚠️ The selected dates are no longer available")
	snap, _ := b.state.get(guestID).View.Snapshot()
	assert.Equal(t, availability.Selection{From: day("2024-03-12"), To: day("2024-03-13")}, snap.Selection)
}

func TestBot_LoginFlow(t *testing.T) {
	b, tg, api, store := newTestBot(t)
	ctx := context.Background()
	const userID int64 = 555

	api.On("Login", mock.Anything, venueapi.Credentials{Email: "kari@stud.noroff.no", Password: "hunter22"}).
		Return(&venueapi.LoginResult{Profile: model.Profile{Name: "kari", Email: "kari@stud.noroff.no"}, AccessToken: "new-tok"}, nil)
	api.On("GetProfile", mock.Anything, "new-tok", "kari").
		Return(&model.Profile{Name: "kari", VenueManager: true, Bio: "host"}, nil)

	b.handleUpdate(ctx, textUpdate(userID, "/login"))
	b.handleUpdate(ctx, textUpdate(userID, "kari@stud.noroff.no"))
	b.handleUpdate(ctx, textUpdate(userID, "hunter22"))

	assert.Equal(t, "Welcome back, kari!", tg.lastText())

	sess, err := store.GetSession(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "new-tok", sess.Token)
	assert.True(t, sess.IsVenueManager())
	assert.Equal(t, "host", sess.User.Bio)

	var deleted bool
	for _, r := range tg.requests {
		if _, ok := r.(tgbotapi.DeleteMessageConfig); ok {
			deleted = true
		}
	}
	assert.True(t, deleted, "password message is removed")

	b.handleUpdate(ctx, textUpdate(userID, "/logout"))
	_, err = store.GetSession(ctx, userID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestBot_LoginFailureShowsServiceMessage(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	api.On("Login", mock.Anything, mock.Anything).
		Return(nil, &venueapi.APIError{Status: 401, Message: "Invalid email or password"})

	b.handleUpdate(ctx, textUpdate(anonID, "/login"))
	b.handleUpdate(ctx, textUpdate(anonID, "x@stud.noroff.no"))
	b.handleUpdate(ctx, textUpdate(anonID, "wrong"))

	assert.Equal(t, "⚠️ Invalid email or password", tg.lastText())
}

func TestBot_VenueListPaging(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	next := 2
	api.On("SearchVenues", mock.Anything, "", venueapi.ListOptions{Limit: pageSize, Page: 1, Sort: "created", SortOrder: "desc"}).
		Return([]model.Venue{{ID: "a", Name: "Alpha"}}, venueapi.PageMeta{CurrentPage: 1, PageCount: 2, NextPage: &next}, nil)
	api.On("SearchVenues", mock.Anything, "oslo", venueapi.ListOptions{Limit: pageSize, Page: 1, Sort: "created", SortOrder: "desc"}).
		Return([]model.Venue{}, venueapi.PageMeta{}, nil)

	b.handleUpdate(ctx, textUpdate(guestID, "/venues"))
	assert.Contains(t, tg.lastText(), "1. Alpha")
	assert.Contains(t, tg.lastText(), "Page 1 of 2")

	b.handleUpdate(ctx, textUpdate(guestID, btnSearch))
	b.handleUpdate(ctx, textUpdate(guestID, "oslo"))
	assert.Contains(t, tg.lastText(), `Results for "oslo"`)
	assert.Contains(t, tg.lastText(), "No venues found.")
}

func TestRenderVenuePage(t *testing.T) {
	_, kb := renderVenuePage(venuePage{
		Title:  "Venues",
		Venues: []model.Venue{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}},
		Meta:   venueapi.PageMeta{PageCount: 3},
		Page:   1,
	})
	rows := kb.InlineKeyboard
	require.Len(t, rows, 4)
	assert.Equal(t, "v:a", *rows[0][0].CallbackData)
	require.Len(t, rows[2], 2)
	assert.Equal(t, "page:0", *rows[2][0].CallbackData)
	assert.Equal(t, "page:2", *rows[2][1].CallbackData)
	assert.Equal(t, cbMenu, *rows[3][0].CallbackData)
}

func TestBot_VenueFormRequiresManager(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, textUpdate(anonID, "/newvenue"))
	assert.Equal(t, "You must be logged in to create a venue.", tg.lastText())

	b.handleUpdate(ctx, textUpdate(guestID, "/newvenue"))
	assert.Equal(t, "You must be a venue manager to create a venue.", tg.lastText())
	assert.Empty(t, api.Calls)
}

func TestBot_CreateVenueDialog(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	want := venueapi.VenueInput{
		Name: "Sea view", Description: "Close to the beach", Price: 850, MaxGuests: 3,
		Media:    []model.Media{{URL: "https://img.example/sea.jpg", Alt: "Sea view"}},
		Location: model.Location{City: "Bergen"},
		Meta:     model.Meta{WiFi: true},
	}
	api.On("CreateVenue", mock.Anything, "mtok", want).Return(&model.Venue{ID: "new-v", Name: "Sea view"}, nil).Once()

	b.handleUpdate(ctx, textUpdate(managerID, "/newvenue"))
	b.handleUpdate(ctx, textUpdate(managerID, "Sea view"))
	b.handleUpdate(ctx, textUpdate(managerID, "Close to the beach"))
	b.handleUpdate(ctx, textUpdate(managerID, "-5"))
	assert.Equal(t, "Price must be a number of at least 0.", tg.lastText())
	b.handleUpdate(ctx, textUpdate(managerID, "850"))
	b.handleUpdate(ctx, textUpdate(managerID, "0"))
	assert.Equal(t, "Max guests must be at least 1", tg.lastText())
	b.handleUpdate(ctx, textUpdate(managerID, "3"))
	b.handleUpdate(ctx, textUpdate(managerID, "https://img.example/sea.jpg"))
	b.handleUpdate(ctx, textUpdate(managerID, "Bergen"))
	require.Equal(t, stepVenueConfirm, b.state.get(managerID).Step)

	b.handleUpdate(ctx, callbackUpdate(managerID, 77, "vf:wifi"))
	b.handleUpdate(ctx, callbackUpdate(managerID, 77, "vf:save"))

	assert.Equal(t, "Venue Sea view created.", tg.lastText())
	assert.Equal(t, stepNone, b.state.get(managerID).Step)
	api.AssertExpectations(t)
}

func TestBot_DeleteForeignVenueDenied(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	foreign := &model.Venue{ID: "x", Owner: &model.Profile{Name: "someone"}}
	api.On("GetVenue", mock.Anything, "x", venueapi.VenueQuery{Owner: true, NoCache: true}).Return(foreign, nil)

	b.handleUpdate(ctx, callbackUpdate(managerID, 5, "mv:delok:x"))
	assert.Equal(t, "⚠️ You are not authorized to delete this venue.", tg.lastText())
	api.AssertNotCalled(t, "DeleteVenue", mock.Anything, mock.Anything, mock.Anything)
}

func TestBot_UpcomingExport(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	api.On("ProfileVenues", mock.Anything, "mtok", "kari").Return([]model.Venue{{
		ID: "v-1", Name: "Cabin", Price: 100,
		Bookings: []model.Booking{{ID: "b1", DateFrom: day("2024-03-20"), DateTo: day("2024-03-21")}},
	}}, nil)
	api.On("GetBooking", mock.Anything, "mtok", "b1").
		Return(&model.Booking{ID: "b1", DateFrom: day("2024-03-20"), DateTo: day("2024-03-21"), Guests: 2}, nil)

	b.handleUpdate(ctx, textUpdate(managerID, "/upcoming"))
	assert.Contains(t, tg.lastText(), "Cabin: 2024-03-20 → 2024-03-21")

	b.handleUpdate(ctx, callbackUpdate(managerID, 9, "mv:export"))
	docs := tg.documents()
	require.Len(t, docs, 1)
	file, ok := docs[0].File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "upcoming-2024-03-15.xlsx", file.Name)
	assert.NotEmpty(t, file.Bytes)
}

func TestBot_CheckInReminders(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	api.On("ProfileBookings", mock.Anything, "tok", "ola").Return([]model.Booking{
		{ID: "1", DateFrom: day("2024-03-16"), DateTo: day("2024-03-18"), Guests: 2, Venue: &model.Venue{Name: "Cabin"}},
		{ID: "2", DateFrom: day("2024-03-20"), DateTo: day("2024-03-21")},
	}, nil)
	api.On("ProfileBookings", mock.Anything, "mtok", "kari").Return(nil, errors.New("timeout"))

	sent := b.sendCheckInReminders(ctx)
	assert.Equal(t, 1, sent)
	assert.Equal(t, "⏰ Reminder: your stay at Cabin starts tomorrow, 2024-03-16 (until 2024-03-18, 2 guest(s)).", tg.lastText())
}

func TestTimeUntilNextHour(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, 30*time.Minute, timeUntilNextHour(now, 9))

	now = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, timeUntilNextHour(now, 9))
}

func TestUserMessage(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "Guests", userMessage(ctx, &booking.ValidationError{Field: "guests", Message: "Guests"}))
	assert.Equal(t, "request failed", userMessage(ctx, &venueapi.APIError{Status: 500}))
	assert.Equal(t, "range contains booked date(s)", userMessage(ctx, availability.ErrRangeBooked))
	assert.Equal(t, "request failed", userMessage(ctx, errors.New("dial tcp: refused")))
}

func TestBot_ChangeBookingGuests(t *testing.T) {
	b, tg, api, _ := newTestBot(t)
	ctx := context.Background()

	api.On("ProfileBookings", mock.Anything, "tok", "ola").Return([]model.Booking{
		{ID: "bk-1", DateFrom: day("2024-03-16"), DateTo: day("2024-03-18"), Guests: 2, Venue: &model.Venue{Name: "Cabin", MaxGuests: 4}},
	}, nil)
	b.handleUpdate(ctx, textUpdate(guestID, "/mybookings"))
	require.Contains(t, tg.lastText(), "Your bookings")

	b.handleUpdate(ctx, callbackUpdate(guestID, 5, "mb:guests:bk-1"))
	assert.Equal(t, "How many guests? (1-4, now 2)", tg.lastText())

	b.handleUpdate(ctx, textUpdate(guestID, "9"))
	assert.Equal(t, "This venue allows at most 4 guests", tg.lastText())
	assert.Equal(t, stepBookingGuests, b.state.get(guestID).Step)

	three := 3
	api.On("UpdateBooking", mock.Anything, "tok", "bk-1", venueapi.BookingUpdate{Guests: &three}).
		Return(&model.Booking{ID: "bk-1", Guests: 3}, nil).Once()
	b.handleUpdate(ctx, textUpdate(guestID, "3"))
	assert.Equal(t, "Booking updated: 3 guest(s).", tg.lastText())
	assert.Equal(t, stepNone, b.state.get(guestID).Step)
	api.AssertExpectations(t)
}
