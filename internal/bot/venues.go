package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"holidaze/internal/availability"
	"holidaze/internal/booking"
	"holidaze/internal/db"
	"holidaze/internal/export"
	"holidaze/internal/model"
	"holidaze/internal/venueapi"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	cbMyBookingPrefix = "mb:"
	cbMyBookingExport = "export"
)

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid page %q", s)
	}
	return n, nil
}

// sendVenueList shows one page of venues, or of search results when the user
// has a query. editMsgID replaces an existing list message when non-zero.
func (b *Bot) sendVenueList(ctx context.Context, chatID, userID int64, page, editMsgID int) {
	st := b.state.get(userID)
	st.Page = page

	opts := venueapi.ListOptions{Limit: pageSize, Page: page + 1, Sort: "created", SortOrder: "desc"}
	venues, meta, err := b.api.SearchVenues(ctx, st.Query, opts)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	title := "🏠 Venues"
	if st.Query != "" {
		title = fmt.Sprintf("🔍 Results for %q", st.Query)
	}
	text, markup := renderVenuePage(venuePage{Title: title, Venues: venues, Meta: meta, Page: page})

	if editMsgID != 0 {
		_, _ = b.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, editMsgID, text, markup))
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, _ = b.tg.Send(msg)
}

// openVenue loads a venue into the user's view and sends its calendar.
func (b *Bot) openVenue(ctx context.Context, chatID, userID int64, id string) {
	st := b.state.get(userID)
	if st.View == nil {
		st.View = booking.NewVenueView(b.api, b.submitter)
	}

	if err := st.View.Load(ctx, id, b.today()); err != nil {
		if errors.Is(err, booking.ErrStaleResponse) {
			zerolog.Ctx(ctx).Debug().Str("venue_id", id).Msg("discarded stale venue load")
			return
		}
		b.replyError(ctx, chatID, err)
		return
	}

	snap, ok := st.View.Snapshot()
	if !ok {
		return
	}
	if len(snap.Venue.Media) > 0 && snap.Venue.Media[0].URL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(snap.Venue.Media[0].URL))
		photo.Caption = snap.Venue.Name
		_, _ = b.tg.Send(photo)
	}

	msg := tgbotapi.NewMessage(chatID, venueText(snap))
	msg.ReplyMarkup = CalendarKeyboard(snap)
	sent, err := b.tg.Send(msg)
	if err == nil {
		st.CalendarMsgID = sent.MessageID
	}
}

func (b *Bot) renderCalendar(chatID int64, msgID int, view *booking.VenueView) {
	snap, ok := view.Snapshot()
	if !ok {
		return
	}
	_, _ = b.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, venueText(snap), CalendarKeyboard(snap)))
}

func (b *Bot) handleCalendarCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, data string) {
	userID, chatID, msgID := cq.From.ID, cq.Message.Chat.ID, cq.Message.MessageID
	st := b.state.get(userID)
	view := st.View
	if view == nil || view.VenueID() == "" {
		_ = b.answerCallback(cq.ID, "Open a venue first.")
		return
	}
	st.CalendarMsgID = msgID

	toast := ""
	switch {
	case strings.HasPrefix(data, cbDayPrefix):
		d, err := model.ParseDay(strings.TrimPrefix(data, cbDayPrefix))
		if err != nil {
			_ = b.answerCallback(cq.ID, "")
			return
		}
		committed, err := view.Click(d)
		switch {
		case err != nil:
			toast = userMessage(ctx, err)
			zerolog.Ctx(ctx).Debug().Str("reason", availability.Reason(err)).Msg("selection rejected")
		case committed:
			toast = "Dates selected"
		}
	case data == cbMonthPrev:
		_ = view.ShowMonth(-1)
	case data == cbMonthNext:
		_ = view.ShowMonth(1)
	case data == cbGuestsDec:
		view.AddGuests(-1)
	case data == cbGuestsInc:
		view.AddGuests(1)
	case data == cbClear:
		view.ClearSelection()
	case data == cbRefresh:
		if err := view.Refresh(ctx); err != nil && !errors.Is(err, booking.ErrStaleResponse) {
			toast = userMessage(ctx, err)
		}
	case data == cbBook:
		_ = b.answerCallback(cq.ID, "")
		b.book(ctx, chatID, userID, msgID, view)
		return
	}

	_ = b.answerCallback(cq.ID, toast)
	b.renderCalendar(chatID, msgID, view)
}

// book submits the selection, then refreshes the venue so the calendar shows
// the authoritative booking list.
func (b *Bot) book(ctx context.Context, chatID, userID int64, msgID int, view *booking.VenueView) {
	sess := b.session(ctx, userID)
	before, _ := view.Snapshot()

	created, err := view.Submit(ctx, sess)

	attempt := db.BookingAttempt{
		TelegramID: userID,
		VenueID:    before.Venue.ID,
		DateFrom:   before.Selection.From,
		DateTo:     before.Selection.To,
		Guests:     before.Guests,
		Result:     submitResult(err),
	}
	if err != nil {
		attempt.Message = err.Error()
	} else {
		attempt.BookingID = created.ID
	}
	if logErr := b.store.LogBookingAttempt(ctx, attempt); logErr != nil {
		zerolog.Ctx(ctx).Warn().Err(logErr).Msg("log booking attempt")
	}

	if err != nil {
		b.replyError(ctx, chatID, err)
		b.renderCalendar(chatID, msgID, view)
		return
	}

	b.reply(chatID, fmt.Sprintf("✅ Booked %s from %s to %s for %d guest(s).",
		before.Venue.Name, before.Selection.From, before.Selection.To, before.Guests))

	if err := view.Refresh(ctx); err != nil && !errors.Is(err, booking.ErrStaleResponse) {
		b.replyError(ctx, chatID, err)
	}
	b.renderCalendar(chatID, msgID, view)
}

func submitResult(err error) string {
	var verr *booking.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case venueapi.StatusCode(err) != 0:
		return "rejected"
	default:
		return "error"
	}
}

func (b *Bot) loadMyBookings(ctx context.Context, chatID, userID int64) ([]model.Booking, bool) {
	sess := b.session(ctx, userID)
	if !sess.LoggedIn() {
		b.reply(chatID, "You must be logged in to see your bookings. Use /login.")
		return nil, false
	}
	bookings, err := b.api.ProfileBookings(ctx, sess.Token, sess.User.Name)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return nil, false
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].DateFrom.Before(bookings[j].DateFrom)
	})
	return bookings, true
}

func (b *Bot) sendMyBookings(ctx context.Context, chatID, userID int64) {
	bookings, ok := b.loadMyBookings(ctx, chatID, userID)
	if !ok {
		return
	}
	if len(bookings) == 0 {
		b.reply(chatID, "You have no bookings yet. Browse /venues to find a place.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Your bookings\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range bookings {
		bk := &bookings[i]
		name := "venue"
		if bk.Venue != nil {
			name = bk.Venue.Name
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s → %s · 👥 %d\n", i+1, name, bk.DateFrom, bk.DateTo, bk.Guests)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👥 Guests #%d", i+1), cbMyBookingPrefix+"guests:"+bk.ID),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("❌ Cancel #%d", i+1), cbMyBookingPrefix+"ask:"+bk.ID),
		))
	}
	b.state.get(userID).MyBookings = bookings
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📥 Export .xlsx", cbMyBookingPrefix+cbMyBookingExport),
	))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleMyBookingCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, action string) {
	userID, chatID, msgID := cq.From.ID, cq.Message.Chat.ID, cq.Message.MessageID

	switch {
	case action == cbMyBookingExport:
		_ = b.answerCallback(cq.ID, "")
		bookings, ok := b.loadMyBookings(ctx, chatID, userID)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := export.MyBookings(&buf, bookings); err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		b.sendDocument(chatID, "my-bookings.xlsx", buf.Bytes())

	case strings.HasPrefix(action, "guests:"):
		_ = b.answerCallback(cq.ID, "")
		id := strings.TrimPrefix(action, "guests:")
		st := b.state.get(userID)
		b.state.resetDialog(userID)
		st.Step = stepBookingGuests
		st.EditBooking = id
		prompt := "How many guests?"
		if bk := findBooking(st.MyBookings, id); bk != nil && bk.Venue != nil && bk.Venue.MaxGuests > 0 {
			prompt = fmt.Sprintf("How many guests? (1-%d, now %d)", bk.Venue.MaxGuests, bk.Guests)
		}
		b.reply(chatID, prompt)

	case strings.HasPrefix(action, "ask:"):
		_ = b.answerCallback(cq.ID, "")
		id := strings.TrimPrefix(action, "ask:")
		markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, cancel it", cbMyBookingPrefix+"del:"+id),
			tgbotapi.NewInlineKeyboardButtonData("Keep it", cbMyBookingPrefix+"keep"),
		))
		_, _ = b.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, "Cancel this booking?", markup))

	case strings.HasPrefix(action, "del:"):
		sess := b.session(ctx, userID)
		if !sess.LoggedIn() {
			_ = b.answerCallback(cq.ID, "You must be logged in.")
			return
		}
		if err := b.api.DeleteBooking(ctx, sess.Token, strings.TrimPrefix(action, "del:")); err != nil {
			_ = b.answerCallback(cq.ID, "")
			b.replyError(ctx, chatID, err)
			return
		}
		_ = b.answerCallback(cq.ID, "Booking cancelled")
		_, _ = b.tg.Send(tgbotapi.NewEditMessageText(chatID, msgID, "Booking cancelled."))

	default:
		_ = b.answerCallback(cq.ID, "")
		_, _ = b.tg.Send(tgbotapi.NewEditMessageText(chatID, msgID, "Booking kept."))
	}
}

func findBooking(bookings []model.Booking, id string) *model.Booking {
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i]
		}
	}
	return nil
}

func (b *Bot) handleBookingGuestsStep(ctx context.Context, chatID, userID int64, st *userState, text string) {
	n, err := strconv.Atoi(text)
	if err != nil {
		b.reply(chatID, "Send the number of guests.")
		return
	}
	maxGuests := 0
	if bk := findBooking(st.MyBookings, st.EditBooking); bk != nil && bk.Venue != nil {
		maxGuests = bk.Venue.MaxGuests
	}

	updated, err := booking.ChangeGuests(ctx, b.api, b.session(ctx, userID), st.EditBooking, n, maxGuests)
	if err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) && verr.Field == "guests" {
			// stay in the dialog so the user can send another number
			b.reply(chatID, verr.Message)
			return
		}
		b.state.resetDialog(userID)
		b.replyError(ctx, chatID, err)
		return
	}
	b.state.resetDialog(userID)
	zerolog.Ctx(ctx).Info().Str("booking_id", updated.ID).Int("guests", updated.Guests).Msg("booking guests changed")
	b.reply(chatID, fmt.Sprintf("Booking updated: %d guest(s).", updated.Guests))
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	_, _ = b.tg.Send(doc)
}
