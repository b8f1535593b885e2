package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"holidaze/internal/booking"
	"holidaze/internal/export"
	"holidaze/internal/model"
	"holidaze/internal/venueapi"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbManagerPrefix = "mv:"
	cbFormPrefix    = "vf:"

	// keepValue leaves a field unchanged while editing; clearValue empties an optional field.
	keepValue  = "."
	clearValue = "-"
)

func (b *Bot) sendMyVenues(ctx context.Context, chatID, userID int64) {
	venues, err := b.manager.MyVenues(ctx, b.session(ctx, userID))
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("🏢 Your venues\n\n")
	if len(venues) == 0 {
		sb.WriteString("You have no venues yet.")
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range venues {
		v := &venues[i]
		fmt.Fprintf(&sb, "%d. %s · %s · 👥 %d · %d booking(s)\n", i+1, v.Name, formatPrice(v.Price), v.MaxGuests, len(v.Bookings))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d. %s", i+1, truncate(v.Name, 24)), cbVenuePrefix+v.ID),
			tgbotapi.NewInlineKeyboardButtonData("✏️", cbManagerPrefix+"edit:"+v.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbManagerPrefix+"del:"+v.ID),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(btnNewVenue, cbManagerPrefix+"new")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Upcoming bookings", cbManagerPrefix+"upcoming"),
			tgbotapi.NewInlineKeyboardButtonData("📥 Export .xlsx", cbManagerPrefix+"export"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleManagerCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, action string) {
	userID, chatID, msgID := cq.From.ID, cq.Message.Chat.ID, cq.Message.MessageID
	verb, id, _ := strings.Cut(action, ":")

	switch verb {
	case "new":
		_ = b.answerCallback(cq.ID, "")
		b.startVenueForm(ctx, chatID, userID, nil)
	case "edit":
		_ = b.answerCallback(cq.ID, "")
		venue, err := b.api.GetVenue(ctx, id, venueapi.VenueQuery{Owner: true, NoCache: true})
		if err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		b.startVenueForm(ctx, chatID, userID, venue)
	case "del":
		_ = b.answerCallback(cq.ID, "")
		markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, delete", cbManagerPrefix+"delok:"+id),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", cbManagerPrefix+"keep"),
		))
		_, _ = b.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID,
			"Delete this venue? Its bookings will be removed as well.", markup))
	case "delok":
		if err := b.manager.Delete(ctx, b.session(ctx, userID), id); err != nil {
			_ = b.answerCallback(cq.ID, "")
			b.replyError(ctx, chatID, err)
			return
		}
		_ = b.answerCallback(cq.ID, "Venue deleted")
		_, _ = b.tg.Send(tgbotapi.NewEditMessageText(chatID, msgID, "Venue deleted."))
	case "keep":
		_ = b.answerCallback(cq.ID, "")
		_, _ = b.tg.Send(tgbotapi.NewEditMessageText(chatID, msgID, "Nothing deleted."))
	case "upcoming":
		_ = b.answerCallback(cq.ID, "")
		b.sendUpcoming(ctx, chatID, userID)
	case "export":
		_ = b.answerCallback(cq.ID, "")
		b.sendUpcomingExport(ctx, chatID, userID)
	default:
		_ = b.answerCallback(cq.ID, "")
	}
}

func (b *Bot) upcoming(ctx context.Context, chatID, userID int64) ([]booking.UpcomingBooking, bool) {
	items, err := b.manager.UpcomingBookings(ctx, b.session(ctx, userID), model.DayOf(b.today()))
	if err != nil {
		b.replyError(ctx, chatID, err)
		return nil, false
	}
	return items, true
}

func (b *Bot) sendUpcoming(ctx context.Context, chatID, userID int64) {
	items, ok := b.upcoming(ctx, chatID, userID)
	if !ok {
		return
	}
	if len(items) == 0 {
		b.reply(chatID, "No upcoming bookings for your venues.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Upcoming bookings\n\n")
	for _, it := range items {
		customer := ""
		if c := it.Booking.Customer; c != nil && c.Name != "" {
			customer = " · " + c.Name
		}
		fmt.Fprintf(&sb, "• %s: %s → %s · 👥 %d%s · %s\n",
			it.VenueName, it.Booking.DateFrom, it.Booking.DateTo, it.Booking.Guests, customer, formatPrice(it.Total()))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) sendUpcomingExport(ctx context.Context, chatID, userID int64) {
	items, ok := b.upcoming(ctx, chatID, userID)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.UpcomingBookings(&buf, items); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	name := fmt.Sprintf("upcoming-%s.xlsx", model.DayOf(b.today()))
	b.sendDocument(chatID, name, buf.Bytes())
}

// startVenueForm begins the create dialog, or the edit dialog when venue is set.
func (b *Bot) startVenueForm(ctx context.Context, chatID, userID int64, venue *model.Venue) {
	sess := b.session(ctx, userID)
	action := "create"
	if venue != nil {
		action = "update"
	}
	if !sess.LoggedIn() {
		b.reply(chatID, fmt.Sprintf("You must be logged in to %s a venue.", action))
		return
	}
	if !sess.User.VenueManager {
		b.reply(chatID, fmt.Sprintf("You must be a venue manager to %s a venue.", action))
		return
	}
	if venue != nil && !venue.OwnedBy(sess.User.Name) {
		b.reply(chatID, "You are not authorized to update this venue.")
		return
	}

	b.state.resetDialog(userID)
	st := b.state.get(userID)
	st.Step = stepVenueName
	if venue == nil {
		st.Venue = venueDraft{Input: venueapi.VenueInput{MaxGuests: 1}}
		b.reply(chatID, "New venue. What is its name?")
		return
	}
	st.Venue = venueDraft{EditID: venue.ID, Input: venueapi.InputFromVenue(venue)}
	b.reply(chatID, fmt.Sprintf("Editing %s. Send \"%s\" at any step to keep the current value.\n\nName (now: %s):",
		venue.Name, keepValue, venue.Name))
}

func (b *Bot) handleVenueFormStep(ctx context.Context, chatID, userID int64, st *userState, text string) {
	in := &st.Venue.Input
	editing := st.Venue.EditID != ""
	keep := editing && text == keepValue

	// prompt shows the next question, with the current value while editing.
	prompt := func(q, current string) {
		if editing {
			q = fmt.Sprintf("%s (now: %s)", q, current)
		}
		b.reply(chatID, q+":")
	}

	switch st.Step {
	case stepVenueName:
		if !keep {
			if strings.TrimSpace(text) == "" {
				b.reply(chatID, "Venue name is required")
				return
			}
			in.Name = text
		}
		st.Step = stepVenueDescription
		prompt("Description", truncate(in.Description, 60))
	case stepVenueDescription:
		if !keep {
			in.Description = text
		}
		st.Step = stepVenuePrice
		prompt("Price per night in NOK", formatPrice(in.Price))
	case stepVenuePrice:
		if !keep {
			p, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
			if err != nil || p < 0 {
				b.reply(chatID, "Price must be a number of at least 0.")
				return
			}
			in.Price = p
		}
		st.Step = stepVenueMaxGuests
		prompt("Maximum number of guests", strconv.Itoa(in.MaxGuests))
	case stepVenueMaxGuests:
		if !keep {
			n, err := strconv.Atoi(text)
			if err != nil || n < 1 {
				b.reply(chatID, "Max guests must be at least 1")
				return
			}
			in.MaxGuests = n
		}
		st.Step = stepVenueImage
		current := "none"
		if len(in.Media) > 0 {
			current = in.Media[0].URL
		}
		prompt(fmt.Sprintf("Image URL, or \"%s\" for none", clearValue), current)
	case stepVenueImage:
		switch {
		case keep:
		case text == clearValue:
			in.Media = nil
		default:
			if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
				b.reply(chatID, "Image URLs must start with http:// or https://")
				return
			}
			media := model.Media{URL: text, Alt: in.Name}
			if len(in.Media) > 0 {
				in.Media[0] = media
			} else {
				in.Media = []model.Media{media}
			}
		}
		st.Step = stepVenueCity
		prompt(fmt.Sprintf("City, or \"%s\" to skip", clearValue), in.Location.City)
	case stepVenueCity:
		switch {
		case keep:
		case text == clearValue:
			in.Location.City = ""
		default:
			in.Location.City = text
		}
		st.Step = stepVenueConfirm
		b.sendVenueConfirm(chatID, 0, st)
	}
}

func venueFormText(d venueDraft) string {
	in := d.Input
	var sb strings.Builder
	if d.EditID != "" {
		sb.WriteString("Update venue\n\n")
	} else {
		sb.WriteString("New venue\n\n")
	}
	fmt.Fprintf(&sb, "Name: %s\nPrice: %s\nMax guests: %d\n", in.Name, formatPrice(in.Price), in.MaxGuests)
	if in.Location.City != "" {
		fmt.Fprintf(&sb, "City: %s\n", in.Location.City)
	}
	if len(in.Media) > 0 {
		fmt.Fprintf(&sb, "Image: %s\n", in.Media[0].URL)
	}
	if in.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", truncate(in.Description, 300))
	}
	sb.WriteString("\nToggle amenities, then save.")
	return sb.String()
}

func toggleLabel(name string, on bool) string {
	if on {
		return "✅ " + name
	}
	return "▫️ " + name
}

func (b *Bot) sendVenueConfirm(chatID int64, editMsgID int, st *userState) {
	meta := st.Venue.Input.Meta
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel("WiFi", meta.WiFi), cbFormPrefix+"wifi"),
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel("Parking", meta.Parking), cbFormPrefix+"parking"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel("Breakfast", meta.Breakfast), cbFormPrefix+"breakfast"),
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel("Pets", meta.Pets), cbFormPrefix+"pets"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Save", cbFormPrefix+"save"),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", cbFormPrefix+"cancel"),
		),
	)
	text := venueFormText(st.Venue)
	if editMsgID != 0 {
		_, _ = b.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, editMsgID, text, markup))
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleVenueFormCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, action string) {
	userID, chatID, msgID := cq.From.ID, cq.Message.Chat.ID, cq.Message.MessageID
	st := b.state.get(userID)
	if st.Step != stepVenueConfirm {
		_ = b.answerCallback(cq.ID, "This form is no longer active.")
		return
	}
	meta := &st.Venue.Input.Meta

	switch action {
	case "wifi":
		meta.WiFi = !meta.WiFi
	case "parking":
		meta.Parking = !meta.Parking
	case "breakfast":
		meta.Breakfast = !meta.Breakfast
	case "pets":
		meta.Pets = !meta.Pets
	case "cancel":
		b.state.resetDialog(userID)
		_ = b.answerCallback(cq.ID, "")
		_, _ = b.tg.Send(tgbotapi.NewEditMessageText(chatID, msgID, "Cancelled."))
		return
	case "save":
		_ = b.answerCallback(cq.ID, "")
		b.saveVenue(ctx, chatID, userID, msgID, st)
		return
	}

	_ = b.answerCallback(cq.ID, "")
	b.sendVenueConfirm(chatID, msgID, st)
}

func (b *Bot) saveVenue(ctx context.Context, chatID, userID int64, msgID int, st *userState) {
	sess := b.session(ctx, userID)
	draft := st.Venue

	var (
		venue *model.Venue
		err   error
	)
	if draft.EditID != "" {
		venue, err = b.manager.Update(ctx, sess, draft.EditID, draft.Input)
	} else {
		venue, err = b.manager.Create(ctx, sess, draft.Input)
	}
	if err != nil {
		// The form stays open so the user can fix it or cancel.
		b.replyError(ctx, chatID, err)
		return
	}

	b.state.resetDialog(userID)
	verb := "created"
	if draft.EditID != "" {
		verb = "updated"
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Open", cbVenuePrefix+venue.ID),
	))
	_, _ = b.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID,
		fmt.Sprintf("Venue %s %s.", venue.Name, verb), markup))
}
