package bot

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"holidaze/internal/model"
	"holidaze/internal/session"
	"holidaze/internal/venueapi"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	cbRegisterManagerPrefix = "reg:"
	cbRegisterManagerYes    = "reg:yes"
	cbRegisterManagerNo     = "reg:no"

	cbProfilePrefix = "prof:"
)

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validUsername(s string) bool {
	if s == "" || len(s) > 20 {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// forget removes a message that carries a password.
func (b *Bot) forget(msg *tgbotapi.Message) {
	_, _ = b.tg.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID))
}

func (b *Bot) startLogin(chatID, userID int64) {
	b.state.resetDialog(userID)
	b.state.get(userID).Step = stepLoginEmail
	b.reply(chatID, "Enter your email:")
}

func (b *Bot) handleLoginStep(ctx context.Context, msg *tgbotapi.Message, st *userState, text string) {
	chatID, userID := msg.Chat.ID, msg.From.ID

	if st.Step == stepLoginEmail {
		if text == "" {
			b.reply(chatID, "Enter your email:")
			return
		}
		st.Email = text
		st.Step = stepLoginPassword
		b.reply(chatID, "Enter your password:")
		return
	}

	b.forget(msg)
	email := st.Email
	b.state.resetDialog(userID)

	res, err := b.api.Login(ctx, venueapi.Credentials{Email: email, Password: text})
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	profile := res.Profile
	// The login response omits some profile fields; the profile endpoint is authoritative.
	if full, err := b.api.GetProfile(ctx, res.AccessToken, res.Name); err == nil {
		profile.VenueManager = full.VenueManager
		profile.Bio = full.Bio
		if full.Avatar != nil {
			profile.Avatar = full.Avatar
		}
	} else {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user", res.Name).Msg("load profile after login")
	}

	sess := session.Session{Token: res.AccessToken, User: profile, CreatedAt: time.Now()}
	if err := b.store.SaveSession(ctx, userID, sess); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Str("user", profile.Name).Msg("logged in")
	b.sendMainMenu(ctx, chatID, userID, fmt.Sprintf("Welcome back, %s!", profile.Name))
}

func (b *Bot) startRegister(chatID, userID int64) {
	b.state.resetDialog(userID)
	b.state.get(userID).Step = stepRegisterName
	b.reply(chatID, "Choose a username (letters, digits and underscore, up to 20 characters):")
}

func (b *Bot) handleRegisterStep(ctx context.Context, msg *tgbotapi.Message, st *userState, text string) {
	chatID := msg.Chat.ID

	switch st.Step {
	case stepRegisterName:
		if !validUsername(text) {
			b.reply(chatID, "Username may only contain letters, digits and underscore, up to 20 characters.")
			return
		}
		st.Register.Name = text
		st.Step = stepRegisterEmail
		b.reply(chatID, "Enter your email:")
	case stepRegisterEmail:
		if !validEmail(text) {
			b.reply(chatID, "That does not look like an email address.")
			return
		}
		st.Register.Email = text
		st.Step = stepRegisterPassword
		b.reply(chatID, "Choose a password (at least 8 characters):")
	case stepRegisterPassword:
		b.forget(msg)
		if len(text) < 8 {
			b.reply(chatID, "Password must be at least 8 characters.")
			return
		}
		st.Register.Password = text
		st.Step = stepRegisterManager
		m := tgbotapi.NewMessage(chatID, "Do you want to list your own venues as a venue manager?")
		m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes", cbRegisterManagerYes),
			tgbotapi.NewInlineKeyboardButtonData("No", cbRegisterManagerNo),
		))
		_, _ = b.tg.Send(m)
	}
}

func (b *Bot) finishRegister(ctx context.Context, chatID, userID int64, manager bool) {
	st := b.state.get(userID)
	if st.Step != stepRegisterManager {
		return
	}
	req := st.Register
	req.VenueManager = manager
	b.state.resetDialog(userID)

	profile, err := b.api.Register(ctx, req)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Str("user", profile.Name).Msg("registered")
	b.reply(chatID, fmt.Sprintf("Account %s created. Use /login to sign in.", profile.Name))
}

func (b *Bot) logout(ctx context.Context, chatID, userID int64) {
	if err := b.store.DeleteSession(ctx, userID); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.state.reset(userID)
	b.sendMainMenu(ctx, chatID, userID, "You are logged out.")
}

func profileText(p *model.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s\n✉️ %s\n", p.Name, p.Email)
	if p.VenueManager {
		sb.WriteString("🏢 Venue manager\n")
	}
	if p.Bio != "" {
		fmt.Fprintf(&sb, "\n%s\n", p.Bio)
	}
	if p.Avatar != nil && p.Avatar.URL != "" {
		fmt.Fprintf(&sb, "\nAvatar: %s\n", p.Avatar.URL)
	}
	fmt.Fprintf(&sb, "\nVenues: %d · Bookings: %d", len(p.Venues), len(p.Bookings))
	return sb.String()
}

func (b *Bot) sendProfile(ctx context.Context, chatID, userID int64) {
	sess := b.session(ctx, userID)
	if !sess.LoggedIn() {
		b.reply(chatID, "You must be logged in to see your profile. Use /login.")
		return
	}
	profile, err := b.api.GetProfile(ctx, sess.Token, sess.User.Name)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, profileText(profile))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✏️ Bio", cbProfilePrefix+"bio"),
		tgbotapi.NewInlineKeyboardButtonData("🖼 Avatar", cbProfilePrefix+"avatar"),
	))
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleProfileCallback(ctx context.Context, chatID, userID int64, action string) {
	if !b.session(ctx, userID).LoggedIn() {
		b.reply(chatID, "You must be logged in. Use /login.")
		return
	}
	st := b.state.get(userID)
	switch action {
	case "bio":
		st.Step = stepProfileBio
		b.reply(chatID, "Send your new bio:")
	case "avatar":
		st.Step = stepProfileAvatar
		b.reply(chatID, "Send an image URL for your avatar:")
	}
}

func (b *Bot) handleProfileStep(ctx context.Context, chatID, userID int64, st *userState, text string) {
	sess := b.session(ctx, userID)
	if !sess.LoggedIn() {
		b.state.resetDialog(userID)
		b.reply(chatID, "You must be logged in. Use /login.")
		return
	}

	var upd venueapi.ProfileUpdate
	switch st.Step {
	case stepProfileBio:
		upd.Bio = &text
	case stepProfileAvatar:
		if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
			b.reply(chatID, "Avatar must be a URL starting with http:// or https://")
			return
		}
		upd.Avatar = &model.Media{URL: text, Alt: sess.User.Name}
	}
	b.state.resetDialog(userID)

	profile, err := b.api.UpdateProfile(ctx, sess.Token, sess.User.Name, upd)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	sess.User.Bio = profile.Bio
	sess.User.Avatar = profile.Avatar
	if err := b.store.SaveSession(ctx, userID, sess); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("save session after profile update")
	}
	b.reply(chatID, "Profile updated.")
}
