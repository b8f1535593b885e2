package bot

import (
	"fmt"
	"strings"

	"holidaze/internal/model"
	"holidaze/internal/venueapi"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbVenuePrefix = "v:"
	cbPagePrefix  = "page:"
	cbMenu        = "menu"
)

type venuePage struct {
	Title  string
	Venues []model.Venue
	Meta   venueapi.PageMeta
	Page   int // zero-based
}

// renderVenuePage builds the text and keyboard of one page of venues.
func renderVenuePage(p venuePage) (string, tgbotapi.InlineKeyboardMarkup) {
	var message strings.Builder
	message.WriteString(p.Title + "\n")
	if p.Meta.PageCount > 1 {
		fmt.Fprintf(&message, "Page %d of %d\n", p.Page+1, p.Meta.PageCount)
	}
	message.WriteString("\n")
	if len(p.Venues) == 0 {
		message.WriteString("No venues found.")
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	for i := range p.Venues {
		v := &p.Venues[i]
		fmt.Fprintf(&message, "%d. %s · %s · 👥 %d\n", i+1, v.Name, formatPrice(v.Price), v.MaxGuests)
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d. %s", i+1, truncate(v.Name, 40)), cbVenuePrefix+v.ID),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if p.Page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Previous", fmt.Sprintf("%s%d", cbPagePrefix, p.Page-1)))
	}
	if hasNextPage(p) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("%s%d", cbPagePrefix, p.Page+1)))
	}
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}
	keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", cbMenu),
	))

	return message.String(), tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func hasNextPage(p venuePage) bool {
	if p.Meta.NextPage != nil {
		return true
	}
	if p.Meta.PageCount > 0 {
		return p.Page+1 < p.Meta.PageCount
	}
	return false
}
