package bot

import (
	"fmt"
	"strconv"
	"strings"

	"holidaze/internal/availability"
	"holidaze/internal/booking"
	"holidaze/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbNoop       = "noop"
	cbDayPrefix  = "cal:d:"
	cbMonthPrev  = "cal:m:-1"
	cbMonthNext  = "cal:m:1"
	cbGuestsDec  = "cal:g:-1"
	cbGuestsInc  = "cal:g:1"
	cbClear      = "cal:clear"
	cbBook       = "cal:book"
	cbRefresh    = "cal:refresh"
	cbBackToList = "list:back"
)

var weekdayLabels = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// dayLabel marks booked days, the provisional start and the committed range.
func dayLabel(cd availability.CalendarDay, snap *booking.Snapshot) string {
	n := strconv.Itoa(cd.Date.DayOfMonth())
	switch {
	case cd.IsBooked:
		return "✖"
	case snap.State == availability.StateAwaitingEnd && cd.Date.Equal(snap.Start):
		return "▶" + n
	case snap.Selection.Includes(cd.Date):
		return "✓" + n
	default:
		return n
	}
}

// CalendarKeyboard renders the availability grid of a snapshot as a
// Monday-first inline keyboard with month, guest and booking controls.
func CalendarKeyboard(snap booking.Snapshot) tgbotapi.InlineKeyboardMarkup {
	grid := snap.Grid
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 10)

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀", cbMonthPrev),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", grid.Month(), grid.Year()), cbNoop),
		tgbotapi.NewInlineKeyboardButtonData("▶", cbMonthNext),
	))

	header := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, wd := range weekdayLabels {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(wd, cbNoop))
	}
	rows = append(rows, header)

	// Monday = 0 .. Sunday = 6
	offset := (int(grid.First().Weekday()) + 6) % 7
	row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < offset; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", cbNoop))
	}
	for _, cd := range grid.Days() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(dayLabel(cd, &snap), cbDayPrefix+cd.Date.String()))
		if len(row) == 7 {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", cbNoop))
		}
		rows = append(rows, row)
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", cbGuestsDec),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👥 %d", snap.Guests), cbNoop),
			tgbotapi.NewInlineKeyboardButtonData("➕", cbGuestsInc),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Clear", cbClear),
			tgbotapi.NewInlineKeyboardButtonData("🔄", cbRefresh),
			tgbotapi.NewInlineKeyboardButtonData("Book now", cbBook),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", cbBackToList),
		),
	)
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// venueText is the message shown above the calendar.
func venueText(snap booking.Snapshot) string {
	v := snap.Venue
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏠 %s\n", v.Name)
	if v.Location.City != "" || v.Location.Country != "" {
		fmt.Fprintf(&sb, "📍 %s\n", strings.Trim(v.Location.City+", "+v.Location.Country, ", "))
	}
	fmt.Fprintf(&sb, "💰 %s per night · up to %d guests", formatPrice(v.Price), v.MaxGuests)
	if v.Rating > 0 {
		fmt.Fprintf(&sb, " · ⭐ %.1f", v.Rating)
	}
	sb.WriteString("\n")
	if amenities := amenityList(v.Meta.WiFi, v.Meta.Parking, v.Meta.Breakfast, v.Meta.Pets); amenities != "" {
		sb.WriteString(amenities + "\n")
	}
	if v.Owner != nil && v.Owner.Name != "" {
		fmt.Fprintf(&sb, "Host: %s\n", v.Owner.Name)
	}
	if d := strings.TrimSpace(v.Description); d != "" {
		sb.WriteString("\n" + truncate(d, 500) + "\n")
	}

	sb.WriteString("\n")
	switch {
	case snap.State == availability.StateAwaitingEnd:
		fmt.Fprintf(&sb, "Check-in %s. Now tap the check-out date.", snap.Start)
	case snap.Selection.IsSet():
		nights := model.NightsBetween(snap.Selection.From, snap.Selection.To)
		fmt.Fprintf(&sb, "Selected %s → %s (%d night(s), %s total). Tap Book now to confirm.",
			snap.Selection.From, snap.Selection.To, nights, formatPrice(float64(nights)*v.Price))
	default:
		sb.WriteString("Tap a check-in date. ✖ marks booked days.")
	}
	return sb.String()
}

func amenityList(wifi, parking, breakfast, pets bool) string {
	var parts []string
	if wifi {
		parts = append(parts, "📶 WiFi")
	}
	if parking {
		parts = append(parts, "🅿️ Parking")
	}
	if breakfast {
		parts = append(parts, "🍳 Breakfast")
	}
	if pets {
		parts = append(parts, "🐾 Pets")
	}
	return strings.Join(parts, " · ")
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d NOK", int64(p))
	}
	return fmt.Sprintf("%.2f NOK", p)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
