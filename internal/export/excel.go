// Package export renders booking lists as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"holidaze/internal/booking"
	"holidaze/internal/model"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// workbook writes rows sheet by sheet.
type workbook struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
	used         map[string]bool
}

func newWorkbook() *workbook {
	return &workbook{file: excelize.NewFile(), used: map[string]bool{}}
}

// addSheet starts a new sheet. The default Sheet1 is reused for the first one.
// Names are cleaned and made unique within the workbook.
func (w *workbook) addSheet(name string) error {
	name = w.uniqueName(sheetName(name))

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.used[strings.ToLower(name)] = true
	w.currentSheet = name
	w.currentRow = 1
	return nil
}

func (w *workbook) uniqueName(name string) string {
	candidate := name
	for i := 2; w.used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	return candidate
}

func (w *workbook) writeHeader(columns []string) error {
	if err := w.writeRow(toAny(columns)); err != nil {
		return err
	}
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	start, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
	end, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
	if err := w.file.SetCellStyle(w.currentSheet, start, end, style); err != nil {
		return err
	}
	return w.file.SetPanes(w.currentSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})
}

func (w *workbook) writeRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.currentSheet, cell, &row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func (w *workbook) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetName strips characters Excel forbids in sheet names and applies the length limit.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var upcomingColumns = []string{"Venue", "Booking ID", "From", "To", "Nights", "Guests", "Customer", "Email", "Total"}

// UpcomingBookings writes a workbook with an "All" sheet followed by one
// sheet per venue.
func UpcomingBookings(w io.Writer, items []booking.UpcomingBooking) error {
	wb := newWorkbook()
	defer wb.file.Close()

	if err := wb.addSheet("All"); err != nil {
		return err
	}
	if err := wb.writeHeader(upcomingColumns); err != nil {
		return err
	}

	var order []string
	byVenue := map[string][]booking.UpcomingBooking{}
	for _, it := range items {
		if err := wb.writeRow(upcomingRow(it)); err != nil {
			return err
		}
		if _, ok := byVenue[it.VenueID]; !ok {
			order = append(order, it.VenueID)
		}
		byVenue[it.VenueID] = append(byVenue[it.VenueID], it)
	}

	for _, id := range order {
		rows := byVenue[id]
		if err := wb.addSheet(rows[0].VenueName); err != nil {
			return err
		}
		if err := wb.writeHeader(upcomingColumns); err != nil {
			return err
		}
		for _, it := range rows {
			if err := wb.writeRow(upcomingRow(it)); err != nil {
				return err
			}
		}
	}

	data, err := wb.bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func upcomingRow(it booking.UpcomingBooking) []any {
	customer, email := "", ""
	if c := it.Booking.Customer; c != nil {
		customer, email = c.Name, c.Email
	}
	return []any{
		it.VenueName,
		it.Booking.ID,
		it.Booking.DateFrom.String(),
		it.Booking.DateTo.String(),
		it.Booking.Nights(),
		it.Booking.Guests,
		customer,
		email,
		it.Total(),
	}
}

var myBookingColumns = []string{"Venue", "From", "To", "Nights", "Guests", "Price per night"}

// MyBookings writes a single-sheet workbook of a customer's bookings.
func MyBookings(w io.Writer, bookings []model.Booking) error {
	wb := newWorkbook()
	defer wb.file.Close()

	if err := wb.addSheet("Bookings"); err != nil {
		return err
	}
	if err := wb.writeHeader(myBookingColumns); err != nil {
		return err
	}
	for i := range bookings {
		b := &bookings[i]
		venue, price := "", 0.0
		if b.Venue != nil {
			venue, price = b.Venue.Name, b.Venue.Price
		}
		if err := wb.writeRow([]any{venue, b.DateFrom.String(), b.DateTo.String(), b.Nights(), b.Guests, price}); err != nil {
			return err
		}
	}

	data, err := wb.bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
