package main

import (
	"fmt"
	"io"
	"time"

	"holidaze/internal/availability"
	"holidaze/internal/venueapi"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newCalendarCmd(opts *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar <venue-id>",
		Short: "Print the availability of a venue for one month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := time.Now()
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid --month %q, want YYYY-MM", month)
				}
				ref = t
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := zerolog.Nop()
			client, rdb := newAPIClient(cmd.Context(), cfg, &logger)
			if rdb != nil {
				defer rdb.Close()
			}

			venue, err := client.GetVenue(cmd.Context(), args[0], venueapi.VenueQuery{Bookings: true})
			if err != nil {
				return err
			}
			printGrid(cmd.OutOrStdout(), venue.Name, availability.BuildMonth(venue.Bookings, ref))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM (default: current month)")
	return cmd
}

// printGrid writes a Monday-first month table. Booked days show as "xx".
func printGrid(w io.Writer, title string, grid availability.Grid) {
	fmt.Fprintf(w, "%s, %s %d\n", title, grid.Month(), grid.Year())
	fmt.Fprintln(w, "Mo Tu We Th Fr Sa Su")

	col := (int(grid.First().Weekday()) + 6) % 7
	for i := 0; i < col; i++ {
		fmt.Fprint(w, "   ")
	}
	for _, cd := range grid.Days() {
		cell := fmt.Sprintf("%2d", cd.Date.DayOfMonth())
		if cd.IsBooked {
			cell = "xx"
		}
		col++
		if col%7 == 0 {
			fmt.Fprintln(w, cell)
		} else {
			fmt.Fprint(w, cell+" ")
		}
	}
	if col%7 != 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d of %d days free\n", grid.FreeCount(), grid.Len())
}
