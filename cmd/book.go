package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"moviebook-cli/booking"
	"moviebook-cli/display"
	"moviebook-cli/model"
	"moviebook-cli/seating"
	"moviebook-cli/validation"
)

var bookCmd = &cobra.Command{
	Use:   "book <showtimeID>",
	Short: "Book seats for a showtime",
	Long: `Book seats for a showtime. Seats are numbers (7) or row labels (B1)
separated by commas. Without an account you are asked for a name, email
and phone, and a guest account is created for you.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seatsFlag, _ := cmd.Flags().GetString("seats")
		yes, _ := cmd.Flags().GetBool("yes")
		columns := current.cfg.Seating.Columns

		showtime, err := current.catalog.Showtime(cmd.Context(), args[0])
		if err != nil {
			return current.check(err)
		}
		seats, err := parseSeats(seatsFlag, columns)
		if err != nil {
			return err
		}

		selection := current.session.EnterShowtime(showtime)
		for _, n := range seats {
			if err := selection.Select(n); err != nil {
				return err
			}
		}

		req := booking.Request{
			ShowtimeID: showtime.Id,
			Selection:  selection,
			User:       current.session.User(),
		}
		if req.User == nil {
			guest, err := guestFromFlags(cmd)
			if err != nil {
				return err
			}
			req.Guest = guest
		}

		summary := selection.Summary(showtime.Price)
		cmd.Printf("%s %s • Screen %s\n", display.Date(showtime.ShowDate), display.Time(showtime.StartTime), showtime.ScreenNumber)
		cmd.Printf("Seats %s • %d × %s = %s\n",
			strings.Join(seatLabels(summary.Seats, columns), ", "),
			summary.Count, display.Price(showtime.Price), display.Price(summary.Total))
		if !yes {
			confirm := promptui.Prompt{Label: "Book these seats", IsConfirm: true}
			if _, err := confirm.Run(); err != nil {
				if errors.Is(err, promptui.ErrAbort) {
					cmd.Println("Nothing booked.")
					return nil
				}
				return err
			}
		}

		result, err := current.orchestrator().Submit(cmd.Context(), req)
		if err != nil {
			return bookingError(err)
		}
		current.catalog.Invalidate()
		renderBookings(cmd.OutOrStdout(), []model.Booking{result}, columns)
		if charged := display.Price(result.TotalPrice); charged != display.Price(summary.Total) {
			cmd.Printf("Note: the ticket price changed before booking; you were charged %s, not %s.\n", charged, display.Price(summary.Total))
		}
		return nil
	},
}

func init() {
	bookCmd.Flags().String("seats", "", "seats to book, e.g. 7,8 or A1,A2")
	bookCmd.Flags().String("name", "", "guest name")
	bookCmd.Flags().String("email", "", "guest email")
	bookCmd.Flags().String("phone", "", "guest phone")
	bookCmd.Flags().BoolP("yes", "y", false, "book without asking for confirmation")
	_ = bookCmd.MarkFlagRequired("seats")
}

// guestFromFlags fills guest details from flags and prompts for the rest.
func guestFromFlags(cmd *cobra.Command) (booking.Guest, error) {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")

	var err error
	if strings.TrimSpace(name) == "" {
		if name, err = prompt("Your name", requireText("name")); err != nil {
			return booking.Guest{}, err
		}
	}
	if strings.TrimSpace(email) == "" {
		if email, err = prompt("Email", validEmail); err != nil {
			return booking.Guest{}, err
		}
	}
	if strings.TrimSpace(phone) == "" {
		if phone, err = prompt("Phone", validGuestPhone); err != nil {
			return booking.Guest{}, err
		}
	}
	return booking.Guest{Name: name, Email: email, Phone: phone}, nil
}

func prompt(label string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{Label: label, Validate: validate}
	value, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func requireText(field string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validEmail(input string) error {
	if !validation.IsEmail(input) {
		return errors.New("enter a valid email")
	}
	return nil
}

// validGuestPhone matches the rule the booking itself applies to guests:
// any non-blank contact number.
var validGuestPhone = requireText("phone")

func validPhone(input string) error {
	if !validation.IsPhone(input) {
		return errors.New("enter a phone number with at least 10 digits")
	}
	return nil
}

// bookingError turns a failed submission into what the user should do next.
func bookingError(err error) error {
	switch {
	case booking.IsValidationError(err):
		return err
	case booking.SeatsTaken(err):
		return fmt.Errorf("%w; run `moviebook seats` to see what is left", err)
	case booking.SeatsMayBeHeld(err):
		return fmt.Errorf("%w; your seats were reserved but the booking was not saved, contact the cinema before retrying", err)
	default:
		return current.check(err)
	}
}

// parseSeats reads "7,8" or "A1,B2". Labels are resolved against columns.
func parseSeats(raw string, columns int) ([]int, error) {
	var seats []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		n, err := parseSeat(part, columns)
		if err != nil {
			return nil, err
		}
		seats = append(seats, n)
	}
	if len(seats) == 0 {
		return nil, errors.New("please select at least one seat")
	}
	return seats, nil
}

func parseSeat(label string, columns int) (int, error) {
	if n, err := strconv.Atoi(label); err == nil {
		return n, nil
	}
	split := strings.IndexFunc(label, unicode.IsDigit)
	if split <= 0 {
		return 0, fmt.Errorf("invalid seat %q", label)
	}
	row := 0
	for _, r := range label[:split] {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid seat %q", label)
		}
		row = row*26 + int(r-'A'+1)
	}
	col, err := strconv.Atoi(label[split:])
	if err != nil || col < 1 || col > columns {
		return 0, fmt.Errorf("invalid seat %q", label)
	}
	return (row-1)*columns + col, nil
}

func seatLabels(seats []int, columns int) []string {
	labels := make([]string, 0, len(seats))
	for _, n := range seats {
		labels = append(labels, seating.SeatLabel(n, columns))
	}
	return labels
}

func renderBookings(out io.Writer, bookings []model.Booking, columns int) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Booking", "Showtime", "Seats", "Total", "Status", "Date"})
	for _, b := range bookings {
		labels := make([]string, 0, len(b.Seats))
		for _, seat := range b.Seats {
			if n, err := strconv.Atoi(seat); err == nil {
				labels = append(labels, seating.SeatLabel(n, columns))
				continue
			}
			labels = append(labels, seat)
		}
		t.AppendRow(table.Row{b.Id, b.ShowtimeId, strings.Join(labels, ", "), display.Price(b.TotalPrice), b.Status, b.BookingDate})
	}
	t.Render()
}
