package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"moviebook-cli/account"
	"moviebook-cli/display"
	"moviebook-cli/model"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your account email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		token, _ := cmd.Flags().GetString("token")
		if strings.TrimSpace(email) == "" {
			var err error
			if email, err = prompt("Email", validEmail); err != nil {
				return err
			}
		}
		user, err := current.accounts.Login(cmd.Context(), email)
		if err != nil {
			return current.check(err)
		}
		if err := current.login(user, token); err != nil {
			return err
		}
		cmd.Printf("Signed in as %s (%s)\n", user.Name, user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dto := model.UserDTO{UserType: model.UserTypeCustomer}
		var err error
		if dto.Name, err = prompt("Full name", requireText("name")); err != nil {
			return err
		}
		if dto.Email, err = prompt("Email", validEmail); err != nil {
			return err
		}
		if dto.Phone, err = prompt("Phone", validPhone); err != nil {
			return err
		}
		if dto.Username, err = prompt("Username (empty to use your email)", nil); err != nil {
			return err
		}
		password := promptui.Prompt{Label: "Password", Mask: '*', Validate: requireText("password")}
		if dto.Password, err = password.Run(); err != nil {
			return err
		}

		user, err := current.accounts.Register(cmd.Context(), dto)
		if err != nil {
			return current.check(err)
		}
		if err := current.login(user, ""); err != nil {
			return err
		}
		cmd.Printf("Welcome, %s. You are signed in.\n", user.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current.session.Logout()
		if err := current.session.Persist(); err != nil {
			return err
		}
		cmd.Println("Signed out.")
		return nil
	},
}

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List your bookings, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user := current.session.User()
		if user == nil {
			return errors.New("log in to see your bookings")
		}
		cancelID, _ := cmd.Flags().GetString("cancel")
		showID, _ := cmd.Flags().GetString("id")

		if showID != "" {
			b, err := current.client.GetBooking(cmd.Context(), showID)
			if err != nil {
				return current.check(err)
			}
			renderBookings(cmd.OutOrStdout(), []model.Booking{b}, current.cfg.Seating.Columns)
			return nil
		}

		views, err := current.accounts.Bookings(cmd.Context(), user.Id)
		if err != nil {
			return current.check(err)
		}
		if cancelID != "" {
			return cancelBooking(cmd, views, cancelID)
		}
		if len(views) == 0 {
			cmd.Println("No bookings yet.")
			return nil
		}
		renderBookingViews(cmd.OutOrStdout(), views)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your account details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user := current.session.User()
		if user == nil {
			return errors.New("log in first")
		}
		fresh, err := current.client.GetUser(cmd.Context(), user.Id)
		if err != nil {
			return current.check(err)
		}

		name, _ := cmd.Flags().GetString("name")
		phone, _ := cmd.Flags().GetString("phone")
		if name != "" || phone != "" {
			if phone != "" {
				if err := validPhone(phone); err != nil {
					return err
				}
				fresh.Phone = phone
			}
			if name != "" {
				fresh.Name = strings.TrimSpace(name)
			}
			fresh, err = current.client.UpdateUser(cmd.Context(), fresh.Id, model.UserDTO{
				Username: fresh.Username,
				Email:    fresh.Email,
				Name:     fresh.Name,
				Phone:    fresh.Phone,
				UserType: fresh.UserType,
			})
			if err != nil {
				return current.check(err)
			}
		}
		if err := current.login(fresh, current.session.Token()); err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendRows([]table.Row{
			{"Name", fresh.Name},
			{"Email", fresh.Email},
			{"Username", fresh.Username},
			{"Phone", fresh.Phone},
			{"Type", fresh.UserType},
		})
		t.Render()
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("token", "", "bearer token issued by the API, if any")
	bookingsCmd.Flags().String("cancel", "", "cancel the booking with this id")
	bookingsCmd.Flags().String("id", "", "show a single booking")
	profileCmd.Flags().String("name", "", "new display name")
	profileCmd.Flags().String("phone", "", "new phone number")
}

func cancelBooking(cmd *cobra.Command, views []account.BookingView, bookingID string) error {
	for _, view := range views {
		if view.Booking.Id != bookingID {
			continue
		}
		if err := current.accounts.Cancel(cmd.Context(), view.Booking); err != nil {
			return current.check(err)
		}
		current.catalog.Invalidate()
		cmd.Printf("Cancelled booking %s for %s.\n", bookingID, view.Title())
		return nil
	}
	return fmt.Errorf("booking %s not found among your bookings", bookingID)
}

func renderBookingViews(out io.Writer, views []account.BookingView) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Booking", "Movie", "When", "Seats", "Total", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 28},
	})
	for _, view := range views {
		when := ""
		if view.Showtime.Id != "" {
			when = display.Date(view.Showtime.ShowDate) + " " + display.Time(view.Showtime.StartTime)
		}
		t.AppendRow(table.Row{
			view.Booking.Id,
			view.Title(),
			when,
			strings.Join(view.Booking.Seats, ", "),
			display.Price(view.Booking.TotalPrice),
			view.Booking.Status,
		})
	}
	t.Render()
}
