package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"

	"moviebook-cli/admin"
	"moviebook-cli/catalog"
	"moviebook-cli/display"
	"moviebook-cli/model"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage cinemas, movies and showtimes (cinema admins only)",
}

var adminCinemasCmd = &cobra.Command{
	Use:   "cinemas",
	Short: "List cinemas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		cinemas, err := console.Cinemas(cmd.Context())
		if err != nil {
			return current.check(err)
		}
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Name", "Location"})
		for _, cinema := range cinemas {
			t.AppendRow(table.Row{cinema.Id, cinema.Name, cinema.Location})
		}
		t.Render()
		return nil
	},
}

var adminAddCinemaCmd = &cobra.Command{
	Use:   "add-cinema",
	Short: "Create a cinema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		location, _ := cmd.Flags().GetString("location")
		cinema, err := console.CreateCinema(cmd.Context(), model.CinemaDTO{Name: name, Location: location})
		if err != nil {
			return current.check(err)
		}
		cmd.Printf("Created cinema %s (%s)\n", cinema.Name, cinema.Id)
		return nil
	},
}

var adminMoviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "List the movies of a cinema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		cinemaID, _ := cmd.Flags().GetString("cinema")
		if cinemaID == "" {
			cinemaID = current.session.CinemaID()
		}
		if cinemaID == "" {
			return fmt.Errorf("pass --cinema or pick one with `moviebook movies --cinema`")
		}
		movies, err := console.Movies(cmd.Context(), cinemaID)
		if err != nil {
			return current.check(err)
		}
		renderMovies(cmd.OutOrStdout(), movies)
		return nil
	},
}

var adminAddMovieCmd = &cobra.Command{
	Use:   "add-movie",
	Short: "Create a movie",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		movie, err := console.CreateMovie(cmd.Context(), movieFromFlags(cmd))
		if err != nil {
			return current.check(err)
		}
		current.catalog.Invalidate()
		cmd.Printf("Created movie %s (%s)\n", movie.Title, movie.Id)
		return nil
	},
}

var adminUpdateMovieCmd = &cobra.Command{
	Use:   "update-movie <movieID>",
	Short: "Replace a movie's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		movie, err := console.UpdateMovie(cmd.Context(), args[0], movieFromFlags(cmd))
		if err != nil {
			return current.check(err)
		}
		current.catalog.Invalidate()
		cmd.Printf("Updated movie %s\n", movie.Title)
		return nil
	},
}

var adminDeleteMovieCmd = &cobra.Command{
	Use:   "delete-movie <movieID>",
	Short: "Delete a movie and its showtimes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		if err := console.DeleteMovie(cmd.Context(), args[0]); err != nil {
			return current.check(err)
		}
		current.catalog.Invalidate()
		cmd.Println("Movie deleted.")
		return nil
	},
}

var adminShowtimesCmd = &cobra.Command{
	Use:   "showtimes <movieID>",
	Short: "List every showtime of a movie, sold out ones included",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		showtimes, err := console.Showtimes(cmd.Context(), args[0])
		if err != nil {
			return current.check(err)
		}
		renderShowtimes(cmd.OutOrStdout(), catalog.ByDate(showtimes))
		return nil
	},
}

var adminAddShowtimeCmd = &cobra.Command{
	Use:   "add-showtime <movieID>",
	Short: "Schedule a showtime within the next week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		var in admin.ShowtimeInput
		in.ScreenNumber, _ = cmd.Flags().GetString("screen")
		in.ShowDate, _ = cmd.Flags().GetString("date")
		in.StartTime, _ = cmd.Flags().GetString("time")
		in.Price, _ = cmd.Flags().GetFloat64("price")
		in.TotalSeats, _ = cmd.Flags().GetInt("seats")

		movie, err := console.AddShowtime(cmd.Context(), args[0], in)
		if err != nil {
			return current.check(err)
		}
		current.catalog.Invalidate()
		cmd.Printf("Scheduled %s on %s at %s (%d seats, %s)\n",
			movie.Title, display.Date(in.ShowDate), display.Time(in.StartTime), in.TotalSeats, display.Price(in.Price))
		return nil
	},
}

var adminRemoveShowtimeCmd = &cobra.Command{
	Use:   "remove-showtime <movieID> <showtimeID>",
	Short: "Remove a showtime",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		if err := console.RemoveShowtime(cmd.Context(), args[0], args[1]); err != nil {
			return current.check(err)
		}
		current.catalog.Invalidate()
		cmd.Println("Showtime removed.")
		return nil
	},
}

var adminRevenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Sum confirmed bookings per showtime",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		revenue, err := console.Revenue(cmd.Context())
		if err != nil {
			return current.check(err)
		}
		ids := maps.Keys(revenue)
		slices.Sort(ids)

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Showtime", "Revenue"})
		var total float64
		for _, id := range ids {
			total += revenue[id]
			t.AppendRow(table.Row{id, display.Price(revenue[id])})
		}
		t.AppendFooter(table.Row{"Total", display.Price(total)})
		t.Render()
		return nil
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		users, err := console.Users(cmd.Context())
		if err != nil {
			return current.check(err)
		}
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Name", "Email", "Phone", "Type"})
		for _, user := range users {
			t.AppendRow(table.Row{user.Id, user.Name, user.Email, user.Phone, user.UserType})
		}
		t.Render()
		return nil
	},
}

var adminDeleteUserCmd = &cobra.Command{
	Use:   "delete-user <userID>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := current.console()
		if err != nil {
			return err
		}
		if err := console.DeleteUser(cmd.Context(), args[0]); err != nil {
			return current.check(err)
		}
		cmd.Println("User deleted.")
		return nil
	},
}

func init() {
	adminAddCinemaCmd.Flags().String("name", "", "cinema name")
	adminAddCinemaCmd.Flags().String("location", "", "cinema address or city")
	adminMoviesCmd.Flags().String("cinema", "", "cinema id (defaults to the remembered cinema)")

	for _, c := range []*cobra.Command{adminAddMovieCmd, adminUpdateMovieCmd} {
		c.Flags().String("title", "", "movie title")
		c.Flags().String("description", "", "synopsis")
		c.Flags().String("genre", "", "genre")
		c.Flags().Int("duration", 0, "length in minutes")
		c.Flags().String("language", "", "spoken language")
		c.Flags().String("release-date", "", "release date, YYYY-MM-DD")
		c.Flags().String("director", "", "director")
		c.Flags().StringSlice("cast", nil, "cast members, comma separated")
		c.Flags().String("rating", "", "G, PG, PG-13, R or NC-17")
		c.Flags().String("poster", "", "poster url")
		c.Flags().String("trailer", "", "trailer url")
		c.Flags().String("cinema", "", "cinema id (defaults to the remembered cinema)")
	}

	adminAddShowtimeCmd.Flags().String("screen", "", "screen number")
	adminAddShowtimeCmd.Flags().String("date", "", "show date, YYYY-MM-DD, today up to a week ahead")
	adminAddShowtimeCmd.Flags().String("time", "", "start time, HH:MM")
	adminAddShowtimeCmd.Flags().Float64("price", 0, "price per seat")
	adminAddShowtimeCmd.Flags().Int("seats", 0, "seats in the screen")

	adminCmd.AddCommand(
		adminCinemasCmd,
		adminAddCinemaCmd,
		adminMoviesCmd,
		adminAddMovieCmd,
		adminUpdateMovieCmd,
		adminDeleteMovieCmd,
		adminShowtimesCmd,
		adminAddShowtimeCmd,
		adminRemoveShowtimeCmd,
		adminRevenueCmd,
		adminUsersCmd,
		adminDeleteUserCmd,
	)
}

func movieFromFlags(cmd *cobra.Command) model.MovieDTO {
	flags := cmd.Flags()
	var dto model.MovieDTO
	dto.Title, _ = flags.GetString("title")
	dto.Description, _ = flags.GetString("description")
	dto.Genre, _ = flags.GetString("genre")
	dto.Duration, _ = flags.GetInt("duration")
	dto.Language, _ = flags.GetString("language")
	dto.ReleaseDate, _ = flags.GetString("release-date")
	dto.Director, _ = flags.GetString("director")
	dto.Cast, _ = flags.GetStringSlice("cast")
	dto.Rating, _ = flags.GetString("rating")
	dto.PosterUrl, _ = flags.GetString("poster")
	dto.TrailerUrl, _ = flags.GetString("trailer")
	dto.CinemaId, _ = flags.GetString("cinema")
	if dto.CinemaId == "" {
		dto.CinemaId = current.session.CinemaID()
	}
	dto.Title = strings.TrimSpace(dto.Title)
	dto.Rating = strings.ToUpper(strings.TrimSpace(dto.Rating))
	return dto
}
