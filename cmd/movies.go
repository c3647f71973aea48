package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"moviebook-cli/catalog"
	"moviebook-cli/display"
	"moviebook-cli/model"
	"moviebook-cli/seating"
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "List movies now showing",
	Long:  `List movies, optionally filtered by genre and language or searched by title.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		genre, _ := cmd.Flags().GetString("genre")
		language, _ := cmd.Flags().GetString("language")
		cinemaID, _ := cmd.Flags().GetString("cinema")
		refresh, _ := cmd.Flags().GetBool("refresh")

		if cmd.Flags().Changed("cinema") {
			current.session.SetCinema(cinemaID)
			if err := current.session.Persist(); err != nil {
				return err
			}
		}

		var movies []model.Movie
		var err error
		if strings.TrimSpace(search) != "" {
			movies, err = current.catalog.Search(cmd.Context(), search)
		} else {
			movies, err = current.catalog.Movies(cmd.Context(), current.session.CinemaID(), refresh)
		}
		if err != nil {
			return current.check(err)
		}

		filter := catalog.Filter{Genre: genre, Language: language}
		movies = filter.Apply(movies)
		if len(movies) == 0 {
			cmd.Println("No movies match.")
			return nil
		}
		renderMovies(cmd.OutOrStdout(), movies)
		if filter.Empty() {
			cmd.Printf("Genres: %s\n", strings.Join(catalog.Genres(movies), ", "))
			cmd.Printf("Languages: %s\n", strings.Join(catalog.Languages(movies), ", "))
		}
		return nil
	},
}

var showtimesCmd = &cobra.Command{
	Use:   "showtimes [movieID]",
	Short: "List showtimes of a movie, or of a cinema with --cinema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cinemaID, _ := cmd.Flags().GetString("cinema")
		all, _ := cmd.Flags().GetBool("all")

		var title string
		var showtimes []model.Showtime
		switch {
		case len(args) == 1:
			movie, err := current.catalog.Movie(cmd.Context(), args[0])
			if err != nil {
				return current.check(err)
			}
			title = movie.Title
			showtimes = movie.Showtimes
		case cinemaID != "":
			list, err := current.client.ShowtimesByCinema(cmd.Context(), cinemaID)
			if err != nil {
				return current.check(err)
			}
			title = "Cinema " + cinemaID
			showtimes = list
		default:
			return fmt.Errorf("pass a movie id or --cinema")
		}
		if !all {
			showtimes = catalog.Bookable(showtimes)
		}
		if len(showtimes) == 0 {
			cmd.Println("No showtimes scheduled.")
			return nil
		}
		cmd.Println(title)
		renderShowtimes(cmd.OutOrStdout(), catalog.ByDate(showtimes))
		return nil
	},
}

var seatsCmd = &cobra.Command{
	Use:   "seats <showtimeID>",
	Short: "Print the seat map of a showtime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showtime, err := current.catalog.Showtime(cmd.Context(), args[0])
		if err != nil {
			return current.check(err)
		}
		booked := seating.BookedFromAvailability(showtime.TotalSeats, showtime.AvailableSeats)
		renderSeatMap(cmd.OutOrStdout(), showtime.TotalSeats, current.cfg.Seating.Columns, booked, nil)
		cmd.Printf("%d of %d seats available • %s per seat\n",
			showtime.AvailableSeats, showtime.TotalSeats, display.Price(showtime.Price))
		return nil
	},
}

var cinemasCmd = &cobra.Command{
	Use:   "cinemas",
	Short: "List cinemas; --use remembers one for movie listings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetBool("refresh")
		use, _ := cmd.Flags().GetString("use")
		cinemas, err := current.catalog.Cinemas(cmd.Context(), refresh)
		if err != nil {
			return current.check(err)
		}
		if use != "" {
			for _, cinema := range cinemas {
				if cinema.Id == use {
					current.session.SetCinema(cinema.Id)
					if err := current.session.Persist(); err != nil {
						return err
					}
					cmd.Printf("Using %s\n", cinema.Name)
					return nil
				}
			}
			return fmt.Errorf("cinema %s not found", use)
		}

		selected := current.session.CinemaID()
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"", "ID", "Name", "Location"})
		for _, cinema := range cinemas {
			mark := ""
			if cinema.Id == selected {
				mark = "*"
			}
			t.AppendRow(table.Row{mark, cinema.Id, cinema.Name, cinema.Location})
		}
		t.Render()
		return nil
	},
}

func init() {
	cinemasCmd.Flags().Bool("refresh", false, "skip the local cache")
	cinemasCmd.Flags().String("use", "", "remember this cinema id")

	moviesCmd.Flags().String("search", "", "search titles on the server")
	moviesCmd.Flags().String("genre", "", "only movies of this genre")
	moviesCmd.Flags().String("language", "", "only movies in this language")
	moviesCmd.Flags().String("cinema", "", "limit to a cinema and remember it")
	moviesCmd.Flags().Bool("refresh", false, "skip the local cache")

	showtimesCmd.Flags().String("cinema", "", "list every showtime of a cinema")
	showtimesCmd.Flags().Bool("all", false, "include sold out showtimes")
}

func renderMovies(out io.Writer, movies []model.Movie) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Title", "Genre", "Language", "Length", "Rating", "Showtimes"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 32},
	})
	for _, movie := range movies {
		t.AppendRow(table.Row{
			movie.Id,
			movie.Title,
			movie.Genre,
			movie.Language,
			display.Duration(movie.Duration),
			movie.Rating,
			len(movie.Showtimes),
		})
	}
	t.Render()
}

func renderShowtimes(out io.Writer, groups []catalog.DateGroup) {
	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Date", "Time", "ID", "Screen", "Price", "Seats"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	t.Style().Options.SeparateRows = true
	for _, group := range groups {
		for _, showtime := range group.Showtimes {
			t.AppendRow(table.Row{
				display.Date(group.Date),
				display.Time(showtime.StartTime),
				showtime.Id,
				showtime.ScreenNumber,
				display.Price(showtime.Price),
				fmt.Sprintf("%d/%d", showtime.AvailableSeats, showtime.TotalSeats),
			}, rowConfigAutoMerge)
		}
	}
	t.Render()
}

// renderSeatMap prints the grid with the screen on top. Booked seats show
// as XX and selected ones as **.
func renderSeatMap(out io.Writer, total, columns int, booked seating.BookedSet, selected *seating.Selection) {
	if total <= 0 {
		fmt.Fprintln(out, "No seat map data.")
		return
	}
	header := table.Row{""}
	for col := 1; col <= columns; col++ {
		header = append(header, col)
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("SCREEN")
	t.Style().Title.Align = text.AlignCenter
	t.AppendHeader(header)
	for row := range seating.Layout(total, columns) {
		cells := table.Row{row.Label}
		for _, slot := range row.Slots {
			if slot.Empty {
				cells = append(cells, "")
				continue
			}
			switch seating.StateOf(slot.Number, booked, selected) {
			case seating.Booked:
				cells = append(cells, "XX")
			case seating.Selected:
				cells = append(cells, "**")
			default:
				cells = append(cells, slot.Number)
			}
		}
		t.AppendRow(cells)
	}
	t.Render()
}
