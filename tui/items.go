package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"moviebook-cli/account"
	"moviebook-cli/catalog"
	"moviebook-cli/display"
	"moviebook-cli/model"
	"moviebook-cli/store"
)

type movieItem struct {
	movie  model.Movie
	recent bool
}

func (m movieItem) Title() string {
	return m.movie.Title
}

func (m movieItem) Description() string {
	parts := []string{}
	if m.recent {
		parts = append(parts, "Recent")
	}
	if m.movie.Genre != "" {
		parts = append(parts, m.movie.Genre)
	}
	if m.movie.Language != "" {
		parts = append(parts, m.movie.Language)
	}
	if m.movie.Duration > 0 {
		parts = append(parts, display.Duration(m.movie.Duration))
	}
	if m.movie.Rating != "" {
		parts = append(parts, m.movie.Rating)
	}
	if n := len(m.movie.Showtimes); n > 0 {
		parts = append(parts, fmt.Sprintf("%d showtimes", n))
	}
	return strings.Join(parts, " • ")
}

func (m movieItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{m.movie.Title, m.movie.Genre, m.movie.Language, m.movie.Director}, " "))
}

type showtimeItem struct {
	showtime model.Showtime
}

func (s showtimeItem) Title() string {
	return fmt.Sprintf("%s • %s", display.Date(s.showtime.ShowDate), display.Time(s.showtime.StartTime))
}

func (s showtimeItem) Description() string {
	parts := []string{fmt.Sprintf("Screen %s", s.showtime.ScreenNumber), display.Price(s.showtime.Price)}
	if s.showtime.AvailableSeats <= 0 {
		parts = append(parts, "Sold out")
	} else {
		parts = append(parts, fmt.Sprintf("%d/%d seats left", s.showtime.AvailableSeats, s.showtime.TotalSeats))
	}
	return strings.Join(parts, " • ")
}

func (s showtimeItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{
		s.showtime.ShowDate,
		display.Date(s.showtime.ShowDate),
		display.Time(s.showtime.StartTime),
		s.showtime.ScreenNumber,
	}, " "))
}

type bookingItem struct {
	view account.BookingView
}

func (b bookingItem) Title() string {
	title := b.view.Title()
	if b.view.Booking.Status == model.BookingStatusCancelled {
		title += " (cancelled)"
	}
	return title
}

func (b bookingItem) Description() string {
	parts := []string{}
	if b.view.Showtime.Id != "" {
		parts = append(parts, fmt.Sprintf("%s %s", display.Date(b.view.Showtime.ShowDate), display.Time(b.view.Showtime.StartTime)))
	}
	parts = append(parts,
		fmt.Sprintf("Seats %s", strings.Join(b.view.Booking.Seats, ", ")),
		display.Price(b.view.Booking.TotalPrice),
		"#"+b.view.Booking.Id,
	)
	return strings.Join(parts, " • ")
}

func (b bookingItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{b.view.Title(), b.view.Booking.Id, b.view.Booking.Status}, " "))
}

// buildMovieItems lists recently opened movies first, then the rest by
// title.
func buildMovieItems(movies []model.Movie) []list.Item {
	recents, _ := store.LoadRecentMovies()
	byID := make(map[string]model.Movie, len(movies))
	for _, movie := range movies {
		byID[movie.Id] = movie
	}

	items := make([]list.Item, 0, len(movies))
	used := map[string]bool{}
	for _, recent := range recents {
		movie, ok := byID[recent.ID]
		if !ok || used[movie.Id] {
			continue
		}
		items = append(items, movieItem{movie: movie, recent: true})
		used[movie.Id] = true
	}

	rest := make([]model.Movie, 0, len(movies))
	for _, movie := range movies {
		if !used[movie.Id] {
			rest = append(rest, movie)
		}
	}
	slices.SortStableFunc(rest, func(a, b model.Movie) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
	for _, movie := range rest {
		items = append(items, movieItem{movie: movie})
	}
	return items
}

// buildShowtimeItems lists bookable showtimes day by day.
func buildShowtimeItems(showtimes []model.Showtime) []list.Item {
	var items []list.Item
	for _, group := range catalog.ByDate(catalog.Bookable(showtimes)) {
		for _, showtime := range group.Showtimes {
			items = append(items, showtimeItem{showtime: showtime})
		}
	}
	return items
}

func buildBookingItems(views []account.BookingView) []list.Item {
	items := make([]list.Item, 0, len(views))
	for _, view := range views {
		items = append(items, bookingItem{view: view})
	}
	return items
}
