package catalog

import (
	"cmp"
	"slices"

	"moviebook-cli/model"
)

// DateGroup is the showtimes of one day, earliest first.
type DateGroup struct {
	Date      string
	Showtimes []model.Showtime
}

// ByDate groups showtimes by ShowDate. Groups are in date order.
func ByDate(showtimes []model.Showtime) []DateGroup {
	index := map[string]int{}
	var groups []DateGroup
	for _, showtime := range showtimes {
		i, ok := index[showtime.ShowDate]
		if !ok {
			i = len(groups)
			index[showtime.ShowDate] = i
			groups = append(groups, DateGroup{Date: showtime.ShowDate})
		}
		groups[i].Showtimes = append(groups[i].Showtimes, showtime)
	}

	slices.SortFunc(groups, func(a, b DateGroup) int {
		return cmp.Compare(a.Date, b.Date)
	})
	for _, group := range groups {
		slices.SortStableFunc(group.Showtimes, func(a, b model.Showtime) int {
			return cmp.Compare(a.StartTime, b.StartTime)
		})
	}
	return groups
}

// Bookable drops showtimes with no seats left.
func Bookable(showtimes []model.Showtime) []model.Showtime {
	out := make([]model.Showtime, 0, len(showtimes))
	for _, showtime := range showtimes {
		if showtime.AvailableSeats > 0 {
			out = append(out, showtime)
		}
	}
	return out
}
