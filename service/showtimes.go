package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"moviebook-cli/model"
)

// GetShowtime fetches the current state of a showtime, including its
// available-seat count.
func (c *Client) GetShowtime(ctx context.Context, showtimeID string) (model.Showtime, error) {
	if strings.TrimSpace(showtimeID) == "" {
		return model.Showtime{}, errors.New("showtime id is required")
	}
	var showtime model.Showtime
	if err := c.getJSON(ctx, c.endpoint("/showtimes/%s", url.PathEscape(showtimeID)), &showtime); err != nil {
		return model.Showtime{}, err
	}
	return showtime, nil
}

// ReserveSeats decrements the showtime's available seats by count. It is not
// idempotent and is never retried.
func (c *Client) ReserveSeats(ctx context.Context, showtimeID string, count int) (model.Showtime, error) {
	if strings.TrimSpace(showtimeID) == "" {
		return model.Showtime{}, errors.New("showtime id is required")
	}
	if count <= 0 {
		return model.Showtime{}, fmt.Errorf("seat count must be positive, got %d", count)
	}
	endpoint := c.endpoint("/showtimes/%s/reduce?count=%d", url.PathEscape(showtimeID), count)
	var showtime model.Showtime
	if err := c.sendJSON(ctx, http.MethodPut, endpoint, nil, &showtime); err != nil {
		return model.Showtime{}, err
	}
	return showtime, nil
}

func (c *Client) ShowtimesForMovie(ctx context.Context, movieID string) ([]model.Showtime, error) {
	if strings.TrimSpace(movieID) == "" {
		return nil, errors.New("movie id is required")
	}
	var showtimes []model.Showtime
	if err := c.getJSON(ctx, c.endpoint("/admin/movies/%s/showtimes", url.PathEscape(movieID)), &showtimes); err != nil {
		return nil, err
	}
	return showtimes, nil
}

func (c *Client) ShowtimesByCinema(ctx context.Context, cinemaID string) ([]model.Showtime, error) {
	if strings.TrimSpace(cinemaID) == "" {
		return nil, errors.New("cinema id is required")
	}
	var showtimes []model.Showtime
	if err := c.getJSON(ctx, c.endpoint("/showtimes/cinema/%s", url.PathEscape(cinemaID)), &showtimes); err != nil {
		return nil, err
	}
	return showtimes, nil
}

// AddShowtime creates a showtime embedded in the movie document.
func (c *Client) AddShowtime(ctx context.Context, movieID string, dto model.ShowtimeDTO) (model.Movie, error) {
	if strings.TrimSpace(movieID) == "" {
		return model.Movie{}, errors.New("movie id is required")
	}
	var movie model.Movie
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoint("/admin/movies/%s/showtimes", url.PathEscape(movieID)), dto, &movie); err != nil {
		return model.Movie{}, err
	}
	return movie, nil
}

func (c *Client) RemoveShowtime(ctx context.Context, movieID string, showtimeID string) error {
	if strings.TrimSpace(movieID) == "" || strings.TrimSpace(showtimeID) == "" {
		return errors.New("movie id and showtime id are required")
	}
	endpoint := c.endpoint("/admin/movies/%s/showtimes/%s", url.PathEscape(movieID), url.PathEscape(showtimeID))
	return c.sendJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}
