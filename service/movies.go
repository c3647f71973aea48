package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"moviebook-cli/model"
)

func (c *Client) ListMovies(ctx context.Context) ([]model.Movie, error) {
	var movies []model.Movie
	if err := c.getJSON(ctx, c.endpoint("/movies"), &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// SearchMovies runs the server-side title search.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]model.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.ListMovies(ctx)
	}
	var movies []model.Movie
	if err := c.getJSON(ctx, c.endpoint("/movies/search?query=%s", url.QueryEscape(query)), &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetMovie fetches a movie including its embedded showtimes.
func (c *Client) GetMovie(ctx context.Context, movieID string) (model.Movie, error) {
	if strings.TrimSpace(movieID) == "" {
		return model.Movie{}, errors.New("movie id is required")
	}
	var movie model.Movie
	if err := c.getJSON(ctx, c.endpoint("/movies/%s", url.PathEscape(movieID)), &movie); err != nil {
		return model.Movie{}, err
	}
	return movie, nil
}

func (c *Client) MoviesByCinema(ctx context.Context, cinemaID string) ([]model.Movie, error) {
	if strings.TrimSpace(cinemaID) == "" {
		return nil, errors.New("cinema id is required")
	}
	var movies []model.Movie
	if err := c.getJSON(ctx, c.endpoint("/movies/cinema/%s", url.PathEscape(cinemaID)), &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (c *Client) CreateMovie(ctx context.Context, dto model.MovieDTO) (model.Movie, error) {
	var movie model.Movie
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoint("/admin/movies"), dto, &movie); err != nil {
		return model.Movie{}, err
	}
	return movie, nil
}

func (c *Client) UpdateMovie(ctx context.Context, movieID string, dto model.MovieDTO) (model.Movie, error) {
	if strings.TrimSpace(movieID) == "" {
		return model.Movie{}, errors.New("movie id is required")
	}
	var movie model.Movie
	if err := c.sendJSON(ctx, http.MethodPut, c.endpoint("/admin/movies/%s", url.PathEscape(movieID)), dto, &movie); err != nil {
		return model.Movie{}, err
	}
	return movie, nil
}

func (c *Client) DeleteMovie(ctx context.Context, movieID string) error {
	if strings.TrimSpace(movieID) == "" {
		return errors.New("movie id is required")
	}
	return c.sendJSON(ctx, http.MethodDelete, c.endpoint("/admin/movies/%s", url.PathEscape(movieID)), nil, nil)
}
