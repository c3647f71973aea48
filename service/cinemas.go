package service

import (
	"context"
	"net/http"

	"moviebook-cli/model"
)

func (c *Client) ListCinemas(ctx context.Context) ([]model.Cinema, error) {
	var cinemas []model.Cinema
	if err := c.getJSON(ctx, c.endpoint("/admin/cinemas"), &cinemas); err != nil {
		return nil, err
	}
	return cinemas, nil
}

func (c *Client) CreateCinema(ctx context.Context, dto model.CinemaDTO) (model.Cinema, error) {
	var cinema model.Cinema
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoint("/admin/cinemas"), dto, &cinema); err != nil {
		return model.Cinema{}, err
	}
	return cinema, nil
}
