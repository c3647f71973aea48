package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"moviebook-cli/model"
)

func (c *Client) CreateBooking(ctx context.Context, dto model.BookingDTO) (model.Booking, error) {
	var booking model.Booking
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoint("/bookings"), dto, &booking); err != nil {
		return model.Booking{}, err
	}
	if booking.Id == "" {
		return model.Booking{}, errors.New("booking created without id")
	}
	return booking, nil
}

func (c *Client) GetBooking(ctx context.Context, bookingID string) (model.Booking, error) {
	if strings.TrimSpace(bookingID) == "" {
		return model.Booking{}, errors.New("booking id is required")
	}
	var booking model.Booking
	if err := c.getJSON(ctx, c.endpoint("/bookings/%s", url.PathEscape(bookingID)), &booking); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (c *Client) BookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}
	var bookings []model.Booking
	if err := c.getJSON(ctx, c.endpoint("/bookings/user/%s", url.PathEscape(userID)), &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListBookings returns every booking. Admin only.
func (c *Client) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := c.getJSON(ctx, c.endpoint("/bookings"), &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	if strings.TrimSpace(bookingID) == "" {
		return errors.New("booking id is required")
	}
	return c.sendJSON(ctx, http.MethodDelete, c.endpoint("/bookings/%s", url.PathEscape(bookingID)), nil, nil)
}
