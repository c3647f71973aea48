// Package account covers registration, email login and a user's booking
// history.
package account

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"moviebook-cli/model"
	"moviebook-cli/validation"
)

// API is the part of the booking API accounts need. *service.Client
// satisfies it.
type API interface {
	CreateUser(ctx context.Context, dto model.UserDTO) (model.User, error)
	LoginByEmail(ctx context.Context, email string) (model.User, error)
	BookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) error
	GetShowtime(ctx context.Context, showtimeID string) (model.Showtime, error)
	GetMovie(ctx context.Context, movieID string) (model.Movie, error)
}

const detailConcurrency = 4

type Service struct {
	api    API
	logger *zap.Logger
}

func NewService(api API, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, logger: logger}
}

// Register validates and creates a customer account. Username defaults to
// the email.
func (s *Service) Register(ctx context.Context, dto model.UserDTO) (model.User, error) {
	dto.Email = strings.TrimSpace(dto.Email)
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Phone = strings.TrimSpace(dto.Phone)
	if strings.TrimSpace(dto.Username) == "" {
		dto.Username = dto.Email
	}
	if dto.UserType == "" {
		dto.UserType = model.UserTypeCustomer
	}
	if err := validation.Struct(dto); err != nil {
		return model.User{}, err
	}
	return s.api.CreateUser(ctx, dto)
}

func (s *Service) Login(ctx context.Context, email string) (model.User, error) {
	if !validation.IsEmail(email) {
		return model.User{}, errors.New("email must be a valid email")
	}
	return s.api.LoginByEmail(ctx, email)
}

// BookingView is a booking with the movie and schedule it refers to. Movie
// and Showtime stay zero when the lookup failed.
type BookingView struct {
	Booking  model.Booking
	Showtime model.Showtime
	Movie    model.Movie
}

func (v BookingView) Title() string {
	if v.Movie.Title != "" {
		return v.Movie.Title
	}
	return "Movie"
}

// Bookings lists a user's bookings, newest first, each enriched with its
// showtime and movie. Lookups run concurrently; a failed lookup leaves that
// booking bare instead of failing the list.
func (s *Service) Bookings(ctx context.Context, userID string) ([]BookingView, error) {
	bookings, err := s.api.BookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]BookingView, len(bookings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, booking := range bookings {
		views[i].Booking = booking
		g.Go(func() error {
			showtime, err := s.api.GetShowtime(gctx, booking.ShowtimeId)
			if err != nil {
				s.logger.Debug("booking showtime lookup failed", zap.String("booking_id", booking.Id), zap.Error(err))
				return nil
			}
			views[i].Showtime = showtime
			if showtime.MovieId == "" {
				return nil
			}
			movie, err := s.api.GetMovie(gctx, showtime.MovieId)
			if err != nil {
				s.logger.Debug("booking movie lookup failed", zap.String("booking_id", booking.Id), zap.Error(err))
				return nil
			}
			views[i].Movie = movie
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(views, func(a, b BookingView) int {
		return strings.Compare(b.Booking.BookingDate, a.Booking.BookingDate)
	})
	return views, nil
}

// Cancel deletes a booking the user owns. Cancelled bookings are refused.
func (s *Service) Cancel(ctx context.Context, booking model.Booking) error {
	if booking.Status == model.BookingStatusCancelled {
		return errors.New("booking is already cancelled")
	}
	return s.api.CancelBooking(ctx, booking.Id)
}
