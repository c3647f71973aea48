// Package admin is the cinema administrator's console: cinemas, movies and
// the showtimes embedded in them.
package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"moviebook-cli/display"
	"moviebook-cli/model"
	"moviebook-cli/validation"
)

var ErrNotAdmin = errors.New("cinema admin access required")

// API is the admin surface of the booking API. *service.Client satisfies it.
type API interface {
	ListCinemas(ctx context.Context) ([]model.Cinema, error)
	CreateCinema(ctx context.Context, dto model.CinemaDTO) (model.Cinema, error)
	MoviesByCinema(ctx context.Context, cinemaID string) ([]model.Movie, error)
	CreateMovie(ctx context.Context, dto model.MovieDTO) (model.Movie, error)
	UpdateMovie(ctx context.Context, movieID string, dto model.MovieDTO) (model.Movie, error)
	DeleteMovie(ctx context.Context, movieID string) error
	ShowtimesForMovie(ctx context.Context, movieID string) ([]model.Showtime, error)
	AddShowtime(ctx context.Context, movieID string, dto model.ShowtimeDTO) (model.Movie, error)
	RemoveShowtime(ctx context.Context, movieID string, showtimeID string) error
	ListBookings(ctx context.Context) ([]model.Booking, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type Console struct {
	api    API
	selfID string
	logger *zap.Logger
	now    func() time.Time
}

// NewConsole refuses anyone who is not a cinema admin.
func NewConsole(api API, user *model.User, logger *zap.Logger) (*Console, error) {
	if user == nil || !user.IsAdmin() {
		return nil, ErrNotAdmin
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		api:    api,
		selfID: user.Id,
		logger: logger.With(zap.String("admin_id", user.Id)),
		now:    time.Now,
	}, nil
}

func (c *Console) Cinemas(ctx context.Context) ([]model.Cinema, error) {
	return c.api.ListCinemas(ctx)
}

func (c *Console) CreateCinema(ctx context.Context, dto model.CinemaDTO) (model.Cinema, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Location = strings.TrimSpace(dto.Location)
	if err := validation.Struct(dto); err != nil {
		return model.Cinema{}, err
	}
	cinema, err := c.api.CreateCinema(ctx, dto)
	if err != nil {
		return model.Cinema{}, err
	}
	c.logger.Info("cinema created", zap.String("cinema_id", cinema.Id))
	return cinema, nil
}

func (c *Console) Movies(ctx context.Context, cinemaID string) ([]model.Movie, error) {
	return c.api.MoviesByCinema(ctx, cinemaID)
}

func (c *Console) CreateMovie(ctx context.Context, dto model.MovieDTO) (model.Movie, error) {
	if err := validation.Struct(dto); err != nil {
		return model.Movie{}, err
	}
	movie, err := c.api.CreateMovie(ctx, dto)
	if err != nil {
		return model.Movie{}, err
	}
	c.logger.Info("movie created", zap.String("movie_id", movie.Id), zap.String("cinema_id", dto.CinemaId))
	return movie, nil
}

func (c *Console) UpdateMovie(ctx context.Context, movieID string, dto model.MovieDTO) (model.Movie, error) {
	if err := validation.Struct(dto); err != nil {
		return model.Movie{}, err
	}
	return c.api.UpdateMovie(ctx, movieID, dto)
}

func (c *Console) DeleteMovie(ctx context.Context, movieID string) error {
	if err := c.api.DeleteMovie(ctx, movieID); err != nil {
		return err
	}
	c.logger.Info("movie deleted", zap.String("movie_id", movieID))
	return nil
}

func (c *Console) Showtimes(ctx context.Context, movieID string) ([]model.Showtime, error) {
	return c.api.ShowtimesForMovie(ctx, movieID)
}

// ShowtimeInput is what an admin types to schedule a screening. All seats
// start available.
type ShowtimeInput struct {
	ScreenNumber string
	ShowDate     string
	StartTime    string
	Price        float64
	TotalSeats   int
}

func (c *Console) AddShowtime(ctx context.Context, movieID string, in ShowtimeInput) (model.Movie, error) {
	if strings.TrimSpace(movieID) == "" {
		return model.Movie{}, errors.New("movie id is required")
	}
	dto := model.ShowtimeDTO{
		ScreenNumber:   strings.TrimSpace(in.ScreenNumber),
		ShowDate:       strings.TrimSpace(in.ShowDate),
		StartTime:      strings.TrimSpace(in.StartTime),
		Price:          in.Price,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
	}
	if err := validation.Struct(dto); err != nil {
		return model.Movie{}, err
	}
	if err := display.ValidateShowDate(dto.ShowDate, c.now()); err != nil {
		return model.Movie{}, err
	}
	if _, err := time.Parse("15:04", dto.StartTime); err != nil {
		return model.Movie{}, errors.New("start time must look like 19:30")
	}
	movie, err := c.api.AddShowtime(ctx, movieID, dto)
	if err != nil {
		return model.Movie{}, err
	}
	c.logger.Info("showtime added",
		zap.String("movie_id", movieID),
		zap.String("show_date", dto.ShowDate),
		zap.String("start_time", dto.StartTime),
	)
	return movie, nil
}

func (c *Console) RemoveShowtime(ctx context.Context, movieID string, showtimeID string) error {
	if err := c.api.RemoveShowtime(ctx, movieID, showtimeID); err != nil {
		return err
	}
	c.logger.Info("showtime removed", zap.String("movie_id", movieID), zap.String("showtime_id", showtimeID))
	return nil
}

// Revenue sums confirmed bookings per showtime id.
func (c *Console) Revenue(ctx context.Context) (map[string]float64, error) {
	bookings, err := c.api.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]float64{}
	for _, booking := range bookings {
		if booking.Status == model.BookingStatusCancelled {
			continue
		}
		out[booking.ShowtimeId] += booking.TotalPrice
	}
	return out, nil
}

func (c *Console) Users(ctx context.Context) ([]model.User, error) {
	return c.api.ListUsers(ctx)
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (c *Console) DeleteUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}
	if userID == c.selfID {
		return errors.New("you cannot delete your own account")
	}
	if err := c.api.DeleteUser(ctx, userID); err != nil {
		return err
	}
	c.logger.Info("user deleted", zap.String("user_id", userID))
	return nil
}
