// Package booking runs the checkout transaction against the booking API:
// availability re-check, guest identity, seat reservation and the booking
// record, strictly in that order.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"moviebook-cli/model"
	"moviebook-cli/seating"
)

type State int32

const (
	Idle State = iota
	Validating
	CheckingAvailability
	EnsuringIdentity
	ReservingSeats
	RecordingBooking
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case CheckingAvailability:
		return "checking availability"
	case EnsuringIdentity:
		return "creating guest account"
	case ReservingSeats:
		return "reserving seats"
	case RecordingBooking:
		return "recording booking"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Busy reports whether a submission is between Validating and its outcome.
func (s State) Busy() bool {
	return s >= Validating && s <= RecordingBooking
}

// Step names the stage a failure happened in.
type Step string

const (
	StepValidate      Step = "validate"
	StepCheckCapacity Step = "check_capacity"
	StepIdentity      Step = "ensure_identity"
	StepReserve       Step = "reserve_seats"
	StepRecord        Step = "record_booking"
)

// Backend is the slice of the booking API the orchestrator calls.
// *service.Client satisfies it.
type Backend interface {
	GetShowtime(ctx context.Context, showtimeID string) (model.Showtime, error)
	CreateUser(ctx context.Context, dto model.UserDTO) (model.User, error)
	ReserveSeats(ctx context.Context, showtimeID string, count int) (model.Showtime, error)
	CreateBooking(ctx context.Context, dto model.BookingDTO) (model.Booking, error)
}

// Request is one checkout submission. User takes precedence over Guest.
type Request struct {
	ShowtimeID string
	Selection  *seating.Selection
	User       *model.User
	Guest      Guest
}

type Orchestrator struct {
	backend    Backend
	logger     *zap.Logger
	tracer     trace.Tracer
	credential func() string
	observer   func(State)

	inFlight atomic.Bool
	state    atomic.Int32
}

type Option func(*Orchestrator)

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers fn to be called on every state transition, from
// the submitting goroutine.
func WithObserver(fn func(State)) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

func WithCredentialFunc(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.credential = fn
		}
	}
}

func New(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:    backend,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer("moviebook-cli/booking"),
		credential: GuestCredential,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Submit runs one booking attempt. Concurrent calls while an attempt is in
// flight fail fast with ErrSubmissionInFlight. On success the selection is
// cleared; on failure it is left untouched so the user can retry.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (model.Booking, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return model.Booking{}, ErrSubmissionInFlight
	}
	defer o.inFlight.Store(false)

	attemptID := uuid.NewString()
	logger := o.logger.With(
		zap.String("attempt_id", attemptID),
		zap.String("showtime_id", req.ShowtimeID),
	)
	ctx, span := o.tracer.Start(ctx, "booking.submit", trace.WithAttributes(
		attribute.String("attempt_id", attemptID),
		attribute.String("showtime_id", req.ShowtimeID),
	))
	defer span.End()

	start := time.Now()
	booking, err := o.run(ctx, logger, span, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("booking failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		if IsCapacityError(err) {
			o.transition(Idle)
		} else {
			o.transition(Failed)
		}
		return model.Booking{}, err
	}

	span.SetAttributes(attribute.String("booking_id", booking.Id))
	span.SetStatus(codes.Ok, "")
	logger.Info("booking confirmed",
		zap.String("booking_id", booking.Id),
		zap.Strings("seats", booking.Seats),
		zap.Float64("total_price", booking.TotalPrice),
		zap.Duration("elapsed", time.Since(start)),
	)
	o.transition(Done)
	return booking, nil
}

func (o *Orchestrator) run(ctx context.Context, logger *zap.Logger, span trace.Span, req Request) (model.Booking, error) {
	o.transition(Validating)
	seats, err := validate(req)
	if err != nil {
		return model.Booking{}, &Failure{Kind: ErrValidation, Step: StepValidate, Err: err}
	}
	span.SetAttributes(attribute.Int("seat_count", len(seats)))

	o.transition(CheckingAvailability)
	if err := ctx.Err(); err != nil {
		return model.Booking{}, &Failure{Kind: ErrCapacity, Step: StepCheckCapacity, Err: err}
	}
	showtime, err := o.backend.GetShowtime(ctx, req.ShowtimeID)
	if err != nil {
		return model.Booking{}, &Failure{Kind: ErrCapacity, Step: StepCheckCapacity, Err: fmt.Errorf("check availability: %w", err)}
	}
	if showtime.AvailableSeats < len(seats) {
		return model.Booking{}, &Failure{
			Kind: ErrCapacity,
			Step: StepCheckCapacity,
			Err:  &ShortageError{Requested: len(seats), Available: showtime.AvailableSeats},
		}
	}
	span.AddEvent("availability_checked", trace.WithAttributes(attribute.Int("available", showtime.AvailableSeats)))

	o.transition(EnsuringIdentity)
	userID, err := o.ensureIdentity(ctx, logger, req)
	if err != nil {
		return model.Booking{}, &Failure{Kind: ErrIdentity, Step: StepIdentity, Err: err}
	}

	o.transition(ReservingSeats)
	if err := ctx.Err(); err != nil {
		return model.Booking{}, &Failure{Kind: ErrReservation, Step: StepReserve, Err: err}
	}
	if _, err := o.backend.ReserveSeats(ctx, req.ShowtimeID, len(seats)); err != nil {
		return model.Booking{}, &Failure{Kind: ErrReservation, Step: StepReserve, Err: err}
	}
	span.AddEvent("seats_reserved")
	logger.Debug("seats reserved", zap.Int("count", len(seats)))

	// From here on a failure leaves the decrement in place.
	o.transition(RecordingBooking)
	if err := ctx.Err(); err != nil {
		return model.Booking{}, &Failure{Kind: ErrBookingCreation, Step: StepRecord, Err: err, SeatsReserved: true}
	}
	booking, err := o.backend.CreateBooking(ctx, model.BookingDTO{
		UserId:     userID,
		ShowtimeId: req.ShowtimeID,
		Seats:      seating.SeatStrings(seats),
		TotalPrice: TotalPrice(showtime.Price, len(seats)),
		Status:     model.BookingStatusConfirmed,
	})
	if err != nil {
		return model.Booking{}, &Failure{Kind: ErrBookingCreation, Step: StepRecord, Err: err, SeatsReserved: true}
	}

	req.Selection.Clear()
	return booking, nil
}

func (o *Orchestrator) ensureIdentity(ctx context.Context, logger *zap.Logger, req Request) (string, error) {
	if req.User != nil && strings.TrimSpace(req.User.Id) != "" {
		return req.User.Id, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user, err := o.backend.CreateUser(ctx, req.Guest.userDTO(o.credential()))
	if err != nil {
		return "", err
	}
	logger.Info("guest account created", zap.String("user_id", user.Id))
	return user.Id, nil
}

func (o *Orchestrator) transition(state State) {
	o.state.Store(int32(state))
	if o.observer != nil {
		o.observer(state)
	}
}

func validate(req Request) ([]int, error) {
	if strings.TrimSpace(req.ShowtimeID) == "" {
		return nil, errors.New("showtime id is required")
	}
	if req.Selection == nil {
		return nil, errors.New("please select at least one seat")
	}
	seats := req.Selection.Seats()
	if len(seats) == 0 {
		return nil, errors.New("please select at least one seat")
	}
	if req.User == nil || strings.TrimSpace(req.User.Id) == "" {
		if err := req.Guest.Validate(); err != nil {
			return nil, err
		}
	}
	return seats, nil
}

// TotalPrice is price per seat times count, rounded to cents. It is the
// same figure the seat map summary shows.
func TotalPrice(pricePerSeat float64, count int) float64 {
	return seating.PriceFor(pricePerSeat, count)
}
