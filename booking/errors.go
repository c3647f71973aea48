package booking

import (
	"errors"
	"fmt"
)

// Failure kinds. A failed Submit returns a *Failure whose Kind is one of
// these, so errors.Is(err, ErrCapacity) and friends work on the result.
var (
	ErrValidation      = errors.New("invalid booking request")
	ErrCapacity        = errors.New("not enough seats available")
	ErrIdentity        = errors.New("guest registration failed")
	ErrReservation     = errors.New("seat reservation failed")
	ErrBookingCreation = errors.New("booking could not be recorded")

	// ErrSubmissionInFlight rejects a Submit while another one is running.
	ErrSubmissionInFlight = errors.New("a booking submission is already in progress")
)

// Failure describes why a submission stopped. SeatsReserved is set when
// the seat decrement went through before a later step failed; the client
// never gives those seats back.
type Failure struct {
	Kind          error
	Step          Step
	Err           error
	SeatsReserved bool
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

// ShortageError is the cause of a capacity failure when the showtime answered
// but has fewer open seats than were selected.
type ShortageError struct {
	Requested int
	Available int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("%d seats requested, %d available", e.Requested, e.Available)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsCapacityError(err error) bool {
	return errors.Is(err, ErrCapacity)
}

func IsIdentityError(err error) bool {
	return errors.Is(err, ErrIdentity)
}

func IsReservationError(err error) bool {
	return errors.Is(err, ErrReservation)
}

func IsBookingCreationError(err error) bool {
	return errors.Is(err, ErrBookingCreation)
}

// SeatsTaken reports whether a capacity failure came from the showtime
// having too few open seats, as opposed to the re-check not getting through.
func SeatsTaken(err error) bool {
	var shortage *ShortageError
	return IsCapacityError(err) && errors.As(err, &shortage)
}

// SeatsMayBeHeld reports whether a failed submission left seats decremented
// on the server.
func SeatsMayBeHeld(err error) bool {
	var failure *Failure
	return errors.As(err, &failure) && failure.SeatsReserved
}
