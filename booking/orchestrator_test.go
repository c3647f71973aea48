package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"moviebook-cli/model"
	"moviebook-cli/seating"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) GetShowtime(ctx context.Context, showtimeID string) (model.Showtime, error) {
	args := m.Called(ctx, showtimeID)
	return args.Get(0).(model.Showtime), args.Error(1)
}

func (m *mockBackend) CreateUser(ctx context.Context, dto model.UserDTO) (model.User, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockBackend) ReserveSeats(ctx context.Context, showtimeID string, count int) (model.Showtime, error) {
	args := m.Called(ctx, showtimeID, count)
	return args.Get(0).(model.Showtime), args.Error(1)
}

func (m *mockBackend) CreateBooking(ctx context.Context, dto model.BookingDTO) (model.Booking, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(model.Booking), args.Error(1)
}

func selectionOf(t *testing.T, seats ...int) *seating.Selection {
	t.Helper()
	sel := seating.NewSelection(seating.DefaultMaxSeats)
	sel.Reset(36, seating.BookedSet{})
	for _, n := range seats {
		require.NoError(t, sel.Select(n))
	}
	return sel
}

var member = &model.User{Id: "u-1", Email: "ana@example.com", UserType: model.UserTypeCustomer}

func TestSubmit_EmptySelectionMakesNoCalls(t *testing.T) {
	backend := new(mockBackend)
	o := New(backend)

	_, err := o.Submit(context.Background(), Request{ShowtimeID: "st-1", Selection: selectionOf(t), User: member})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	backend.AssertNotCalled(t, "GetShowtime", mock.Anything, mock.Anything)
	assert.Equal(t, Failed, o.State())
}

func TestSubmit_InvalidGuestMakesNoCalls(t *testing.T) {
	backend := new(mockBackend)
	o := New(backend)

	_, err := o.Submit(context.Background(), Request{
		ShowtimeID: "st-1",
		Selection:  selectionOf(t, 1),
		Guest:      Guest{Name: " ", Email: "not-an-email", Phone: ""},
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "phone is required")
	backend.AssertExpectations(t)
}

func TestSubmit_AuthenticatedUserBooksTwoSeats(t *testing.T) {
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Return(model.Showtime{Id: "st-1", Price: 12.50, TotalSeats: 36, AvailableSeats: 20}, nil)
	backend.On("ReserveSeats", mock.Anything, "st-1", 2).
		Return(model.Showtime{Id: "st-1", AvailableSeats: 18}, nil)
	backend.On("CreateBooking", mock.Anything, mock.MatchedBy(func(dto model.BookingDTO) bool {
		return dto.UserId == "u-1" && dto.ShowtimeId == "st-1" &&
			len(dto.Seats) == 2 && dto.Seats[0] == "7" && dto.Seats[1] == "8" &&
			dto.TotalPrice == 25.00 && dto.Status == model.BookingStatusConfirmed
	})).Return(model.Booking{
		Id: "b-1", UserId: "u-1", ShowtimeId: "st-1",
		Seats: []string{"7", "8"}, TotalPrice: 25.00, Status: model.BookingStatusConfirmed,
	}, nil)

	sel := selectionOf(t, 7, 8)
	o := New(backend)
	booking, err := o.Submit(context.Background(), Request{ShowtimeID: "st-1", Selection: sel, User: member})
	require.NoError(t, err)
	assert.Equal(t, "b-1", booking.Id)
	assert.Equal(t, 25.00, booking.TotalPrice)
	assert.Len(t, booking.Seats, 2)
	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.Zero(t, sel.Len())
	assert.Equal(t, Done, o.State())
	backend.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	backend.AssertExpectations(t)
}

func TestSubmit_CapacityFailureSkipsIdentityAndReservation(t *testing.T) {
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Return(model.Showtime{Id: "st-1", Price: 10, TotalSeats: 36, AvailableSeats: 2}, nil)

	sel := selectionOf(t, 1, 2, 3)
	o := New(backend)
	_, err := o.Submit(context.Background(), Request{
		ShowtimeID: "st-1",
		Selection:  sel,
		Guest:      Guest{Name: "Ana", Email: "ana@example.com", Phone: "5551234567"},
	})
	require.Error(t, err)
	assert.True(t, IsCapacityError(err))
	assert.True(t, SeatsTaken(err))
	assert.False(t, SeatsMayBeHeld(err))
	assert.Equal(t, Idle, o.State())
	assert.Equal(t, []int{1, 2, 3}, sel.Seats())

	var shortage *ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, ShortageError{Requested: 3, Available: 2}, *shortage)
	backend.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	backend.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_UnreachableShowtimeIsNotASeatShortage(t *testing.T) {
	unreachable := errors.New("dial tcp: connection refused")
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").Return(model.Showtime{}, unreachable)

	sel := selectionOf(t, 4)
	o := New(backend)
	_, err := o.Submit(context.Background(), Request{ShowtimeID: "st-1", Selection: sel, User: member})
	require.Error(t, err)
	assert.True(t, IsCapacityError(err))
	assert.False(t, SeatsTaken(err))
	assert.ErrorIs(t, err, unreachable)
	assert.Equal(t, []int{4}, sel.Seats())
	backend.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
	backend.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestSubmit_GuestAccountCreatedFirst(t *testing.T) {
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Return(model.Showtime{Id: "st-1", Price: 8, TotalSeats: 36, AvailableSeats: 36}, nil)
	backend.On("CreateUser", mock.Anything, model.UserDTO{
		Username: "ana@example.com",
		Email:    "ana@example.com",
		Password: "fixed",
		Name:     "Ana",
		Phone:    "555 123 4567",
		UserType: model.UserTypeCustomer,
	}).Return(model.User{Id: "g-1"}, nil)
	backend.On("ReserveSeats", mock.Anything, "st-1", 1).Return(model.Showtime{}, nil)
	backend.On("CreateBooking", mock.Anything, mock.MatchedBy(func(dto model.BookingDTO) bool {
		return dto.UserId == "g-1"
	})).Return(model.Booking{Id: "b-2", UserId: "g-1"}, nil)

	o := New(backend, WithCredentialFunc(func() string { return "fixed" }))
	booking, err := o.Submit(context.Background(), Request{
		ShowtimeID: "st-1",
		Selection:  selectionOf(t, 5),
		Guest:      Guest{Name: " Ana ", Email: " ana@example.com", Phone: "555 123 4567"},
	})
	require.NoError(t, err)
	assert.Equal(t, "g-1", booking.UserId)
	backend.AssertExpectations(t)
}

func TestSubmit_IdentityFailureStopsBeforeReservation(t *testing.T) {
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Return(model.Showtime{Id: "st-1", Price: 8, TotalSeats: 36, AvailableSeats: 36}, nil)
	backend.On("CreateUser", mock.Anything, mock.Anything).
		Return(model.User{}, errors.New("email already registered"))

	sel := selectionOf(t, 5)
	o := New(backend)
	_, err := o.Submit(context.Background(), Request{
		ShowtimeID: "st-1",
		Selection:  sel,
		Guest:      Guest{Name: "Ana", Email: "ana@example.com", Phone: "5551234567"},
	})
	require.Error(t, err)
	assert.True(t, IsIdentityError(err))
	assert.Contains(t, err.Error(), "email already registered")
	assert.Equal(t, []int{5}, sel.Seats())
	assert.Equal(t, Failed, o.State())
	backend.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_ReservationFailure(t *testing.T) {
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Return(model.Showtime{Id: "st-1", Price: 8, TotalSeats: 36, AvailableSeats: 36}, nil)
	backend.On("ReserveSeats", mock.Anything, "st-1", 1).
		Return(model.Showtime{}, errors.New("503 service unavailable"))

	o := New(backend)
	_, err := o.Submit(context.Background(), Request{ShowtimeID: "st-1", Selection: selectionOf(t, 9), User: member})
	require.Error(t, err)
	assert.True(t, IsReservationError(err))
	assert.False(t, SeatsMayBeHeld(err))
	backend.AssertNumberOfCalls(t, "ReserveSeats", 1)
	backend.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestSubmit_BookingFailureReportsHeldSeats(t *testing.T) {
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Return(model.Showtime{Id: "st-1", Price: 8, TotalSeats: 36, AvailableSeats: 36}, nil)
	backend.On("ReserveSeats", mock.Anything, "st-1", 2).Return(model.Showtime{}, nil)
	backend.On("CreateBooking", mock.Anything, mock.Anything).
		Return(model.Booking{}, errors.New("boom"))

	sel := selectionOf(t, 1, 2)
	o := New(backend)
	_, err := o.Submit(context.Background(), Request{ShowtimeID: "st-1", Selection: sel, User: member})
	require.Error(t, err)
	assert.True(t, IsBookingCreationError(err))
	assert.True(t, SeatsMayBeHeld(err))

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, StepRecord, failure.Step)
	assert.Equal(t, []int{1, 2}, sel.Seats())
	backend.AssertNumberOfCalls(t, "ReserveSeats", 1)
}

func TestSubmit_CancelledContextStopsBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Run(func(mock.Arguments) { cancel() }).
		Return(model.Showtime{Id: "st-1", Price: 8, TotalSeats: 36, AvailableSeats: 36}, nil)

	o := New(backend)
	_, err := o.Submit(ctx, Request{ShowtimeID: "st-1", Selection: selectionOf(t, 1), User: member})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsReservationError(err))
	assert.False(t, IsIdentityError(err))
	backend.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_CancelledBeforeGuestAccount(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Run(func(mock.Arguments) { cancel() }).
		Return(model.Showtime{Id: "st-1", Price: 8, TotalSeats: 36, AvailableSeats: 36}, nil)

	o := New(backend)
	_, err := o.Submit(ctx, Request{
		ShowtimeID: "st-1",
		Selection:  selectionOf(t, 1),
		Guest:      Guest{Name: "Ana", Email: "ana@example.com", Phone: "5551234567"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsIdentityError(err))
	backend.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestSubmit_DoubleSubmitRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(model.Showtime{Id: "st-1", Price: 5, TotalSeats: 36, AvailableSeats: 36}, nil).Once()
	backend.On("ReserveSeats", mock.Anything, "st-1", 1).Return(model.Showtime{}, nil).Once()
	backend.On("CreateBooking", mock.Anything, mock.Anything).Return(model.Booking{Id: "b-1"}, nil).Once()

	o := New(backend)
	req := Request{ShowtimeID: "st-1", Selection: selectionOf(t, 3), User: member}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = o.Submit(context.Background(), req)
	}()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the backend")
	}
	assert.True(t, o.State().Busy())

	_, err := o.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	backend.AssertNumberOfCalls(t, "GetShowtime", 1)
	backend.AssertNumberOfCalls(t, "ReserveSeats", 1)
}

func TestSubmit_ObserverSeesLinearProgression(t *testing.T) {
	backend := new(mockBackend)
	backend.On("GetShowtime", mock.Anything, "st-1").
		Return(model.Showtime{Id: "st-1", Price: 8, TotalSeats: 36, AvailableSeats: 36}, nil)
	backend.On("ReserveSeats", mock.Anything, "st-1", 1).Return(model.Showtime{}, nil)
	backend.On("CreateBooking", mock.Anything, mock.Anything).Return(model.Booking{Id: "b-1"}, nil)

	var states []State
	o := New(backend, WithObserver(func(s State) { states = append(states, s) }))
	_, err := o.Submit(context.Background(), Request{ShowtimeID: "st-1", Selection: selectionOf(t, 1), User: member})
	require.NoError(t, err)
	assert.Equal(t, []State{Validating, CheckingAvailability, EnsuringIdentity, ReservingSeats, RecordingBooking, Done}, states)
}

func TestTotalPrice_RoundsToCents(t *testing.T) {
	assert.Equal(t, 25.00, TotalPrice(12.50, 2))
	assert.Equal(t, 0.30, TotalPrice(0.1, 3))
	assert.Zero(t, TotalPrice(9.99, 0))
}
