package seating

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
)

// DefaultMaxSeats caps how many seats one booking may hold.
const DefaultMaxSeats = 10

var (
	ErrSeatBooked     = errors.New("seat is already booked")
	ErrSelectionFull  = errors.New("selection is full")
	ErrSeatOutOfRange = errors.New("seat is not on this map")
)

// ConstraintError is returned when a selection change is refused. The
// selection is left as it was.
type ConstraintError struct {
	Seat int
	Max  int
	Err  error
}

func (e *ConstraintError) Error() string {
	if errors.Is(e.Err, ErrSelectionFull) {
		return fmt.Sprintf("you can select at most %d seats", e.Max)
	}
	return fmt.Sprintf("seat %d: %v", e.Seat, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Selection is the ordered set of seats picked for the current showtime.
// It is safe for concurrent use; every read sees a whole update.
type Selection struct {
	mu     sync.RWMutex
	max    int
	total  int
	booked BookedSet
	seats  []int
}

// Summary is a consistent snapshot of the selection and its price.
type Summary struct {
	Seats []int
	Count int
	Total float64
}

func NewSelection(limit int) *Selection {
	if limit <= 0 {
		limit = DefaultMaxSeats
	}
	return &Selection{max: limit, booked: BookedSet{}}
}

// Reset clears the selection and rebinds it to a seat map. Call it whenever
// the showtime changes.
func (s *Selection) Reset(total int, booked BookedSet) {
	if booked == nil {
		booked = BookedSet{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = total
	s.booked = booked
	s.seats = nil
}

// Rebind swaps in fresh availability for the same showtime, dropping any
// selected seat that is now booked or off the map.
func (s *Selection) Rebind(total int, booked BookedSet) {
	if booked == nil {
		booked = BookedSet{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = total
	s.booked = booked
	s.seats = slices.DeleteFunc(s.seats, func(n int) bool {
		return booked.Contains(n) || n < 1 || (total > 0 && n > total)
	})
}

func (s *Selection) Max() int {
	return s.max
}

// Select appends seat. Selecting an already selected seat is a no-op.
func (s *Selection) Select(seat int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.total > 0 && (seat < 1 || seat > s.total) {
		return &ConstraintError{Seat: seat, Max: s.max, Err: ErrSeatOutOfRange}
	}
	if s.booked.Contains(seat) {
		return &ConstraintError{Seat: seat, Max: s.max, Err: ErrSeatBooked}
	}
	if slices.Contains(s.seats, seat) {
		return nil
	}
	if len(s.seats) >= s.max {
		return &ConstraintError{Seat: seat, Max: s.max, Err: ErrSelectionFull}
	}
	s.seats = append(s.seats, seat)
	return nil
}

func (s *Selection) Deselect(seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.seats, seat); i >= 0 {
		s.seats = slices.Delete(s.seats, i, i+1)
	}
}

// Toggle deselects a selected seat and selects any other.
func (s *Selection) Toggle(seat int) error {
	if s.Contains(seat) {
		s.Deselect(seat)
		return nil
	}
	return s.Select(seat)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats = nil
}

func (s *Selection) Contains(seat int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.seats, seat)
}

// Seats returns a copy in selection order.
func (s *Selection) Seats() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.seats)
}

func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seats)
}

func (s *Selection) Booked() BookedSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.booked
}

func (s *Selection) Summary(pricePerSeat float64) Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summary{
		Seats: slices.Clone(s.seats),
		Count: len(s.seats),
		Total: PriceFor(pricePerSeat, len(s.seats)),
	}
}

// PriceFor is pricePerSeat times count, rounded to cents.
func PriceFor(pricePerSeat float64, count int) float64 {
	return math.Round(pricePerSeat*float64(count)*100) / 100
}
