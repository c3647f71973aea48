package seating

import (
	"slices"
	"strconv"
)

type SeatState int

const (
	Available SeatState = iota
	Selected
	Booked
)

func (s SeatState) String() string {
	switch s {
	case Selected:
		return "selected"
	case Booked:
		return "booked"
	default:
		return "available"
	}
}

// BookedSet is the set of seat numbers that cannot be selected.
type BookedSet map[int]struct{}

func (b BookedSet) Contains(n int) bool {
	_, ok := b[n]
	return ok
}

func (b BookedSet) Len() int {
	return len(b)
}

// Numbers returns the booked seats in ascending order.
func (b BookedSet) Numbers() []int {
	numbers := make([]int, 0, len(b))
	for n := range b {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)
	return numbers
}

// BookedFromAvailability approximates which seats are taken when the backend
// only reports counts: the first total-available seats are treated as booked.
func BookedFromAvailability(total, available int) BookedSet {
	booked := total - available
	if booked > total {
		booked = total
	}
	set := make(BookedSet, max(booked, 0))
	for n := 1; n <= booked; n++ {
		set[n] = struct{}{}
	}
	return set
}

// BookedFromNumbers builds the set from explicit seat identities, for
// backends that report them. Entries outside [1, total] are dropped.
func BookedFromNumbers(total int, numbers []int) BookedSet {
	set := make(BookedSet, len(numbers))
	for _, n := range numbers {
		if n >= 1 && n <= total {
			set[n] = struct{}{}
		}
	}
	return set
}

// StateOf resolves a seat's display state. Booked wins over selected.
func StateOf(n int, booked BookedSet, selected *Selection) SeatState {
	if booked.Contains(n) {
		return Booked
	}
	if selected != nil && selected.Contains(n) {
		return Selected
	}
	return Available
}

// SeatStrings renders seat numbers the way booking records store them.
func SeatStrings(numbers []int) []string {
	out := make([]string, len(numbers))
	for i, n := range numbers {
		out[i] = itoa(n)
	}
	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
