package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookedFromAvailability_FirstSeatsBooked(t *testing.T) {
	booked := BookedFromAvailability(36, 33)
	assert.Equal(t, []int{1, 2, 3}, booked.Numbers())

	assert.Zero(t, BookedFromAvailability(36, 36).Len())
	assert.Zero(t, BookedFromAvailability(36, 40).Len())
	assert.Equal(t, 36, BookedFromAvailability(36, -5).Len())
}

func TestBookedFromNumbers_DropsOutOfRange(t *testing.T) {
	booked := BookedFromNumbers(10, []int{0, 3, 3, 11, 10})
	assert.Equal(t, []int{3, 10}, booked.Numbers())
}

func TestStateOf_BookedWins(t *testing.T) {
	booked := BookedSet{2: {}}
	sel := NewSelection(10)
	_ = sel.Select(5)

	assert.Equal(t, Booked, StateOf(2, booked, sel))
	assert.Equal(t, Selected, StateOf(5, booked, sel))
	assert.Equal(t, Available, StateOf(6, booked, sel))
	assert.Equal(t, Available, StateOf(6, booked, nil))
	assert.Equal(t, "booked", Booked.String())
}

func TestSeatStrings(t *testing.T) {
	assert.Equal(t, []string{"4", "12"}, SeatStrings([]int{4, 12}))
}
