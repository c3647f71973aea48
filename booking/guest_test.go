package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuestValidate(t *testing.T) {
	assert.NoError(t, Guest{Name: "Ana", Email: "ana@example.com", Phone: "555"}.Validate())
	assert.NoError(t, Guest{Name: " Ana ", Email: " ana@example.com ", Phone: " 5 "}.Validate())
	assert.Error(t, Guest{Name: "Ana", Email: "ana@", Phone: "555"}.Validate())
	assert.Error(t, Guest{Name: "", Email: "ana@example.com", Phone: "555"}.Validate())
}

func TestGuestCredentialIsUnique(t *testing.T) {
	a, b := GuestCredential(), GuestCredential()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "Guest-"))
}

func TestFailureUnwrapsBoth(t *testing.T) {
	cause := assert.AnError
	err := error(&Failure{Kind: ErrReservation, Step: StepReserve, Err: cause})
	assert.ErrorIs(t, err, ErrReservation)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsCapacityError(err))
	assert.Equal(t, "seat reservation failed: "+cause.Error(), err.Error())
	assert.Equal(t, "not enough seats available", (&Failure{Kind: ErrCapacity}).Error())
}
