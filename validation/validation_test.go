package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(signup{Name: "Ada", Email: "ada@example.com", Phone: "+1 (555) 123-4567"})
	assert.NoError(t, err)
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct(signup{Name: "  ", Email: "nope", Phone: "12"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "phone must be a valid phone number")
}

func TestIsPhone(t *testing.T) {
	cases := map[string]bool{
		"+15551234567":     true,
		"(555) 123-4567":   true,
		"555-1234":         false,
		"call me maybe 55": false,
		"":                 false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsPhone(input), input)
	}
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("john@example.com"))
	assert.True(t, IsEmail("  john@example.com "))
	assert.False(t, IsEmail("john@"))
	assert.False(t, IsEmail(""))
}
