package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, "$12.50", Price(12.5))
	assert.Equal(t, "$25.00", Price(25))
	assert.Equal(t, "$1,234.57", Price(1234.567))
	assert.Equal(t, "-$5.00", Price(-5))
	assert.Equal(t, "$0.00", Price(0))
}

func TestTime(t *testing.T) {
	assert.Equal(t, "7:30 PM", Time("19:30"))
	assert.Equal(t, "12:00 AM", Time("00:00"))
	assert.Equal(t, "12:05 PM", Time("12:05:00"))
	assert.Equal(t, "soon", Time("soon"))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Mar 04, 2026", Date("2026-03-04"))
	assert.Equal(t, "tomorrow", Date("tomorrow"))
}

func TestValidateShowDate(t *testing.T) {
	now := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateShowDate("2026-03-04", now))
	assert.NoError(t, ValidateShowDate("2026-03-11", now))
	assert.Error(t, ValidateShowDate("2026-03-03", now))
	assert.Error(t, ValidateShowDate("2026-03-12", now))
	assert.Error(t, ValidateShowDate("03/05/2026", now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Interst…", Truncate("Interstellar", 8))
	assert.Empty(t, Truncate("x", 0))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "2h 15m", Duration(135))
	assert.Equal(t, "45m", Duration(45))
	assert.Equal(t, "2h", Duration(120))
	assert.Equal(t, "-", Duration(0))
}
