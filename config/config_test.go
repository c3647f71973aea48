package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
	t.Chdir(root)
	return root
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.API.MaxAttempts)
	assert.Equal(t, 10, cfg.Booking.MaxSeats)
	assert.Equal(t, 6, cfg.Seating.Columns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "moviebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://files.test/api\n  timeout: 3s\nseating:\n  columns: 8\n"), 0o644))
	t.Setenv("MOVIEBOOK_SEATING_COLUMNS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 12, cfg.Seating.Columns)
}

func TestLoad_DotEnv(t *testing.T) {
	root := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("MOVIEBOOK_BOOKING_MAX_SEATS=4\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("MOVIEBOOK_BOOKING_MAX_SEATS") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Booking.MaxSeats)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	root := isolate(t)
	_, err := Load(filepath.Join(root, "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		API:     APIConfig{BaseURL: "http://localhost:9090/api", Timeout: time.Second, MaxAttempts: 1},
		Booking: BookingConfig{MaxSeats: 10},
		Seating: SeatingConfig{Columns: 6},
		Log:     LogConfig{Level: "debug"},
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.API.BaseURL = "localhost"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Seating.Columns = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Log.Level = "loud"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Telemetry = TelemetryConfig{Enabled: true}
	assert.Error(t, bad.Validate())
}
