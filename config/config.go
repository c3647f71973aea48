package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "MOVIEBOOK"

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Seating   SeatingConfig   `mapstructure:"seating"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type BookingConfig struct {
	MaxSeats int `mapstructure:"max_seats"`
}

type SeatingConfig struct {
	Columns int `mapstructure:"columns"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type TelemetryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServiceName   string `mapstructure:"service_name"`
	CollectorAddr string `mapstructure:"collector_addr"`
}

// Load reads configuration from, in increasing precedence: defaults, the
// YAML file at path (or the user config dir when path is empty), a .env in
// the working directory and MOVIEBOOK_* environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(dir, "moviebook-cli"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:9090/api")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.max_attempts", 3)

	v.SetDefault("booking.max_seats", 10)
	v.SetDefault("seating.columns", 6)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", defaultLogFile())

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "moviebook-cli")
	v.SetDefault("telemetry.collector_addr", "localhost:4317")
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "moviebook-cli", "moviebook.log")
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base url: %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.MaxAttempts < 1 {
		return fmt.Errorf("api max attempts must be at least 1, got %d", c.API.MaxAttempts)
	}
	if c.Booking.MaxSeats < 1 {
		return fmt.Errorf("booking max seats must be at least 1, got %d", c.Booking.MaxSeats)
	}
	if c.Seating.Columns < 1 {
		return fmt.Errorf("seating columns must be at least 1, got %d", c.Seating.Columns)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	if c.Telemetry.Enabled && c.Telemetry.CollectorAddr == "" {
		return errors.New("telemetry collector address is required when telemetry is enabled")
	}
	return nil
}
