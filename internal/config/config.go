// Package config defines the dashboard configuration and its loading hooks.
//
// Conventions:
//   - New returns a Config populated with defaults that run the dashboard
//     without any file or environment.
//   - Load layers a YAML file and ATTRITION_* environment variables on top.
//   - Validation errors wrap ErrInvalidConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8050".
	Addr string `koanf:"addr" validate:"required"`

	// DataPath points at the pre-cleaned attrition CSV.
	DataPath string `koanf:"data_path" validate:"required"`

	// Delimiter is the single field separator of the data file.
	Delimiter string `koanf:"delimiter" validate:"len=1"`

	// RateLimitPerMinute caps /api requests per client IP. Zero disables the limiter.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"min=0"`

	// AllowedHosts restricts the Host header when set, e.g. "dash.example.com".
	// A comma separated env value is split into hosts. Empty allows any host.
	AllowedHosts []string `koanf:"allowed_hosts" validate:"omitempty,dive,required"`

	// ReadTimeout and WriteTimeout bound HTTP request handling.
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8050",
		DataPath:           "attrition_dashboard_data.csv",
		Delimiter:          ",",
		RateLimitPerMinute: 600,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
	}
}

// Comma returns the delimiter as a rune for encoding/csv.
func (c *Config) Comma() rune {
	if c == nil || c.Delimiter == "" {
		return ','
	}
	return []rune(c.Delimiter)[0]
}
