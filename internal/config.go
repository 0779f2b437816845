package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/okrtrack/internal/clock"
	"github.com/starford/okrtrack/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Journal JournalConfig     `yaml:"journal"`
	Auth    AuthConfig        `yaml:"auth"`
	Clock   ClockConfig       `yaml:"clock"`
	Events  EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Clock.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// JournalConfig holds the directory where weekly reflections are written.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
		validation.Field(&c.Token,
			validation.When(c.Mode == AuthModeToken, validation.Required.Error("token is empty while mode is token")),
		),
	)
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ClockConfig shifts the base clock for demos and testing. At most one field
// is set. A runtime override stored in settings takes precedence.
type ClockConfig struct {
	OverrideDate string `yaml:"override_date"`
	OffsetDays   int    `yaml:"offset_days"`
}

// Validate validates the clock configuration.
func (c *ClockConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OverrideDate,
			validation.Date(models.DateLayout),
			validation.When(c.OffsetDays != 0, validation.Empty.Error("override_date and offset_days are exclusive")),
		),
	)
}

// Base returns the clock all "now" computations start from.
func (c *ClockConfig) Base() clock.Clock {
	switch {
	case c.OverrideDate != "":
		d, err := time.Parse(models.DateLayout, c.OverrideDate)
		if err != nil {
			return clock.Real{}
		}
		return clock.AtDate(clock.Real{}, d)
	case c.OffsetDays != 0:
		return clock.Offset{Base: clock.Real{}, Shift: time.Duration(c.OffsetDays) * 24 * time.Hour}
	default:
		return clock.Real{}
	}
}

// EventsConfig holds SSE configuration.
type EventsConfig struct {
	DashboardThrottle time.Duration `yaml:"dashboard_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DashboardThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./okrtrack.db",
		},
		Journal: JournalConfig{
			Path: "./journal",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Events: EventsConfig{
			DashboardThrottle: 2 * time.Second,
		},
	}
}
