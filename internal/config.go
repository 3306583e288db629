package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jobtrackr/jobtrackr/internal/auth"
	"github.com/jobtrackr/jobtrackr/internal/mailer"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Mail     MailConfig        `yaml:"mail"`
	Reminder ReminderConfig    `yaml:"reminder"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.Errors{
		"app":      c.App.Validate(),
		"sqlite":   c.SQLite.Validate(),
		"auth":     c.Auth.Validate(),
		"mail":     c.Mail.Validate(),
		"reminder": c.Reminder.Validate(),
	}.Filter()
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

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Minute)),
	)
}

// MailConfig holds outgoing email configuration.
//
// Mode selects the transport:
//   - "disabled" (default): reminders are only logged.
//   - "smtp": delivered through Host:Port with STARTTLS. Without Username
//     and Password delivery falls back to "disabled" at startup.
//   - "outbox": written as .eml files into OutboxDir, for local development.
type MailConfig struct {
	Mode      string `yaml:"mode"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	From      string `yaml:"from"`
	OutboxDir string `yaml:"outbox_dir"`
}

// Validate validates the mail configuration.
func (c *MailConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = mailer.ModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.In(mailer.ModeDisabled, mailer.ModeSMTP, mailer.ModeOutbox)),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.From, validation.When(c.Mode != mailer.ModeDisabled, validation.Required), is.EmailFormat),
		validation.Field(&c.OutboxDir, validation.When(c.Mode == mailer.ModeOutbox, validation.Required)),
	)
}

// Mailer converts the section into a mailer configuration.
func (c *MailConfig) Mailer() mailer.Config {
	return mailer.Config{
		Mode:      c.Mode,
		Host:      c.Host,
		Port:      c.Port,
		Username:  c.Username,
		Password:  c.Password,
		From:      c.From,
		OutboxDir: c.OutboxDir,
	}
}

// ReminderConfig controls the daily follow-up email job. Hour is in UTC.
type ReminderConfig struct {
	Enabled bool `yaml:"enabled"`
	Hour    int  `yaml:"hour"`
}

// Validate validates the reminder configuration.
func (c *ReminderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Hour, validation.Min(0), validation.Max(23)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 5000,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./jobtrackr.db",
		},
		Auth: AuthConfig{
			TokenTTL: auth.DefaultTokenTTL,
		},
		Mail: MailConfig{
			Mode: mailer.ModeDisabled,
			Port: 587,
		},
		Reminder: ReminderConfig{
			Enabled: true,
			Hour:    8,
		},
	}
}
