// Package mailer delivers plain-text email through SMTP, a local outbox
// directory, or nowhere at all.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// Modes.
const (
	ModeDisabled = "disabled"
	ModeSMTP     = "smtp"
	ModeOutbox   = "outbox"
)

// Message is a single plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures a Sender.
type Config struct {
	Mode      string
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	OutboxDir string
}

// New builds the Sender selected by cfg.Mode.
func New(cfg Config, logger *slog.Logger) (Sender, error) {
	switch cfg.Mode {
	case ModeSMTP:
		if cfg.Username == "" || cfg.Password == "" {
			logger.Warn("smtp credentials missing; email delivery disabled, reminders will only be logged",
				slog.String("host", cfg.Host))
			return Disabled{logger: logger}, nil
		}
		return NewSMTP(cfg)
	case ModeOutbox:
		return NewOutbox(cfg.OutboxDir, cfg.From)
	case ModeDisabled, "":
		logger.Warn("email delivery disabled; reminders will only be logged")
		return Disabled{logger: logger}, nil
	default:
		return nil, fmt.Errorf("mailer: unknown mode %q", cfg.Mode)
	}
}

// Disabled logs messages instead of sending them.
type Disabled struct {
	logger *slog.Logger
}

// Send implements Sender.
func (d Disabled) Send(_ context.Context, msg Message) error {
	d.logger.Info("email not sent (mail disabled)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject))
	return nil
}
