package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Gmail defaults, used when host or port are not configured.
const (
	defaultSMTPHost = "smtp.gmail.com"
	defaultSMTPPort = 587
)

// SMTP sends mail through an authenticated STARTTLS relay.
type SMTP struct {
	client *mail.Client
	from   string
}

// NewSMTP creates an SMTP sender. A connection is opened per Send.
func NewSMTP(cfg Config) (*SMTP, error) {
	host, port := cfg.Host, cfg.Port
	if host == "" {
		host = defaultSMTPHost
	}
	if port == 0 {
		port = defaultSMTPPort
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(30 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: smtp client: %w", err)
	}
	return &SMTP{client: client, from: from}, nil
}

// Send implements Sender.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := buildMsg(s.from, msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

func buildMsg(from string, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("mailer: from %q: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("mailer: to %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	return m, nil
}
