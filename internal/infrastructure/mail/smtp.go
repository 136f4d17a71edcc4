// Package mail implements the outbound mail transport on SMTP via gomail.
// With no SMTP host configured, sends degrade to a logged no-op so the
// checkpoint pipeline keeps working in development.
package mail

import (
	"context"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Config captures the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender implements ports.MailSender.
type Sender struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

// NewSender builds a Sender. An empty Host leaves the dialer nil (dev mode).
func NewSender(cfg Config, logger zerolog.Logger) *Sender {
	s := &Sender{from: cfg.From, logger: logger}
	if cfg.Host != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

// Send delivers one message. In dev mode the message is logged instead of
// sent, and the send is reported as successful.
func (s *Sender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.dialer == nil {
		s.logger.Info().
			Str("to", to).
			Str("subject", subject).
			Msg("smtp not configured, dropping email")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	return s.dialer.DialAndSend(m)
}
