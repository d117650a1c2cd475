package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/wmou-edu/portal-api/pkg/config"
)

// Mailer delivers HTML email through an SMTP relay.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer implements Mailer on top of gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP constructs an SMTP-backed mailer from config.
func NewSMTP(cfg config.SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

// Send delivers a single message. Callers treat failures as best-effort.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
