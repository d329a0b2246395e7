// internal/app/system/mailer/mailer.go

// Package mailer sends transactional email over SMTP. Its only traffic
// today is password-reset OTP messages.
package mailer

import (
	"fmt"

	mail "gopkg.in/mail.v2"
)

// Email is one outbound message with both plain-text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email through a configured SMTP account.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSender configures an SMTP sender. from is the From header on every
// message.
func NewSender(host string, port int, username, password, from string) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers one email. Dialing happens per message; OTP volume is low
// enough that holding a connection open buys nothing.
func (s *Sender) Send(e Email) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.TextBody)
	if e.HTMLBody != "" {
		m.AddAlternative("text/html", e.HTMLBody)
	}

	d := mail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", e.To, err)
	}
	return nil
}
