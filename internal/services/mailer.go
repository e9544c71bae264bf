package services

import (
	"fmt"
	"net/smtp"

	"github.com/example/mealmart/internal/config"
)

// Mailer delivers transactional email. Delivery is fire-and-forget from
// the caller's perspective; failures are logged, never rolled back into
// the flow that triggered them.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type smtpMailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

// NewSMTPMailer builds a Mailer backed by plain SMTP.
func NewSMTPMailer(cfg *config.Config) Mailer {
	return &smtpMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *smtpMailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
