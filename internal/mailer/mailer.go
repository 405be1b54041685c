package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"novaforge-store/internal/config"
)

// Mailer sends transactional emails. Delivery failures surface to the
// caller; nothing is queued or retried.
type Mailer interface {
	SendConfirmationEmail(name, email, confirmURL string) error
	SendPasswordResetEmail(name, email, resetURL string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a Mailer that delivers through the configured
// SMTP server.
func NewSMTPMailer(cfg config.MailConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) SendConfirmationEmail(name, email, confirmURL string) error {
	body := fmt.Sprintf("Hi %s, click the following link to confirm your registration: %s", name, confirmURL)
	return m.send(email, "Confirm your NovaForge Games registration", body)
}

func (m *smtpMailer) SendPasswordResetEmail(name, email, resetURL string) error {
	body := fmt.Sprintf("Hi %s, click the following link to reset your password: %s", name, resetURL)
	return m.send(email, "Reset your NovaForge Games password", body)
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
