package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends HTML email
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through an SMTP relay
type SMTPMailer struct {
	config EmailConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer returns a mailer for cfg, or nil when no SMTP host is configured
func NewSMTPMailer(cfg EmailConfig) *SMTPMailer {
	if cfg.Host == "" {
		return nil
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{
		config: cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send sends an HTML email
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// EnrollmentEmailBody renders the message a center receives for a new enrollment
func EnrollmentEmailBody(centerName, studentName, plan string) string {
	return fmt.Sprintf(`
		<h2>New enrollment at %s</h2>
		<p>%s has completed payment and is now enrolled.</p>
		<p>Plan: <strong>%s</strong></p>
		<p>You can review the enrollment from your center dashboard.</p>
	`, centerName, studentName, plan)
}
