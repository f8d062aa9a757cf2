package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
)

const profileUpdatedSubject = "Your profile was updated"

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends notification emails through an SMTP relay.
type SMTPMailer struct {
	dialer dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("SMTP host, port, and sender email must be configured")
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return &SMTPMailer{dialer: d, from: cfg.SenderEmail}, nil
}

func (m *SMTPMailer) SendProfileUpdatedEmail(toEmail, fullName string) error {
	if toEmail == "" {
		return errors.New("no recipient provided for email")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", profileUpdatedSubject)
	msg.SetBody("text/plain", profileUpdatedBody(fullName))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func profileUpdatedBody(fullName string) string {
	greeting := "Hello"
	if fullName != "" {
		greeting += " " + fullName
	}
	return greeting + ",\n\nYour profile information was updated. If this was not you, please contact support.\n"
}
