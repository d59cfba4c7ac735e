// Package mail delivers transactional email over SMTP.
package mail

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"tourbook/internal/domain"
)

// Sender is the capability the auth flows depend on.
type Sender interface {
	SendWelcome(to, name, url string) error
	SendPasswordReset(to, name, resetURL string) error
}

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m Mailer) SendWelcome(to, name, url string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome to Tourbook! Visit <a href=%q>your account</a> to get started.</p>",
		firstName(name), url,
	)
	return m.send(to, "Welcome to Tourbook", body)
}

func (m Mailer) SendPasswordReset(to, name, resetURL string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Forgot your password? Submit a PATCH request with your new password to <a href=%q>%s</a>.</p>"+
			"<p>The link is valid for 10 minutes. If you did not request this, ignore this email.</p>",
		firstName(name), resetURL, resetURL,
	)
	return m.send(to, "Your password reset token (valid for 10 minutes)", body)
}

func (m Mailer) send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return domain.UpstreamError{Provider: "email", Err: err}
	}
	return nil
}

func firstName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "there"
	}
	return parts[0]
}
