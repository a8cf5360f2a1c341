package auth

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// MailerConfig holds the SMTP settings for outbound mail.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
	DevMode  bool
}

// Mailer sends password reset emails.
type Mailer struct {
	config MailerConfig
}

// NewMailer creates a mailer with the given config.
func NewMailer(config MailerConfig) *Mailer {
	return &Mailer{config: config}
}

// SendPasswordReset sends a password reset email, or logs the link in
// dev mode. Returns the reset link URL.
func (m *Mailer) SendPasswordReset(email, token string) (string, error) {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.config.BaseURL, token)

	if m.config.DevMode {
		slog.Info("dev mode password reset link", "email", email, "link", link)
		return link, nil
	}

	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nClick the link below to choose a new password:\n\n%s\n\nThis link expires in 15 minutes. If you did not request a reset, you can ignore this email.",
		link,
	)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "HabiTrack password reset")
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.config.Host, m.config.Port, m.config.Username, m.config.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("sending email: %w", err)
	}

	return link, nil
}
