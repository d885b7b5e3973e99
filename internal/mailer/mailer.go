// Package mailer delivers transactional email.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/middleware"
)

// Mailer sends password reset codes.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, otp string, ttl time.Duration) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer builds a mailer for cfg's SMTP relay.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		from: cfg.SMTPFrom,
		auth: auth,
		send: smtp.SendMail,
	}
}

// SendPasswordReset mails the one-time code to the user. smtp.SendMail takes
// no context, so cancellation is only honored before the send starts.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, otp string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := passwordResetMessage(m.from, to, otp, ttl)
	if err := m.send(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send password reset mail: %w", err)
	}
	return nil
}

func passwordResetMessage(from, to, otp string, ttl time.Duration) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your password reset code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your password reset code is %s.\r\n", otp)
	fmt.Fprintf(&b, "It expires in %d minutes. If you did not ask for it, ignore this email.\r\n", int(ttl.Round(time.Minute).Minutes()))
	return []byte(b.String())
}

// LogMailer logs instead of sending. It is used when SMTP_HOST is unset.
type LogMailer struct{}

// SendPasswordReset implements Mailer.
func (LogMailer) SendPasswordReset(ctx context.Context, to, _ string, ttl time.Duration) error {
	middleware.Logger.InfoContext(ctx, "password reset code issued (mail delivery disabled)",
		"to", to, "ttl", ttl.String())
	return nil
}

// New returns an SMTP mailer when a host is configured, otherwise LogMailer.
func New(cfg *config.Config) Mailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
