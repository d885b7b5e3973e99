package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"vidtube/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_SendPasswordReset(t *testing.T) {
	m := NewSMTPMailer(&config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUsername: "user",
		SMTPPassword: "pass",
		SMTPFrom:     "no-reply@vidtube.local",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.SendPasswordReset(context.Background(), "alice@example.com", "123456", 5*time.Minute))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@vidtube.local", gotFrom)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)

	body := string(gotMsg)
	assert.True(t, strings.HasPrefix(body, "From: no-reply@vidtube.local\r\n"))
	assert.Contains(t, body, "To: alice@example.com\r\n")
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "5 minutes")
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := NewSMTPMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 25})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }

	err := m.SendPasswordReset(context.Background(), "a@example.com", "000000", time.Minute)
	assert.ErrorContains(t, err, "relay down")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendPasswordReset(ctx, "a@example.com", "000000", time.Minute), context.Canceled)
}

func TestNew_FallsBackToLogMailer(t *testing.T) {
	assert.IsType(t, LogMailer{}, New(&config.Config{}))
	assert.IsType(t, &SMTPMailer{}, New(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 25}))
	assert.NoError(t, LogMailer{}.SendPasswordReset(context.Background(), "a@example.com", "1", time.Minute))
}
