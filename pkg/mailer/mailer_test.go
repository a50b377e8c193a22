package mailer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vaultgate/pkg/mailer"
)

type captureSender struct {
	sent []*mailer.Email
	err  error
}

func (s *captureSender) Send(_ context.Context, email *mailer.Email) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

func TestSendCode(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	m := mailer.New(sender, mailer.Config{
		FromEmail: "no-reply@vault.example.com",
		FromName:  "Vault",
	})

	err := m.SendCode(context.Background(), "user@example.com", "482913", 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	email := sender.sent[0]
	require.Equal(t, []string{"user@example.com"}, email.To)
	require.Equal(t, "Your verification code", email.Subject)
	require.Equal(t, "Vault <no-reply@vault.example.com>", email.From)
	require.Contains(t, email.HTML, "482913")
	require.Contains(t, email.Text, "482913")
	require.Contains(t, email.Text, "5 minutes")
}

func TestSendCodeRoundsTTLUp(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	m := mailer.New(sender, mailer.Config{FromEmail: "no-reply@x.com"})

	err := m.SendCode(context.Background(), "user@example.com", "000000", 90*time.Second)
	require.NoError(t, err)
	require.Contains(t, sender.sent[0].Text, "2 minutes")
}

func TestSendNoRecipient(t *testing.T) {
	t.Parallel()

	m := mailer.New(&captureSender{}, mailer.Config{})
	err := m.SendCode(context.Background(), "", "482913", time.Minute)
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
}

func TestSendUnknownTemplate(t *testing.T) {
	t.Parallel()

	m := mailer.New(&captureSender{}, mailer.Config{})
	err := m.Send(context.Background(), "user@example.com", "nope.md", nil)
	require.ErrorIs(t, err, mailer.ErrRenderFailed)
	require.ErrorIs(t, err, mailer.ErrTemplateNotFound)
}

func TestSendDeliveryFailure(t *testing.T) {
	t.Parallel()

	sender := &captureSender{err: errors.New("provider down")}
	m := mailer.New(sender, mailer.Config{FromEmail: "no-reply@x.com"})

	err := m.SendCode(context.Background(), "user@example.com", "482913", time.Minute)
	require.ErrorIs(t, err, mailer.ErrSendFailed)
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := mailer.NewLogSender(logger)

	err := s.Send(context.Background(), &mailer.Email{
		To:      []string{"user@example.com"},
		Subject: "Hello",
		Text:    "body",
	})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{Subject: "Hello"})
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
}
