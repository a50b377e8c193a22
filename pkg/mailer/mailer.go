package mailer

import (
	"context"
	"errors"
	"math"
	"time"
)

const codeTemplate = "otp_code.md"

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	FromEmail       string `yaml:"from_email" env:"MAILER_FROM_EMAIL" envDefault:"no-reply@localhost"`
	FromName        string `yaml:"from_name" env:"MAILER_FROM_NAME"`
	FallbackSubject string `yaml:"fallback_subject" env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
}

// Mailer renders templated messages and hands them to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
}

// New creates a Mailer using the templates embedded in this package.
func New(sender Sender, cfg Config) *Mailer {
	return &Mailer{
		sender:   sender,
		renderer: NewRenderer(nil),
		config:   cfg,
	}
}

// SendCode delivers a one-time passcode to the given address. ttl is
// rounded up to whole minutes for display.
func (m *Mailer) SendCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.Send(ctx, to, codeTemplate, map[string]any{
		"Code":    code,
		"Minutes": int(math.Ceil(ttl.Minutes())),
	})
}

// Send renders the named template with data and delivers it.
func (m *Mailer) Send(ctx context.Context, to, template string, data any) error {
	if to == "" {
		return ErrNoRecipient
	}

	result, err := m.renderer.Render(template, data, m.config.FallbackSubject)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	email := &Email{
		To:      []string{to},
		Subject: result.Subject,
		HTML:    result.HTML,
		Text:    result.Text,
		From:    Recipient(m.config.FromName, m.config.FromEmail),
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
