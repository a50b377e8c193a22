package mailer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender writes messages to a structured logger instead of
// delivering them. Useful for local development and tests where no
// email provider is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger falls back to
// slog.Default.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender by logging the message.
func (s *LogSender) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}
	s.logger.InfoContext(ctx, "email delivered to log",
		slog.String("message_id", uuid.NewString()),
		slog.Any("to", email.To),
		slog.String("from", email.From),
		slog.String("subject", email.Subject),
		slog.String("body", email.Text),
	)
	return nil
}
