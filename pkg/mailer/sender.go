package mailer

import "context"

// Sender is the minimal interface a delivery provider must implement.
// The Email arrives with To, Subject, and both bodies already set.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}
