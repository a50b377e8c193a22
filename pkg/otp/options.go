package otp

import (
	"log/slog"
	"time"
)

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets the challenge lifetime. Default is 5 minutes.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithLength sets the code length in digits. Default is 6.
func WithLength(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.length = n
		}
	}
}

// WithClock overrides the time source. Tests use this to control expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDelivery sets the out-of-band delivery function invoked on Issue.
func WithDelivery(fn DeliveryFunc) Option {
	return func(m *Manager) {
		m.deliver = fn
	}
}

// WithLogger sets the logger used for delivery failures and sweep reports.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}
