package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Challenge is a pending one-time code bound to an identity.
type Challenge struct {
	Code      string
	ExpiresAt time.Time
}

// Store holds pending challenges keyed by identity.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a challenge, replacing any existing one for the identity.
	Save(identity string, ch Challenge)

	// Get returns the pending challenge for the identity, if any.
	Get(identity string) (Challenge, bool)

	// Delete removes the challenge for the identity.
	Delete(identity string)

	// Sweep removes challenges that expired before now and returns
	// how many were removed.
	Sweep(now time.Time) int
}

// DeliveryFunc delivers a freshly issued code to the identity out of band.
// Delivery is fire-and-forget: the Manager logs failures and never surfaces
// them to the caller of Issue.
type DeliveryFunc func(ctx context.Context, identity, code string) error

// Manager issues and verifies one-time codes.
type Manager struct {
	store   Store
	deliver DeliveryFunc
	logger  *slog.Logger
	now     func() time.Time
	length  int
	ttl     time.Duration
}

// Default challenge parameters.
const (
	DefaultLength = 6
	DefaultTTL    = 5 * time.Minute
)

// NewManager creates a Manager backed by the given store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		length: DefaultLength,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue generates a fresh code for the identity, stores it with an expiry of
// now+TTL, and triggers delivery. Any previously pending challenge for the
// identity is overwritten. Delivery failures are logged, not returned.
func (m *Manager) Issue(ctx context.Context, identity string) error {
	code, err := m.generate()
	if err != nil {
		return fmt.Errorf("otp: generate code: %w", err)
	}

	m.store.Save(identity, Challenge{
		Code:      code,
		ExpiresAt: m.now().Add(m.ttl),
	})

	if m.deliver != nil {
		if err := m.deliver(ctx, identity, code); err != nil {
			m.logger.WarnContext(ctx, "challenge delivery failed",
				slog.String("identity", identity),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// Verify checks the submitted code against the pending challenge for the
// identity. It fails closed when no challenge exists, and evicts expired
// challenges on sight. A match consumes the challenge so the code cannot be
// replayed.
//
// A mismatch leaves the challenge in place, so repeated guesses remain
// possible until expiry. This mirrors the reference behavior on purpose;
// rate limiting, if wanted, belongs to the transport layer.
func (m *Manager) Verify(ctx context.Context, identity, code string) bool {
	ch, ok := m.store.Get(identity)
	if !ok {
		return false
	}

	if m.now().After(ch.ExpiresAt) {
		m.store.Delete(identity)
		return false
	}

	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) == 1 {
		m.store.Delete(identity)
		return true
	}

	return false
}

// Sweep evicts expired challenges from the store. Eviction-on-use already
// bounds correctness; the sweep bounds memory growth from abandoned
// challenges and is meant to run on a schedule.
func (m *Manager) Sweep(ctx context.Context) {
	if n := m.store.Sweep(m.now()); n > 0 {
		m.logger.InfoContext(ctx, "swept expired challenges", slog.Int("count", n))
	}
}

// TTL returns the configured challenge lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

const codeAlphabet = "0123456789"

// generate produces a fixed-length decimal code from a CSPRNG.
func (m *Manager) generate() (string, error) {
	buf := make([]byte, m.length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, m.length)
	for i, b := range buf {
		// 250 is the largest multiple of 10 below 256; resample the rare
		// overflow bytes to keep each digit uniform.
		for b >= 250 {
			var one [1]byte
			if _, err := rand.Read(one[:]); err != nil {
				return "", err
			}
			b = one[0]
		}
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code), nil
}
