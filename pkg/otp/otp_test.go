package otp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vaultgate/pkg/otp"
)

// captureDelivery records the last delivered code.
func captureDelivery(code *string) otp.DeliveryFunc {
	return func(_ context.Context, _ string, c string) error {
		*code = c
		return nil
	}
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	var code string
	mgr := otp.NewManager(otp.NewMemoryStore(), otp.WithDelivery(captureDelivery(&code)))

	ctx := context.Background()
	require.NoError(t, mgr.Issue(ctx, "user@example.com"))
	require.Len(t, code, otp.DefaultLength)

	require.True(t, mgr.Verify(ctx, "user@example.com", code))

	// Single use: the same code must not verify twice.
	require.False(t, mgr.Verify(ctx, "user@example.com", code))
}

func TestVerifyUnknownIdentity(t *testing.T) {
	t.Parallel()

	mgr := otp.NewManager(otp.NewMemoryStore())
	require.False(t, mgr.Verify(context.Background(), "nobody@example.com", "123456"))
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	var code string
	store := otp.NewMemoryStore()
	mgr := otp.NewManager(store,
		otp.WithTTL(5*time.Minute),
		otp.WithClock(clock),
		otp.WithDelivery(captureDelivery(&code)),
	)

	ctx := context.Background()
	require.NoError(t, mgr.Issue(ctx, "user@example.com"))

	now = now.Add(5*time.Minute + time.Second)

	// Correct code, but past the TTL: fails closed and evicts.
	require.False(t, mgr.Verify(ctx, "user@example.com", code))
	require.Equal(t, 0, store.Len())
}

func TestReissueOverwrites(t *testing.T) {
	t.Parallel()

	var code string
	mgr := otp.NewManager(otp.NewMemoryStore(), otp.WithDelivery(captureDelivery(&code)))

	ctx := context.Background()
	require.NoError(t, mgr.Issue(ctx, "user@example.com"))
	first := code
	require.NoError(t, mgr.Issue(ctx, "user@example.com"))
	second := code

	if first != second {
		require.False(t, mgr.Verify(ctx, "user@example.com", first))
	}
	require.True(t, mgr.Verify(ctx, "user@example.com", second))
}

func TestVerifyMismatchKeepsChallenge(t *testing.T) {
	t.Parallel()

	var code string
	store := otp.NewMemoryStore()
	mgr := otp.NewManager(store, otp.WithDelivery(captureDelivery(&code)))

	ctx := context.Background()
	require.NoError(t, mgr.Issue(ctx, "user@example.com"))

	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}

	require.False(t, mgr.Verify(ctx, "user@example.com", wrong))
	require.Equal(t, 1, store.Len())

	// The pending challenge is still live after a mismatch.
	require.True(t, mgr.Verify(ctx, "user@example.com", code))
}

func TestDeliveryFailureDoesNotFailIssue(t *testing.T) {
	t.Parallel()

	mgr := otp.NewManager(otp.NewMemoryStore(), otp.WithDelivery(
		func(context.Context, string, string) error {
			return errors.New("smtp down")
		},
	))

	require.NoError(t, mgr.Issue(context.Background(), "user@example.com"))
}

func TestCodeIsFixedLengthDigits(t *testing.T) {
	t.Parallel()

	var code string
	mgr := otp.NewManager(otp.NewMemoryStore(),
		otp.WithLength(8),
		otp.WithDelivery(captureDelivery(&code)),
	)

	for range 20 {
		require.NoError(t, mgr.Issue(context.Background(), "user@example.com"))
		require.Len(t, code, 8)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store := otp.NewMemoryStore()
	store.Save("stale@example.com", otp.Challenge{Code: "123456", ExpiresAt: now.Add(-time.Minute)})
	store.Save("fresh@example.com", otp.Challenge{Code: "654321", ExpiresAt: now.Add(time.Minute)})

	require.Equal(t, 1, store.Sweep(now))
	require.Equal(t, 1, store.Len())

	_, ok := store.Get("fresh@example.com")
	require.True(t, ok)
}
