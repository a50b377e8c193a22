// Package otp implements the one-time passcode challenge flow used to
// bootstrap a session.
//
// A Manager issues short-lived numeric codes keyed by identity, delivers them
// through a pluggable delivery function, and verifies submitted codes with a
// constant-time comparison. Challenges are single-use: a successful
// verification consumes the challenge, and issuing a new code for an identity
// replaces any pending one.
//
// The backing Store is injectable so tests can substitute fakes; the bundled
// MemoryStore keeps challenges in process memory with no durability, which is
// intentional — challenges are worthless after a few minutes anyway.
//
// Usage:
//
//	mgr := otp.NewManager(otp.NewMemoryStore(),
//		otp.WithTTL(5*time.Minute),
//		otp.WithDelivery(sendMail),
//	)
//
//	if err := mgr.Issue(ctx, "user@example.com"); err != nil { ... }
//	if mgr.Verify(ctx, "user@example.com", submitted) { ... }
package otp
