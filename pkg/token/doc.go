// Package token mints and verifies the signed session credential that a
// verified challenge exchanges for.
//
// Tokens are stateless HS256 JWTs: the subject is the verified identity and
// validity is reconstructed entirely from the signed payload, so the service
// keeps no session table. There is no revocation — a token stays valid for
// its whole stated lifetime. If logout is ever needed, add a deny-list
// collaborator next to this package instead of changing it.
//
// Verification reports a tagged outcome through sentinel errors:
// ErrExpiredToken, ErrInvalidSignature, or ErrInvalidToken.
package token
