package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel verification outcomes.
var (
	ErrExpiredToken     = errors.New("token: expired")
	ErrInvalidSignature = errors.New("token: invalid signature")
	ErrInvalidToken     = errors.New("token: invalid")
)

// KindAccess is the token kind minted after a verified challenge.
const KindAccess = "access"

// Claims is the signed payload: registered claims plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

// Service issues and verifies session tokens with a shared HMAC secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates a Service. The secret must not be empty.
func New(secret []byte, ttl time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty signing secret")
	}
	if ttl <= 0 {
		return nil, errors.New("token: non-positive ttl")
	}
	return &Service{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue mints a signed token asserting the identity. Returns the serialized
// token and its lifetime.
func (s *Service) Issue(identity string) (string, time.Duration, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Kind: KindAccess,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("token: sign: %w", err)
	}
	return signed, s.ttl, nil
}

// Verify checks the signature and expiry and returns the asserted identity.
// Outcomes map to the sentinel errors: a tampered or foreign-key token yields
// ErrInvalidSignature, a stale one ErrExpiredToken, anything else that fails
// to parse ErrInvalidToken.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		default:
			return "", ErrInvalidToken
		}
	}

	if !parsed.Valid || claims.Subject == "" || claims.Kind != KindAccess {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}
