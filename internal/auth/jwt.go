// Package auth provides the credential primitives: bcrypt password hashing,
// HS256 access tokens, and bearer-token identity resolution for handlers.
//
// A token carries the internal user ID in its "sub" claim and expires one
// hour after issue. Verification needs only the process-wide secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of every access token.
const TokenTTL = time.Hour

const issuer = "moodart"

var (
	// ErrNoToken means the request carried no bearer token at all.
	ErrNoToken = errors.New("No token, authorization denied")
	// ErrTokenExpired means the token was well formed and signed but past its expiry.
	ErrTokenExpired = errors.New("Token expired")
	// ErrTokenInvalid covers every other verification failure.
	ErrTokenInvalid = errors.New("Token is not valid")
)

// TokenService issues and verifies access tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for userID that expires after TokenTTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, TokenTTL)
}

// GenerateWithDuration signs a token with a custom lifetime. Tests use a
// negative duration to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate verifies tokenStr and returns the user ID from its subject.
//
// The error wraps ErrTokenExpired for expired tokens and ErrTokenInvalid
// for anything else (bad signature, wrong algorithm or issuer, garbage).
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: %w", ErrTokenExpired)
		}
		return "", fmt.Errorf("auth: %w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: %w: unexpected claims", ErrTokenInvalid)
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: %w: token has no subject", ErrTokenInvalid)
	}

	return c.Subject, nil
}
