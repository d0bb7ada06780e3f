// Package identity carries the signed-in customer through a wizard session.
// The identity is established once per request from the bearer token and
// handed to the wizard and the submission pipeline explicitly.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the signed-in customer: the phone number the backend keys
// bookings by, and the raw bearer token forwarded on backend calls.
type Identity struct {
	Phone string
	Token string
}

// Present reports whether the identity can be used to submit a booking.
func (i Identity) Present() bool {
	return i.Phone != "" && i.Token != ""
}

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Parse verifies an HS256 token with secret and extracts the identity.  The
// phone number is read from the "phone" claim, falling back to "sub".
func Parse(secret, raw string) (Identity, error) {
	// Reject anything not signed with HMAC; the secret is the only key we hold.
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	phone, _ := claims["phone"].(string)
	if phone == "" {
		phone, _ = claims["sub"].(string)
	}
	if phone == "" {
		return Identity{}, fmt.Errorf("%w: missing phone claim", ErrInvalidToken)
	}
	return Identity{Phone: phone, Token: raw}, nil
}

// Issue signs an HS256 token for phone that expires after ttl.  The
// authentication service issues real tokens; this exists for local runs
// and tests.
func Issue(secret, phone string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   phone,
		"phone": phone,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, or the zero identity.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
