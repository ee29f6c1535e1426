// Package auth gates websocket connections on a shared secret token.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingToken indicates the request carried no token.
	ErrMissingToken = errors.New("auth: missing token")

	// ErrInvalidToken indicates the token is not one the server accepts.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Validator validates authentication tokens.
type Validator interface {
	Validate(ctx context.Context, token string) error
}

// TokenValidator accepts any of a fixed set of tokens.
type TokenValidator struct {
	tokens [][]byte
}

// NewTokenValidator creates a validator for tokens. At least one token is
// required and none may be empty.
func NewTokenValidator(tokens ...string) (*TokenValidator, error) {
	if len(tokens) == 0 {
		return nil, errors.New("auth: no tokens configured")
	}
	v := &TokenValidator{tokens: make([][]byte, len(tokens))}
	for i, t := range tokens {
		if t == "" {
			return nil, errors.New("auth: empty token configured")
		}
		v.tokens[i] = []byte(t)
	}
	return v, nil
}

func (v *TokenValidator) Validate(_ context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	// Compare against every token so timing does not reveal which matched
	ok := 0
	for _, t := range v.tokens {
		ok |= subtle.ConstantTimeCompare([]byte(token), t)
	}
	if ok != 1 {
		return ErrInvalidToken
	}
	return nil
}

// NoopValidator allows all connections without validation (dev mode).
type NoopValidator struct{}

func (NoopValidator) Validate(context.Context, string) error {
	return nil
}

// TokenFromRequest reads a bearer token from the Authorization header, falling
// back to the token query parameter for clients that cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}

// SetToken adds token to h as a bearer credential.
func SetToken(h http.Header, token string) {
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
}
