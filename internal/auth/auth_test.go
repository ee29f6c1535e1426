package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator(t *testing.T) {
	v, err := NewTokenValidator("alpha", "beta")
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, "alpha"))
	assert.NoError(t, v.Validate(ctx, "beta"))
	assert.ErrorIs(t, v.Validate(ctx, "gamma"), ErrInvalidToken)
	assert.ErrorIs(t, v.Validate(ctx, "alph"), ErrInvalidToken)
	assert.ErrorIs(t, v.Validate(ctx, ""), ErrMissingToken)
}

func TestNewTokenValidator_Errors(t *testing.T) {
	_, err := NewTokenValidator()
	assert.Error(t, err)

	_, err = NewTokenValidator("ok", "")
	assert.Error(t, err)
}

func TestNoopValidator(t *testing.T) {
	assert.NoError(t, NoopValidator{}.Validate(context.Background(), ""))
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.Empty(t, TokenFromRequest(r))

	SetToken(r.Header, "secret")
	assert.Equal(t, "secret", TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/ws?token=query", nil)
	assert.Equal(t, "query", TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "query", TokenFromRequest(r))
}
