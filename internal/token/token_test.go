package token_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/zkauth/internal/test"
	"github.com/taurusgroup/zkauth/internal/token"
)

var key = bytes.Repeat([]byte{0x42}, 32)

func TestIssuer_RoundTrip(t *testing.T) {
	clock := test.NewClock()
	issuer, err := token.NewIssuer(key, token.WithClock(clock.Now))
	require.NoError(t, err)

	signed, err := issuer.Issue("alice")
	require.NoError(t, err)

	claims, err := issuer.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, token.DefaultIssuer, claims.Issuer)
	assert.Len(t, claims.ID, 24)
	assert.Equal(t, clock.Now().Add(token.DefaultLifetime).Unix(), claims.ExpiresAt.Unix())

	other, err := issuer.Issue("alice")
	require.NoError(t, err)
	assert.NotEqual(t, signed, other)
}

func TestIssuer_Expired(t *testing.T) {
	clock := test.NewClock()
	issuer, err := token.NewIssuer(key, token.WithClock(clock.Now), token.WithLifetime(time.Minute))
	require.NoError(t, err)

	signed, err := issuer.Issue("alice")
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = issuer.Identity(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssuer_WrongKey(t *testing.T) {
	a, err := token.NewIssuer(key)
	require.NoError(t, err)
	b, err := token.NewIssuer(bytes.Repeat([]byte{0x43}, 32))
	require.NoError(t, err)

	signed, err := a.Issue("alice")
	require.NoError(t, err)
	_, err = b.Parse(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = a.Parse("not.a.token")
	assert.Error(t, err)
}

func TestIssuer_WrongName(t *testing.T) {
	a, err := token.NewIssuer(key, token.WithName("one"))
	require.NoError(t, err)
	b, err := token.NewIssuer(key, token.WithName("two"))
	require.NoError(t, err)

	signed, err := a.Issue("alice")
	require.NoError(t, err)
	_, err = b.Parse(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestNewIssuer_ShortKey(t *testing.T) {
	_, err := token.NewIssuer([]byte("short"))
	assert.ErrorIs(t, err, token.ErrShortKey)
}
