// Package token issues the session tokens handed out after a successful proof.
package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taurusgroup/zkauth/pkg/math/sample"
	"github.com/taurusgroup/zkauth/pkg/session"
)

const (
	// DefaultLifetime is how long a session token stays valid.
	DefaultLifetime = time.Hour
	// DefaultIssuer is the iss claim of every token.
	DefaultIssuer = "zkauth"

	minKeyLength = 32
	idLength     = 24
)

var ErrShortKey = errors.New("token: signing key shorter than 32 bytes")

// Issuer signs HS256 JWTs whose subject is the authenticated identity.
// It implements session.Issuer.
type Issuer struct {
	key      []byte
	name     string
	lifetime time.Duration
	rand     io.Reader
	now      func() time.Time
}

var _ session.Issuer = (*Issuer)(nil)

// Option configures an Issuer.
type Option func(*Issuer)

// WithLifetime sets the validity window of issued tokens.
func WithLifetime(d time.Duration) Option {
	return func(i *Issuer) { i.lifetime = d }
}

// WithName sets the iss claim.
func WithName(name string) Option {
	return func(i *Issuer) { i.name = name }
}

// WithClock sets the time source used for iat and exp.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer returns an Issuer signing with key.
func NewIssuer(key []byte, opts ...Option) (*Issuer, error) {
	if len(key) < minKeyLength {
		return nil, ErrShortKey
	}
	i := &Issuer{
		key:      append([]byte(nil), key...),
		name:     DefaultIssuer,
		lifetime: DefaultLifetime,
		rand:     rand.Reader,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue implements session.Issuer.
func (i *Issuer) Issue(identity string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    i.name,
		Subject:   identity,
		ID:        sample.Token(i.rand, idLength),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
	})
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse checks the signature and validity window of a token issued by i,
// and returns its claims.
func (i *Issuer) Parse(signed string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.name),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	return claims, nil
}

// Identity returns the subject of a valid token.
func (i *Issuer) Identity(signed string) (string, error) {
	claims, err := i.Parse(signed)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
