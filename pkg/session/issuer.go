package session

import (
	"io"

	"github.com/taurusgroup/zkauth/pkg/math/sample"
)

// Issuer creates the session token handed out after a successful verification.
type Issuer interface {
	Issue(identity string) (string, error)
}

// IssuerFunc adapts a function to the Issuer interface.
type IssuerFunc func(identity string) (string, error)

// Issue implements Issuer.
func (f IssuerFunc) Issue(identity string) (string, error) {
	return f(identity)
}

// RandomIssuer returns opaque random alphanumeric tokens of the given length.
func RandomIssuer(rand io.Reader, length int) Issuer {
	return IssuerFunc(func(string) (string, error) {
		return sample.Token(rand, length), nil
	})
}
