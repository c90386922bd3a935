// Package group holds the domain parameters shared by every prover and verifier.
//
// The parameters describe a subgroup of prime order q inside ℤₚˣ, together with
// two generators α and β of that subgroup. They are fixed constants agreed upon
// out of band and are never part of a request.
package group

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/zkauth/pkg/math/arith"
)

type Error string

const (
	ErrNilFields         Error = "contains nil field"
	ErrGeneratorRange    Error = "generators must be in [2, …, p-1]"
	ErrGeneratorOrder    Error = "generators must have order q"
	ErrSubgroupOrder     Error = "q must divide p-1"
	ErrGeneratorsEqual   Error = "α and β must be distinct"
	ErrModulusOrderSizes Error = "q must be smaller than p"
)

func (e Error) Error() string {
	return fmt.Sprintf("group: %s", string(e))
}

// Parameters is the description of the cyclic group.
// It is immutable once created, and safe to share between goroutines.
type Parameters struct {
	p, q        *saferith.Modulus
	alpha, beta *saferith.Nat
}

// New returns parameters for the given values.
// Assumes Validate returns nil on the result.
func New(p, q *saferith.Modulus, alpha, beta *saferith.Nat) *Parameters {
	return &Parameters{
		p:     p,
		q:     q,
		alpha: alpha,
		beta:  beta,
	}
}

// P is the prime modulus.
func (g *Parameters) P() *saferith.Modulus { return g.p }

// Q is the prime order of the subgroup.
func (g *Parameters) Q() *saferith.Modulus { return g.q }

// Alpha is the first generator α.
func (g *Parameters) Alpha() *saferith.Nat { return g.alpha }

// Beta is the second generator β = αʷ.
func (g *Parameters) Beta() *saferith.Nat { return g.beta }

// Validate checks that
//   - no field is nil,
//   - q < p and q | p-1,
//   - α, β ∈ [2, …, p-1] and α ≠ β,
//   - αᑫ = βᑫ = 1 (mod p).
//
// The primality of p and q is not checked, since the parameters are fixed constants.
func (g *Parameters) Validate() error {
	if g == nil || g.p == nil || g.q == nil || g.alpha == nil || g.beta == nil {
		return ErrNilFields
	}
	if _, _, lt := g.q.Nat().Cmp(g.p.Nat()); lt != 1 {
		return ErrModulusOrderSizes
	}

	// p-1 ≡ 0 (mod q)
	one := new(saferith.Nat).SetUint64(1)
	pMinusOne := new(saferith.Nat).Sub(g.p.Nat(), one, g.p.BitLen())
	if new(saferith.Nat).Mod(pMinusOne, g.q).EqZero() != 1 {
		return ErrSubgroupOrder
	}

	for _, gen := range []*saferith.Nat{g.alpha, g.beta} {
		if !arith.IsValidNatModN(g.p, gen) || gen.EqZero() == 1 || gen.Eq(one) == 1 {
			return ErrGeneratorRange
		}
		if arith.Exp(gen, g.q.Nat(), g.p).Eq(one) != 1 {
			return ErrGeneratorOrder
		}
	}
	if g.alpha.Eq(g.beta) == 1 {
		return ErrGeneratorsEqual
	}
	return nil
}

// Equal reports whether both sets of parameters describe the same group.
func (g *Parameters) Equal(other *Parameters) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.p.Nat().Eq(other.p.Nat()) == 1 &&
		g.q.Nat().Eq(other.q.Nat()) == 1 &&
		g.alpha.Eq(other.alpha) == 1 &&
		g.beta.Eq(other.beta) == 1
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (g *Parameters) WriteTo(w io.Writer) (int64, error) {
	if g == nil {
		return 0, io.ErrUnexpectedEOF
	}
	nAll := int64(0)
	buf := make([]byte, (g.p.BitLen()+7)/8)
	for _, i := range []*saferith.Nat{g.p.Nat(), g.q.Nat(), g.alpha, g.beta} {
		i.Big().FillBytes(buf)
		n, err := w.Write(buf)
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Parameters) Domain() string {
	return "Chaum-Pedersen Parameters"
}

type parametersMarshal struct {
	P, Q        *saferith.Modulus
	Alpha, Beta *saferith.Nat
}

// MarshalBinary implements encoding.BinaryMarshaler using cbor.
func (g *Parameters) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(&parametersMarshal{
		P:     g.p,
		Q:     g.q,
		Alpha: g.alpha,
		Beta:  g.beta,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, and validates the result.
func (g *Parameters) UnmarshalBinary(data []byte) error {
	var pm parametersMarshal
	if err := cbor.Unmarshal(data, &pm); err != nil {
		return fmt.Errorf("group: unmarshal: %w", err)
	}
	decoded := New(pm.P, pm.Q, pm.Alpha, pm.Beta)
	if err := decoded.Validate(); err != nil {
		return err
	}
	*g = *decoded
	return nil
}

var errEmptyHex = errors.New("group: empty hex value")

func natFromHex(s string) (*saferith.Nat, error) {
	if s == "" {
		return nil, errEmptyHex
	}
	return new(saferith.Nat).SetHex(strings.ToUpper(s))
}

func modulusFromHex(s string) (*saferith.Modulus, error) {
	if s == "" {
		return nil, errEmptyHex
	}
	return saferith.ModulusFromHex(strings.ToUpper(s))
}
