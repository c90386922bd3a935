package group

import (
	"fmt"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/zkauth/pkg/math/arith"
)

// The 1024-bit MODP group with 160-bit prime order subgroup of RFC 5114, section 2.1.
const (
	rfc5114P     = "B10B8F96A080E01DDE92DE5EAE5D54EC52C99FBCFB06A3C69A6A9DCA52D23B616073E28675A23D189838EF1E2EE652C013ECB4AEA906112324975C3CD49B83BFACCBDD7D90C4BD7098488E9C219A73724EFFD6FAE5644738FAA31A4FF55BCCC0A151AF5F0DC8B4BD45BF37DF365C1A65E68CFDA76D4DA708DF1FB2BC2E4A4371"
	rfc5114Q     = "F518AA8781A8DF278ABA4E7D64B7CB9D49462353"
	rfc5114Alpha = "A4D1CBD5C3FD34126765A442EFB99905F8104DD258AC507FD6406CFF14266D31266FEA1E5C41564B777E690F5504F213160217B4B01B886A5E91547F9E2749F4D7FBD7D3B9A92EE1909D0D2263F80A76A6A24C087A091F531DBF0A0169B6A28AD662A4D18E73AFA32D779D5918D08BC8858F4DCEF97C2A24855E6EEB22B3B2E5"

	// betaExponent is w in β = αʷ.
	// It is a deployment constant. It never appears in a request, and it cannot be
	// recovered from a transcript; anyone who knows it can forge proofs.
	betaExponent = "266FEA1E5C41564B777E69"
)

var (
	defaultOnce   sync.Once
	defaultParams *Parameters
)

// Default returns the group used by deployments: the RFC 5114 1024-bit group,
// with β = αʷ (mod p) for the fixed exponent w.
//
// The result is computed once and shared.
func Default() *Parameters {
	defaultOnce.Do(func() {
		g, err := FromHex(rfc5114P, rfc5114Q, rfc5114Alpha, "")
		if err != nil {
			panic(fmt.Sprintf("group: invalid default parameters: %v", err))
		}
		defaultParams = g
	})
	return defaultParams
}

// Toy returns the small group p = 23, q = 11, α = 4, β = 9.
// It is only useful for tests and worked examples.
func Toy() *Parameters {
	return New(
		saferith.ModulusFromUint64(23),
		saferith.ModulusFromUint64(11),
		new(saferith.Nat).SetUint64(4),
		new(saferith.Nat).SetUint64(9),
	)
}

// FromHex parses hexadecimal p, q and α, in either case. If beta is empty, β is derived from α with
// the fixed deployment exponent. The result is validated.
func FromHex(p, q, alpha, beta string) (*Parameters, error) {
	pMod, err := modulusFromHex(p)
	if err != nil {
		return nil, fmt.Errorf("group: p: %w", err)
	}
	qMod, err := modulusFromHex(q)
	if err != nil {
		return nil, fmt.Errorf("group: q: %w", err)
	}
	alphaNat, err := natFromHex(alpha)
	if err != nil {
		return nil, fmt.Errorf("group: alpha: %w", err)
	}
	var betaNat *saferith.Nat
	if beta == "" {
		w, err := natFromHex(betaExponent)
		if err != nil {
			return nil, fmt.Errorf("group: exponent: %w", err)
		}
		betaNat = arith.Exp(alphaNat, w, pMod)
	} else if betaNat, err = natFromHex(beta); err != nil {
		return nil, fmt.Errorf("group: beta: %w", err)
	}

	g := New(pMod, qMod, alphaNat, betaNat)
	if err = g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
