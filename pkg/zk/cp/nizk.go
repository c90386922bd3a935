package zkcp

import (
	"errors"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/zkauth/internal/hash"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/math/sample"
)

// Proof is the non-interactive variant, where the challenge is derived from the transcript.
type Proof struct {
	R1, R2 *saferith.Nat
	S      *saferith.Nat
}

var errNilProof = errors.New("zkcp: nil proof")

func challengeFromHash(hash *hash.Hash, g *group.Parameters, y1, y2, r1, r2 *saferith.Nat) (*saferith.Nat, error) {
	if err := hash.WriteAny(g, y1, y2, r1, r2); err != nil {
		return nil, err
	}
	return sample.ModN(hash.Digest(), g.Q()), nil
}

// NewProof proves knowledge of x such that y₁ = αˣ and y₂ = βˣ.
//
// The hash should be initialized with whatever context binds the proof to a session.
// The same context must be used when verifying.
func NewProof(rand io.Reader, hash *hash.Hash, g *group.Parameters, x *saferith.Nat) (*Proof, error) {
	y1, y2 := PublicKey(g, x)
	r := NewRandomness(rand, g)
	c, err := challengeFromHash(hash, g, y1, y2, r.commitment.R1, r.commitment.R2)
	if err != nil {
		return nil, err
	}
	return &Proof{
		R1: r.commitment.R1,
		R2: r.commitment.R2,
		S:  r.Respond(g, c, x),
	}, nil
}

// Verify checks the proof against the public values y₁, y₂.
func (p *Proof) Verify(hash *hash.Hash, g *group.Parameters, y1, y2 *saferith.Nat) bool {
	if p == nil || p.R1 == nil || p.R2 == nil || p.S == nil {
		return false
	}
	c, err := challengeFromHash(hash, g, y1, y2, p.R1, p.R2)
	if err != nil {
		return false
	}
	return Verify(g, p.R1, p.R2, y1, y2, c, p.S)
}

// Validate returns an error if any field is missing.
func (p *Proof) Validate() error {
	if p == nil || p.R1 == nil || p.R2 == nil || p.S == nil {
		return errNilProof
	}
	return nil
}
