// Package zkcp implements the Chaum-Pedersen proof that two public values share
// the same discrete logarithm, y₁ = αˣ and y₂ = βˣ, without revealing x.
//
// The interactive flow is
//
//	prover                          verifier
//	k ← ℤq, r₁ = αᵏ, r₂ = βᵏ  ──►
//	                          ◄──   c ← ℤq
//	s = k - c⋅x (mod q)       ──►   r₁ ?= αˢ⋅y₁ᶜ, r₂ ?= βˢ⋅y₂ᶜ
package zkcp

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/math/arith"
	"github.com/taurusgroup/zkauth/pkg/math/sample"
)

// Commitment is the first message of the prover.
type Commitment struct {
	// R1 = αᵏ (mod p)
	R1 *saferith.Nat
	// R2 = βᵏ (mod p)
	R2 *saferith.Nat
}

// Randomness is the ephemeral secret k of a single proof, along with its commitment.
// It must never be reused across challenges.
type Randomness struct {
	k          *saferith.Nat
	commitment Commitment
}

// NewRandomness samples k ∈ ℤq and computes (αᵏ, βᵏ).
func NewRandomness(rand io.Reader, g *group.Parameters) *Randomness {
	k := sample.ModN(rand, g.Q())
	return &Randomness{
		k: k,
		commitment: Commitment{
			R1: arith.Exp(g.Alpha(), k, g.P()),
			R2: arith.Exp(g.Beta(), k, g.P()),
		},
	}
}

// Commitment returns the values to send to the verifier.
func (r *Randomness) Commitment() *Commitment {
	return &Commitment{R1: r.commitment.R1, R2: r.commitment.R2}
}

// Respond computes s = k - c⋅x (mod q) for the verifier's challenge c.
func (r *Randomness) Respond(g *group.Parameters, c, x *saferith.Nat) *saferith.Nat {
	return Solve(r.k, c, x, g.Q())
}

// PublicKey returns the registration commitments y₁ = αˣ and y₂ = βˣ.
func PublicKey(g *group.Parameters, x *saferith.Nat) (y1, y2 *saferith.Nat) {
	return arith.Exp(g.Alpha(), x, g.P()), arith.Exp(g.Beta(), x, g.P())
}

// Challenge samples a uniform c ∈ ℤq.
func Challenge(rand io.Reader, g *group.Parameters) *saferith.Nat {
	return sample.ModN(rand, g.Q())
}

// Solve returns s = (k - c⋅x) mod q.
//
// The subtraction happens on residues mod q, so that when c⋅x > k the result is
// q - ((c⋅x - k) mod q), brought back into [0, q), rather than a negative number.
func Solve(k, c, x *saferith.Nat, q *saferith.Modulus) *saferith.Nat {
	kModQ := new(saferith.Nat).Mod(k, q)
	cx := new(saferith.Nat).ModMul(c, x, q)
	return new(saferith.Nat).ModSub(kModQ, cx, q)
}

// Verify returns true iff r₁ = αˢ⋅y₁ᶜ (mod p) and r₂ = βˢ⋅y₂ᶜ (mod p).
//
// r₁, r₂, y₁, y₂ must be non-zero and reduced mod p, otherwise the proof is rejected.
// Both equations are always evaluated, and the result does not say which one failed.
func Verify(g *group.Parameters, r1, r2, y1, y2, c, s *saferith.Nat) bool {
	if g == nil || c == nil || s == nil {
		return false
	}
	if !arith.IsUnitModN(g.P(), r1, r2, y1, y2) {
		return false
	}

	lhs1 := arith.MulExp(g.Alpha(), s, y1, c, g.P()) // αˢ⋅y₁ᶜ (mod p)
	lhs2 := arith.MulExp(g.Beta(), s, y2, c, g.P())  // βˢ⋅y₂ᶜ (mod p)

	return lhs1.Eq(r1)&lhs2.Eq(r2) == 1
}
