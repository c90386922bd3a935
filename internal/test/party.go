package test

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/math/sample"
	zkcp "github.com/taurusgroup/zkauth/pkg/zk/cp"
)

// Identities returns n distinct identities represented as simple strings.
func Identities(n int) []string {
	baseString := ""
	ids := make([]string, n)
	for i := range ids {
		if i%26 == 0 && i > 0 {
			baseString += "a"
		}
		ids[i] = baseString + string('a'+rune(i%26))
	}
	return ids
}

// Prover is an honest prover holding a secret, for driving a verifier in tests.
type Prover struct {
	Group    *group.Parameters
	Identity string
	X        *saferith.Nat
	Y1, Y2   *saferith.Nat
}

// NewProver samples a random secret for identity.
func NewProver(rand io.Reader, g *group.Parameters, identity string) *Prover {
	x := sample.ModN(rand, g.Q())
	y1, y2 := zkcp.PublicKey(g, x)
	return &Prover{Group: g, Identity: identity, X: x, Y1: y1, Y2: y2}
}

// Commit samples fresh randomness, and returns its commitment along with a function
// answering a challenge with the prover's secret.
func (p *Prover) Commit(rand io.Reader) (r1, r2 *saferith.Nat, respond func(c *saferith.Nat) *saferith.Nat) {
	r := zkcp.NewRandomness(rand, p.Group)
	com := r.Commitment()
	return com.R1, com.R2, func(c *saferith.Nat) *saferith.Nat {
		return r.Respond(p.Group, c, p.X)
	}
}
