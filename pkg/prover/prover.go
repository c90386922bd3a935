// Package prover drives the client side of the authentication flow against any
// auth.Service.
package prover

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/zkauth/pkg/auth"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/math/sample"
	"github.com/taurusgroup/zkauth/pkg/session"
	zkcp "github.com/taurusgroup/zkauth/pkg/zk/cp"
	"golang.org/x/crypto/sha3"
)

const secretCustomization = "zkauth secret"

// SecretFromPassword derives x ∈ ℤq from an identity and a password.
//
// The derivation is deterministic, so the same password gives the same commitments
// at registration and at login. Binding the identity keeps two users with the
// same password from sharing commitments.
func SecretFromPassword(g *group.Parameters, identity string, password []byte) *saferith.Nat {
	h := sha3.NewCShake256(nil, []byte(secretCustomization))
	var l [8]byte
	binary.BigEndian.PutUint64(l[:], uint64(len(identity)))
	_, _ = h.Write(l[:])
	_, _ = h.Write([]byte(identity))
	_, _ = h.Write(password)
	return sample.ModN(h, g.Q())
}

// SecretFromBytes interprets the password itself as a big-endian number.
// This is how the first clients derived their secret; prefer SecretFromPassword.
func SecretFromBytes(password []byte) *saferith.Nat {
	return new(saferith.Nat).SetBytes(password)
}

// Prover holds a secret x for one identity. It is not safe for concurrent use.
type Prover struct {
	group    *group.Parameters
	identity string
	x        *saferith.Nat
	rand     io.Reader
	state    auth.State
}

// New returns a Prover for identity with secret x.
func New(g *group.Parameters, identity string, x *saferith.Nat) *Prover {
	return &Prover{
		group:    g,
		identity: identity,
		x:        x,
		rand:     rand.Reader,
		state:    auth.StateUnregistered,
	}
}

// WithRand replaces the source used for the ephemeral secret k.
func (p *Prover) WithRand(r io.Reader) *Prover {
	p.rand = r
	return p
}

// Identity returns the identity the prover authenticates as.
func (p *Prover) Identity() string { return p.identity }

// State returns where the prover stands in the flow.
func (p *Prover) State() auth.State { return p.state }

// Register sends the commitments y₁ = αˣ, y₂ = βˣ. The secret never leaves the prover.
func (p *Prover) Register(ctx context.Context, svc auth.Service) error {
	y1, y2 := zkcp.PublicKey(p.group, p.x)
	_, err := svc.Register(ctx, &auth.RegisterRequest{
		Identity: p.identity,
		Y1:       y1.Big().Bytes(),
		Y2:       y2.Big().Bytes(),
	})
	if err != nil {
		return fmt.Errorf("prover: register: %w", err)
	}
	p.state = auth.StateRegistered
	return nil
}

// Login runs the commitment, challenge and response steps, and returns the session token.
//
// A prover that registered through another channel may call Login directly.
func (p *Prover) Login(ctx context.Context, svc auth.Service) (string, error) {
	r := zkcp.NewRandomness(p.rand, p.group)
	com := r.Commitment()

	challenge, err := svc.BeginChallenge(ctx, &auth.ChallengeRequest{
		Identity: p.identity,
		R1:       com.R1.Big().Bytes(),
		R2:       com.R2.Big().Bytes(),
	})
	if err != nil {
		return "", fmt.Errorf("prover: challenge: %w", err)
	}
	p.state = auth.StateChallengeIssued

	c := new(saferith.Nat).SetBytes(challenge.C)
	s := r.Respond(p.group, c, p.x)

	resp, err := svc.VerifyResponse(ctx, &auth.VerifyRequest{
		AttemptID: challenge.AttemptID,
		S:         s.Big().Bytes(),
	})
	if err != nil {
		if errors.Is(err, session.ErrRejected) {
			p.state = auth.StateRejected
		}
		return "", fmt.Errorf("prover: verify: %w", err)
	}
	if resp.SessionToken == "" {
		return "", errors.New("prover: verify: empty session token")
	}
	p.state = auth.StateVerified
	return resp.SessionToken, nil
}
