// Package auth is the verifier side of the authentication flow. It turns byte
// payloads into group elements, drives a session.Store, and persists registrations.
package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apex/log"
	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/session"
)

// Service is the request/response interface between a prover and a verifier.
// Verifier implements it in process, and client.Client over HTTP.
type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	BeginChallenge(ctx context.Context, req *ChallengeRequest) (*ChallengeResponse, error)
	VerifyResponse(ctx context.Context, req *VerifyRequest) (*VerifyResponse, error)
}

// Repository stores registered commitments across restarts.
type Repository interface {
	Save(ctx context.Context, user session.User) error
	Load(ctx context.Context) ([]session.User, error)
}

// Verifier implements Service on top of a session.Store.
type Verifier struct {
	store *session.Store
	repo  Repository
	log   log.Interface

	// held across Save and Put, so the repository and the store agree on the last registration
	registerMtx sync.Mutex
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithRepository persists every registration to repo.
func WithRepository(repo Repository) VerifierOption {
	return func(v *Verifier) { v.repo = repo }
}

// WithLogger sets the logger. Defaults to the apex/log package logger.
func WithLogger(l log.Interface) VerifierOption {
	return func(v *Verifier) { v.log = l }
}

// NewVerifier returns a Verifier driving store.
func NewVerifier(store *session.Store, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		store: store,
		log:   log.Log,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Group returns the parameters proofs are verified against.
func (v *Verifier) Group() *group.Parameters {
	return v.store.Group()
}

// Store returns the underlying session.Store.
func (v *Verifier) Store() *session.Store {
	return v.store
}

// Restore loads every persisted registration into the store, and returns how many were loaded.
func (v *Verifier) Restore(ctx context.Context) (int, error) {
	if v.repo == nil {
		return 0, nil
	}
	users, err := v.repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("auth: restore: %w", err)
	}
	for _, u := range users {
		v.store.Put(u)
	}
	v.log.WithField("users", len(users)).Info("restored registrations")
	return len(users), nil
}

// Register implements Service. It never fails unless persisting the record does,
// in which case the previous registration of the identity, if any, stays in place.
func (v *Verifier) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}
	y1 := v.decode(req.Y1)
	y2 := v.decode(req.Y2)
	ctxLog := v.log.WithField("identity", req.Identity)
	if y1 == nil || y2 == nil {
		// accepted, but no proof will ever verify against it
		ctxLog.Warn("commitments out of range")
	}

	u := session.User{
		Identity:     req.Identity,
		Y1:           y1,
		Y2:           y2,
		RegisteredAt: v.store.Now(),
	}
	v.registerMtx.Lock()
	defer v.registerMtx.Unlock()
	if v.repo != nil {
		if err := v.repo.Save(ctx, u); err != nil {
			return nil, fmt.Errorf("auth: register %q: %w", req.Identity, err)
		}
	}
	v.store.Put(u)
	ctxLog.WithField("state", StateRegistered).Info("registered")
	return &RegisterResponse{}, nil
}

// BeginChallenge implements Service.
// It fails with session.ErrNotFound for an identity that never registered.
func (v *Verifier) BeginChallenge(_ context.Context, req *ChallengeRequest) (*ChallengeResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}
	id, c, err := v.store.BeginChallenge(req.Identity, v.decode(req.R1), v.decode(req.R2))
	if err != nil {
		v.log.WithError(err).WithField("identity", req.Identity).Warn("challenge refused")
		return nil, err
	}
	v.log.WithFields(log.Fields{
		"identity": req.Identity,
		"attempt":  id,
		"state":    StateChallengeIssued,
	}).Info("challenge issued")
	return &ChallengeResponse{AttemptID: id, C: encode(c)}, nil
}

// VerifyResponse implements Service.
// It fails with session.ErrNotFound for an unknown, used or expired attempt,
// and with session.ErrRejected when the proof does not hold.
func (v *Verifier) VerifyResponse(_ context.Context, req *VerifyRequest) (*VerifyResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}
	ctxLog := v.log.WithField("attempt", req.AttemptID)
	token, err := v.store.VerifyResponse(req.AttemptID, v.decode(req.S))
	switch {
	case errors.Is(err, session.ErrRejected):
		ctxLog.WithField("state", StateRejected).Warn("proof rejected")
		return nil, err
	case err != nil:
		ctxLog.WithError(err).Warn("verification failed")
		return nil, err
	}
	ctxLog.WithField("state", StateVerified).Info("session issued")
	return &VerifyResponse{SessionToken: token}, nil
}

var errNilRequest = errors.New("auth: nil request")

// decode reads a big-endian number, and returns nil when it cannot be an element
// of ℤₚ. A nil value makes every later proof check fail.
func (v *Verifier) decode(b []byte) *saferith.Nat {
	b = bytes.TrimLeft(b, "\x00")
	if len(b) > (v.store.Group().P().BitLen()+7)/8 {
		return nil
	}
	return new(saferith.Nat).SetBytes(b)
}

// encode returns the minimal big-endian encoding of x.
func encode(x *saferith.Nat) []byte {
	return x.Big().Bytes()
}

// Parameters returns the group of v in wire form.
func (v *Verifier) Parameters() *ParametersResponse {
	g := v.store.Group()
	return &ParametersResponse{
		P:     g.P().Big().Bytes(),
		Q:     g.Q().Big().Bytes(),
		Alpha: encode(g.Alpha()),
		Beta:  encode(g.Beta()),
	}
}

// ParametersFromResponse decodes and validates published parameters.
func ParametersFromResponse(r *ParametersResponse) (*group.Parameters, error) {
	if r == nil {
		return nil, group.ErrNilFields
	}
	p, q := bytes.TrimLeft(r.P, "\x00"), bytes.TrimLeft(r.Q, "\x00")
	if len(p) == 0 || len(q) == 0 {
		return nil, group.ErrNilFields
	}
	g := group.New(
		saferith.ModulusFromBytes(p),
		saferith.ModulusFromBytes(q),
		new(saferith.Nat).SetBytes(r.Alpha),
		new(saferith.Nat).SetBytes(r.Beta),
	)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
