package auth_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/zkauth/internal/test"
	"github.com/taurusgroup/zkauth/pkg/auth"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/session"
)

type memoryRepo struct {
	mtx   sync.Mutex
	users map[string]session.User
	err   error
}

func (r *memoryRepo) Save(_ context.Context, u session.User) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.users == nil {
		r.users = make(map[string]session.User)
	}
	r.users[u.Identity] = u
	return nil
}

func (r *memoryRepo) Load(context.Context) ([]session.User, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]session.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func newVerifier(g *group.Parameters, opts ...auth.VerifierOption) (*auth.Verifier, *memory.Handler) {
	h := memory.New()
	l := &log.Logger{Handler: h, Level: log.DebugLevel}
	opts = append([]auth.VerifierOption{auth.WithLogger(l)}, opts...)
	return auth.NewVerifier(session.NewStore(g), opts...), h
}

func TestVerifier_Flow(t *testing.T) {
	ctx := context.Background()
	g := group.Default()
	v, logs := newVerifier(g)
	p := test.NewProver(rand.Reader, g, "alice")

	_, err := v.Register(ctx, &auth.RegisterRequest{Identity: "alice", Y1: p.Y1.Big().Bytes(), Y2: p.Y2.Big().Bytes()})
	require.NoError(t, err)

	r1, r2, respond := p.Commit(rand.Reader)
	ch, err := v.BeginChallenge(ctx, &auth.ChallengeRequest{Identity: "alice", R1: r1.Big().Bytes(), R2: r2.Big().Bytes()})
	require.NoError(t, err)
	require.NotEmpty(t, ch.AttemptID)

	c := decodeNat(ch.C)
	resp, err := v.VerifyResponse(ctx, &auth.VerifyRequest{AttemptID: ch.AttemptID, S: respond(c).Big().Bytes()})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionToken)

	var messages []string
	for _, e := range logs.Entries {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{"registered", "challenge issued", "session issued"}, messages)
	assert.Equal(t, auth.StateVerified, logs.Entries[2].Fields["state"])
}

func TestVerifier_Errors(t *testing.T) {
	ctx := context.Background()
	v, _ := newVerifier(group.Toy())

	_, err := v.BeginChallenge(ctx, &auth.ChallengeRequest{Identity: "bob", R1: []byte{8}, R2: []byte{4}})
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = v.VerifyResponse(ctx, &auth.VerifyRequest{AttemptID: "unknown", S: []byte{5}})
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = v.Register(ctx, nil)
	assert.Error(t, err)
	_, err = v.BeginChallenge(ctx, nil)
	assert.Error(t, err)
	_, err = v.VerifyResponse(ctx, nil)
	assert.Error(t, err)
}

func TestVerifier_FailsClosed(t *testing.T) {
	ctx := context.Background()
	g := group.Default()
	v, _ := newVerifier(g)
	p := test.NewProver(rand.Reader, g, "alice")
	_, err := v.Register(ctx, &auth.RegisterRequest{Identity: "alice", Y1: p.Y1.Big().Bytes(), Y2: p.Y2.Big().Bytes()})
	require.NoError(t, err)

	tests := []struct {
		name string
		s    func(valid []byte) []byte
	}{
		{"empty", func([]byte) []byte { return nil }},
		{"oversized", func([]byte) []byte { return bytes.Repeat([]byte{0xff}, 4096) }},
		{"garbage", func([]byte) []byte { return []byte("not a number") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r1, r2, respond := p.Commit(rand.Reader)
			ch, err := v.BeginChallenge(ctx, &auth.ChallengeRequest{Identity: "alice", R1: r1.Big().Bytes(), R2: r2.Big().Bytes()})
			require.NoError(t, err)
			valid := respond(decodeNat(ch.C)).Big().Bytes()
			_, err = v.VerifyResponse(ctx, &auth.VerifyRequest{AttemptID: ch.AttemptID, S: tt.s(valid)})
			assert.ErrorIs(t, err, session.ErrRejected)
		})
	}

	// oversized ephemeral commitments are accepted, then rejected at verification
	_, r2, respond := p.Commit(rand.Reader)
	ch, err := v.BeginChallenge(ctx, &auth.ChallengeRequest{Identity: "alice", R1: bytes.Repeat([]byte{1}, 200), R2: r2.Big().Bytes()})
	require.NoError(t, err)
	_, err = v.VerifyResponse(ctx, &auth.VerifyRequest{AttemptID: ch.AttemptID, S: respond(decodeNat(ch.C)).Big().Bytes()})
	assert.ErrorIs(t, err, session.ErrRejected)
}

func TestVerifier_Repository(t *testing.T) {
	ctx := context.Background()
	g := group.Default()
	repo := &memoryRepo{}
	v, _ := newVerifier(g, auth.WithRepository(repo))
	p := test.NewProver(rand.Reader, g, "alice")

	_, err := v.Register(ctx, &auth.RegisterRequest{Identity: "alice", Y1: p.Y1.Big().Bytes(), Y2: p.Y2.Big().Bytes()})
	require.NoError(t, err)
	require.Contains(t, repo.users, "alice")

	// a fresh verifier over the same repository knows alice
	restored, _ := newVerifier(g, auth.WithRepository(repo))
	n, err := restored.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// the persisted record is the live one, registration time included
	saved := repo.users["alice"]
	live, ok := restored.Store().User("alice")
	require.True(t, ok)
	assert.True(t, saved.RegisteredAt.Equal(live.RegisteredAt))
	assert.Equal(t, saferith.Choice(1), live.Y1.Eq(p.Y1))
	assert.Equal(t, saferith.Choice(1), saved.Y2.Eq(p.Y2))

	r1, r2, respond := p.Commit(rand.Reader)
	ch, err := restored.BeginChallenge(ctx, &auth.ChallengeRequest{Identity: "alice", R1: r1.Big().Bytes(), R2: r2.Big().Bytes()})
	require.NoError(t, err)
	_, err = restored.VerifyResponse(ctx, &auth.VerifyRequest{AttemptID: ch.AttemptID, S: respond(decodeNat(ch.C)).Big().Bytes()})
	assert.NoError(t, err)
}

func TestVerifier_ConcurrentReregister(t *testing.T) {
	ctx := context.Background()
	g := group.Toy()
	repo := &memoryRepo{}
	v, _ := newVerifier(g, auth.WithRepository(repo))

	err := test.Concurrently(10, func(i int) error {
		_, err := v.Register(ctx, &auth.RegisterRequest{Identity: "alice", Y1: []byte{byte(i + 1)}, Y2: []byte{3}})
		return err
	})
	require.NoError(t, err)

	live, ok := v.Store().User("alice")
	require.True(t, ok)
	assert.Equal(t, saferith.Choice(1), live.Y1.Eq(repo.users["alice"].Y1))
}

func TestVerifier_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repoErr := errors.New("disk full")
	v, _ := newVerifier(group.Toy(), auth.WithRepository(&memoryRepo{err: repoErr}))

	_, err := v.Register(ctx, &auth.RegisterRequest{Identity: "alice", Y1: []byte{2}, Y2: []byte{3}})
	assert.ErrorIs(t, err, repoErr)
	_, ok := v.Store().User("alice")
	assert.False(t, ok, "a registration that was not persisted must not be live")
	_, err = v.BeginChallenge(ctx, &auth.ChallengeRequest{Identity: "alice", R1: []byte{8}, R2: []byte{4}})
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = v.Restore(ctx)
	assert.ErrorIs(t, err, repoErr)

	noRepo, _ := newVerifier(group.Toy())
	n, err := noRepo.Restore(ctx)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestState(t *testing.T) {
	assert.Equal(t, "challenge issued", auth.StateChallengeIssued.String())
	assert.Equal(t, "unknown", auth.State(42).String())
	assert.True(t, auth.StateRejected.Terminal())
	assert.True(t, auth.StateVerified.Terminal())
	assert.False(t, auth.StateChallengeIssued.Terminal())
}

func TestParameters_RoundTrip(t *testing.T) {
	for _, g := range []*group.Parameters{group.Toy(), group.Default()} {
		v, _ := newVerifier(g)
		decoded, err := auth.ParametersFromResponse(v.Parameters())
		require.NoError(t, err)
		assert.True(t, g.Equal(decoded))
	}

	_, err := auth.ParametersFromResponse(&auth.ParametersResponse{P: []byte{0}, Q: []byte{11}})
	assert.ErrorIs(t, err, group.ErrNilFields)
	_, err = auth.ParametersFromResponse(&auth.ParametersResponse{P: []byte{23}, Q: []byte{11}, Alpha: []byte{4}, Beta: []byte{4}})
	assert.ErrorIs(t, err, group.ErrGeneratorsEqual)
}
