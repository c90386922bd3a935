package storage_test

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/zkauth/internal/storage"
	"github.com/taurusgroup/zkauth/internal/test"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/session"
)

func open(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.Open(storage.DriverSqlite, filepath.Join(t.TempDir(), "zkauth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := open(t)
	g := group.Default()
	clock := test.NewClock()

	provers := map[string]*test.Prover{}
	for _, id := range test.Identities(3) {
		p := test.NewProver(rand.Reader, g, id)
		provers[id] = p
		require.NoError(t, repo.Save(ctx, session.User{Identity: id, Y1: p.Y1, Y2: p.Y2, RegisteredAt: clock.Now()}))
	}

	users, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "a", users[0].Identity)
	for _, u := range users {
		p := provers[u.Identity]
		assert.Equal(t, saferith.Choice(1), u.Y1.Eq(p.Y1))
		assert.Equal(t, saferith.Choice(1), u.Y2.Eq(p.Y2))
		assert.True(t, clock.Now().Equal(u.RegisteredAt))
	}
}

func TestRepository_Overwrite(t *testing.T) {
	ctx := context.Background()
	repo := open(t)

	require.NoError(t, repo.Save(ctx, session.User{Identity: "alice", Y1: new(saferith.Nat).SetUint64(2), Y2: new(saferith.Nat).SetUint64(3)}))
	require.NoError(t, repo.Save(ctx, session.User{Identity: "alice", Y1: new(saferith.Nat).SetUint64(4), Y2: new(saferith.Nat).SetUint64(5)}))

	users, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, uint64(4), users[0].Y1.Big().Uint64())
	assert.Equal(t, uint64(5), users[0].Y2.Big().Uint64())
}

func TestRepository_NilCommitment(t *testing.T) {
	ctx := context.Background()
	repo := open(t)
	require.NoError(t, repo.Save(ctx, session.User{Identity: "mallory"}))

	users, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, saferith.Choice(1), users[0].Y1.EqZero())
}

func TestOpen_Errors(t *testing.T) {
	_, err := storage.Open("mysql", "whatever")
	assert.Error(t, err)
	_, err = storage.Open(storage.DriverSqlite, "")
	assert.Error(t, err)
}
