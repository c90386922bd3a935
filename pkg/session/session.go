// Package session holds the verifier's state: registered users, and the
// authentication attempts in flight.
//
// A single mutex guards both the user map and the attempt map, so no operation
// ever has to order two locks. The proof check and token issuance run outside
// the lock.
package session

import (
	"crypto/rand"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/math/sample"
	"github.com/taurusgroup/zkauth/pkg/pool"
	zkcp "github.com/taurusgroup/zkauth/pkg/zk/cp"
)

const (
	// DefaultAttemptTTL is how long a challenge can be answered.
	DefaultAttemptTTL = 2 * time.Minute
	// DefaultIDLength is the length of attempt ids.
	DefaultIDLength = 16
	// DefaultTokenLength is the length of tokens created by the default Issuer.
	DefaultTokenLength = 32
)

// User is a registered identity, with its commitments y₁ = αˣ and y₂ = βˣ.
type User struct {
	Identity     string
	Y1, Y2       *saferith.Nat
	RegisteredAt time.Time
}

// Attempt is an outstanding challenge.
// The ephemeral commitments and the challenge live here rather than on the User,
// so that concurrent logins of the same identity do not overwrite each other.
type Attempt struct {
	ID        string
	Identity  string
	R1, R2    *saferith.Nat
	C         *saferith.Nat
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (a *Attempt) expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.After(a.ExpiresAt)
}

// Store is safe for concurrent use.
type Store struct {
	group    *group.Parameters
	rand     io.Reader
	now      func() time.Time
	ttl      time.Duration
	idLength int
	issuer   Issuer

	mtx      sync.Mutex
	users    map[string]*User
	attempts map[string]*Attempt
}

// Option configures a Store.
type Option func(*Store)

// WithRand sets the randomness source for challenges and ids. Defaults to crypto/rand.
// The reader is wrapped so that it may be shared between concurrent calls.
func WithRand(r io.Reader) Option {
	return func(s *Store) { s.rand = pool.NewLockedReader(r) }
}

// WithClock sets the time source used for attempt expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithAttemptTTL sets how long a challenge stays valid. A zero TTL disables expiry.
func WithAttemptTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithIDLength sets the length of attempt ids. It must be at least sample.MinTokenLength.
func WithIDLength(n int) Option {
	return func(s *Store) { s.idLength = n }
}

// WithIssuer sets how session tokens are created.
func WithIssuer(issuer Issuer) Option {
	return func(s *Store) { s.issuer = issuer }
}

// NewStore returns an empty Store for the given group.
func NewStore(g *group.Parameters, opts ...Option) *Store {
	s := &Store{
		group:    g,
		rand:     rand.Reader,
		now:      time.Now,
		ttl:      DefaultAttemptTTL,
		idLength: DefaultIDLength,
		users:    make(map[string]*User),
		attempts: make(map[string]*Attempt),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.issuer == nil {
		s.issuer = RandomIssuer(s.rand, DefaultTokenLength)
	}
	return s
}

// Group returns the parameters the Store verifies against.
func (s *Store) Group() *group.Parameters {
	return s.group
}

// Register inserts or replaces the commitments of identity.
// Attempts already issued for identity are verified against the new commitments.
func (s *Store) Register(identity string, y1, y2 *saferith.Nat) {
	s.Put(User{
		Identity:     identity,
		Y1:           y1,
		Y2:           y2,
		RegisteredAt: s.now(),
	})
}

// Put inserts or replaces a record as is, keeping its registration time.
func (s *Store) Put(u User) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.users[u.Identity] = &u
}

// Now returns the current time of the Store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// BeginChallenge records the ephemeral commitments r₁, r₂ of identity, and returns
// a fresh attempt id together with a random challenge c ∈ ℤq.
//
// It fails with ErrNotFound if identity never registered.
func (s *Store) BeginChallenge(identity string, r1, r2 *saferith.Nat) (string, *saferith.Nat, error) {
	c := zkcp.Challenge(s.rand, s.group)
	now := s.now()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[identity]; !ok {
		return "", nil, notFound("begin challenge", identity)
	}

	id := sample.Token(s.rand, s.idLength)
	for s.attempts[id] != nil {
		id = sample.Token(s.rand, s.idLength)
	}
	s.attempts[id] = &Attempt{
		ID:        id,
		Identity:  identity,
		R1:        r1,
		R2:        r2,
		C:         c,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	return id, c, nil
}

// VerifyResponse checks the response s for the attempt, and returns a session token
// if the proof holds.
//
// The attempt is consumed whatever the outcome: a second call with the same id
// fails with ErrNotFound, as does a call after the attempt expired.
// A failed proof returns ErrRejected.
func (s *Store) VerifyResponse(attemptID string, resp *saferith.Nat) (string, error) {
	const op = "verify response"

	attempt, user, err := s.consume(op, attemptID)
	if err != nil {
		return "", err
	}

	if !zkcp.Verify(s.group, attempt.R1, attempt.R2, user.Y1, user.Y2, attempt.C, resp) {
		return "", &Error{Op: op, ID: attemptID, Err: ErrRejected}
	}

	token, err := s.issuer.Issue(user.Identity)
	if err != nil {
		return "", &Error{Op: op, ID: attemptID, Err: err}
	}
	return token, nil
}

// consume removes the attempt from the store and returns it with a copy of its user.
func (s *Store) consume(op, attemptID string) (*Attempt, User, error) {
	now := s.now()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok {
		return nil, User{}, notFound(op, attemptID)
	}
	delete(s.attempts, attemptID)
	if attempt.expired(now, s.ttl) {
		return nil, User{}, notFound(op, attemptID)
	}

	user, ok := s.users[attempt.Identity]
	if !ok {
		return nil, User{}, notFound(op, attemptID)
	}
	return attempt, *user, nil
}

// Sweep removes expired attempts, and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	removed := 0
	for id, a := range s.attempts {
		if a.expired(now, s.ttl) {
			delete(s.attempts, id)
			removed++
		}
	}
	return removed
}

// User returns a copy of the record for identity.
func (s *Store) User(identity string) (User, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	u, ok := s.users[identity]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// Users returns a copy of every record, sorted by identity.
func (s *Store) Users() []User {
	s.mtx.Lock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	s.mtx.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}

// Len returns the number of registered users and of outstanding attempts.
func (s *Store) Len() (users, attempts int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.users), len(s.attempts)
}
