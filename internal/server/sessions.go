package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/interact"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = eris.New("server: session not found")

// ErrSessionLimit is returned when the store already holds its maximum
// number of live sessions.
var ErrSessionLimit = eris.New("server: session limit reached")

// Session is one viewer's interaction state.
type Session struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`

	mu     sync.Mutex
	binder *interact.Binder
}

// Sessions stores sessions in a TTL cache. Each access extends the TTL.
type Sessions struct {
	atlas *choropleth.Atlas
	ttl   time.Duration
	max   int
	store *gocache.Cache

	createMu sync.Mutex
}

// NewSessions creates a session store whose entries expire after ttl
// without activity. maxSessions caps live sessions; 0 means no cap.
func NewSessions(a *choropleth.Atlas, ttl time.Duration, maxSessions int) *Sessions {
	return &Sessions{
		atlas: a,
		ttl:   ttl,
		max:   max(maxSessions, 0),
		store: gocache.New(ttl, ttl/2),
	}
}

// Create binds a fresh set of shapes for a new viewer.
func (s *Sessions) Create() (*Session, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	if s.max > 0 && s.Len() >= s.max {
		s.store.DeleteExpired()
		if s.Len() >= s.max {
			return nil, eris.Wrapf(ErrSessionLimit, "max %d", s.max)
		}
	}

	sess := &Session{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		binder:  interact.Bind(s.atlas, interact.NewSets(s.atlas)),
	}
	s.store.Set(sess.ID, sess, gocache.DefaultExpiration)
	return sess, nil
}

// Get returns a live session and extends its TTL.
func (s *Sessions) Get(id string) (*Session, bool) {
	v, ok := s.store.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*Session)
	s.store.Set(id, sess, gocache.DefaultExpiration)
	return sess, true
}

// Dispatch runs an event against a session's binder.
func (s *Sessions) Dispatch(id string, ev interact.Event) (interact.Outcome, error) {
	sess, ok := s.Get(id)
	if !ok {
		return interact.Outcome{}, eris.Wrapf(ErrSessionNotFound, "id %s", id)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.binder.Dispatch(ev)
}

// Delete ends a session.
func (s *Sessions) Delete(id string) bool {
	if _, ok := s.store.Get(id); !ok {
		return false
	}
	s.store.Delete(id)
	return true
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.store.ItemCount()
}

// Max is the live session cap, 0 when uncapped.
func (s *Sessions) Max() int {
	return s.max
}

// TTL is the idle expiry.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}
