package session

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const loopBuffer = 32

// Session is one visitor.
type Session struct {
	ID string

	loop     *Loop
	state    *State
	lastSeen time.Time // guarded by Store.mu
}

// Do runs fn against the session state on the session loop and returns its error.
func (s *Session) Do(fn func(*State) error) error {
	var err error
	if lerr := s.loop.Do(func() { err = fn(s.state) }); lerr != nil {
		return lerr
	}
	return err
}

// Post queues fn against the session state without waiting.
func (s *Session) Post(fn func(*State)) bool {
	return s.loop.Post(func() { fn(s.state) })
}

// Close stops the session loop. Later calls to Do fail with ErrClosed.
func (s *Session) Close() { s.loop.Close() }

// New starts a session outside any Store.
func New(deps Deps) *Session {
	loop := NewLoop(loopBuffer)
	s := &Session{
		ID:   uuid.NewString(),
		loop: loop,
	}
	s.state = newState(deps, func(fn func()) { loop.Post(fn) })
	return s
}

// Store keeps live sessions and evicts idle ones.
type Store struct {
	deps        Deps
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty store. Sessions idle for ttl are evicted by
// Sweep; maxSessions <= 0 means no cap.
func NewStore(deps Deps, ttl time.Duration, maxSessions int) *Store {
	return &Store{
		deps:        deps,
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         deps.now,
		sessions:    make(map[string]*Session),
	}
}

// Get returns a live session and marks it seen.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.lastSeen = st.now()
	}
	return s, ok
}

// Create starts a new session with default state.
func (st *Store) Create() *Session {
	s := New(st.deps)

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		st.evictOldestLocked(len(st.sessions) - st.maxSessions + 1)
	}
	s.lastSeen = st.now()
	st.sessions[s.ID] = s
	return s
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}
	return st.Create(), true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle longer than the ttl and returns how many.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.lastSeen.Before(cutoff) {
			s.Close()
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *Store) evictOldestLocked(n int) {
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].lastSeen.Before(all[j].lastSeen) })
	for _, s := range all[:n] {
		s.Close()
		delete(st.sessions, s.ID)
	}
}

// Run sweeps every interval until ctx ends.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				log.Printf("session: evicted %d idle sessions", n)
			}
		}
	}
}

// Close stops every session loop.
func (st *Store) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.Close()
		delete(st.sessions, id)
	}
}
