package wizard

import (
	"sync"
	"time"
)

// Store keeps one Session per session id. Sessions are created on first
// access with default state; reads and updates both return value copies so
// callers never hold a reference into the map.
type Store struct {
	mu sync.Mutex
	m  map[string]*Session
}

func NewStore() *Store {
	return &Store{m: make(map[string]*Session)}
}

func (s *Store) Get(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	sess.ClearExpiredInfo(time.Now())
	return *sess
}

func (s *Store) Update(id string, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	if fn != nil {
		fn(sess)
	}
	sess.ClearExpiredInfo(time.Now())
	sess.UpdatedAt = time.Now()
	return *sess
}

func (s *Store) Reset(id string) Session {
	return s.Update(id, func(sess *Session) {
		sess.ResetAll()
	})
}

// Delete removes a session entirely.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

// Len reports how many sessions are live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// PruneIdle drops sessions not touched within maxIdle and returns how many
// were removed.
func (s *Store) PruneIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	pruned := 0
	for id, sess := range s.m {
		if now.Sub(sess.UpdatedAt) > maxIdle {
			delete(s.m, id)
			pruned++
		}
	}
	return pruned
}

func (s *Store) getOrCreateLocked(id string) *Session {
	if sess, ok := s.m[id]; ok {
		return sess
	}
	sess := &Session{
		ID:             id,
		Form:           DefaultPayload(),
		CurrentStep:    1,
		MaxStepReached: 1,
		UpdatedAt:      time.Now(),
	}
	s.m[id] = sess
	return sess
}
