package session

import (
	"sync"
)

// Store is an in-memory session registry, safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session with the given ID. Expired sessions are removed
// and reported as ErrExpired.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		s.Delete(id)
		return nil, ErrExpired
	}
	return sess, nil
}

// Set stores a session under its ID.
func (s *Store) Set(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Delete removes a session. Missing IDs are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Each calls fn for every live session opened from source. An empty source
// matches every session.
func (s *Store) Each(source string, fn func(*Session)) {
	s.mu.RLock()
	matched := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if source == "" || sess.Source == source {
			matched = append(matched, sess)
		}
	}
	s.mu.RUnlock()

	for _, sess := range matched {
		if !sess.IsExpired() {
			fn(sess)
		}
	}
}

// Cleanup removes expired sessions and returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
