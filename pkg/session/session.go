// Package session keeps interactive view sessions for the HTTP adapter.
//
// A session owns one [view.Coordinator]. Coordinators are single-owner, so
// every access goes through [Session.Do], which serializes callers on the
// session's mutex. Different sessions never share state and may be driven
// concurrently.
//
// Sessions expire after a period of inactivity; each Do extends the
// deadline. [Store.Cleanup] removes expired sessions and is meant to be
// called periodically.
//
//	store := session.NewStore()
//	sess := session.New(coordinator, "architecture.yaml", session.DefaultTTL)
//	store.Set(sess)
//
//	snap := sess.Do(func(c *view.Coordinator) *view.Snapshot {
//	    return c.SelectNode("api")
//	})
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/graphilizer/pkg/view"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its idle TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the idle time after which a session expires.
const DefaultTTL = 30 * time.Minute

// Session is one client's view state.
type Session struct {
	ID        string
	Source    string
	CreatedAt time.Time

	mu        sync.Mutex
	ttl       time.Duration
	expiresAt time.Time
	view      *view.Coordinator
}

// New creates a session around c. Source names the graph file the session
// was opened from; it is empty for uploaded documents.
func New(c *view.Coordinator, source string, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: now,
		ttl:       ttl,
		expiresAt: now.Add(ttl),
		view:      c,
	}
}

// Do runs fn with exclusive access to the coordinator and extends the
// session's deadline.
func (s *Session) Do(fn func(c *view.Coordinator) *view.Snapshot) *view.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(s.ttl)
	return fn(s.view)
}

// IsExpired reports whether the session has been idle longer than its TTL.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.expiresAt)
}

// ExpiresAt returns the current deadline.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}
