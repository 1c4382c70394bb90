package session

import (
	"sync"
	"time"
)

// Store is the process-local registry of authenticated sessions: an
// in-memory map from opaque token to UserSession behind a single lock.
//
// Concurrency contract:
//   - Mutations (Put, Touch, Update, Remove) are mutually exclusive with
//     each other and with Snapshot.
//   - Get may run concurrently with other Gets.
//   - No I/O of any kind happens while the lock is held; hub calls always
//     work on copies obtained from Get or Snapshot.
//
// There is no persistence and no TTL eviction: sessions end with the
// process or an explicit Remove (logout). The store runs no background
// goroutines, so it needs no shutdown.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]UserSession // token -> session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]UserSession),
	}
}

// Put inserts the session under its token, replacing any previous entry.
// It never fails; capacity is bounded by the number of real users the hub
// routes here.
func (s *Store) Put(sess UserSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
}

// Get looks up a session by token. Unknown, empty and malformed tokens are
// all simply absent. The returned value is a copy; mutating it does not
// affect the store.
func (s *Store) Get(token string) (UserSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	return sess, ok
}

// Touch updates the session's last-activity timestamp if it exists and
// reports whether it did. Touch never creates an entry.
func (s *Store) Touch(token string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return false
	}
	sess.LastActivityAt = now
	s.sessions[token] = sess
	return true
}

// Update applies fn to the session under the lock if it exists and reports
// whether it did. fn receives the stored value and must not block or call
// back into the store.
func (s *Store) Update(token string, fn func(*UserSession)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return false
	}
	fn(&sess)
	// The token is the map key; a mutation must not detach the entry.
	sess.Token = token
	s.sessions[token] = sess
	return true
}

// Remove deletes the session if present. Removing an absent token is a
// no-op, so logout and eviction paths need no existence check.
func (s *Store) Remove(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Snapshot returns a consistent point-in-time copy of all sessions for
// iteration outside the lock. Later store mutations do not alter the
// returned slice.
func (s *Store) Snapshot() []UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UserSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// Len returns the current number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
