package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"hubgate/pkg/logging"
)

// PendingLogin is one login attempt in flight: issued when the gateway
// redirects a browser to the hub, consumed when the callback returns.
type PendingLogin struct {
	// State is the anti-forgery nonce riding the authorize redirect.
	State string
	// NextURL is where the user was headed before login interrupted them.
	NextURL   string
	CreatedAt time.Time
}

// PendingLoginStore tracks login attempts between the authorize redirect
// and the callback. Each state value is consumable exactly once; records
// that are never consumed expire and are swept by a background janitor.
type PendingLoginStore struct {
	mu      sync.RWMutex
	pending map[string]*PendingLogin

	ttl         time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewPendingLoginStore creates a store whose records expire after ttl
// (10 minutes if non-positive). Callers MUST call Stop() when done to halt
// the cleanup goroutine.
func NewPendingLoginStore(ttl time.Duration) *PendingLoginStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	ps := &PendingLoginStore{
		pending:     make(map[string]*PendingLogin),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	// Start background cleanup
	go ps.cleanupLoop()

	return ps
}

// Begin records a new login attempt and returns the state nonce to embed
// in the authorize redirect. The nonce is opaque: the record behind it
// carries everything the callback needs.
func (ps *PendingLoginStore) Begin(nextURL string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(nonce)

	ps.mu.Lock()
	ps.pending[state] = &PendingLogin{
		State:     state,
		NextURL:   nextURL,
		CreatedAt: time.Now(),
	}
	ps.mu.Unlock()

	logging.Debug("Auth", "Recorded pending login (next=%s)", nextURL)
	return state, nil
}

// Consume validates a state value arriving on a callback. On success the
// record is returned and deleted, so a state can authorize at most one
// callback. Unknown, empty and expired states return nil.
func (ps *PendingLoginStore) Consume(state string) *PendingLogin {
	if state == "" {
		return nil
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	record, exists := ps.pending[state]
	if !exists {
		return nil
	}

	// Consumed or expired either way: the record is single-use.
	delete(ps.pending, state)

	if time.Since(record.CreatedAt) > ps.ttl {
		logging.Warn("Auth", "Pending login expired (age=%v)", time.Since(record.CreatedAt))
		return nil
	}

	return record
}

// Len returns the number of login attempts currently in flight.
func (ps *PendingLoginStore) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.pending)
}

// Stop halts the background cleanup goroutine. Safe to call more than once.
func (ps *PendingLoginStore) Stop() {
	ps.stopOnce.Do(func() {
		close(ps.stopCleanup)
	})
}

// cleanupLoop periodically sweeps expired records.
func (ps *PendingLoginStore) cleanupLoop() {
	interval := ps.ttl / 10
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ps.cleanup()
		case <-ps.stopCleanup:
			return
		}
	}
}

// cleanup removes all expired records.
func (ps *PendingLoginStore) cleanup() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	count := 0
	for state, record := range ps.pending {
		if time.Since(record.CreatedAt) > ps.ttl {
			delete(ps.pending, state)
			count++
		}
	}

	if count > 0 {
		logging.Debug("Auth", "Cleaned up %d expired pending logins", count)
	}
}
