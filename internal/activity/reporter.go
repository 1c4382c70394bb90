package activity

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hubgate/internal/auth"
	"hubgate/internal/hub"
	"hubgate/internal/session"
	"hubgate/pkg/logging"
)

// reportConcurrency bounds the fan-out of one reporting cycle so a large
// session table cannot flood the hub.
const reportConcurrency = 8

// ActivityPoster is the slice of the hub API the reporter needs.
type ActivityPoster interface {
	ReportActivity(ctx context.Context, accessToken hub.RedactedToken, serverName string, when time.Time) error
}

// Reporter tells the hub that users are active so it does not cull their
// servers as idle. It runs two paths over the same wire call: a periodic
// sweep over every live session, and request-driven signals fired as
// sessions resolve.
//
// Reporting is strictly best effort. A failed post is logged and counted,
// nothing more: the session stays, the loop keeps its cadence, and no
// failure ever propagates to request handling.
type Reporter struct {
	store      *session.Store
	hub        ActivityPoster
	metrics    *auth.Metrics
	serverName string
	interval   time.Duration
	timeout    time.Duration

	// signalMinGap throttles request-driven signals per session token.
	signalMinGap time.Duration

	mu           sync.Mutex
	lastReported map[string]time.Time
	started      bool

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewReporter creates a reporter over the given store. interval is the
// sweep cadence (5 minutes if non-positive), timeout bounds each hub call
// (10 seconds if non-positive).
func NewReporter(store *session.Store, poster ActivityPoster, metrics *auth.Metrics, serverName string, interval, timeout time.Duration) *Reporter {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	signalMinGap := interval / 5
	if signalMinGap < 10*time.Second {
		signalMinGap = 10 * time.Second
	}

	return &Reporter{
		store:        store,
		hub:          poster,
		metrics:      metrics,
		serverName:   serverName,
		interval:     interval,
		timeout:      timeout,
		signalMinGap: signalMinGap,
		lastReported: make(map[string]time.Time),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start spawns the periodic reporting loop. Calling Start more than once
// has no effect.
func (r *Reporter) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go r.loop()
	logging.Info("Activity", "Activity reporter started (server=%q, interval=%v)", r.serverName, r.interval)
}

// Stop halts the loop and waits for the cycle in flight, if any, to
// finish. Safe to call more than once, and without a prior Start.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		<-r.doneCh
	}
}

func (r *Reporter) loop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.ReportOnce(context.Background())
		case <-r.stopCh:
			return
		}
	}
}

// ReportOnce runs a single reporting cycle: snapshot the store, then post
// each session's last activity. Posts run concurrently but bounded, and a
// failing session never stops the others.
func (r *Reporter) ReportOnce(ctx context.Context) {
	sessions := r.store.Snapshot()
	if len(sessions) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(reportConcurrency)
	for _, sess := range sessions {
		g.Go(func() error {
			r.report(ctx, sess)
			return nil
		})
	}
	_ = g.Wait()

	r.pruneThrottle(sessions)
	logging.Debug("Activity", "Reported activity for %d sessions", len(sessions))
}

// SignalAsync posts one session's activity in the background. Signals for
// a session already reported within the throttle window are dropped; the
// caller never waits and never learns the outcome.
func (r *Reporter) SignalAsync(sess session.UserSession) {
	if !r.claimSignal(sess.Token) {
		return
	}

	go r.report(context.Background(), sess)
}

// report posts one session's activity, bounded by the reporter's timeout,
// and records the outcome.
func (r *Reporter) report(ctx context.Context, sess session.UserSession) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.hub.ReportActivity(ctx, sess.AccessToken, r.serverName, sess.LastActivityAt)
	if err != nil {
		r.metrics.RecordActivityReport(false)
		logging.Warn("Activity", "Failed to report activity for session %s: %v", sess.ID, err)
		return
	}

	r.metrics.RecordActivityReport(true)
	r.markReported(sess.Token)
}

// claimSignal reserves the throttle slot for a token. The slot is taken
// up front so concurrent signals for the same session collapse into one
// post.
func (r *Reporter) claimSignal(token string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if last, ok := r.lastReported[token]; ok && now.Sub(last) < r.signalMinGap {
		return false
	}
	r.lastReported[token] = now
	return true
}

func (r *Reporter) markReported(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastReported[token] = time.Now()
}

// pruneThrottle drops throttle entries for sessions no longer in the
// store, keyed off the cycle's snapshot.
func (r *Reporter) pruneThrottle(sessions []session.UserSession) {
	live := make(map[string]bool, len(sessions))
	for _, sess := range sessions {
		live[sess.Token] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for token := range r.lastReported {
		if !live[token] {
			delete(r.lastReported, token)
		}
	}
}
