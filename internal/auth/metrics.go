package auth

import (
	"sync"
	"time"

	"hubgate/pkg/logging"
)

// FailureKind buckets login failures for counting and logging.
type FailureKind string

const (
	// KindCsrfRejected: the callback's state did not match a pending login.
	KindCsrfRejected FailureKind = "csrf_rejected"
	// KindUpstreamRejected: the hub refused the code or token.
	KindUpstreamRejected FailureKind = "upstream_rejected"
	// KindUpstreamUnavailable: the hub could not be reached.
	KindUpstreamUnavailable FailureKind = "upstream_unavailable"
	// KindMalformedResponse: the hub answered with an unusable payload.
	KindMalformedResponse FailureKind = "malformed_response"
	// KindInternal: a gateway-side failure (e.g. token generation).
	KindInternal FailureKind = "internal"
)

// Metrics tracks authentication activity for monitoring and debugging.
//
// Counters are process-local and reset on restart, like every other piece
// of gateway state. The gateway serves a JSON summary on its status
// endpoint; there is no external metrics pipeline.
type Metrics struct {
	mu sync.RWMutex

	resolvedRequests int64
	unknownCookies   int64
	loginRedirects   int64
	loginSuccesses   int64
	loginFailures    map[FailureKind]int64
	logouts          int64

	activitySuccesses int64
	activityFailures  int64

	lastLoginAt   time.Time
	lastFailureAt time.Time
}

// NewMetrics creates a zeroed Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		loginFailures: make(map[FailureKind]int64),
	}
}

// RecordResolved counts a request authenticated by an existing session.
func (m *Metrics) RecordResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvedRequests++
}

// RecordUnknownCookie counts a cookie that resolved to no session
// (process restart, logout elsewhere, or forgery).
func (m *Metrics) RecordUnknownCookie() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unknownCookies++
}

// RecordLoginRedirect counts a login flow being started.
func (m *Metrics) RecordLoginRedirect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginRedirects++
}

// RecordLoginSuccess counts a completed code exchange.
func (m *Metrics) RecordLoginSuccess(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginSuccesses++
	m.lastLoginAt = time.Now()

	logging.Info("AuthMetrics", "Login success for user %s (successes: %d)", username, m.loginSuccesses)
}

// RecordLoginFailure counts a failed login attempt by kind.
func (m *Metrics) RecordLoginFailure(kind FailureKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginFailures[kind]++
	m.lastFailureAt = time.Now()

	logging.Warn("AuthMetrics", "Login failure (%s, total for kind: %d)", kind, m.loginFailures[kind])
}

// RecordLogout counts an explicit logout.
func (m *Metrics) RecordLogout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logouts++
}

// RecordActivityReport counts one activity post, by outcome.
func (m *Metrics) RecordActivityReport(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.activitySuccesses++
	} else {
		m.activityFailures++
	}
}

// MetricsSummary is a read-only snapshot of the counters, shaped for the
// status endpoint.
type MetricsSummary struct {
	ResolvedRequests  int64                 `json:"resolved_requests"`
	UnknownCookies    int64                 `json:"unknown_cookies"`
	LoginRedirects    int64                 `json:"login_redirects"`
	LoginSuccesses    int64                 `json:"login_successes"`
	LoginFailures     map[FailureKind]int64 `json:"login_failures"`
	Logouts           int64                 `json:"logouts"`
	ActivitySuccesses int64                 `json:"activity_successes"`
	ActivityFailures  int64                 `json:"activity_failures"`
	LastLoginAt       time.Time             `json:"last_login_at,omitempty"`
	LastFailureAt     time.Time             `json:"last_failure_at,omitempty"`
}

// Summary returns a consistent snapshot of all counters.
func (m *Metrics) Summary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	failures := make(map[FailureKind]int64, len(m.loginFailures))
	for kind, count := range m.loginFailures {
		failures[kind] = count
	}

	return MetricsSummary{
		ResolvedRequests:  m.resolvedRequests,
		UnknownCookies:    m.unknownCookies,
		LoginRedirects:    m.loginRedirects,
		LoginSuccesses:    m.loginSuccesses,
		LoginFailures:     failures,
		Logouts:           m.logouts,
		ActivitySuccesses: m.activitySuccesses,
		ActivityFailures:  m.activityFailures,
		LastLoginAt:       m.lastLoginAt,
		LastFailureAt:     m.lastFailureAt,
	}
}
