package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubgate/internal/auth"
	"hubgate/internal/hub"
	"hubgate/internal/session"
)

type postedReport struct {
	accessToken string
	serverName  string
	when        time.Time
}

// fakePoster records activity posts and can be told to fail for specific
// access tokens.
type fakePoster struct {
	mu     sync.Mutex
	calls  []postedReport
	errFor map[string]error
}

func (f *fakePoster) ReportActivity(ctx context.Context, accessToken hub.RedactedToken, serverName string, when time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, postedReport{accessToken.Value(), serverName, when})
	return f.errFor[accessToken.Value()]
}

func (f *fakePoster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePoster) snapshot() []postedReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postedReport(nil), f.calls...)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

type reporterFixture struct {
	store    *session.Store
	poster   *fakePoster
	metrics  *auth.Metrics
	reporter *Reporter
}

func newReporterFixture(t *testing.T, interval time.Duration) *reporterFixture {
	t.Helper()

	f := &reporterFixture{
		store:   session.NewStore(),
		poster:  &fakePoster{errFor: make(map[string]error)},
		metrics: auth.NewMetrics(),
	}
	f.reporter = NewReporter(f.store, f.poster, f.metrics, "jupyter-alice", interval, time.Second)
	t.Cleanup(f.reporter.Stop)
	return f
}

// seedSession stores a session whose access token value doubles as a call
// marker in the fake poster.
func (f *reporterFixture) seedSession(t *testing.T, username string, lastActivity time.Time) session.UserSession {
	t.Helper()

	token, err := session.NewToken()
	require.NoError(t, err)

	sess := session.New(token, hub.Identity{Username: username}, hub.NewRedactedToken("at-"+username), lastActivity)
	f.store.Put(sess)
	return sess
}

func TestReportOnce(t *testing.T) {
	t.Run("posts every session's last activity", func(t *testing.T) {
		f := newReporterFixture(t, time.Minute)

		aliceSeen := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
		bobSeen := aliceSeen.Add(30 * time.Second)
		f.seedSession(t, "alice", aliceSeen)
		f.seedSession(t, "bob", bobSeen)

		f.reporter.ReportOnce(context.Background())

		calls := f.poster.snapshot()
		require.Len(t, calls, 2)

		whenByToken := make(map[string]time.Time)
		for _, call := range calls {
			assert.Equal(t, "jupyter-alice", call.serverName)
			whenByToken[call.accessToken] = call.when
		}
		assert.Equal(t, aliceSeen, whenByToken["at-alice"])
		assert.Equal(t, bobSeen, whenByToken["at-bob"])
		assert.Equal(t, int64(2), f.metrics.Summary().ActivitySuccesses)
	})

	t.Run("empty store posts nothing", func(t *testing.T) {
		f := newReporterFixture(t, time.Minute)

		f.reporter.ReportOnce(context.Background())

		assert.Equal(t, 0, f.poster.count())
	})

	t.Run("one failing session stops nothing and evicts nothing", func(t *testing.T) {
		f := newReporterFixture(t, time.Minute)

		f.seedSession(t, "alice", time.Now())
		f.seedSession(t, "bob", time.Now())
		f.poster.errFor["at-alice"] = errors.New("hub says no")

		f.reporter.ReportOnce(context.Background())

		assert.Equal(t, 2, f.poster.count(), "the other session is still reported")
		assert.Equal(t, 2, f.store.Len(), "failures never evict sessions")

		summary := f.metrics.Summary()
		assert.Equal(t, int64(1), summary.ActivitySuccesses)
		assert.Equal(t, int64(1), summary.ActivityFailures)
	})
}

func TestSignalAsync(t *testing.T) {
	t.Run("posts in the background", func(t *testing.T) {
		f := newReporterFixture(t, time.Minute)
		sess := f.seedSession(t, "alice", time.Now())

		f.reporter.SignalAsync(sess)

		waitFor(t, func() bool { return f.poster.count() == 1 }, "expected one activity post")
		waitFor(t, func() bool { return f.metrics.Summary().ActivitySuccesses == 1 }, "expected the post to be counted")
	})

	t.Run("repeat signals are throttled", func(t *testing.T) {
		f := newReporterFixture(t, time.Minute)
		sess := f.seedSession(t, "alice", time.Now())

		f.reporter.SignalAsync(sess)
		f.reporter.SignalAsync(sess)
		f.reporter.SignalAsync(sess)

		waitFor(t, func() bool { return f.poster.count() == 1 }, "expected one activity post")
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 1, f.poster.count(), "signals within the throttle window are dropped")
	})

	t.Run("distinct sessions are not throttled together", func(t *testing.T) {
		f := newReporterFixture(t, time.Minute)
		alice := f.seedSession(t, "alice", time.Now())
		bob := f.seedSession(t, "bob", time.Now())

		f.reporter.SignalAsync(alice)
		f.reporter.SignalAsync(bob)

		waitFor(t, func() bool { return f.poster.count() == 2 }, "expected both sessions posted")
	})

	t.Run("a sweep primes the throttle", func(t *testing.T) {
		f := newReporterFixture(t, time.Minute)
		sess := f.seedSession(t, "alice", time.Now())

		f.reporter.ReportOnce(context.Background())
		require.Equal(t, 1, f.poster.count())

		f.reporter.SignalAsync(sess)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 1, f.poster.count(), "a freshly swept session does not signal again")
	})
}

func TestReporterStartStop(t *testing.T) {
	t.Run("periodic loop reports until stopped", func(t *testing.T) {
		f := newReporterFixture(t, 20*time.Millisecond)
		f.seedSession(t, "alice", time.Now())

		f.reporter.Start()
		waitFor(t, func() bool { return f.poster.count() >= 2 }, "expected the loop to keep reporting")

		f.reporter.Stop()
		after := f.poster.count()
		time.Sleep(80 * time.Millisecond)
		assert.Equal(t, after, f.poster.count(), "no posts after Stop")
	})

	t.Run("stop is idempotent and safe without start", func(t *testing.T) {
		f := newReporterFixture(t, time.Minute)
		f.reporter.Stop()
		f.reporter.Stop()

		f.reporter.Start()
		f.reporter.Stop()
		f.reporter.Stop()
	})
}
