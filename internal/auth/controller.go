package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hubgate/internal/hub"
	"hubgate/internal/session"
	"hubgate/pkg/logging"
)

// ErrStateMismatch is returned when a callback's state value does not
// correspond to a pending login this gateway issued. The authorization
// code is never exchanged in that case.
var ErrStateMismatch = errors.New("callback state does not match a pending login")

// HubClient is the slice of the hub API the controller needs.
type HubClient interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (hub.Credentials, error)
}

// ActivitySignaler receives best-effort notice that a session showed
// activity. Implementations must not block.
type ActivitySignaler interface {
	SignalAsync(sess session.UserSession)
}

// Request carries the authentication-relevant parts of an HTTP request,
// extracted by the transport layer: the session cookie value (empty when
// absent), the code/state query parameters, and the URL the user was
// trying to reach.
type Request struct {
	Token       string
	Code        string
	State       string
	OriginalURL string
}

// Decision is the controller's verdict on one request.
type Decision struct {
	// Session is valid when Authenticated is true.
	Session       session.UserSession
	Authenticated bool
	// SetCookie instructs the transport to issue Session.Token as the new
	// session cookie (set after a completed login).
	SetCookie bool
	// ClearCookie instructs the transport to drop a stale cookie.
	ClearCookie bool
	// RedirectURL, when non-empty, is where the browser goes next; it
	// takes precedence over serving the request.
	RedirectURL string
	// Err records the failure behind a redirect-to-login decision, for
	// logging. A failure never surfaces to the user beyond the redirect.
	Err error
}

// Controller decides, per request, whether the caller is authenticated and
// what has to happen next. It owns no HTTP specifics: the gateway extracts
// a Request and renders the Decision.
//
// The flow, in priority order:
//
//  1. A cookie resolving to a live session authenticates the request
//     (the session is touched and an activity signal fired).
//  2. An unknown or malformed cookie counts for nothing.
//  3. With no session and an authorization code present, the code is
//     redeemed: state validated against a pending login first, mismatch
//     aborts before any hub call; success stores a session and redirects
//     to the recorded destination with a fresh cookie.
//  4. Otherwise a new login starts: pending record + redirect to the hub.
//
// Every failure lands on "start a new login"; the gateway never renders
// hub errors to the browser.
type Controller struct {
	store          *session.Store
	pending        *PendingLoginStore
	hub            HubClient
	metrics        *Metrics
	signaler       ActivitySignaler
	defaultNextURL string
}

// NewController wires a controller. signaler may be nil (no activity
// signals). defaultNextURL is the post-login destination when a request
// carries none worth preserving, typically the service prefix.
func NewController(store *session.Store, pending *PendingLoginStore, hubClient HubClient, metrics *Metrics, signaler ActivitySignaler, defaultNextURL string) *Controller {
	if defaultNextURL == "" {
		defaultNextURL = "/"
	}
	return &Controller{
		store:          store,
		pending:        pending,
		hub:            hubClient,
		metrics:        metrics,
		signaler:       signaler,
		defaultNextURL: defaultNextURL,
	}
}

// Authenticate runs the full decision flow for one request.
func (c *Controller) Authenticate(ctx context.Context, req Request) Decision {
	if sess, ok := c.Resolve(req.Token); ok {
		return Decision{Session: sess, Authenticated: true}
	}

	if req.Code != "" {
		sess, nextURL, err := c.CompleteLogin(ctx, req.Code, req.State)
		if err != nil {
			// The failed login may leave a stale cookie behind; restart
			// the flow cleanly.
			decision := c.beginLoginDecision(req.OriginalURL)
			decision.ClearCookie = req.Token != ""
			decision.Err = err
			return decision
		}
		return Decision{
			Session:       sess,
			Authenticated: true,
			SetCookie:     true,
			RedirectURL:   nextURL,
		}
	}

	decision := c.beginLoginDecision(req.OriginalURL)
	decision.ClearCookie = req.Token != ""
	return decision
}

// beginLoginDecision wraps BeginLogin for the paths that end in a
// redirect to the hub.
func (c *Controller) beginLoginDecision(nextURL string) Decision {
	redirect, err := c.BeginLogin(nextURL)
	if err != nil {
		return Decision{Err: err}
	}
	return Decision{RedirectURL: redirect}
}

// Resolve authenticates by session cookie alone. A hit touches the
// session's activity timestamp and fires the activity signal; the returned
// session reflects the touch. Unknown, empty and malformed tokens miss.
func (c *Controller) Resolve(token string) (session.UserSession, bool) {
	if token == "" {
		return session.UserSession{}, false
	}
	if !session.ValidToken(token) {
		c.metrics.RecordUnknownCookie()
		logging.Debug("Auth", "Rejected malformed session cookie (%s)", logging.TruncateToken(token))
		return session.UserSession{}, false
	}

	sess, ok := c.store.Get(token)
	if !ok {
		// Typical after a restart: the cookie outlived the process that
		// minted it.
		c.metrics.RecordUnknownCookie()
		return session.UserSession{}, false
	}

	now := time.Now()
	c.store.Touch(token, now)
	sess.LastActivityAt = now

	if c.signaler != nil {
		c.signaler.SignalAsync(sess)
	}
	c.metrics.RecordResolved()
	return sess, true
}

// BeginLogin records a pending login for nextURL and returns the hub
// authorize URL carrying the fresh state.
func (c *Controller) BeginLogin(nextURL string) (string, error) {
	state, err := c.pending.Begin(c.sanitizeNextURL(nextURL))
	if err != nil {
		return "", fmt.Errorf("failed to record pending login: %w", err)
	}
	c.metrics.RecordLoginRedirect()
	return c.hub.AuthCodeURL(state), nil
}

// CompleteLogin redeems an authorization code from a callback. The state
// is consumed first: a miss is a CSRF rejection and the code is never sent
// to the hub. On success the new session is stored and returned together
// with the destination recorded when the login began.
func (c *Controller) CompleteLogin(ctx context.Context, code, state string) (session.UserSession, string, error) {
	record := c.pending.Consume(state)
	if record == nil {
		c.metrics.RecordLoginFailure(KindCsrfRejected)
		logging.Warn("Auth", "Callback rejected: %v", ErrStateMismatch)
		return session.UserSession{}, "", ErrStateMismatch
	}

	creds, err := c.hub.ExchangeCode(ctx, code)
	if err != nil {
		c.metrics.RecordLoginFailure(ClassifyError(err))
		logging.Warn("Auth", "Code exchange failed: %v", err)
		return session.UserSession{}, "", err
	}

	token, err := session.NewToken()
	if err != nil {
		c.metrics.RecordLoginFailure(KindInternal)
		return session.UserSession{}, "", err
	}

	sess := session.New(token, creds.User, creds.AccessToken, time.Now())
	c.store.Put(sess)
	c.metrics.RecordLoginSuccess(sess.Username)
	logging.Info("Auth", "User %s authenticated (session %s)", sess.Username, sess.ID)

	return sess, record.NextURL, nil
}

// Logout drops the session behind the token, if any. Idempotent.
func (c *Controller) Logout(token string) {
	if sess, ok := c.store.Get(token); ok {
		logging.Info("Auth", "User %s logged out (session %s)", sess.Username, sess.ID)
	}
	c.store.Remove(token)
	c.metrics.RecordLogout()
}

// sanitizeNextURL keeps post-login redirects on this origin: only local
// absolute paths survive; anything else falls back to the default.
// "//host" would be protocol-relative and is rejected with the rest.
func (c *Controller) sanitizeNextURL(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return c.defaultNextURL
	}
	return next
}

// ClassifyError maps a login error to its metrics bucket.
func ClassifyError(err error) FailureKind {
	switch {
	case errors.Is(err, ErrStateMismatch):
		return KindCsrfRejected
	case errors.Is(err, hub.ErrUpstreamRejected):
		return KindUpstreamRejected
	case errors.Is(err, hub.ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	case errors.Is(err, hub.ErrMalformedResponse):
		return KindMalformedResponse
	default:
		return KindInternal
	}
}
