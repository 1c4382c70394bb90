package gateway

import (
	"context"
	"net/http"

	"hubgate/internal/auth"
	"hubgate/internal/session"
	"hubgate/pkg/logging"
)

type sessionKeyType struct{}

var sessionKey sessionKeyType

func withSession(ctx context.Context, sess session.UserSession) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFrom returns the authenticated session the middleware attached to
// the request context.
func SessionFrom(ctx context.Context) (session.UserSession, bool) {
	sess, ok := ctx.Value(sessionKey).(session.UserSession)
	return sess, ok
}

// authenticate gates a handler behind the session controller: it extracts
// the auth-relevant parts of the request, asks for a decision, and renders
// the cookie and redirect sides of it. The wrapped handler only ever sees
// authenticated requests, with the session on the context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := s.controller.Authenticate(r.Context(), s.extractRequest(r))

		if decision.ClearCookie {
			s.clearSessionCookie(w)
		}
		if decision.SetCookie {
			s.setSessionCookie(w, decision.Session.Token)
		}

		if decision.Err != nil {
			logging.Warn("Gateway", "Authentication failed for %s %s: %v", r.Method, r.URL.Path, decision.Err)
		}

		if decision.RedirectURL != "" {
			http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
			return
		}

		if !decision.Authenticated {
			// Only reachable when starting a login itself failed; there is
			// no redirect to offer.
			http.Error(w, "authentication unavailable", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), decision.Session)))
	})
}

// extractRequest pulls the cookie and, on the callback path only, the
// code/state pair out of an HTTP request. Query parameters named "code"
// anywhere else belong to the application, not to us.
func (s *Server) extractRequest(r *http.Request) auth.Request {
	req := auth.Request{}

	if c, err := r.Cookie(s.cookieName); err == nil {
		req.Token = c.Value
	}

	if r.URL.Path == s.callbackPath {
		q := r.URL.Query()
		req.Code = q.Get("code")
		req.State = q.Get("state")
		// A login that fails here restarts cleanly; the callback URL
		// itself is never a destination worth returning to.
		return req
	}

	req.OriginalURL = r.URL.RequestURI()
	return req
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     s.prefix,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     s.prefix,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies,
		MaxAge:   -1,
	})
}
