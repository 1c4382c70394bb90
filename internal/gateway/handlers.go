package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"hubgate/internal/session"
	"hubgate/pkg/logging"
)

// identityPayload is the client-facing shape of a session. The session
// token and the hub access token have no representation here.
type identityPayload struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Initials  string `json:"initials"`
	Admin     bool   `json:"admin"`
	Anonymous bool   `json:"anonymous"`
}

type mePayload struct {
	Identity    identityPayload `json:"identity"`
	Permissions map[string]any  `json:"permissions"`
}

func identityOf(sess session.UserSession) mePayload {
	return mePayload{
		Identity: identityPayload{
			Username:  sess.Username,
			Name:      sess.Name,
			Initials:  sess.Initials,
			Admin:     sess.Admin,
			Anonymous: false,
		},
		Permissions: map[string]any{},
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn("Gateway", "Failed to encode response: %v", err)
	}
}

// handleMe serves the current identity (GET) and display-name updates
// (PATCH).
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, identityOf(sess))

	case http.MethodPatch:
		var body struct {
			Name *string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name != "" {
				s.store.Update(sess.Token, func(u *session.UserSession) {
					u.Name = name
					u.Initials = session.DeriveInitials(name)
				})
				sess.Name = name
				sess.Initials = session.DeriveInitials(name)
				logging.Debug("Gateway", "User %s updated display name", sess.Username)
			}
		}

		writeJSON(w, http.StatusOK, identityOf(sess))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStatus reports live gateway counters. Authenticated like any other
// application path.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": s.store.Len(),
		"auth":     s.metrics.Summary(),
	})
}

// handleLogout drops the caller's session and expires the cookie. Works
// with or without a live session, so a stale bookmark still lands
// somewhere sensible.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
		s.controller.Logout(c.Value)
	}

	s.clearSessionCookie(w)
	http.Redirect(w, r, s.prefix, http.StatusFound)
}

// handleApp forwards an authenticated request to the fronted application.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	if sess, ok := SessionFrom(r.Context()); ok {
		r.Header.Set("X-Forwarded-User", sess.Username)
	}
	s.proxy.ServeHTTP(w, r)
}
