package session

import (
	"strings"
	"time"
	"unicode"

	"hubgate/internal/hub"

	"github.com/google/uuid"
)

// UserSession is one authenticated user's in-memory state. Values are
// plain data: the store hands out copies, and nothing here is shared
// across goroutines.
type UserSession struct {
	// ID identifies the session in logs. The token never appears there.
	ID uuid.UUID `json:"id"`
	// Token is the opaque cookie value and the store key.
	Token string `json:"-"`

	Username string `json:"username"`
	// Name is the display label; defaults to Username, mutable by the user.
	Name     string `json:"name"`
	Initials string `json:"initials"`
	// Admin is advisory; the gateway enforces no policy on it.
	Admin bool `json:"admin"`

	// AccessToken is the hub-issued credential used for activity reporting.
	// RedactedToken keeps it out of every serialized form of the session.
	AccessToken hub.RedactedToken `json:"-"`

	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// New assembles a session for a freshly authenticated user.
func New(token string, user hub.Identity, accessToken hub.RedactedToken, now time.Time) UserSession {
	name := user.Name
	if name == "" {
		name = user.Username
	}
	return UserSession{
		ID:             uuid.New(),
		Token:          token,
		Username:       user.Username,
		Name:           name,
		Initials:       DeriveInitials(name),
		Admin:          user.Admin,
		AccessToken:    accessToken,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// DeriveInitials produces a short display badge from a name: the first
// letters of the first and last words, uppercased. Single-word names give
// one letter; an empty name gives an empty badge.
func DeriveInitials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	first := []rune(words[0])
	initials := []rune{unicode.ToUpper(first[0])}
	if len(words) > 1 {
		last := []rune(words[len(words)-1])
		initials = append(initials, unicode.ToUpper(last[0]))
	}
	return string(initials)
}
