package session

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"hubgate/internal/hub"

	"github.com/google/uuid"
)

func TestNew(t *testing.T) {
	now := time.Now()
	identity := hub.Identity{Username: "alice", Name: "Alice Liddell", Admin: true}
	accessToken := hub.NewRedactedToken("hub-access-token")

	sess := New("token-value", identity, accessToken, now)

	if sess.ID == uuid.Nil {
		t.Error("Expected a non-nil session ID")
	}
	if sess.Token != "token-value" {
		t.Errorf("Expected token 'token-value', got %q", sess.Token)
	}
	if sess.Username != "alice" {
		t.Errorf("Expected username 'alice', got %q", sess.Username)
	}
	if sess.Name != "Alice Liddell" {
		t.Errorf("Expected name 'Alice Liddell', got %q", sess.Name)
	}
	if sess.Initials != "AL" {
		t.Errorf("Expected initials 'AL', got %q", sess.Initials)
	}
	if !sess.Admin {
		t.Error("Expected admin flag to carry through")
	}
	if sess.AccessToken.Value() != "hub-access-token" {
		t.Error("Expected access token to carry through")
	}
	if !sess.CreatedAt.Equal(now) || !sess.LastActivityAt.Equal(now) {
		t.Error("Expected timestamps to be initialized to now")
	}
}

func TestNew_NameDefaultsToUsername(t *testing.T) {
	sess := New("tok", hub.Identity{Username: "alice"}, hub.RedactedToken{}, time.Now())

	if sess.Name != "alice" {
		t.Errorf("Expected name to default to username, got %q", sess.Name)
	}
	if sess.Initials != "A" {
		t.Errorf("Expected initials 'A', got %q", sess.Initials)
	}
}

func TestDeriveInitials(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"", ""},
		{"alice", "A"},
		{"Alice Liddell", "AL"},
		{"ada lovelace king", "AK"},
		{"  spaced   out  ", "SO"},
		{"élodie durand", "ÉD"},
	}

	for _, test := range tests {
		if got := DeriveInitials(test.name); got != test.expected {
			t.Errorf("DeriveInitials(%q) = %q, expected %q", test.name, got, test.expected)
		}
	}
}

// The serialized session must expose neither the cookie token nor the hub
// access token, whichever encoder touches it.
func TestUserSession_JSONNeverLeaksTokens(t *testing.T) {
	sess := New("cookie-token-value", hub.Identity{Username: "alice"}, hub.NewRedactedToken("hub-secret"), time.Now())

	data, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}

	out := string(data)
	if strings.Contains(out, "cookie-token-value") {
		t.Errorf("Serialized session leaks the cookie token: %s", out)
	}
	if strings.Contains(out, "hub-secret") {
		t.Errorf("Serialized session leaks the hub access token: %s", out)
	}
	if !strings.Contains(out, `"username":"alice"`) {
		t.Errorf("Serialized session should carry the identity: %s", out)
	}
}
