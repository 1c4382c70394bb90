package hub

// Identity is the hub's answer to "who does this access token belong to".
type Identity struct {
	// Username is the hub login name. Always present.
	Username string
	// Name is a human-facing label. The hub user payload carries no separate
	// display name, so this defaults to Username.
	Name string
	// Admin is advisory only; the gateway makes no authorization decisions
	// on it.
	Admin bool
}

// Credentials is the result of a completed code exchange: the resolved
// identity plus the access token the hub issued for it.
type Credentials struct {
	User Identity
	// AccessToken authenticates later hub calls (activity reports). It is
	// redacted in all string/JSON renderings and must never reach cookies,
	// logs, or response bodies.
	AccessToken RedactedToken
}

// tokenResponse is the hub token endpoint's reply to a code exchange.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

// userResponse is the hub user-info payload for a bearer token.
type userResponse struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}
