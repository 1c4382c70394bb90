package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hubgate/pkg/logging"

	"golang.org/x/oauth2"
)

// Options configures a hub Client. URLs are absolute and pre-resolved by
// the config package.
type Options struct {
	// AuthorizeURL is the browser-facing endpoint that starts a login.
	AuthorizeURL string
	// TokenURL receives the authorization-code exchange.
	TokenURL string
	// UserURL resolves an access token to an identity.
	UserURL string
	// ActivityURL receives activity reports. Empty disables ReportActivity.
	ActivityURL  string
	ClientID     string
	ClientSecret string
	// CallbackURL is the redirect URI registered for this client.
	CallbackURL string
	// ExchangeTimeout bounds a full ExchangeCode sequence.
	ExchangeTimeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to the hub: OAuth2 code exchange, user-info lookup, and
// activity reporting. It is safe for concurrent use.
type Client struct {
	oauth           oauth2.Config
	userURL         string
	activityURL     string
	exchangeTimeout time.Duration
	httpClient      *http.Client
}

// NewClient creates a hub client from resolved options.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	exchangeTimeout := opts.ExchangeTimeout
	if exchangeTimeout <= 0 {
		exchangeTimeout = 30 * time.Second
	}
	return &Client{
		oauth: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.CallbackURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  opts.AuthorizeURL,
				TokenURL: opts.TokenURL,
			},
		},
		userURL:         opts.UserURL,
		activityURL:     opts.ActivityURL,
		exchangeTimeout: exchangeTimeout,
		httpClient:      httpClient,
	}
}

// AuthCodeURL builds the authorize redirect for a login attempt. The state
// value binds the eventual callback to the pending login that issued it.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode redeems an authorization code: POST the code to the token
// endpoint, then resolve the issued access token to an identity. Codes are
// single-use upstream, so no part of the sequence is ever retried.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, c.exchangeTimeout)
	defer cancel()

	token, err := c.exchangeToken(ctx, code)
	if err != nil {
		return Credentials{}, err
	}

	identity, err := c.fetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return Credentials{}, err
	}

	logging.Debug("Hub", "Exchanged authorization code for user %s", identity.Username)

	return Credentials{
		User:        identity,
		AccessToken: NewRedactedToken(token.AccessToken),
	}, nil
}

// exchangeToken performs the token-endpoint POST. The response is parsed
// into an oauth2.Token so expiry metadata stays available to callers that
// need it.
func (c *Client) exchangeToken(ctx context.Context, code string) (*oauth2.Token, error) {
	const op = "token exchange"

	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.oauth.RedirectURL)
	data.Set("client_id", c.oauth.ClientID)
	data.Set("client_secret", c.oauth.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", c.oauth.Endpoint.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, malformed(op, err)
	}
	if tr.AccessToken == "" {
		return nil, malformed(op+": response missing access_token", nil)
	}

	token := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return token, nil
}

// fetchIdentity resolves an access token to the hub identity behind it.
func (c *Client) fetchIdentity(ctx context.Context, accessToken string) (Identity, error) {
	const op = "user info"

	req, err := http.NewRequestWithContext(ctx, "GET", c.userURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, unavailable(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, unavailable(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Identity{}, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var ur userResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return Identity{}, malformed(op, err)
	}
	if ur.Name == "" {
		return Identity{}, malformed(op+": response missing name", nil)
	}

	return Identity{
		Username: ur.Name,
		Name:     ur.Name,
		Admin:    ur.Admin,
	}, nil
}

// activityReport is the body of an activity POST: per-server last-activity
// timestamps, keyed by server name.
type activityReport struct {
	Servers map[string]serverActivity `json:"servers"`
}

type serverActivity struct {
	LastActivity string `json:"last_activity"`
}

// ReportActivity posts a last-activity timestamp for one server, provided
// on behalf of the session owning the access token. Best-effort: callers
// log failures and move on.
func (c *Client) ReportActivity(ctx context.Context, accessToken RedactedToken, serverName string, when time.Time) error {
	const op = "activity report"

	if c.activityURL == "" {
		return fmt.Errorf("%s: no activity URL configured", op)
	}
	if accessToken.IsEmpty() {
		return fmt.Errorf("%s: session has no access token", op)
	}

	report := activityReport{
		Servers: map[string]serverActivity{
			serverName: {LastActivity: when.UTC().Format(time.RFC3339)},
		},
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode activity report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.activityURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create activity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken.Value())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unavailable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
