package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultCookieName is the session cookie used when no override is configured.
const DefaultCookieName = "jupyverse_thinkube_token"

// Config is the top-level configuration for hubgate.
//
// Values are resolved with the precedence defaults < config file < environment.
// The environment tags follow the contract the hub uses when launching a
// single-user server; HUBGATE_* variables are gateway-local knobs.
type Config struct {
	Hub      HubConfig      `yaml:"hub"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Activity ActivityConfig `yaml:"activity"`
}

// HubConfig describes how to reach the hub's API and OAuth endpoints.
type HubConfig struct {
	// APIURL is the hub API base, e.g. "http://127.0.0.1:8081/hub/api".
	APIURL string `yaml:"apiURL,omitempty" env:"JUPYTERHUB_API_URL"`
	// PublicHubURL is the browser-facing hub base used for the authorize
	// redirect. Empty means same-host: the redirect is path-only.
	PublicHubURL string `yaml:"publicHubURL,omitempty" env:"JUPYTERHUB_PUBLIC_HUB_URL"`
	// APIToken is the token the hub minted for this server. It doubles as
	// the OAuth client secret unless ClientSecret overrides it. Secrets are
	// environment-only, never read from the config file.
	APIToken     string `yaml:"-" env:"JUPYTERHUB_API_TOKEN"`
	ClientID     string `yaml:"clientID,omitempty" env:"JUPYTERHUB_CLIENT_ID"`
	ClientSecret string `yaml:"-" env:"JUPYTERHUB_OAUTH_CLIENT_SECRET"`
	// CallbackURL is the redirect URI registered with the hub for this
	// server's OAuth client.
	CallbackURL string `yaml:"callbackURL,omitempty" env:"JUPYTERHUB_OAUTH_CALLBACK_URL"`
	// ExchangeTimeout bounds a full code-exchange sequence (token + user info).
	ExchangeTimeout time.Duration `yaml:"-" env:"HUBGATE_EXCHANGE_TIMEOUT"`
}

// GatewayConfig describes the HTTP surface of the gateway itself.
type GatewayConfig struct {
	// Listen overrides the derived listen address (host:port).
	Listen string `yaml:"listen,omitempty" env:"HUBGATE_LISTEN"`
	// ServiceURL is the URL the hub routes to this server; its host:port is
	// the default listen address.
	ServiceURL string `yaml:"-" env:"JUPYTERHUB_SERVICE_URL"`
	// ServicePrefix is the URL prefix this server is mounted under,
	// e.g. "/user/alice/".
	ServicePrefix string `yaml:"servicePrefix,omitempty" env:"JUPYTERHUB_SERVICE_PREFIX"`
	// UpstreamURL is the fronted single-user application. Empty means the
	// gateway serves auth endpoints only and answers 503 for app paths.
	UpstreamURL string `yaml:"upstreamURL,omitempty" env:"HUBGATE_UPSTREAM_URL"`
	CookieName  string `yaml:"cookieName,omitempty" env:"HUBGATE_COOKIE_NAME"`
	LogLevel    string `yaml:"logLevel,omitempty" env:"HUBGATE_LOG_LEVEL"`
}

// ActivityConfig controls periodic activity reporting to the hub.
type ActivityConfig struct {
	// URL overrides the derived activity endpoint.
	URL string `yaml:"url,omitempty" env:"JUPYTERHUB_ACTIVITY_URL"`
	// ServerName is this server's name within the user's hub account
	// (empty for the default server).
	ServerName string        `yaml:"serverName,omitempty" env:"JUPYTERHUB_SERVER_NAME"`
	Interval   time.Duration `yaml:"-" env:"HUBGATE_ACTIVITY_INTERVAL"`
	Timeout    time.Duration `yaml:"-" env:"HUBGATE_ACTIVITY_TIMEOUT"`
}

// GetDefaultConfig returns the default configuration for hubgate.
func GetDefaultConfig() Config {
	return Config{
		Hub: HubConfig{
			APIURL:          "http://127.0.0.1:8081/hub/api",
			ExchangeTimeout: 30 * time.Second,
		},
		Gateway: GatewayConfig{
			ServicePrefix: "/",
			CookieName:    DefaultCookieName,
		},
		Activity: ActivityConfig{
			Interval: 5 * time.Minute,
			Timeout:  10 * time.Second,
		},
	}
}

// Validate checks that the minimum viable configuration is present.
func (c *Config) Validate() error {
	if c.Hub.APIURL == "" {
		return fmt.Errorf("hub API URL is required (JUPYTERHUB_API_URL)")
	}
	if _, err := url.Parse(c.Hub.APIURL); err != nil {
		return fmt.Errorf("invalid hub API URL %q: %w", c.Hub.APIURL, err)
	}
	if c.Hub.ClientID == "" {
		return fmt.Errorf("OAuth client ID is required (JUPYTERHUB_CLIENT_ID)")
	}
	if c.Hub.CallbackURL == "" {
		return fmt.Errorf("OAuth callback URL is required (JUPYTERHUB_OAUTH_CALLBACK_URL)")
	}
	if _, err := url.Parse(c.Hub.CallbackURL); err != nil {
		return fmt.Errorf("invalid OAuth callback URL %q: %w", c.Hub.CallbackURL, err)
	}
	if c.Hub.OAuthClientSecret() == "" {
		return fmt.Errorf("OAuth client secret is required (JUPYTERHUB_API_TOKEN or JUPYTERHUB_OAUTH_CLIENT_SECRET)")
	}
	if c.Gateway.UpstreamURL != "" {
		if _, err := url.Parse(c.Gateway.UpstreamURL); err != nil {
			return fmt.Errorf("invalid upstream URL %q: %w", c.Gateway.UpstreamURL, err)
		}
	}
	return nil
}

// normalize fills derived fields and canonicalizes values that other
// components rely on. Called once by LoadConfig.
func (c *Config) normalize() {
	c.Hub.APIURL = strings.TrimSuffix(c.Hub.APIURL, "/")
	c.Hub.PublicHubURL = strings.TrimSuffix(c.Hub.PublicHubURL, "/")
	c.Gateway.ServicePrefix = NormalizePrefix(c.Gateway.ServicePrefix)
	if c.Gateway.CookieName == "" {
		c.Gateway.CookieName = DefaultCookieName
	}
	if c.Hub.ExchangeTimeout <= 0 {
		c.Hub.ExchangeTimeout = 30 * time.Second
	}
	if c.Activity.Interval <= 0 {
		c.Activity.Interval = 5 * time.Minute
	}
	if c.Activity.Timeout <= 0 {
		c.Activity.Timeout = 10 * time.Second
	}
}

// NormalizePrefix canonicalizes a service prefix to start and end with "/".
func NormalizePrefix(prefix string) string {
	if prefix == "" || prefix == "/" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}
	return prefix
}

// OAuthClientSecret returns the effective OAuth client secret: the explicit
// secret when set, otherwise the hub API token (the hub issues one value
// serving both roles).
func (h *HubConfig) OAuthClientSecret() string {
	if h.ClientSecret != "" {
		return h.ClientSecret
	}
	return h.APIToken
}

// TokenURL is the hub endpoint for exchanging an authorization code.
func (h *HubConfig) TokenURL() string {
	return h.APIURL + "/oauth2/token"
}

// UserURL is the hub endpoint for resolving the identity behind an access token.
func (h *HubConfig) UserURL() string {
	return h.APIURL + "/user"
}

// AuthorizeURL is the browser-facing hub endpoint that starts a login.
// With no public hub URL configured the result is path-only, which keeps
// the redirect on the current host.
func (h *HubConfig) AuthorizeURL() string {
	return h.PublicHubURL + "/hub/api/oauth2/authorize"
}

// CallbackPath is the local route on which the hub's redirect arrives.
func (c *Config) CallbackPath() string {
	if c.Hub.CallbackURL != "" {
		if u, err := url.Parse(c.Hub.CallbackURL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return c.Gateway.ServicePrefix + "oauth_callback"
}

// ActivityURL is the hub endpoint receiving activity reports. Empty means
// reporting is disabled (no explicit URL and no server name to derive one).
func (c *Config) ActivityURL() string {
	if c.Activity.URL != "" {
		return c.Activity.URL
	}
	if c.Activity.ServerName == "" {
		return ""
	}
	return c.Hub.APIURL + "/users/" + url.PathEscape(c.Activity.ServerName) + "/activity"
}

// ListenAddr resolves the address the gateway binds to: the explicit
// override, then the host:port of the hub-assigned service URL, then a
// conventional default.
func (c *Config) ListenAddr() string {
	if c.Gateway.Listen != "" {
		return c.Gateway.Listen
	}
	if c.Gateway.ServiceURL != "" {
		if u, err := url.Parse(c.Gateway.ServiceURL); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return "127.0.0.1:8888"
}
