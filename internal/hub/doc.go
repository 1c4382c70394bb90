// Package hub implements the client side of the gateway's trust
// relationship with the hub (the external identity provider).
//
// The hub owns identity. The gateway never checks passwords or verifies
// identity tokens itself; it redeems short-lived authorization codes for
// (identity, access token) pairs and reports user activity back. Three
// operations cover that surface:
//
//   - AuthCodeURL builds the authorize redirect that starts a login.
//   - ExchangeCode redeems a single-use authorization code: a form POST to
//     the token endpoint followed by a bearer-authenticated user-info GET.
//   - ReportActivity posts a per-server last-activity timestamp.
//
// # Failure classes
//
// Callers need to distinguish "the hub is down" from "the hub said no"
// from "the hub answered garbage", and nothing more. Every error wraps one
// of ErrUpstreamUnavailable, ErrUpstreamRejected, or ErrMalformedResponse;
// dispatch with errors.Is. Rejections additionally carry the HTTP status
// as a *StatusError.
//
// # Token hygiene
//
// Access tokens leave this package only as RedactedToken values, which
// render as "[REDACTED]" in every string, text, and JSON encoding. The raw
// value is recovered with Value() exactly where an Authorization header is
// built.
package hub
