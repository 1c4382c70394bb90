// Package auth decides who a request belongs to.
//
// The Controller runs the per-request flow: resolve the session cookie
// against the in-memory store, redeem an authorization code when one
// arrives on a callback, or start a new login by recording a pending
// attempt and redirecting to the hub. It deals in plain values (Request
// in, Decision out) so the whole state machine is exercisable without an
// HTTP stack.
//
// The PendingLoginStore is the anti-forgery ledger: every authorize
// redirect records a single-use state nonce, and a callback whose state
// fails to consume a record is rejected before the code touches the hub.
//
// Metrics counts what happened (resolutions, redirects, successes,
// failures by kind) for the gateway's status endpoint.
//
// Trust boundaries: identity comes only from the hub via code exchange;
// session validity comes only from the store. An unknown cookie is not an
// error, just an unauthenticated request.
package auth
