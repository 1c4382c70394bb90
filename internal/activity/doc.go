// Package activity keeps the hub's idle-culling at bay by reporting when
// users were last active on this server.
//
// The Reporter sweeps the session store on a fixed interval and posts each
// session's last-activity timestamp to the hub, authenticated with that
// session's own access token. Request handling can additionally signal
// activity as it happens; those signals are throttled per session and
// posted in the background.
//
// Everything here is best effort. The hub being slow, down, or unhappy
// costs log lines and counters, never sessions: users stay signed in
// through hub outages, at the price of possibly being culled as idle.
package activity
