// Package session holds the gateway's only mutable state: the in-memory
// map of authenticated user sessions, keyed by opaque cookie token.
//
// A token is 32 bytes of crypto/rand entropy in url-safe base64. It means
// nothing by itself; presence in the Store is what authenticates a
// request. Restarting the process empties the store, and every previously
// issued cookie silently degrades to "no session", which is exactly the
// re-login behavior the hub flow expects.
//
// The Store is a plain map behind one RWMutex. Reads may overlap; writes
// and snapshots are exclusive; no network or disk I/O ever happens under
// the lock. Components never share references into the map; Get and
// Snapshot return copies.
package session
