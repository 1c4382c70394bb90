// Package gateway is the HTTP surface of hubgate.
//
// Every route except logout sits behind the authenticate middleware, which
// turns the session controller's decision into cookies and redirects. An
// authenticated request carries its session on the context and is either
// answered by one of the gateway's own endpoints (identity, status,
// logout) or proxied to the fronted application.
//
// Routes, rooted at the hub-assigned service prefix:
//
//	<callback path>     landing point for the hub's OAuth redirect
//	<prefix>api/me      current identity (GET), display-name update (PATCH)
//	<prefix>api/status  session count and auth counters
//	<prefix>logout      drop the session, expire the cookie
//	everything else     reverse-proxied upstream
package gateway
