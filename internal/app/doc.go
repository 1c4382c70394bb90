// Package app bootstraps and runs the gateway process.
//
// Construction and execution are split: NewApplication loads the
// configuration and wires every component (session store, pending-login
// store, hub client, controller, activity reporter, HTTP server) without
// starting anything, and Run brings them up, blocks until shutdown is
// requested, and tears them down in order.
package app
