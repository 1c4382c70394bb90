// Package config loads and validates the hubgate configuration.
//
// The gateway is launched by the hub, which passes its contract through
// environment variables (JUPYTERHUB_*). Operators can additionally provide
// a YAML file for gateway-local settings, and HUBGATE_* variables tune the
// gateway itself. Precedence, lowest to highest:
//
//  1. Built-in defaults (GetDefaultConfig)
//  2. Optional YAML config file
//  3. Environment variables
//
// Secrets (the hub API token and OAuth client secret) are accepted from the
// environment only.
//
// Configuration is immutable after startup: components receive resolved
// values at construction time and a restart applies changes.
//
// Derived values (the token, user-info, authorize and activity endpoints,
// the callback route, and the listen address) are computed by methods on
// Config so the derivation rules live in one place.
package config
