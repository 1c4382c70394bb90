// Package logging provides a structured logging system for hubgate with unified
// log handling and level filtering.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// # Structured Logging
//
// All log entries include:
//   - Timestamp
//   - Log level (Debug, Info, Warn, Error)
//   - Subsystem identifier for categorization
//   - Message content with optional formatting
//   - Optional error information
//
// # Usage
//
//	import "hubgate/pkg/logging"
//
//	// Initialize with Info level logging to stdout
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	// Log messages
//	logging.Info("Bootstrap", "Gateway starting up")
//	logging.Debug("ConfigLoader", "Loaded configuration from %s", configPath)
//	logging.Warn("Activity", "Hub activity endpoint not configured")
//	logging.Error("Hub", err, "Code exchange failed")
//
// Until InitForCLI is called, all output is suppressed. Package tests rely
// on this to stay quiet.
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Application initialization and startup
//   - **App**: Process lifecycle (run loop, shutdown)
//   - **ConfigLoader**: Configuration loading and validation
//   - **Hub**: Identity-provider requests (code exchange, user info, activity)
//   - **Auth**: Login flow decisions and anti-forgery validation
//   - **AuthMetrics**: Authentication counters
//   - **Activity**: Periodic activity reporting
//   - **Gateway**: HTTP serving and proxying
//
// # Secret Hygiene
//
// Session tokens and hub access tokens are never logged. Log lines identify
// sessions by their UUID; TruncateToken exists for the rare case where a
// fragment of a rejected cookie value is needed for correlation.
//
// # Thread Safety
//
// The logging system is fully thread-safe:
//   - Safe concurrent logging from multiple goroutines
//   - Level filtering at handler level, no allocation for filtered-out messages
package logging
