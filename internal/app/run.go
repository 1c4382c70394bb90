package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hubgate/pkg/logging"
)

// Run starts the gateway and blocks until the context is cancelled, a
// termination signal arrives, or the HTTP server fails. Shutdown is
// graceful in all three cases: drain the server, stop the activity
// reporter, stop the pending-login janitor.
func (a *Application) Run(ctx context.Context) error {
	if a.reporter != nil {
		a.reporter.Start()
	}

	if err := a.server.Start(ctx); err != nil {
		logging.Error("App", err, "Failed to start gateway server")
		a.shutdown()
		return err
	}

	logging.Info("App", "hubgate is up. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info("App", "Context cancelled, shutting down")
	case sig := <-sigChan:
		logging.Info("App", "Received %s, shutting down", sig)
	case err := <-a.server.Err():
		logging.Error("App", err, "Gateway server failed")
		runErr = err
	}

	if err := a.server.Stop(context.Background()); err != nil {
		logging.Warn("App", "Error stopping gateway server: %v", err)
	}
	a.shutdown()

	return runErr
}

// shutdown stops the background machinery that is safe to stop in any
// order once the server no longer accepts requests.
func (a *Application) shutdown() {
	if a.reporter != nil {
		a.reporter.Stop()
	}
	a.pending.Stop()
}
