package app

import (
	"context"
	"os"
	"testing"
	"time"
)

// setLaunchEnv populates the environment contract the hub hands to a
// single-user server it spawns.
func setLaunchEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JUPYTERHUB_API_URL", "http://127.0.0.1:8081/hub/api")
	t.Setenv("JUPYTERHUB_API_TOKEN", "service-api-token")
	t.Setenv("JUPYTERHUB_CLIENT_ID", "jupyterhub-user-alice")
	t.Setenv("JUPYTERHUB_OAUTH_CALLBACK_URL", "http://127.0.0.1:8888/user/alice/oauth_callback")
	t.Setenv("JUPYTERHUB_SERVICE_PREFIX", "/user/alice/")
	t.Setenv("JUPYTERHUB_SERVER_NAME", "alice")
	t.Setenv("HUBGATE_LISTEN", "127.0.0.1:0")
}

func TestNewApplication(t *testing.T) {
	setLaunchEnv(t)

	app, err := NewApplication(NewConfig(false, true, ""))
	if err != nil {
		t.Fatalf("Failed to bootstrap application: %v", err)
	}
	defer app.shutdown()

	if app.server == nil {
		t.Error("Expected gateway server to be wired")
	}
	if app.store == nil {
		t.Error("Expected session store to be wired")
	}
	if app.pending == nil {
		t.Error("Expected pending-login store to be wired")
	}
	if app.hub == nil {
		t.Error("Expected hub client to be wired")
	}
	if app.reporter == nil {
		t.Error("Expected activity reporter when a server name is configured")
	}
}

func TestNewApplication_ActivityDisabled(t *testing.T) {
	setLaunchEnv(t)
	os.Unsetenv("JUPYTERHUB_SERVER_NAME")

	app, err := NewApplication(NewConfig(false, true, ""))
	if err != nil {
		t.Fatalf("Failed to bootstrap application: %v", err)
	}
	defer app.shutdown()

	if app.reporter != nil {
		t.Error("Expected no activity reporter without a server name or activity URL")
	}
}

func TestNewApplication_MissingContract(t *testing.T) {
	setLaunchEnv(t)
	os.Unsetenv("JUPYTERHUB_CLIENT_ID")

	_, err := NewApplication(NewConfig(false, true, ""))
	if err == nil {
		t.Fatal("Expected bootstrap to fail without a client ID")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	setLaunchEnv(t)

	app, err := NewApplication(NewConfig(false, true, ""))
	if err != nil {
		t.Fatalf("Failed to bootstrap application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	// Give the server a moment to come up, then pull the plug.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestRun_FailsOnBusyPort(t *testing.T) {
	setLaunchEnv(t)

	first, err := NewApplication(NewConfig(false, true, ""))
	if err != nil {
		t.Fatalf("Failed to bootstrap application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- first.Run(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	// Second instance on the same port must fail fast.
	t.Setenv("HUBGATE_LISTEN", first.server.Addr())
	second, err := NewApplication(NewConfig(false, true, ""))
	if err != nil {
		t.Fatalf("Failed to bootstrap second application: %v", err)
	}
	if err := second.Run(ctx); err == nil {
		t.Error("Expected Run to fail when the port is taken")
	}

	cancel()
	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("First instance did not shut down")
	}
}
