package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"hubgate/internal/activity"
	"hubgate/internal/auth"
	"hubgate/internal/config"
	"hubgate/internal/gateway"
	"hubgate/internal/hub"
	"hubgate/internal/session"
	"hubgate/pkg/logging"
)

// pendingLoginTTL bounds how long a browser may dawdle between the
// authorize redirect and the callback.
const pendingLoginTTL = 10 * time.Minute

// Application bundles every long-lived component of the gateway. It is
// built in one phase (NewApplication) and run in a second (Run), so
// construction failures surface before anything listens or spawns.
type Application struct {
	config *Config
	appCfg config.Config

	store    *session.Store
	pending  *auth.PendingLoginStore
	metrics  *auth.Metrics
	hub      *hub.Client
	reporter *activity.Reporter
	server   *gateway.Server
}

// NewApplication loads configuration and wires the gateway's components.
//
// Logging is initialized first so configuration loading can already log;
// the --debug flag wins over the configured log level.
func NewApplication(cfg *Config) (*Application, error) {
	var logOutput io.Writer = os.Stdout
	if cfg.Silent {
		logOutput = io.Discard
	}

	logLevel := logging.LevelInfo
	if cfg.Debug {
		logLevel = logging.LevelDebug
	}
	logging.InitForCLI(logLevel, logOutput)

	appCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cfg.Debug && appCfg.Gateway.LogLevel != "" {
		logging.InitForCLI(logging.ParseLevel(appCfg.Gateway.LogLevel), logOutput)
	}

	store := session.NewStore()
	pending := auth.NewPendingLoginStore(pendingLoginTTL)
	metrics := auth.NewMetrics()

	hubClient := hub.NewClient(hub.Options{
		AuthorizeURL:    appCfg.Hub.AuthorizeURL(),
		TokenURL:        appCfg.Hub.TokenURL(),
		UserURL:         appCfg.Hub.UserURL(),
		ActivityURL:     appCfg.ActivityURL(),
		ClientID:        appCfg.Hub.ClientID,
		ClientSecret:    appCfg.Hub.OAuthClientSecret(),
		CallbackURL:     appCfg.Hub.CallbackURL,
		ExchangeTimeout: appCfg.Hub.ExchangeTimeout,
	})

	var reporter *activity.Reporter
	var signaler auth.ActivitySignaler
	if appCfg.ActivityURL() != "" {
		reporter = activity.NewReporter(store, hubClient, metrics,
			appCfg.Activity.ServerName, appCfg.Activity.Interval, appCfg.Activity.Timeout)
		signaler = reporter
	} else {
		logging.Info("Bootstrap", "Activity reporting disabled (no activity URL or server name configured)")
	}

	controller := auth.NewController(store, pending, hubClient, metrics, signaler, appCfg.Gateway.ServicePrefix)

	server, err := gateway.NewServer(&appCfg, controller, store, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway server: %w", err)
	}

	return &Application{
		config:   cfg,
		appCfg:   appCfg,
		store:    store,
		pending:  pending,
		metrics:  metrics,
		hub:      hubClient,
		reporter: reporter,
		server:   server,
	}, nil
}
