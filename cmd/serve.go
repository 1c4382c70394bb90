package cmd

import (
	"context"
	"fmt"

	"hubgate/internal/app"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveSilent suppresses all log output. Useful when another process
// captures the gateway's stdout for its own purposes.
var serveSilent bool

// serveConfigPath names an optional YAML config file. The environment
// always wins over the file; the hub's launch contract arrives in
// JUPYTERHUB_* variables either way.
var serveConfigPath string

// serveCmd starts the gateway: the HTTP server fronting the application,
// the hub-backed login flow, and the activity reporting loop.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authentication gateway",
	Long: `Starts the gateway in the foreground.

The process expects the environment the hub provides when it launches a
single-user server (JUPYTERHUB_API_URL, JUPYTERHUB_API_TOKEN,
JUPYTERHUB_CLIENT_ID, JUPYTERHUB_OAUTH_CALLBACK_URL, ...). A YAML config
file may supply operator overrides; environment variables win over the
file.

The gateway runs until terminated (SIGINT/SIGTERM) and shuts down
gracefully: in-flight requests drain, then background loops stop.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveSilent, serveConfigPath)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveSilent, "silent", false, "Suppress all log output")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Path to an optional YAML config file")
}
