package app

// Config carries the process-local knobs from the command line. Everything
// about the hub and the gateway itself comes from the environment and the
// optional config file, loaded during bootstrap.
type Config struct {
	// Debug forces debug-level logging regardless of configuration.
	Debug bool
	// Silent suppresses all log output (tests, scripted use).
	Silent bool
	// ConfigPath names an optional YAML config file.
	ConfigPath string
}

// NewConfig creates the application configuration from command-line flags.
func NewConfig(debug, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
	}
}
