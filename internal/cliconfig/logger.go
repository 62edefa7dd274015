package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/thumbship/pkg/log"
)

// Logger returns the CLI's startup logger: console output on stderr at info
// level. Use ConfigureLogger once the configuration is known.
func Logger() zerolog.Logger {
	l, _ := log.NewConsoleLogger(os.Stderr, "info", false)
	return l
}

// ConfigureLogger builds the logger selected by cfg.
func ConfigureLogger(cfg Config) (zerolog.Logger, error) {
	return log.NewConsoleLogger(os.Stderr, cfg.LogLevel, cfg.LogJSON)
}
