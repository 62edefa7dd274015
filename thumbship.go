// Package thumbship fetches the images listed in a manifest, shrinks them to
// thumbnails and bulk-inserts them into a document store.
//
// Example usage:
//
//	cfg := thumbship.DefaultConfig()
//	cfg.Manifest = "/data/images.csv"
//	cfg.Sink = "mongodb://localhost:27017"
//	cfg.BatchSize = 50
//	summary, err := thumbship.Run(context.Background(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For options such as custom sinks, loggers or watch mode, use
// github.com/bft-labs/thumbship/pkg/thumbship directly.
package thumbship

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/thumbship/pkg/log"
	lib "github.com/bft-labs/thumbship/pkg/thumbship"
)

// Config holds the pipeline configuration.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = lib.Config

// RunSummary totals one pass over a manifest.
type RunSummary = lib.RunSummary

// Run processes the manifest once, logging to stderr at info level.
func Run(ctx context.Context, cfg Config) (RunSummary, error) {
	t, err := lib.New(cfg, lib.WithLogger(log.NewZerologAdapterWithLogger(Logger())))
	if err != nil {
		return RunSummary{}, err
	}
	return t.Run(ctx)
}

// DefaultConfig returns a Config with sensible default values.
// Manifest, Sink and BatchSize must be set before calling Run.
func DefaultConfig() Config {
	return lib.DefaultConfig()
}

// Logger returns the console logger used by Run.
func Logger() zerolog.Logger {
	l, _ := log.NewConsoleLogger(os.Stderr, "info", false)
	return l
}
