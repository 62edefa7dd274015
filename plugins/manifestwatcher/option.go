package manifestwatcher

import "github.com/bft-labs/thumbship/pkg/thumbship"

// WithManifestWatcher returns a thumbship Option that re-runs the pipeline
// whenever the local manifest file changes. It only has an effect under
// Serve.
//
// Usage:
//
//	t, err := thumbship.New(cfg,
//	    manifestwatcher.WithManifestWatcher(manifestwatcher.Config{
//	        DebounceDelay: time.Second,
//	    }),
//	)
//	err = t.Serve(ctx)
func WithManifestWatcher(cfg Config) thumbship.Option {
	return thumbship.WithPlugin(New(cfg))
}

// WithDefaultManifestWatcher enables manifest watching with default settings.
func WithDefaultManifestWatcher() thumbship.Option {
	return WithManifestWatcher(DefaultConfig())
}
