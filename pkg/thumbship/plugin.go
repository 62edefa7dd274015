package thumbship

import "context"

// Plugin extends a serving Thumbship instance.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize starts the plugin. It must not block.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and waits for its goroutines.
	Shutdown(ctx context.Context) error
}

// PluginConfig is passed to plugins on initialization.
type PluginConfig struct {
	// Manifest is the configured manifest location.
	Manifest string

	Logger Logger

	// Trigger requests another run. Requests made while a run is pending
	// are coalesced into one.
	Trigger func()
}
