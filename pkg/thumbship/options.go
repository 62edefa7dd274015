package thumbship

import (
	"github.com/bft-labs/thumbship/internal/ports"
	"github.com/bft-labs/thumbship/pkg/log"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// Sink persists thumbnails. See the sink adapters for built-in implementations.
type Sink = ports.PersistenceSink

// ManifestSource supplies the raw manifest text.
type ManifestSource = ports.ManifestSource

// Resizer turns image bytes into a thumbnail of the given size.
type Resizer = ports.Resizer

// BatchHandler is notified after every batch.
type BatchHandler interface {
	OnBatchComplete(report BatchReport)
}

// BatchHandlerFunc adapts a function to BatchHandler.
type BatchHandlerFunc func(report BatchReport)

// OnBatchComplete calls f.
func (f BatchHandlerFunc) OnBatchComplete(report BatchReport) { f(report) }

// Option configures optional behavior of Thumbship.
type Option func(*options)

type options struct {
	httpClient   ports.HTTPClient
	logger       ports.Logger
	sink         ports.PersistenceSink
	source       ports.ManifestSource
	resizer      ports.Resizer
	batchHandler BatchHandler
	plugins      []Plugin
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithHTTPClient sets the client used to download images and HTTP manifests.
// If not provided, a client with Config.FetchTimeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSink replaces the sink selected by Config.Sink.
func WithSink(sink Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithManifestSource replaces the source selected by Config.Manifest.
func WithManifestSource(source ManifestSource) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithResizer replaces the built-in image resizer.
func WithResizer(resizer Resizer) Option {
	return func(o *options) {
		o.resizer = resizer
	}
}

// WithBatchHandler registers a handler called after every batch, from the
// goroutine that ran the batch.
func WithBatchHandler(handler BatchHandler) Option {
	return func(o *options) {
		o.batchHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized by Serve.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
