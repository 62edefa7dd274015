package thumbship

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bft-labs/thumbship/internal/adapters/badger"
	"github.com/bft-labs/thumbship/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/thumbship/internal/adapters/http"
	"github.com/bft-labs/thumbship/internal/adapters/imaging"
	"github.com/bft-labs/thumbship/internal/adapters/memory"
	"github.com/bft-labs/thumbship/internal/adapters/mongo"
	"github.com/bft-labs/thumbship/internal/adapters/postgres"
	"github.com/bft-labs/thumbship/internal/adapters/s3"
	"github.com/bft-labs/thumbship/internal/app"
	"github.com/bft-labs/thumbship/internal/domain"
	"github.com/bft-labs/thumbship/internal/ports"
)

// manifestMaxBytes caps a manifest downloaded over HTTP.
const manifestMaxBytes = 256 << 20

// Thumbship runs manifests through the thumbnail pipeline.
// Use New() to create an instance, then Run() or Serve().
type Thumbship struct {
	config    Config
	opts      options
	logger    ports.Logger
	fetcher   *httpAdapter.Fetcher
	resizer   ports.Resizer
	sink      ports.PersistenceSink
	reclaimer ports.MemoryReclaimer
	progress  ports.ProgressRepository

	// runs are serialized; the sink is opened and closed by each one
	mu sync.Mutex
}

// New creates a new Thumbship instance with the given configuration.
// Returns an error wrapping ErrInvalidConfig if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Thumbship, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.FetchTimeout}
	}
	if o.source == nil && cfg.Manifest == "" {
		return nil, fmt.Errorf("%w: manifest is required", ErrInvalidConfig)
	}

	sink := o.sink
	if sink == nil {
		var err error
		if sink, err = newSink(cfg); err != nil {
			return nil, err
		}
	}

	resizer := o.resizer
	if resizer == nil {
		resizer = imaging.NewResizer(cfg.ResizeConcurrency, 0, cfg.MaxPixels)
	}

	var progress ports.ProgressRepository
	if cfg.ProgressDir != "" {
		progress = fs.NewProgressFileRepository(cfg.ProgressDir)
	}

	return &Thumbship{
		config:    cfg,
		opts:      o,
		logger:    o.logger,
		fetcher:   httpAdapter.NewFetcher(o.httpClient, cfg.MaxFetchBytes, cfg.UserAgent),
		resizer:   resizer,
		sink:      sink,
		reclaimer: memory.NewReclaimer(cfg.ReclaimMemory),
		progress:  progress,
	}, nil
}

// Run processes the manifest once and returns the run summary.
//
// The error is non-nil only for failures that stop the run before or
// instead of processing batches: unreadable or malformed manifest (ErrInput,
// ErrSchema), a sink that cannot be opened, or ctx cancellation. Record and
// batch failures are reported in the summary.
func (t *Thumbship) Run(ctx context.Context) (RunSummary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	source, err := t.manifestSource(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	deps := app.PipelineDeps{
		Source:    source,
		Fetcher:   t.fetcher,
		Resizer:   t.resizer,
		Sink:      t.sink,
		Reclaimer: t.reclaimer,
		Progress:  t.progress,
		Logger:    t.logger,
	}
	if t.opts.batchHandler != nil {
		deps.Observer = t.opts.batchHandler
	}

	pipeline, err := app.NewPipeline(app.PipelineConfig{
		BatchSize:        t.config.BatchSize,
		BatchParallelism: t.config.BatchParallelism,
	}, deps)
	if err != nil {
		return RunSummary{}, err
	}
	return pipeline.Run(ctx)
}

// Serve runs the manifest once, then again whenever a plugin triggers it,
// until ctx is cancelled. Failed runs are logged and do not stop serving.
func (t *Thumbship) Serve(ctx context.Context) error {
	trigger := make(chan struct{}, 1)
	pluginCfg := PluginConfig{
		Manifest: t.config.Manifest,
		Logger:   t.logger,
		Trigger: func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		},
	}

	var started []Plugin
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		for i := len(started) - 1; i >= 0; i-- {
			p := started[i]
			if err := p.Shutdown(shutdownCtx); err != nil {
				t.logger.Error("plugin shutdown failed", ports.String("plugin", p.Name()), ports.Err(err))
			} else {
				t.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
			}
		}
	}()
	for _, p := range t.opts.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			t.logger.Error("plugin initialization failed", ports.String("plugin", p.Name()), ports.Err(err))
			return fmt.Errorf("initialize plugin %s: %w", p.Name(), err)
		}
		started = append(started, p)
		t.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	t.serveOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			t.serveOnce(ctx)
		}
	}
}

func (t *Thumbship) serveOnce(ctx context.Context) {
	if _, err := t.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		t.logger.Error("run failed", ports.String("manifest", t.config.Manifest), ports.Err(err))
	}
}

func (t *Thumbship) manifestSource(ctx context.Context) (ports.ManifestSource, error) {
	if t.opts.source != nil {
		return t.opts.source, nil
	}
	loc := t.config.Manifest
	switch {
	case s3.IsURI(loc):
		src, err := s3.NewManifestSource(ctx, loc, s3.Options{
			Region:    t.config.S3.Region,
			Endpoint:  t.config.S3.Endpoint,
			PathStyle: t.config.S3.PathStyle,
		})
		if err != nil {
			return nil, domain.InputError(err)
		}
		return src, nil
	case strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://"):
		fetcher := httpAdapter.NewFetcher(t.opts.httpClient, manifestMaxBytes, t.config.UserAgent)
		return httpAdapter.NewManifestSource(loc, fetcher), nil
	default:
		return fs.NewManifestFile(loc), nil
	}
}

func newSink(cfg Config) (ports.PersistenceSink, error) {
	switch {
	case cfg.Sink == "":
		return nil, fmt.Errorf("%w: sink is required", ErrInvalidConfig)
	case mongo.IsURI(cfg.Sink):
		return mongo.NewSink(cfg.Sink, cfg.Database, cfg.Collection), nil
	case postgres.IsURI(cfg.Sink):
		return postgres.NewSink(cfg.Sink, cfg.Table), nil
	case badger.IsURI(cfg.Sink):
		dir, err := badger.DirFromURI(cfg.Sink)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return badger.NewSink(dir), nil
	default:
		return nil, fmt.Errorf("%w: unsupported sink %q", ErrInvalidConfig, cfg.Sink)
	}
}
