package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/oklog/ulid/v2"

	"github.com/bft-labs/thumbship/internal/domain"
	"github.com/bft-labs/thumbship/internal/ports"
)

// sinkCloseTimeout bounds closing the sink after the run context is done.
const sinkCloseTimeout = 10 * time.Second

// PipelineConfig contains configuration for a pipeline run.
type PipelineConfig struct {
	// BatchSize is the number of records per batch and the fetch
	// concurrency within a batch. Must be positive.
	BatchSize int

	// BatchParallelism is how many batches may overlap. Default 1.
	BatchParallelism int
}

// Validate checks the configuration before any work starts.
func (c PipelineConfig) Validate() error {
	if c.BatchSize <= 0 {
		return domain.ErrInvalidBatchSize
	}
	if c.BatchParallelism < 0 {
		return fmt.Errorf("%w: batch parallelism must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// PipelineDeps are the adapters a pipeline runs against.
// Reclaimer, Progress and Observer are optional.
type PipelineDeps struct {
	Source    ports.ManifestSource
	Fetcher   ports.ResourceFetcher
	Resizer   ports.Resizer
	Sink      ports.PersistenceSink
	Reclaimer ports.MemoryReclaimer
	Progress  ports.ProgressRepository
	Observer  BatchObserver
	Logger    ports.Logger
}

// Pipeline runs a manifest end to end: read, parse, materialize, process
// batches, persist.
type Pipeline struct {
	config     PipelineConfig
	deps       PipelineDeps
	parser     *ManifestParser
	thumbnails *ThumbnailFetcher
}

// NewPipeline creates a pipeline. Configuration errors are reported here,
// before any batch runs.
func NewPipeline(config PipelineConfig, deps PipelineDeps) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if deps.Source == nil || deps.Fetcher == nil || deps.Resizer == nil || deps.Sink == nil {
		return nil, fmt.Errorf("%w: source, fetcher, resizer and sink are required", domain.ErrInvalidConfig)
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required", domain.ErrInvalidConfig)
	}
	return &Pipeline{
		config:     config,
		deps:       deps,
		parser:     NewManifestParser(deps.Logger),
		thumbnails: NewThumbnailFetcher(deps.Fetcher, deps.Resizer, deps.Logger),
	}, nil
}

// Run executes one pass over the manifest.
//
// Only input, schema and sink-open failures are returned as errors; record
// and batch failures are counted in the summary. The sink is opened before
// the first batch and closed after the last one.
func (p *Pipeline) Run(ctx context.Context) (summary domain.RunSummary, err error) {
	start := time.Now()
	summary.RunID = ulid.Make().String()
	logger := p.deps.Logger

	defer func() {
		summary.Duration = time.Since(start)
	}()

	logger.Info("run starting",
		ports.String("run_id", summary.RunID),
		ports.String("manifest", p.deps.Source.Name()),
		ports.Int("batch_size", p.config.BatchSize),
	)
	p.logPreviousCheckpoint(ctx)

	raw, err := p.deps.Source.Read(ctx)
	if err != nil {
		err = domain.InputError(err)
		logger.Error("manifest unreadable", ports.String("manifest", p.deps.Source.Name()), ports.Err(err))
		return summary, err
	}

	parsed, err := p.parser.Parse(string(raw))
	summary.RowWarnings = len(parsed.Warnings)
	if err != nil {
		logger.Error("manifest rejected", ports.String("manifest", p.deps.Source.Name()), ports.Err(err))
		return summary, err
	}

	entities := MaterializeAll(parsed.Records)
	if len(entities) == 0 {
		p.logSummary(summary, start)
		return summary, nil
	}

	if err := p.deps.Sink.Open(ctx); err != nil {
		logger.Error("sink unavailable", ports.Err(err))
		return summary, fmt.Errorf("open sink: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkCloseTimeout)
		defer cancel()
		if cerr := p.deps.Sink.Close(closeCtx); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("close sink: %w", cerr)).ErrorOrNil()
		}
	}()

	var observer observers
	if p.deps.Progress != nil {
		observer = append(observer, newCheckpointer(ctx, summary.RunID, p.deps.Source.Name(), p.deps.Progress, logger))
	}
	if p.deps.Observer != nil {
		observer = append(observer, p.deps.Observer)
	}

	orch := NewOrchestrator(
		OrchestratorConfig{BatchParallelism: p.config.BatchParallelism, RunID: summary.RunID},
		p.thumbnails,
		p.deps.Sink,
		p.deps.Reclaimer,
		logger,
		observer,
	)

	batches, runErr := orch.Run(ctx, entities, p.config.BatchSize)
	batches.RunID = summary.RunID
	batches.RowWarnings = summary.RowWarnings
	summary = batches

	p.logSummary(summary, start)
	return summary, runErr
}

// logPreviousCheckpoint reports where the last run stopped. Runs always
// start from the top of the manifest; the checkpoint is informational.
func (p *Pipeline) logPreviousCheckpoint(ctx context.Context) {
	if p.deps.Progress == nil {
		return
	}
	cp, err := p.deps.Progress.Load(ctx)
	if err != nil {
		p.deps.Logger.Warn("failed to load checkpoint", ports.Err(err))
		return
	}
	if cp.RunID == "" {
		return
	}
	p.deps.Logger.Info("previous checkpoint",
		ports.String("run_id", cp.RunID),
		ports.String("manifest", cp.Manifest),
		ports.Int("batch", cp.Batch),
		ports.Int("last_index", cp.LastIndex),
		ports.String("last_id", cp.LastID),
		ports.Int("persisted", cp.Persisted),
		ports.Int("dropped", cp.Dropped),
	)
}

func (p *Pipeline) logSummary(s domain.RunSummary, start time.Time) {
	p.deps.Logger.Info("run complete",
		ports.String("run_id", s.RunID),
		ports.Int("attempted", s.Attempted),
		ports.Int("persisted", s.Persisted),
		ports.Int("dropped", s.Dropped()),
		ports.Int("skipped", s.Skipped),
		ports.Int("fetch_failed", s.FetchFailed),
		ports.Int("transform_failed", s.TransformFailed),
		ports.Int("persist_failed", s.PersistFailed),
		ports.Int("batches", s.Batches),
		ports.Int("failed_batches", s.FailedBatches),
		ports.Int("row_warnings", s.RowWarnings),
		ports.Duration("duration", time.Since(start)),
	)
}
