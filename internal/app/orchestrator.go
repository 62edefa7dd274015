package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/thumbship/internal/domain"
	"github.com/bft-labs/thumbship/internal/ports"
)

// BatchObserver is called after every batch, in completion order.
type BatchObserver interface {
	OnBatchComplete(report domain.BatchReport)
}

// observers fans a report out to several observers in order.
type observers []BatchObserver

func (obs observers) OnBatchComplete(report domain.BatchReport) {
	for _, o := range obs {
		o.OnBatchComplete(report)
	}
}

// OrchestratorConfig contains configuration for batch orchestration.
type OrchestratorConfig struct {
	// BatchParallelism is how many batches may be in flight at once.
	// Values below 1 mean batches run strictly one after another.
	BatchParallelism int

	// RunID tags log lines.
	RunID string
}

// Orchestrator drives batches through fetch, resize and persistence.
//
// Within a batch every entity is fetched concurrently, so the batch size is
// the concurrency width. A batch is persisted only after every fetch in it
// has resolved. Record failures never fail a batch and batch failures never
// fail the run.
type Orchestrator struct {
	config     OrchestratorConfig
	thumbnails *ThumbnailFetcher
	sink       ports.PersistenceSink
	reclaimer  ports.MemoryReclaimer
	logger     ports.Logger
	observer   BatchObserver
}

// NewOrchestrator creates a new orchestrator with the given dependencies.
// reclaimer and observer may be nil.
func NewOrchestrator(
	config OrchestratorConfig,
	thumbnails *ThumbnailFetcher,
	sink ports.PersistenceSink,
	reclaimer ports.MemoryReclaimer,
	logger ports.Logger,
	observer BatchObserver,
) *Orchestrator {
	if config.BatchParallelism < 1 {
		config.BatchParallelism = 1
	}
	if reclaimer == nil {
		reclaimer = ports.MemoryReclaimerFunc(func() {})
	}
	return &Orchestrator{
		config:     config,
		thumbnails: thumbnails,
		sink:       sink,
		reclaimer:  reclaimer,
		logger:     logger,
		observer:   observer,
	}
}

// Run partitions entities into batches of at most batchSize and processes
// them. It returns ErrInvalidBatchSize before running anything if batchSize
// is not positive, and ctx.Err() if the run was cancelled between batches.
func (o *Orchestrator) Run(ctx context.Context, entities []domain.WorkingEntity, batchSize int) (domain.RunSummary, error) {
	batches, err := domain.Partition(entities, batchSize)
	if err != nil {
		return domain.RunSummary{}, err
	}

	o.logger.Info("starting batches",
		ports.String("run_id", o.config.RunID),
		ports.Int("records", len(entities)),
		ports.Int("batches", len(batches)),
		ports.Int("batch_size", batchSize),
		ports.Int("batch_parallelism", o.config.BatchParallelism),
	)

	var (
		mu      sync.Mutex
		summary domain.RunSummary
		g       errgroup.Group
	)
	g.SetLimit(o.config.BatchParallelism)

	for _, batch := range batches {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			report := o.ProcessBatch(ctx, batch)
			mu.Lock()
			summary.Add(report)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		o.logger.Warn("run cancelled",
			ports.String("run_id", o.config.RunID),
			ports.Int("batches_done", summary.Batches),
			ports.Int("batches_total", len(batches)),
		)
		return summary, err
	}
	return summary, nil
}

// ProcessBatch fetches every entity of the batch concurrently, waits for all
// of them, and bulk-inserts the ones that produced a thumbnail.
func (o *Orchestrator) ProcessBatch(ctx context.Context, batch domain.Batch) (report domain.BatchReport) {
	start := time.Now()
	report = domain.BatchReport{Seq: batch.Seq, Size: batch.Size()}
	if last := batch.Last(); last != nil {
		report.LastIndex = last.Index
		report.LastID = last.ID
	}

	defer func() {
		if r := recover(); r != nil {
			report.Err = o.batchError(report, fmt.Errorf("panic: %v", r))
		}
		report.Duration = time.Since(start)
		o.logReport(report)
		if o.observer != nil {
			o.observer.OnBatchComplete(report)
		}
		o.reclaimer.Reclaim()
	}()

	images := o.collect(o.fetchAll(ctx, batch), &report)
	if len(images) == 0 {
		return report
	}

	// A failed call may still have committed part of the batch.
	result, err := o.sink.BulkInsert(ctx, images)
	report.Persisted = result.Inserted
	report.PersistFailed = len(result.Failures)
	for _, f := range result.Failures {
		o.logger.Warn("record rejected by sink",
			ports.String("run_id", o.config.RunID),
			ports.Int("batch", batch.Seq),
			ports.String("id", f.ID),
			ports.Int("index", f.Index),
			ports.Err(f.Err),
		)
	}
	if err != nil {
		report.Err = o.batchError(report, err)
	}
	return report
}

// fetchAll runs one fetch per entity and waits for all of them.
// Outcomes are stored positionally, so completion order does not matter.
func (o *Orchestrator) fetchAll(ctx context.Context, batch domain.Batch) []domain.FetchOutcome {
	outcomes := make([]domain.FetchOutcome, batch.Size())
	var g errgroup.Group
	for i, e := range batch.Entities {
		g.Go(func() error {
			outcomes[i] = o.thumbnails.Fetch(ctx, e)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// collect tallies outcomes into report and projects the successes.
func (o *Orchestrator) collect(outcomes []domain.FetchOutcome, report *domain.BatchReport) []domain.PersistableImage {
	images := make([]domain.PersistableImage, 0, len(outcomes))
	for _, out := range outcomes {
		switch out.Kind {
		case domain.OutcomeSucceeded:
			img, ok := out.Entity.ToPersistable()
			if !ok {
				report.TransformFailed++
				continue
			}
			report.Succeeded++
			images = append(images, img)
		case domain.OutcomeSkipped:
			report.Skipped++
		case domain.OutcomeFailed:
			if errors.Is(out.Err, domain.ErrRecordTransform) {
				report.TransformFailed++
			} else {
				report.FetchFailed++
			}
		}
	}
	return images
}

func (o *Orchestrator) batchError(report domain.BatchReport, err error) error {
	return &domain.BatchError{
		Seq:       report.Seq,
		LastIndex: report.LastIndex,
		LastID:    report.LastID,
		Err:       err,
	}
}

func (o *Orchestrator) logReport(r domain.BatchReport) {
	if r.Failed() {
		o.logger.Error("batch failed",
			ports.String("run_id", o.config.RunID),
			ports.Int("batch", r.Seq),
			ports.Int("size", r.Size),
			ports.Int("last_index", r.LastIndex),
			ports.String("last_id", r.LastID),
			ports.Err(r.Err),
		)
		return
	}
	o.logger.Info("batch complete",
		ports.String("run_id", o.config.RunID),
		ports.Int("batch", r.Seq),
		ports.Int("processed", r.Succeeded),
		ports.Int("persisted", r.Persisted),
		ports.Int("skipped", r.Skipped),
		ports.Int("failed", r.FetchFailed+r.TransformFailed+r.PersistFailed),
		ports.Int("last_index", r.LastIndex),
		ports.String("last_id", r.LastID),
		ports.Duration("duration", r.Duration),
	)
}
