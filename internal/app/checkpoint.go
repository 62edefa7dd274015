package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/thumbship/internal/domain"
	"github.com/bft-labs/thumbship/internal/ports"
)

// checkpointer saves a checkpoint after every batch.
// Save failures are logged and never affect the run.
type checkpointer struct {
	ctx    context.Context
	repo   ports.ProgressRepository
	logger ports.Logger

	mu sync.Mutex
	cp ports.Checkpoint
}

func newCheckpointer(ctx context.Context, runID, manifest string, repo ports.ProgressRepository, logger ports.Logger) *checkpointer {
	return &checkpointer{
		ctx:    ctx,
		repo:   repo,
		logger: logger,
		cp:     ports.Checkpoint{RunID: runID, Manifest: manifest},
	}
}

// OnBatchComplete folds the report into the running totals and saves them.
func (c *checkpointer) OnBatchComplete(r domain.BatchReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cp.Batch = r.Seq
	c.cp.LastIndex = r.LastIndex
	c.cp.LastID = r.LastID
	c.cp.Attempted += r.Size
	c.cp.Persisted += r.Persisted
	c.cp.Dropped = c.cp.Attempted - c.cp.Persisted
	c.cp.UpdatedAt = time.Now().UTC()

	if err := c.repo.Save(c.ctx, c.cp); err != nil {
		c.logger.Warn("failed to save checkpoint",
			ports.String("run_id", c.cp.RunID),
			ports.Int("batch", r.Seq),
			ports.Err(err),
		)
	}
}
