package domain

import (
	"time"

	"github.com/hashicorp/go-multierror"
)

// InsertResult is the per-record outcome of one unordered bulk insert.
type InsertResult struct {
	Inserted int
	Failures []RecordFailure
}

// Err folds the per-record failures into one error, or nil if there were none.
func (r InsertResult) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}

// BatchReport is the progress record emitted after each batch.
type BatchReport struct {
	Seq  int
	Size int

	Succeeded       int
	Skipped         int
	FetchFailed     int
	TransformFailed int
	Persisted       int
	PersistFailed   int

	// LastIndex and LastID come from the last entity of the original
	// batch ordering, whether or not that entity succeeded.
	LastIndex int
	LastID    string

	Duration time.Duration

	// Err is set when the batch as a whole failed.
	Err error
}

// Failed reports whether the batch as a whole failed.
func (r BatchReport) Failed() bool {
	return r.Err != nil
}

// RunSummary totals a pipeline run.
type RunSummary struct {
	RunID string

	Attempted       int
	Persisted       int
	Skipped         int
	FetchFailed     int
	TransformFailed int
	PersistFailed   int

	Batches       int
	FailedBatches int
	RowWarnings   int

	Duration time.Duration
}

// Dropped is the number of attempted records that were not persisted.
func (s RunSummary) Dropped() int {
	return s.Attempted - s.Persisted
}

// Add folds a batch report into the summary.
func (s *RunSummary) Add(r BatchReport) {
	s.Batches++
	s.Attempted += r.Size
	s.Persisted += r.Persisted
	s.Skipped += r.Skipped
	s.FetchFailed += r.FetchFailed
	s.TransformFailed += r.TransformFailed
	s.PersistFailed += r.PersistFailed
	if r.Failed() {
		s.FailedBatches++
	}
}
