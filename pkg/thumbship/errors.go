package thumbship

import "github.com/bft-labs/thumbship/internal/domain"

// Errors returned by Run and New. Check them with errors.Is.
var (
	ErrInput            = domain.ErrInput
	ErrSchema           = domain.ErrSchema
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrInvalidBatchSize = domain.ErrInvalidBatchSize
	ErrRecordFetch      = domain.ErrRecordFetch
	ErrRecordTransform  = domain.ErrRecordTransform
	ErrPersistRecord    = domain.ErrPersistRecord
	ErrDuplicateRecord  = domain.ErrDuplicateRecord
	ErrBatch            = domain.ErrBatch
)

type (
	// RunSummary totals one pass over a manifest.
	RunSummary = domain.RunSummary

	// BatchReport describes one finished batch.
	BatchReport = domain.BatchReport

	// BatchError is carried by a BatchReport whose insert failed as a whole.
	BatchError = domain.BatchError

	// RecordFailure is a single record rejected by the sink.
	RecordFailure = domain.RecordFailure

	// PersistableImage is what a sink receives for each record.
	PersistableImage = domain.PersistableImage

	// InsertResult is a sink's per-record answer to one bulk insert.
	InsertResult = domain.InsertResult
)
