package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the thumbship pipeline.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInput is returned when the manifest is unreadable, empty or not text.
	ErrInput = errors.New("thumbship: invalid manifest input")

	// ErrSchema is returned when the manifest has no usable header.
	ErrSchema = errors.New("thumbship: invalid manifest schema")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("thumbship: invalid configuration")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)

	// ErrRecordFetch marks a failure of the fetch capability for one record.
	ErrRecordFetch = errors.New("thumbship: record fetch failed")

	// ErrRecordTransform marks a failure of the resize capability for one record.
	ErrRecordTransform = errors.New("thumbship: record transform failed")

	// ErrPersistRecord marks a record rejected by the persistence medium.
	ErrPersistRecord = errors.New("thumbship: record rejected by sink")

	// ErrDuplicateRecord marks a record rejected because its id already exists.
	ErrDuplicateRecord = fmt.Errorf("%w: duplicate id", ErrPersistRecord)

	// ErrBatch marks a failure of a batch as a whole.
	ErrBatch = errors.New("thumbship: batch failed")
)

// InputError wraps cause as an ErrInput.
func InputError(cause error) error {
	return fmt.Errorf("%w: %w", ErrInput, cause)
}

// SchemaError wraps reason as an ErrSchema.
func SchemaError(reason string) error {
	return fmt.Errorf("%w: %s", ErrSchema, reason)
}

// Stage names the pipeline step a record failed in.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageTransform Stage = "transform"
)

// RecordError is a per-record fetch or transform failure.
type RecordError struct {
	Stage Stage
	ID    string
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s record %s: %v", e.Stage, e.ID, e.Err)
}

func (e *RecordError) Unwrap() []error {
	sentinel := ErrRecordFetch
	if e.Stage == StageTransform {
		sentinel = ErrRecordTransform
	}
	return []error{sentinel, e.Err}
}

// RowShapeWarning reports a manifest row that was dropped.
// It is recoverable: the rest of the manifest is still parsed.
type RowShapeWarning struct {
	// Row is the 1-based data row position.
	Row      int
	Expected int
	Actual   int
	Reason   string
	Line     string
}

func (w RowShapeWarning) Error() string {
	if w.Reason != "" {
		return fmt.Sprintf("row %d: %s", w.Row, w.Reason)
	}
	return fmt.Sprintf("row %d: has %d fields, header has %d", w.Row, w.Actual, w.Expected)
}

// RecordFailure is one record rejected within a bulk insert.
type RecordFailure struct {
	ID    string
	Index int
	Err   error
}

func (f RecordFailure) Error() string {
	return fmt.Sprintf("record %s: %v", f.ID, f.Err)
}

func (f RecordFailure) Unwrap() error {
	return f.Err
}

// BatchError is a failure of the batch-level orchestration, such as an
// unreachable sink. LastIndex and LastID locate the batch in the manifest.
type BatchError struct {
	Seq       int
	LastIndex int
	LastID    string
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d (last index %d, id %s): %v", e.Seq, e.LastIndex, e.LastID, e.Err)
}

func (e *BatchError) Unwrap() []error {
	return []error{ErrBatch, e.Err}
}
