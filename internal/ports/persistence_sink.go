package ports

import (
	"context"

	"github.com/bft-labs/thumbship/internal/domain"
)

// PersistenceSink writes processed records to the document store.
//
// The sink is opened once before the first batch and closed after the last
// batch or on a fatal error. BulkInsert calls for different batches may run
// concurrently; implementations must not require them to serialize.
type PersistenceSink interface {
	// Open connects to the persistence medium.
	Open(ctx context.Context) error

	// BulkInsert inserts records unordered: one record's rejection must not
	// prevent insertion of the others. Per-record rejections are reported in
	// the result. A non-nil error means the call as a whole failed; the
	// result then carries whatever the store acknowledged before the
	// failure, which may be nothing.
	BulkInsert(ctx context.Context, records []domain.PersistableImage) (domain.InsertResult, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}
