package ports

import (
	"context"
	"time"
)

// Checkpoint records how far a run has progressed.
type Checkpoint struct {
	RunID     string    `json:"run_id"`
	Manifest  string    `json:"manifest"`
	Batch     int       `json:"batch"`
	LastIndex int       `json:"last_index"`
	LastID    string    `json:"last_id"`
	Attempted int       `json:"attempted"`
	Persisted int       `json:"persisted"`
	Dropped   int       `json:"dropped"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressRepository persists the latest checkpoint.
// Implementations should write atomically (e.g., temp file then rename).
type ProgressRepository interface {
	// Load retrieves the last saved checkpoint.
	// Returns an empty checkpoint and nil error if none exists.
	Load(ctx context.Context) (Checkpoint, error)

	// Save persists the checkpoint atomically.
	Save(ctx context.Context, cp Checkpoint) error
}
