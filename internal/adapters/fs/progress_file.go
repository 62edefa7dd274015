package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bft-labs/thumbship/internal/ports"
)

const progressFileName = "progress.json"

// ProgressFileRepository implements ports.ProgressRepository using a JSON file.
type ProgressFileRepository struct {
	dir string
}

// NewProgressFileRepository creates a repository writing into dir.
func NewProgressFileRepository(dir string) *ProgressFileRepository {
	return &ProgressFileRepository{dir: dir}
}

// Load retrieves the last saved checkpoint from disk.
// Returns an empty checkpoint and nil error if no progress file exists.
func (r *ProgressFileRepository) Load(ctx context.Context) (ports.Checkpoint, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return ports.Checkpoint{}, nil
		}
		return ports.Checkpoint{}, err
	}

	var cp ports.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return ports.Checkpoint{}, err
	}
	return cp, nil
}

// Save persists the checkpoint atomically (temp file, then rename).
func (r *ProgressFileRepository) Save(ctx context.Context, cp ports.Checkpoint) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.Path())
}

// Path returns the full path to the progress file.
func (r *ProgressFileRepository) Path() string {
	return filepath.Join(r.dir, progressFileName)
}
