package ports

import "context"

// ManifestSource provides the raw manifest text.
// Implementations read from the local file system, S3 or HTTP.
type ManifestSource interface {
	// Name identifies the source in logs (a path or URI).
	Name() string

	// Read returns the complete manifest contents.
	Read(ctx context.Context) ([]byte, error)
}
