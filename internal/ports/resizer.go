package ports

import "context"

// Resizer derives a width x height thumbnail from encoded image bytes.
// Implementations doing CPU-heavy work must not stall concurrent fetches.
type Resizer interface {
	Resize(ctx context.Context, data []byte, width, height int) ([]byte, error)
}

// ResizerFunc adapts a function to Resizer.
type ResizerFunc func(ctx context.Context, data []byte, width, height int) ([]byte, error)

// Resize calls f.
func (f ResizerFunc) Resize(ctx context.Context, data []byte, width, height int) ([]byte, error) {
	return f(ctx, data, width, height)
}
