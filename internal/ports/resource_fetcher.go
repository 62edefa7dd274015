package ports

import "context"

// ResourceFetcher obtains the binary content behind a record URL.
// Timeouts are the implementation's responsibility; the pipeline treats a
// timeout like any other failure.
type ResourceFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ResourceFetcherFunc adapts a function to ResourceFetcher.
type ResourceFetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f.
func (f ResourceFetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}
