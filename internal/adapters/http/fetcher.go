// Package http provides the HTTP resource fetcher and the HTTP manifest source.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bft-labs/thumbship/internal/ports"
)

// DefaultMaxBytes caps a single fetched resource.
const DefaultMaxBytes int64 = 32 << 20

// ErrTooLarge is returned when a resource exceeds the configured size cap.
var ErrTooLarge = errors.New("resource exceeds size limit")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Fetcher implements ports.ResourceFetcher using HTTP GET.
// Timeouts come from the injected client.
type Fetcher struct {
	client    ports.HTTPClient
	maxBytes  int64
	userAgent string
}

// NewFetcher creates a new HTTP fetcher. maxBytes <= 0 uses DefaultMaxBytes.
func NewFetcher(client ports.HTTPClient, maxBytes int64, userAgent string) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		client:    client,
		maxBytes:  maxBytes,
		userAgent: userAgent,
	}
}

// Fetch downloads url and returns the response body.
// The content type is not interpreted.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("GET %s: %w (%d bytes)", url, ErrTooLarge, f.maxBytes)
	}
	return data, nil
}
