package http

import (
	"context"
	"fmt"
)

// ManifestSource implements ports.ManifestSource for a manifest served over HTTP.
// It reuses the Fetcher so size limits and timeouts apply equally.
type ManifestSource struct {
	url     string
	fetcher *Fetcher
}

// NewManifestSource creates a source downloading url with fetcher.
func NewManifestSource(url string, fetcher *Fetcher) *ManifestSource {
	return &ManifestSource{url: url, fetcher: fetcher}
}

// Name returns the manifest URL.
func (m *ManifestSource) Name() string { return m.url }

// Read downloads the manifest.
func (m *ManifestSource) Read(ctx context.Context) ([]byte, error) {
	data, err := m.fetcher.Fetch(ctx, m.url)
	if err != nil {
		return nil, fmt.Errorf("download manifest: %w", err)
	}
	return data, nil
}
