// Package fs provides local file system adapters: the manifest file source
// and the progress checkpoint file.
package fs

import (
	"context"
	"fmt"
	"os"
)

// ManifestFile implements ports.ManifestSource for a local file.
type ManifestFile struct {
	path string
}

// NewManifestFile creates a source reading path.
func NewManifestFile(path string) *ManifestFile {
	return &ManifestFile{path: path}
}

// Name returns the file path.
func (m *ManifestFile) Name() string { return m.path }

// Path returns the file path.
func (m *ManifestFile) Path() string { return m.path }

// Read returns the file contents.
func (m *ManifestFile) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", m.path, err)
	}
	return data, nil
}
