package thumbship

import (
	"fmt"
	"time"

	"github.com/bft-labs/thumbship/internal/domain"
)

// Default values applied by SetDefaults.
const (
	DefaultDatabase      = "thumbship"
	DefaultCollection    = "images"
	DefaultTable         = "images"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultMaxFetchBytes = 32 << 20
	DefaultUserAgent     = "thumbship"
)

// Config holds the configuration for a Thumbship instance.
type Config struct {
	// Manifest is a local path, an http(s) URL or an s3://bucket/key location.
	Manifest string

	// Sink is the persistence location; its scheme selects the backend.
	Sink       string
	Database   string
	Collection string
	Table      string

	// BatchSize is the number of records per batch and the fetch
	// concurrency within a batch. Required.
	BatchSize int

	// BatchParallelism is how many batches may be in flight at once.
	// Default 1: each batch completes before the next starts.
	BatchParallelism int

	FetchTimeout  time.Duration
	MaxFetchBytes int64
	UserAgent     string

	// ResizeConcurrency caps simultaneous resizes. Zero uses GOMAXPROCS.
	ResizeConcurrency int

	// MaxPixels rejects images whose decoded size would exceed this many
	// pixels. Zero uses the imaging default of 50 megapixels.
	MaxPixels int64

	// ProgressDir, when set, receives progress.json after every batch.
	ProgressDir string

	// ReclaimMemory returns freed memory to the OS after every batch.
	ReclaimMemory bool

	S3 S3Config
}

// S3Config configures the S3 client used for s3:// manifests.
type S3Config struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// DefaultConfig returns a Config with defaults. Manifest, Sink and
// BatchSize must still be set.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	c.ReclaimMemory = true
	return c
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.BatchParallelism == 0 {
		c.BatchParallelism = 1
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MaxFetchBytes == 0 {
		c.MaxFetchBytes = DefaultMaxFetchBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Validate checks the configuration. Manifest and Sink are checked by New,
// since they may be replaced by injected implementations.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return domain.ErrInvalidBatchSize
	}
	if c.BatchParallelism < 1 {
		return fmt.Errorf("%w: batch parallelism must be at least 1", ErrInvalidConfig)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxFetchBytes <= 0 {
		return fmt.Errorf("%w: max fetch bytes must be positive", ErrInvalidConfig)
	}
	if c.ResizeConcurrency < 0 {
		return fmt.Errorf("%w: resize concurrency must not be negative", ErrInvalidConfig)
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("%w: max pixels must not be negative", ErrInvalidConfig)
	}
	return nil
}
