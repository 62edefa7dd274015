package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/thumbship/internal/adapters/badger"
	"github.com/bft-labs/thumbship/internal/adapters/mongo"
	"github.com/bft-labs/thumbship/internal/adapters/postgres"
)

// Default values shared by the CLI and the config file.
const (
	DefaultDatabase      = "thumbship"
	DefaultCollection    = "images"
	DefaultTable         = "images"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultMaxFetchBytes = 32 << 20
)

// Config holds CLI configuration for thumbship.
type Config struct {
	Manifest string

	Sink       string
	Database   string
	Collection string
	Table      string

	BatchSize        int
	BatchParallelism int

	FetchTimeout  time.Duration
	MaxFetchBytes int64
	UserAgent     string

	ResizeConcurrency int
	MaxPixels         int64

	ProgressDir   string
	ReclaimMemory bool
	Watch         bool

	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	LogLevel string
	LogJSON  bool
}

// DefaultConfig returns a Config with default values. BatchSize has no
// default and must be given.
func DefaultConfig() Config {
	return Config{
		Database:         DefaultDatabase,
		Collection:       DefaultCollection,
		Table:            DefaultTable,
		BatchParallelism: 1,
		FetchTimeout:     DefaultFetchTimeout,
		MaxFetchBytes:    DefaultMaxFetchBytes,
		ReclaimMemory:    true,
		LogLevel:         "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be a positive integer")
	}
	if c.BatchParallelism <= 0 {
		return fmt.Errorf("batch-parallelism must be positive")
	}
	if c.Sink == "" {
		return fmt.Errorf("sink is required")
	}
	if !mongo.IsURI(c.Sink) && !postgres.IsURI(c.Sink) && !badger.IsURI(c.Sink) {
		return fmt.Errorf("unsupported sink %q (want mongodb://, postgres:// or badger://)", c.Sink)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch-timeout must be positive")
	}
	if c.MaxFetchBytes <= 0 {
		return fmt.Errorf("max-fetch-bytes must be positive")
	}
	if c.ResizeConcurrency < 0 {
		return fmt.Errorf("resize-concurrency must not be negative")
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("max-pixels must not be negative")
	}
	if c.Watch && strings.Contains(c.Manifest, "://") {
		return fmt.Errorf("watch requires a local manifest file")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
