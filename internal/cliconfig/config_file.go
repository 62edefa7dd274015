package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Manifest          string `toml:"manifest"`
	Sink              string `toml:"sink"`
	Database          string `toml:"database"`
	Collection        string `toml:"collection"`
	Table             string `toml:"table"`
	BatchSize         int    `toml:"batch_size"`
	BatchParallelism  int    `toml:"batch_parallelism"`
	FetchTimeout      string `toml:"fetch_timeout"`
	MaxFetchBytes     int64  `toml:"max_fetch_bytes"`
	UserAgent         string `toml:"user_agent"`
	ResizeConcurrency int    `toml:"resize_concurrency"`
	MaxPixels         int64  `toml:"max_pixels"`
	ProgressDir       string `toml:"progress_dir"`
	ReclaimMemory     *bool  `toml:"reclaim_memory"`
	Watch             *bool  `toml:"watch"`
	S3Region          string `toml:"s3_region"`
	S3Endpoint        string `toml:"s3_endpoint"`
	S3PathStyle       *bool  `toml:"s3_path_style"`
	LogLevel          string `toml:"log_level"`
	LogJSON           *bool  `toml:"log_json"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.thumbship/config.toml, or "" if the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".thumbship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("manifest", fc.Manifest, &cfg.Manifest)
	s.setString("sink", fc.Sink, &cfg.Sink)
	s.setString("database", fc.Database, &cfg.Database)
	s.setString("collection", fc.Collection, &cfg.Collection)
	s.setString("table", fc.Table, &cfg.Table)
	s.setString("progress-dir", fc.ProgressDir, &cfg.ProgressDir)
	s.setString("s3-region", fc.S3Region, &cfg.S3Region)
	s.setString("s3-endpoint", fc.S3Endpoint, &cfg.S3Endpoint)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("user-agent", fc.UserAgent, &cfg.UserAgent)

	if err := s.setDuration("fetch-timeout", fc.FetchTimeout, &cfg.FetchTimeout); err != nil {
		return err
	}

	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)
	s.setInt("batch-parallelism", fc.BatchParallelism, &cfg.BatchParallelism)
	s.setInt64("max-fetch-bytes", fc.MaxFetchBytes, &cfg.MaxFetchBytes)
	s.setInt("resize-concurrency", fc.ResizeConcurrency, &cfg.ResizeConcurrency)
	s.setInt64("max-pixels", fc.MaxPixels, &cfg.MaxPixels)

	s.setBool("reclaim-memory", fc.ReclaimMemory, &cfg.ReclaimMemory)
	s.setBool("watch", fc.Watch, &cfg.Watch)
	s.setBool("s3-path-style", fc.S3PathStyle, &cfg.S3PathStyle)
	s.setBool("log-json", fc.LogJSON, &cfg.LogJSON)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
