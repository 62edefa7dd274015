package cliconfig

import "os"

// EnvPrefix prefixes every environment variable thumbship reads.
const EnvPrefix = "THUMBSHIP_"

// ApplyEnvConfig applies THUMBSHIP_* environment variables to cfg. Values
// override the config file but not flags that were set explicitly.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("manifest", env("MANIFEST"), &cfg.Manifest)
	s.setString("sink", env("SINK"), &cfg.Sink)
	s.setString("database", env("DATABASE"), &cfg.Database)
	s.setString("collection", env("COLLECTION"), &cfg.Collection)
	s.setString("table", env("TABLE"), &cfg.Table)
	s.setString("progress-dir", env("PROGRESS_DIR"), &cfg.ProgressDir)
	s.setString("s3-region", env("S3_REGION"), &cfg.S3Region)
	s.setString("s3-endpoint", env("S3_ENDPOINT"), &cfg.S3Endpoint)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("user-agent", env("USER_AGENT"), &cfg.UserAgent)

	if err := s.setDuration("fetch-timeout", env("FETCH_TIMEOUT"), &cfg.FetchTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-size", env("BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-parallelism", env("BATCH_PARALLELISM"), &cfg.BatchParallelism); err != nil {
		return err
	}
	if err := s.setInt64FromString("max-fetch-bytes", env("MAX_FETCH_BYTES"), &cfg.MaxFetchBytes); err != nil {
		return err
	}
	if err := s.setIntFromString("resize-concurrency", env("RESIZE_CONCURRENCY"), &cfg.ResizeConcurrency); err != nil {
		return err
	}
	if err := s.setInt64FromString("max-pixels", env("MAX_PIXELS"), &cfg.MaxPixels); err != nil {
		return err
	}

	s.setBoolFromString("reclaim-memory", env("RECLAIM_MEMORY"), &cfg.ReclaimMemory)
	s.setBoolFromString("watch", env("WATCH"), &cfg.Watch)
	s.setBoolFromString("s3-path-style", env("S3_PATH_STYLE"), &cfg.S3PathStyle)
	s.setBoolFromString("log-json", env("LOG_JSON"), &cfg.LogJSON)

	return nil
}
