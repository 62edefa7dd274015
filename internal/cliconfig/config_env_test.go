package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"THUMBSHIP_MANIFEST":           "/env/m.txt",
				"THUMBSHIP_SINK":               "badger:///env/db",
				"THUMBSHIP_BATCH_SIZE":         "40",
				"THUMBSHIP_BATCH_PARALLELISM":  "3",
				"THUMBSHIP_FETCH_TIMEOUT":      "2m",
				"THUMBSHIP_MAX_FETCH_BYTES":    "2048",
				"THUMBSHIP_USER_AGENT":         "thumbship-env/1.0",
				"THUMBSHIP_RESIZE_CONCURRENCY": "6",
				"THUMBSHIP_MAX_PIXELS":         "1000000",
				"THUMBSHIP_WATCH":              "true",
				"THUMBSHIP_S3_PATH_STYLE":      "1",
				"THUMBSHIP_LOG_LEVEL":          "warn",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Manifest:          "/env/m.txt",
				Sink:              "badger:///env/db",
				BatchSize:         40,
				BatchParallelism:  3,
				FetchTimeout:      2 * time.Minute,
				MaxFetchBytes:     2048,
				UserAgent:         "thumbship-env/1.0",
				ResizeConcurrency: 6,
				MaxPixels:         1000000,
				Watch:             true,
				S3PathStyle:       true,
				LogLevel:          "warn",
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"THUMBSHIP_MANIFEST":   "/env/m.txt",
				"THUMBSHIP_BATCH_SIZE": "40",
			},
			changed:  map[string]bool{"batch-size": true},
			initial:  Config{BatchSize: 7},
			expected: Config{Manifest: "/env/m.txt", BatchSize: 7},
		},
		{
			name: "resize flags win over env",
			envVars: map[string]string{
				"THUMBSHIP_USER_AGENT":         "env-agent",
				"THUMBSHIP_RESIZE_CONCURRENCY": "6",
				"THUMBSHIP_MAX_PIXELS":         "1000000",
			},
			changed:  map[string]bool{"user-agent": true, "resize-concurrency": true, "max-pixels": true},
			initial:  Config{UserAgent: "flag-agent", ResizeConcurrency: 2, MaxPixels: 500},
			expected: Config{UserAgent: "flag-agent", ResizeConcurrency: 2, MaxPixels: 500},
		},
		{
			name:     "bool 'false' clears a default",
			envVars:  map[string]string{"THUMBSHIP_RECLAIM_MEMORY": "false"},
			changed:  map[string]bool{},
			initial:  Config{ReclaimMemory: true},
			expected: Config{ReclaimMemory: false},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"THUMBSHIP_FETCH_TIMEOUT": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"THUMBSHIP_BATCH_SIZE": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid resize concurrency",
			envVars: map[string]string{"THUMBSHIP_RESIZE_CONCURRENCY": "all"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid max pixels",
			envVars: map[string]string{"THUMBSHIP_MAX_PIXELS": "huge"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int64",
			envVars: map[string]string{"THUMBSHIP_MAX_FETCH_BYTES": "lots"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		Manifest:    "/file/m.txt",
		Sink:        "mongodb://file:27017",
		BatchSize:   5,
		S3PathStyle: &trueVal,
	}

	t.Setenv("THUMBSHIP_MANIFEST", "/env/m.txt")
	t.Setenv("THUMBSHIP_SINK", "mongodb://env:27017")
	t.Setenv("THUMBSHIP_PROGRESS_DIR", "/env/progress")

	changed := map[string]bool{
		"manifest": true,
	}

	cfg := Config{
		Manifest: "/cli/m.txt",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.Manifest != "/cli/m.txt" {
		t.Errorf("Manifest = %v, want /cli/m.txt (CLI should win)", cfg.Manifest)
	}
	if cfg.Sink != "mongodb://env:27017" {
		t.Errorf("Sink = %v, want env value (env should override file)", cfg.Sink)
	}
	if cfg.ProgressDir != "/env/progress" {
		t.Errorf("ProgressDir = %v, want /env/progress (env should set)", cfg.ProgressDir)
	}
	if cfg.BatchSize != 5 || !cfg.S3PathStyle {
		t.Errorf("BatchSize = %v, S3PathStyle = %v (file should set)", cfg.BatchSize, cfg.S3PathStyle)
	}
}
