package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/bft-labs/thumbship/internal/cliconfig"
	"github.com/bft-labs/thumbship/pkg/log"
	"github.com/bft-labs/thumbship/pkg/thumbship"
	"github.com/bft-labs/thumbship/plugins/manifestwatcher"
)

const helpDescription = `
Turn an image manifest into 100x100 thumbnails stored in MongoDB, PostgreSQL
or an embedded Badger database.

The manifest is comma-separated text: a header row naming at least the id and
url columns (index is optional), then one row per image. Images are fetched
and resized concurrently within each batch; each batch is bulk-inserted once
every image in it has resolved. Failed images and failed batches are logged
and skipped.

Configure via flags, THUMBSHIP_* environment variables or
$HOME/.thumbship/config.toml (flags win over env, env over file).
`

var exampleUsage = strings.TrimSpace(`
  thumbship --manifest images.csv --sink mongodb://localhost:27017 --batch-size 50
  thumbship --manifest s3://media/today.csv --sink postgres://localhost/media --batch-size 100
  thumbship --manifest images.csv --sink badger:///var/lib/thumbship --batch-size 20 --watch
`)

func init() {
	_, _ = maxprocs.Set()
	_, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.8),
		memlimit.WithProvider(
			memlimit.ApplyFallback(
				memlimit.FromCgroup,
				memlimit.FromSystem,
			),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set memory limit: %v\n", err)
	}
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "thumbship",
		Short:         "Fetch, shrink and store the images listed in a manifest",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			configured, err := cliconfig.ConfigureLogger(cfg)
			if err != nil {
				return err
			}
			logger = configured
			logger.Info().
				Str("manifest", cfg.Manifest).
				Str("sink", redactSink(cfg.Sink)).
				Int("batch_size", cfg.BatchSize).
				Int("batch_parallelism", cfg.BatchParallelism).
				Dur("fetch_timeout", cfg.FetchTimeout).
				Bool("watch", cfg.Watch).
				Msg("configuration")

			opts := []thumbship.Option{
				thumbship.WithLogger(log.NewZerologAdapterWithLogger(logger)),
			}
			if cfg.Watch {
				opts = append(opts, manifestwatcher.WithDefaultManifestWatcher())
			}

			t, err := thumbship.New(thumbship.Config{
				Manifest:          cfg.Manifest,
				Sink:              cfg.Sink,
				Database:          cfg.Database,
				Collection:        cfg.Collection,
				Table:             cfg.Table,
				BatchSize:         cfg.BatchSize,
				BatchParallelism:  cfg.BatchParallelism,
				FetchTimeout:      cfg.FetchTimeout,
				MaxFetchBytes:     cfg.MaxFetchBytes,
				UserAgent:         cfg.UserAgent,
				ResizeConcurrency: cfg.ResizeConcurrency,
				MaxPixels:         cfg.MaxPixels,
				ProgressDir:       cfg.ProgressDir,
				ReclaimMemory:     cfg.ReclaimMemory,
				S3: thumbship.S3Config{
					Region:    cfg.S3Region,
					Endpoint:  cfg.S3Endpoint,
					PathStyle: cfg.S3PathStyle,
				},
			}, opts...)
			if err != nil {
				return fmt.Errorf("create thumbship: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Watch {
				err := t.Serve(ctx)
				logger.Info().Msg("stopped watching")
				return err
			}

			summary, err := t.Run(ctx)
			if err != nil {
				return err
			}
			if summary.Dropped() > 0 {
				logger.Warn().
					Int("dropped", summary.Dropped()).
					Int("attempted", summary.Attempted).
					Msg("some records were not persisted")
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.thumbship/config.toml)")
	root.Flags().StringVar(&cfg.Manifest, "manifest", cfg.Manifest, "manifest location: file path, http(s) URL or s3://bucket/key")
	root.Flags().StringVar(&cfg.Sink, "sink", cfg.Sink, "sink: mongodb://..., postgres://... or badger://<dir>")
	root.Flags().StringVar(&cfg.Database, "database", cfg.Database, "MongoDB database")
	root.Flags().StringVar(&cfg.Collection, "collection", cfg.Collection, "MongoDB collection")
	root.Flags().StringVar(&cfg.Table, "table", cfg.Table, "PostgreSQL table")

	root.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "records per batch, also the fetch concurrency (required)")
	root.Flags().IntVar(&cfg.BatchParallelism, "batch-parallelism", cfg.BatchParallelism, "batches allowed in flight at once")
	root.Flags().DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "timeout for a single image download")
	root.Flags().Int64Var(&cfg.MaxFetchBytes, "max-fetch-bytes", cfg.MaxFetchBytes, "largest image accepted, in bytes")
	root.Flags().StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent header sent with image downloads")
	root.Flags().IntVar(&cfg.ResizeConcurrency, "resize-concurrency", cfg.ResizeConcurrency, "simultaneous resizes (0 uses GOMAXPROCS)")
	root.Flags().Int64Var(&cfg.MaxPixels, "max-pixels", cfg.MaxPixels, "largest decoded image accepted, in pixels (0 uses 50 megapixels)")

	root.Flags().StringVar(&cfg.ProgressDir, "progress-dir", cfg.ProgressDir, "directory for progress.json (disabled when empty)")
	root.Flags().BoolVar(&cfg.ReclaimMemory, "reclaim-memory", cfg.ReclaimMemory, "return freed memory to the OS after every batch")
	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "re-run whenever the local manifest file changes")

	root.Flags().StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "AWS region for s3:// manifests")
	root.Flags().StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "custom S3 endpoint (MinIO, Ceph)")
	root.Flags().BoolVar(&cfg.S3PathStyle, "s3-path-style", cfg.S3PathStyle, "use path-style S3 addressing")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	root.Flags().BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "emit JSON log lines instead of console output")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("thumbship")
		os.Exit(1)
	}
}

// redactSink hides credentials embedded in a sink URI.
func redactSink(sink string) string {
	scheme, rest, ok := strings.Cut(sink, "://")
	if !ok {
		return sink
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		if slash := strings.Index(rest, "/"); slash < 0 || at < slash {
			return scheme + "://*****@" + rest[at+1:]
		}
	}
	return sink
}
