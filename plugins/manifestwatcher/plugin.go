// Package manifestwatcher re-runs thumbship when its local manifest changes.
package manifestwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/thumbship/pkg/log"
	"github.com/bft-labs/thumbship/pkg/thumbship"
)

// Plugin watches the manifest's directory and triggers a run when the
// manifest file is written or replaced. Bursts of events are debounced
// into a single trigger.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration

	path     string
	trigger  func()
	logger   thumbship.Logger
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the manifest watcher plugin.
type Config struct {
	// DebounceDelay is the quiet period after the last change before a run
	// is triggered.
	// Default: 500 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 500 * time.Millisecond}
}

// New creates a new manifest watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 500 * time.Millisecond
	}
	return &Plugin{debounceDelay: cfg.DebounceDelay}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "manifestwatcher"
}

// Initialize starts watching. Remote manifests cannot be watched; the
// plugin then logs a warning and stays idle.
func (p *Plugin) Initialize(ctx context.Context, cfg thumbship.PluginConfig) error {
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}

	if cfg.Manifest == "" || strings.Contains(cfg.Manifest, "://") {
		p.logger.Warn("manifest watcher disabled: manifest is not a local file",
			log.String("manifest", cfg.Manifest))
		return nil
	}

	path, err := filepath.Abs(cfg.Manifest)
	if err != nil {
		return fmt.Errorf("resolve manifest path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of
	// writing it in place, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	p.mu.Lock()
	p.path = path
	p.trigger = cfg.Trigger
	p.watcher = watcher
	p.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	p.logger.Info("manifest watcher started", log.String("manifest", path))
	return nil
}

// Shutdown stops the watcher and any pending trigger.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()
	defer p.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceTrigger(ctx)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("manifest watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceTrigger(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.logger.Info("manifest changed, scheduling run", log.String("manifest", p.path))
		p.trigger()
	})
}

// Ensure Plugin implements thumbship.Plugin.
var _ thumbship.Plugin = (*Plugin)(nil)
