package casper

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/BrandonKowalski/casper/pkg/casper/internal"
)

// ConfigWatcher reloads a configuration file when it changes on disk.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewConfigWatcher starts watching path. The directory is watched rather
// than the file so replacements by rename are seen too.
func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &ConfigWatcher{
		path:    filepath.Clean(path),
		watcher: watcher,
		logger:  internal.GetInternalLogger(),
	}, nil
}

// Run reloads the file on every write and hands the result to apply. The
// log level of the new configuration takes effect before apply runs. A file
// that fails to load is logged and skipped. Run blocks until ctx ends and
// closes the watcher. Application.Reconfigure is the usual apply.
func (w *ConfigWatcher) Run(ctx context.Context, apply func(Config)) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := LoadConfig(w.path)
			if err != nil {
				w.logger.Warn("Config reload failed", "path", w.path, "error", err)
				continue
			}
			if cfg.LogLevel != "" {
				internal.SetRawLogLevel(cfg.LogLevel)
			}
			w.logger.Info("Config reloaded", "path", w.path)
			if apply != nil {
				apply(cfg)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Config watcher error", "error", err)
		}
	}
}

// Close stops watching.
func (w *ConfigWatcher) Close() error {
	return w.watcher.Close()
}
