package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultReloadDelay debounces bursts of writes from editors.
const DefaultReloadDelay = 500 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path   string
	delay  time.Duration
	logger zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for one config file.
func NewWatcher(path string, logger zerolog.Logger) *Watcher {
	return &Watcher{
		path:   filepath.Clean(path),
		delay:  DefaultReloadDelay,
		logger: logger.With().Str("component", "config-watcher").Logger(),
	}
}

// SetDelay overrides the debounce delay.
func (w *Watcher) SetDelay(d time.Duration) {
	w.delay = d
}

// Watch starts watching the file and calls reloadFn with every valid new
// config. Invalid files are logged and skipped. The parent directory is
// watched so editors that replace the file by rename are seen.
func (w *Watcher) Watch(ctx context.Context, reloadFn func(*Config) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	w.mu.Lock()
	w.watcher = watcher
	w.mu.Unlock()

	go w.processEvents(ctx, watcher, reloadFn)

	w.logger.Info().Str("path", w.path).Msg("Started watching config")
	return nil
}

// processEvents processes file system events and triggers reloads.
func (w *Watcher) processEvents(ctx context.Context, watcher *fsnotify.Watcher, reloadFn func(*Config) error) {
	var reloadTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			_ = watcher.Close()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Config file changed")

			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(w.delay, func() {
				if err := w.triggerReload(reloadFn); err != nil {
					w.logger.Error().Err(err).Msg("Failed to reload config")
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) triggerReload(reloadFn func(*Config) error) error {
	cfg, err := Load(w.path)
	if err != nil {
		return err
	}

	if err := reloadFn(cfg); err != nil {
		return fmt.Errorf("failed to apply reloaded config: %w", err)
	}

	w.logger.Info().Str("path", w.path).Msg("Config reloaded")
	return nil
}

// Stop stops watching for file changes.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		err := w.watcher.Close()
		w.watcher = nil
		return err
	}
	return nil
}
