package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
)

// ReloadCallback is called when the analytics config file is successfully
// reloaded. If the callback returns an error, it is logged but the watcher
// continues watching.
type ReloadCallback func(cfg *AnalyticsFile) error

// AnalyticsWatcherConfig holds configuration for the AnalyticsWatcher.
type AnalyticsWatcherConfig struct {
	// FilePath is the path to the analytics YAML file to watch
	FilePath string

	// DebounceMillis coalesces multiple file change events within this
	// period into a single reload. Default: 500ms.
	DebounceMillis int
}

// AnalyticsWatcher watches the analytics thresholds file for changes and
// triggers reload callbacks with debouncing to prevent reload storms from
// editor save sequences.
//
// Invalid configs during reload are logged but do not crash the watcher; it
// continues watching with the previous valid config.
type AnalyticsWatcher struct {
	config   AnalyticsWatcherConfig
	callback ReloadCallback
	logger   *logging.Logger
	cancel   context.CancelFunc
	stopped  chan struct{}
	ready    chan struct{}
	mu       sync.Mutex

	debounceTimer *time.Timer
}

// NewAnalyticsWatcher creates a new watcher for the given config file.
func NewAnalyticsWatcher(config AnalyticsWatcherConfig, callback ReloadCallback) (*AnalyticsWatcher, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("FilePath cannot be empty")
	}
	if callback == nil {
		return nil, fmt.Errorf("callback cannot be nil")
	}
	if config.DebounceMillis == 0 {
		config.DebounceMillis = 500
	}

	return &AnalyticsWatcher{
		config:   config,
		callback: callback,
		logger:   logging.GetLogger("config"),
		stopped:  make(chan struct{}),
		ready:    make(chan struct{}),
	}, nil
}

// Start loads the initial config, calls the callback, and begins watching
// for file changes. It returns once the underlying fsnotify watcher is
// fully initialized so changes cannot be missed.
func (w *AnalyticsWatcher) Start(ctx context.Context) error {
	initial, err := LoadAnalyticsFile(w.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to load initial config: %w", err)
	}

	if err := w.callback(initial); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}

	w.logger.Info("loaded initial analytics config from %s", w.config.FilePath)

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.watchLoop(watchCtx)

	select {
	case <-w.ready:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for file watcher to initialize")
	}

	return nil
}

// signalReady safely closes the ready channel exactly once
func (w *AnalyticsWatcher) signalReady() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.ready:
	default:
		close(w.ready)
	}
}

// watchLoop is the main file watching loop
func (w *AnalyticsWatcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)
	defer w.signalReady()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.ErrorWithErr("failed to create file watcher", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.config.FilePath); err != nil {
		w.logger.ErrorWithErr("failed to watch file "+w.config.FilePath, err)
		return
	}

	w.logger.Info("watching %s for changes (debounce: %dms)",
		w.config.FilePath, w.config.DebounceMillis)

	w.signalReady()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("context cancelled, stopping watcher")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Rename and Remove matter for atomic writes: the inode
			// changes, so the watch must be re-added.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				// Small delay to let the replacement complete.
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(w.config.FilePath); err != nil {
					w.logger.Warn("failed to re-add watch after %s: %v", event.Op, err)
				}
			}
			w.handleFileChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.ErrorWithErr("watcher error", err)
		}
	}
}

// handleFileChange debounces by resetting a timer on each event.
func (w *AnalyticsWatcher) handleFileChange(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(
		time.Duration(w.config.DebounceMillis)*time.Millisecond,
		func() {
			w.reloadConfig(ctx)
		},
	)
}

// reloadConfig reloads the config file and calls the callback if
// successful. Invalid configs keep the previous state.
func (w *AnalyticsWatcher) reloadConfig(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	newConfig, err := LoadAnalyticsFile(w.config.FilePath)
	if err != nil {
		w.logger.Warn("failed to reload analytics config (keeping previous): %v", err)
		return
	}

	if err := w.callback(newConfig); err != nil {
		w.logger.Warn("reload callback error (continuing to watch): %v", err)
		return
	}

	w.logger.Info("analytics config reloaded from %s", w.config.FilePath)
}

// Stop gracefully stops the file watcher, waiting up to five seconds for
// the watch loop to exit.
func (w *AnalyticsWatcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}

	select {
	case <-w.stopped:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for watcher to stop")
	}
}
