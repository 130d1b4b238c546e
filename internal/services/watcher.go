package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 500 * time.Millisecond

// DatasetWatcher reloads the analytics engine when the CSV file changes on
// disk. Events are debounced so editors that write in several steps trigger
// a single reload.
type DatasetWatcher struct {
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	analytics *Analytics
	path      string
	logger    *slog.Logger
	pending   time.Time
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewDatasetWatcher(analytics *Analytics, path string, logger *slog.Logger) (*DatasetWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &DatasetWatcher{
		watcher:   watcher,
		analytics: analytics,
		path:      path,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start begins watching the dataset's directory. Non-blocking.
func (dw *DatasetWatcher) Start(ctx context.Context) error {
	dw.mu.Lock()
	if dw.running {
		dw.mu.Unlock()
		return nil
	}
	dw.running = true
	dw.mu.Unlock()

	// Watch the directory, not the file: writers that replace the file
	// (rename-over) would otherwise detach the watch.
	dir := filepath.Dir(dw.path)
	if err := dw.watcher.Add(dir); err != nil {
		return err
	}
	dw.logger.Info("watching dataset", "path", dw.path)

	go dw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the run loop to exit.
func (dw *DatasetWatcher) Stop() {
	dw.mu.Lock()
	if !dw.running {
		dw.mu.Unlock()
		return
	}
	dw.running = false
	dw.mu.Unlock()

	close(dw.stopCh)
	<-dw.doneCh

	if err := dw.watcher.Close(); err != nil {
		dw.logger.Error("close watcher", "error", err)
	}
}

func (dw *DatasetWatcher) run(ctx context.Context) {
	defer close(dw.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-dw.stopCh:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handleEvent(event)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Error("watch error", "error", err)

		case <-ticker.C:
			dw.flushPending(ctx)
		}
	}
}

func (dw *DatasetWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(dw.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	dw.mu.Lock()
	dw.pending = time.Now()
	dw.mu.Unlock()
}

func (dw *DatasetWatcher) flushPending(ctx context.Context) {
	dw.mu.Lock()
	if dw.pending.IsZero() || time.Since(dw.pending) < debounceWindow {
		dw.mu.Unlock()
		return
	}
	dw.pending = time.Time{}
	dw.mu.Unlock()

	dw.logger.Info("dataset changed, reloading", "path", dw.path)
	if err := dw.analytics.LoadFromCSV(ctx, dw.path); err != nil {
		dw.logger.Error("reload failed", "path", dw.path, "error", err)
		return
	}
	dw.analytics.NotifyReload()
}
