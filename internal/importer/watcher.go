package importer

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the import directory and imports new or changed files.
// Write events are debounced so a file is imported once it stops changing.
type Watcher struct {
	dir        string
	extensions []string
	importer   *Importer
	debounce   time.Duration
	watcher    *fsnotify.Watcher

	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	stopOnce    sync.Once
	logger      *zap.Logger // optional
}

// NewWatcher creates a watcher over dir. extensions filters which files are
// imported (empty = all supported).
func NewWatcher(dir string, extensions []string, im *Importer, logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:         dir,
		extensions:  extensions,
		importer:    im,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Start watches the import directory until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return err
	}
	if w.logger != nil {
		w.logger.Info("watching import directory", zap.String("dir", w.dir))
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					w.scheduleImport(ctx, event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if w.logger != nil {
					w.logger.Warn("watch error", zap.Error(err))
				}
			}
		}
	}()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

func (w *Watcher) scheduleImport(ctx context.Context, path string) {
	if !w.matches(path) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.debounceMap[path]; ok {
		timer.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()

		n, err := w.importer.ImportFile(ctx, path)
		if w.logger == nil {
			return
		}
		if err != nil {
			w.logger.Error("import failed", zap.String("path", path), zap.Error(err))
			return
		}
		w.logger.Info("file imported", zap.String("path", path), zap.Int("records", n))
	})
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range w.extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
