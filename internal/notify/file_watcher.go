package notify

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce coalesces the burst of events an editor or exporter
// produces for one save.
const DefaultDebounce = 250 * time.Millisecond

// FileWatcher calls back when a single file changes. It watches the parent
// directory so atomic replace-by-rename is seen as well as in-place writes.
type FileWatcher struct {
	path     string
	debounce time.Duration
	callback func(path string)
	logger   logrus.FieldLogger

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewFileWatcher creates a watcher for path. A debounce of zero uses
// DefaultDebounce.
func NewFileWatcher(path string, debounce time.Duration, logger logrus.FieldLogger, callback func(path string)) *FileWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		callback: callback,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins watching. Call Stop() to clean up.
func (fw *FileWatcher) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(fw.path)); err != nil {
		_ = w.Close()
		return err
	}
	fw.watcher = w

	go fw.loop()
	fw.logger.WithField("path", fw.path).Info("notify: watching snapshot file")
	return nil
}

// Stop shuts down the watcher and cancels any pending callback.
func (fw *FileWatcher) Stop() {
	if fw.watcher == nil {
		return
	}
	_ = fw.watcher.Close()
	<-fw.done

	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
}

func (fw *FileWatcher) loop() {
	defer close(fw.done)
	for {
		select {
		case evt, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != fw.path {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.schedule()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.WithError(err).Warn("notify: watcher error")
		}
	}
}

func (fw *FileWatcher) schedule() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		if fw.callback != nil {
			fw.callback(fw.path)
		}
	})
}
