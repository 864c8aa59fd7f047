package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 50 * time.Millisecond

// Watcher reports changes to a SQLite database file. The parent directory
// is watched so that atomic replacements and the WAL side files are seen.
type Watcher struct {
	watcher *fsnotify.Watcher
	names   map[string]bool
	changes chan struct{}
	done    chan struct{}
	logger  *slog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// WatchDatabase starts watching path. Bursts of writes are coalesced into
// a single notification.
func WatchDatabase(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	base := filepath.Base(abs)
	w := &Watcher{
		watcher: fw,
		names:   map[string]bool{base: true, base + "-wal": true, base + "-journal": true},
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	w.wg.Add(1)
	go w.loop()
	logger.Debug("watching contacts database", "path", abs)
	return w, nil
}

// Changes delivers one value per coalesced burst of changes. Notifications
// are dropped while one is already pending.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var debounce <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.names[filepath.Base(event.Name)] || !databaseChanged(event) {
				continue
			}
			if debounce == nil {
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("contacts watcher error", "error", err)
		case <-debounce:
			debounce = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

func databaseChanged(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) ||
		event.Has(fsnotify.Remove)
}
