package discovery

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports when the media directory has settled after PNG changes,
// so the UI can rescan without polling. Bursts of events (batch copies,
// editors writing in chunks) collapse into a single notification.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	debounce time.Duration
	logger   *zap.Logger

	events chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher watches mediaDir for PNG changes. The caller decides whether a
// failure here is fatal; live refresh is optional everywhere it is used.
func NewWatcher(mediaDir string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(mediaDir); err != nil {
		if cerr := fsw.Close(); cerr != nil {
			logger.Warn("failed to close media watcher", zap.Error(cerr))
		}
		return nil, err
	}

	return &Watcher{
		fsw:      fsw,
		dir:      mediaDir,
		debounce: 500 * time.Millisecond,
		logger:   logger,
		events:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Events delivers one value per settled burst of media changes. The channel
// is closed once the watcher stops.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Start launches the event loop. Non-blocking.
func (w *Watcher) Start() {
	go w.run()
}

// Close stops the loop and releases the underlying watcher.
func (w *Watcher) Close() {
	close(w.stopCh)
	<-w.doneCh
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("failed to close media watcher", zap.Error(err))
	}
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	defer close(w.events)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var pending bool
	var lastEvent time.Time

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !qualifies(event) {
				continue
			}
			pending = true
			lastEvent = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("media watcher error", zap.String("dir", w.dir), zap.Error(err))

		case <-ticker.C:
			if !pending || time.Since(lastEvent) < w.debounce {
				continue
			}
			pending = false
			select {
			case w.events <- struct{}{}:
			default:
				// A notification is already queued; one rescan covers both.
			}
		}
	}
}

func qualifies(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".png") {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
