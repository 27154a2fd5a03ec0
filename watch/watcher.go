// Package watch notices when the CAD tool regenerates the dimension file
// underneath a running server.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches one file for writes. Events are debounced because the
// exporting tool saves in bursts; onChange fires once per burst.
type Watcher struct {
	mu      sync.Mutex
	fw      *fsnotify.Watcher
	path    string
	base    string
	bounce  time.Duration
	timer   *time.Timer
	stopped bool

	onChange func()
	log      *zap.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Watcher for path. The parent directory is watched, not the
// file itself, so atomic rename-over saves are still seen.
func New(path string, debounce time.Duration, onChange func(), log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		path:     path,
		base:     filepath.Base(path),
		bounce:   debounce,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; events are handled in a goroutine.
func (w *Watcher) Start() error {
	if err := w.fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.log.Info("watching dimension file", zap.String("path", w.path))
	go w.run()
	return nil
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("dimension file event", zap.String("op", ev.Op.String()))
			w.schedule()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		case <-w.stopCh:
			return
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.bounce)
		return
	}
	w.timer = time.AfterFunc(w.bounce, func() {
		w.mu.Lock()
		w.timer = nil
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			w.onChange()
		}
	})
}

// Stop shuts the watcher down and waits for the event loop to exit. Safe
// to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	w.fw.Close()
	<-w.doneCh
}
