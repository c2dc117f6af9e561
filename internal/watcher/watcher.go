// file: internal/watcher/watcher.go
// version: 2.1.0
// guid: cdec0032-e739-44ef-829b-e9f47447bcdf

package watcher

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// seedExtensions are the file extensions we care about.
var seedExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// DefaultDebounce is the default debounce period. Editors and sync
// tools tend to rewrite files in bursts; one reimport per burst is
// enough.
const DefaultDebounce = 2 * time.Second

// Callback is invoked after the debounce period with the seed file path.
type Callback func(seedPath string)

// Watcher monitors a seed file for changes and invokes a callback after
// a debounce period. The parent directory is watched rather than the
// file itself, because most editors replace the file via rename.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	seedPath  string
	debounce  time.Duration
	callback  Callback
	stop      chan struct{}
	stopped   chan struct{}
	mu        sync.Mutex
	timer     *time.Timer
	running   bool
}

// New creates a Watcher. The callback is called with the seed path after
// events settle for the debounce duration. Pass 0 for debounce to use
// DefaultDebounce.
func New(callback Callback, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		debounce: debounce,
		callback: callback,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins watching the seed file. It is safe to call only once.
func (w *Watcher) Start(seedPath string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsWatcher = fsw
	w.seedPath = seedPath

	if err := fsw.Add(filepath.Dir(seedPath)); err != nil {
		fsw.Close()
		return err
	}

	go w.eventLoop()
	return nil
}

// Stop gracefully shuts down the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stop)
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}
	<-w.stopped

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
}

func (w *Watcher) eventLoop() {
	defer close(w.stopped)

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[ERROR] watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	relevant := event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) != 0
	if !relevant {
		return
	}
	// Only the watched seed file matters; sibling files in the same
	// directory are ignored.
	if filepath.Base(event.Name) != filepath.Base(w.seedPath) {
		return
	}
	if !IsSeedFile(event.Name) {
		return
	}

	w.scheduleReimport()
}

func (w *Watcher) scheduleReimport() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.timer = nil
		w.mu.Unlock()

		log.Printf("[INFO] watcher: seed file changed, triggering reimport of %s", w.seedPath)
		if w.callback != nil {
			w.callback(w.seedPath)
		}
	})
}

// IsSeedFile reports whether name has a recognized seed file extension.
func IsSeedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return seedExtensions[ext]
}
