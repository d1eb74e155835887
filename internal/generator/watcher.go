package generator

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/verdantops/ecodesk/internal/models"
	"github.com/verdantops/ecodesk/internal/websocket"
)

// ManifestWatcher watches the route manifest for on-disk changes and
// notifies connected admin consoles, so a freshly mounted or externally
// edited manifest shows up without a page reload.
type ManifestWatcher struct {
	editor        *ManifestEditor
	hub           *websocket.Hub
	watcher       *fsnotify.Watcher
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewManifestWatcher creates a watcher over the given editor's manifest.
func NewManifestWatcher(editor *ManifestEditor, hub *websocket.Hub) *ManifestWatcher {
	return &ManifestWatcher{
		editor:        editor,
		hub:           hub,
		debounceDelay: 500 * time.Millisecond,
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching the manifest's directory. The directory is created
// if missing since a watch target must exist. The parent directory is
// watched rather than the file itself because the editor replaces the file
// by rename, which would invalidate a file-level watch.
func (w *ManifestWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	dir := filepath.Dir(w.editor.Path())
	if err := os.MkdirAll(dir, 0755); err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	log.Printf("Manifest watcher started for %s", w.editor.Path())

	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *ManifestWatcher) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *ManifestWatcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Manifest watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

// handleEvent reacts to events touching the manifest file itself. Create
// counts as much as Write because atomic replacement surfaces as a rename
// into place. Everything else in the directory is ignored.
func (w *ManifestWatcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if filepath.Base(event.Name) != filepath.Base(w.editor.Path()) {
		return
	}

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.notify)
	w.mu.Unlock()
}

func (w *ManifestWatcher) notify() {
	entries, err := w.editor.Entries()
	if err != nil {
		log.Printf("Manifest reload failed: %v", err)
		return
	}
	w.hub.BroadcastJSON(models.ManifestUpdate{
		Event:   "manifest-updated",
		Entries: len(entries),
	})
}
