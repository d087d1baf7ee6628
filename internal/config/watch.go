package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a parameter file when its modification time moves forward.
// It listens for filesystem events on the file's directory and also polls at
// interval, for filesystems without notification support. Files that fail to
// load or validate are logged and skipped, so a half-written edit never
// reaches the pipeline.
type Watcher struct {
	path     string
	interval time.Duration
	baseline time.Time
	onChange func(Params)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches path. Returns nil if the file cannot be stat'ed.
func NewWatcher(path string, interval time.Duration, onChange func(Params)) *Watcher {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return &Watcher{
		path:     path,
		interval: interval,
		baseline: info.ModTime(),
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching in a background goroutine. onChange is called from
// that goroutine.
func (w *Watcher) Start() {
	notify, err := fsnotify.NewWatcher()
	if err == nil {
		// Editors often replace the file, so watch the directory.
		if err = notify.Add(filepath.Dir(w.path)); err != nil {
			notify.Close()
		}
	}
	if err != nil {
		log.Printf("Config: file events unavailable, polling %s: %v", w.path, err)
		notify = nil
	}
	go w.watchLoop(notify)
}

// Stop ends polling. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) watchLoop(notify *fsnotify.Watcher) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if notify != nil {
		defer notify.Close()
		events, errs = notify.Events, notify.Errors
	}

	name := filepath.Clean(w.path)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == name && ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				w.Check()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("Config: watch error: %v", err)
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check reloads the file if it changed since the last successful check and
// reports whether onChange fired. Not safe for concurrent use with a
// started watcher.
func (w *Watcher) Check() bool {
	info, err := os.Stat(w.path)
	if err != nil || !info.ModTime().After(w.baseline) {
		return false
	}
	w.baseline = info.ModTime()

	p, err := LoadParams(w.path)
	if err != nil {
		log.Printf("Config: ignoring change to %s: %v", w.path, err)
		return false
	}
	log.Printf("Config: reloaded %s", w.path)
	if w.onChange != nil {
		w.onChange(p)
	}
	return true
}
