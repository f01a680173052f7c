package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DirWatcher polls the YAML files in a directory and triggers a callback
// when any of them changes. Polling keeps the dependency surface flat;
// the tables change rarely and a few seconds of latency is fine.
type DirWatcher struct {
	Dir      string
	Interval time.Duration

	log       *slog.Logger
	onChange  func(path string)
	stopCh    chan struct{}
	lastMTime map[string]time.Time
}

// NewDirWatcher creates a watcher over dir's *.yaml files.
func NewDirWatcher(dir string, interval time.Duration, log *slog.Logger, onChange func(string)) *DirWatcher {
	return &DirWatcher{
		Dir:       dir,
		Interval:  interval,
		log:       log,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start begins polling in a goroutine.
func (w *DirWatcher) Start() {
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		// prime the mtime cache so startup does not fire callbacks
		w.scan(true)
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher.
func (w *DirWatcher) Stop() {
	close(w.stopCh)
}

func (w *DirWatcher) scan(prime bool) {
	paths, err := filepath.Glob(filepath.Join(w.Dir, "*.yaml"))
	if err != nil {
		return
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			// file vanished between glob and stat; keep going
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		if !ok {
			w.lastMTime[p] = mt
			if !prime && w.onChange != nil {
				// new file counts as a change
				w.fire(p)
			}
			continue
		}
		if mt.After(last) {
			w.lastMTime[p] = mt
			if !prime {
				w.fire(p)
			}
		}
	}
}

func (w *DirWatcher) fire(path string) {
	if w.log != nil {
		w.log.Info("config file changed", "path", path)
	}
	if w.onChange != nil {
		w.onChange(path)
	}
}
