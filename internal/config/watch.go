package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/anchorvcs/anchor/internal/logger"
)

// Watcher reloads a Config from disk whenever its backing YAML file
// changes, making the latest value available via Current.
type Watcher struct {
	path string

	mu      sync.RWMutex
	current *Config

	fsw *fsnotify.Watcher
	done chan struct{}
}

// WatchFile loads path once and starts watching it for further writes.
// If path is empty, no filesystem watch is installed and Current always
// returns the environment-only configuration.
func WatchFile(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{path: path, current: cfg, done: make(chan struct{})}

	if path == "" {
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	go w.watch()
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Error("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		logger.Error("config reload failed, keeping previous configuration: %v", err)
		return
	}
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()
	logger.Info("reloaded configuration from %s", w.path)
}

// Close stops the underlying filesystem watch.
func (w *Watcher) Close() error {
	close(w.done)
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}
