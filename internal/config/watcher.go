package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 300 * time.Millisecond

// Watcher reloads the config file when it changes and hands every valid
// result to the callback. Invalid files are logged and ignored.
type Watcher struct {
	path     string
	onChange func(*Config)
	logger   *zap.Logger
	watcher  *fsnotify.Watcher

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// Watch starts watching path. The parent directory is watched so that
// editors replacing the file are noticed too.
func Watch(path string, logger *zap.Logger, onChange func(*Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		logger:   logger,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()

	logger.Info("watching configuration file", zap.String("path", abs))
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	cfg, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("ignoring invalid configuration after change", zap.Error(err))
		return
	}
	w.logger.Info("configuration reloaded", zap.String("path", w.path))
	w.onChange(cfg)
}

// Close stops the watcher.
func (w *Watcher) Close() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.done
}
