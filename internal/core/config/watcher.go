package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/hay-kot/kpi/internal/core/logging"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk. The parent
// directory is watched so editors that replace the file by rename are seen.
type Watcher struct {
	path     string
	dataDir  string
	watcher  *fsnotify.Watcher
	onReload func(*Config)
	onError  func(error)
	debounce time.Duration
	log      zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for configPath. onReload receives every
// successfully loaded config; onError receives load failures, and the
// previous config stays in effect.
func NewWatcher(configPath, dataDir string, onReload func(*Config), onError func(error), log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(filepath.Dir(configPath)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	if onError == nil {
		onError = func(error) {}
	}

	return &Watcher{
		path:     filepath.Clean(configPath),
		dataDir:  dataDir,
		watcher:  fw,
		onReload: onReload,
		onError:  onError,
		debounce: watchDebounce,
		log:      logging.Component(log, "config-watcher"),
	}, nil
}

// Run processes file events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.log.Debug().Str("op", event.Op.String()).Msg("config file changed")
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path, w.dataDir)
	if err != nil {
		w.log.Warn().Err(err).Msg("config reload failed, keeping previous config")
		w.onError(err)
		return
	}

	w.log.Info().Str("path", w.path).Msg("config reloaded")
	w.onReload(cfg)
}
