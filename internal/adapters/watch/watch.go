// Package watch reloads the reference library when its data file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/motion/pkg/logger"
)

const defaultDebounce = 250 * time.Millisecond

// Handler is called once per burst of changes to the watched file.
type Handler func(ctx context.Context, path string) error

// FileWatcher watches a single file. The parent directory is watched so that
// editors that replace the file by rename are still seen.
type FileWatcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	log      logger.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for path. Start must be called to begin watching.
func New(path string, handler Handler, opts ...Option) (*FileWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &FileWatcher{
		path:     abs,
		handler:  handler,
		debounce: defaultDebounce,
		log:      logger.Get().Named("watch"),
		watcher:  fw,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching and returns once the directory is registered.
// Events are handled until ctx is done or Stop is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = w.watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	go w.loop(ctx)
	return nil
}

// Stop ends the watch and releases the underlying descriptors.
func (w *FileWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *FileWatcher) loop(ctx context.Context) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !relevant(ev.Op) {
				continue
			}
			w.log.Debug(ctx, "data file changed", logger.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "watcher error", logger.Error(err))
		case <-fire:
			fire = nil
			if err := w.handler(ctx, w.path); err != nil {
				w.log.Error(ctx, "reload failed", logger.String("path", w.path), logger.Error(err))
			}
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
