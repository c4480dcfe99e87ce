package values

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/config"
	"github.com/dshills/mentions/internal/logging"
)

// ReloadFunc receives each rebuilt registry. It runs on the watcher's
// goroutine; hosts hand the registry to their own event loop.
type ReloadFunc func(*trigger.Registry)

// Watcher rebuilds the registry when any source file changes.
//
// It watches the directories holding the files rather than the files
// themselves, so editors that save by rename are seen. Bursts of changes
// are coalesced into one rebuild.
type Watcher struct {
	fsw      *fsnotify.Watcher
	cfg      *config.Config
	onReload ReloadFunc
	debounce time.Duration
	logger   *logging.Logger
	build    func(context.Context, *config.Config) (*trigger.Registry, error)

	files map[string]bool

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for rebuild failures.
func WithWatchLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher starts watching the files named by cfg's triggers.
func NewWatcher(cfg *config.Config, onReload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		cfg:      cfg,
		onReload: onReload,
		debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		logger:   logging.Nop(),
		build:    Build,
		files:    make(map[string]bool),
		closeCh:  make(chan struct{}),
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	if w.debounce <= 0 {
		w.debounce = 200 * time.Millisecond
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("values.watcher")

	dirs := make(map[string]bool)
	for _, spec := range cfg.Triggers {
		for _, f := range spec.Files() {
			abs, err := filepath.Abs(f)
			if err != nil {
				w.cancel()
				_ = fsw.Close()
				return nil, err
			}
			w.files[abs] = true
			dirs[filepath.Dir(abs)] = true
		}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			w.cancel()
			_ = fsw.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Files returns the watched source files, sorted.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Close stops the watcher. A pending rebuild is dropped and a running one
// is cancelled; Close returns after it finishes, and no reload is delivered
// afterwards. Closing twice is a no-op.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.closeCh)
	w.cancel()
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.WithField("path", ev.Name).Debug("source changed: %s", ev.Op)
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.rebuild)
}

func (w *Watcher) rebuild() {
	// Add under mu so it cannot race the Wait in Close.
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	reg, err := w.build(w.ctx, w.cfg)
	if err != nil {
		if w.ctx.Err() == nil {
			w.logger.Warn("rebuild failed, keeping previous values: %v", err)
		}
		return
	}
	if w.ctx.Err() != nil || w.onReload == nil {
		return
	}
	w.logger.Info("values reloaded for %d triggers", reg.Len())
	w.onReload(reg)
}
