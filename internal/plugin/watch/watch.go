// Package watch keeps a registry in sync with a directory of plugin
// manifests.
//
// Every manifest in the directory is registered on LoadAll. After Start,
// writes, creations and removals are debounced per file and applied to the
// registry: a changed manifest overrides its previous definition in place, a
// removed one is unregistered. A manifest that fails to load leaves the
// previous definition registered.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/manifest"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Errors.
var (
	ErrClosed  = errors.New("watch: closed")
	ErrStarted = errors.New("watch: already started")
)

// Watcher reloads plugin manifests from a directory.
type Watcher struct {
	dir      string
	registry *plugin.Registry
	logger   *zap.Logger
	delay    time.Duration
	build    []manifest.Option
	onReload func(path string, err error)

	mu      sync.Mutex
	loaded  map[string]*manifest.Plugin
	pending map[string]*time.Timer
	fsw     *fsnotify.Watcher
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets the per-file debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithBuildOptions passes options to manifest.Load.
func WithBuildOptions(opts ...manifest.Option) Option {
	return func(w *Watcher) {
		w.build = append(w.build, opts...)
	}
}

// WithOnReload registers a callback run after every reload attempt. err is
// nil on success.
func WithOnReload(fn func(path string, err error)) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New creates a watcher for dir. Nothing is loaded until LoadAll or Start.
func New(dir string, registry *plugin.Registry, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		dir:      abs,
		registry: registry,
		logger:   zap.NewNop(),
		delay:    DefaultDebounce,
		loaded:   make(map[string]*manifest.Plugin),
		pending:  make(map[string]*time.Timer),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named("watch")
	return w, nil
}

// LoadAll registers every manifest in the directory. Failures are logged,
// skipped and returned joined.
func (w *Watcher) LoadAll() error {
	files, err := manifest.Files(w.dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", w.dir, err)
	}
	var errs []error
	for _, f := range files {
		if err := w.Reload(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Start begins watching the directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.fsw != nil {
		return ErrStarted
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop(fsw)
	w.logger.Info("watching plugins", zap.String("dir", w.dir))
	return nil
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !manifest.IsManifest(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			w.schedule(ev.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// schedule debounces a reload of path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.delay)
		return
	}
	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.fire(path)
	})
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	if _, ok := w.pending[path]; !ok || w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	_ = w.Reload(path)
}

// Flush runs every pending reload now.
func (w *Watcher) Flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p, t := range w.pending {
		t.Stop()
		paths = append(paths, p)
	}
	w.mu.Unlock()

	sort.Strings(paths)
	for _, p := range paths {
		w.fire(p)
	}
}

// Reload applies the current state of the manifest at path to the registry.
func (w *Watcher) Reload(path string) (err error) {
	defer func() {
		if w.onReload != nil {
			w.onReload(path, err)
		}
	}()

	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		w.remove(path)
		return nil
	}

	p, err := manifest.Load(path, w.build...)
	if err != nil {
		w.logger.Warn("plugin load failed", zap.String("path", path), zap.Error(err))
		return err
	}

	w.mu.Lock()
	old := w.loaded[path]
	w.loaded[path] = p
	w.mu.Unlock()

	w.registry.Register(p.Definition)
	if old != nil {
		if old.Definition.Name != p.Definition.Name {
			w.registry.Unregister(old.Definition.Name)
		}
		_ = old.Close()
	}
	w.logger.Info("plugin loaded", zap.String("plugin", p.Definition.Name), zap.String("path", path))
	return nil
}

func (w *Watcher) remove(path string) {
	w.mu.Lock()
	old, ok := w.loaded[path]
	delete(w.loaded, path)
	w.mu.Unlock()
	if !ok {
		return
	}
	w.registry.Unregister(old.Definition.Name)
	_ = old.Close()
	w.logger.Info("plugin removed", zap.String("plugin", old.Definition.Name), zap.String("path", path))
}

// Loaded returns the names of the plugins loaded from the directory, sorted.
func (w *Watcher) Loaded() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.loaded))
	for _, p := range w.loaded {
		out = append(out, p.Definition.Name)
	}
	sort.Strings(out)
	return out
}

// Close stops watching and releases every loaded script. Registered
// definitions stay in the registry; their scripted actions fail with
// script.ErrClosed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
	fsw := w.fsw
	w.mu.Unlock()

	w.wg.Wait()

	var err error
	if fsw != nil {
		err = fsw.Close()
	}

	w.mu.Lock()
	for _, p := range w.loaded {
		_ = p.Close()
	}
	w.mu.Unlock()
	return err
}
