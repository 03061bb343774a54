// Package watch turns a directory into a drop folder: envelope files created
// in it are extracted as soon as they settle.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/bave/unp7m/internal/extract"
)

// DefaultDebounce is how long a file must stay quiet before it's extracted.
const DefaultDebounce = 500 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period that closes a batch.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithHandler sets a function that receives every extraction event.
func WithHandler(fn func(extract.Event)) Option {
	return func(w *Watcher) {
		w.handler = fn
	}
}

// Watcher feeds files dropped into watched directories to an Extractor.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	extractor *extract.Extractor
	logger    *slog.Logger
	handler   func(extract.Event)
	debounce  time.Duration

	dirs []string
}

// New creates a Watcher that hands settled files to ex.
func New(ex *extract.Extractor, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher; %w", err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		extractor: ex,
		logger:    slog.Default(),
		debounce:  DefaultDebounce,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Add starts watching dir. Subdirectories are not watched, which keeps the
// output directory created inside dir out of the picture.
func (w *Watcher) Add(dir string) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path; %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("failed to stat path; %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absPath)
	}

	if err := w.fsWatcher.Add(absPath); err != nil {
		return fmt.Errorf("failed to watch %q; %w", absPath, err)
	}

	w.dirs = append(w.dirs, absPath)
	w.logger.Info("watching directory", "path", absPath)

	return nil
}

// Scan extracts the envelope files already present in the watched
// directories.
func (w *Watcher) Scan(ctx context.Context) *extract.Summary {
	paths, err := extract.Expand(afero.NewOsFs(), w.dirs)
	if err != nil {
		w.logger.Warn("failed to scan watched directories", "error", err)
		return nil
	}

	return w.extractor.Run(ctx, paths, w.handler)
}

// Run processes filesystem events until ctx is done, then releases the
// underlying watcher. Files are collected until no new event arrives for the
// debounce period and then extracted as one batch.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.Close() }()

	var (
		pending = make(map[string]struct{})
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fsnotify error", "error", err)

		case <-fire:
			fire = nil
			w.flush(ctx, pending)
			pending = make(map[string]struct{})
		}
	}
}

// Close releases the underlying watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// relevant reports whether an event can introduce a new envelope file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return w.extractor.Matches(event.Name)
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	summary := w.extractor.Run(ctx, paths, w.handler)
	if summary != nil {
		w.logger.Debug("drop batch done", "batch", summary.BatchID, "files", summary.Total)
	}
}
