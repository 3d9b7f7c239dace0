// Package watch reports changes to a template directory, coalescing bursts
// of filesystem events into a single callback.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is the quiet period after the last event before the handler runs.
const DefaultDelay = 250 * time.Millisecond

// Handler receives the de-duplicated paths changed during one burst.
type Handler func(ctx context.Context, paths []string)

// Watcher watches one directory (not recursive).
type Watcher struct {
	fs      *fsnotify.Watcher
	dir     string
	delay   time.Duration
	handler Handler
	logger  *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay. Panics if d <= 0.
func WithDelay(d time.Duration) Option {
	if d <= 0 {
		panic("watch: WithDelay duration must be positive")
	}
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New starts watching dir. Call Run to deliver events.
func New(dir string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		panic("watch: New called with nil handler")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		fs:      fw,
		dir:     dir,
		delay:   DefaultDelay,
		handler: handler,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run delivers debounced changes until ctx is done, then releases the
// underlying watcher. It always returns nil after cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()

	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.delay)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("template watcher error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)

			w.logger.Info("template files changed", zap.Strings("paths", paths))
			w.handler(ctx, paths)
		}
	}
}

// relevant drops chmod-only events, hidden files and editor backups.
func relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".tmp"):
		return false
	}
	return true
}
