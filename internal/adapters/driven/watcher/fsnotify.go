// Package watcher provides a file system watcher backed by fsnotify.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultQuietPeriod is how long a file must stay unchanged before its
// event is emitted. A PDF being copied produces many writes.
const DefaultQuietPeriod = 500 * time.Millisecond

// Watcher emits debounced events for files with watched extensions.
type Watcher struct {
	extensions []string
	quiet      time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithExtensions sets the watched file extensions, e.g. ".pdf".
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		if len(exts) > 0 {
			w.extensions = exts
		}
	}
}

// WithQuietPeriod sets the debounce window.
func WithQuietPeriod(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.quiet = d
		}
	}
}

// New creates a watcher for PDF files.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		extensions: []string{".pdf"},
		quiet:      DefaultQuietPeriod,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts monitoring dir. The channel is closed after ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan driven.FileEvent, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	events := make(chan driven.FileEvent, 16)
	d := newDebouncer(w.quiet, events)

	go func() {
		defer close(events)
		defer d.stop()
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !w.isWatched(event.Name) {
					continue
				}
				typ, ok := eventType(event.Op)
				if !ok {
					continue
				}
				d.add(ctx, driven.FileEvent{Path: event.Name, Type: typ})
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher error on %s: %v", dir, err)
			}
		}
	}()

	return events, nil
}

func eventType(op fsnotify.Op) (driven.FileEventType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return driven.FileCreated, true
	case op.Has(fsnotify.Write):
		return driven.FileModified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return driven.FileRemoved, true
	default:
		return "", false
	}
}

func (w *Watcher) isWatched(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// debouncer delays events per path until the path has been quiet.
// A created file stays "created" through the writes that follow.
type debouncer struct {
	quiet time.Duration
	out   chan<- driven.FileEvent

	mu      sync.Mutex
	pending map[string]*pendingEvent
	wg      sync.WaitGroup
	stopped bool
}

type pendingEvent struct {
	event driven.FileEvent
	timer *time.Timer
}

func newDebouncer(quiet time.Duration, out chan<- driven.FileEvent) *debouncer {
	return &debouncer{
		quiet:   quiet,
		out:     out,
		pending: make(map[string]*pendingEvent),
	}
}

func (d *debouncer) add(ctx context.Context, ev driven.FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if p, ok := d.pending[ev.Path]; ok {
		if !(p.event.Type == driven.FileCreated && ev.Type == driven.FileModified) {
			p.event.Type = ev.Type
		}
		// A timer that already fired delivers the updated event itself.
		if p.timer.Stop() {
			p.timer.Reset(d.quiet)
		}
		return
	}

	p := &pendingEvent{event: ev}
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.quiet, func() {
		defer d.wg.Done()
		d.fire(ctx, ev.Path)
	})
	d.pending[ev.Path] = p
}

func (d *debouncer) fire(ctx context.Context, path string) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if ok {
		delete(d.pending, path)
	}
	stopped := d.stopped
	d.mu.Unlock()

	if !ok || stopped {
		return
	}
	select {
	case d.out <- p.event:
	case <-ctx.Done():
	}
}

// stop cancels pending timers and waits for running ones, so the output
// channel can be closed safely afterwards.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	for path, p := range d.pending {
		if p.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, path)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
