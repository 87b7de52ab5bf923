// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package watch observes shader source files for content changes.
//
// A Watcher watches the parent directory of every registered file and
// filters by file name, so editors that save by writing a temporary file
// and renaming it over the original are still observed. Events are queued
// in a bounded, deduplicating queue that the consumer drains from its own
// loop with TryReceive or Drain; the consumer never blocks.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/shaderlab/internal/logx"
)

// DefaultCapacity is the queue capacity used when none is configured.
const DefaultCapacity = 64

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("watch: watcher closed")

// Event reports a content change of a registered file.
type Event struct {
	// Path is the cleaned absolute path of the file.
	Path string

	// Op is the underlying file system operation (Write or Create).
	Op fsnotify.Op
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithCapacity bounds the number of pending events. Values below 1 are
// ignored.
func WithCapacity(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.capacity = n
		}
	}
}

// Watcher delivers change events for a set of files.
type Watcher struct {
	fs       *fsnotify.Watcher
	capacity int

	mu      sync.Mutex
	files   map[string]struct{}
	dirs    map[string]struct{}
	queue   []Event
	pending map[string]struct{}
	dropped int
	errs    int
	lastErr error
	closed  bool

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts watching path. A missing or unreadable path is an error.
func New(path string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		capacity: DefaultCapacity,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.Add(path); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Add registers another file on the same watcher.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("watch %q: is a directory", path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	dir := filepath.Dir(abs)
	if _, ok := w.dirs[dir]; !ok {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %q: %w", path, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.files[abs] = struct{}{}
	logx.Logger().Info("watch: watching", "path", abs)
	return nil
}

// Paths returns the registered files, sorted.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.errs++
			w.lastErr = err
			w.mu.Unlock()
			logx.Logger().Warn("watch: watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	// Chmod, Remove and Rename-away carry no new content.
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	name := filepath.Clean(ev.Name)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[name]; !ok {
		return
	}
	w.enqueue(Event{Path: name, Op: ev.Op})
}

// enqueue must be called with mu held.
func (w *Watcher) enqueue(ev Event) {
	if _, dup := w.pending[ev.Path]; dup {
		return
	}
	if len(w.queue) >= w.capacity {
		w.dropped++
		logx.Logger().Debug("watch: queue full, event dropped", "path", ev.Path)
		return
	}
	w.pending[ev.Path] = struct{}{}
	w.queue = append(w.queue, ev)
}

// TryReceive pops the oldest pending event without blocking.
func (w *Watcher) TryReceive() (Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return Event{}, false
	}
	ev := w.queue[0]
	w.queue[0] = Event{}
	w.queue = w.queue[1:]
	delete(w.pending, ev.Path)
	return ev, true
}

// Drain removes and returns every pending event.
func (w *Watcher) Drain() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return nil
	}
	out := w.queue
	w.queue = nil
	clear(w.pending)
	return out
}

// Len returns the number of pending events.
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Dropped returns how many events were discarded because the queue was full.
func (w *Watcher) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Errors returns the number of watcher errors seen and the most recent one.
func (w *Watcher) Errors() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs, w.lastErr
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
