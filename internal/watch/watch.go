// Package watch reports changes other processes make to the data file.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tasktrack/internal/debug"
)

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

type fileState struct {
	mtime time.Time
	size  int64
}

// Watcher watches the directory holding one file, so atomic renames onto
// the file are seen.
type Watcher struct {
	path             string
	debounceDuration time.Duration
	onError          func(error)

	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer

	mu      sync.Mutex
	own     fileState
	started bool
	cancel  context.CancelFunc

	changeCh chan struct{}
}

func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:             abs,
		debounceDuration: DefaultDebounceDuration,
		onError:          func(error) {},
		changeCh:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w, nil
}

// Start begins watching. The file itself need not exist yet.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.fsWatcher = fsw
	w.cancel = cancel
	w.started = true
	go w.loop(ctx, fsw.Events, fsw.Errors)
	debug.Log("watching %s", w.path)
	return nil
}

// Stop ends the watch. The change channel stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	w.fsWatcher.Close()
	w.fsWatcher = nil
	w.debouncer.Cancel()
	w.started = false
}

// Changed receives once per debounced change made by someone else.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Acknowledge records the file as it is now. A change that leaves the file
// in the acknowledged state is not reported, which hides the program's own
// saves.
func (w *Watcher) Acknowledge() {
	st, _ := stat(w.path)
	w.mu.Lock()
	w.own = st
	w.mu.Unlock()
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.notify)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) notify() {
	st, err := stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	started := w.started
	own := w.own
	w.mu.Unlock()
	if !started {
		return
	}
	if st == own {
		debug.Log("ignoring own write to %s", w.path)
		return
	}

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{mtime: info.ModTime(), size: info.Size()}, nil
}
