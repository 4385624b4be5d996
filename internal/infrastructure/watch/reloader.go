// Package watch restarts a mode=dev service when its source files change,
// grounded on giantswarm-muster's internal/reconciler FilesystemDetector
// (fsnotify watcher + per-path debounce timer), adapted from emitting
// change events to a reconciler loop into directly restarting a process
// handle in place.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

const defaultDebounce = 300 * time.Millisecond

// Reloader implements ports.HotReloader.
type Reloader struct {
	process  ports.ProcessRunner
	debounce time.Duration
}

func New(process ports.ProcessRunner) *Reloader {
	return &Reloader{process: process, debounce: defaultDebounce}
}

// Watch starts a recursive fsnotify watch under opts.Cwd and returns a
// ServiceHandle that transparently swaps in a freshly-restarted process
// on every debounced write/create event, until the returned handle's Stop
// is called or ctx is cancelled.
func (r *Reloader) Watch(ctx context.Context, opts ports.ProcessStartOptions, handle ports.ServiceHandle) (ports.ServiceHandle, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return handle, &ports.HotReloadError{Service: opts.ServiceName, Message: err.Error()}
	}
	if err := addRecursive(watcher, opts.Cwd); err != nil {
		_ = watcher.Close()
		return handle, &ports.HotReloadError{Service: opts.ServiceName, Message: err.Error()}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	wrapped := &reloadHandle{current: handle, watcher: watcher, cancel: cancel}

	go r.loop(watchCtx, opts, watcher, wrapped)

	return wrapped, nil
}

func (r *Reloader) loop(ctx context.Context, opts ports.ProcessStartOptions, watcher *fsnotify.Watcher, wrapped *reloadHandle) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(r.debounce, func() {
				r.restart(ctx, opts, wrapped)
			})
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// restart stops the currently-running process and starts a fresh one with
// the same command/env, swapping it into wrapped. A restart failure leaves
// the previous (now-stopped) handle in place rather than losing the
// watcher entirely; the next file change retries.
func (r *Reloader) restart(ctx context.Context, opts ports.ProcessStartOptions, wrapped *reloadHandle) {
	_ = wrapped.current.Stop(ctx)

	next, err := r.process.Start(ctx, opts)
	if err != nil {
		return
	}
	wrapped.swap(next)
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	if root == "" {
		return nil
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// reloadHandle delegates to whichever process handle is currently live,
// guarded by mu since restart() swaps it from the watch goroutine.
type reloadHandle struct {
	mu      sync.Mutex
	current ports.ServiceHandle
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

func (h *reloadHandle) get() ports.ServiceHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *reloadHandle) swap(handle ports.ServiceHandle) {
	h.mu.Lock()
	h.current = handle
	h.mu.Unlock()
}

func (h *reloadHandle) ServiceName() string   { return h.get().ServiceName() }
func (h *reloadHandle) Type() ports.RunnerType { return h.get().Type() }
func (h *reloadHandle) Pid() int               { return h.get().Pid() }
func (h *reloadHandle) ContainerID() string    { return h.get().ContainerID() }
func (h *reloadHandle) Running() bool          { return h.get().Running() }

func (h *reloadHandle) Stop(ctx context.Context) error {
	h.cancel()
	_ = h.watcher.Close()
	return h.get().Stop(ctx)
}
