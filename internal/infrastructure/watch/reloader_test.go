package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

type countingHandle struct {
	stopped int32
}

func (h *countingHandle) ServiceName() string    { return "api" }
func (h *countingHandle) Type() ports.RunnerType { return ports.RunnerProcess }
func (h *countingHandle) Pid() int               { return 1 }
func (h *countingHandle) ContainerID() string    { return "" }
func (h *countingHandle) Running() bool          { return atomic.LoadInt32(&h.stopped) == 0 }
func (h *countingHandle) Stop(ctx context.Context) error {
	atomic.AddInt32(&h.stopped, 1)
	return nil
}

type countingProcessRunner struct {
	starts int32
}

func (r *countingProcessRunner) Start(ctx context.Context, opts ports.ProcessStartOptions) (ports.ServiceHandle, error) {
	atomic.AddInt32(&r.starts, 1)
	return &countingHandle{}, nil
}

func TestReloader_RestartsOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	if err := os.WriteFile(file, []byte("package main"), 0644); err != nil {
		t.Fatal(err)
	}

	proc := &countingProcessRunner{}
	r := New(proc)
	r.debounce = 20 * time.Millisecond

	initial := &countingHandle{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle, err := r.Watch(ctx, ports.ProcessStartOptions{ServiceName: "api", Cwd: dir}, initial)
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	if err := os.WriteFile(file, []byte("package main // changed"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&proc.starts) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for restart")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if initial.Running() {
		t.Error("expected the original handle to have been stopped")
	}
	if err := handle.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
}

func TestReloader_StopTearsDownWatcher(t *testing.T) {
	dir := t.TempDir()
	proc := &countingProcessRunner{}
	r := New(proc)

	initial := &countingHandle{}
	handle, err := r.Watch(context.Background(), ports.ProcessStartOptions{ServiceName: "api", Cwd: dir}, initial)
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	if err := handle.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if initial.Running() {
		t.Error("expected Stop() to stop the wrapped handle")
	}
}
