package orchestrator

import (
	"context"
	"os"
	"os/exec"
	"syscall"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

// hydratedProcessHandle recovers just enough of a ServiceHandle's contract
// to stop a process left running across invocations — the orchestrator
// process that started it is gone, so all it carries is the recorded pid.
type hydratedProcessHandle struct {
	name string
	pid  int
}

func (h *hydratedProcessHandle) ServiceName() string   { return h.name }
func (h *hydratedProcessHandle) Type() ports.RunnerType { return ports.RunnerProcess }
func (h *hydratedProcessHandle) Pid() int               { return h.pid }
func (h *hydratedProcessHandle) ContainerID() string    { return "" }
func (h *hydratedProcessHandle) Running() bool {
	if h.pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(h.pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func (h *hydratedProcessHandle) Stop(ctx context.Context) error {
	if h.pid <= 0 {
		return nil
	}
	proc, err := os.FindProcess(h.pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return nil
	}
	return nil
}

// hydratedContainerHandle recovers enough of a ServiceHandle to stop and
// remove a container left running across invocations.
type hydratedContainerHandle struct {
	name        string
	containerID string
}

func (h *hydratedContainerHandle) ServiceName() string   { return h.name }
func (h *hydratedContainerHandle) Type() ports.RunnerType { return ports.RunnerContainer }
func (h *hydratedContainerHandle) Pid() int               { return 0 }
func (h *hydratedContainerHandle) ContainerID() string    { return h.containerID }
func (h *hydratedContainerHandle) Running() bool {
	if h.containerID == "" {
		return false
	}
	return exec.Command("docker", "inspect", "-f", "{{.State.Running}}", h.containerID).Run() == nil
}

func (h *hydratedContainerHandle) Stop(ctx context.Context) error {
	if h.containerID == "" {
		return nil
	}
	_ = exec.CommandContext(ctx, "docker", "stop", h.containerID).Run()
	return exec.CommandContext(ctx, "docker", "rm", "-f", h.containerID).Run()
}

// hydratedComposeHandle is a no-op: compose-managed services are torn down
// by composeDown, not by an individual handle.
type hydratedComposeHandle struct {
	name string
}

func (h *hydratedComposeHandle) ServiceName() string    { return h.name }
func (h *hydratedComposeHandle) Type() ports.RunnerType  { return ports.RunnerCompose }
func (h *hydratedComposeHandle) Pid() int                { return 0 }
func (h *hydratedComposeHandle) ContainerID() string     { return "" }
func (h *hydratedComposeHandle) Running() bool           { return true }
func (h *hydratedComposeHandle) Stop(ctx context.Context) error { return nil }

// hydrateHandle reconstructs a stoppable handle from a persisted
// ServiceRuntime record, used both by stale cleanup and by stopWorkspace
// when no in-memory handles are available.
func hydrateHandle(name string, rt ports.ServiceRuntime) ports.ServiceHandle {
	switch rt.Runner {
	case ports.RunnerProcess:
		return &hydratedProcessHandle{name: name, pid: rt.Pid}
	case ports.RunnerContainer:
		return &hydratedContainerHandle{name: name, containerID: rt.ContainerID}
	default:
		return &hydratedComposeHandle{name: name}
	}
}
