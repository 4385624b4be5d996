// Package container launches a single named container via the local docker
// CLI, grounded on the teacher's docker orchestrator's exec.Command/
// CombinedOutput idiom (internal/infrastructure/docker/orchestrator.go),
// generalized to spec.md §4.4's single-container runner contract.
package container

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
)

const defaultStopTimeoutSeconds = 10

// Runner starts services as single standalone containers.
type Runner struct {
	BinPath string // default "docker"
}

// New builds a Runner against the given container engine binary (e.g.
// "docker", "podman"). An empty bin defaults to "docker".
func New(bin string) *Runner {
	if bin == "" {
		bin = "docker"
	}
	return &Runner{BinPath: bin}
}

func (r *Runner) bin() string {
	if r.BinPath == "" {
		return "docker"
	}
	return r.BinPath
}

type handle struct {
	bin           string
	containerName string
	serviceName   string
	containerID   string
	stopTimeout   int

	mu      sync.Mutex
	running bool
	follower *exec.Cmd
}

func (h *handle) ServiceName() string       { return h.serviceName }
func (h *handle) Type() ports.RunnerType     { return ports.RunnerContainer }
func (h *handle) Pid() int                   { return 0 }
func (h *handle) ContainerID() string        { return h.containerID }

func (h *handle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *handle) Stop(ctx context.Context) error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	h.running = false
	h.mu.Unlock()

	timeout := h.stopTimeout
	if timeout <= 0 {
		timeout = defaultStopTimeoutSeconds
	}

	stopCmd := exec.Command(h.bin, "stop", "-t", strconv.Itoa(timeout), h.containerName)
	_ = stopCmd.Run() // tolerant of already-stopped container

	rmCmd := exec.Command(h.bin, "rm", h.containerName)
	_ = rmCmd.Run() // tolerant of already-removed container

	if h.follower != nil && h.follower.Process != nil {
		_ = h.follower.Process.Kill()
	}

	return nil
}

// Start runs `docker run -d --name <name> --network <net> ...` and spawns a
// `docker logs -f` follower feeding onOutput.
func (r *Runner) Start(ctx context.Context, opts ports.ContainerStartOptions) (ports.ServiceHandle, error) {
	containerName := config.ContainerName(opts.WorkspaceName, opts.ServiceName)

	args := []string{"run", "-d", "--name", containerName, "--network", opts.NetworkName}
	for _, bind := range opts.Binds {
		args = append(args, "-v", bind)
	}
	if opts.WorkingDir != "" {
		args = append(args, "-w", opts.WorkingDir)
	}
	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, opts.Image)
	args = append(args, opts.Command...)

	cmd := exec.CommandContext(ctx, r.bin(), args...)
	out, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		return nil, &ports.ContainerRunnerError{Service: opts.ServiceName, Message: fmt.Sprintf("docker run failed: %v: %s", err, stderr)}
	}
	containerID := firstLine(string(out))

	h := &handle{
		bin:           r.bin(),
		containerName: containerName,
		serviceName:   opts.ServiceName,
		containerID:   containerID,
		stopTimeout:   opts.StopTimeout,
		running:       true,
	}

	follower := exec.Command(r.bin(), "logs", "-f", containerID)
	stdout, _ := follower.StdoutPipe()
	stderr, _ := follower.StderrPipe()
	if err := follower.Start(); err == nil {
		h.follower = follower
		var wg sync.WaitGroup
		wg.Add(2)
		go streamLines(&wg, opts.ServiceName, "stdout", stdout, opts.OnOutput)
		go streamLines(&wg, opts.ServiceName, "stderr", stderr, opts.OnOutput)
	}

	return h, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func streamLines(wg *sync.WaitGroup, service, stream string, r io.Reader, onOutput ports.OutputFunc) {
	defer wg.Done()
	if r == nil {
		return
	}
	if onOutput == nil {
		_, _ = io.Copy(io.Discard, r)
		return
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		onOutput(ports.OutputLine{
			Service:   service,
			Stream:    stream,
			Text:      scanner.Text(),
			Timestamp: time.Now(),
		})
	}
}
