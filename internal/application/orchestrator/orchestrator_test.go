package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/application/starter"
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/events"
)

// --- fakes -----------------------------------------------------------

type fakeComposeGen struct {
	fileSet *ports.ComposeFileSet
}

func (f *fakeComposeGen) Generate(cfg *config.WorkspaceConfig, contributions map[string]ports.ComposeContribution) (*ports.ComposeFileSet, error) {
	if f.fileSet != nil {
		return f.fileSet, nil
	}
	return &ports.ComposeFileSet{PerServicePaths: map[string]string{}}, nil
}

type fakeProxyGen struct{}

func (fakeProxyGen) Generate(cfg *config.WorkspaceConfig, registry map[string]string) (*ports.ProxyConfigResult, error) {
	return &ports.ProxyConfigResult{}, nil
}

type fakeHosts struct{ applied []string }

func (f *fakeHosts) GenerateBlock(domains []string) string { return "" }
func (f *fakeHosts) Apply(domains []string) error           { f.applied = domains; return nil }
func (f *fakeHosts) Remove() error                           { return nil }

type fakeTls struct{ calls int }

func (f *fakeTls) TrustCaddyCa(containerName string) error { f.calls++; return nil }

type fakePluginLoader struct{}

func (fakePluginLoader) Load(typeName string) (ports.Plugin, error) { return nil, nil }
func (fakePluginLoader) All(cfg *config.WorkspaceConfig) ([]ports.Plugin, error) {
	return nil, nil
}

type fakeStateStore struct {
	mu     sync.Mutex
	state  *ports.WorkspaceState
	exists bool
}

func (f *fakeStateStore) Load(workspaceDir string) (*ports.WorkspaceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, nil
}
func (f *fakeStateStore) Save(workspaceDir string, st *ports.WorkspaceState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = st
	f.exists = true
	return nil
}
func (f *fakeStateStore) Remove(workspaceDir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = nil
	f.exists = false
	return nil
}
func (f *fakeStateStore) Exists(workspaceDir string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists
}

type fakeComposeRunner struct {
	mu        sync.Mutex
	downCalls int
	downClean []bool
}

func (f *fakeComposeRunner) Up(ctx context.Context, opts ports.ComposeOptions, services []string) error {
	return nil
}
func (f *fakeComposeRunner) Wait(ctx context.Context, opts ports.ComposeWaitOptions) error {
	return nil
}
func (f *fakeComposeRunner) Logs(ctx context.Context, opts ports.ComposeOptions) (ports.ComposeLogHandle, error) {
	return nil, nil
}
func (f *fakeComposeRunner) Ps(ctx context.Context, opts ports.ComposeOptions) ([]ports.ComposeServiceStatus, error) {
	return nil, nil
}
func (f *fakeComposeRunner) Down(ctx context.Context, opts ports.ComposeOptions, clean bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downCalls++
	f.downClean = append(f.downClean, clean)
	return nil
}

type fakeHandle struct {
	name    string
	mu      *sync.Mutex
	stopped *bool
}

func (h *fakeHandle) ServiceName() string    { return h.name }
func (h *fakeHandle) Type() ports.RunnerType  { return ports.RunnerProcess }
func (h *fakeHandle) Pid() int                { return 1234 }
func (h *fakeHandle) ContainerID() string     { return "" }
func (h *fakeHandle) Running() bool           { return true }
func (h *fakeHandle) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.stopped = true
	return nil
}

// fakeProcessRunner records start order and can be told to fail for a
// specific service name.
type fakeProcessRunner struct {
	mu        sync.Mutex
	order     []string
	failFor   string
	stoppedOf map[string]*bool
}

func newFakeProcessRunner() *fakeProcessRunner {
	return &fakeProcessRunner{stoppedOf: map[string]*bool{}}
}

func (f *fakeProcessRunner) Start(ctx context.Context, opts ports.ProcessStartOptions) (ports.ServiceHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, opts.ServiceName)
	if opts.ServiceName == f.failFor {
		return nil, errors.New("boom")
	}
	stopped := false
	f.stoppedOf[opts.ServiceName] = &stopped
	return &fakeHandle{name: opts.ServiceName, mu: &f.mu, stopped: &stopped}, nil
}

type fakeContainerRunner struct{}

func (fakeContainerRunner) Start(ctx context.Context, opts ports.ContainerStartOptions) (ports.ServiceHandle, error) {
	stopped := false
	return &fakeHandle{name: opts.ServiceName, mu: &sync.Mutex{}, stopped: &stopped}, nil
}

type fakeHooks struct{}

func (fakeHooks) ExecuteHook(ctx context.Context, hookName, command string, opts ports.HookExecOptions) (ports.HookResult, error) {
	return ports.HookResult{HookName: hookName}, nil
}

type fakeReadiness struct{}

func (fakeReadiness) WaitForReady(ctx context.Context, opts ports.ReadinessProbeOptions) error {
	return nil
}

// --- test setup --------------------------------------------------------

func writeManifest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "lo1.yaml")
	content := `
version: "1"
name: acme
services:
  db:
    command: "run-db"
  api:
    command: "run-api"
    dependsOn: ["db"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestOrchestrator(process *fakeProcessRunner, composeRunner *fakeComposeRunner, st *fakeStateStore) *Orchestrator {
	svcStarter := starter.New(process, fakeContainerRunner{}, fakeHooks{}, fakeReadiness{}, nil)
	return New(
		&fakeComposeGen{},
		fakeProxyGen{},
		&fakeHosts{},
		&fakeTls{},
		fakePluginLoader{},
		st,
		composeRunner,
		svcStarter,
		events.New(),
	)
}

// --- tests ---------------------------------------------------------

func TestStart_StartsLayersInDAGOrder(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	process := newFakeProcessRunner()
	composeRunner := &fakeComposeRunner{}
	st := &fakeStateStore{}
	o := newTestOrchestrator(process, composeRunner, st)

	result, err := o.Start(context.Background(), StartOptions{ManifestPath: manifest, WorkspaceDir: dir})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if len(result.Handles) != 2 {
		t.Fatalf("got %d handles, want 2", len(result.Handles))
	}

	process.mu.Lock()
	order := append([]string(nil), process.order...)
	process.mu.Unlock()
	if len(order) != 2 || order[0] != "db" || order[1] != "api" {
		t.Errorf("got start order %v, want [db api]", order)
	}
}

func TestStart_LayerFailureStopsAlreadyStartedHandlesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	process := newFakeProcessRunner()
	process.failFor = "api"
	composeRunner := &fakeComposeRunner{}
	st := &fakeStateStore{}
	o := newTestOrchestrator(process, composeRunner, st)

	_, err := o.Start(context.Background(), StartOptions{ManifestPath: manifest, WorkspaceDir: dir})
	if err == nil {
		t.Fatal("expected error from failing layer")
	}

	process.mu.Lock()
	dbStopped := process.stoppedOf["db"]
	process.mu.Unlock()
	if dbStopped == nil || !*dbStopped {
		t.Error("expected already-started handle for db to be stopped after api failed")
	}

	composeRunner.mu.Lock()
	downCalls := composeRunner.downCalls
	composeRunner.mu.Unlock()
	if downCalls == 0 {
		t.Error("expected composeDown to be called during teardown")
	}

	if st.exists {
		t.Error("expected state file to be removed after failed start")
	}
}

func TestStart_StaleStateIsCleanedUpBeforeLoadingConfig(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	process := newFakeProcessRunner()
	composeRunner := &fakeComposeRunner{}
	st := &fakeStateStore{
		exists: true,
		state: &ports.WorkspaceState{
			WorkspaceName: "acme",
			ProjectName:   "lo1-acme",
			WorkspaceDir:  dir,
			Services: map[string]ports.ServiceRuntime{
				"old": {Runner: ports.RunnerProcess, Pid: 99999999},
			},
		},
	}
	o := newTestOrchestrator(process, composeRunner, st)

	_, err := o.Start(context.Background(), StartOptions{ManifestPath: manifest, WorkspaceDir: dir})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	composeRunner.mu.Lock()
	downCalls := composeRunner.downCalls
	downClean := append([]bool(nil), composeRunner.downClean...)
	composeRunner.mu.Unlock()
	if downCalls == 0 {
		t.Fatal("expected composeDown to run during stale cleanup")
	}
	if !downClean[0] {
		t.Error("expected stale cleanup's composeDown to be a clean teardown")
	}
}

func TestStop_NoStateFileIsNoop(t *testing.T) {
	dir := t.TempDir()
	composeRunner := &fakeComposeRunner{}
	st := &fakeStateStore{}
	o := newTestOrchestrator(newFakeProcessRunner(), composeRunner, st)

	if err := o.Stop(context.Background(), StopOptions{WorkspaceDir: dir}); err != nil {
		t.Fatalf("Stop() on absent state should be a no-op, got error: %v", err)
	}

	composeRunner.mu.Lock()
	defer composeRunner.mu.Unlock()
	if composeRunner.downCalls != 0 {
		t.Error("expected no composeDown call when no state file exists")
	}
}

func TestStop_StopsHandlesAndRemovesState(t *testing.T) {
	dir := t.TempDir()
	composeRunner := &fakeComposeRunner{}
	st := &fakeStateStore{
		exists: true,
		state: &ports.WorkspaceState{
			ProjectName:  "lo1-acme",
			WorkspaceDir: dir,
			Services: map[string]ports.ServiceRuntime{
				"db": {Runner: ports.RunnerProcess, Pid: 424242},
			},
		},
	}
	o := newTestOrchestrator(newFakeProcessRunner(), composeRunner, st)

	if err := o.Stop(context.Background(), StopOptions{WorkspaceDir: dir, Clean: true}); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	if st.exists {
		t.Error("expected state file removed after Stop")
	}
	composeRunner.mu.Lock()
	defer composeRunner.mu.Unlock()
	if composeRunner.downCalls != 1 || !composeRunner.downClean[0] {
		t.Error("expected one clean composeDown call")
	}
}
