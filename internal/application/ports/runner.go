package ports

import "context"

// OutputFunc receives one reassembled output line as it is produced.
type OutputFunc func(OutputLine)

// ServiceHandle is the opaque stop-token the orchestrator holds for one
// running service, regardless of which runner produced it. Stop-as-struct
// rather than stop-as-closure: the supervisory state (pid, container ID,
// log-follower) lives on the concrete handle behind this interface instead
// of being captured in a closure.
type ServiceHandle interface {
	ServiceName() string
	Type() RunnerType
	Pid() int
	ContainerID() string
	Running() bool
	Stop(ctx context.Context) error
}

// ProcessRunner supervises a service as a host shell command.
type ProcessRunner interface {
	Start(ctx context.Context, opts ProcessStartOptions) (ServiceHandle, error)
}

// ProcessStartOptions configures one process-runner invocation.
type ProcessStartOptions struct {
	ServiceName string
	Command     string
	Cwd         string
	Env         map[string]string
	OnOutput    OutputFunc
	StopTimeout int // seconds, default 5
}

// ContainerRunner supervises a service as a single named container.
type ContainerRunner interface {
	Start(ctx context.Context, opts ContainerStartOptions) (ServiceHandle, error)
}

// ContainerStartOptions configures one container-runner invocation.
type ContainerStartOptions struct {
	WorkspaceName string
	ServiceName   string
	Image         string
	Command       []string
	NetworkName   string
	Binds         []string
	WorkingDir    string
	Env           map[string]string
	OnOutput      OutputFunc
	StopTimeout   int // seconds, default 10
}

// ComposeOptions is the common options bundle shared by every compose
// operation.
type ComposeOptions struct {
	ProjectName string
	FileArgs    []string
	Cwd         string
	OnOutput    OutputFunc
}

// ComposeWaitOptions configures composeWait's polling loop.
type ComposeWaitOptions struct {
	ComposeOptions
	Services       []string
	WaitForExit    map[string]bool // init-task services: must reach exited/0
	PollInterval   int             // seconds, default 2
	TimeoutSeconds int             // default 300
}

// ComposeServiceStatus is one line of `compose ps --format json`.
type ComposeServiceStatus struct {
	Name     string
	Service  string
	State    string
	Health   string
	ExitCode int
}

// ComposeLogHandle represents a running `compose logs -f` follower.
type ComposeLogHandle interface {
	Kill() error
}

// ComposeRunner is the five-operation facade over the local container-
// compose tool: up, wait, logs, ps, down.
type ComposeRunner interface {
	Up(ctx context.Context, opts ComposeOptions, services []string) error
	Wait(ctx context.Context, opts ComposeWaitOptions) error
	Logs(ctx context.Context, opts ComposeOptions) (ComposeLogHandle, error)
	Ps(ctx context.Context, opts ComposeOptions) ([]ComposeServiceStatus, error)
	Down(ctx context.Context, opts ComposeOptions, clean bool) error
}

// ReadinessProbeOptions configures waitForReady.
type ReadinessProbeOptions struct {
	URL               string
	ServiceName       string
	TimeoutMs         int     // default 60000
	IntervalMs        int     // default 1000
	BackoffMultiplier float64 // default 1.5
	MaxIntervalMs     int     // default 5000
	OnAttempt         func(attempt int)
}

// ReadinessProber HTTP-polls a URL until 2xx, timeout, or cancellation.
type ReadinessProber interface {
	WaitForReady(ctx context.Context, opts ReadinessProbeOptions) error
}

// HookResult is the outcome of one executeHook call.
type HookResult struct {
	ExitCode *int
	HookName string
}

// HookExecOptions configures one hook invocation.
type HookExecOptions struct {
	Cwd      string
	Env      map[string]string
	OnOutput OutputFunc
}

// HookExecutor runs one user-supplied shell snippet at a lifecycle point.
type HookExecutor interface {
	ExecuteHook(ctx context.Context, hookName, command string, opts HookExecOptions) (HookResult, error)
}
