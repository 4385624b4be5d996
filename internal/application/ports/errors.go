package ports

import "fmt"

// FilterError reports an unknown service name passed to --services.
type FilterError struct {
	Name string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("unknown service in filter: %q", e.Name)
}

// PluginError reports a plugin resolution failure: an undeclared type, or a
// service type with no matching registered plugin.
type PluginError struct {
	Type    string
	Message string
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin error for type %q: %s", e.Type, e.Message)
}

// ComposeError reports a violated compose-generation invariant (not a tool
// invocation failure — see ComposeExecError for that).
type ComposeError struct {
	Message string
}

func (e *ComposeError) Error() string {
	return fmt.Sprintf("compose generation error: %s", e.Message)
}

// ComposeExecError reports a failed `docker compose` invocation.
type ComposeExecError struct {
	Op       string
	Stderr   string
	ExitCode int
}

func (e *ComposeExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("compose %s failed (exit %d): %s", e.Op, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("compose %s failed (exit %d)", e.Op, e.ExitCode)
}

// ContainerRunnerError reports a single-container lifecycle failure.
type ContainerRunnerError struct {
	Service string
	Message string
}

func (e *ContainerRunnerError) Error() string {
	return fmt.Sprintf("container runner error for %q: %s", e.Service, e.Message)
}

// ProcessRunnerError reports a host-process lifecycle failure.
type ProcessRunnerError struct {
	Service string
	Message string
}

func (e *ProcessRunnerError) Error() string {
	return fmt.Sprintf("process runner error for %q: %s", e.Service, e.Message)
}

// ReadinessProbeError reports a probe that never returned 2xx before its
// deadline, or was cancelled first.
type ReadinessProbeError struct {
	Service string
	URL     string
}

func (e *ReadinessProbeError) Error() string {
	return fmt.Sprintf("readiness probe failed for %q at %s", e.Service, e.URL)
}

// HookError reports a non-zero exit (or spawn failure, ExitCode nil) from a
// user-supplied lifecycle hook.
type HookError struct {
	Hook     string
	ExitCode *int
}

func (e *HookError) Error() string {
	if e.ExitCode == nil {
		return fmt.Sprintf("hook %q failed to start", e.Hook)
	}
	return fmt.Sprintf("hook %q exited with code %d", e.Hook, *e.ExitCode)
}

// TlsError reports a failure in the TLS trust helper.
type TlsError struct {
	Message string
}

func (e *TlsError) Error() string {
	return fmt.Sprintf("tls error: %s", e.Message)
}

// HostsError reports a failure in the hosts-file writer.
type HostsError struct {
	Message string
}

func (e *HostsError) Error() string {
	return fmt.Sprintf("hosts error: %s", e.Message)
}

// ServiceStartError reports that no runner was determinable for a service
// per the Service Starter's decision table.
type ServiceStartError struct {
	Service string
	Message string
}

func (e *ServiceStartError) Error() string {
	return fmt.Sprintf("cannot start service %q: %s", e.Service, e.Message)
}

// HotReloadError reports a failure setting up or running the dev-mode file
// watcher for a service with run.hotReload set.
type HotReloadError struct {
	Service string
	Message string
}

func (e *HotReloadError) Error() string {
	return fmt.Sprintf("hot reload error for %q: %s", e.Service, e.Message)
}

// OrchestratorError reports an abort or an invalid plugin-type binding at
// the orchestrator level, wrapping whatever collaborator error caused it.
type OrchestratorError struct {
	Phase   string
	Message string
	Cause   error
}

func (e *OrchestratorError) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("orchestrator error in phase %q: %s", e.Phase, e.Message)
	}
	return fmt.Sprintf("orchestrator error: %s", e.Message)
}

func (e *OrchestratorError) Unwrap() error { return e.Cause }
