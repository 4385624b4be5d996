package orchestrator

import (
	"context"
	"sort"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
)

// StopOptions configures one stopWorkspace call.
type StopOptions struct {
	ManifestPath string
	WorkspaceDir string
	Handles      map[string]ports.ServiceHandle // in-memory handles from a prior Start, if available
	Clean        bool                           // --clean adds -v --remove-orphans to composeDown
}

// Stop runs the 6-step sequence of spec.md §4.10. It is idempotent: a
// missing state file is a no-op, not an error.
func (o *Orchestrator) Stop(ctx context.Context, opts StopOptions) error {
	st, err := o.State.Load(opts.WorkspaceDir)
	if err != nil {
		return &ports.OrchestratorError{Phase: "Stop", Message: err.Error(), Cause: err}
	}
	if st == nil {
		o.emitPhase("No running workspace found")
		return nil
	}

	cfg, cfgErr := config.Load(opts.ManifestPath)
	if cfgErr == nil && cfg.Hooks.PreStop != "" {
		if _, err := o.Starter.Hooks.ExecuteHook(ctx, "preStop", cfg.Hooks.PreStop, ports.HookExecOptions{
			Cwd: opts.WorkspaceDir,
			OnOutput: func(line ports.OutputLine) {
				o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventHook, Hook: "preStop", HookOutput: line.Text})
			},
		}); err != nil {
			o.emitError("preStop hook failed: " + err.Error())
		}
	}

	handles := opts.Handles
	if handles == nil {
		handles = make(map[string]ports.ServiceHandle, len(st.Services))
		for name, rt := range st.Services {
			handles[name] = hydrateHandle(name, rt)
		}
	}

	names := make([]string, 0, len(handles))
	for name := range handles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o.emitService(name, ports.ServiceStopping)
		if err := handles[name].Stop(ctx); err != nil {
			o.emitError("failed to stop " + name + ": " + err.Error())
		}
		o.emitService(name, ports.ServiceStopped)
	}

	composeOpts := ports.ComposeOptions{
		ProjectName: st.ProjectName,
		FileArgs:    st.FileArgs,
		Cwd:         st.WorkspaceDir,
	}
	if err := o.Compose.Down(ctx, composeOpts, opts.Clean); err != nil {
		o.emitError("composeDown failed: " + err.Error())
	}

	if err := o.State.Remove(opts.WorkspaceDir); err != nil {
		return &ports.OrchestratorError{Phase: "Stop", Message: err.Error(), Cause: err}
	}
	o.emitPhase("Stopped")
	return nil
}
