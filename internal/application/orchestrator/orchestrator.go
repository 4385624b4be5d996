// Package orchestrator drives the two public workspace operations, start
// and stop, through the phase sequences of spec.md §4.9/§4.10, grounded on
// the teacher's up_command.go/down_command.go control flow and restructured
// around the new single-manifest, plugin-registry model.
package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/application/starter"
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/domain/dependency"
	"github.com/vivekkundariya/lo1/internal/domain/endpoint"
)

// Orchestrator wires every collaborator needed to realize startWorkspace and
// stopWorkspace. Every field is a port so the orchestrator itself stays free
// of infrastructure concerns and is wholly testable against fakes.
type Orchestrator struct {
	ComposeGen ports.ComposeDocGenerator
	ProxyGen   ports.ProxyConfigGenerator
	Hosts      ports.HostsWriter
	Tls        ports.TlsTruster
	Plugins    ports.PluginLoader
	State      ports.StateStore
	Compose    ports.ComposeRunner
	Starter    *starter.Starter
	Events     ports.EventBus
}

// New constructs an Orchestrator from its collaborators.
func New(
	composeGen ports.ComposeDocGenerator,
	proxyGen ports.ProxyConfigGenerator,
	hosts ports.HostsWriter,
	tls ports.TlsTruster,
	plugins ports.PluginLoader,
	st ports.StateStore,
	compose ports.ComposeRunner,
	svcStarter *starter.Starter,
	events ports.EventBus,
) *Orchestrator {
	return &Orchestrator{
		ComposeGen: composeGen,
		ProxyGen:   proxyGen,
		Hosts:      hosts,
		Tls:        tls,
		Plugins:    plugins,
		State:      st,
		Compose:    compose,
		Starter:    svcStarter,
		Events:     events,
	}
}

// StartOptions configures one startWorkspace call.
type StartOptions struct {
	ManifestPath  string
	WorkspaceDir  string
	ModeOverride  config.ServiceMode // zero value: no override
	ServiceFilter []string           // empty: every service
	ApplyHosts    bool               // whether to touch the privileged hosts file
	Clean         bool               // whether composeDown in failure/cancel teardown removes volumes too (stale cleanup always does)
}

// StartResult is returned to the CLI layer on a successful start.
type StartResult struct {
	Handles        map[string]ports.ServiceHandle
	ComposeOptions ports.ComposeOptions
	Config         *config.WorkspaceConfig
	LogsHandle     ports.ComposeLogHandle
}

func (o *Orchestrator) emitPhase(name string) {
	o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventPhase, Phase: name})
}

func (o *Orchestrator) emitError(message string) {
	o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventError, Message: message})
}

func (o *Orchestrator) emitService(name string, status ports.ServiceStatus) {
	o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventService, Service: name, ServiceStatus: status})
}

// Start runs the 14-phase sequence of spec.md §4.9.
func (o *Orchestrator) Start(ctx context.Context, opts StartOptions) (*StartResult, error) {
	// Phase 1: stale cleanup.
	o.emitPhase("Stale cleanup")
	o.staleCleanup(ctx, opts.WorkspaceDir)

	if err := ctx.Err(); err != nil {
		return nil, &ports.OrchestratorError{Phase: "Stale cleanup", Message: "cancelled before infra started", Cause: err}
	}

	// Phase 2: load config, apply overrides + filter.
	o.emitPhase("Load config")
	cfg, err := config.Load(opts.ManifestPath)
	if err != nil {
		return nil, &ports.OrchestratorError{Phase: "Load config", Message: err.Error(), Cause: err}
	}
	if opts.ModeOverride != "" {
		for name, svc := range cfg.Services {
			if svc.Mode != config.ModeSkip {
				svc.Mode = opts.ModeOverride
				cfg.Services[name] = svc
			}
		}
	}
	if len(opts.ServiceFilter) > 0 {
		closure, err := ResolveFilter(cfg, opts.ServiceFilter)
		if err != nil {
			return nil, &ports.OrchestratorError{Phase: "Load config", Message: err.Error(), Cause: err}
		}
		filtered := make(map[string]config.ServiceSpec, len(closure))
		for name, svc := range cfg.Services {
			if closure[name] {
				filtered[name] = svc
			}
		}
		cfg.Services = filtered
	}

	// Phase 3: build DAG and endpoint registry.
	o.emitPhase("Build dependency graph")
	layers, err := dependency.BuildDag(cfg)
	if err != nil {
		return nil, &ports.OrchestratorError{Phase: "Build dependency graph", Message: err.Error(), Cause: err}
	}
	registry, err := endpoint.BuildRegistry(cfg)
	if err != nil {
		return nil, &ports.OrchestratorError{Phase: "Build dependency graph", Message: err.Error(), Cause: err}
	}

	// Phase 4: load plugins.
	o.emitPhase("Load plugins")
	plugins, err := o.Plugins.All(cfg)
	if err != nil {
		return nil, &ports.OrchestratorError{Phase: "Load plugins", Message: err.Error(), Cause: err}
	}

	// Phase 5: collect compose contributions.
	o.emitPhase("Collect compose contributions")
	contributions := make(map[string]ports.ComposeContribution)
	pluginEnvVars := make(map[string]string)
	for _, p := range plugins {
		contrib, ok := p.ContributeCompose(cfg)
		if !ok {
			continue
		}
		contributions[p.Type()] = contrib
		for k, v := range contrib.EnvVars {
			pluginEnvVars[k] = v
		}
	}

	// Phase 6: generate + write compose YAML.
	o.emitPhase("Generate compose")
	fileSet, err := o.ComposeGen.Generate(cfg, contributions)
	if err != nil {
		return nil, &ports.OrchestratorError{Phase: "Generate compose", Message: err.Error(), Cause: err}
	}

	// Phase 7: generate + write proxy config + hosts block.
	o.emitPhase("Generate proxy config")
	registryURLs := make(map[string]string, len(registry))
	for name, ep := range registry {
		registryURLs[name] = ep.InternalURL
	}
	proxyResult, err := o.ProxyGen.Generate(cfg, registryURLs)
	if err != nil {
		return nil, &ports.OrchestratorError{Phase: "Generate proxy config", Message: err.Error(), Cause: err}
	}
	if opts.ApplyHosts && len(proxyResult.Domains) > 0 {
		if err := o.Hosts.Apply(proxyResult.Domains); err != nil {
			o.emitError(fmt.Sprintf("failed to apply hosts block: %v", err))
		}
	}

	projectName := config.ProjectName(cfg.Name)
	composeOpts := ports.ComposeOptions{
		ProjectName: projectName,
		FileArgs:    fileSet.AllPaths(),
		Cwd:         opts.WorkspaceDir,
		OnOutput: func(line ports.OutputLine) {
			o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventOutput, Line: line})
		},
	}

	// Phase 8: write baseline WorkspaceState.
	o.emitPhase("Write baseline state")
	baseline := &ports.WorkspaceState{
		WorkspaceName: cfg.Name,
		ProjectName:   projectName,
		FileArgs:      composeOpts.FileArgs,
		WorkspaceDir:  opts.WorkspaceDir,
		Services:      map[string]ports.ServiceRuntime{},
	}
	if err := o.State.Save(opts.WorkspaceDir, baseline); err != nil {
		return nil, &ports.OrchestratorError{Phase: "Write baseline state", Message: err.Error(), Cause: err}
	}

	initTasks := initTaskSet(cfg)

	// Phase 9: compose up phases, gated by readiness.
	o.emitPhase("Bring up infrastructure")
	var logsHandle ports.ComposeLogHandle
	if err := ctx.Err(); err != nil {
		return nil, o.teardownOnCancel(ctx, nil, composeOpts, opts, "Bring up infrastructure", err)
	}
	if len(fileSet.InfraServices) > 0 {
		if err := o.Compose.Up(ctx, composeOpts, fileSet.InfraServices); err != nil {
			return nil, &ports.OrchestratorError{Phase: "Bring up infrastructure", Message: err.Error(), Cause: err}
		}
		logsHandle, err = o.Compose.Logs(ctx, composeOpts)
		if err != nil {
			o.emitError(fmt.Sprintf("failed to start log follower: %v", err))
		}
		if err := o.Compose.Wait(ctx, ports.ComposeWaitOptions{
			ComposeOptions: composeOpts,
			Services:       fileSet.InfraServices,
			WaitForExit:    subsetOf(initTasks, fileSet.InfraServices),
		}); err != nil {
			return nil, &ports.OrchestratorError{Phase: "Bring up infrastructure", Message: err.Error(), Cause: err}
		}
	}

	o.emitPhase("Bring up application services")
	if err := ctx.Err(); err != nil {
		return nil, o.teardownOnCancel(ctx, nil, composeOpts, opts, "Bring up application services", err)
	}
	if len(fileSet.AppServices) > 0 {
		if err := o.Compose.Up(ctx, composeOpts, fileSet.AppServices); err != nil {
			return nil, &ports.OrchestratorError{Phase: "Bring up application services", Message: err.Error(), Cause: err}
		}
		if logsHandle == nil {
			logsHandle, err = o.Compose.Logs(ctx, composeOpts)
			if err != nil {
				o.emitError(fmt.Sprintf("failed to start log follower: %v", err))
			}
		}
		if err := o.Compose.Wait(ctx, ports.ComposeWaitOptions{
			ComposeOptions: composeOpts,
			Services:       fileSet.AppServices,
			WaitForExit:    subsetOf(initTasks, fileSet.AppServices),
		}); err != nil {
			return nil, &ports.OrchestratorError{Phase: "Bring up application services", Message: err.Error(), Cause: err}
		}
	}

	// Phase 10: TLS trust.
	if cfg.Proxy != nil && cfg.Proxy.Enabled && cfg.Proxy.TLS != nil && cfg.Proxy.TLS.Enabled {
		o.emitPhase("Trust TLS certificate")
		if err := o.Tls.TrustCaddyCa(config.ProxyServiceName(cfg.Name)); err != nil {
			o.emitError(fmt.Sprintf("failed to trust proxy TLS certificate: %v", err))
		}
	}

	// Phase 11: postInfrastructure hook, then plugin provisionInfra (parallel), then seedData (parallel).
	o.emitPhase("Provision infrastructure")
	if cfg.Hooks.PostInfrastructure != "" {
		if _, err := o.Starter.Hooks.ExecuteHook(ctx, "postInfrastructure", cfg.Hooks.PostInfrastructure, ports.HookExecOptions{
			Cwd: opts.WorkspaceDir,
			OnOutput: func(line ports.OutputLine) {
				o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventHook, Hook: "postInfrastructure", HookOutput: line.Text})
			},
		}); err != nil {
			return nil, &ports.OrchestratorError{Phase: "Provision infrastructure", Message: err.Error(), Cause: err}
		}
	}
	if err := joinSettledAll(plugins, func(p ports.Plugin) error {
		return p.ProvisionInfra(ctx, cfg)
	}); err != nil {
		return nil, &ports.OrchestratorError{Phase: "Provision infrastructure", Message: err.Error(), Cause: err}
	}
	if err := joinSettledAll(plugins, func(p ports.Plugin) error {
		return p.SeedData(ctx, cfg)
	}); err != nil {
		return nil, &ports.OrchestratorError{Phase: "Provision infrastructure", Message: err.Error(), Cause: err}
	}

	// Phase 12: start service layers in DAG order.
	o.emitPhase("Start services")
	handles := make(map[string]ports.ServiceHandle)
	pluginByType := make(map[string]ports.Plugin, len(plugins))
	for _, p := range plugins {
		pluginByType[p.Type()] = p
	}

	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return nil, o.teardownOnCancel(ctx, handles, composeOpts, opts, "Start services", err)
		}

		type result struct {
			name   string
			handle ports.ServiceHandle
			err    error
		}
		results := make([]result, len(layer))

		var wg errgroup.Group
		for i, name := range layer {
			i, name := i, name
			wg.Go(func() error {
				svcName := string(name)
				svc := cfg.Services[svcName]
				if svc.Mode == config.ModeSkip {
					results[i] = result{name: svcName}
					return nil
				}
				o.emitService(svcName, ports.ServiceStarting)
				handle, err := o.Starter.StartService(ctx, starter.Options{
					ServiceName:   svcName,
					ServiceConfig: svc,
					Config:        cfg,
					Plugin:        pluginByType[svc.Type],
					Registry:      registry,
					PluginEnvVars: pluginEnvVars,
					WorkspaceDir:  opts.WorkspaceDir,
					OnOutput: func(line ports.OutputLine) {
						o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventOutput, Line: line})
					},
					OnHookOutput: func(hook, line string) {
						o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventHook, Hook: hook, HookOutput: line})
					},
				})
				results[i] = result{name: svcName, handle: handle, err: err}
				return nil
			})
		}
		_ = wg.Wait() // errors are collected per-result, not via the group itself (settled-all join)

		var firstErr error
		for _, r := range results {
			if r.err != nil {
				if firstErr == nil {
					firstErr = r.err
				}
				continue
			}
			if r.handle != nil {
				handles[r.name] = r.handle
				o.emitService(r.name, ports.ServiceStarted)
			}
		}
		if firstErr != nil {
			o.stopAll(ctx, handles)
			_ = o.Compose.Down(ctx, composeOpts, opts.Clean)
			_ = o.State.Remove(opts.WorkspaceDir)
			return nil, &ports.OrchestratorError{Phase: "Start services", Message: firstErr.Error(), Cause: firstErr}
		}
	}

	// Phase 13: update WorkspaceState with concrete runner/pid/containerId.
	o.emitPhase("Persist state")
	finalState := &ports.WorkspaceState{
		WorkspaceName: cfg.Name,
		ProjectName:   projectName,
		FileArgs:      composeOpts.FileArgs,
		WorkspaceDir:  opts.WorkspaceDir,
		Services:      map[string]ports.ServiceRuntime{},
	}
	for name, h := range handles {
		finalState.Services[name] = ports.ServiceRuntime{
			Runner:      h.Type(),
			Pid:         h.Pid(),
			ContainerID: h.ContainerID(),
		}
	}
	if err := o.State.Save(opts.WorkspaceDir, finalState); err != nil {
		o.emitError(fmt.Sprintf("failed to persist final state: %v", err))
	}

	// Phase 14: postSetup hook, emit Ready.
	if cfg.Hooks.PostSetup != "" {
		if _, err := o.Starter.Hooks.ExecuteHook(ctx, "postSetup", cfg.Hooks.PostSetup, ports.HookExecOptions{
			Cwd: opts.WorkspaceDir,
			OnOutput: func(line ports.OutputLine) {
				o.Events.Publish(ports.OrchestratorEvent{Kind: ports.EventHook, Hook: "postSetup", HookOutput: line.Text})
			},
		}); err != nil {
			o.emitError(fmt.Sprintf("postSetup hook failed: %v", err))
		}
	}
	o.emitPhase("Ready")

	return &StartResult{
		Handles:        handles,
		ComposeOptions: composeOpts,
		Config:         cfg,
		LogsHandle:     logsHandle,
	}, nil
}

// staleCleanup implements spec.md §4.9 phase 1: best-effort, never aborts
// the run.
func (o *Orchestrator) staleCleanup(ctx context.Context, workspaceDir string) {
	if !o.State.Exists(workspaceDir) {
		return
	}
	st, err := o.State.Load(workspaceDir)
	if err != nil || st == nil {
		o.emitError(fmt.Sprintf("failed to read stale state: %v", err))
		return
	}

	for name, rt := range st.Services {
		handle := hydrateHandle(name, rt)
		if err := handle.Stop(ctx); err != nil {
			o.emitError(fmt.Sprintf("stale cleanup: failed to stop %q: %v", name, err))
		}
	}

	composeOpts := ports.ComposeOptions{ProjectName: st.ProjectName, FileArgs: st.FileArgs, Cwd: st.WorkspaceDir}
	if err := o.Compose.Down(ctx, composeOpts, true); err != nil {
		o.emitError(fmt.Sprintf("stale cleanup: composeDown failed: %v", err))
	}

	if err := o.State.Remove(workspaceDir); err != nil {
		o.emitError(fmt.Sprintf("stale cleanup: failed to remove state file: %v", err))
	}
}

// teardownOnCancel applies the same best-effort reverse teardown as a
// service-start failure when cancellation trips between phases.
func (o *Orchestrator) teardownOnCancel(ctx context.Context, handles map[string]ports.ServiceHandle, composeOpts ports.ComposeOptions, opts StartOptions, phase string, cause error) error {
	o.stopAll(context.Background(), handles)
	_ = o.Compose.Down(context.Background(), composeOpts, opts.Clean)
	_ = o.State.Remove(opts.WorkspaceDir)
	return &ports.OrchestratorError{Phase: phase, Message: "cancelled", Cause: cause}
}

// stopAll stops every handle, best-effort, ignoring individual errors
// beyond reporting them on the event bus.
func (o *Orchestrator) stopAll(ctx context.Context, handles map[string]ports.ServiceHandle) {
	names := make([]string, 0, len(handles))
	for name := range handles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o.emitService(name, ports.ServiceStopping)
		if err := handles[name].Stop(ctx); err != nil {
			o.emitError(fmt.Sprintf("failed to stop %q: %v", name, err))
		}
		o.emitService(name, ports.ServiceStopped)
	}
}

// joinSettledAll runs fn over every plugin concurrently and waits for all
// to settle before reporting the first error, per spec.md §5's
// parallel-unordered-joined policy for plugin lifecycle calls.
func joinSettledAll(plugins []ports.Plugin, fn func(ports.Plugin) error) error {
	errs := make([]error, len(plugins))
	var wg errgroup.Group
	for i, p := range plugins {
		i, p := i, p
		wg.Go(func() error {
			errs[i] = fn(p)
			return nil
		})
	}
	_ = wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// initTaskSet returns the set of service names marked initTask:true plus
// every extraCompose-declared init-task service.
func initTaskSet(cfg *config.WorkspaceConfig) map[string]bool {
	set := map[string]bool{}
	for name, svc := range cfg.Services {
		if svc.InitTask {
			set[name] = true
		}
	}
	if cfg.ExtraCompose != nil {
		for _, name := range cfg.ExtraCompose.InitTaskServices {
			set[name] = true
		}
	}
	return set
}

// subsetOf restricts set to the names present in within.
func subsetOf(set map[string]bool, within []string) map[string]bool {
	out := map[string]bool{}
	for _, name := range within {
		if set[name] {
			out[name] = true
		}
	}
	return out
}
