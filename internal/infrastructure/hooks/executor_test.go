package hooks

import (
	"context"
	"sync"
	"testing"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

func TestExecuteHook_SuccessCapturesOutput(t *testing.T) {
	e := New()
	var mu sync.Mutex
	var lines []string

	result, err := e.ExecuteHook(context.Background(), "postStart", "echo hi", ports.HookExecOptions{
		OnOutput: func(l ports.OutputLine) {
			mu.Lock()
			lines = append(lines, l.Text)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("ExecuteHook() error: %v", err)
	}
	if result.ExitCode == nil || *result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %v", result.ExitCode)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(lines) != 1 || lines[0] != "hi" {
		t.Errorf("lines = %v, want [hi]", lines)
	}
}

func TestExecuteHook_NonZeroExitYieldsHookError(t *testing.T) {
	e := New()
	_, err := e.ExecuteHook(context.Background(), "preStop", "exit 7", ports.HookExecOptions{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	hookErr, ok := err.(*ports.HookError)
	if !ok {
		t.Fatalf("expected *ports.HookError, got %T", err)
	}
	if hookErr.ExitCode == nil || *hookErr.ExitCode != 7 {
		t.Errorf("ExitCode = %v, want 7", hookErr.ExitCode)
	}
	if hookErr.Hook != "preStop" {
		t.Errorf("Hook = %q, want preStop", hookErr.Hook)
	}
}

func TestExecuteHook_EnvPassedThrough(t *testing.T) {
	e := New()
	var captured string
	_, err := e.ExecuteHook(context.Background(), "preStart", `echo "$FOO"`, ports.HookExecOptions{
		Env: map[string]string{"FOO": "bar"},
		OnOutput: func(l ports.OutputLine) {
			captured = l.Text
		},
	})
	if err != nil {
		t.Fatalf("ExecuteHook() error: %v", err)
	}
	if captured != "bar" {
		t.Errorf("captured = %q, want bar", captured)
	}
}
