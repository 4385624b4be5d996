package compose

import (
	"testing"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

func TestLogLineRe_SplitsServiceAndText(t *testing.T) {
	m := logLineRe.FindStringSubmatch("api-1  | listening on :3000")
	if m == nil {
		t.Fatal("expected match")
	}
	if m[1] != "api-1" {
		t.Errorf("service = %q, want api-1", m[1])
	}
	if m[2] != "listening on :3000" {
		t.Errorf("text = %q", m[2])
	}
}

func TestStripReplicaSuffix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"api-1", "api"},
		{"worker-23", "worker"},
		{"postgres", "postgres"},
		{"my-service-name-1", "my-service-name"},
	}
	for _, tt := range tests {
		if got := stripReplicaSuffix(tt.in); got != tt.want {
			t.Errorf("stripReplicaSuffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBaseArgs_IncludesProjectAndFiles(t *testing.T) {
	r := New("")
	args := r.baseArgs(ports.ComposeOptions{
		ProjectName: "lo1-acme",
		FileArgs:    []string{"a.yaml", "b.yaml"},
	})
	want := []string{"--progress", "plain", "--project-directory", ".", "-p", "lo1-acme", "-f", "a.yaml", "-f", "b.yaml"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestNew_DefaultsToDockerCompose(t *testing.T) {
	r := New("")
	bin, args := r.argv([]string{"ps"})
	if bin != "docker" {
		t.Errorf("bin = %q, want docker", bin)
	}
	want := []string{"compose", "ps"}
	if len(args) != len(want) || args[0] != want[0] || args[1] != want[1] {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestNew_HonorsConfiguredComposeCommand(t *testing.T) {
	r := New("podman-compose")
	bin, args := r.argv([]string{"ps"})
	if bin != "podman-compose" {
		t.Errorf("bin = %q, want podman-compose", bin)
	}
	if len(args) != 1 || args[0] != "ps" {
		t.Errorf("args = %v, want [ps]", args)
	}
}
