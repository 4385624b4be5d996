package container

import (
	"testing"

	"github.com/vivekkundariya/lo1/internal/config"
)

func TestContainerName_Deterministic(t *testing.T) {
	got := config.ContainerName("acme", "api")
	want := "lo1-acme-api"
	if got != want {
		t.Errorf("ContainerName() = %q, want %q", got, want)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc123\n", "abc123"},
		{"abc123", "abc123"},
		{"abc123\nextra\n", "abc123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
