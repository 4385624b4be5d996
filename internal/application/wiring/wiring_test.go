package wiring

import "testing"

func TestContainerEngineBin(t *testing.T) {
	tests := []struct {
		composeCommand string
		want           string
	}{
		{"", "docker"},
		{"docker compose", "docker"},
		{"podman-compose", "podman"},
		{"docker-compose", "docker"},
	}
	for _, tt := range tests {
		if got := containerEngineBin(tt.composeCommand); got != tt.want {
			t.Errorf("containerEngineBin(%q) = %q, want %q", tt.composeCommand, got, tt.want)
		}
	}
}
