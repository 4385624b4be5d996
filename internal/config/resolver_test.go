package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("version: \"1\"\nname: test\nservices: {}"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func TestManifestResolver_CLIFlag(t *testing.T) {
	tmpDir := t.TempDir()
	manifest := filepath.Join(tmpDir, "custom.yaml")
	writeManifest(t, manifest)

	resolver, err := NewManifestResolver(manifest)
	if err != nil {
		t.Fatalf("NewManifestResolver() error: %v", err)
	}

	path, root, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if path != manifest {
		t.Errorf("expected path %s, got %s", manifest, path)
	}
	if root != tmpDir {
		t.Errorf("expected root %s, got %s", tmpDir, root)
	}
}

func TestManifestResolver_EnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	manifest := filepath.Join(tmpDir, "env.yaml")
	writeManifest(t, manifest)

	os.Setenv(EnvManifestFile, manifest)
	defer os.Unsetenv(EnvManifestFile)

	resolver, err := NewManifestResolver("")
	if err != nil {
		t.Fatalf("NewManifestResolver() error: %v", err)
	}

	path, _, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if path != manifest {
		t.Errorf("expected path %s, got %s", manifest, path)
	}
}

func TestManifestResolver_CLIOverridesEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, "env.yaml")
	cliFile := filepath.Join(tmpDir, "cli.yaml")
	writeManifest(t, envFile)
	writeManifest(t, cliFile)

	os.Setenv(EnvManifestFile, envFile)
	defer os.Unsetenv(EnvManifestFile)

	resolver, _ := NewManifestResolver(cliFile)
	path, _, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if path != cliFile {
		t.Errorf("CLI flag should override env var; expected %s, got %s", cliFile, path)
	}
}

func TestManifestResolver_LocalFile(t *testing.T) {
	tmpDir := t.TempDir()
	manifest := filepath.Join(tmpDir, ManifestFileName)
	writeManifest(t, manifest)

	originalWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	resolver, err := NewManifestResolver("")
	if err != nil {
		t.Fatalf("NewManifestResolver() error: %v", err)
	}

	path, root, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	expectedPath, _ := filepath.EvalSymlinks(manifest)
	expectedRoot, _ := filepath.EvalSymlinks(tmpDir)
	actualPath, _ := filepath.EvalSymlinks(path)
	actualRoot, _ := filepath.EvalSymlinks(root)

	if actualPath != expectedPath {
		t.Errorf("expected path %s, got %s", expectedPath, actualPath)
	}
	if actualRoot != expectedRoot {
		t.Errorf("expected root %s, got %s", expectedRoot, actualRoot)
	}
}

func TestManifestResolver_ParentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	childDir := filepath.Join(tmpDir, "child")
	os.MkdirAll(childDir, 0755)

	manifest := filepath.Join(tmpDir, ManifestFileName)
	writeManifest(t, manifest)

	originalWd, _ := os.Getwd()
	os.Chdir(childDir)
	defer os.Chdir(originalWd)

	resolver, _ := NewManifestResolver("")
	path, root, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	expectedPath, _ := filepath.EvalSymlinks(manifest)
	expectedRoot, _ := filepath.EvalSymlinks(tmpDir)
	actualPath, _ := filepath.EvalSymlinks(path)
	actualRoot, _ := filepath.EvalSymlinks(root)

	if actualPath != expectedPath {
		t.Errorf("should find manifest in parent; expected %s, got %s", expectedPath, actualPath)
	}
	if actualRoot != expectedRoot {
		t.Errorf("root should be parent dir; expected %s, got %s", expectedRoot, actualRoot)
	}
}

func TestManifestResolver_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	originalWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	resolver, _ := NewManifestResolver("")
	_, _, err := resolver.Resolve()
	if err == nil {
		t.Error("expected error when manifest not found")
	}
}

func TestManifestResolver_CLIFlagFileNotFound(t *testing.T) {
	resolver, _ := NewManifestResolver("/nonexistent/lo1.yaml")
	_, _, err := resolver.Resolve()
	if err == nil {
		t.Error("expected error when CLI flag points to nonexistent file")
	}
}

func TestManifestResolver_GetSettings(t *testing.T) {
	resolver, _ := NewManifestResolver("")

	if endpoint := resolver.GetLocalStackEndpoint(); endpoint != "http://localhost:4566" {
		t.Errorf("expected default localstack endpoint, got %q", endpoint)
	}
	if region := resolver.GetLocalStackRegion(); region != "us-east-1" {
		t.Errorf("expected default region, got %q", region)
	}
	if cmd := resolver.GetDockerComposeCommand(); cmd != "docker compose" {
		t.Errorf("expected default compose command, got %q", cmd)
	}
}
