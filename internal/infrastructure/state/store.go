// Package state persists the WorkspaceState crash-recovery record under
// <workspaceDir>/.lo1/state.json, grounded on the teacher's
// "~/.grund/tmp/<project>/" workspace-local hidden-directory convention
// (docker.GetComposeFilePath), generalized to spec.md §3/§6's state file.
package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

const (
	dirName  = ".lo1"
	fileName = "state.json"
)

// Store implements ports.StateStore as pretty-printed JSON on disk.
type Store struct{}

func New() *Store { return &Store{} }

func path(workspaceDir string) string {
	return filepath.Join(workspaceDir, dirName, fileName)
}

func (s *Store) Exists(workspaceDir string) bool {
	_, err := os.Stat(path(workspaceDir))
	return err == nil
}

func (s *Store) Load(workspaceDir string) (*ports.WorkspaceState, error) {
	data, err := os.ReadFile(path(workspaceDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var st ports.WorkspaceState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) Save(workspaceDir string, st *ports.WorkspaceState) error {
	dir := filepath.Join(workspaceDir, dirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path(workspaceDir), data, 0644)
}

func (s *Store) Remove(workspaceDir string) error {
	err := os.Remove(path(workspaceDir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
