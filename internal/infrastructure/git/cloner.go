// Package git clones the repositories declared in a manifest's
// repositories map for `lo1 init`, using the same exec.Command idiom as
// the hooks and compose packages rather than a vendored git library.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Cloner shells out to the system git binary.
type Cloner struct{}

func New() *Cloner { return &Cloner{} }

// Clone clones url into path unless path already exists, in which case it
// reports skipped=true and does nothing.
func (c *Cloner) Clone(name, url, path string) (skipped bool, err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		return true, nil
	}

	cmd := exec.CommandContext(context.Background(), "git", "clone", url, path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("clone %s: %w", name, err)
	}
	return false, nil
}
