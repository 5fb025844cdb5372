package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atomikpanda/provision/internal/step"
)

// LinkAction symlinks Destination to Source, e.g. a dotfile kept in a repo.
type LinkAction struct {
	Source      string // absolute path of the file the link points at
	Destination string // absolute path of the link
	Force       bool   // replace an existing regular file or directory
}

func (a *LinkAction) Describe() string {
	return fmt.Sprintf("link   %s -> %s", a.Destination, a.Source)
}

// IsApplied reports whether Destination is already a link to Source.
func (a *LinkAction) IsApplied() bool {
	dest, err := os.Readlink(a.Destination)
	return err == nil && dest == a.Source
}

func (a *LinkAction) Perform(ctx context.Context) step.Outcome {
	if a.IsApplied() {
		return step.Succeeded()
	}
	if _, err := os.Stat(a.Source); err != nil {
		return step.Failed(fmt.Sprintf("link source: %v", err))
	}
	info, err := os.Lstat(a.Destination)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink == 0 && !a.Force:
		return step.Failed(fmt.Sprintf("%s exists and is not a link; set force to replace it", a.Destination))
	case err == nil:
		if err := os.RemoveAll(a.Destination); err != nil {
			return step.Failed(fmt.Sprintf("remove existing destination: %v", err))
		}
	case !os.IsNotExist(err):
		return step.FromError(err)
	}
	if err := os.MkdirAll(filepath.Dir(a.Destination), 0o755); err != nil {
		return step.Failed(fmt.Sprintf("create destination directory: %v", err))
	}
	return step.FromError(os.Symlink(a.Source, a.Destination))
}
