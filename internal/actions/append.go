package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atomikpanda/provision/internal/step"
)

// AppendAction appends a block of text to a file such as a shell rc file,
// creating the file and its parent directories when missing.
type AppendAction struct {
	Path string // fully expanded
	Text string
	// UnlessContains skips the write when the file already contains it.
	// Empty means the Text itself is the marker.
	UnlessContains string
}

func (a *AppendAction) Describe() string {
	return fmt.Sprintf("append %d line(s) to %s", strings.Count(strings.TrimRight(a.Text, "\n"), "\n")+1, a.Path)
}

func (a *AppendAction) Perform(ctx context.Context) step.Outcome {
	return step.FromError(a.apply())
}

func (a *AppendAction) apply() error {
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	existing, err := os.ReadFile(a.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", a.Path, err)
	}

	marker := a.UnlessContains
	if marker == "" {
		marker = strings.TrimSpace(a.Text)
	}
	if strings.Contains(string(existing), marker) {
		return nil
	}

	var b strings.Builder
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(a.Text)
	if !strings.HasSuffix(a.Text, "\n") {
		b.WriteString("\n")
	}

	f, err := os.OpenFile(a.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.Path, err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", a.Path, err)
	}
	return f.Close()
}
