package actions

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendActionDescribe(t *testing.T) {
	a := &AppendAction{Path: "/home/me/.zshrc", Text: "a\nb\n"}
	if got := a.Describe(); got != "append 2 line(s) to /home/me/.zshrc" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestAppendActionCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".config", "fish", "config.fish")
	a := &AppendAction{Path: path, Text: "set -g theme_nerd_fonts yes"}
	if o := a.Perform(context.Background()); !o.OK {
		t.Fatalf("Perform() failed: %s", o.Message)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "set -g theme_nerd_fonts yes\n" {
		t.Errorf("content = %q", data)
	}
}

func TestAppendActionIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.fish")
	if err := os.WriteFile(path, []byte("set -g theme_powerline_fonts no"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := &AppendAction{
		Path:           path,
		Text:           "set -g theme_powerline_fonts no\nset -g theme_nerd_fonts yes\n",
		UnlessContains: "theme_powerline_fonts",
	}
	for i := 0; i < 2; i++ {
		if o := a.Perform(context.Background()); !o.OK {
			t.Fatalf("Perform() failed: %s", o.Message)
		}
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "theme_nerd_fonts") {
		t.Errorf("marker present, nothing should be appended: %q", data)
	}
}

func TestAppendActionTextIsDefaultMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".zshrc")
	if err := os.WriteFile(path, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := &AppendAction{Path: path, Text: "export PATH=\"$HOME/.local/bin:$PATH\"\n"}
	a.Perform(context.Background())
	a.Perform(context.Background())
	data, _ := os.ReadFile(path)
	want := "# existing\nexport PATH=\"$HOME/.local/bin:$PATH\"\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestAppendActionUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	a := &AppendAction{Path: filepath.Join(blocker, "child", "rc"), Text: "x"}
	o := a.Perform(context.Background())
	if o.OK || o.Message == "" {
		t.Errorf("expected failure with message, got %+v", o)
	}
}
