package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCurrent(t *testing.T) {
	got := Current()
	if got != runtime.GOOS {
		t.Errorf("Current() = %q, want %q", got, runtime.GOOS)
	}
}

func TestHomeDirDefault(t *testing.T) {
	want, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	got, err := HomeDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("HomeDir(\"\") = %q, want %q", got, want)
	}
}

func TestHomeDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROVISION_TEST_HOME", dir)
	got, err := HomeDir("$PROVISION_TEST_HOME")
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("HomeDir(override) = %q, want %q", got, dir)
	}
}

func TestExpandTilde(t *testing.T) {
	got := Expand("~/Documents", "/home/me", nil)
	want := filepath.Join("/home/me", "Documents")
	if got != want {
		t.Errorf("Expand(~/Documents) = %q, want %q", got, want)
	}
}

func TestExpandTildeAlone(t *testing.T) {
	if got := Expand("~", "/home/me", nil); got != "/home/me" {
		t.Errorf("Expand(~) = %q", got)
	}
}

func TestExpandEnvVar(t *testing.T) {
	lookup := LookupIn([]string{"FONT_DIR=/a", "FONT_DIR=/custom/path"})
	got := Expand("$FONT_DIR/sub", "/home/me", lookup)
	if got != "/custom/path/sub" {
		t.Errorf("Expand($FONT_DIR/sub) = %q", got)
	}
}

func TestExpandNoExpansion(t *testing.T) {
	if got := Expand("/absolute/path", "/home/me", nil); got != "/absolute/path" {
		t.Errorf("Expand(/absolute/path) = %q", got)
	}
}

func TestPackageManagerOS(t *testing.T) {
	tests := []struct {
		manager string
		want    string
	}{
		{"brew", "darwin"},
		{"mas", "darwin"},
		{"winget", "windows"},
		{"apt", "linux"},
		{"apt-get", "linux"},
		{"dnf", "linux"},
		{"pacman", "linux"},
		{"snap", "linux"},
		{"flatpak", ""},
		{"nix", ""},
	}
	for _, tt := range tests {
		t.Run(tt.manager, func(t *testing.T) {
			if got := PackageManagerOS(tt.manager); got != tt.want {
				t.Errorf("PackageManagerOS(%q) = %q, want %q", tt.manager, got, tt.want)
			}
		})
	}
}
