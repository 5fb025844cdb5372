// Package platform resolves paths and host facts for the machine being
// provisioned.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Current returns the runtime.GOOS value ("darwin", "windows", "linux", …).
func Current() string {
	return runtime.GOOS
}

// HomeDir returns the invoking user's home directory. An explicit override
// (from the plan file) wins and is itself expanded against the real home.
func HomeDir(override string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if override == "" {
		return home, nil
	}
	return filepath.Abs(Expand(override, home, os.Getenv))
}

// Expand expands a leading "~" to home and $VARS using lookup.
func Expand(path, home string, lookup func(string) string) string {
	switch {
	case path == "~":
		path = home
	case strings.HasPrefix(path, "~/"):
		path = filepath.Join(home, path[2:])
	}
	if lookup == nil {
		lookup = os.Getenv
	}
	return os.Expand(path, lookup)
}

// LookupIn returns a lookup function over a KEY=value environment slice.
// Later entries override earlier ones, matching exec semantics.
func LookupIn(env []string) func(string) string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return func(key string) string { return m[key] }
}

// PackageManagerOS maps a package manager name to the OS it runs on.
// Returns "" when the manager is not OS-specific (always available).
func PackageManagerOS(manager string) string {
	switch manager {
	case "brew", "brew-cask", "mas":
		return "darwin"
	case "winget", "choco", "scoop":
		return "windows"
	case "apt", "apt-get", "dnf", "yum", "pacman", "snap":
		return "linux"
	default:
		return ""
	}
}
