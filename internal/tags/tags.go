// Package tags manages machine-specific tags used to gate plan steps.
package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"gopkg.in/yaml.v3"
)

// MachineConfig is the schema of ~/.config/provision/machine.yaml.
type MachineConfig struct {
	Tags []string `yaml:"tags"`
}

// Store reads and writes the machine config at Path.
type Store struct {
	Path string
}

// DefaultPath returns the machine config location under home.
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "provision", "machine.yaml")
}

// Load reads the machine config, returning an empty config if the file does not exist.
func (s Store) Load() (*MachineConfig, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return &MachineConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read machine config: %w", err)
	}
	var cfg MachineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse machine config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg, creating parent directories.
func (s Store) Save(cfg *MachineConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o644)
}

// EnsureInitialised writes the machine config with auto-detected tags if it
// does not already exist.
func (s Store) EnsureInitialised() error {
	if _, err := os.Stat(s.Path); err == nil {
		return nil
	}
	return s.Save(&MachineConfig{Tags: AutoDetect()})
}

// Add appends tag to the machine config if not already present.
func (s Store) Add(tag string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if slices.Contains(cfg.Tags, tag) {
		return nil
	}
	cfg.Tags = append(cfg.Tags, tag)
	return s.Save(cfg)
}

// Machine returns the stored tags, or the auto-detected ones when the file
// has never been written.
func (s Store) Machine() ([]string, error) {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return AutoDetect(), nil
	}
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	return cfg.Tags, nil
}

// AutoDetect returns a baseline set of tags derived from the current machine.
func AutoDetect() []string {
	tags := []string{runtime.GOOS, runtime.GOARCH}
	if h, err := os.Hostname(); err == nil && h != "" {
		tags = append(tags, h)
	}
	return tags
}

// Matches returns true when machineTags satisfies the onlyTags/excludeTags
// constraints defined on a step.
//
//   - If onlyTags is non-empty, at least one must be present in machineTags.
//   - If excludeTags is non-empty, none may be present in machineTags.
func Matches(machineTags, onlyTags, excludeTags []string) bool {
	for _, t := range excludeTags {
		if slices.Contains(machineTags, t) {
			return false
		}
	}
	if len(onlyTags) == 0 {
		return true
	}
	for _, t := range onlyTags {
		if slices.Contains(machineTags, t) {
			return true
		}
	}
	return false
}
