package tags

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		machine []string
		only    []string
		exclude []string
		want    bool
	}{
		{"no constraints", []string{"linux", "amd64"}, nil, nil, true},
		{"only match", []string{"linux", "amd64"}, []string{"linux"}, nil, true},
		{"only no match", []string{"darwin", "amd64"}, []string{"linux"}, nil, false},
		{"exclude match", []string{"linux", "amd64"}, nil, []string{"linux"}, false},
		{"exclude no match", []string{"darwin", "amd64"}, nil, []string{"linux"}, true},
		{"only and exclude both match", []string{"linux", "work"}, []string{"linux"}, []string{"work"}, false},
		{"empty machine tags", []string{}, []string{"linux"}, nil, false},
		{"empty machine no constraints", []string{}, nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.machine, tt.only, tt.exclude); got != tt.want {
				t.Errorf("Matches(%v, %v, %v) = %v, want %v", tt.machine, tt.only, tt.exclude, got, tt.want)
			}
		})
	}
}

func TestAutoDetect(t *testing.T) {
	detected := AutoDetect()
	if len(detected) < 2 {
		t.Fatalf("expected at least 2 tags, got %d", len(detected))
	}
	if detected[0] != runtime.GOOS {
		t.Errorf("first tag = %q, want %q", detected[0], runtime.GOOS)
	}
	if detected[1] != runtime.GOARCH {
		t.Errorf("second tag = %q, want %q", detected[1], runtime.GOARCH)
	}
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath("/home/me")
	if p != "/home/me/.config/provision/machine.yaml" {
		t.Errorf("DefaultPath() = %q", p)
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), "cfg", "machine.yaml")}
	if err := s.Save(&MachineConfig{Tags: []string{"laptop", "work"}}); err != nil {
		t.Fatal(err)
	}
	cfg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Tags) != 2 || cfg.Tags[0] != "laptop" || cfg.Tags[1] != "work" {
		t.Errorf("Tags = %v", cfg.Tags)
	}
}

func TestLoadMissing(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), "machine.yaml")}
	cfg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Tags) != 0 {
		t.Errorf("expected no tags, got %v", cfg.Tags)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.yaml")
	if err := os.WriteFile(path, []byte("tags: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (Store{Path: path}).Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnsureInitialisedAndAdd(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), "machine.yaml")}
	if err := s.EnsureInitialised(); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("laptop"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("laptop"); err != nil {
		t.Fatal(err)
	}
	cfg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, tag := range cfg.Tags {
		if tag == "laptop" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("laptop tag count = %d, want 1 (tags %v)", count, cfg.Tags)
	}
	if cfg.Tags[0] != runtime.GOOS {
		t.Errorf("first tag = %q, want auto-detected %q", cfg.Tags[0], runtime.GOOS)
	}
}

func TestMachineFallsBackToAutoDetect(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), "machine.yaml")}
	got, err := s.Machine()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < 2 || got[0] != runtime.GOOS {
		t.Errorf("Machine() = %v", got)
	}
}
