package check

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/atomikpanda/provision/internal/step"
)

type fakeShell struct {
	ok    bool
	err   error
	calls []string
}

func (f *fakeShell) Eval(_ context.Context, command string) (bool, error) {
	f.calls = append(f.calls, command)
	return f.ok, f.err
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "id_ed25519")
	ctx := context.Background()

	ok, err := Exists{Path: key}.Evaluate(ctx)
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	if err := os.WriteFile(key, []byte("k"), 0o600); err != nil {
		t.Fatal(err)
	}
	ok, err = Exists{Path: key}.Evaluate(ctx)
	if err != nil || !ok {
		t.Fatalf("Exists(present) = %v, %v", ok, err)
	}
	ok, _ = Missing{Path: key}.Evaluate(ctx)
	if ok {
		t.Error("Missing(present) should be false")
	}
}

func TestExistsIsPure(t *testing.T) {
	dir := t.TempDir()
	c := Exists{Path: filepath.Join(dir, "x")}
	for i := 0; i < 3; i++ {
		if ok, _ := c.Evaluate(context.Background()); ok {
			t.Fatal("repeated evaluation changed the answer")
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("evaluation created files: %v", entries)
	}
}

func TestCommand(t *testing.T) {
	sh := &fakeShell{ok: true}
	ok, err := Command{Command: "command -v fish", Shell: sh}.Evaluate(context.Background())
	if err != nil || !ok {
		t.Fatalf("Command() = %v, %v", ok, err)
	}
	if len(sh.calls) != 1 || sh.calls[0] != "command -v fish" {
		t.Errorf("calls = %v", sh.calls)
	}
}

func TestTagMismatch(t *testing.T) {
	machine := []string{"linux", "laptop"}
	tests := []struct {
		name    string
		only    []string
		exclude []string
		want    bool
	}{
		{"no constraints", nil, nil, false},
		{"only matches", []string{"laptop"}, nil, false},
		{"only misses", []string{"server"}, nil, true},
		{"excluded", nil, []string{"laptop"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := TagMismatch{Machine: machine, Only: tt.only, Exclude: tt.exclude}.Evaluate(context.Background())
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOSMismatch(t *testing.T) {
	ctx := context.Background()
	if ok, _ := (OSMismatch{Want: "darwin", Current: "linux"}).Evaluate(ctx); !ok {
		t.Error("darwin on linux should mismatch")
	}
	if ok, _ := (OSMismatch{Want: "", Current: "linux"}).Evaluate(ctx); ok {
		t.Error("empty want should match every OS")
	}
}

func TestAnyStopsAtFirstTrue(t *testing.T) {
	second := &fakeShell{ok: true}
	a := Any{
		step.ConditionFunc(func(context.Context) (bool, error) { return true, nil }),
		Command{Command: "never", Shell: second},
	}
	ok, err := a.Evaluate(context.Background())
	if err != nil || !ok {
		t.Fatalf("Any() = %v, %v", ok, err)
	}
	if len(second.calls) != 0 {
		t.Error("Any should not evaluate past the first true condition")
	}
}

func TestAnyPropagatesError(t *testing.T) {
	a := Any{Command{Command: "x", Shell: &fakeShell{err: errors.New("no shell")}}}
	if _, err := a.Evaluate(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestCombine(t *testing.T) {
	if Combine(nil, nil) != nil {
		t.Error("Combine of nils should be nil")
	}
	single := Exists{Path: "/x"}
	if got := Combine(nil, single); got != step.Condition(single) {
		t.Errorf("Combine(single) = %#v", got)
	}
	if got, ok := Combine(single, Missing{Path: "/y"}).(Any); !ok || len(got) != 2 {
		t.Errorf("Combine(two) = %#v", got)
	}
}
