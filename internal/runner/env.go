package runner

import (
	"os"

	"github.com/atomikpanda/provision/internal/platform"
)

// Env is the fixed environment every step of a run executes in. It is built
// once at start-up and never changes during the run.
type Env struct {
	Home string   // working directory for every command
	Vars []string // full KEY=value environment, HOME included
}

// NewEnv returns the run environment: the parent process environment, then
// extra, then HOME=home. Later entries win.
func NewEnv(home string, extra []string) Env {
	vars := append([]string{}, os.Environ()...)
	vars = append(vars, extra...)
	vars = append(vars, "HOME="+home)
	return Env{Home: home, Vars: vars}
}

// Lookup returns a variable lookup over the run environment.
func (e Env) Lookup() func(string) string {
	return platform.LookupIn(e.Vars)
}
