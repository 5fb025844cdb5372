// Package check provides the skip conditions a plan can attach to a step.
// Every condition is a read-only query of the machine.
package check

import (
	"context"
	"os"

	"github.com/atomikpanda/provision/internal/step"
	"github.com/atomikpanda/provision/internal/tags"
)

// Exists is true when Path exists (file, directory or symlink target).
type Exists struct {
	Path string
}

func (c Exists) Evaluate(context.Context) (bool, error) {
	_, err := os.Stat(c.Path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Missing is true when Path does not exist.
type Missing struct {
	Path string
}

func (c Missing) Evaluate(ctx context.Context) (bool, error) {
	ok, err := Exists{Path: c.Path}.Evaluate(ctx)
	return !ok, err
}

// Evaluator runs a shell command and reports whether it exited zero.
type Evaluator interface {
	Eval(ctx context.Context, command string) (bool, error)
}

// Command is true when Command exits zero.
type Command struct {
	Command string
	Shell   Evaluator
}

func (c Command) Evaluate(ctx context.Context) (bool, error) {
	return c.Shell.Eval(ctx, c.Command)
}

// TagMismatch is true when the machine's tags do not satisfy the step's
// only/exclude constraints.
type TagMismatch struct {
	Machine []string
	Only    []string
	Exclude []string
}

func (c TagMismatch) Evaluate(context.Context) (bool, error) {
	return !tags.Matches(c.Machine, c.Only, c.Exclude), nil
}

// OSMismatch is true when the step targets a different operating system.
type OSMismatch struct {
	Want    string // "" matches every OS
	Current string
}

func (c OSMismatch) Evaluate(context.Context) (bool, error) {
	return c.Want != "" && c.Want != c.Current, nil
}

// Any is true when at least one of its conditions is. Evaluation stops at the
// first true condition or the first error.
type Any []step.Condition

func (a Any) Evaluate(ctx context.Context) (bool, error) {
	for _, c := range a {
		ok, err := c.Evaluate(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Combine joins conditions into one, dropping nils. It returns nil when
// nothing remains so the step is never skipped.
func Combine(conds ...step.Condition) step.Condition {
	var out Any
	for _, c := range conds {
		if c != nil {
			out = append(out, c)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}
