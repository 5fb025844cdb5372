package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/atomikpanda/provision/internal/actions"
	"github.com/atomikpanda/provision/internal/ageutil"
	"github.com/atomikpanda/provision/internal/check"
	"github.com/atomikpanda/provision/internal/config"
	"github.com/atomikpanda/provision/internal/platform"
	"github.com/atomikpanda/provision/internal/step"
	"github.com/atomikpanda/provision/internal/template"
)

const defaultDecryptMode os.FileMode = 0o600

// Shell runs step commands and command skip conditions.
type Shell interface {
	Executor
	check.Evaluator
}

// Options carries the run-wide inputs Build needs.
type Options struct {
	Env     Env
	Shell   Shell
	Machine []string     // machine tags
	OS      string       // runtime.GOOS value; empty means the current OS
	Key     *ageutil.Key // nil when no age key is configured
}

// Build turns plan steps into runnable steps. Vars are rendered into every
// string field, machine paths are expanded against the run environment, and
// plan-relative sources resolve against the plan directory.
func Build(plan *config.Plan, steps []config.Step, opts Options) ([]step.Step, error) {
	if opts.OS == "" {
		opts.OS = platform.Current()
	}
	b := builder{plan: plan, opts: opts, lookup: opts.Env.Lookup()}
	out := make([]step.Step, 0, len(steps))
	for _, cs := range steps {
		s, err := b.step(cs)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", cs.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

type builder struct {
	plan   *config.Plan
	opts   Options
	lookup func(string) string
}

func (b builder) step(cs config.Step) (step.Step, error) {
	cs, err := template.RenderStep(cs, b.plan.Vars)
	if err != nil {
		return nil, err
	}
	info := step.Info{
		Name:     cs.Name,
		SkipIf:   b.skipIf(cs),
		Optional: cs.Optional,
	}
	if len(cs.Commands) > 0 {
		return step.CommandSequence{Info: info, Commands: cs.Commands, ShowOutput: cs.ShowOutput}, nil
	}
	if cs.Action == nil {
		return nil, fmt.Errorf("no commands or action")
	}
	action, err := b.action(*cs.Action)
	if err != nil {
		return nil, err
	}
	if p := cs.Action.Packages; p != nil {
		info.SkipIf = check.Combine(info.SkipIf, check.OSMismatch{
			Want:    platform.PackageManagerOS(p.Via),
			Current: b.opts.OS,
		})
	}
	return step.CustomAction{Info: info, Action: action}, nil
}

func (b builder) skipIf(cs config.Step) step.Condition {
	var conds []step.Condition
	if len(cs.OnlyTags) > 0 || len(cs.ExcludeTags) > 0 {
		conds = append(conds, check.TagMismatch{Machine: b.opts.Machine, Only: cs.OnlyTags, Exclude: cs.ExcludeTags})
	}
	if s := cs.SkipIf; s != nil {
		if s.Exists != "" {
			conds = append(conds, check.Exists{Path: b.machinePath(s.Exists)})
		}
		if s.Missing != "" {
			conds = append(conds, check.Missing{Path: b.machinePath(s.Missing)})
		}
		if s.Command != "" {
			conds = append(conds, check.Command{Command: s.Command, Shell: b.opts.Shell})
		}
	}
	return check.Combine(conds...)
}

func (b builder) action(a config.Action) (step.Action, error) {
	switch {
	case a.Append != nil:
		return &actions.AppendAction{
			Path:           b.machinePath(a.Append.Path),
			Text:           a.Append.Text,
			UnlessContains: a.Append.UnlessContains,
		}, nil
	case a.Packages != nil:
		return actions.NewPackagesAction(a.Packages.Via, a.Packages.Names, a.Packages.Update, b.opts.Shell)
	case a.Link != nil:
		return &actions.LinkAction{
			Source:      b.machinePath(b.plan.Path(a.Link.Source)),
			Destination: b.machinePath(a.Link.Destination),
			Force:       a.Link.Force,
		}, nil
	case a.Decrypt != nil:
		mode := defaultDecryptMode
		if a.Decrypt.Mode != "" {
			m, err := strconv.ParseUint(a.Decrypt.Mode, 8, 32)
			if err != nil {
				return nil, fmt.Errorf("decrypt.mode %q: %w", a.Decrypt.Mode, err)
			}
			mode = os.FileMode(m)
		}
		return &actions.DecryptAction{
			Source:      b.machinePath(b.plan.Path(a.Decrypt.Source)),
			Destination: b.machinePath(a.Decrypt.Destination),
			Mode:        mode,
			Key:         b.opts.Key,
		}, nil
	default:
		return nil, fmt.Errorf("action has no recognised kind")
	}
}

// machinePath expands ~ and $VARS; a path still relative afterwards is taken
// relative to home, the working directory of every command.
func (b builder) machinePath(p string) string {
	p = platform.Expand(p, b.opts.Env.Home, b.lookup)
	if !filepath.IsAbs(p) {
		p = filepath.Join(b.opts.Env.Home, p)
	}
	return p
}

// WouldSkip evaluates the skip condition of s without running it.
func WouldSkip(ctx context.Context, s step.Step) (bool, error) {
	cond := s.Meta().SkipIf
	if cond == nil {
		return false, nil
	}
	return cond.Evaluate(ctx)
}
