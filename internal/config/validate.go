package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValidationError describes one problem with one step.
type ValidationError struct {
	Step    int // 1-based; 0 for plan-level problems
	Name    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Step == 0 {
		return e.Message
	}
	if e.Name == "" {
		return fmt.Sprintf("step %d: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("step %d (%s): %s", e.Step, e.Name, e.Message)
}

// ValidationErrors collects every problem found in a plan.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d plan errors: %s", len(e), strings.Join(msgs, "; "))
}

// Validate checks every step and returns ValidationErrors, or nil.
func (p *Plan) Validate() error {
	var errs ValidationErrors
	if len(p.Steps) == 0 {
		errs = append(errs, ValidationError{Message: "plan has no steps"})
	}
	for i, s := range p.Steps {
		for _, msg := range s.problems() {
			errs = append(errs, ValidationError{Step: i + 1, Name: s.Name, Message: msg})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s Step) problems() []string {
	var out []string
	if strings.TrimSpace(s.Name) == "" {
		out = append(out, "name is required")
	}
	switch {
	case len(s.Commands) > 0 && s.Action != nil:
		out = append(out, "commands and action are mutually exclusive")
	case len(s.Commands) == 0 && s.Action == nil:
		out = append(out, "one of commands or action is required")
	}
	for i, c := range s.Commands {
		if strings.TrimSpace(c) == "" {
			out = append(out, fmt.Sprintf("command %d is empty", i+1))
		}
	}
	if s.Action != nil {
		out = append(out, s.Action.problems()...)
		if s.ShowOutput {
			out = append(out, "show_output applies only to commands")
		}
	}
	if s.SkipIf != nil && s.SkipIf.IsZero() {
		out = append(out, "skip_if has no condition")
	}
	return out
}

func (a Action) problems() []string {
	kinds := a.Kinds()
	if len(kinds) != 1 {
		return []string{fmt.Sprintf("action must set exactly one of append, packages, link, decrypt (got %d)", len(kinds))}
	}
	var out []string
	switch {
	case a.Append != nil:
		if a.Append.Path == "" {
			out = append(out, "append.path is required")
		}
		if a.Append.Text == "" {
			out = append(out, "append.text is required")
		}
	case a.Packages != nil:
		if a.Packages.Via == "" {
			out = append(out, "packages.via is required")
		}
		if len(a.Packages.Names) == 0 {
			out = append(out, "packages.names is required")
		}
	case a.Link != nil:
		if a.Link.Source == "" || a.Link.Destination == "" {
			out = append(out, "link.source and link.destination are required")
		}
	case a.Decrypt != nil:
		if a.Decrypt.Source == "" || a.Decrypt.Destination == "" {
			out = append(out, "decrypt.source and decrypt.destination are required")
		}
		if a.Decrypt.Mode != "" {
			if _, err := strconv.ParseUint(a.Decrypt.Mode, 8, 32); err != nil {
				out = append(out, fmt.Sprintf("decrypt.mode %q is not octal", a.Decrypt.Mode))
			}
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
