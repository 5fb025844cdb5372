// Package runner executes an ordered list of provisioning steps, stopping at
// the first failed required step.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atomikpanda/provision/internal/audit"
	"github.com/atomikpanda/provision/internal/color"
	"github.com/atomikpanda/provision/internal/report"
	"github.com/atomikpanda/provision/internal/step"
)

// ErrAborted is returned by Run when a required step failed.
var ErrAborted = errors.New("aborted: required step failed")

// Fallback messages for failures that carry no detail of their own.
const (
	msgSkipped       = "condition matched"
	msgActionFailed  = "action reported failure"
	msgCommandFailed = "exit code non-zero"
)

// Executor runs one shell command. *shell.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, command string, capture bool) (bool, string)
}

// Recorder stores step results. *audit.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Runner runs steps in order and reports progress through Out.
type Runner struct {
	Exec   Executor
	Out    *report.Printer
	DryRun bool

	// Recorder, when set, receives every result. Recording is best effort:
	// failures are reported to Warn and never change the run outcome.
	Recorder Recorder
	RunID    string
	Command  string // "run" | "check"
	Warn     io.Writer

	// Notes are printed after the completion notice of a successful run.
	Notes []string
}

// New returns a Runner that prints to stdout.
func New(exec Executor, dryRun, verbose bool) *Runner {
	return &Runner{
		Exec:    exec,
		Out:     report.New(os.Stdout, verbose),
		DryRun:  dryRun,
		Command: "run",
		Warn:    os.Stderr,
	}
}

// Run executes steps in order. Every result is printed as soon as it is
// known. The first failed required step prints an abort notice and ends the
// run with ErrAborted; the summary is printed in every case.
func (r *Runner) Run(ctx context.Context, steps []step.Step) ([]step.Result, error) {
	total := len(steps)
	results := make([]step.Result, 0, total)
	var err error
	for i, s := range steps {
		r.Out.StepStart(i+1, total, s.Meta().Name)
		res := r.RunStep(ctx, s, i+1, total)
		results = append(results, res)
		r.Out.Result(res)
		r.record(ctx, res)
		if res.Fatal() {
			r.Out.Aborted()
			err = ErrAborted
			break
		}
	}
	r.Out.Summary(report.Summarize(results, total))
	if err == nil {
		r.Out.Done(r.Notes...)
	}
	return results, err
}

// RunStep runs a single step and converts every outcome, including a
// panicking action, into a Result. It never returns an error.
func (r *Runner) RunStep(ctx context.Context, s step.Step, index, total int) (res step.Result) {
	info := s.Meta()
	res = step.Result{Name: info.Name, Index: index, Total: total, Optional: info.Optional}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if info.SkipIf != nil {
		skip, err := info.SkipIf.Evaluate(ctx)
		if err != nil {
			return failed(res, "skip check: "+err.Error())
		}
		if skip {
			res.Status = step.StatusSkipped
			res.Message = msgSkipped
			return res
		}
	}

	switch s := s.(type) {
	case step.CommandSequence:
		return r.runCommands(ctx, s, res)
	case *step.CommandSequence:
		return r.runCommands(ctx, *s, res)
	case step.CustomAction:
		return r.runAction(ctx, s, res)
	case *step.CustomAction:
		return r.runAction(ctx, *s, res)
	default:
		return failed(res, fmt.Sprintf("unsupported step type %T", s))
	}
}

func (r *Runner) runCommands(ctx context.Context, s step.CommandSequence, res step.Result) step.Result {
	for _, c := range s.Commands {
		r.Out.Command(c)
		if r.DryRun {
			continue
		}
		ok, msg := r.Exec.Execute(ctx, c, !s.ShowOutput)
		if !ok {
			if msg == "" {
				msg = msgCommandFailed
			}
			return failed(res, msg)
		}
	}
	res.Status = step.StatusOK
	return res
}

func (r *Runner) runAction(ctx context.Context, s step.CustomAction, res step.Result) step.Result {
	if s.Action == nil {
		return failed(res, "no action configured")
	}
	r.Out.Detail("%s", s.Action.Describe())
	if r.DryRun {
		r.Out.DryRun(s.Action.Describe())
		res.Status = step.StatusOK
		return res
	}
	out := perform(ctx, s.Action)
	if !out.OK {
		msg := out.Message
		if msg == "" {
			msg = msgActionFailed
		}
		return failed(res, msg)
	}
	res.Status = step.StatusOK
	return res
}

// perform calls a.Perform, converting a panic into a failed Outcome.
func perform(ctx context.Context, a step.Action) (out step.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = step.Failed(fmt.Sprintf("panic: %v", p))
		}
	}()
	return a.Perform(ctx)
}

func failed(res step.Result, msg string) step.Result {
	res.Status = step.StatusFailed
	res.Message = msg
	return res
}

func (r *Runner) record(ctx context.Context, res step.Result) {
	if r.Recorder == nil || r.DryRun {
		return
	}
	err := r.Recorder.Record(ctx, audit.Entry{
		RunID:    r.RunID,
		Command:  r.Command,
		Step:     res.Name,
		Index:    res.Index,
		Total:    res.Total,
		Outcome:  res.Status.String(),
		Optional: res.Optional,
		Message:  res.Message,
		Duration: res.Duration,
	})
	if err != nil && r.Warn != nil {
		fmt.Fprintln(r.Warn, color.Yellow("warning: "+err.Error()))
	}
}

// ExitCode maps the error returned by Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
