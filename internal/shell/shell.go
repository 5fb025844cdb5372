// Package shell runs step commands through the system shell.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor runs commands with a fixed working directory and environment.
type Executor struct {
	Dir    string   // working directory for every command
	Env    []string // full environment, KEY=value
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Executor that streams uncaptured output to the terminal.
func New(dir string, env []string) *Executor {
	return &Executor{Dir: dir, Env: env, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Execute runs command and reports whether it exited 0.
//
// With capture set, output is collected instead of shown; on failure the
// returned text is stderr, falling back to stdout. Without capture, output
// streams to Stdout/Stderr and the returned text is empty unless the shell
// itself could not be started.
func (e *Executor) Execute(ctx context.Context, command string, capture bool) (bool, string) {
	cmd := e.command(ctx, command)
	var stdout, stderr bytes.Buffer
	if capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = e.Stdout
		cmd.Stderr = e.Stderr
		cmd.Stdin = os.Stdin
	}

	err := cmd.Run()
	if err == nil {
		return true, ""
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false, err.Error()
	}
	if !capture {
		return false, ""
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return false, msg
	}
	return false, strings.TrimSpace(stdout.String())
}

// Eval executes command and returns true when it exits 0.
// A non-zero exit is not treated as a Go error; only execution failures are.
func (e *Executor) Eval(ctx context.Context, command string) (exitsZero bool, err error) {
	runErr := e.command(ctx, command).Run()
	if runErr == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return false, nil
	}
	return false, runErr
}

func (e *Executor) command(ctx context.Context, command string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.Dir
	cmd.Env = e.Env
	return cmd
}
