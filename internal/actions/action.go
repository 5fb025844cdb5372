// Package actions implements the built-in custom actions a plan step can
// run instead of shell commands. Each type satisfies step.Action.
//
// Idempotency contracts per action type:
//   - AppendAction: skips the write when the file already holds the marker.
//   - LinkAction: succeeds without changes when the link already points at
//     the source.
//   - PackagesAction, DecryptAction, Func: always perform their work; use
//     skip_if for custom guards.
package actions

import (
	"context"
	"strings"
)

// Commander runs a shell command, capturing its output when capture is set.
// *shell.Executor satisfies it.
type Commander interface {
	Execute(ctx context.Context, command string, capture bool) (bool, string)
}

// quoteArgs joins args into a shell command line, single-quoting any
// argument that contains characters the shell would interpret.
func quoteArgs(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = quote(a)
	}
	return strings.Join(out, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:=+@,%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
