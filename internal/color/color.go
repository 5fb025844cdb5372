// Package color provides ANSI colour helpers for terminal output.
// All functions are no-ops when Enabled is false, so callers need not
// guard their output; just call Init once at program start.
package color

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Enabled is true when ANSI colour output is supported.
var Enabled bool

// Init detects whether os.Stdout can render colour and sets Enabled.
func Init() {
	InitFor(os.Stdout)
}

// InitFor detects colour support for w. Colour is suppressed when NO_COLOR is
// set, TERM=dumb, or w is not a terminal. The lipgloss profile used for boxed
// output follows the same decision.
func InitFor(w io.Writer) {
	profile := termenv.NewOutput(w).EnvColorProfile()
	if os.Getenv("TERM") == "dumb" {
		profile = termenv.Ascii
	}
	Enabled = profile != termenv.Ascii
	if Enabled {
		lipgloss.SetColorProfile(termenv.ANSI)
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

func paint(s string, bold bool, fg termenv.Color) string {
	if !Enabled || s == "" {
		return s
	}
	st := termenv.ANSI.String(s)
	if bold {
		st = st.Bold()
	}
	if fg != nil {
		st = st.Foreground(fg)
	}
	return st.String()
}

func Bold(s string) string       { return paint(s, true, nil) }
func Red(s string) string        { return paint(s, false, termenv.ANSIRed) }
func Green(s string) string      { return paint(s, false, termenv.ANSIGreen) }
func Yellow(s string) string     { return paint(s, false, termenv.ANSIYellow) }
func Cyan(s string) string       { return paint(s, false, termenv.ANSICyan) }
func BoldRed(s string) string    { return paint(s, true, termenv.ANSIRed) }
func BoldGreen(s string) string  { return paint(s, true, termenv.ANSIGreen) }
func BoldYellow(s string) string { return paint(s, true, termenv.ANSIYellow) }

// Dim renders s faint.
func Dim(s string) string {
	if !Enabled || s == "" {
		return s
	}
	return termenv.ANSI.String(s).Faint().String()
}
