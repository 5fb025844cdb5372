package color

import (
	"bytes"
	"strings"
	"testing"
)

func TestColorDisabled(t *testing.T) {
	Enabled = false
	if got := Bold("hello"); got != "hello" {
		t.Errorf("Bold() with Enabled=false = %q, want %q", got, "hello")
	}
	if got := Red("test"); got != "test" {
		t.Errorf("Red() with Enabled=false = %q", got)
	}
	if got := Dim("dim"); got != "dim" {
		t.Errorf("Dim() with Enabled=false = %q", got)
	}
}

func TestColorEnabled(t *testing.T) {
	Enabled = true
	defer func() { Enabled = false }()

	tests := []struct {
		name string
		got  string
		code string
		text string
	}{
		{"Bold", Bold("hello"), "1", "hello"},
		{"Red", Red("r"), "31", "r"},
		{"Green", Green("g"), "32", "g"},
		{"Yellow", Yellow("y"), "33", "y"},
		{"Cyan", Cyan("c"), "36", "c"},
		{"Dim", Dim("d"), "2", "d"},
		{"BoldRed", BoldRed("br"), "1;31", "br"},
		{"BoldGreen", BoldGreen("bg"), "1;32", "bg"},
		{"BoldYellow", BoldYellow("by"), "1;33", "by"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.got, "\x1b["+tt.code+"m") {
				t.Errorf("%s() = %q, want prefix ESC[%sm", tt.name, tt.got, tt.code)
			}
			if !strings.Contains(tt.got, tt.text) || !strings.HasSuffix(tt.got, "m") {
				t.Errorf("%s() = %q", tt.name, tt.got)
			}
		})
	}
}

func TestColorEmptyString(t *testing.T) {
	Enabled = true
	defer func() { Enabled = false }()
	if got := Bold(""); got != "" {
		t.Errorf("Bold('') = %q, want empty", got)
	}
}

func TestInitForNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	Enabled = true
	InitFor(&bytes.Buffer{})
	if Enabled {
		t.Error("InitFor() should not enable color when NO_COLOR is set")
	}
}

func TestInitForTermDumb(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	Enabled = true
	InitFor(&bytes.Buffer{})
	if Enabled {
		t.Error("InitFor() should not enable color when TERM=dumb")
	}
}

func TestInitForNonTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("CLICOLOR_FORCE", "")
	Enabled = true
	InitFor(&bytes.Buffer{})
	if Enabled {
		t.Error("InitFor() should not enable color for a non-terminal writer")
	}
}
