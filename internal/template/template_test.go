package template

import (
	"strings"
	"testing"

	"github.com/atomikpanda/provision/internal/config"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		vars  map[string]any
		want  string
	}{
		{"simple", "hello {{ .name }}", map[string]any{"name": "world"}, "hello world"},
		{"multiple", "{{ .a }} and {{ .b }}", map[string]any{"a": "x", "b": "y"}, "x and y"},
		{"no template", "plain text", map[string]any{"x": "y"}, "plain text"},
		{"shell syntax untouched", `eval "$(ssh-agent -s)"`, nil, `eval "$(ssh-agent -s)"`},
		{"number", "port {{ .port }}", map[string]any{"port": 22}, "port 22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.input, tt.vars)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderMissingVar(t *testing.T) {
	if _, err := Render("user {{ .missing }}", map[string]any{"name": "x"}); err == nil {
		t.Error("expected error for undefined var")
	}
	if _, err := Render("user {{ .missing }}", nil); err == nil {
		t.Error("expected error for undefined var with no vars")
	}
}

func TestRenderInvalidTemplate(t *testing.T) {
	if _, err := Render("{{ .bad", nil); err == nil {
		t.Error("expected error for invalid template")
	}
}

func TestRenderStep(t *testing.T) {
	s := config.Step{
		Name:     "Git config for {{ .name }}",
		Commands: config.StringList{`git config --global user.email "{{ .email }}"`, "git config --global init.defaultBranch main"},
		SkipIf:   &config.SkipIf{Exists: "~/{{ .marker }}"},
		Optional: true,
	}
	vars := map[string]any{"name": "Ada", "email": "ada@example.com", "marker": ".gitconfig"}
	got, err := RenderStep(s, vars)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Git config for Ada" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Commands[0] != `git config --global user.email "ada@example.com"` {
		t.Errorf("Commands[0] = %q", got.Commands[0])
	}
	if got.Commands[1] != s.Commands[1] {
		t.Errorf("Commands[1] changed: %q", got.Commands[1])
	}
	if got.SkipIf.Exists != "~/.gitconfig" {
		t.Errorf("SkipIf.Exists = %q", got.SkipIf.Exists)
	}
	if !got.Optional {
		t.Error("Optional lost in rendering")
	}
}

func TestRenderStepAction(t *testing.T) {
	s := config.Step{
		Name: "Append",
		Action: &config.Action{Append: &config.AppendSpec{
			Path: "~/.zshrc",
			Text: "export EMAIL={{ .email }}\n",
		}},
	}
	got, err := RenderStep(s, map[string]any{"email": "a@b.c"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Action.Append.Text != "export EMAIL=a@b.c\n" {
		t.Errorf("Text = %q", got.Action.Append.Text)
	}
}

func TestRenderStepError(t *testing.T) {
	s := config.Step{Name: "x", Commands: config.StringList{"echo {{ .nope }}"}}
	_, err := RenderStep(s, nil)
	if err == nil || !strings.Contains(err.Error(), `step "x"`) {
		t.Errorf("err = %v", err)
	}
}
