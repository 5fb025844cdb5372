package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the plan file looked up when none is given.
const DefaultFile = "provision.yaml"

// Plan is the top-level provisioning plan: run settings plus the ordered
// step list. Step order is execution order.
type Plan struct {
	Home    string            `yaml:"home,omitempty"`     // overrides the invoking user's home
	EnvFile string            `yaml:"env_file,omitempty"` // dotenv file, relative to the plan
	Env     map[string]string `yaml:"env,omitempty"`
	Vars    map[string]any    `yaml:"vars,omitempty"` // template params for {{ .name }}
	Age     AgeConfig         `yaml:"age,omitempty"`
	Notes   []string          `yaml:"notes,omitempty"` // printed after a successful run
	Steps   []Step            `yaml:"steps"`

	// Dir is the directory holding the plan file; relative paths resolve
	// against it.
	Dir string `yaml:"-"`
}

// AgeConfig names the key used by decrypt actions.
type AgeConfig struct {
	Identity   string `yaml:"identity,omitempty"`
	Passphrase string `yaml:"passphrase,omitempty"`
}

// Step is one entry of the plan. Exactly one of Commands or Action is set.
type Step struct {
	Name        string     `yaml:"name"`
	Commands    StringList `yaml:"commands,omitempty"`
	Action      *Action    `yaml:"action,omitempty"`
	SkipIf      *SkipIf    `yaml:"skip_if,omitempty"`
	OnlyTags    []string   `yaml:"only_tags,omitempty"`
	ExcludeTags []string   `yaml:"exclude_tags,omitempty"`
	Optional    bool       `yaml:"optional,omitempty"`
	ShowOutput  bool       `yaml:"show_output,omitempty"`
}

// Mode returns "commands", "action", or "" when neither is set.
func (s Step) Mode() string {
	switch {
	case len(s.Commands) > 0:
		return "commands"
	case s.Action != nil:
		return "action"
	default:
		return ""
	}
}

// SkipIf lists skip conditions; the step is skipped when any holds.
// A bare string is shorthand for {exists: <path>}.
type SkipIf struct {
	Exists  string `yaml:"exists,omitempty"`
	Missing string `yaml:"missing,omitempty"`
	Command string `yaml:"command,omitempty"`
}

func (s *SkipIf) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		s.Exists = n.Value
		return nil
	}
	type plain SkipIf
	return n.Decode((*plain)(s))
}

// IsZero reports whether no condition is set.
func (s SkipIf) IsZero() bool {
	return s.Exists == "" && s.Missing == "" && s.Command == ""
}

// Action selects one built-in custom action.
type Action struct {
	Append   *AppendSpec   `yaml:"append,omitempty"`
	Packages *PackagesSpec `yaml:"packages,omitempty"`
	Link     *LinkSpec     `yaml:"link,omitempty"`
	Decrypt  *DecryptSpec  `yaml:"decrypt,omitempty"`
}

// Kinds returns the names of every action kind that is set.
func (a Action) Kinds() []string {
	var kinds []string
	if a.Append != nil {
		kinds = append(kinds, "append")
	}
	if a.Packages != nil {
		kinds = append(kinds, "packages")
	}
	if a.Link != nil {
		kinds = append(kinds, "link")
	}
	if a.Decrypt != nil {
		kinds = append(kinds, "decrypt")
	}
	return kinds
}

// AppendSpec appends Text to Path unless the file already contains
// UnlessContains (or Text itself when UnlessContains is empty).
type AppendSpec struct {
	Path           string `yaml:"path"`
	Text           string `yaml:"text"`
	UnlessContains string `yaml:"unless_contains,omitempty"`
}

// PackagesSpec installs Names with the Via package manager.
type PackagesSpec struct {
	Via    string     `yaml:"via"`
	Names  StringList `yaml:"names"`
	Update bool       `yaml:"update,omitempty"` // refresh the package index first
}

// LinkSpec symlinks Destination to Source.
type LinkSpec struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	Force       bool   `yaml:"force,omitempty"` // replace an existing non-link file
}

// DecryptSpec decrypts an age file into place.
type DecryptSpec struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	Mode        string `yaml:"mode,omitempty"` // Unix octal, default 0600
}

// StringList accepts either a single string or a sequence of strings.
type StringList []string

func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*l = StringList{n.Value}
		return nil
	}
	var items []string
	if err := n.Decode(&items); err != nil {
		return err
	}
	*l = items
	return nil
}

// Load reads, parses, and validates a plan file.
func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	plan, err := Parse(data)
	if err != nil {
		return Plan{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Plan{}, err
	}
	plan.Dir = filepath.Dir(abs)
	return plan, nil
}

// Parse decodes and validates plan YAML.
func Parse(data []byte) (Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, err
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Save writes plan to path as YAML.
func Save(path string, plan Plan) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Step returns the named step, or nil if not found.
func (p *Plan) Step(name string) *Step {
	for i := range p.Steps {
		if p.Steps[i].Name == name {
			return &p.Steps[i]
		}
	}
	return nil
}

// Select returns the steps named in names, in plan order. An empty names
// selects every step.
func (p *Plan) Select(names []string) ([]Step, error) {
	if len(names) == 0 {
		return p.Steps, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if p.Step(n) == nil {
			return nil, fmt.Errorf("step %q not found in plan", n)
		}
		want[n] = true
	}
	var out []Step
	for _, s := range p.Steps {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out, nil
}

// Path resolves a plan-relative path. Absolute paths and paths starting
// with "~" or "$" are returned unchanged for later expansion.
func (p *Plan) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) || rel[0] == '~' || rel[0] == '$' {
		return rel
	}
	return filepath.Join(p.Dir, rel)
}

// Environment returns the extra KEY=value pairs the plan contributes:
// the env file first, then the inline env map on top.
func (p *Plan) Environment() ([]string, error) {
	merged := map[string]string{}
	if p.EnvFile != "" {
		fromFile, err := godotenv.Read(p.Path(p.EnvFile))
		if err != nil {
			return nil, fmt.Errorf("read env file %q: %w", p.EnvFile, err)
		}
		for k, v := range fromFile {
			merged[k] = v
		}
	}
	for k, v := range p.Env {
		merged[k] = v
	}
	env := make([]string, 0, len(merged))
	for _, k := range sortedKeys(merged) {
		env = append(env, k+"="+merged[k])
	}
	return env, nil
}
