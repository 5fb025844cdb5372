// Package template renders plan vars into step fields. Commands, paths and
// appended text may use {{ .name }} syntax.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/atomikpanda/provision/internal/config"
)

// Render executes the Go template string s with vars as the data object.
// Referencing an undefined var is an error.
func Render(s string, vars map[string]any) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	t, err := template.New("").Option("missingkey=error").Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", s, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("execute template %q: %w", s, err)
	}
	return buf.String(), nil
}

// RenderStep renders every string field of s. The step is encoded to a YAML
// node tree, each string scalar value is rendered in place, and the tree is
// decoded back, so new fields are covered without listing them here.
func RenderStep(s config.Step, vars map[string]any) (config.Step, error) {
	var node yaml.Node
	if err := node.Encode(s); err != nil {
		return s, fmt.Errorf("encode step %q for rendering: %w", s.Name, err)
	}
	if err := renderNode(&node, vars); err != nil {
		return s, fmt.Errorf("render step %q: %w", s.Name, err)
	}
	var out config.Step
	if err := node.Decode(&out); err != nil {
		return s, fmt.Errorf("decode rendered step %q: %w", s.Name, err)
	}
	return out, nil
}

func renderNode(n *yaml.Node, vars map[string]any) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() != "!!str" {
			return nil
		}
		v, err := Render(n.Value, vars)
		if err != nil {
			return err
		}
		n.Value = v
	case yaml.MappingNode:
		// Content alternates key, value; keys are never rendered.
		for i := 1; i < len(n.Content); i += 2 {
			if err := renderNode(n.Content[i], vars); err != nil {
				return err
			}
		}
	default:
		for _, c := range n.Content {
			if err := renderNode(c, vars); err != nil {
				return err
			}
		}
	}
	return nil
}
