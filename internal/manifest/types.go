package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest represents the orcka.yaml manifest file.
// It is loaded once per invocation and never mutated afterwards.
type Manifest struct {
	Project Project               `yaml:"project"`
	Targets map[string]TargetSpec `yaml:"targets"`
}

// Project declares project identity, the base context directory, the output
// variable file, and the bake files to read.
type Project struct {
	Name    string   `yaml:"name"`
	Context string   `yaml:"context,omitempty"` // relative to the manifest file, default "."
	Write   string   `yaml:"write"`
	Bake    []string `yaml:"bake"`
	Compose string   `yaml:"compose,omitempty"` // optional compose file for declared tags
}

// Context resolution modes for context_of.
const (
	ContextOrcka      = "orcka"
	ContextDockerfile = "dockerfile"
	ContextTarget     = "target"
	ContextBake       = "bake"
)

// ContextModes lists the recognized context_of values.
var ContextModes = []string{ContextOrcka, ContextDockerfile, ContextTarget, ContextBake}

// TargetSpec is the per-target manifest entry.
type TargetSpec struct {
	CalculateOn CalculateOn `yaml:"calculate_on"`
	ContextOf   string      `yaml:"context_of,omitempty"`
	Resolves    []string    `yaml:"resolves,omitempty"`
}

// CalculateOn declares the change criteria that feed a target's hash input.
type CalculateOn struct {
	Files  []string `yaml:"files,omitempty"`
	JQ     *JQ      `yaml:"jq,omitempty"`
	Period *Period  `yaml:"period,omitempty"`
	Always bool     `yaml:"always,omitempty"`
	Date   string   `yaml:"date,omitempty"`
}

// Empty reports whether no qualifying criterion is declared.
func (c CalculateOn) Empty() bool {
	return !c.Always && c.Period == nil && len(c.Files) == 0 && c.JQ == nil
}

// JQ references a JSON/YAML file and a jq selector into it.
type JQ struct {
	Filename string `yaml:"filename"`
	Selector string `yaml:"selector"`
}

// Period accepts either a shorthand string ("weekly") or a unit/number pair
// ({unit: week, number: 2}). Both shapes are preserved so validation can
// report exactly what the manifest said.
type Period struct {
	Unit   string
	Number int
	Raw    string // set when the shorthand string form was used
}

// UnmarshalYAML decodes the two accepted shapes of a period value.
func (p *Period) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return fmt.Errorf("decoding period: %w", err)
		}
		p.Raw = s
		return nil
	case yaml.MappingNode:
		var obj struct {
			Unit   string `yaml:"unit"`
			Number int    `yaml:"number"`
		}
		if err := value.Decode(&obj); err != nil {
			return fmt.Errorf("decoding period: %w", err)
		}
		p.Unit = obj.Unit
		p.Number = obj.Number
		return nil
	default:
		return fmt.Errorf("period must be a string or a {unit, number} mapping, got %s", value.Tag)
	}
}
