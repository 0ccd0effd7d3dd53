package bake

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// HCLParser is the strict structural parser. It decodes target blocks with
// the HCL toolkit and fails on anything it does not understand, which keeps
// typos and malformed files loud instead of silently ignored.
type HCLParser struct{}

// fileRoot decodes the top-level blocks of a bake file. Group blocks are
// accepted and ignored; variable blocks feed the evaluation context.
type fileRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Groups    []*groupBlock    `hcl:"group,block"`
	Targets   []*targetBlock   `hcl:"target,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type variableBlock struct {
	Name    string         `hcl:"name,label"`
	Default hcl.Expression `hcl:"default,optional"`
	Remain  hcl.Body       `hcl:",remain"`
}

type groupBlock struct {
	Name    string   `hcl:"name,label"`
	Targets []string `hcl:"targets,optional"`
	Remain  hcl.Body `hcl:",remain"`
}

type targetBlock struct {
	Name       string            `hcl:"name,label"`
	Dockerfile string            `hcl:"dockerfile,optional"`
	Context    string            `hcl:"context,optional"`
	Args       map[string]string `hcl:"args,optional"`
	DependsOn  []string          `hcl:"depends_on,optional"`
	Contexts   map[string]string `hcl:"contexts,optional"`
	Tags       []string          `hcl:"tags,optional"`
	Remain     hcl.Body          `hcl:",remain"`
}

// ParseFile decodes one bake file into target definitions.
func (p *HCLParser) ParseFile(path string) ([]*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing bake file %s: %w", path, diags)
	}

	// First pass: collect variable blocks only. Their defaults are plain
	// expressions, so no evaluation context is needed yet; everything else
	// lands in Remain untouched.
	var head struct {
		Variables []*variableBlock `hcl:"variable,block"`
		Remain    hcl.Body         `hcl:",remain"`
	}
	if diags := gohcl.DecodeBody(file.Body, nil, &head); diags.HasErrors() {
		return nil, fmt.Errorf("decoding bake file %s: %w", path, diags)
	}

	evalCtx, err := buildEvalContext(head.Variables)
	if err != nil {
		return nil, fmt.Errorf("evaluating variables in %s: %w", path, err)
	}

	// Second pass: full decode with the variable scope, so "${VAR}"
	// interpolations in target attributes resolve the way the build tool
	// resolves them.
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding bake file %s: %w", path, diags)
	}

	defs := make([]*Definition, 0, len(root.Targets))
	for _, tb := range root.Targets {
		defs = append(defs, toDefinition(path, tb))
	}

	return defs, nil
}

func toDefinition(path string, tb *targetBlock) *Definition {
	def := &Definition{
		Name:       tb.Name,
		File:       path,
		Dockerfile: tb.Dockerfile,
		Context:    tb.Context,
		Args:       tb.Args,
		DependsOn:  tb.DependsOn,
		Tags:       tb.Tags,
	}
	if len(tb.Contexts) > 0 {
		def.Contexts = make(map[string]ContextValue, len(tb.Contexts))
		for k, v := range tb.Contexts {
			def.Contexts[k] = ParseContextValue(v)
		}
	}
	return def
}

// buildEvalContext evaluates variable block defaults into a cty scope.
// An environment variable with the same name overrides the default, matching
// the build tool's behavior.
func buildEvalContext(vars []*variableBlock) (*hcl.EvalContext, error) {
	values := make(map[string]cty.Value, len(vars))
	for _, vb := range vars {
		val := cty.StringVal("")
		if vb.Default != nil {
			v, diags := vb.Default.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("variable '%s': %w", vb.Name, diags)
			}
			val = v
		}
		if env, ok := os.LookupEnv(vb.Name); ok {
			val = cty.StringVal(env)
		}
		values[vb.Name] = val
	}

	return &hcl.EvalContext{Variables: values}, nil
}
