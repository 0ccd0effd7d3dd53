package engine

import (
	"os"
	"os/exec"
	"sort"

	"github.com/orckahq/orcka/internal/bake"
	"github.com/orckahq/orcka/internal/graph"
	"github.com/orckahq/orcka/internal/manifest"
	"github.com/orckahq/orcka/internal/period"
	"github.com/orckahq/orcka/internal/resolve"
)

// Validator runs the full validation pipeline: schema checks on the
// manifest, structural checks on the dependency graph, and existence checks
// on every referenced file. It always runs all checks and returns every
// finding, so one pass shows the complete picture.
type Validator struct {
	ManifestPath string
	Manifest     *manifest.Manifest
	Definitions  map[string]*bake.Definition
	Graph        *graph.Graph // built from Manifest and Definitions when nil

	// LookPath locates external executables. nil means exec.LookPath.
	LookPath func(string) (string, error)
}

// Validate runs every check and returns the aggregated result.
func (v *Validator) Validate() *ValidationResult {
	result := &ValidationResult{}

	v.checkSchema(result)
	v.checkGraph(result)
	v.checkFiles(result)
	v.checkTools(result)

	return result
}

func (v *Validator) checkSchema(result *ValidationResult) {
	p := v.Manifest.Project
	if p.Name == "" {
		result.errorf(FindingSchema, "", "project.name", "project name is required")
	}
	if p.Write == "" {
		result.errorf(FindingSchema, "", "project.write", "project write target is required")
	}
	if len(p.Bake) == 0 {
		result.errorf(FindingSchema, "", "project.bake", "at least one bake file is required")
	}

	for _, name := range v.targetNames() {
		spec := v.Manifest.Targets[name]

		if spec.CalculateOn.Empty() {
			result.errorf(FindingSchema, name, "calculate_on",
				"target '%s': calculate_on must specify at least one of: always, period, files, jq", name)
		}

		if _, _, err := period.Normalize(spec.CalculateOn.Period); err != nil {
			result.errorf(FindingSchema, name, "calculate_on.period", "target '%s': %v", name, err)
		}

		if jq := spec.CalculateOn.JQ; jq != nil {
			if jq.Filename == "" {
				result.errorf(FindingSchema, name, "calculate_on.jq", "target '%s': jq criterion requires 'filename'", name)
			}
			if jq.Selector == "" {
				result.errorf(FindingSchema, name, "calculate_on.jq", "target '%s': jq criterion requires 'selector'", name)
			}
		}

		switch spec.ContextOf {
		case "", manifest.ContextOrcka, manifest.ContextDockerfile, manifest.ContextTarget, manifest.ContextBake:
		default:
			result.errorf(FindingSchema, name, "context_of",
				"target '%s': invalid context_of '%s' — must be one of: orcka, dockerfile, target, bake", name, spec.ContextOf)
		}
	}
}

// checkGraph surfaces cycle and unresolved-reference findings. Other graph
// observations are left to the file checks to avoid duplicate reporting.
func (v *Validator) checkGraph(result *ValidationResult) {
	gr := v.Graph
	if gr == nil {
		gr = graph.Build(v.Manifest.Targets, v.Definitions)
	}

	if cycle := gr.FindCycle(); cycle != nil {
		result.Errors = append(result.Errors, Finding{
			Type:    FindingDependency,
			Target:  cycle.Path[0],
			Message: cycle.Error(),
		})
	}

	for _, ref := range gr.MissingReferences() {
		result.Errors = append(result.Errors, Finding{
			Type:    FindingDependency,
			Target:  ref.From,
			Message: ref.Error(),
		})
	}
}

func (v *Validator) checkFiles(result *ValidationResult) {
	projectCtx, err := resolve.ProjectContext(v.ManifestPath, v.Manifest.Project.Context)
	if err != nil {
		result.errorf(FindingRuntime, "", "", "resolving project context: %v", err)
		return
	}

	for _, name := range v.targetNames() {
		spec := v.Manifest.Targets[name]
		def := v.Definitions[name]
		targetCtx := resolve.TargetContext(name, spec, v.Definitions, projectCtx)

		if def != nil && def.Dockerfile != "" {
			path := resolve.DockerfilePath(def, projectCtx)
			if !exists(path) {
				result.Errors = append(result.Errors, Finding{
					Type: FindingFile, Target: name, Path: path,
					Message: "dockerfile not found: " + path,
				})
			}
		}

		for _, rel := range spec.CalculateOn.Files {
			path := resolve.FilePath(targetCtx, rel)
			if !exists(path) {
				result.Errors = append(result.Errors, Finding{
					Type: FindingFile, Target: name, Path: path,
					Message: "calculate_on file not found: " + path,
				})
			}
		}

		if jq := spec.CalculateOn.JQ; jq != nil && jq.Filename != "" {
			path := resolve.FilePath(targetCtx, jq.Filename)
			if !exists(path) {
				result.Errors = append(result.Errors, Finding{
					Type: FindingFile, Target: name, Path: path,
					Message: "jq file not found: " + path,
				})
			}
		}

		// Literal context directories are advisory: the build tool will
		// complain itself if they matter, so absence is only a warning.
		if def != nil {
			for _, key := range contextKeys(def) {
				val := def.Contexts[key]
				if _, isRef := val.TargetName(); isRef {
					continue
				}
				path := resolve.FilePath(targetCtx, val.String())
				if !exists(path) {
					result.warnf(FindingFile, name, path, "context '%s' path not found: %s", key, path)
				}
			}
		}
	}

	if v.Manifest.Project.Compose != "" {
		path := resolve.FilePath(projectCtx, v.Manifest.Project.Compose)
		if !exists(path) {
			result.warnf(FindingFile, "", path, "compose file not found: %s", path)
		}
	}
}

// checkTools verifies external executables. One aggregated finding per tool,
// not one per target.
func (v *Validator) checkTools(result *ValidationResult) {
	usesJQ := false
	for _, spec := range v.Manifest.Targets {
		if spec.CalculateOn.JQ != nil {
			usesJQ = true
			break
		}
	}
	if !usesJQ {
		return
	}

	lookPath := v.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath("jq"); err != nil {
		result.errorf(FindingDependency, "", "",
			"jq executable not found on PATH — required by targets using the jq criterion")
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (v *Validator) targetNames() []string {
	names := make([]string, 0, len(v.Manifest.Targets))
	for name := range v.Manifest.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contextKeys(def *bake.Definition) []string {
	keys := make([]string, 0, len(def.Contexts))
	for k := range def.Contexts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
