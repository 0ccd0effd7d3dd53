package engine

import "fmt"

// FindingType classifies a validation finding.
type FindingType string

const (
	FindingSchema     FindingType = "schema"     // manifest structurally invalid
	FindingDependency FindingType = "dependency" // cycle, unresolved reference, missing tool
	FindingFile       FindingType = "file"       // referenced file absent or unreadable
	FindingRuntime    FindingType = "runtime"    // unexpected parse failure
)

// Finding is a single validation error or warning. This shape is the
// contract between the validation pipeline and any presentation layer.
type Finding struct {
	Type    FindingType
	Message string
	Target  string // target name, when the finding is target-scoped
	Field   string // manifest field, when the finding is field-scoped
	Path    string // filesystem path, for file findings
}

func (f Finding) String() string {
	s := fmt.Sprintf("[%s] %s", f.Type, f.Message)
	if f.Target != "" {
		s += fmt.Sprintf(" (target: %s)", f.Target)
	}
	return s
}

// ValidationResult holds every finding from one validation pass.
// The pipeline never short-circuits: both lists are always complete.
type ValidationResult struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether validation found no errors. Warnings do not count.
func (r *ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) errorf(t FindingType, target, field, format string, args ...any) {
	r.Errors = append(r.Errors, Finding{Type: t, Target: target, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(t FindingType, target, path, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{Type: t, Target: target, Path: path, Message: fmt.Sprintf(format, args...)})
}

// GeneratedTag is the output record for one target.
type GeneratedTag struct {
	Target   string
	Variable string // e.g. WEB_TAG_VER
	Version  string // digest-derived token

	// DeclaredTag carries the tag a compose service already declares for
	// this target's image. Additive annotation; never hash-affecting.
	DeclaredTag string
}

// GenerateResult is the full outcome of a tag generation run.
type GenerateResult struct {
	Tags     []GeneratedTag    // topological order
	Resolved map[string]string // target name -> version token
}
