// Package resolve computes the working directories that anchor every
// relative path in a run: the project context, each target's context, and
// the files referenced by calculate_on criteria.
//
// Resolution is advisory for hashing precision, not correctness, so it never
// fails: every unresolvable lookup degrades to the project context.
package resolve

import (
	"fmt"
	"path/filepath"

	"github.com/orckahq/orcka/internal/bake"
	"github.com/orckahq/orcka/internal/manifest"
)

// ProjectContext returns the absolute base directory for the run: the
// manifest file's directory joined with project.context (default ".").
func ProjectContext(manifestPath, projectContext string) (string, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return "", fmt.Errorf("resolving manifest path %s: %w", manifestPath, err)
	}
	if projectContext == "" {
		projectContext = "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(abs), projectContext)), nil
}

// TargetContext returns the working directory for one target, branching on
// its context_of mode. Unknown targets, absent dockerfiles, and absent build
// contexts all fall back to the project context.
func TargetContext(name string, spec manifest.TargetSpec, defs map[string]*bake.Definition, projectCtx string) string {
	def := defs[name]

	switch spec.ContextOf {
	case manifest.ContextDockerfile:
		if def == nil || def.Dockerfile == "" {
			return projectCtx
		}
		return filepath.Dir(DockerfilePath(def, projectCtx))

	case manifest.ContextTarget:
		if def == nil || def.Context == "" {
			return projectCtx
		}
		return BuildContext(def, projectCtx)

	case manifest.ContextBake:
		if def == nil || def.File == "" {
			return projectCtx
		}
		abs, err := filepath.Abs(def.File)
		if err != nil {
			return projectCtx
		}
		return filepath.Dir(abs)

	default: // orcka
		return projectCtx
	}
}

// BuildContext returns a target's declared build context as an absolute
// directory. Relative contexts are anchored at the bake file that declared
// the target, the way the build tool anchors them.
func BuildContext(def *bake.Definition, projectCtx string) string {
	if def == nil || def.Context == "" {
		return projectCtx
	}
	if filepath.IsAbs(def.Context) {
		return filepath.Clean(def.Context)
	}
	base := projectCtx
	if def.File != "" {
		if abs, err := filepath.Abs(def.File); err == nil {
			base = filepath.Dir(abs)
		}
	}
	return filepath.Clean(filepath.Join(base, def.Context))
}

// DockerfilePath returns the absolute path of a target's dockerfile,
// resolved against its build context.
func DockerfilePath(def *bake.Definition, projectCtx string) string {
	if filepath.IsAbs(def.Dockerfile) {
		return filepath.Clean(def.Dockerfile)
	}
	return filepath.Join(BuildContext(def, projectCtx), def.Dockerfile)
}

// FilePath joins a calculate_on file reference onto a target's context.
func FilePath(targetCtx, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(targetCtx, rel)
}
