package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/orckahq/orcka/internal/bake"
	"github.com/orckahq/orcka/internal/compose"
	"github.com/orckahq/orcka/internal/graph"
	"github.com/orckahq/orcka/internal/manifest"
	"github.com/orckahq/orcka/internal/period"
	"github.com/orckahq/orcka/internal/resolve"
)

// versionLen is the length of the hex token cut from the SHA256 digest.
const versionLen = 12

// Generator drives tag generation: it walks the dependency graph in
// topological order, resolves each target's context, assembles its hash
// input, and records the resulting version token for dependents to chain on.
type Generator struct {
	ManifestPath string
	Manifest     *manifest.Manifest
	Definitions  map[string]*bake.Definition
	Graph        *graph.Graph // built from Manifest and Definitions when nil

	// Now anchors period bucketing and the always marker.
	// The zero value means time.Now().
	Now time.Time

	Log *log.Logger
}

func (g *Generator) logger() *log.Logger {
	if g.Log != nil {
		return g.Log
	}
	return log.Default()
}

// Generate computes a tag for every target that has a build definition.
// Structural graph errors (cycles, unresolved references) abort before any
// tag is produced; unreadable files merely degrade hashing precision.
func (g *Generator) Generate(ctx context.Context) (*GenerateResult, error) {
	gr := g.Graph
	if gr == nil {
		gr = graph.Build(g.Manifest.Targets, g.Definitions)
	}
	if err := gr.Check(); err != nil {
		return nil, err
	}
	order, err := gr.TopoOrder()
	if err != nil {
		return nil, err
	}

	projectCtx, err := resolve.ProjectContext(g.ManifestPath, g.Manifest.Project.Context)
	if err != nil {
		return nil, err
	}

	declared := g.declaredTags(projectCtx)

	now := g.Now
	if now.IsZero() {
		now = time.Now()
	}
	alwaysToken := now.UTC().Format(time.RFC3339Nano)

	hasher := &Hasher{Log: g.Log}
	result := &GenerateResult{Resolved: make(map[string]string)}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		spec := g.Manifest.Targets[name]
		def := g.Definitions[name]
		if def == nil {
			// Known only from the manifest: nothing to build, nothing to tag.
			g.logger().Debug("no build definition, skipping", "target", name)
			continue
		}

		targetCtx := resolve.TargetContext(name, spec, g.Definitions, projectCtx)

		version := g.version(hasher, HashInput{
			Definition:     def,
			CalculateOn:    spec.CalculateOn,
			Resolves:       spec.Resolves,
			Resolved:       result.Resolved,
			TargetContext:  targetCtx,
			ProjectContext: projectCtx,
			Period:         g.periodDescriptor(name, spec, now),
			AlwaysToken:    alwaysToken,
		})

		result.Tags = append(result.Tags, GeneratedTag{
			Target:      name,
			Variable:    VarName(name),
			Version:     version,
			DeclaredTag: declared[name],
		})
		// Published before the next target so dependents observe it.
		result.Resolved[name] = version

		g.logger().Debug("tag generated", "target", name, "version", version)
	}

	return result, nil
}

func (g *Generator) version(h *Hasher, in HashInput) string {
	sum := sha256.Sum256([]byte(h.BuildInput(in)))
	return hex.EncodeToString(sum[:])[:versionLen]
}

func (g *Generator) periodDescriptor(name string, spec manifest.TargetSpec, now time.Time) string {
	unit, n, err := period.Normalize(spec.CalculateOn.Period)
	if err != nil {
		// Validation reports this as a schema error; generation degrades.
		g.logger().Warn("invalid period ignored", "target", name, "err", err)
		return ""
	}
	return period.Bucket(unit, n, now)
}

func (g *Generator) declaredTags(projectCtx string) map[string]string {
	if g.Manifest.Project.Compose == "" {
		return nil
	}
	path := resolve.FilePath(projectCtx, g.Manifest.Project.Compose)
	tags, err := compose.DeclaredTags(path)
	if err != nil {
		g.logger().Warn("compose file unreadable, declared tags skipped", "path", path, "err", err)
		return nil
	}
	return tags
}

// VarName derives the output variable name for a target: uppercase, with
// every non-alphanumeric rune flattened to an underscore, plus the fixed
// _TAG_VER suffix.
func VarName(target string) string {
	var b strings.Builder
	for _, r := range target {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune('_')
		}
	}
	b.WriteString("_TAG_VER")
	return b.String()
}
