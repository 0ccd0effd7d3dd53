package engine

import (
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/orckahq/orcka/internal/bake"
	"github.com/orckahq/orcka/internal/manifest"
	"github.com/orckahq/orcka/internal/resolve"
)

// HashInput carries everything the hash engine needs for one target.
// The period descriptor and always token are computed by the orchestrator,
// so the engine itself stays a pure function of its inputs.
type HashInput struct {
	Definition     *bake.Definition
	CalculateOn    manifest.CalculateOn
	Resolves       []string          // explicit manifest-level dependencies
	Resolved       map[string]string // tags of already-processed targets
	TargetContext  string
	ProjectContext string
	Period         string // normalized bucket descriptor, empty when unset
	AlwaysToken    string // per-run marker for the always flag
}

// Hasher assembles the deterministic digest input string for a target.
// Unreadable files are not errors: they degrade to path-based entries, which
// means a content change in an unreadable file goes undetected — only a path
// change does. Each degradation is logged at warn level.
type Hasher struct {
	Log *log.Logger
}

func (h *Hasher) logger() *log.Logger {
	if h.Log != nil {
		return h.Log
	}
	return log.Default()
}

// BuildInput assembles the hash input categories in fixed order, each entry
// newline-joined. For fixed file contents and a fixed resolved-tags map the
// output is byte-identical across runs: every map-backed category is sorted
// before emission.
func (h *Hasher) BuildInput(in HashInput) string {
	var entries []string
	def := in.Definition

	// 1. Dockerfile content, resolved against the target's build context.
	if def != nil && def.Dockerfile != "" {
		path := resolve.DockerfilePath(def, in.ProjectContext)
		if content, err := os.ReadFile(path); err == nil {
			entries = append(entries, "dockerfile:"+string(content))
		} else {
			h.logger().Warn("dockerfile unreadable, hashing its path instead", "target", def.Name, "path", path)
			entries = append(entries, "dockerfile:"+def.Dockerfile)
		}
	}

	// 2. Build arguments, ascending key order.
	if def != nil {
		for _, k := range sortedStringKeys(def.Args) {
			entries = append(entries, "arg:"+k+"="+def.Args[k])
		}
	}

	// 3. Resolved tags of explicit dependencies, ascending name order.
	// Only dependencies already processed in topological order appear.
	for _, dep := range explicitDeps(def, in.Resolves) {
		if tag, ok := in.Resolved[dep]; ok {
			entries = append(entries, "dep:"+dep+"="+tag)
		}
	}

	// 4. Named contexts, ascending key order. Target references with a
	// resolved tag chain that tag in; everything else hashes literally.
	if def != nil {
		keys := make([]string, 0, len(def.Contexts))
		for k := range def.Contexts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := def.Contexts[k]
			if name, ok := v.TargetName(); ok {
				if tag, resolved := in.Resolved[name]; resolved {
					entries = append(entries, "context:"+k+"="+tag)
					continue
				}
			}
			entries = append(entries, "context:"+k+"="+v.String())
		}
	}

	// 5. calculate_on.files, declared list order. Readable files contribute
	// content only, so moving a file without changing it leaves the digest
	// alone.
	for _, rel := range in.CalculateOn.Files {
		path := resolve.FilePath(in.TargetContext, rel)
		if content, err := os.ReadFile(path); err == nil {
			entries = append(entries, "file:"+string(content))
		} else {
			h.logger().Warn("file unreadable, hashing its path instead", "path", path)
			entries = append(entries, "file:"+rel)
		}
	}

	// 6. calculate_on.jq: file content plus selector.
	if jq := in.CalculateOn.JQ; jq != nil {
		path := resolve.FilePath(in.TargetContext, jq.Filename)
		if content, err := os.ReadFile(path); err == nil {
			entries = append(entries, "jq:"+jq.Selector+"="+string(content))
		} else {
			h.logger().Warn("jq file unreadable, hashing its path instead", "path", path)
			entries = append(entries, "jq:"+jq.Selector+"="+jq.Filename)
		}
	}

	// 7. Period descriptor and explicit date marker, opaque strings here.
	if in.Period != "" {
		entries = append(entries, "period:"+in.Period)
	}
	if in.CalculateOn.Date != "" {
		entries = append(entries, "date:"+in.CalculateOn.Date)
	}

	// 8. Always marker.
	if in.CalculateOn.Always {
		token := in.AlwaysToken
		if token == "" {
			token = "enabled"
		}
		entries = append(entries, "always:"+token)
	}

	return strings.Join(entries, "\n")
}

// explicitDeps merges depends_on and resolves lists, deduplicated and
// ascending.
func explicitDeps(def *bake.Definition, resolves []string) []string {
	seen := make(map[string]bool)
	var deps []string
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				deps = append(deps, n)
			}
		}
	}
	if def != nil {
		add(def.DependsOn)
	}
	add(resolves)
	sort.Strings(deps)
	return deps
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
