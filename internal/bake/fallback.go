package bake

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// FallbackParser is the tolerant bake file reader. It scans line by line with
// regular expressions, extracting what it recognizes and skipping what it
// does not. Bake files using HCL features the strict decoder rejects
// (functions, conditionals, references into other blocks) still yield usable
// definitions this way, at the cost of never reporting a syntax error.
type FallbackParser struct{}

var (
	reTargetHeader = regexp.MustCompile(`^\s*target\s+"([^"]+)"\s*\{`)
	reAttr         = regexp.MustCompile(`^\s*([A-Za-z_][\w-]*)\s*=\s*(.+?)\s*$`)
	reString       = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	rePair         = regexp.MustCompile(`"?([\w./:-]+)"?\s*[=:]\s*"((?:[^"\\]|\\.)*)"`)
)

// ParseFile scans one bake file into target definitions.
func (p *FallbackParser) ParseFile(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bake file %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	var defs []*Definition
	var cur *Definition
	depth := 0

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}

		if cur == nil {
			if m := reTargetHeader.FindStringSubmatch(line); m != nil {
				cur = &Definition{Name: m[1], File: path}
				depth = 1
			}
			continue
		}

		if m := reAttr.FindStringSubmatch(line); m != nil && depth == 1 {
			raw := collectBalanced(lines, &i, m[2])
			assign(cur, m[1], raw)
			continue
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth <= 0 {
			defs = append(defs, cur)
			cur = nil
		}
	}

	// An unterminated target block still counts; tolerance is the point.
	if cur != nil {
		defs = append(defs, cur)
	}

	return defs, nil
}

// collectBalanced extends a raw attribute value across lines until its
// brackets and braces balance out, advancing the line index past what was
// consumed.
func collectBalanced(lines []string, i *int, raw string) string {
	net := func(s string) int {
		return strings.Count(s, "[") - strings.Count(s, "]") +
			strings.Count(s, "{") - strings.Count(s, "}")
	}
	balance := net(raw)
	for balance > 0 && *i+1 < len(lines) {
		*i++
		raw += "\n" + lines[*i]
		balance += net(lines[*i])
	}
	return raw
}

func assign(def *Definition, key, raw string) {
	switch key {
	case "dockerfile":
		def.Dockerfile = scalar(raw)
	case "context":
		def.Context = scalar(raw)
	case "depends_on":
		def.DependsOn = stringList(raw)
	case "tags":
		def.Tags = stringList(raw)
	case "args":
		def.Args = stringMap(raw)
	case "contexts":
		m := stringMap(raw)
		if len(m) > 0 {
			def.Contexts = make(map[string]ContextValue, len(m))
			for k, v := range m {
				def.Contexts[k] = ParseContextValue(v)
			}
		}
	}
	// Unrecognized keys are skipped on purpose.
}

// scalar extracts a quoted string, or the trimmed raw text when unquoted.
func scalar(raw string) string {
	if m := reString.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.Trim(raw, " \t,\"'")
}

func stringList(raw string) []string {
	var out []string
	for _, m := range reString.FindAllStringSubmatch(raw, -1) {
		out = append(out, m[1])
	}
	return out
}

func stringMap(raw string) map[string]string {
	matches := rePair.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make(map[string]string, len(matches))
	for _, m := range matches {
		out[m[1]] = m[2]
	}
	return out
}
