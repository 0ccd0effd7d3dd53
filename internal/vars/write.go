// Package vars renders and writes the output variable file consumed by the
// downstream build tool invocation.
package vars

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/orckahq/orcka/internal/engine"
)

// Render produces the flat NAME = "value" assignment list. The equals signs
// are column-aligned and entries keep the generation order, so the file
// diffs cleanly between runs.
func Render(tags []engine.GeneratedTag) string {
	width := 0
	for _, t := range tags {
		if len(t.Variable) > width {
			width = len(t.Variable)
		}
		if t.DeclaredTag != "" && len(declaredVar(t)) > width {
			width = len(declaredVar(t))
		}
	}

	var b strings.Builder
	for _, t := range tags {
		fmt.Fprintf(&b, "%-*s = %q\n", width, t.Variable, t.Version)
		if t.DeclaredTag != "" {
			fmt.Fprintf(&b, "%-*s = %q\n", width, declaredVar(t), t.DeclaredTag)
		}
	}
	return b.String()
}

// declaredVar names the paired variable for a compose-declared tag.
func declaredVar(t engine.GeneratedTag) string {
	return strings.TrimSuffix(t.Variable, "_VER")
}

// Write renders the tags and writes them atomically using a temp file and
// rename. Parent directories are created as needed.
func Write(path string, tags []engine.GeneratedTag) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(Render(tags)), 0644); err != nil {
		return fmt.Errorf("writing temp variable file %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp variable file to %s: %w", path, err)
	}

	return nil
}
