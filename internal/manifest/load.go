package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and decodes an orcka.yaml manifest file.
//
// Load only enforces that the document decodes into the manifest shape.
// Semantic checks (required fields, criteria presence, enum values) belong
// to the validation pipeline, so a single validate run can report every
// problem at once instead of dying on the first.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	return &m, nil
}
