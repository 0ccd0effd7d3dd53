package bake

import (
	"fmt"
)

// Mode selects which parser implementation reads bake files. It is threaded
// explicitly from the CLI down to Load; there is no process-wide toggle.
type Mode string

const (
	// ModeStrict decodes bake files structurally with the HCL toolkit.
	ModeStrict Mode = "strict"
	// ModeFallback scans bake files tolerantly, line by line, accepting
	// constructs the strict decoder rejects and skipping what it cannot read.
	ModeFallback Mode = "fallback"
)

// Parser turns one bake file into normalized target definitions.
type Parser interface {
	ParseFile(path string) ([]*Definition, error)
}

// NewParser returns the parser implementation for the given mode.
func NewParser(mode Mode) (Parser, error) {
	switch mode {
	case ModeStrict, "":
		return &HCLParser{}, nil
	case ModeFallback:
		return &FallbackParser{}, nil
	default:
		return nil, fmt.Errorf("unknown parser mode '%s' — must be one of: strict, fallback", mode)
	}
}

// Load parses all bake files with the given parser and merges the results
// into a map keyed by target name. A target name declared in more than one
// file is a structural error.
func Load(p Parser, paths []string) (map[string]*Definition, error) {
	defs := make(map[string]*Definition)

	for _, path := range paths {
		parsed, err := p.ParseFile(path)
		if err != nil {
			return nil, err
		}
		for _, def := range parsed {
			if prev, ok := defs[def.Name]; ok {
				return nil, fmt.Errorf("target '%s' defined in both %s and %s", def.Name, prev.File, def.File)
			}
			defs[def.Name] = def
		}
	}

	return defs, nil
}
