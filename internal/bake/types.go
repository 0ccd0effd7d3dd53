package bake

import "strings"

// Definition is the normalized record for one build target, as declared in a
// bake file. Parsing produces these; the graph and hash layers never look at
// the native syntax.
type Definition struct {
	Name       string
	File       string // bake file that declared the target
	Dockerfile string
	Context    string
	Args       map[string]string
	DependsOn  []string
	Contexts   map[string]ContextValue
	Tags       []string
}

// ContextValue is a named build context entry: either a literal path/URL or a
// reference to another target's image. The "target:" prefix is parsed exactly
// once, here at the boundary, so downstream code never re-inspects strings.
type ContextValue struct {
	target  string
	literal string
}

// Literal returns a ContextValue holding a plain path or URL.
func Literal(v string) ContextValue {
	return ContextValue{literal: v}
}

// TargetRef returns a ContextValue referencing another target by name.
func TargetRef(name string) ContextValue {
	return ContextValue{target: name}
}

// ParseContextValue classifies a raw contexts entry.
func ParseContextValue(raw string) ContextValue {
	if name, ok := strings.CutPrefix(raw, "target:"); ok {
		return TargetRef(name)
	}
	return Literal(raw)
}

// TargetName returns the referenced target name and true for target
// references, or "" and false for literals.
func (v ContextValue) TargetName() (string, bool) {
	return v.target, v.target != ""
}

// String returns the raw form the value was parsed from.
func (v ContextValue) String() string {
	if v.target != "" {
		return "target:" + v.target
	}
	return v.literal
}
