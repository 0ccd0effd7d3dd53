// Package orcka provides the public Go library API for orcka.
//
// orcka computes deterministic, content-addressed version tags for a set of
// interdependent container build targets, so a downstream build tool only
// rebuilds images whose relevant inputs actually changed. This package
// exposes the engine for embedding in other Go programs.
//
// # Basic Usage
//
//	client, err := orcka.New(orcka.Options{ManifestPath: "orcka.yaml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Report every manifest and graph problem in one pass.
//	report := client.Validate()
//
//	// Compute the tag for every build target.
//	result, err := client.Generate(ctx)
package orcka

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/orckahq/orcka/internal/bake"
	"github.com/orckahq/orcka/internal/engine"
	"github.com/orckahq/orcka/internal/graph"
	"github.com/orckahq/orcka/internal/manifest"
	"github.com/orckahq/orcka/internal/vars"
)

// Re-exported result types; these are the library's output contract.
type (
	GeneratedTag     = engine.GeneratedTag
	GenerateResult   = engine.GenerateResult
	Finding          = engine.Finding
	ValidationResult = engine.ValidationResult
)

// Options configures an orcka client.
type Options struct {
	// ManifestPath is the orcka.yaml location. Required.
	ManifestPath string

	// ParserMode selects the bake file parser: "strict" (default) or
	// "fallback".
	ParserMode string
}

// Client is a loaded manifest plus its parsed bake definitions, ready to
// validate or generate.
type Client struct {
	manifestPath string
	manifest     *manifest.Manifest
	definitions  map[string]*bake.Definition
	graph        *graph.Graph
}

// New loads the manifest and parses all declared bake files.
func New(opts Options) (*Client, error) {
	if opts.ManifestPath == "" {
		return nil, fmt.Errorf("manifest path is required")
	}

	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	parser, err := bake.NewParser(bake.Mode(opts.ParserMode))
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(opts.ManifestPath)
	paths := make([]string, 0, len(m.Project.Bake))
	for _, p := range m.Project.Bake {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		paths = append(paths, p)
	}

	defs, err := bake.Load(parser, paths)
	if err != nil {
		return nil, err
	}

	return &Client{
		manifestPath: opts.ManifestPath,
		manifest:     m,
		definitions:  defs,
		graph:        graph.Build(m.Targets, defs),
	}, nil
}

// Manifest returns the loaded manifest.
func (c *Client) Manifest() *manifest.Manifest {
	return c.manifest
}

// Validate runs the full validation pipeline and returns every finding.
func (c *Client) Validate() *ValidationResult {
	v := &engine.Validator{
		ManifestPath: c.manifestPath,
		Manifest:     c.manifest,
		Definitions:  c.definitions,
		Graph:        c.graph,
	}
	return v.Validate()
}

// Generate computes a tag for every build target, in dependency order.
func (c *Client) Generate(ctx context.Context) (*GenerateResult, error) {
	g := &engine.Generator{
		ManifestPath: c.manifestPath,
		Manifest:     c.manifest,
		Definitions:  c.definitions,
		Graph:        c.graph,
	}
	return g.Generate(ctx)
}

// Write renders the generated tags into the manifest's declared variable
// file, relative to the manifest directory.
func (c *Client) Write(result *GenerateResult) error {
	path := c.manifest.Project.Write
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(c.manifestPath), path)
	}
	return vars.Write(path, result.Tags)
}
