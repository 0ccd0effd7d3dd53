package bake

import (
	"os"
	"path/filepath"
	"testing"
)

func writeBakeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const basicBake = `
group "default" {
  targets = ["base", "web"]
}

target "base" {
  dockerfile = "base/Dockerfile"
  context    = "."
}

target "web" {
  dockerfile = "web/Dockerfile"
  context    = "./web"
  args = {
    NODE_ENV = "production"
  }
  depends_on = ["base"]
  contexts = {
    baseimg = "target:base"
    assets  = "./static"
  }
  tags = ["registry.local/web:latest"]
}
`

func TestHCLParserBasic(t *testing.T) {
	path := writeBakeFile(t, t.TempDir(), "docker-bake.hcl", basicBake)

	defs, err := (&HCLParser{}).ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("defs = %d, want 2", len(defs))
	}

	byName := make(map[string]*Definition)
	for _, d := range defs {
		byName[d.Name] = d
	}

	web := byName["web"]
	if web == nil {
		t.Fatal("target 'web' not parsed")
	}
	if web.File != path {
		t.Errorf("web file = %q, want %q", web.File, path)
	}
	if web.Dockerfile != "web/Dockerfile" {
		t.Errorf("web dockerfile = %q", web.Dockerfile)
	}
	if web.Args["NODE_ENV"] != "production" {
		t.Errorf("web args = %v", web.Args)
	}
	if len(web.DependsOn) != 1 || web.DependsOn[0] != "base" {
		t.Errorf("web depends_on = %v", web.DependsOn)
	}

	if ref, ok := web.Contexts["baseimg"].TargetName(); !ok || ref != "base" {
		t.Errorf("baseimg context = %+v, want target ref to base", web.Contexts["baseimg"])
	}
	if _, ok := web.Contexts["assets"].TargetName(); ok {
		t.Error("assets context should be a literal")
	}
	if web.Contexts["assets"].String() != "./static" {
		t.Errorf("assets literal = %q", web.Contexts["assets"].String())
	}
}

func TestHCLParserVariableInterpolation(t *testing.T) {
	path := writeBakeFile(t, t.TempDir(), "docker-bake.hcl", `
variable "REGISTRY" {
  default = "registry.local"
}

target "api" {
  dockerfile = "Dockerfile"
  tags = ["${REGISTRY}/api:latest"]
}
`)

	defs, err := (&HCLParser{}).ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("defs = %d, want 1", len(defs))
	}
	if got := defs[0].Tags[0]; got != "registry.local/api:latest" {
		t.Errorf("tag = %q, want interpolated registry", got)
	}
}

func TestHCLParserVariableEnvOverride(t *testing.T) {
	t.Setenv("REGISTRY", "override.example.com")
	path := writeBakeFile(t, t.TempDir(), "docker-bake.hcl", `
variable "REGISTRY" {
  default = "registry.local"
}

target "api" {
  dockerfile = "Dockerfile"
  tags = ["${REGISTRY}/api:latest"]
}
`)

	defs, err := (&HCLParser{}).ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if got := defs[0].Tags[0]; got != "override.example.com/api:latest" {
		t.Errorf("tag = %q, want env override", got)
	}
}

func TestHCLParserRejectsMalformed(t *testing.T) {
	path := writeBakeFile(t, t.TempDir(), "broken.hcl", `target "a" { dockerfile = `)
	if _, err := (&HCLParser{}).ParseFile(path); err == nil {
		t.Fatal("expected error for malformed bake file")
	}
}

func TestLoadDuplicateTargetNames(t *testing.T) {
	dir := t.TempDir()
	writeBakeFile(t, dir, "a.hcl", `target "web" { dockerfile = "Dockerfile" }`)
	writeBakeFile(t, dir, "b.hcl", `target "web" { dockerfile = "Dockerfile" }`)

	p, err := NewParser(ModeStrict)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Load(p, []string{filepath.Join(dir, "a.hcl"), filepath.Join(dir, "b.hcl")})
	if err == nil {
		t.Fatal("expected duplicate target name error")
	}
}

func TestNewParserUnknownMode(t *testing.T) {
	if _, err := NewParser("lenient"); err == nil {
		t.Fatal("expected error for unknown parser mode")
	}
}

func TestParseContextValue(t *testing.T) {
	if name, ok := ParseContextValue("target:base").TargetName(); !ok || name != "base" {
		t.Errorf("target:base parsed as %q, %v", name, ok)
	}
	if _, ok := ParseContextValue("./dir").TargetName(); ok {
		t.Error("./dir should be a literal")
	}
	if got := ParseContextValue("target:base").String(); got != "target:base" {
		t.Errorf("round trip = %q", got)
	}
}
