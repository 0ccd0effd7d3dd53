package graph

import (
	"reflect"
	"strings"
	"testing"

	"github.com/orckahq/orcka/internal/bake"
	"github.com/orckahq/orcka/internal/manifest"
)

func defsOf(deps map[string][]string) map[string]*bake.Definition {
	defs := make(map[string]*bake.Definition)
	for name, d := range deps {
		defs[name] = &bake.Definition{Name: name, DependsOn: d}
	}
	return defs
}

func TestTopoOrderDependenciesFirst(t *testing.T) {
	g := Build(nil, defsOf(map[string][]string{
		"base":   nil,
		"web":    {"base"},
		"worker": {"base"},
		"bundle": {"web", "worker"},
	}))

	order, err := g.TopoOrder()
	if err != nil {
		t.Fatalf("TopoOrder: %v", err)
	}

	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	if pos["base"] > pos["web"] || pos["base"] > pos["worker"] {
		t.Errorf("base not first: %v", order)
	}
	if pos["bundle"] < pos["web"] || pos["bundle"] < pos["worker"] {
		t.Errorf("bundle before its dependencies: %v", order)
	}
}

func TestTopoOrderDeterministicTies(t *testing.T) {
	// Independent nodes must come out in ascending name order, whatever
	// the map iteration order happened to be.
	g := Build(nil, defsOf(map[string][]string{
		"zeta": nil, "alpha": nil, "mid": nil,
	}))

	order, err := g.TopoOrder()
	if err != nil {
		t.Fatalf("TopoOrder: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestFindCycleReportsPath(t *testing.T) {
	g := Build(nil, defsOf(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}))

	cycle := g.FindCycle()
	if cycle == nil {
		t.Fatal("expected a cycle")
	}
	msg := cycle.Error()
	if !strings.Contains(msg, "cyclic dependency found") {
		t.Errorf("message = %q", msg)
	}
	if !strings.Contains(msg, "a") || !strings.Contains(msg, "b") {
		t.Errorf("cycle path missing nodes: %q", msg)
	}
	if cycle.Path[0] != cycle.Path[len(cycle.Path)-1] {
		t.Errorf("path should close on itself: %v", cycle.Path)
	}

	if _, err := g.TopoOrder(); err == nil {
		t.Error("TopoOrder should fail on a cyclic graph")
	}
}

func TestFindCycleSelfReference(t *testing.T) {
	g := Build(nil, defsOf(map[string][]string{"a": {"a"}}))
	if g.FindCycle() == nil {
		t.Fatal("expected self-reference cycle")
	}
}

func TestMissingReferences(t *testing.T) {
	g := Build(nil, defsOf(map[string][]string{
		"web": {"ghost"},
	}))

	missing := g.MissingReferences()
	if len(missing) != 1 {
		t.Fatalf("missing = %d, want 1", len(missing))
	}
	if missing[0].From != "web" || missing[0].Name != "ghost" {
		t.Errorf("missing = %+v", missing[0])
	}
	if !strings.Contains(missing[0].Error(), "not found in any of the specified bake files") {
		t.Errorf("message = %q", missing[0].Error())
	}

	if err := g.Check(); err == nil {
		t.Error("Check should fail on missing reference")
	}
}

func TestImplicitEdgesFromContexts(t *testing.T) {
	defs := map[string]*bake.Definition{
		"base": {Name: "base"},
		"web": {
			Name: "web",
			Contexts: map[string]bake.ContextValue{
				"baseimg": bake.TargetRef("base"),
				"assets":  bake.Literal("./static"),
			},
		},
	}
	g := Build(nil, defs)

	deps := g.Dependencies("web")
	if !reflect.DeepEqual(deps, []string{"base"}) {
		t.Errorf("web deps = %v, want [base]", deps)
	}
}

func TestExplicitEdgesFromResolves(t *testing.T) {
	specs := map[string]manifest.TargetSpec{
		"web": {Resolves: []string{"base"}},
	}
	defs := defsOf(map[string][]string{"base": nil, "web": nil})
	g := Build(specs, defs)

	deps := g.Dependencies("web")
	if !reflect.DeepEqual(deps, []string{"base"}) {
		t.Errorf("web deps = %v, want [base]", deps)
	}
}

func TestNodesUnionOfSpecsAndDefs(t *testing.T) {
	specs := map[string]manifest.TargetSpec{"only-spec": {}}
	defs := defsOf(map[string][]string{"only-def": nil})
	g := Build(specs, defs)

	want := []string{"only-def", "only-spec"}
	if got := g.Nodes(); !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
}

func TestCheckOK(t *testing.T) {
	g := Build(nil, defsOf(map[string][]string{"a": nil, "b": {"a"}}))
	if err := g.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}
}
