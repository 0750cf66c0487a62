package grammar

import (
	"strings"
	"testing"

	"github.com/hiltigo/hiltigo/internal/ast"
)

func ctorField(id string) *ast.Node {
	return ast.New(ast.TagUnitField, &ast.UnitFieldPayload{
		FieldPayload: ast.FieldPayload{DeclCommon: ast.DeclCommon{ID: id}},
		Kind:         ast.FieldCtor,
	})
}

func TestBuildSequenceNullability(t *testing.T) {
	g := Build([]*ast.Node{ctorField("a"), ctorField("b")})
	if g.Root.Nullable() {
		t.Errorf("a sequence of two non-nullable ctor fields should not be nullable")
	}
}

func TestValidateLL1DetectsFirstFirstConflict(t *testing.T) {
	fp := &ast.UnitFieldPayload{
		FieldPayload: ast.FieldPayload{DeclCommon: ast.DeclCommon{ID: "sw"}},
		Kind:         ast.FieldSwitch,
		Cases: []*ast.Node{
			ast.New(ast.TagSwitchCase, &ast.SwitchCasePayload{
				Labels: []*ast.Node{NewLiteralExpr(1)},
				Body:   []*ast.Node{ctorField("x")},
			}),
			ast.New(ast.TagSwitchCase, &ast.SwitchCasePayload{
				Labels: []*ast.Node{NewLiteralExpr(2)},
				Body:   []*ast.Node{ctorField("y")},
			}),
		},
	}
	field := ast.New(ast.TagUnitField, fp)
	g := Build([]*ast.Node{field})

	errs := g.Finalize()
	// Both case bodies reduce to ProdCtor's wildcard "<any>" terminal in
	// this simplified field model, so FIRST sets collide by construction —
	// exercising the detection path rather than a hand-crafted grammar
	// with genuinely distinct literal terminals.
	foundConflict := false
	for _, e := range errs {
		if e.Code == "GRM002" {
			foundConflict = true
		}
	}
	if !foundConflict {
		t.Errorf("expected a GRM002 FIRST/FIRST conflict, got %v", errs)
	}
}

func TestValidateLL1DetectsDoubleNullable(t *testing.T) {
	p := &Production{Kind: ProdLookAhead}
	eps1 := &Production{Kind: ProdEpsilon}
	eps2 := &Production{Kind: ProdEpsilon}
	p.Alternatives = []*Production{eps1, eps2}

	errs := ValidateLL1(p)
	foundDoubleNullable := false
	for _, e := range errs {
		if e.Code == "GRM003" {
			foundDoubleNullable = true
		}
	}
	if !foundDoubleNullable {
		t.Errorf("expected GRM003, got %v", errs)
	}
}

func TestResolveDeferredProduction(t *testing.T) {
	targetField := ctorField("target")
	target := &Production{Field: targetField, Kind: ProdCtor, Terminal: Terminal{Any: true}}
	deferredField := ast.New(ast.TagUnitField, &ast.UnitFieldPayload{
		FieldPayload: ast.FieldPayload{DeclCommon: ast.DeclCommon{ID: "ref"}},
		Kind:         ast.FieldUnitRef,
	})
	g := Build([]*ast.Node{deferredField})

	errs := g.Resolve(map[*ast.Node]*Production{deferredField: target})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	deferredProd := g.Root.Alternatives[0]
	if deferredProd.Target != target {
		t.Errorf("deferred production was not resolved to its target")
	}
}

func TestResolveReportsUnresolvedDeferred(t *testing.T) {
	deferredField := ast.New(ast.TagUnitField, &ast.UnitFieldPayload{
		FieldPayload: ast.FieldPayload{DeclCommon: ast.DeclCommon{ID: "ref"}},
		Kind:         ast.FieldUnitRef,
	})
	g := Build([]*ast.Node{deferredField})

	errs := g.Resolve(map[*ast.Node]*Production{})
	if len(errs) == 0 || errs[0].Code != "GRM001" {
		t.Fatalf("expected GRM001, got %v", errs)
	}
}

func TestFinalizeComputesFollowSets(t *testing.T) {
	g := Build([]*ast.Node{ctorField("a"), ctorField("b"), ctorField("c")})
	if errs := g.Finalize(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	a, b, c := g.Root.Alternatives[0], g.Root.Alternatives[1], g.Root.Alternatives[2]

	if _, ok := a.Follow()["<any>"]; !ok {
		t.Errorf("FOLLOW(a) = %v, want it to contain FIRST(b) = {<any>}", a.Follow())
	}
	if _, ok := b.Follow()["<any>"]; !ok {
		t.Errorf("FOLLOW(b) = %v, want it to contain FIRST(c) = {<any>}", b.Follow())
	}
	if _, ok := c.Follow()[endOfInput.String()]; !ok {
		t.Errorf("FOLLOW(c) = %v, want the last element in the sequence to inherit end-of-input", c.Follow())
	}
}

func TestFinalizePropagatesFollowThroughDeferredTarget(t *testing.T) {
	targetField := ctorField("target")
	target := &Production{Field: targetField, Kind: ProdCtor, Terminal: Terminal{Any: true}}
	deferredField := ast.New(ast.TagUnitField, &ast.UnitFieldPayload{
		FieldPayload: ast.FieldPayload{DeclCommon: ast.DeclCommon{ID: "ref"}},
		Kind:         ast.FieldUnitRef,
	})
	g := Build([]*ast.Node{deferredField, ctorField("after")})
	if errs := g.Resolve(map[*ast.Node]*Production{deferredField: target}); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}

	if errs := g.Finalize(); len(errs) != 0 {
		t.Fatalf("unexpected finalize errors: %v", errs)
	}

	if _, ok := target.Follow()["<any>"]; !ok {
		t.Errorf("FOLLOW(target) = %v, want it to inherit FOLLOW of the referencing production", target.Follow())
	}
}

func TestDumpRendersEveryProductionsFirstAndFollow(t *testing.T) {
	g := Build([]*ast.Node{ctorField("a"), ctorField("b")})
	g.Finalize()

	out := g.Dump()
	if out == "" {
		t.Fatal("Dump() returned an empty string")
	}
	if !strings.Contains(out, "FIRST:") || !strings.Contains(out, "FOLLOW:") {
		t.Errorf("Dump() = %q, want FIRST/FOLLOW sections for every production", out)
	}
}

// NewLiteralExpr is a tiny test helper building an int literal expression,
// standing in for whatever switch-case label the real parser would
// produce.
func NewLiteralExpr(v int64) *ast.Node {
	return ast.NewLiteral(ast.LitInt, v)
}
