package scope

import (
	"testing"

	"github.com/hiltigo/hiltigo/internal/ast"
)

func constDecl(id string, linkage ast.Linkage) *ast.Node {
	return ast.New(ast.TagDeclConstant, &ast.ConstantPayload{DeclCommon: ast.DeclCommon{ID: id, Linkage: linkage}})
}

func TestLookupAllWalksChain(t *testing.T) {
	root := New()
	root.Insert("x", constDecl("x", ast.Public))
	child := NewChild(root)

	got := child.LookupAll("x")
	if len(got) != 1 {
		t.Fatalf("LookupAll found %d, want 1", len(got))
	}
}

func TestInheritsParentFalseStopsChain(t *testing.T) {
	root := New()
	root.Insert("x", constDecl("x", ast.Public))
	child := NewChild(root)
	child.SetInheritsParent(false)

	if got := child.LookupAll("x"); len(got) != 0 {
		t.Errorf("LookupAll found %d, want 0 once inheritsParent is false", len(got))
	}
}

func TestResolveUnknownIdentifier(t *testing.T) {
	s := New()
	_, rep := Resolve(s, "missing")
	if rep == nil || rep.Code != "SCP001" {
		t.Fatalf("expected SCP001, got %v", rep)
	}
}

func TestResolveAmbiguousNonFunctionIdentifier(t *testing.T) {
	s := New()
	s.Insert("x", constDecl("x", ast.Public))
	s.Insert("x", constDecl("x", ast.Public))

	_, rep := Resolve(s, "x")
	if rep == nil || rep.Code != "SCP002" {
		t.Fatalf("expected SCP002, got %v", rep)
	}
}

func TestCheckVisibilityRejectsPrivateAcrossModules(t *testing.T) {
	decl := constDecl("secret", ast.Private)
	rep := CheckVisibility(decl, "other", "home")
	if rep == nil || rep.Code != "SCP003" {
		t.Fatalf("expected SCP003, got %v", rep)
	}
}

func TestCheckVisibilityAllowsPublicAcrossModules(t *testing.T) {
	decl := constDecl("shared", ast.Public)
	if rep := CheckVisibility(decl, "other", "home"); rep != nil {
		t.Errorf("unexpected violation: %v", rep)
	}
}

func TestCheckVisibilityAllowsAnythingWithinSameModule(t *testing.T) {
	decl := constDecl("secret", ast.Private)
	if rep := CheckVisibility(decl, "home", "home"); rep != nil {
		t.Errorf("unexpected violation within same module: %v", rep)
	}
}
