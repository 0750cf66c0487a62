package unify

import (
	"testing"

	"github.com/hiltigo/hiltigo/internal/ast"
)

func qualified(inner *ast.Node) *ast.Node {
	return ast.NewQualifiedType(inner, ast.Mutable, ast.RHS)
}

func TestUnifyIsIdempotent(t *testing.T) {
	u := NewUnifier()
	typ := ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindInteger, IntWidth: 32, IntSigned: true})

	first, rep := u.Unify(typ)
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	second, rep := u.Unify(typ)
	if rep != nil {
		t.Fatalf("unexpected error on second call: %v", rep)
	}
	if first != second {
		t.Errorf("Unify not idempotent: %q != %q", first, second)
	}
}

func TestUnifyStructuralEquality(t *testing.T) {
	u := NewUnifier()
	a := ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindInteger, IntWidth: 16, IntSigned: false})
	b := ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindInteger, IntWidth: 16, IntSigned: false})
	c := ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindInteger, IntWidth: 32, IntSigned: false})

	eq, rep := u.Equal(a, b)
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	if !eq {
		t.Errorf("two uint16 types should unify equal")
	}

	eq, rep = u.Equal(a, c)
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	if eq {
		t.Errorf("uint16 and uint32 should not unify equal")
	}
}

func TestUnifyDetectsValueRecursionCycle(t *testing.T) {
	u := NewUnifier()
	selfStruct := &ast.UnqualifiedTypePayload{Kind: ast.KindStruct, CanonicalID: "Recursive"}
	node := ast.NewUnqualifiedType(selfStruct)
	field := ast.New(ast.TagDeclField, &ast.FieldPayload{DeclCommon: ast.DeclCommon{ID: "self"}, Type: qualified(node)})
	selfStruct.Fields = []*ast.Node{field}

	_, rep := u.Unify(node)
	if rep == nil {
		t.Fatalf("expected a cycle diagnostic, got none")
	}
	if rep.Code != "UNI001" {
		t.Errorf("Code = %q, want UNI001", rep.Code)
	}
}

func TestUnifyRejectsUnpresetWildcard(t *testing.T) {
	u := NewUnifier()
	wildcard := ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindWildcard})

	_, rep := u.Unify(wildcard)
	if rep == nil || rep.Code != "UNI002" {
		t.Fatalf("expected UNI002, got %v", rep)
	}
}

func TestUnifyWildcardWithPresetStringSucceeds(t *testing.T) {
	u := NewUnifier()
	p := &ast.UnqualifiedTypePayload{Kind: ast.KindWildcard}
	p.SetUnification("wildcard<preset>")
	wildcard := ast.NewUnqualifiedType(p)

	got, rep := u.Unify(wildcard)
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	if got != "wildcard<preset>" {
		t.Errorf("Unify() = %q, want preset value returned as-is", got)
	}
}

func TestUnifyContainerTypes(t *testing.T) {
	u := NewUnifier()
	elem := ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindBool})
	vec := ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindVector, Elem: qualified(elem)})

	got, rep := u.Unify(vec)
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	want := "vector<bool>"
	if got != want {
		t.Errorf("Unify() = %q, want %q", got, want)
	}
}
