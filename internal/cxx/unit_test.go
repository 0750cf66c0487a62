package cxx

import (
	"strings"
	"testing"
)

func TestRenderOrdersDeclarationGroups(t *testing.T) {
	u := New("test", "hilti::generated")
	u.AddDeclaration(Declaration{Kind: "function", Name: "f", Text: "void f() {}"})
	u.AddDeclaration(Declaration{Kind: "type", Name: "T", Text: "struct T {};"})
	u.AddInclude(`<cstdint>`)

	out := u.Render()
	typeIdx := strings.Index(out, "struct T")
	funcIdx := strings.Index(out, "void f()")
	if typeIdx == -1 || funcIdx == -1 || typeIdx > funcIdx {
		t.Errorf("type definitions should render before function definitions, got:\n%s", out)
	}
	if !strings.Contains(out, "#include <cstdint>") {
		t.Errorf("missing include in output:\n%s", out)
	}
	if !strings.Contains(out, "namespace hilti::generated") {
		t.Errorf("missing namespace wrapper in output:\n%s", out)
	}
}

func TestAddDeclarationDedupes(t *testing.T) {
	u := New("test", "ns")
	u.AddDeclaration(Declaration{Kind: "type", Name: "T", Text: "struct T {};"})
	u.AddDeclaration(Declaration{Kind: "type", Name: "T", Text: "struct T { int x; };"})

	decls := u.Declarations()
	if len(decls) != 1 {
		t.Fatalf("len(Declarations()) = %d, want 1 after re-adding the same (kind, name)", len(decls))
	}
	if decls[0].Text != "struct T {};" {
		t.Errorf("first-write-wins expected, got %q", decls[0].Text)
	}
}

func TestAddSymbolAccumulates(t *testing.T) {
	u := New("test", "ns")
	u.AddSymbol(LinkerSymbol{Name: "a", External: true})
	u.AddSymbol(LinkerSymbol{Name: "b"})

	syms := u.Symbols()
	if len(syms) != 2 {
		t.Fatalf("len(Symbols()) = %d, want 2", len(syms))
	}
}
