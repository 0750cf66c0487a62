package plugin

import (
	"testing"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/diag"
	"github.com/hiltigo/hiltigo/internal/operator"
)

func TestRegisterIsIdempotentByName(t *testing.T) {
	r := NewRegistry()
	calls := 0
	p := &Plugin{Name: "hilti", Extensions: []string{".hlt"}, Operators: func(*operator.Registry) { calls++ }}
	r.Register(p)
	r.Register(p)

	if len(r.All()) != 1 {
		t.Fatalf("len(All()) = %d, want 1 after re-registering the same Name", len(r.All()))
	}
}

func TestForExtensionDispatches(t *testing.T) {
	r := NewRegistry()
	hilti := &Plugin{Name: "hilti", Extensions: []string{".hlt"}}
	spicy := &Plugin{Name: "spicy", Extensions: []string{".spicy"}}
	r.Register(hilti)
	r.Register(spicy)

	got, ok := r.ForExtension(".spicy")
	if !ok || got.Name != "spicy" {
		t.Fatalf("ForExtension(.spicy) = (%v, %v), want spicy plugin", got, ok)
	}
	if _, ok := r.ForExtension(".cc"); ok {
		t.Errorf("ForExtension(.cc) unexpectedly matched a plugin")
	}
}

func TestBuildOperatorRegistryRunsEveryPluginHook(t *testing.T) {
	r := NewRegistry()
	r.Register(&Plugin{Name: "a", Operators: func(reg *operator.Registry) {
		reg.Register(&operator.Operator{ID: "a::op", Kind: ast.OpAdd, Match: func([]*ast.Node) (operator.Cost, *ast.Node, bool) {
			return operator.CostExact, nil, true
		}})
	}})
	r.Register(&Plugin{Name: "b", Operators: func(reg *operator.Registry) {
		reg.Register(&operator.Operator{ID: "b::op", Kind: ast.OpAdd, Match: func([]*ast.Node) (operator.Cost, *ast.Node, bool) {
			return operator.CostExact, nil, true
		}})
	}})

	reg := r.BuildOperatorRegistry()
	if reg.Count(ast.OpAdd) != 2 {
		t.Fatalf("Count(OpAdd) = %d, want 2", reg.Count(ast.OpAdd))
	}
}

func TestASTPassFuncSignatureCompiles(t *testing.T) {
	var f ASTPassFunc = func(file *ast.Node) (bool, []*diag.Report) { return false, nil }
	changed, errs := f(nil)
	if changed || errs != nil {
		t.Fatalf("unexpected result from trivial ASTPassFunc")
	}
}
