package resolve

import (
	"testing"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/operator"
	"github.com/hiltigo/hiltigo/internal/scope"
)

func TestResolverRewritesIdentifierToResolvedDecl(t *testing.T) {
	s := scope.New()
	decl := ast.New(ast.TagDeclConstant, &ast.ConstantPayload{DeclCommon: ast.DeclCommon{ID: "x", Linkage: ast.Public}})
	s.Insert("x", decl)

	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.SetScope(s)
	ident := ast.NewIdentifier("x")
	root.AddChild(ident)

	r := NewResolver(nil, "m")
	r.Run(root)

	if !r.Changed() {
		t.Fatalf("expected Changed() to be true")
	}
	if len(r.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors())
	}
	got := root.Children()[0]
	if got.Tag() != ast.TagResolvedDeclExpr {
		t.Fatalf("got tag %v, want TagResolvedDeclExpr", got.Tag())
	}
	if got.Payload().(*ast.ResolvedDeclExprPayload).Decl != decl {
		t.Errorf("resolved to wrong declaration")
	}
}

func TestResolverReportsUnknownIdentifier(t *testing.T) {
	s := scope.New()
	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.SetScope(s)
	root.AddChild(ast.NewIdentifier("nope"))

	r := NewResolver(nil, "m")
	r.Run(root)

	if len(r.Errors()) != 1 || r.Errors()[0].Code != "SCP001" {
		t.Fatalf("expected a single SCP001, got %v", r.Errors())
	}
}

func TestResolverBindsDollarDollarInsideHook(t *testing.T) {
	hookBody := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	hookBody.AddChild(ast.NewIdentifier("$$"))
	hook := ast.New(ast.TagDeclHook, &ast.HookPayload{Kind: ast.HookField, Body: hookBody})
	hook.AddChild(hookBody)

	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.AddChild(hook)

	r := NewResolver(nil, "m")
	r.Run(root)

	if len(r.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors())
	}
	rewritten := root.Children()[0].Children()[0].Children()[0]
	if rewritten.Tag() != ast.TagDollarDollarExpr {
		t.Fatalf("got tag %v, want TagDollarDollarExpr", rewritten.Tag())
	}
}

func TestResolverBindsForeachDollarDollarDistinctlyFromFieldHook(t *testing.T) {
	hookBody := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	hookBody.AddChild(ast.NewIdentifier("$$"))
	hook := ast.New(ast.TagDeclHook, &ast.HookPayload{Kind: ast.HookForeach, Body: hookBody})
	hook.AddChild(hookBody)

	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.AddChild(hook)

	r := NewResolver(nil, "m")
	r.Run(root)

	if len(r.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors())
	}
	rewritten := root.Children()[0].Children()[0].Children()[0]
	dd, ok := rewritten.Payload().(*ast.DollarDollarExprPayload)
	if !ok {
		t.Fatalf("got tag %v, want TagDollarDollarExpr", rewritten.Tag())
	}
	if dd.Context != ast.DollarForeachElement {
		t.Errorf("Context = %v, want DollarForeachElement for a foreach hook", dd.Context)
	}
}

func TestResolverBindsContainerAttributeDollarDollar(t *testing.T) {
	attrBody := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	attrBody.AddChild(ast.NewIdentifier("$$"))
	attr := ast.New(ast.TagAttribute, &ast.AttributePayload{Name: "until", ArgKind: ast.AttrArgExpression})
	attr.AddChild(attrBody)

	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.AddChild(attr)

	r := NewResolver(nil, "m")
	r.Run(root)

	if len(r.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors())
	}
	rewritten := root.Children()[0].Children()[0].Children()[0]
	dd, ok := rewritten.Payload().(*ast.DollarDollarExprPayload)
	if !ok {
		t.Fatalf("got tag %v, want TagDollarDollarExpr", rewritten.Tag())
	}
	if dd.Context != ast.DollarContainerElement {
		t.Errorf("Context = %v, want DollarContainerElement for an &until attribute", dd.Context)
	}
}

func TestResolverBindsFieldAttributeDollarDollar(t *testing.T) {
	attrBody := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	attrBody.AddChild(ast.NewIdentifier("$$"))
	attr := ast.New(ast.TagAttribute, &ast.AttributePayload{Name: "convert", ArgKind: ast.AttrArgExpression})
	attr.AddChild(attrBody)

	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.AddChild(attr)

	r := NewResolver(nil, "m")
	r.Run(root)

	if len(r.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors())
	}
	rewritten := root.Children()[0].Children()[0].Children()[0]
	dd, ok := rewritten.Payload().(*ast.DollarDollarExprPayload)
	if !ok {
		t.Fatalf("got tag %v, want TagDollarDollarExpr", rewritten.Tag())
	}
	if dd.Context != ast.DollarFieldAttribute {
		t.Errorf("Context = %v, want DollarFieldAttribute for a &convert attribute", dd.Context)
	}
}

func TestResolverBindsDollarDollarToEnclosingFieldType(t *testing.T) {
	fieldType := ast.NewQualifiedType(ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindBytes}), ast.Mutable, ast.RHS)

	hookBody := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	hookBody.AddChild(ast.NewIdentifier("$$"))
	hook := ast.New(ast.TagDeclHook, &ast.HookPayload{Kind: ast.HookField, Body: hookBody})
	hook.AddChild(hookBody)

	field := ast.New(ast.TagUnitField, &ast.UnitFieldPayload{
		FieldPayload: ast.FieldPayload{DeclCommon: ast.DeclCommon{ID: "f"}, Type: fieldType},
		Kind:         ast.FieldVariable,
	})
	field.AddChild(hook)

	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.AddChild(field)

	r := NewResolver(nil, "m")
	r.Run(root)

	if len(r.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors())
	}
	rewritten := root.Children()[0].Children()[0].Children()[0].Children()[0]
	dd, ok := rewritten.Payload().(*ast.DollarDollarExprPayload)
	if !ok {
		t.Fatalf("got tag %v, want TagDollarDollarExpr", rewritten.Tag())
	}
	if dd.Type != fieldType {
		t.Errorf("Type = %v, want the enclosing field's declared type", dd.Type)
	}
}

func TestResolverReportsDollarDollarOutsideContext(t *testing.T) {
	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.AddChild(ast.NewIdentifier("$$"))

	r := NewResolver(nil, "m")
	r.Run(root)

	if len(r.Errors()) != 1 || r.Errors()[0].Code != "RES003" {
		t.Fatalf("expected RES003, got %v", r.Errors())
	}
}

func TestResolverRewritesOperatorPlaceholder(t *testing.T) {
	reg := operator.NewRegistry()
	resultType := ast.NewQualifiedType(ast.NewUnqualifiedType(&ast.UnqualifiedTypePayload{Kind: ast.KindInteger, IntWidth: 64, IntSigned: true}), ast.Mutable, ast.RHS)
	reg.Register(&operator.Operator{
		ID: "integer::Plus", Kind: ast.OpAdd,
		Match: func(operands []*ast.Node) (operator.Cost, *ast.Node, bool) { return operator.CostExact, resultType, true },
	})

	root := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
	root.AddChild(ast.New(ast.TagOperatorExpr, &ast.OperatorExprPayload{Kind: ast.OpAdd}))

	r := NewResolver(reg, "m")
	r.Run(root)

	if len(r.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors())
	}
	got := root.Children()[0]
	if got.Tag() != ast.TagResolvedOperatorExpr {
		t.Fatalf("got tag %v, want TagResolvedOperatorExpr", got.Tag())
	}
}
