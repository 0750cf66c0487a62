// Package resolve implements ID resolution, `$$` context-sensitive
// binding, and operator-placeholder resolution — the three jobs spec.md
// §4.5 assigns to a single fixed-point pass run by internal/driver.
package resolve

import (
	"fmt"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/diag"
	"github.com/hiltigo/hiltigo/internal/operator"
	"github.com/hiltigo/hiltigo/internal/scope"
	"github.com/hiltigo/hiltigo/internal/visitor"
)

// dollarFrame tracks the `$$` binding in effect while descending into a
// hook body, foreach loop, or container-attribute expression (spec.md
// §4.5). Resolver pushes/pops frames as it walks into and out of these
// constructs.
type dollarFrame struct {
	ctx ast.DollarContext
	typ *ast.Node // TagQualifiedType
}

// fieldFrame tracks the unit field currently being walked, so a nested
// hook or attribute expression can bind `$$` to that field's declared
// type (spec.md §4.5).
type fieldFrame struct {
	typ *ast.Node // TagQualifiedType
}

// containerAttributes are the attribute names whose expression argument
// binds `$$` to a container's element (spec.md §4.5's &until/
// &until-including/&while note), as opposed to an ordinary scalar field
// attribute like &convert, whose `$$` binds to the field's own value.
var containerAttributes = map[string]bool{
	"until":           true,
	"until-including": true,
	"while":           true,
}

func isContainerAttribute(name string) bool { return containerAttributes[name] }

// Resolver performs one fixed-point iteration of resolution over a module.
// internal/driver constructs a fresh Resolver per iteration and calls Run;
// Changed reports whether anything was rewritten, which the driver uses to
// decide whether another iteration is needed (spec.md §4.9).
type Resolver struct {
	Operators *operator.Registry
	Module    string // current module name, for scope.CheckVisibility

	changed bool
	errs    []*diag.Report
	stack   []dollarFrame
	fields  []fieldFrame
}

// currentFieldType returns the declared type of the unit field currently
// being walked, or nil outside any field (e.g. a module-level hook).
func (r *Resolver) currentFieldType() *ast.Node {
	if len(r.fields) == 0 {
		return nil
	}
	return r.fields[len(r.fields)-1].typ
}

// NewResolver creates a Resolver bound to the given operator registry.
func NewResolver(ops *operator.Registry, module string) *Resolver {
	return &Resolver{Operators: ops, Module: module}
}

// Changed reports whether Run rewrote anything during its last call.
func (r *Resolver) Changed() bool { return r.changed }

// Errors returns diagnostics accumulated across every Run call so far.
func (r *Resolver) Errors() []*diag.Report { return r.errs }

// Run walks root (typically a TagDeclModule's body, wrapped as a synthetic
// parent) rewriting IdentifierExpr/OperatorExpr/$$identifier nodes in
// place. It is idempotent: a fully-resolved tree produces Changed()==false.
func (r *Resolver) Run(root *ast.Node) {
	r.changed = false
	visitor.MutateChildren(root, r)
}

// Pre implements visitor.Mutator. Resolver only rewrites on Post (bottom
// up, so operand types are already resolved when an enclosing operator
// placeholder is considered), but it tracks $$ scope on the way down.
func (r *Resolver) Pre(n *ast.Node) (*ast.Node, bool) {
	switch p := n.Payload().(type) {
	case *ast.UnitFieldPayload:
		r.fields = append(r.fields, fieldFrame{typ: p.Type})

	case *ast.HookPayload:
		ctx := ast.DollarHookField
		if p.Kind == ast.HookForeach {
			ctx = ast.DollarForeachElement
		}
		r.stack = append(r.stack, dollarFrame{ctx: ctx, typ: r.currentFieldType()})

	case *ast.AttributePayload:
		if p.ArgKind == ast.AttrArgExpression {
			ctx := ast.DollarFieldAttribute
			if isContainerAttribute(p.Name) {
				ctx = ast.DollarContainerElement
			}
			r.stack = append(r.stack, dollarFrame{ctx: ctx, typ: r.currentFieldType()})
		}
	}
	return nil, true
}

// Post implements visitor.Mutator: the actual rewrite happens here.
func (r *Resolver) Post(n *ast.Node) *ast.Node {
	switch p := n.Payload().(type) {
	case *ast.UnitFieldPayload:
		if len(r.fields) > 0 {
			r.fields = r.fields[:len(r.fields)-1]
		}
		_ = p
		return nil

	case *ast.HookPayload:
		if len(r.stack) > 0 {
			r.stack = r.stack[:len(r.stack)-1]
		}
		_ = p
		return nil

	case *ast.AttributePayload:
		if p.ArgKind == ast.AttrArgExpression && len(r.stack) > 0 {
			r.stack = r.stack[:len(r.stack)-1]
		}
		return nil

	case *ast.IdentifierExprPayload:
		if p.Name == "$$" {
			if len(r.stack) == 0 {
				r.errs = append(r.errs, diag.New(diag.RES003, "$$ used outside a binding context"))
				return nil
			}
			top := r.stack[len(r.stack)-1]
			r.changed = true
			return ast.New(ast.TagDollarDollarExpr, &ast.DollarDollarExprPayload{Context: top.ctx, Type: top.typ})
		}
		s, ok := n.Scope().(*scope.Scope)
		if !ok || s == nil {
			s = findEnclosingScope(n)
		}
		if s == nil {
			r.errs = append(r.errs, diag.New(diag.SCP001, fmt.Sprintf("unknown identifier %q (no scope attached)", p.Name)))
			return nil
		}
		decl, rep := scope.Resolve(s, p.Name)
		if rep != nil {
			r.errs = append(r.errs, rep)
			return nil
		}
		r.changed = true
		if decl.Tag() == ast.TagDeclType {
			tp := decl.Payload().(*ast.TypeDeclPayload)
			return ast.New(ast.TagTypeValueExpr, &ast.TypeValueExprPayload{Type: tp.Type})
		}
		return ast.New(ast.TagResolvedDeclExpr, &ast.ResolvedDeclExprPayload{Decl: decl})

	case *ast.OperatorExprPayload:
		if r.Operators == nil {
			return nil
		}
		op, result, rep := r.Operators.Resolve(p.Kind, p.Operands)
		if rep != nil {
			r.errs = append(r.errs, rep)
			return nil
		}
		r.changed = true
		return ast.New(ast.TagResolvedOperatorExpr, &ast.ResolvedOperatorExprPayload{
			Kind: p.Kind, Operands: p.Operands, Result: result, OperatorID: op.ID,
		})
	}
	return nil
}

// findEnclosingScope walks parent pointers looking for the nearest
// attached scope when a node's own Scope() is nil (ordinary expression
// nodes inherit their enclosing block/module scope rather than each
// carrying their own, per spec.md §4.2).
func findEnclosingScope(n *ast.Node) *scope.Scope {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if s, ok := cur.Scope().(*scope.Scope); ok && s != nil {
			return s
		}
		if !cur.InheritsScope() {
			return nil
		}
	}
	return nil
}
