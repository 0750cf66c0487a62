// Package scope implements ast.ScopeRef: the lexical-lookup-chain scope
// attached to modules, blocks, units, and function bodies (spec.md §4.2).
package scope

import (
	"fmt"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/diag"
)

// Scope holds the declarations visible at one lexical level, plus a link to
// the enclosing scope for chained lookups. It implements ast.ScopeRef so an
// *ast.Node can hold a *Scope without the ast package depending on this one.
type Scope struct {
	parent   *Scope
	bindings map[string][]*ast.Node
	// inheritsParent controls whether LookupAll continues into parent once
	// this level is exhausted, or stops here (module scopes set this false
	// at the point a lookup crosses into a different module's globals,
	// spec.md §4.2).
	inheritsParent bool
}

// New creates a root scope (no parent).
func New() *Scope {
	return &Scope{bindings: map[string][]*ast.Node{}, inheritsParent: true}
}

// NewChild creates a scope nested under parent.
func NewChild(parent *Scope) *Scope {
	return &Scope{parent: parent, bindings: map[string][]*ast.Node{}, inheritsParent: true}
}

// SetInheritsParent controls whether lookups continue past this scope.
func (s *Scope) SetInheritsParent(v bool) { s.inheritsParent = v }

// InheritsParent reports whether lookups continue past this scope into its
// parent (implements ast.ScopeRef).
func (s *Scope) InheritsParent() bool { return s.inheritsParent }

// Insert adds decl under id in this scope level. Multiple declarations may
// share an id (overloaded functions); ambiguity is adjudicated at lookup
// time or by the resolver, per spec.md §4.2/§4.5.
func (s *Scope) Insert(id string, decl *ast.Node) {
	s.bindings[id] = append(s.bindings[id], decl)
}

// LookupLocal returns only the bindings declared directly in this scope
// level, ignoring parents.
func (s *Scope) LookupLocal(id string) []*ast.Node {
	return s.bindings[id]
}

// LookupAll walks the scope chain starting at s, collecting every binding
// for id, honoring inheritsParent at each level (implements ast.ScopeRef).
func (s *Scope) LookupAll(id string) []*ast.Node {
	var out []*ast.Node
	for cur := s; cur != nil; cur = cur.parent {
		out = append(out, cur.bindings[id]...)
		if !cur.inheritsParent {
			break
		}
	}
	return out
}

// Resolve performs the single-declaration lookup spec.md §4.2 describes for
// ordinary identifiers (as opposed to overloaded operator call sites, which
// go through internal/resolve + internal/operator instead). It reports
// SCP001 if nothing matches and SCP002 if more than one non-function
// candidate matches.
func Resolve(s *Scope, id string) (*ast.Node, *diag.Report) {
	candidates := s.LookupAll(id)
	switch len(candidates) {
	case 0:
		return nil, diag.New(diag.SCP001, fmt.Sprintf("unknown identifier %q", id)).
			WithData("identifier", id)
	case 1:
		return candidates[0], nil
	default:
		allFunctions := true
		for _, c := range candidates {
			if c.Tag() != ast.TagDeclFunction {
				allFunctions = false
				break
			}
		}
		if allFunctions {
			// Overload set: resolved later by internal/resolve +
			// internal/operator, not here.
			return candidates[0], nil
		}
		return nil, diag.New(diag.SCP002, fmt.Sprintf("ambiguous identifier %q", id)).
			WithData("identifier", id).
			WithData("candidate_count", len(candidates))
	}
}

// CheckVisibility reports SCP003 if decl's linkage forbids referencing it
// from a module other than the one it was declared in (spec.md §4.2: only
// Public/Export-linked declarations cross module boundaries).
func CheckVisibility(decl *ast.Node, fromModule, declModule string) *diag.Report {
	if fromModule == declModule {
		return nil
	}
	var linkage ast.Linkage
	switch p := decl.Payload().(type) {
	case *ast.ConstantPayload:
		linkage = p.Linkage
	case *ast.VariablePayload:
		linkage = p.Linkage
	case *ast.TypeDeclPayload:
		linkage = p.Linkage
	default:
		return nil
	}
	if linkage == ast.Public || linkage == ast.Export {
		return nil
	}
	return diag.New(diag.SCP003, fmt.Sprintf("%q is not visible outside module %q", declID(decl), declModule)).
		WithData("from_module", fromModule).
		WithData("decl_module", declModule)
}

func declID(decl *ast.Node) string {
	switch p := decl.Payload().(type) {
	case *ast.ConstantPayload:
		return p.ID
	case *ast.VariablePayload:
		return p.ID
	case *ast.TypeDeclPayload:
		return p.ID
	default:
		return "<decl>"
	}
}
