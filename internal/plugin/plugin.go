// Package plugin defines the Plugin/hook architecture spec.md §4.4
// describes: an ordered set of named hooks a language front end
// (HILTI itself, or Spicy layered on top) registers with the driver.
package plugin

import (
	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/diag"
	"github.com/hiltigo/hiltigo/internal/operator"
)

// ParseFunc parses a source file's bytes into a detached TagFile node.
type ParseFunc func(path string, src []byte) (*ast.Node, *diag.Report)

// UnifyTypeFunc lets a plugin special-case unification for types it alone
// understands (e.g. Spicy's Unit type unifying by field identity rather
// than pure structural shape); it returns ok=false to defer to the default
// unifier.
type UnifyTypeFunc func(t *ast.Node) (canonical string, ok bool, rep *diag.Report)

// CoerceFunc attempts to coerce a value/ctor or a type to a target type,
// returning the coerced node and whether coercion succeeded.
type CoerceFunc func(from, to *ast.Node) (coerced *ast.Node, ok bool)

// ASTPassFunc runs a named whole-of-AST pass (ast_init, ast_build_scopes,
// ast_resolve, ast_validate_pre, ast_validate_post, ast_transform) over a
// TagFile root, returning diagnostics it attached and whether anything
// changed (relevant for the fixed-point passes).
type ASTPassFunc func(file *ast.Node) (changed bool, errs []*diag.Report)

// PrintFunc renders a TagFile root back to source text. Neither the driver
// nor cmd/hiltic calls it.
type PrintFunc func(file *ast.Node) (string, *diag.Report)

// Plugin bundles one language front end's hooks. Every field is optional;
// a nil hook means "this plugin has nothing to contribute at this step"
// and the driver skips it (spec.md §4.4).
type Plugin struct {
	Name       string
	Extensions []string // e.g. [".hlt"] or [".spicy"]

	LibraryPaths func() []string

	Parse       ParseFunc
	UnifyType   UnifyTypeFunc
	CoerceCtor  CoerceFunc
	CoerceType  CoerceFunc
	Operators   func(reg *operator.Registry)

	ASTInit         ASTPassFunc
	ASTBuildScopes  ASTPassFunc
	ASTResolve      ASTPassFunc
	ASTValidatePre  ASTPassFunc
	ASTValidatePost ASTPassFunc
	ASTTransform    ASTPassFunc // Spicy->HILTI lowering; nil for the HILTI plugin itself
	ASTPrint        PrintFunc
}

// Registry holds every Plugin known to a Driver, keyed by file extension
// for dispatch (spec.md §4.4/§4.9, DRV001 when nothing claims an
// extension) and iterated in registration order for hooks that run across
// all plugins regardless of which file they apply to (ast_init, the
// fixed-point passes).
type Registry struct {
	plugins    []*Plugin
	byExt      map[string]*Plugin
}

// NewRegistry creates an empty plugin Registry.
func NewRegistry() *Registry {
	return &Registry{byExt: map[string]*Plugin{}}
}

// Register adds p to the registry, indexing it by every extension it
// claims. Registering a Plugin whose Name already exists is a no-op
// (idempotent registration, spec.md §4.4).
func (r *Registry) Register(p *Plugin) {
	for _, existing := range r.plugins {
		if existing.Name == p.Name {
			return
		}
	}
	r.plugins = append(r.plugins, p)
	for _, ext := range p.Extensions {
		r.byExt[ext] = p
	}
}

// ForExtension returns the plugin registered for ext, and ok=false (DRV001
// territory) if none claims it.
func (r *Registry) ForExtension(ext string) (*Plugin, bool) {
	p, ok := r.byExt[ext]
	return p, ok
}

// All returns every registered plugin, in registration order.
func (r *Registry) All() []*Plugin {
	out := make([]*Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// BuildOperatorRegistry runs every plugin's Operators hook against a fresh
// operator.Registry, for the driver to build once per run.
func (r *Registry) BuildOperatorRegistry() *operator.Registry {
	reg := operator.NewRegistry()
	for _, p := range r.plugins {
		if p.Operators != nil {
			p.Operators(reg)
		}
	}
	return reg
}
