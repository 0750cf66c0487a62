// Package driver implements the fixed-point compilation pipeline spec.md
// §4.9 describes: parse every input file, build scopes, iterate
// resolve+unify to a fixed point, validate, transform Spicy to HILTI,
// validate again, then hand off to codegen.
package driver

import (
	"fmt"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/astctx"
	"github.com/hiltigo/hiltigo/internal/codegen"
	"github.com/hiltigo/hiltigo/internal/cxx"
	"github.com/hiltigo/hiltigo/internal/diag"
	"github.com/hiltigo/hiltigo/internal/operator"
	"github.com/hiltigo/hiltigo/internal/plugin"
	"github.com/hiltigo/hiltigo/internal/resolve"
	"github.com/hiltigo/hiltigo/internal/unify"
)

// Unit is one parsed input file tracked by the Driver across pipeline
// stages, pairing its AST with provenance the CLI reports against.
type Unit struct {
	Path   string
	File   *ast.Node // TagFile
	Plugin *plugin.Plugin
}

// Options configures a Driver run.
type Options struct {
	IterationCap int // defaults to 100 if zero (spec.md §4.9's convergence cap)
}

// Driver orchestrates one compilation run: a Context arena, a plugin
// Registry, and the units registered against it.
type Driver struct {
	Context  *astctx.Context
	Plugins  *plugin.Registry
	Options  Options
	Units    []*Unit
	Errors   []*diag.Report
	operators *operator.Registry
	unifier   *unify.Unifier
}

// New creates a Driver over ctx and plugins.
func New(ctx *astctx.Context, plugins *plugin.Registry, opts Options) *Driver {
	if opts.IterationCap <= 0 {
		opts.IterationCap = 100
	}
	return &Driver{Context: ctx, Plugins: plugins, Options: opts}
}

// AddSource parses path's bytes using whichever plugin claims its
// extension, registering the resulting Unit. It reports DRV001 if no
// plugin claims the extension.
func (d *Driver) AddSource(path, ext string, src []byte) *diag.Report {
	p, ok := d.Plugins.ForExtension(ext)
	if !ok {
		rep := diag.New(diag.DRV001, fmt.Sprintf("no plugin registered for extension %q", ext)).
			WithData("path", path)
		d.Errors = append(d.Errors, rep)
		return rep
	}
	file, rep := p.Parse(path, src)
	if rep != nil {
		d.Errors = append(d.Errors, rep)
		return rep
	}
	d.Context.Make(file)
	d.Context.RegisterFile(file)
	d.Units = append(d.Units, &Unit{Path: path, File: file, Plugin: p})
	return nil
}

// Run executes the full pipeline over every registered unit: ast_init,
// then a fixed point of (build_scopes + ast_resolve + resolve/unify +
// validate_pre + transform) that re-enters itself whenever a transform
// pass changes the AST, and finally validate_post. It stops early and
// returns false if any stage attaches errors to the AST (DRV003), matching
// spec.md §4.9's "don't run codegen over a tree with errors" rule.
func (d *Driver) Run() bool {
	d.operators = d.Plugins.BuildOperatorRegistry()
	d.unifier = unify.NewUnifier()

	for _, p := range d.Plugins.All() {
		if p.ASTInit == nil {
			continue
		}
		for _, u := range d.Units {
			if _, errs := p.ASTInit(u.File); len(errs) > 0 {
				d.Errors = append(d.Errors, errs...)
			}
		}
	}
	if d.hasErrors() {
		d.reportStageErrors("ast_init")
		return false
	}

	// spec.md §4.4 step 3/5: build_scopes, ast_resolve, identifier/operator
	// resolution, and type re-unification all feed each other, so they run
	// together as one fixed point; if a later ast_transform pass changes the
	// AST, the whole fixed point re-runs rather than just ast_transform.
	for {
		if !d.resolveFixedPoint() {
			return false
		}

		for _, p := range d.Plugins.All() {
			if p.ASTValidatePre == nil {
				continue
			}
			for _, u := range d.Units {
				if _, errs := p.ASTValidatePre(u.File); len(errs) > 0 {
					d.Errors = append(d.Errors, errs...)
				}
			}
		}
		if d.hasErrors() {
			d.reportStageErrors("ast_validate_pre")
			return false
		}

		transformChanged := false
		for _, p := range d.Plugins.All() {
			if p.ASTTransform == nil {
				continue
			}
			for _, u := range d.Units {
				if u.Plugin != p {
					continue
				}
				changed, errs := p.ASTTransform(u.File)
				if changed {
					transformChanged = true
				}
				if len(errs) > 0 {
					d.Errors = append(d.Errors, errs...)
				}
			}
		}
		if d.hasErrors() {
			d.reportStageErrors("ast_transform")
			return false
		}
		if !transformChanged {
			break
		}
	}

	for _, p := range d.Plugins.All() {
		if p.ASTValidatePost == nil {
			continue
		}
		for _, u := range d.Units {
			if _, errs := p.ASTValidatePost(u.File); len(errs) > 0 {
				d.Errors = append(d.Errors, errs...)
			}
		}
	}
	return !d.reportStageErrors("ast_validate_post")
}

// resolveFixedPoint iterates ast_build_scopes, every plugin's ASTResolve
// hook, internal/resolve's identifier/$$/operator resolution, and type
// re-unification together over every unit's module body until nothing
// changes, up to Options.IterationCap (spec.md §4.4 step 3: "after the
// resolver reports progress, re-run type unification"). It reports DRV002
// if the cap is hit without convergence.
func (d *Driver) resolveFixedPoint() bool {
	for iter := 0; iter < d.Options.IterationCap; iter++ {
		anyChanged := false

		for _, p := range d.Plugins.All() {
			if p.ASTBuildScopes == nil {
				continue
			}
			for _, u := range d.Units {
				changed, errs := p.ASTBuildScopes(u.File)
				if changed {
					anyChanged = true
				}
				if len(errs) > 0 {
					d.Errors = append(d.Errors, errs...)
				}
			}
		}

		for _, p := range d.Plugins.All() {
			if p.ASTResolve == nil {
				continue
			}
			for _, u := range d.Units {
				changed, errs := p.ASTResolve(u.File)
				if changed {
					anyChanged = true
				}
				if len(errs) > 0 {
					d.Errors = append(d.Errors, errs...)
				}
			}
		}

		for _, u := range d.Units {
			mp, ok := u.File.Payload().(*ast.FilePayload)
			if !ok || mp.Module == nil {
				continue
			}
			module := mp.Module.Payload().(*ast.ModulePayload)
			r := resolve.NewResolver(d.operators, module.Path)
			wrapper := ast.New(ast.TagBlockExpr, &ast.BlockExprPayload{})
			for _, decl := range module.Body {
				wrapper.AddChild(decl)
			}
			r.Run(wrapper)
			module.Body = wrapper.Children()
			if r.Changed() {
				anyChanged = true
			}
			d.Errors = append(d.Errors, r.Errors()...)

			d.reunifyTypes(module)
		}

		if !anyChanged {
			return !d.reportStageErrors("resolve")
		}
	}
	rep := diag.New(diag.DRV002, fmt.Sprintf("resolve/unify did not converge within %d iterations", d.Options.IterationCap))
	d.Errors = append(d.Errors, rep)
	return false
}

// reunifyTypes re-runs type unification over every top-level type
// declaration in module, per spec.md §4.4 step 3: resolve can turn a
// wildcard or deferred type reference into a concrete one, so unification
// must be re-derived on each pass rather than computed once up front.
func (d *Driver) reunifyTypes(module *ast.ModulePayload) {
	for _, decl := range module.Body {
		td, ok := decl.Payload().(*ast.TypeDeclPayload)
		if !ok || td.Type == nil {
			continue
		}
		qp, ok := td.Type.Payload().(*ast.QualifiedTypePayload)
		if !ok || qp.Inner == nil {
			continue
		}
		if _, rep := d.unifier.Unify(qp.Inner); rep != nil {
			d.Errors = append(d.Errors, rep)
		}
	}
}

func (d *Driver) hasErrors() bool { return len(d.Errors) > 0 }

func (d *Driver) reportStageErrors(stage string) bool {
	if !d.hasErrors() {
		return false
	}
	d.Errors = append(d.Errors, diag.New(diag.DRV003, fmt.Sprintf("errors present at %s stage boundary", stage)).
		WithData("error_count", len(d.Errors)))
	return true
}

// Codegen lowers every registered unit's module into its own cxx.Unit,
// returning one rendered Unit per input module. Run must have returned
// true before this is called.
func (d *Driver) Codegen() ([]*cxx.Unit, []*diag.Report) {
	var units []*cxx.Unit
	var errs []*diag.Report
	gen := codegen.NewGenerator(d.unifier)
	for _, u := range d.Units {
		fp := u.File.Payload().(*ast.FilePayload)
		if fp.Module == nil {
			continue
		}
		module := fp.Module.Payload().(*ast.ModulePayload)
		cu := cxx.New(module.Path, "hilti::generated")
		gen.Lower(fp.Module, cu)
		units = append(units, cu)
	}
	errs = append(errs, gen.Errors()...)
	return units, errs
}
