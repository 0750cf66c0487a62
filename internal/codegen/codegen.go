// Package codegen lowers a resolved, unified HILTI AST (plus any attached
// grammar) into a cxx.Unit, per spec.md §4.8.
package codegen

import (
	"fmt"
	"strings"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/cxx"
	"github.com/hiltigo/hiltigo/internal/diag"
	"github.com/hiltigo/hiltigo/internal/unify"
)

// Generator lowers a module's AST into a cxx.Unit. internal/driver
// constructs one Generator and lowers every unit with it, so Errors
// accumulates across modules; it keeps a running Unifier so canonical type
// strings computed during unification can be reused for C++ name mangling
// without recomputation.
type Generator struct {
	Unifier *unify.Unifier
	errs    []*diag.Report
}

// NewGenerator creates a Generator backed by u (internal/driver passes the
// Unifier its type re-unification used, so names are consistent between
// phases).
func NewGenerator(u *unify.Unifier) *Generator {
	return &Generator{Unifier: u}
}

// Errors returns diagnostics accumulated across every Lower call.
func (g *Generator) Errors() []*diag.Report { return g.errs }

// Lower walks module's top-level declarations and emits them into unit.
func (g *Generator) Lower(module *ast.Node, unit *cxx.Unit) {
	mp := module.Payload().(*ast.ModulePayload)
	unit.AddInclude(`<hilti/rt/libhilti.h>`)
	for _, decl := range mp.Body {
		g.lowerDecl(decl, unit)
	}
}

func (g *Generator) lowerDecl(n *ast.Node, unit *cxx.Unit) {
	switch p := n.Payload().(type) {
	case *ast.TypeDeclPayload:
		name, ok := SanitizeIdentifier(p.ID)
		if !ok {
			g.errs = append(g.errs, diag.New(diag.CDG002, fmt.Sprintf("cannot sanitize type name %q", p.ID)))
			return
		}
		typeText, err := g.renderType(name, p.Type)
		if err != nil {
			g.errs = append(g.errs, err)
			return
		}
		unit.AddDeclaration(cxx.Declaration{Kind: "type", Name: name, Text: typeText})

	case *ast.ConstantPayload:
		name, ok := SanitizeIdentifier(p.ID)
		if !ok {
			g.errs = append(g.errs, diag.New(diag.CDG002, fmt.Sprintf("cannot sanitize constant name %q", p.ID)))
			return
		}
		unit.AddDeclaration(cxx.Declaration{
			Kind: "global", Name: name,
			Text: fmt.Sprintf("static const auto %s = %s;", name, renderExprPlaceholder(p.Value)),
		})
		if p.Linkage == ast.Public || p.Linkage == ast.Export {
			unit.AddSymbol(cxx.LinkerSymbol{Name: name, External: true})
		}

	case *ast.VariablePayload:
		name, ok := SanitizeIdentifier(p.ID)
		if !ok {
			g.errs = append(g.errs, diag.New(diag.CDG002, fmt.Sprintf("cannot sanitize variable name %q", p.ID)))
			return
		}
		unit.AddDeclaration(cxx.Declaration{
			Kind: "global", Name: name,
			Text: fmt.Sprintf("static %s %s;", renderQualifiedName(p.Type), name),
		})

	default:
		g.errs = append(g.errs, diag.New(diag.CDG001, fmt.Sprintf("no codegen lowering for %s", n.Tag())))
	}
}

// renderType emits a type definition for named structural types
// (struct/union/enum/bitfield); other kinds are type aliases.
func (g *Generator) renderType(name string, q *ast.Node) (string, *diag.Report) {
	up := ast.Unqualified(q)
	if up == nil {
		return "", diag.New(diag.CDG001, "type declaration has no unqualified inner type")
	}
	switch up.Kind {
	case ast.KindStruct, ast.KindUnit:
		var fields []string
		for _, f := range up.Fields {
			fp := f.Payload().(*ast.FieldPayload)
			fname, ok := SanitizeIdentifier(fp.ID)
			if !ok {
				return "", diag.New(diag.CDG002, fmt.Sprintf("cannot sanitize field name %q", fp.ID))
			}
			fields = append(fields, fmt.Sprintf("  %s %s;", renderQualifiedName(fp.Type), fname))
		}
		return fmt.Sprintf("struct %s {\n%s\n};", name, strings.Join(fields, "\n")), nil
	case ast.KindEnum:
		var labels []string
		for _, l := range up.EnumLabels {
			labels = append(labels, fmt.Sprintf("  %s = %d,", l.Name, l.Ordinal))
		}
		return fmt.Sprintf("enum class %s {\n%s\n};", name, strings.Join(labels, "\n")), nil
	case ast.KindBitfield:
		return fmt.Sprintf("using %s = ::hilti::rt::integer::safe<uint%d_t>;", name, up.BitWidth), nil
	default:
		qp := q.Payload().(*ast.QualifiedTypePayload)
		if _, rep := g.Unifier.Unify(qp.Inner); rep != nil {
			return "", rep
		}
		return fmt.Sprintf("using %s = %s;", name, renderQualifiedName(q)), nil
	}
}

// renderQualifiedName renders a best-effort C++ type spelling for a
// TagQualifiedType node. It does not attempt full template-accurate
// spelling for every container kind, and it reports no diagnostic: kinds
// absent from the switch render as "auto".
func renderQualifiedName(q *ast.Node) string {
	up := ast.Unqualified(q)
	if up == nil {
		return "void"
	}
	name := cxxBaseName(up)
	qp := q.Payload().(*ast.QualifiedTypePayload)
	if qp.Constness == ast.Const {
		return "const " + name
	}
	return name
}

func cxxBaseName(up *ast.UnqualifiedTypePayload) string {
	switch up.Kind {
	case ast.KindInteger:
		sign := "int"
		if !up.IntSigned {
			sign = "uint"
		}
		return fmt.Sprintf("%s%d_t", sign, up.IntWidth)
	case ast.KindBool:
		return "bool"
	case ast.KindReal:
		return "double"
	case ast.KindBytes:
		return "::hilti::rt::Bytes"
	case ast.KindStream:
		return "::hilti::rt::Stream"
	case ast.KindOptional:
		return fmt.Sprintf("std::optional<%s>", renderQualifiedName(up.Elem))
	case ast.KindResult:
		return fmt.Sprintf("::hilti::rt::Result<%s>", renderQualifiedName(up.Elem))
	case ast.KindVector:
		return fmt.Sprintf("::hilti::rt::Vector<%s>", renderQualifiedName(up.Elem))
	case ast.KindSet:
		return fmt.Sprintf("::hilti::rt::Set<%s>", renderQualifiedName(up.Elem))
	case ast.KindMap:
		return fmt.Sprintf("::hilti::rt::Map<%s,%s>", renderQualifiedName(up.MapKey), renderQualifiedName(up.MapValue))
	case ast.KindReference:
		switch up.RefFlavor {
		case ast.RefWeak:
			return fmt.Sprintf("::hilti::rt::WeakReference<%s>", renderQualifiedName(up.Elem))
		case ast.RefValue:
			return renderQualifiedName(up.Elem)
		default:
			return fmt.Sprintf("::hilti::rt::StrongReference<%s>", renderQualifiedName(up.Elem))
		}
	case ast.KindStruct, ast.KindUnit, ast.KindEnum, ast.KindUnion:
		if up.CanonicalID != "" {
			return up.CanonicalID
		}
		return "/*anonymous*/ struct {}"
	default:
		return "auto"
	}
}

func renderExprPlaceholder(e *ast.Node) string {
	if e == nil {
		return "{}"
	}
	if lit, ok := e.Payload().(*ast.LiteralExprPayload); ok {
		return fmt.Sprintf("%v", lit.Value)
	}
	return "/* expr */"
}

// SanitizeIdentifier maps a HILTI/Spicy identifier to a legal C++
// identifier: leading digits are prefixed, and reserved/illegal
// characters (e.g. Spicy's permissive identifier charset) are replaced
// with underscores. It reports ok=false only for the empty string, which
// cannot be sanitized into anything meaningful (CDG002).
func SanitizeIdentifier(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	var b strings.Builder
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String(), true
}
