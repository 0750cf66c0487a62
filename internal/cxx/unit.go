// Package cxx models the structured C++ translation unit codegen lowers
// HILTI AST nodes into, and renders it to source text for the JIT's
// external compiler step (spec.md §4.8).
package cxx

import (
	"fmt"
	"sort"
	"strings"
)

// Declaration is one forward declaration, type definition, or function
// definition emitted into a Unit, in the order it should appear in the
// rendered translation unit.
type Declaration struct {
	Kind string // "forward", "type", "function", "global"
	Name string // sanitized C++ identifier, for dedup and linker metadata
	Text string // rendered C++ source for this declaration
}

// LinkerSymbol records one symbol this unit exports, for the JIT's linker
// step to resolve across translation units (spec.md §4.10).
type LinkerSymbol struct {
	Name     string
	External bool
}

// Unit is the structured C++ document one HILTI module lowers to. Codegen
// builds it incrementally as it walks the AST; Render flattens it to a
// single source string.
type Unit struct {
	ModuleName string
	Includes   []string
	Namespace  string

	decls   []Declaration
	seen    map[string]bool
	symbols []LinkerSymbol
}

// New creates an empty Unit for the given module/namespace.
func New(moduleName, namespace string) *Unit {
	return &Unit{ModuleName: moduleName, Namespace: namespace, seen: map[string]bool{}}
}

// AddInclude appends a #include line if not already present.
func (u *Unit) AddInclude(header string) {
	for _, h := range u.Includes {
		if h == header {
			return
		}
	}
	u.Includes = append(u.Includes, header)
}

// AddDeclaration appends a declaration. Re-adding the same (Kind, Name) is
// a no-op, since codegen may visit a shared type from multiple call sites.
func (u *Unit) AddDeclaration(d Declaration) {
	key := d.Kind + ":" + d.Name
	if u.seen[key] {
		return
	}
	u.seen[key] = true
	u.decls = append(u.decls, d)
}

// AddSymbol records an exported linker symbol.
func (u *Unit) AddSymbol(s LinkerSymbol) {
	u.symbols = append(u.symbols, s)
}

// Symbols returns every recorded linker symbol.
func (u *Unit) Symbols() []LinkerSymbol {
	out := make([]LinkerSymbol, len(u.symbols))
	copy(out, u.symbols)
	return out
}

// Declarations returns every declaration added so far, in insertion order.
func (u *Unit) Declarations() []Declaration {
	out := make([]Declaration, len(u.decls))
	copy(out, u.decls)
	return out
}

// Render flattens the unit to a single C++ source string: sorted includes,
// then a namespace block containing forward declarations, type
// definitions, globals, and function definitions in that grouped order
// (spec.md §4.8's emission ordering note).
func (u *Unit) Render() string {
	var b strings.Builder
	includes := append([]string(nil), u.Includes...)
	sort.Strings(includes)
	for _, h := range includes {
		fmt.Fprintf(&b, "#include %s\n", h)
	}
	if len(includes) > 0 {
		b.WriteString("\n")
	}
	if u.Namespace != "" {
		fmt.Fprintf(&b, "namespace %s {\n\n", u.Namespace)
	}
	for _, kind := range []string{"forward", "type", "global", "function"} {
		for _, d := range u.decls {
			if d.Kind != kind {
				continue
			}
			b.WriteString(d.Text)
			b.WriteString("\n")
		}
	}
	if u.Namespace != "" {
		fmt.Fprintf(&b, "} // namespace %s\n", u.Namespace)
	}
	return b.String()
}
