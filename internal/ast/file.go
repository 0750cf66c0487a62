package ast

// Language distinguishes which front end produced a File, since a single
// driver run can mix HILTI and Spicy source files (spec.md §4.7).
type Language int

const (
	LangHILTI Language = iota
	LangSpicy
)

func (l Language) String() string {
	if l == LangSpicy {
		return "spicy"
	}
	return "hilti"
}

// FilePayload is the Payload for TagFile nodes: the root of one parsed
// source file's AST, as held by internal/driver.Unit (spec.md §4.7). A
// module's declarations live under the single TagDeclModule child; File
// itself only tracks provenance and per-file pass bookkeeping.
type FilePayload struct {
	Path     string
	Language Language
	Module   *Node // TagDeclModule, this file's single top-level module

	// ResolvedPasses records which driver passes have already run over this
	// file, letting the fixed-point loop skip files that reached a stable
	// point early (spec.md §4.9 "Driver").
	ResolvedPasses map[string]bool
}

func (*FilePayload) payload() {}

// NewFile builds a detached TagFile node for path/lang wrapping module.
func NewFile(path string, lang Language, module *Node) *Node {
	f := New(TagFile, &FilePayload{Path: path, Language: lang, Module: module, ResolvedPasses: map[string]bool{}})
	if module != nil {
		f.AddChild(module)
	}
	return f
}

// MarkPassResolved records that pass has completed for this file.
func (p *FilePayload) MarkPassResolved(pass string) {
	if p.ResolvedPasses == nil {
		p.ResolvedPasses = map[string]bool{}
	}
	p.ResolvedPasses[pass] = true
}

// PassResolved reports whether pass has already run to completion on this file.
func (p *FilePayload) PassResolved(pass string) bool {
	return p.ResolvedPasses[pass]
}
