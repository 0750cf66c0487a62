// Package ast defines hiltigo's single polymorphic AST node and the
// concrete node kinds (types, declarations, expressions, grammar-facing
// Spicy constructs) built on top of it.
//
// Every AST entity is a *Node: a tag identifying its concrete variant, an
// ordered child list, a weak parent back-pointer, an optional Scope, a Meta
// (source location and preserved documentation), and an error list. A Node
// never decides its own ownership: that is the ASTContext arena's job
// (internal/astctx). This mirrors spec.md §3/§9's "Replacing inheritance
// hierarchies" note: one struct, a tag, and a per-kind payload instead of a
// deep class hierarchy.
package ast

import "github.com/hiltigo/hiltigo/internal/diag"

// ID is a stable identity for a node, unique within the ASTContext that
// created it and never reused after the node is released.
type ID uint64

// Tag identifies a Node's concrete variant. Visitors switch on Tag rather
// than using type assertions, matching spec.md §4.3.
type Tag int

const (
	TagInvalid Tag = iota

	// Module-level structure
	TagFile
	TagDeclModule
	TagDeclImportedModule

	// Types
	TagUnqualifiedType
	TagQualifiedType

	// Declarations
	TagDeclType
	TagDeclConstant
	TagDeclGlobalVariable
	TagDeclLocalVariable
	TagDeclFunction
	TagDeclParameter
	TagDeclField
	TagDeclExpression
	TagDeclHook

	// Expressions
	TagIdentifierExpr
	TagResolvedDeclExpr
	TagLiteralExpr
	TagOperatorExpr
	TagResolvedOperatorExpr
	TagMemberExpr
	TagCallExpr
	TagTypeValueExpr
	TagDollarDollarExpr
	TagBlockExpr

	// Spicy surface constructs
	TagUnit
	TagUnitField
	TagSink
	TagAttribute
	TagSwitchCase
)

func (t Tag) String() string {
	switch t {
	case TagFile:
		return "File"
	case TagDeclModule:
		return "Module"
	case TagDeclImportedModule:
		return "ImportedModule"
	case TagUnqualifiedType:
		return "UnqualifiedType"
	case TagQualifiedType:
		return "QualifiedType"
	case TagDeclType:
		return "TypeDecl"
	case TagDeclConstant:
		return "ConstantDecl"
	case TagDeclGlobalVariable:
		return "GlobalVariableDecl"
	case TagDeclLocalVariable:
		return "LocalVariableDecl"
	case TagDeclFunction:
		return "FunctionDecl"
	case TagDeclParameter:
		return "ParameterDecl"
	case TagDeclField:
		return "FieldDecl"
	case TagDeclExpression:
		return "ExpressionDecl"
	case TagDeclHook:
		return "HookDecl"
	case TagIdentifierExpr:
		return "IdentifierExpr"
	case TagResolvedDeclExpr:
		return "ResolvedDeclExpr"
	case TagLiteralExpr:
		return "LiteralExpr"
	case TagOperatorExpr:
		return "OperatorExpr"
	case TagResolvedOperatorExpr:
		return "ResolvedOperatorExpr"
	case TagMemberExpr:
		return "MemberExpr"
	case TagCallExpr:
		return "CallExpr"
	case TagTypeValueExpr:
		return "TypeValueExpr"
	case TagDollarDollarExpr:
		return "DollarDollarExpr"
	case TagBlockExpr:
		return "BlockExpr"
	case TagUnit:
		return "Unit"
	case TagUnitField:
		return "UnitField"
	case TagSink:
		return "Sink"
	case TagAttribute:
		return "Attribute"
	case TagSwitchCase:
		return "SwitchCase"
	default:
		return "Invalid"
	}
}

// Pos is a single source position.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

// Span is a source range.
type Span struct {
	Start Pos
	End   Pos
}

// Meta carries source location and any documentation comment preserved
// from the surface syntax. It is attached to every Node.
type Meta struct {
	Span    Span
	Comment string
}

// ScopeRef is the minimal surface ast.Node needs from a Scope. It exists so
// that the ast package never imports internal/scope, which itself imports
// ast.Node for declaration lookups.
type ScopeRef interface {
	Insert(id string, decl *Node)
	LookupAll(id string) []*Node
	InheritsParent() bool
}

// Payload holds the fields specific to a Node's concrete Tag. Each Tag has
// exactly one corresponding Payload implementation.
type Payload interface {
	payload()
}

// Node is hiltigo's single AST node type. Concrete variants differ only in
// their Payload; traversal, ownership, scoping, and diagnostics are
// uniform across every Tag.
type Node struct {
	id       ID
	idSet    bool
	tag      Tag
	children []*Node
	parent   *Node
	scope    ScopeRef
	meta     Meta
	errs     []*diag.Report
	payload  Payload

	inheritScope bool
	refCount     int32
	released     bool
}

// New creates a detached Node with the given tag and payload. Identity is
// assigned later by the owning ASTContext via SetIdentity; until then
// Identity() returns 0 and IdentitySet() is false.
func New(tag Tag, payload Payload) *Node {
	return &Node{tag: tag, payload: payload, inheritScope: true}
}

// SetIdentity assigns this node's permanent identity. It may be called
// exactly once; the ASTContext arena is the only caller (spec.md §4.1
// invariant I4: identity is unique and never reused).
func (n *Node) SetIdentity(id ID) {
	if n.idSet {
		panic("ast: identity already assigned")
	}
	n.id = id
	n.idSet = true
}

// Identity returns the node's arena-assigned identity.
func (n *Node) Identity() ID { return n.id }

// IdentitySet reports whether SetIdentity has been called.
func (n *Node) IdentitySet() bool { return n.idSet }

// Tag returns the node's concrete variant tag.
func (n *Node) Tag() Tag { return n.tag }

// Payload returns the node's variant-specific payload. Callers type-assert
// to the concrete payload type matching Tag().
func (n *Node) Payload() Payload { return n.payload }

// SetPayload replaces the node's payload in place (used by passes that
// refine a node without replacing its identity, e.g. attaching a computed
// result type to a ResolvedOperatorExpr).
func (n *Node) SetPayload(p Payload) { n.payload = p }

// Parent returns the node's weak parent back-pointer, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's ordered child list. Children may be nil.
func (n *Node) Children() []*Node { return n.children }

// SetInheritScope controls whether scope lookups from this node continue
// past it into the enclosing scope chain, or jump straight to the
// enclosing module (spec.md §4.2: "if a node has inheritScope=false, skip
// to the enclosing module").
func (n *Node) SetInheritScope(v bool) { n.inheritScope = v }

// InheritsScope reports the current inheritScope flag.
func (n *Node) InheritsScope() bool { return n.inheritScope }

// Scope returns the scope attached to this node, if any.
func (n *Node) Scope() ScopeRef { return n.scope }

// SetScope attaches a scope to this node.
func (n *Node) SetScope(s ScopeRef) { n.scope = s }

// Meta returns the node's source-location/documentation metadata.
func (n *Node) Meta() Meta { return n.meta }

// SetMeta replaces the node's metadata.
func (n *Node) SetMeta(m Meta) { n.meta = m }

// Errors returns the diagnostics attached to this node.
func (n *Node) Errors() []*diag.Report { return n.errs }

// HasErrors reports whether any diagnostic is attached.
func (n *Node) HasErrors() bool { return len(n.errs) > 0 }

// AddError attaches a diagnostic to this node.
func (n *Node) AddError(r *diag.Report) { n.errs = append(n.errs, r) }

// retain/release back the arena's reference count (internal/astctx is the
// only caller); exported so astctx can live in a separate package without
// the ast package needing to know about arenas.

// Retain increments the node's reference count.
func (n *Node) Retain() { n.refCount++ }

// Release decrements the node's reference count and reports whether it
// reached zero.
func (n *Node) Release() bool {
	n.refCount--
	if n.refCount <= 0 {
		n.released = true
		return true
	}
	return false
}

// Released reports whether the node's reference count has reached zero.
func (n *Node) Released() bool { return n.released }

// RefCount returns the current reference count (for diagnostics/tests).
func (n *Node) RefCount() int32 { return n.refCount }

// AddChild appends a child, taking ownership: the child's parent pointer is
// set to n and its arena reference count incremented. If child already has
// a parent, the caller must deep-copy first (internal/astctx.Context.Reparent
// enforces this — spec.md §3 invariant I2).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		n.children = append(n.children, nil)
		return
	}
	if child.parent != nil {
		panic("ast: child already has a parent; use astctx.Context.Reparent to deep-copy first")
	}
	child.parent = n
	child.Retain()
	n.children = append(n.children, child)
}

// SetChild replaces the child at index i, releasing the old child's arena
// reference and attaching the new one.
func (n *Node) SetChild(i int, child *Node) {
	if i < 0 || i >= len(n.children) {
		panic("ast: child index out of range")
	}
	old := n.children[i]
	if old != nil {
		old.parent = nil
		old.Release()
	}
	if child != nil {
		if child.parent != nil {
			panic("ast: child already has a parent; use astctx.Context.Reparent to deep-copy first")
		}
		child.parent = n
		child.Retain()
	}
	n.children[i] = child
}

// ReplaceChild finds old among n's children and replaces it with new_. It
// is the Node-level primitive the resolver and Spicy-to-HILTI transform use
// to swap in resolved/lowered subtrees in place.
func (n *Node) ReplaceChild(old, new_ *Node) bool {
	for i, c := range n.children {
		if c == old {
			n.SetChild(i, new_)
			return true
		}
	}
	return false
}

// RemoveChild detaches and releases the child at index i without replacing
// it; the slot collapses (children are compacted, not left as a hole).
func (n *Node) RemoveChild(i int) {
	if i < 0 || i >= len(n.children) {
		panic("ast: child index out of range")
	}
	old := n.children[i]
	if old != nil {
		old.parent = nil
		old.Release()
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
}

// ClearChildren detaches and releases every child (used when an arena
// subtree is being torn down or fully replaced).
func (n *Node) ClearChildren() {
	for _, c := range n.children {
		if c != nil {
			c.parent = nil
			c.Release()
		}
	}
	n.children = nil
}

// CheckTreeInvariant recursively verifies spec.md §3 invariant I1 (every
// non-null child's parent pointer equals the holder). It is used by
// internal/astctx's property tests and is safe to call on any subtree.
func (n *Node) CheckTreeInvariant() bool {
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if c.parent != n {
			return false
		}
		if !c.CheckTreeInvariant() {
			return false
		}
	}
	return true
}
