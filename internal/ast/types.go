package ast

// TypeKind enumerates the concrete UnqualifiedType kinds of spec.md §3.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindInteger
	KindReal
	KindBool
	KindBytes
	KindStream
	KindRegexp
	KindAddress
	KindPort
	KindInterval
	KindTime
	KindTuple
	KindStruct
	KindUnion
	KindEnum
	KindOptional
	KindResult
	KindReference
	KindFunction
	KindBitfield
	KindSet
	KindMap
	KindVector
	KindList
	KindUnit   // Spicy-only
	KindWildcard
	KindVoid
)

func (k TypeKind) String() string {
	names := map[TypeKind]string{
		KindInvalid: "invalid", KindInteger: "integer", KindReal: "real", KindBool: "bool",
		KindBytes: "bytes", KindStream: "stream", KindRegexp: "regexp", KindAddress: "address",
		KindPort: "port", KindInterval: "interval", KindTime: "time", KindTuple: "tuple",
		KindStruct: "struct", KindUnion: "union", KindEnum: "enum", KindOptional: "optional",
		KindResult: "result", KindReference: "reference", KindFunction: "function",
		KindBitfield: "bitfield", KindSet: "set", KindMap: "map", KindVector: "vector",
		KindList: "list", KindUnit: "unit", KindWildcard: "wildcard", KindVoid: "void",
	}
	if s, ok := names[k]; ok {
		return s
	}
	return "invalid"
}

// ReferenceFlavor distinguishes the three reference kinds of spec.md §3.
type ReferenceFlavor int

const (
	RefStrong ReferenceFlavor = iota
	RefWeak
	RefValue
)

// FunctionFlavor distinguishes ordinary functions from hooks and methods;
// it is read by codegen (§4.8) to pick the right C++ calling shape.
type FunctionFlavor int

const (
	FlavorFunction FunctionFlavor = iota
	FlavorMethod
	FlavorHook
)

// TupleElement is one labeled (or anonymous) element of a tuple type.
type TupleElement struct {
	Label string // empty if anonymous
	Type  *Node  // TagQualifiedType
}

// EnumLabel is one (name, ordinal) pair of an enum type.
type EnumLabel struct {
	Name    string
	Ordinal int64
}

// BitfieldRange is one named bit range of a bitfield type.
type BitfieldRange struct {
	Name string
	Low  int
	High int
}

// UnqualifiedTypePayload is the Payload for TagUnqualifiedType nodes. Only
// the fields relevant to Kind are populated; this mirrors the "tagged sum
// of concrete variants" restatement of spec.md §9 while keeping every type
// node a single struct the unifier and codegen can switch on uniformly.
type UnqualifiedTypePayload struct {
	Kind TypeKind

	// Named types (struct/union/enum/unit) carry a canonical ID; anonymous
	// structural types unify by shape alone (spec.md §3).
	CanonicalID string

	// KindInteger
	IntWidth    int
	IntSigned   bool

	// KindTuple
	TupleElems []TupleElement

	// KindStruct / KindUnion / KindUnit: fields are declaration nodes
	// (TagDeclField); KindUnit additionally carries parameters and
	// attributes.
	Fields     []*Node
	Params     []*Node // TagDeclParameter, unit parameters only
	Attributes []*Node // TagAttribute, unit-level attributes only

	// KindEnum
	EnumLabels []EnumLabel

	// KindOptional / KindResult / KindReference / KindVector / KindList /
	// KindSet: single element/inner type.
	Elem *Node // TagQualifiedType

	// KindMap: key and value types.
	MapKey   *Node // TagQualifiedType
	MapValue *Node // TagQualifiedType

	// KindReference
	RefFlavor ReferenceFlavor

	// KindFunction
	FuncParams  []*Node // TagDeclParameter
	FuncResult  *Node   // TagQualifiedType
	FuncFlavor  FunctionFlavor
	CallingConv string

	// KindBitfield
	BitWidth  int
	BitRanges []BitfieldRange

	// Cached canonical serialization computed by internal/unify.Unifier;
	// empty until Unify has run once. A non-empty string here lets
	// internal/unify.Unify be idempotent without recomputation (spec.md §8).
	unification string
}

func (*UnqualifiedTypePayload) payload() {}

// Unification returns the cached canonical unification string, or "" if
// internal/unify has not yet processed this type.
func (p *UnqualifiedTypePayload) Unification() string { return p.unification }

// SetUnification stores the canonical unification string computed by
// internal/unify.Unifier. Wildcard payloads must have this preset before
// finalization (spec.md §4.6); an empty string left on a non-wildcard type
// at finalization time is an internal error.
func (p *UnqualifiedTypePayload) SetUnification(s string) { p.unification = s }

// Constness distinguishes mutable from const-qualified types.
type Constness int

const (
	Mutable Constness = iota
	Const
)

// Side distinguishes whether a qualified type may appear on the left-hand
// side of an assignment.
type Side int

const (
	RHS Side = iota
	LHS
)

// QualifiedTypePayload is the Payload for TagQualifiedType nodes: an
// UnqualifiedType node plus constness/side qualifiers.
type QualifiedTypePayload struct {
	Inner     *Node // TagUnqualifiedType
	Constness Constness
	Side      Side
}

func (*QualifiedTypePayload) payload() {}

// NewUnqualifiedType builds a detached TagUnqualifiedType node. Callers
// typically pass the result straight to an ASTContext's Make to have it
// assigned an identity and registered in the arena.
func NewUnqualifiedType(p *UnqualifiedTypePayload) *Node {
	return New(TagUnqualifiedType, p)
}

// NewQualifiedType builds a detached TagQualifiedType node wrapping inner
// with the given constness/side. Per spec.md §3, casting to a different
// constness/side always produces a fresh node rather than mutating inner's
// existing qualifier in place.
func NewQualifiedType(inner *Node, c Constness, s Side) *Node {
	return New(TagQualifiedType, &QualifiedTypePayload{Inner: inner, Constness: c, Side: s})
}

// WithConstness returns a new, detached QualifiedType node wrapping the
// same inner type with a different constness, leaving q untouched.
func WithConstness(q *Node, c Constness) *Node {
	qp := q.Payload().(*QualifiedTypePayload)
	return NewQualifiedType(qp.Inner, c, qp.Side)
}

// WithSide returns a new, detached QualifiedType node wrapping the same
// inner type with a different side, leaving q untouched.
func WithSide(q *Node, s Side) *Node {
	qp := q.Payload().(*QualifiedTypePayload)
	return NewQualifiedType(qp.Inner, qp.Constness, s)
}

// Unqualified returns the UnqualifiedTypePayload of a TagQualifiedType's
// inner node, or nil if n is not a qualified type.
func Unqualified(n *Node) *UnqualifiedTypePayload {
	if n == nil || n.Tag() != TagQualifiedType {
		return nil
	}
	qp := n.Payload().(*QualifiedTypePayload)
	if qp.Inner == nil || qp.Inner.Tag() != TagUnqualifiedType {
		return nil
	}
	return qp.Inner.Payload().(*UnqualifiedTypePayload)
}
