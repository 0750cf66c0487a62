package ast

// AttributeArgKind distinguishes how an attribute's argument should be
// interpreted, mirroring original_source's attribute.h Kind enum
// (SPEC_FULL.md Supplemented features).
type AttributeArgKind int

const (
	AttrArgNone AttributeArgKind = iota
	AttrArgExpression
	AttrArgType
	AttrArgString
)

// AttributePayload is the Payload for TagAttribute nodes: a single
// &name[=arg] bag, per spec.md §3's "attribute-bag" data-model note. One
// Go type covers every attribute kind (&size, &until, &until-including,
// &while, &convert, &requires, &synchronize, &chunked, &byte-order,
// &bit-order, &eod, &nosub, &anonymous, &default, &optional) rather than a
// dedicated type per kind, matching original_source/hilti/toolchain/
// include/ast/attribute.h's single Attribute class with a Kind tag.
type AttributePayload struct {
	Name    string
	ArgKind AttributeArgKind
	Arg     *Node // expression or type node, depending on ArgKind; nil if AttrArgNone
}

func (*AttributePayload) payload() {}

// NewAttribute builds a detached argument-less attribute node (e.g. &eod).
func NewAttribute(name string) *Node {
	return New(TagAttribute, &AttributePayload{Name: name, ArgKind: AttrArgNone})
}

// NewAttributeWithExpr builds a detached attribute node carrying an
// expression argument (e.g. &size=N).
func NewAttributeWithExpr(name string, arg *Node) *Node {
	return New(TagAttribute, &AttributePayload{Name: name, ArgKind: AttrArgExpression, Arg: arg})
}

// HasAttribute reports whether attrs contains one named name.
func HasAttribute(attrs []*Node, name string) bool {
	_, ok := FindAttribute(attrs, name)
	return ok
}

// FindAttribute returns the first attribute named name, if present.
func FindAttribute(attrs []*Node, name string) (*AttributePayload, bool) {
	for _, a := range attrs {
		if a == nil || a.Tag() != TagAttribute {
			continue
		}
		ap := a.Payload().(*AttributePayload)
		if ap.Name == name {
			return ap, true
		}
	}
	return nil, false
}

// UnitPayload is the Payload for TagUnit nodes: a Spicy parsing unit, the
// grammar-bearing counterpart of a plain HILTI struct (spec.md §3 GLOSSARY
// "Unit"). A Unit's UnqualifiedTypePayload (Kind: KindUnit) carries the
// field list; UnitPayload itself carries the grammar derived from it once
// internal/grammar has run.
type UnitPayload struct {
	Type       *Node   // TagUnqualifiedType, Kind: KindUnit
	Params     []*Node // TagDeclParameter
	Attributes []*Node // TagAttribute
	Hooks      []*Node // TagDeclHook, unit-level (%done, %error)

	// PublicEntry marks a unit reachable directly from a host application
	// (spec.md §4.7's "parse(..., isTopLevel)" distinction).
	PublicEntry bool
}

func (*UnitPayload) payload() {}

// UnitFieldKind distinguishes the concrete production shape a unit field
// parses, mirroring internal/grammar.Production's variants (spec.md §4.6).
type UnitFieldKind int

const (
	FieldCtor UnitFieldKind = iota
	FieldVariable
	FieldTypeLiteral
	FieldSwitch
	FieldList    // &until/&while-bounded container
	FieldUnitRef // nested unit field
)

// UnitFieldPayload is the Payload for TagUnitField nodes: one field of a
// Unit's parsing grammar, carrying both its declared Go-side type (via the
// embedded FieldPayload it wraps conceptually) and the grammar-facing
// production shape.
type UnitFieldPayload struct {
	FieldPayload
	Kind    UnitFieldKind
	Ctor    *Node   // FieldCtor: a literal value the input must match
	Cases   []*Node // FieldSwitch: TagSwitchCase
	Default *Node   // FieldSwitch: optional default case body
	Cond    *Node   // switch-on expression, FieldSwitch only
}

func (*UnitFieldPayload) payload() {}

// SwitchCasePayload is the Payload for TagSwitchCase nodes: one arm of a
// Spicy `switch` unit field.
type SwitchCasePayload struct {
	Labels []*Node // literal expressions this case matches; empty means default
	Body   []*Node // TagUnitField, the fields parsed when this case matches
}

func (*SwitchCasePayload) payload() {}

// SinkPayload is the Payload for TagSink nodes: a buffering/reassembly
// endpoint that other units can `connect` to, per spec.md GLOSSARY "Sink".
type SinkPayload struct {
	ElementType *Node // TagQualifiedType of the reassembled stream unit, if any
}

func (*SinkPayload) payload() {}
