package ast

// Linkage is the visibility/lifecycle classification of a Declaration, per
// spec.md §3.
type Linkage int

const (
	Private Linkage = iota
	Public
	Export
	Init
	PreInit
	Struct
)

func (l Linkage) String() string {
	switch l {
	case Public:
		return "public"
	case Export:
		return "export"
	case Init:
		return "init"
	case PreInit:
		return "preinit"
	case Struct:
		return "struct"
	default:
		return "private"
	}
}

// DeclIndex is an opaque handle into an ASTContext pointing at a
// Declaration node, used for sibling references such as "this declaration
// was resolved to that declaration elsewhere" (spec.md §9).
type DeclIndex uint64

// DeclCommon holds the fields shared by every Declaration variant. Each
// concrete declaration payload embeds it.
type DeclCommon struct {
	ID       string
	Linkage  Linkage
	Index    DeclIndex
	indexSet bool

	// Canonical and fully-qualified IDs (after original_source's id-base.h
	// split). No pass in this repository assigns them, so both stay empty
	// unless a caller sets them directly.
	CanonicalID      string
	FullyQualifiedID string
}

// SetIndex assigns the declaration's arena index. Exactly one caller,
// internal/astctx.Context.RegisterDecl, may call this.
func (d *DeclCommon) SetIndex(i DeclIndex) {
	d.Index = i
	d.indexSet = true
}

// IndexSet reports whether SetIndex has been called.
func (d *DeclCommon) IndexSet() bool { return d.indexSet }

// ModulePayload is the Payload for TagDeclModule nodes.
type ModulePayload struct {
	DeclCommon
	Path string
	Body []*Node // top-level declarations and statements
}

func (*ModulePayload) payload() {}

// ImportedModulePayload is the Payload for TagDeclImportedModule nodes.
type ImportedModulePayload struct {
	DeclCommon
	Path     string
	Resolved *Node // TagDeclModule once the loader has resolved it
}

func (*ImportedModulePayload) payload() {}

// TypeDeclPayload is the Payload for TagDeclType nodes: a named type
// introduces both a Declaration and the UnqualifiedType it names.
type TypeDeclPayload struct {
	DeclCommon
	Type *Node // TagQualifiedType
}

func (*TypeDeclPayload) payload() {}

// ConstantPayload is the Payload for TagDeclConstant nodes.
type ConstantPayload struct {
	DeclCommon
	Type  *Node // TagQualifiedType
	Value *Node // expression
}

func (*ConstantPayload) payload() {}

// VariablePayload is the Payload shared by TagDeclGlobalVariable and
// TagDeclLocalVariable (they differ only by Tag, not by shape).
type VariablePayload struct {
	DeclCommon
	Type     *Node // TagQualifiedType
	Init     *Node // optional initializer expression
}

func (*VariablePayload) payload() {}

// ParamKind is an operand/parameter passing mode, per spec.md §3's
// Operator description and §4.8's codegen parameter-kind→usage table.
type ParamKind int

const (
	ParamIn ParamKind = iota
	ParamInOut
	ParamCopy
)

func (k ParamKind) String() string {
	switch k {
	case ParamInOut:
		return "inout"
	case ParamCopy:
		return "copy"
	default:
		return "in"
	}
}

// ParameterPayload is the Payload for TagDeclParameter nodes.
type ParameterPayload struct {
	DeclCommon
	Type    *Node // TagQualifiedType
	Kind    ParamKind
	Default *Node // optional default-value expression
}

func (*ParameterPayload) payload() {}

// FieldPayload is the Payload for TagDeclField nodes: a struct or unit
// member. Spicy unit fields reuse this with Attributes/Hooks populated;
// plain HILTI struct fields leave them empty.
type FieldPayload struct {
	DeclCommon
	Type       *Node   // TagQualifiedType
	Default    *Node   // optional default-value expression
	Attributes []*Node // TagAttribute, Spicy-only
	Hooks      []*Node // TagDeclHook, Spicy-only
	Anonymous  bool
}

func (*FieldPayload) payload() {}

// ExpressionDeclPayload is the Payload for TagDeclExpression nodes: a
// computed expression given a declaration identity so it can be referenced
// like any other binding (spec.md §3).
type ExpressionDeclPayload struct {
	DeclCommon
	Value *Node
}

func (*ExpressionDeclPayload) payload() {}

// HookKind distinguishes field-attached hooks from unit-level event hooks.
type HookKind int

const (
	HookField HookKind = iota
	HookUnitDone   // %done
	HookUnitError  // %error
	HookForeach
)

// HookPayload is the Payload for TagDeclHook nodes: a callback attached to
// a unit field or a unit-level event, per spec.md's GLOSSARY.
type HookPayload struct {
	DeclCommon
	Kind   HookKind
	Target *Node // the TagDeclField or TagUnit this hook is attached to
	Body   *Node // TagBlockExpr
}

func (*HookPayload) payload() {}
