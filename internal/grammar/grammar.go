// Package grammar computes LL(1) parsing grammars from Spicy unit field
// lists: nullable/FIRST/FOLLOW sets and the look-ahead validation that
// rejects ambiguous or backtracking-requiring fields (spec.md §4.6).
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/diag"
)

// ProductionKind mirrors the production shapes spec.md §4.6 names.
type ProductionKind int

const (
	ProdCtor ProductionKind = iota
	ProdVariable
	ProdTypeLiteral
	ProdSequence
	ProdLookAhead
	ProdReference
	ProdDeferred
	ProdEpsilon
)

func (k ProductionKind) String() string {
	names := [...]string{"Ctor", "Variable", "TypeLiteral", "Sequence", "LookAhead", "Reference", "Deferred", "Epsilon"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Terminal is one atomic matchable token of the grammar: either a literal
// byte/regex match (Ctor-derived) or the wildcard "any" terminal used by
// unconstrained Variable productions.
type Terminal struct {
	Literal string
	Any     bool
}

func (t Terminal) String() string {
	if t.Any {
		return "<any>"
	}
	return fmt.Sprintf("%q", t.Literal)
}

// endOfInput is the marker terminal seeded into the root production's
// FOLLOW set (spec.md §4.7 step 4: "FOLLOW(Root) starts out containing
// end-of-input").
var endOfInput = Terminal{Literal: "<eof>"}

// Production is one node of a unit's grammar, built from its
// ast.UnitFieldPayload. Alternatives holds the branches of a Sequence
// (concatenation order) or a LookAhead (mutually-exclusive alternatives
// chosen by FIRST set); Target resolves a Reference/Deferred production to
// the Production it stands for once grammar construction completes.
type Production struct {
	Kind         ProductionKind
	Field        *ast.Node // originating TagUnitField, nil for synthetic productions
	Terminal     Terminal  // ProdCtor
	Alternatives []*Production
	Target       *Production // ProdReference/ProdDeferred

	nullable bool
	hasNull  bool // whether nullable has been computed yet
	first    map[string]Terminal
	follow   map[string]Terminal
}

// Grammar is the full set of Productions derived from one Unit's field
// list, plus the computed FIRST/FOLLOW tables keyed by a stable per
// -production label.
type Grammar struct {
	Root  *Production
	byID  map[*Production]string
	nextN int
}

// Build constructs an unresolved Grammar from a Unit's ordered field list.
// Deferred productions (forward references to fields not yet visited, e.g.
// recursive unit types) are left as ProdDeferred placeholders for Resolve
// to fill in.
func Build(fields []*ast.Node) *Grammar {
	g := &Grammar{byID: map[*Production]string{}}
	seq := &Production{Kind: ProdSequence}
	g.label(seq)
	for _, f := range fields {
		seq.Alternatives = append(seq.Alternatives, g.fromField(f))
	}
	g.Root = seq
	return g
}

func (g *Grammar) fromField(f *ast.Node) *Production {
	fp := f.Payload().(*ast.UnitFieldPayload)
	p := &Production{Field: f}
	g.label(p)
	switch fp.Kind {
	case ast.FieldCtor:
		p.Kind = ProdCtor
		p.Terminal = Terminal{Any: true}
	case ast.FieldVariable, ast.FieldTypeLiteral:
		p.Kind = ProdTypeLiteral
		p.Terminal = Terminal{Any: true}
	case ast.FieldSwitch:
		p.Kind = ProdLookAhead
		for _, c := range fp.Cases {
			cp := c.Payload().(*ast.SwitchCasePayload)
			alt := &Production{Kind: ProdSequence}
			g.label(alt)
			for _, bodyField := range cp.Body {
				alt.Alternatives = append(alt.Alternatives, g.fromField(bodyField))
			}
			p.Alternatives = append(p.Alternatives, alt)
		}
	case ast.FieldList:
		p.Kind = ProdSequence
		p.Terminal = Terminal{Any: true}
	case ast.FieldUnitRef:
		p.Kind = ProdDeferred
	}
	return p
}

func (g *Grammar) label(p *Production) {
	g.nextN++
	g.byID[p] = fmt.Sprintf("p%d", g.nextN)
}

// Resolve fills in any ProdDeferred productions left by Build, given a
// lookup from field identity to its already-built Production (the grammar
// for nested/recursive unit references). Unresolved deferred productions
// after this call are reported as GRM001.
func (g *Grammar) Resolve(lookup map[*ast.Node]*Production) []*diag.Report {
	var errs []*diag.Report
	var walk func(p *Production)
	walk = func(p *Production) {
		if p == nil {
			return
		}
		if p.Kind == ProdDeferred && p.Target == nil {
			if target, ok := lookup[p.Field]; ok {
				p.Target = target
			} else {
				errs = append(errs, diag.New(diag.GRM001, "unresolved deferred production").
					WithData("field", fieldName(p.Field)))
			}
		}
		for _, alt := range p.Alternatives {
			walk(alt)
		}
	}
	walk(g.Root)
	return errs
}

func fieldName(f *ast.Node) string {
	if f == nil {
		return "<anonymous>"
	}
	return f.Payload().(*ast.UnitFieldPayload).ID
}

// Nullable reports whether p can match the empty input, computing and
// caching the result (spec.md §4.6). ProdEpsilon is nullable by
// definition; ProdCtor/ProdTypeLiteral/ProdVariable with no optional
// wrapper are not.
func (p *Production) Nullable() bool {
	if p.hasNull {
		return p.nullable
	}
	p.hasNull = true // break cycles conservatively: assume non-nullable while computing
	switch p.Kind {
	case ProdEpsilon:
		p.nullable = true
	case ProdSequence:
		allNullable := true
		for _, alt := range p.Alternatives {
			if !alt.Nullable() {
				allNullable = false
				break
			}
		}
		p.nullable = allNullable && len(p.Alternatives) > 0 || len(p.Alternatives) == 0
	case ProdLookAhead:
		for _, alt := range p.Alternatives {
			if alt.Nullable() {
				p.nullable = true
				break
			}
		}
	case ProdReference, ProdDeferred:
		if p.Target != nil {
			p.nullable = p.Target.Nullable()
		}
	default:
		p.nullable = false
	}
	return p.nullable
}

// First computes (and caches) p's FIRST set: the terminals that can begin
// a match of p.
func (p *Production) First() map[string]Terminal {
	if p.first != nil {
		return p.first
	}
	p.first = map[string]Terminal{}
	switch p.Kind {
	case ProdCtor, ProdTypeLiteral, ProdVariable:
		p.first[p.Terminal.String()] = p.Terminal
	case ProdSequence:
		for _, alt := range p.Alternatives {
			for k, t := range alt.First() {
				p.first[k] = t
			}
			if !alt.Nullable() {
				break
			}
		}
	case ProdLookAhead:
		for _, alt := range p.Alternatives {
			for k, t := range alt.First() {
				p.first[k] = t
			}
		}
	case ProdReference, ProdDeferred:
		if p.Target != nil {
			for k, t := range p.Target.First() {
				p.first[k] = t
			}
		}
	}
	return p.first
}

// Follow returns p's computed FOLLOW set: the terminals that can
// immediately follow a match of p. It is only meaningful after
// (*Grammar).Finalize has run.
func (p *Production) Follow() map[string]Terminal {
	if p.follow == nil {
		return map[string]Terminal{}
	}
	return p.follow
}

// addFollow merges ts into p's FOLLOW set, reporting whether anything new
// was added (used to detect convergence during the fixed-point sweep).
func (p *Production) addFollow(ts map[string]Terminal) bool {
	if p.follow == nil {
		p.follow = map[string]Terminal{}
	}
	changed := false
	for k, t := range ts {
		if _, ok := p.follow[k]; !ok {
			p.follow[k] = t
			changed = true
		}
	}
	return changed
}

// computeFollow computes FOLLOW sets for every production reachable from
// Root, per spec.md §4.7 step 4: seed Root with the end-of-input marker,
// then iterate to a fixed point propagating (a) a sequence's FIRST-of-
// suffix (chained through nullable elements) into each element's FOLLOW,
// and the sequence's own FOLLOW into any nullable trailing suffix, (b) a
// look-ahead's FOLLOW onto every alternative, and (c) a reference's or
// deferred production's FOLLOW onto its Target.
func (g *Grammar) computeFollow() {
	if g.Root == nil {
		return
	}
	g.Root.addFollow(map[string]Terminal{endOfInput.String(): endOfInput})

	for {
		changed := false
		visited := map[*Production]bool{}
		var walk func(p *Production)
		walk = func(p *Production) {
			if p == nil || visited[p] {
				return
			}
			visited[p] = true

			switch p.Kind {
			case ProdSequence:
				n := len(p.Alternatives)
				for i := 0; i < n; i++ {
					elem := p.Alternatives[i]
					suffixNullable := true
					for j := i + 1; j < n; j++ {
						if elem.addFollow(p.Alternatives[j].First()) {
							changed = true
						}
						if !p.Alternatives[j].Nullable() {
							suffixNullable = false
							break
						}
					}
					if suffixNullable {
						if elem.addFollow(p.Follow()) {
							changed = true
						}
					}
				}
			case ProdLookAhead:
				for _, alt := range p.Alternatives {
					if alt.addFollow(p.Follow()) {
						changed = true
					}
				}
			case ProdReference, ProdDeferred:
				if p.Target != nil {
					if p.Target.addFollow(p.Follow()) {
						changed = true
					}
				}
			}

			if p.Target != nil {
				walk(p.Target)
			}
			for _, alt := range p.Alternatives {
				walk(alt)
			}
		}
		walk(g.Root)
		if !changed {
			return
		}
	}
}

// Dump renders every production's label, kind, FIRST set, and FOLLOW set
// in label order, for the `hiltic grammar` CLI subcommand.
func (g *Grammar) Dump() string {
	byLabel := make(map[string]*Production, len(g.byID))
	labels := make([]string, 0, len(g.byID))
	for p, l := range g.byID {
		byLabel[l] = p
		labels = append(labels, l)
	}
	sort.Strings(labels)

	var b strings.Builder
	for _, l := range labels {
		p := byLabel[l]
		fmt.Fprintf(&b, "%s: %s\n", l, p.Kind)
		fmt.Fprintf(&b, "  FIRST:  %s\n", formatTerminals(p.First()))
		fmt.Fprintf(&b, "  FOLLOW: %s\n", formatTerminals(p.Follow()))
	}
	return b.String()
}

func formatTerminals(ts map[string]Terminal) string {
	if len(ts) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(ts))
	for k := range ts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "{" + strings.Join(keys, ", ") + "}"
}

// ValidateLL1 checks a ProdLookAhead production (a Spicy `switch` field,
// typically) for the two ambiguities spec.md §4.6 names: FIRST/FIRST
// overlap between alternatives (GRM002), and more than one alternative
// being nullable at once (GRM003, since then an empty input can't decide
// which branch to take).
func ValidateLL1(p *Production) []*diag.Report {
	var errs []*diag.Report
	if p.Kind != ProdLookAhead {
		return nil
	}
	nullableCount := 0
	seen := map[string]int{}
	for i, alt := range p.Alternatives {
		if alt.Nullable() {
			nullableCount++
		}
		for k := range alt.First() {
			if _, ok := seen[k]; ok {
				errs = append(errs, diag.New(diag.GRM002, fmt.Sprintf("FIRST/FIRST conflict on %s between alternatives", k)).
					WithData("terminal", k).
					WithData("alternative_index", i))
			}
			seen[k] = i
		}
	}
	if nullableCount > 1 {
		errs = append(errs, diag.New(diag.GRM003, "more than one alternative is nullable"))
	}
	return errs
}

// Finalize computes FOLLOW sets for the whole grammar, then walks it
// running ValidateLL1 over every LookAhead production it finds,
// accumulating diagnostics.
func (g *Grammar) Finalize() []*diag.Report {
	g.computeFollow()

	var errs []*diag.Report
	var walk func(p *Production)
	walk = func(p *Production) {
		if p == nil {
			return
		}
		errs = append(errs, ValidateLL1(p)...)
		for _, alt := range p.Alternatives {
			walk(alt)
		}
	}
	walk(g.Root)
	return errs
}
