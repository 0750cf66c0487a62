// Package operator implements the overloaded-operator registry and
// coercion-cost resolution spec.md §4.5 describes: matching an
// OperatorExprPayload against every registered Operator for its kind and
// picking the cheapest-coercion, highest-priority match.
package operator

import (
	"fmt"
	"sort"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/diag"
)

// Cost ranks how much coercion an operand needed to match an Operator's
// declared parameter type. Lower is better; CostExact always wins ties.
type Cost int

const (
	CostExact Cost = iota
	CostValueCoercion
	CostTypeCoercion
	CostImpossible = Cost(1 << 30)
)

// Priority lets a plugin's operator outrank another equally-cheap match
// (spec.md §4.4's "operators may declare a priority to break ties").
type Priority int

const (
	PriorityLow Priority = iota - 1
	PriorityNormal
	PriorityHigh
)

// MatchFunc reports whether operands structurally fit this operator and,
// if so, the coercion cost of matching them (spec.md §4.5). A nil return
// type list from Result means the operator does not apply at all; callers
// should instead return ok=false.
type MatchFunc func(operands []*ast.Node) (cost Cost, result *ast.Node, ok bool)

// Operator is one overload registered for a given ast.OperatorKind.
type Operator struct {
	ID       string // unique within the registry, e.g. "integer::Plus"
	Kind     ast.OperatorKind
	Priority Priority
	Match    MatchFunc
}

// Registry collects every known Operator, grouped by Kind, as assembled
// from plugin Operator hooks during driver ast_init (spec.md §4.4).
type Registry struct {
	byKind map[ast.OperatorKind][]*Operator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKind: map[ast.OperatorKind][]*Operator{}}
}

// Register adds op to the registry. Re-registering the same ID is a no-op,
// so plugins may be initialized more than once within a single process
// (spec.md §4.4's idempotent-registration note).
func (r *Registry) Register(op *Operator) {
	for _, existing := range r.byKind[op.Kind] {
		if existing.ID == op.ID {
			return
		}
	}
	r.byKind[op.Kind] = append(r.byKind[op.Kind], op)
}

// candidate pairs a matched Operator with its resolution cost, for sorting.
type candidate struct {
	op     *Operator
	cost   Cost
	result *ast.Node
}

// Resolve finds the best Operator overload for kind given operands. It
// returns RES001 if nothing matches and RES002 if the two best-ranked
// matches tie on both cost and priority (spec.md §4.5).
func (r *Registry) Resolve(kind ast.OperatorKind, operands []*ast.Node) (*Operator, *ast.Node, *diag.Report) {
	var cands []candidate
	for _, op := range r.byKind[kind] {
		cost, result, ok := op.Match(operands)
		if !ok || cost >= CostImpossible {
			continue
		}
		cands = append(cands, candidate{op: op, cost: cost, result: result})
	}
	if len(cands) == 0 {
		return nil, nil, diag.New(diag.RES001, fmt.Sprintf("no operator overload matches %s", kind)).
			WithData("operator", kind.String())
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].cost != cands[j].cost {
			return cands[i].cost < cands[j].cost
		}
		return cands[i].op.Priority > cands[j].op.Priority
	})
	best := cands[0]
	if len(cands) > 1 {
		second := cands[1]
		if second.cost == best.cost && second.op.Priority == best.op.Priority {
			return nil, nil, diag.New(diag.RES002, fmt.Sprintf("ambiguous overload for %s", kind)).
				WithData("operator", kind.String()).
				WithData("candidate_a", best.op.ID).
				WithData("candidate_b", second.op.ID)
		}
	}
	return best.op, best.result, nil
}

// Kinds returns every operator kind with at least one registered overload,
// for diagnostics and tests.
func (r *Registry) Kinds() []ast.OperatorKind {
	out := make([]ast.OperatorKind, 0, len(r.byKind))
	for k := range r.byKind {
		out = append(out, k)
	}
	return out
}

// Count returns the number of overloads registered for kind.
func (r *Registry) Count(kind ast.OperatorKind) int {
	return len(r.byKind[kind])
}
