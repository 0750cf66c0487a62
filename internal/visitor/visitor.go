// Package visitor implements the pre/post-order, mutating/observing AST
// walk shared by every later pass (scope building, resolution, codegen
// lowering, printing), per spec.md §4.3.
package visitor

import "github.com/hiltigo/hiltigo/internal/ast"

// Observer is called for every visited node. Returning false from Pre skips
// the node's children (and its Post call); Observers never mutate the tree.
type Observer interface {
	Pre(n *ast.Node) bool
	Post(n *ast.Node)
}

// Mutator is like Observer but may return a replacement node from Pre/Post;
// a non-nil replacement is swapped in for n at its parent via ReplaceChild
// before traversal continues into (the replacement's) children. Mutators
// back internal/resolve and the Spicy→HILTI transform (spec.md §4.3/§4.9).
type Mutator interface {
	Pre(n *ast.Node) (replacement *ast.Node, descend bool)
	Post(n *ast.Node) (replacement *ast.Node)
}

// Walk performs a pre-order-then-post-order traversal of n and its subtree
// using an Observer. It does not visit nil child slots.
func Walk(n *ast.Node, obs Observer) {
	if n == nil {
		return
	}
	if !obs.Pre(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, obs)
	}
	obs.Post(n)
}

// WalkFunc adapts a pair of plain functions into an Observer for simple
// call sites that don't need the full interface.
type WalkFunc struct {
	PreFn  func(n *ast.Node) bool
	PostFn func(n *ast.Node)
}

func (w WalkFunc) Pre(n *ast.Node) bool {
	if w.PreFn == nil {
		return true
	}
	return w.PreFn(n)
}

func (w WalkFunc) Post(n *ast.Node) {
	if w.PostFn != nil {
		w.PostFn(n)
	}
}

// Mutate performs a pre-order-then-post-order traversal of n's subtree
// using a Mutator, applying any in-place replacement to n's parent as it
// goes, and returns the node that ends up occupying n's former position
// (n itself, unless Pre or Post replaced it).
//
// Mutate is the primitive internal/driver's transform stage calls per top
// -level declaration; it assumes n is attached under a parent (root module
// nodes are walked by iterating File.Module.Body instead).
func Mutate(n *ast.Node, parent *ast.Node, mut Mutator) *ast.Node {
	if n == nil {
		return nil
	}
	cur := n
	if repl, descend := mut.Pre(cur); repl != nil {
		if parent != nil {
			parent.ReplaceChild(cur, repl)
		}
		cur = repl
		if !descend {
			return cur
		}
	} else if !descend {
		return cur
	}
	for _, c := range cur.Children() {
		Mutate(c, cur, mut)
	}
	if repl := mut.Post(cur); repl != nil {
		if parent != nil {
			parent.ReplaceChild(cur, repl)
		}
		cur = repl
	}
	return cur
}

// MutateChildren applies Mutate to every child of n in place, for callers
// (such as internal/driver) that hold n itself (e.g. a TagDeclModule) and
// want its body rewritten without n itself being a candidate for
// replacement.
func MutateChildren(n *ast.Node, mut Mutator) {
	if n == nil {
		return
	}
	for i, c := range n.Children() {
		if c == nil {
			continue
		}
		result := Mutate(c, nil, mut)
		if result != c {
			n.SetChild(i, result)
		}
	}
}

// Find returns the first node in n's subtree for which pred returns true,
// in pre-order, or nil if none matches.
func Find(n *ast.Node, pred func(*ast.Node) bool) *ast.Node {
	var found *ast.Node
	Walk(n, WalkFunc{
		PreFn: func(cur *ast.Node) bool {
			if found != nil {
				return false
			}
			if pred(cur) {
				found = cur
				return false
			}
			return true
		},
	})
	return found
}

// Collect returns every node in n's subtree for which pred returns true, in
// pre-order.
func Collect(n *ast.Node, pred func(*ast.Node) bool) []*ast.Node {
	var out []*ast.Node
	Walk(n, WalkFunc{
		PreFn: func(cur *ast.Node) bool {
			if pred(cur) {
				out = append(out, cur)
			}
			return true
		},
	})
	return out
}
