// Package astctx implements the ASTContext arena: the single owner of every
// ast.Node's identity and lifetime (spec.md §4.1). Nodes themselves only
// know how to be retained/released and how to check local invariants;
// Context is what assigns identity, tracks reachability, and enforces that
// a node is only ever attached to the tree once (deep-copying on reparent).
package astctx

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/diag"
)

// Context is the arena. One Context exists per compilation run (spec.md
// §4.1: "ASTContext owns every Node ever created during a run").
type Context struct {
	mu       sync.Mutex
	nextID   ast.ID
	byID     map[ast.ID]*ast.Node
	files    []*ast.Node // TagFile roots, in registration order
	declIdx  []*ast.Node // Declaration nodes indexed by ast.DeclIndex
}

// New creates an empty Context.
func New() *Context {
	return &Context{
		byID:    map[ast.ID]*ast.Node{},
		declIdx: []*ast.Node{nil}, // index 0 is reserved/invalid
	}
}

// Make assigns n a fresh identity, registers it in the arena, and returns
// it for chaining. n must be detached (no parent) and must not already
// have an identity. This is the only way a Node acquires an ast.ID.
func (c *Context) Make(n *ast.Node) *ast.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n.IdentitySet() {
		panic("astctx: node already has an identity")
	}
	c.nextID++
	n.SetIdentity(c.nextID)
	c.byID[n.Identity()] = n
	return n
}

// Lookup returns the node with the given identity, if it is still live in
// the arena.
func (c *Context) Lookup(id ast.ID) (*ast.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.byID[id]
	return n, ok
}

// RegisterFile records a parsed TagFile root under the arena.
func (c *Context) RegisterFile(f *ast.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, f)
}

// Files returns every registered TagFile root, in registration order.
func (c *Context) Files() []*ast.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ast.Node, len(c.files))
	copy(out, c.files)
	return out
}

// RegisterDecl assigns a Declaration node its arena-wide ast.DeclIndex, used
// for sibling references (ResolvedDeclExprPayload.DeclIndex, spec.md §9).
// decl's payload must embed ast.DeclCommon and not yet have an index.
func (c *Context) RegisterDecl(decl *ast.Node) ast.DeclIndex {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := ast.DeclIndex(len(c.declIdx))
	c.declIdx = append(c.declIdx, decl)
	if setter, ok := decl.Payload().(interface{ SetIndex(ast.DeclIndex) }); ok {
		setter.SetIndex(idx)
	}
	return idx
}

// ResolveDeclIndex returns the Declaration node registered under idx.
func (c *Context) ResolveDeclIndex(idx ast.DeclIndex) (*ast.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(idx) <= 0 || int(idx) >= len(c.declIdx) {
		return nil, false
	}
	n := c.declIdx[idx]
	return n, n != nil
}

// Reparent attaches child under parent at the given slot, taking a deep
// copy first if child is already attached elsewhere (spec.md §3 invariant
// I2: "a Node with a non-nil parent must be deep-copied, never re-attached,
// to become a child elsewhere"). It returns the node actually attached
// (either child itself, freshly made, or its copy).
func (c *Context) Reparent(parent *ast.Node, child *ast.Node) *ast.Node {
	if child == nil {
		parent.AddChild(nil)
		return nil
	}
	attach := child
	if child.Parent() != nil {
		attach = c.Make(DeepCopy(child))
	} else if !child.IdentitySet() {
		attach = c.Make(child)
	}
	parent.AddChild(attach)
	return attach
}

// DeepCopy clones n and its entire subtree, producing detached, unidentified
// nodes ready to be assigned fresh identities via Context.Make (typically
// through Context.Reparent). Payloads are copied by value; payload fields
// that are themselves *ast.Node are left pointing at the ORIGINAL node,
// since re-resolving cross-references after a structural copy is a job for
// the pass that triggered the copy, not for DeepCopy itself.
func DeepCopy(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	p := n.Payload()
	if v := reflect.ValueOf(p); v.Kind() == reflect.Pointer && !v.IsNil() {
		c := reflect.New(v.Elem().Type())
		c.Elem().Set(v.Elem())
		p = c.Interface().(ast.Payload)
	}
	cp := ast.New(n.Tag(), p)
	cp.SetMeta(n.Meta())
	cp.SetInheritScope(n.InheritsScope())
	for _, c := range n.Children() {
		if c == nil {
			cp.AddChild(nil)
			continue
		}
		cp.AddChild(DeepCopy(c))
	}
	return cp
}

// CheckReachability walks every registered file and asserts that no node
// reachable from it has been released, per spec.md §8's AST-arena
// consistency property. It returns a diag.Report describing the first
// violation found, or nil if the arena is consistent.
func (c *Context) CheckReachability() *diag.Report {
	for _, f := range c.Files() {
		if r := checkNode(f); r != nil {
			return r
		}
	}
	return nil
}

func checkNode(n *ast.Node) *diag.Report {
	if n == nil {
		return nil
	}
	if n.Released() {
		return diag.New(diag.AST002,
			fmt.Sprintf("reachable node %d (%s) was released", n.Identity(), n.Tag())).
			WithPriority(diag.PriorityHigh)
	}
	for _, c := range n.Children() {
		if r := checkNode(c); r != nil {
			return r
		}
	}
	return nil
}

// Size returns the number of nodes ever registered in this arena (including
// released ones), for diagnostics and tests.
func (c *Context) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}
