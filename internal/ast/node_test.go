package ast

import "testing"

func TestNodeIdentityAssignedOnce(t *testing.T) {
	n := New(TagLiteralExpr, &LiteralExprPayload{Kind: LitInt, Value: int64(1)})
	if n.IdentitySet() {
		t.Fatalf("fresh node should not have an identity yet")
	}
	n.SetIdentity(42)
	if got := n.Identity(); got != 42 {
		t.Errorf("Identity() = %v, want 42", got)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on double SetIdentity")
		}
	}()
	n.SetIdentity(43)
}

func TestAddChildSetsParentAndRetains(t *testing.T) {
	parent := New(TagBlockExpr, &BlockExprPayload{})
	child := New(TagLiteralExpr, &LiteralExprPayload{Kind: LitBool, Value: true})

	parent.AddChild(child)

	if child.Parent() != parent {
		t.Errorf("child.Parent() = %v, want %v", child.Parent(), parent)
	}
	if child.RefCount() != 1 {
		t.Errorf("child.RefCount() = %d, want 1", child.RefCount())
	}
	if !parent.CheckTreeInvariant() {
		t.Errorf("CheckTreeInvariant() = false, want true")
	}
}

func TestAddChildPanicsWhenAlreadyParented(t *testing.T) {
	parentA := New(TagBlockExpr, &BlockExprPayload{})
	parentB := New(TagBlockExpr, &BlockExprPayload{})
	child := New(TagLiteralExpr, &LiteralExprPayload{Kind: LitBool, Value: true})
	parentA.AddChild(child)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic attaching an already-parented child")
		}
	}()
	parentB.AddChild(child)
}

func TestRemoveChildReleasesAndCompacts(t *testing.T) {
	parent := New(TagBlockExpr, &BlockExprPayload{})
	a := New(TagLiteralExpr, &LiteralExprPayload{Kind: LitInt, Value: int64(1)})
	b := New(TagLiteralExpr, &LiteralExprPayload{Kind: LitInt, Value: int64(2)})
	parent.AddChild(a)
	parent.AddChild(b)

	parent.RemoveChild(0)

	if len(parent.Children()) != 1 {
		t.Fatalf("len(Children()) = %d, want 1", len(parent.Children()))
	}
	if parent.Children()[0] != b {
		t.Errorf("remaining child = %v, want %v", parent.Children()[0], b)
	}
	if !a.Released() {
		t.Errorf("removed child should be released")
	}
	if a.Parent() != nil {
		t.Errorf("removed child should have nil parent, got %v", a.Parent())
	}
}

func TestReplaceChild(t *testing.T) {
	parent := New(TagBlockExpr, &BlockExprPayload{})
	orig := New(TagLiteralExpr, &LiteralExprPayload{Kind: LitInt, Value: int64(1)})
	repl := New(TagLiteralExpr, &LiteralExprPayload{Kind: LitInt, Value: int64(2)})
	parent.AddChild(orig)

	if !parent.ReplaceChild(orig, repl) {
		t.Fatalf("ReplaceChild returned false")
	}
	if parent.Children()[0] != repl {
		t.Errorf("child not replaced")
	}
	if !orig.Released() {
		t.Errorf("replaced child should be released")
	}
}

func TestCheckTreeInvariantCatchesStaleParent(t *testing.T) {
	parent := New(TagBlockExpr, &BlockExprPayload{})
	child := New(TagLiteralExpr, &LiteralExprPayload{Kind: LitInt, Value: int64(1)})
	parent.AddChild(child)

	// Manually corrupt the invariant the way a bug outside this package
	// might, to confirm CheckTreeInvariant actually detects it.
	other := New(TagBlockExpr, &BlockExprPayload{})
	other.children = append(other.children, child)

	if other.CheckTreeInvariant() {
		t.Errorf("CheckTreeInvariant() = true on a corrupted tree, want false")
	}
}

func TestQualifiedTypeConstnessProducesFreshNode(t *testing.T) {
	inner := NewUnqualifiedType(&UnqualifiedTypePayload{Kind: KindBool})
	q := NewQualifiedType(inner, Mutable, RHS)
	cq := WithConstness(q, Const)

	if cq == q {
		t.Errorf("WithConstness should return a detached fresh node, got the same pointer")
	}
	if q.Payload().(*QualifiedTypePayload).Constness != Mutable {
		t.Errorf("original node was mutated in place")
	}
	if cq.Payload().(*QualifiedTypePayload).Constness != Const {
		t.Errorf("new node does not carry requested constness")
	}
}
