package value

import "testing"

func TestNamespaceLocalGetVsLookup(t *testing.T) {
	parent := NewNamespace("parent", nil)
	parent.Set("x", Int(1))
	child := NewNamespace("child", parent)

	if _, ok := child.LocalGet("x"); ok {
		t.Fatalf("LocalGet should not see parent bindings")
	}
	if v, ok := child.Lookup("x"); !ok || v.AsInt() != 1 {
		t.Fatalf("Lookup should walk to parent: got %v, %v", v, ok)
	}
}

func TestNamespaceSetOverwritesLocal(t *testing.T) {
	n := NewNamespace("n", nil)
	n.Set("x", Int(1))
	n.Set("x", Int(2))
	v, ok := n.LocalGet("x")
	if !ok || v.AsInt() != 2 {
		t.Fatalf("Set should overwrite: got %v, %v", v, ok)
	}
}

func TestNamespaceInsertionOrder(t *testing.T) {
	n := NewNamespace("n", nil)
	n.Set("b", Int(2))
	n.Set("a", Int(1))
	var keys []string
	n.ForEach(func(k string, v Value) bool {
		keys = append(keys, k)
		return true
	})
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("ForEach order = %v, want [b a]", keys)
	}
}

func TestNamespaceTraverseIncludesParent(t *testing.T) {
	parent := NewNamespace("parent", nil)
	child := NewNamespace("child", parent)
	child.Set("x", Int(1))
	var got []Value
	child.Traverse(func(v Value) { got = append(got, v) })
	if len(got) != 2 {
		t.Fatalf("Traverse visited %d values, want 2 (own value + parent)", len(got))
	}
	if got[1].Ref() != parent {
		t.Fatalf("Traverse's second value should wrap the parent namespace")
	}
}

func TestNamespaceNewGlobalRequiresAbsence(t *testing.T) {
	globals := NewNamespace("globals", nil)
	if _, ok := globals.LocalGet("g"); ok {
		t.Fatalf("fresh namespace should not already define g")
	}
	globals.Set("g", Int(1))
	if _, ok := globals.LocalGet("g"); !ok {
		t.Fatalf("g should now be defined")
	}
}
