package value

import "testing"

func TestClassIsSubclassOf(t *testing.T) {
	base := NewClass("Base", nil)
	mid := NewClass("Mid", base)
	leaf := NewClass("Leaf", mid)

	if !leaf.IsSubclassOf(base) {
		t.Fatalf("Leaf should be a subclass of Base")
	}
	if !leaf.IsSubclassOf(leaf) {
		t.Fatalf("a class should be a subclass of itself")
	}
	if base.IsSubclassOf(leaf) {
		t.Fatalf("Base should not be a subclass of Leaf")
	}
}

func TestClassLookupWalksBaseChain(t *testing.T) {
	base := NewClass("Base", nil)
	base.Fields.Set("greet", Int(1))
	leaf := NewClass("Leaf", base)

	v, ok := leaf.Lookup("greet")
	if !ok || v.AsInt() != 1 {
		t.Fatalf("Lookup should walk to the base class: got %v, %v", v, ok)
	}
	if _, ok := leaf.Lookup("missing"); ok {
		t.Fatalf("Lookup of an undefined field should fail")
	}
}

func TestClassLookupPrefersOverride(t *testing.T) {
	base := NewClass("Base", nil)
	base.Fields.Set("x", Int(1))
	leaf := NewClass("Leaf", base)
	leaf.Fields.Set("x", Int(2))

	v, _ := leaf.Lookup("x")
	if v.AsInt() != 2 {
		t.Fatalf("Lookup should prefer the leaf's own field: got %v, want 2", v)
	}
}

func TestClassTraverseIncludesBaseAndHooks(t *testing.T) {
	base := NewClass("Base", nil)
	leaf := NewClass("Leaf", base)
	alloc := NewNativeFunction("alloc", 0, func(NativeContext) ([]Value, error) { return nil, nil }, nil, nil)
	allocVal := NewFunctionValue(alloc)
	leaf.Allocator = &allocVal

	var got []Value
	leaf.Traverse(func(v Value) { got = append(got, v) })
	if len(got) != 3 {
		t.Fatalf("Traverse visited %d values, want 3 (fields, base, allocator)", len(got))
	}
}
