package value

import "testing"

func TestArrayAppendAndLen(t *testing.T) {
	a := NewArray(0)
	a.Append(Int(1))
	a.Append(Int(2))
	if a.Len() != 2 {
		t.Fatalf("Len = %d, want 2", a.Len())
	}
}

func TestArrayNegativeIndex(t *testing.T) {
	a := NewArray(0)
	a.Append(Int(10))
	a.Append(Int(20))
	a.Append(Int(30))
	v, ok := a.At(-1)
	if !ok || v.AsInt() != 30 {
		t.Fatalf("At(-1) = %v, %v; want 30, true", v, ok)
	}
	if _, ok := a.At(-4); ok {
		t.Fatalf("At(-4) should be out of range")
	}
}

func TestArraySetLengthGrowZeroFills(t *testing.T) {
	a := NewArray(0)
	a.Append(Int(1))
	a.SetLength(3)
	if a.Len() != 3 {
		t.Fatalf("Len = %d, want 3", a.Len())
	}
	v, _ := a.At(2)
	if !v.IsNull() {
		t.Fatalf("grown slot = %v, want Null", v)
	}
}

func TestArraySetLengthShrinkTruncates(t *testing.T) {
	a := NewArray(0)
	a.Append(Int(1))
	a.Append(Int(2))
	a.Append(Int(3))
	a.SetLength(1)
	if a.Len() != 1 {
		t.Fatalf("Len = %d, want 1", a.Len())
	}
}

func TestArraySliceBounds(t *testing.T) {
	a := NewArray(0)
	for i := int64(0); i < 5; i++ {
		a.Append(Int(i))
	}
	s, ok := a.Slice(1, 3)
	if !ok || s.Len() != 2 {
		t.Fatalf("Slice(1,3) = %v, %v; want len 2, true", s, ok)
	}
	v0, _ := s.At(0)
	if v0.AsInt() != 1 {
		t.Fatalf("Slice(1,3)[0] = %v, want 1", v0)
	}
	if _, ok := a.Slice(3, 1); ok {
		t.Fatalf("inverted Slice(3,1) should fail")
	}
	if _, ok := a.Slice(0, 6); ok {
		t.Fatalf("out-of-range Slice(0,6) should fail")
	}
}

func TestArrayConcat(t *testing.T) {
	a := NewArray(0)
	a.Append(Int(1))
	b := NewArray(0)
	b.Append(Int(2))
	b.Append(Int(3))
	c := Concat(a, b)
	if c.Len() != 3 {
		t.Fatalf("Concat len = %d, want 3", c.Len())
	}
	if a.Len() != 1 || b.Len() != 2 {
		t.Fatalf("Concat mutated an input array")
	}
}

func TestArrayTraverse(t *testing.T) {
	a := NewArray(0)
	a.Append(Int(1))
	a.Append(Int(2))
	var got []Value
	a.Traverse(func(v Value) { got = append(got, v) })
	if len(got) != 2 {
		t.Fatalf("Traverse visited %d elems, want 2", len(got))
	}
}
