package value

import "testing"

func TestIsTrueMiniDStyle(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Null, false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), false},
		{Int(1), true},
		{Float(0), false},
		{Float(0.5), true},
		{Char(0), false},
		{Char('a'), true},
	}
	for _, c := range cases {
		if got := c.v.IsTrue(); got != c.want {
			t.Errorf("IsTrue(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestIsTrueReferenceKindsAlwaysTrue(t *testing.T) {
	tbl := NewTableValue(NewTable())
	if !tbl.IsTrue() {
		t.Fatalf("an empty table must be truthy")
	}
}

func TestRawEqualsNeverCrossesIntFloat(t *testing.T) {
	if Int(1).RawEquals(Float(1)) {
		t.Fatalf("Int(1) `is` Float(1) should be false")
	}
}

func TestRawEqualsPrimitivesByValue(t *testing.T) {
	if !Int(5).RawEquals(Int(5)) {
		t.Fatalf("Int(5) `is` Int(5) should be true")
	}
	if !Char('x').RawEquals(Char('x')) {
		t.Fatalf("Char('x') `is` Char('x') should be true")
	}
}

func TestRawEqualsReferenceKindsByIdentity(t *testing.T) {
	a := NewTableValue(NewTable())
	b := NewTableValue(NewTable())
	if a.RawEquals(b) {
		t.Fatalf("two distinct tables should not be `is`-equal")
	}
	if !a.RawEquals(a) {
		t.Fatalf("a table should be `is`-equal to itself")
	}
}

func TestKindStringRoundTrips(t *testing.T) {
	for k := KindNull; k < KindCount; k++ {
		if k.String() == "<bad kind>" {
			t.Errorf("Kind %d has no String() case", k)
		}
	}
}

func TestFloatBitsRoundTrip(t *testing.T) {
	f := Float(3.25)
	if f.AsFloat() != 3.25 {
		t.Fatalf("AsFloat() = %v, want 3.25", f.AsFloat())
	}
}
