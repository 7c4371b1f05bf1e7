package croc

import "github.com/croc-lang/croc/internal/value"

// Kind identifies which variant of Value a host is looking at. It
// mirrors internal/value.Kind one-to-one; the embedding API exposes
// this copy rather than the internal type so hosts never import an
// internal package.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindChar
	KindString
	KindTable
	KindArray
	KindMemblock
	KindFunction
	KindFuncDef
	KindClass
	KindInstance
	KindNamespace
	KindThread
	KindNativeObj
	KindWeakRef
)

func (k Kind) String() string { return value.Kind(k).String() }

// Value is an opaque handle to a runtime value. It is safe to copy and
// compare with RawEquals, but carries no GC root of its own — values
// read off a Thread's stack are only guaranteed live while they (or
// something reachable from a live root) remain on some Thread's stack,
// or pinned via VM.CreateRef.
type Value struct {
	raw value.Value
}

func (v Value) Kind() Kind   { return Kind(v.raw.Kind()) }
func (v Value) IsNull() bool { return v.raw.IsNull() }
func (v Value) IsTrue() bool { return v.raw.IsTrue() }

func (v Value) RawEquals(o Value) bool { return v.raw.RawEquals(o.raw) }

func (v Value) String() string { return v.raw.String() }

// AsBool/AsInt/AsFloat/AsChar panic via FatalError if v is not of the
// matching Kind (AsFloat also accepts an Int and converts it) — the embedding API's typed getters are checked at the
// isX()/type() call site instead, a check-then-trust accessor
// convention.
func (v Value) AsBool() bool {
	if v.Kind() != KindBool {
		fatalf("AsBool on a %s value", v.Kind())
	}
	return v.raw.AsBool()
}

func (v Value) AsInt() int64 {
	if v.Kind() != KindInt {
		fatalf("AsInt on a %s value", v.Kind())
	}
	return v.raw.AsInt()
}

func (v Value) AsFloat() float64 {
	switch v.Kind() {
	case KindFloat:
		return v.raw.AsFloat()
	case KindInt:
		return float64(v.raw.AsInt())
	}
	fatalf("AsFloat on a %s value", v.Kind())
	return 0
}

func (v Value) AsChar() rune {
	if v.Kind() != KindChar {
		fatalf("AsChar on a %s value", v.Kind())
	}
	return v.raw.AsChar()
}

func (v Value) AsString() string {
	if v.Kind() != KindString {
		fatalf("AsString on a %s value", v.Kind())
	}
	return v.raw.Ref().(*value.String).Go()
}

func nullValue() Value { return Value{raw: value.Null} }
