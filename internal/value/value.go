// Package value defines the tagged-union Value representation and every
// heap-resident object kind of the runtime: the dynamic type system that
// the interpreter, the garbage collector, the embedding API, and the
// serializer all operate on.
//
// A Value is small and copyable by design: primitive kinds (Null, Bool,
// Int, Float, Char) carry their payload inline, and reference kinds carry
// a GCObject pointer that is shared and mutable. Value itself never
// allocates; only the constructors in this package (NewTable, NewArray,
// the String interner, ...) allocate GCObjects. They do no accounting
// themselves: package gcx's Allocator wraps them and tracks each object
// so the collector's byte accounting stays correct.
package value

import (
	"fmt"
	"math"
)

// Kind identifies which variant of Value is populated.
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
	// kindUpvalue is never observed by script code; it exists only so
	// the collector can traverse
	// and mark Upvalue objects captured by a Function through the same
	// generic Value-carrying Traverse mechanism every other kind uses.
	kindUpvalue

	// KindCount is one past the last defined Kind, for callers (e.g. the
	// VM's per-Kind metatable array) that need to size a dense array
	// indexed by Kind.
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindArray:
		return "array"
	case KindMemblock:
		return "memblock"
	case KindFunction:
		return "function"
	case KindFuncDef:
		return "funcdef"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindNamespace:
		return "namespace"
	case KindThread:
		return "thread"
	case KindNativeObj:
		return "nativeobj"
	case KindWeakRef:
		return "weakref"
	case kindUpvalue:
		return "upvalue"
	}
	return "<bad kind>"
}

// Value is the dynamically-typed value every register, table slot, array
// element, and upvalue holds. Reference kinds (everything from KindString
// on) store their payload in ref; primitive kinds pack theirs into n.
type Value struct {
	kind Kind
	n    uint64 // Bool/Int/Float(bits)/Char payload for primitive kinds
	ref  GCObject
}

// Null is the singleton absence value; the zero Value is Null.
var Null = Value{kind: KindNull}

func Bool(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: KindBool, n: n}
}

func Int(i int64) Value { return Value{kind: KindInt, n: uint64(i)} }

func Float(f float64) Value { return Value{kind: KindFloat, n: floatBits(f)} }

// Char holds a Unicode scalar value, distinct from Int so the two never
// compare equal under `is`.
func Char(r rune) Value { return Value{kind: KindChar, n: uint64(uint32(r))} }

func fromObject(k Kind, o GCObject) Value { return Value{kind: k, ref: o} }

// NewGCValue wraps an arbitrary GCObject as a Value of the given kind.
// It exists for kinds whose concrete Go type lives outside this package
// — currently only KindThread (package vm's Thread) — so that package
// can construct Values without this package needing to import it back.
func NewGCValue(k Kind, o GCObject) Value { return fromObject(k, o) }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsBool() bool { return v.kind == KindBool }

func (v Value) AsBool() bool    { return v.n != 0 }
func (v Value) AsInt() int64    { return int64(v.n) }
func (v Value) AsFloat() float64 {
	return floatFromBits(v.n)
}
func (v Value) AsChar() rune { return rune(uint32(v.n)) }

// Ref returns the underlying heap object for a reference-kind Value, or
// nil for a primitive kind.
func (v Value) Ref() GCObject { return v.ref }

// IsTrue implements MiniD-style truthiness: Null, false, 0, 0.0, and '\0'
// are false; everything else (including empty strings/tables/arrays) is
// true.
func (v Value) IsTrue() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.n != 0
	case KindInt:
		return v.AsInt() != 0
	case KindFloat:
		return v.AsFloat() != 0
	case KindChar:
		return v.AsChar() != 0
	default:
		return true
	}
}

// RawEquals implements `is`: raw identity. Primitive kinds compare by
// value (there is only one way to represent a given Int/Float/Char/Bool),
// reference kinds compare by pointer — which, thanks to interning, makes
// String identity equal String value-equality.
func (v Value) RawEquals(o Value) bool {
	if v.kind != o.kind {
		// Int/Float identity never crosses kinds for `is`; that's what
		// opCmp and opEquals are for.
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindInt, KindChar:
		return v.n == o.n
	case KindFloat:
		return v.AsFloat() == o.AsFloat()
	default:
		return v.ref == o.ref
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KindFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case KindChar:
		return string(v.AsChar())
	default:
		if v.ref == nil {
			return v.kind.String()
		}
		return fmt.Sprintf("%s: %p", v.kind, v.ref)
	}
}

func floatBits(f float64) uint64     { return math.Float64bits(f) }
func floatFromBits(n uint64) float64 { return math.Float64frombits(n) }
