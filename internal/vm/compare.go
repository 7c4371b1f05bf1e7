package vm

import (
	"bytes"

	"github.com/croc-lang/croc/internal/value"
)

// equals implements opEquals: raw equality for primitives and strings,
// identity for other reference kinds unless an opEquals metamethod
// overrides it.
func (ip *Interpreter) equals(t *Thread, a, b value.Value) bool {
	if a.Kind() == b.Kind() && (a.Kind() == value.KindInstance) {
		if fn, ok := ip.lookupMetamethod(a, value.MMEquals); ok {
			res, err := t.callSync(fn, []value.Value{a, b}, 1)
			if err == nil && len(res) > 0 {
				return res[0].IsTrue()
			}
		}
	}
	return a.RawEquals(b)
}

// compare implements opCmp: numeric ordering, lexical ordering for
// strings, falling back to the opCmp metamethod otherwise.
func (ip *Interpreter) compare(t *Thread, a, b value.Value) (int, error) {
	if isNumeric(a) && isNumeric(b) {
		x, y := numFloat(a), numFloat(b)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		return bytes.Compare(a.Ref().(*value.String).Bytes(), b.Ref().(*value.String).Bytes()), nil
	}
	res, err := ip.callMetamethod(t, value.MMCmp, a, b)
	if err != nil {
		return 0, err
	}
	return int(res.AsInt()), nil
}

// length implements opLen over String/Table/Array/Memblock, falling back
// to opLength for Instance.
func (ip *Interpreter) length(t *Thread, a value.Value) (value.Value, error) {
	switch a.Kind() {
	case value.KindString:
		return value.Int(int64(a.Ref().(*value.String).Len())), nil
	case value.KindTable:
		return value.Int(int64(a.Ref().(*value.Table).Len())), nil
	case value.KindArray:
		return value.Int(int64(a.Ref().(*value.Array).Len())), nil
	case value.KindMemblock:
		return value.Int(int64(a.Ref().(*value.Memblock).Len())), nil
	}
	return ip.callMetamethod(t, value.MMLength, a, value.Null)
}

// concat implements opCat over a run of n registers starting at base:
// strings concatenate bytewise, arrays elementwise, and any other
// pairing falls back to opCat pairwise left-to-right.
func (ip *Interpreter) concat(t *Thread, ar *ActivationRecord, base, n int) (value.Value, error) {
	if n == 0 {
		return value.Null, nil
	}
	acc := t.regs[ar.Base+base]
	for i := 1; i < n; i++ {
		rhs := t.regs[ar.Base+base+i]
		var err error
		acc, err = ip.concatPair(t, acc, rhs)
		if err != nil {
			return value.Null, err
		}
	}
	return acc, nil
}

func (ip *Interpreter) concatPair(t *Thread, a, b value.Value) (value.Value, error) {
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		as, bs := a.Ref().(*value.String), b.Ref().(*value.String)
		buf := append(append([]byte{}, as.Bytes()...), bs.Bytes()...)
		return value.Of(t.vm.Alloc.Intern(t.vm.Intern, buf)), nil
	}
	if a.Kind() == value.KindArray && b.Kind() == value.KindArray {
		return value.NewArrayValue(value.Concat(a.Ref().(*value.Array), b.Ref().(*value.Array))), nil
	}
	return ip.callMetamethod(t, value.MMCat, a, b)
}
