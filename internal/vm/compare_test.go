package vm

import (
	"testing"

	"github.com/croc-lang/croc/internal/value"
)

func TestEqualsRawForPrimitives(t *testing.T) {
	_, ip := newTestVM()
	th := ip.VM.MainThread()
	if !ip.equals(th, value.Int(1), value.Int(1)) {
		t.Fatalf("Int(1) == Int(1) should be true")
	}
	if ip.equals(th, value.Int(1), value.Int(2)) {
		t.Fatalf("Int(1) == Int(2) should be false")
	}
}

func TestEqualsInstanceMetamethod(t *testing.T) {
	v, ip := newTestVM()
	cls := v.Alloc.NewClass("C", nil)
	eqFn := v.Alloc.NewNativeFunction("opEquals", 2, func(ctx value.NativeContext) ([]value.Value, error) {
		return []value.Value{value.Bool(true)}, nil
	}, nil, nil)
	cls.Fields.Set("opEquals", value.NewFunctionValue(eqFn))

	a := value.NewInstanceValue(v.Alloc.NewInstance(cls, 0, 0))
	b := value.NewInstanceValue(v.Alloc.NewInstance(cls, 0, 0))
	th := v.MainThread()
	if !ip.equals(th, a, b) {
		t.Fatalf("instances with an opEquals metamethod returning true should compare equal")
	}
}

func TestCompareNumeric(t *testing.T) {
	_, ip := newTestVM()
	th := ip.VM.MainThread()
	c, err := ip.compare(th, value.Int(1), value.Int(2))
	if err != nil || c != -1 {
		t.Fatalf("compare(1,2) = %v, %v; want -1, nil", c, err)
	}
}

func TestCompareStringsLexical(t *testing.T) {
	v, ip := newTestVM()
	a := value.Of(v.Alloc.Intern(v.Intern, []byte("abc")))
	b := value.Of(v.Alloc.Intern(v.Intern, []byte("abd")))
	th := v.MainThread()
	c, err := ip.compare(th, a, b)
	if err != nil || c >= 0 {
		t.Fatalf("compare(abc,abd) = %v, %v; want negative, nil", c, err)
	}
}

func TestLengthOverKinds(t *testing.T) {
	v, ip := newTestVM()
	th := v.MainThread()

	s := value.Of(v.Alloc.Intern(v.Intern, []byte("hello")))
	if l, err := ip.length(th, s); err != nil || l.AsInt() != 5 {
		t.Fatalf("len(hello) = %v, %v; want 5, nil", l, err)
	}

	arr := v.Alloc.NewArray(0)
	arr.Append(value.Int(1))
	arr.Append(value.Int(2))
	if l, err := ip.length(th, value.NewArrayValue(arr)); err != nil || l.AsInt() != 2 {
		t.Fatalf("len(array) = %v, %v; want 2, nil", l, err)
	}
}

func TestConcatStringsIntern(t *testing.T) {
	v, ip := newTestVM()
	th := v.MainThread()
	a := value.Of(v.Alloc.Intern(v.Intern, []byte("foo")))
	b := value.Of(v.Alloc.Intern(v.Intern, []byte("bar")))
	res, err := ip.concatPair(th, a, b)
	if err != nil {
		t.Fatalf("concatPair: %v", err)
	}
	if res.Ref().(*value.String).Go() != "foobar" {
		t.Fatalf("concat result = %q, want %q", res.Ref().(*value.String).Go(), "foobar")
	}
}

func TestConcatArrays(t *testing.T) {
	v, ip := newTestVM()
	th := v.MainThread()
	a := v.Alloc.NewArray(0)
	a.Append(value.Int(1))
	b := v.Alloc.NewArray(0)
	b.Append(value.Int(2))
	res, err := ip.concatPair(th, value.NewArrayValue(a), value.NewArrayValue(b))
	if err != nil {
		t.Fatalf("concatPair arrays: %v", err)
	}
	if res.Ref().(*value.Array).Len() != 2 {
		t.Fatalf("concat result len = %d, want 2", res.Ref().(*value.Array).Len())
	}
}
