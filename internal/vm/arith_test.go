package vm

import (
	"testing"

	"github.com/croc-lang/croc/internal/value"
)

func TestArithIntFastPath(t *testing.T) {
	_, ip := newTestVM()
	th := ip.VM.MainThread()
	res, err := ip.arith(th, value.OpAdd, value.Int(2), value.Int(3))
	if err != nil || res.AsInt() != 5 {
		t.Fatalf("2+3 = %v, %v; want 5, nil", res, err)
	}
}

func TestArithIntDivByZero(t *testing.T) {
	_, ip := newTestVM()
	th := ip.VM.MainThread()
	if _, err := ip.arith(th, value.OpDiv, value.Int(1), value.Int(0)); err == nil {
		t.Fatalf("integer division by zero should error")
	}
}

func TestArithMixedIntFloatPromotesToFloat(t *testing.T) {
	_, ip := newTestVM()
	th := ip.VM.MainThread()
	res, err := ip.arith(th, value.OpAdd, value.Int(1), value.Float(0.5))
	if err != nil || res.Kind() != value.KindFloat || res.AsFloat() != 1.5 {
		t.Fatalf("1+0.5 = %v, %v; want Float(1.5)", res, err)
	}
}

func TestArithNoMetamethodErrors(t *testing.T) {
	_, ip := newTestVM()
	th := ip.VM.MainThread()
	tbl := value.NewTableValue(value.NewTable())
	if _, err := ip.arith(th, value.OpAdd, tbl, tbl); err == nil {
		t.Fatalf("adding two tables with no metamethod should error")
	}
}

func TestArithAddMetamethodDispatch(t *testing.T) {
	v, ip := newTestVM()
	mt := &value.Metatable{}
	called := false
	addFn := v.Alloc.NewNativeFunction("add", 2, func(ctx value.NativeContext) ([]value.Value, error) {
		called = true
		return []value.Value{value.Int(99)}, nil
	}, nil, nil)
	mt.Set(value.MMAdd, value.NewFunctionValue(addFn))
	v.SetMetatable(value.KindTable, mt)

	th := v.MainThread()
	tbl := value.NewTableValue(value.NewTable())
	res, err := ip.arith(th, value.OpAdd, tbl, value.Int(1))
	if err != nil {
		t.Fatalf("arith with metamethod: %v", err)
	}
	if !called {
		t.Fatalf("metamethod was not invoked")
	}
	if res.AsInt() != 99 {
		t.Fatalf("result = %v, want 99", res)
	}
}

func TestNegate(t *testing.T) {
	_, ip := newTestVM()
	th := ip.VM.MainThread()
	res, err := ip.negate(th, value.Int(5))
	if err != nil || res.AsInt() != -5 {
		t.Fatalf("negate(5) = %v, %v; want -5, nil", res, err)
	}
}

func TestBitwiseIntOps(t *testing.T) {
	_, ip := newTestVM()
	th := ip.VM.MainThread()
	res, err := ip.bitwise(th, value.OpShl, value.Int(1), value.Int(4))
	if err != nil || res.AsInt() != 16 {
		t.Fatalf("1<<4 = %v, %v; want 16, nil", res, err)
	}
}
