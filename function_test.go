package croc

import (
	"testing"

	"github.com/croc-lang/croc/internal/value"
)

func TestAsFunctionRoundTrip(t *testing.T) {
	_, th := newTestEngine(t)
	if err := th.NewNativeFunction("f", 0, func(ctx value.NativeContext) ([]value.Value, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("NewNativeFunction: %v", err)
	}
	v, err := th.Get(-1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	fn, ok := v.AsFunction()
	if !ok {
		t.Fatalf("AsFunction on a function value should succeed")
	}
	if fn.Value().Kind() != KindFunction {
		t.Fatalf("fn.Value().Kind() = %v, want KindFunction", fn.Value().Kind())
	}
}

func TestAsFunctionFailsOnNonFunction(t *testing.T) {
	_, th := newTestEngine(t)
	mustPushInt(t, th, 1)
	v, _ := th.Get(-1)
	if _, ok := v.AsFunction(); ok {
		t.Fatalf("AsFunction on an Int value should fail")
	}
}

func TestMetatableSetGetByName(t *testing.T) {
	_, th := newTestEngine(t)
	if err := th.NewNativeFunction("opAdd", 2, func(ctx value.NativeContext) ([]value.Value, error) {
		return []value.Value{value.Int(1)}, nil
	}); err != nil {
		t.Fatalf("NewNativeFunction: %v", err)
	}
	v, _ := th.Get(-1)
	fn, ok := v.AsFunction()
	if !ok {
		t.Fatalf("AsFunction: expected a function")
	}

	mt := NewMetatable()
	mt.Set("opAdd", fn)
	got, ok := mt.Get("opAdd")
	if !ok {
		t.Fatalf("Metatable.Get(opAdd) should succeed after Set")
	}
	if got.Value().Kind() != KindFunction {
		t.Fatalf("retrieved metamethod should be a function value")
	}
}

func TestMetatableGetMissingSlot(t *testing.T) {
	mt := NewMetatable()
	if _, ok := mt.Get("opAdd"); ok {
		t.Fatalf("Metatable.Get on an unset slot should report ok=false")
	}
}

func TestMetatableSetUnknownNameIsNoop(t *testing.T) {
	_, th := newTestEngine(t)
	if err := th.NewNativeFunction("f", 0, func(ctx value.NativeContext) ([]value.Value, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("NewNativeFunction: %v", err)
	}
	v, _ := th.Get(-1)
	fn, _ := v.AsFunction()

	mt := NewMetatable()
	mt.Set("notARealMetamethod", fn)
	if _, ok := mt.Get("notARealMetamethod"); ok {
		t.Fatalf("Set with an unrecognized metamethod name should be a no-op")
	}
}

func TestSetMetatableOnVM(t *testing.T) {
	v, _ := newTestEngine(t)
	mt := NewMetatable()
	v.SetMetatable(KindInt, mt)
	if v.Metatable(KindInt) == nil {
		t.Fatalf("Metatable(KindInt) should round-trip after SetMetatable")
	}
}
