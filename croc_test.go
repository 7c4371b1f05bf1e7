package croc

import (
	"testing"

	"github.com/croc-lang/croc/internal/value"
)

func newTestEngine(t *testing.T) (*VM, *Thread) {
	t.Helper()
	v := NewVM(Config{RegisterStackSize: 256})
	return v, v.MainThread()
}

func TestPushGetRoundTrip(t *testing.T) {
	v, th := newTestEngine(t)
	_ = v
	if err := th.PushInt(42); err != nil {
		t.Fatalf("PushInt: %v", err)
	}
	got, err := th.Get(-1)
	if err != nil || got.AsInt() != 42 {
		t.Fatalf("Get(-1) = %v, %v; want 42, nil", got, err)
	}
}

func TestPushStringValidatesUTF8(t *testing.T) {
	_, th := newTestEngine(t)
	if err := th.PushString("hello"); err != nil {
		t.Fatalf("PushString: %v", err)
	}
	if th.GetString(-1) != "hello" {
		t.Fatalf("GetString(-1) = %q, want hello", th.GetString(-1))
	}
	if err := th.PushString(string([]byte{0xff, 0xfe})); err == nil {
		t.Fatalf("PushString with invalid UTF-8 should error")
	}
}

func TestArithAddThroughThread(t *testing.T) {
	_, th := newTestEngine(t)
	mustPushInt(t, th, 2)
	mustPushInt(t, th, 3)
	if err := th.Add(-2, -1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if th.GetInt(-1) != 5 {
		t.Fatalf("2+3 = %d, want 5", th.GetInt(-1))
	}
}

func TestTableIndexRoundTrip(t *testing.T) {
	_, th := newTestEngine(t)
	if err := th.NewTable(); err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	mustPushInt(t, th, 1)
	mustPushInt(t, th, 100)
	if err := th.Idxa(-3, -2, -1); err != nil {
		t.Fatalf("Idxa: %v", err)
	}
	if err := th.Pop(2); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	mustPushInt(t, th, 1)
	if err := th.Idx(-2, -1); err != nil {
		t.Fatalf("Idx: %v", err)
	}
	if th.GetInt(-1) != 100 {
		t.Fatalf("table[1] = %d, want 100", th.GetInt(-1))
	}
}

func TestCallNativeFunction(t *testing.T) {
	_, th := newTestEngine(t)
	err := th.NewNativeFunction("double", 1, func(ctx value.NativeContext) ([]value.Value, error) {
		return []value.Value{value.Int(ctx.Arg(0).AsInt() * 2)}, nil
	})
	if err != nil {
		t.Fatalf("NewNativeFunction: %v", err)
	}
	mustPushInt(t, th, 21)
	if err := th.Call(-2, 1, 1); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if th.GetInt(-1) != 42 {
		t.Fatalf("double(21) = %d, want 42", th.GetInt(-1))
	}
}

func TestCreateRefPinsValue(t *testing.T) {
	v, th := newTestEngine(t)
	mustPushInt(t, th, 7)
	val, err := th.Get(-1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	id := v.CreateRef(val)
	if err := v.PushRefOnto(th, id); err != nil {
		t.Fatalf("PushRefOnto: %v", err)
	}
	if th.GetInt(-1) != 7 {
		t.Fatalf("ref round-trip = %d, want 7", th.GetInt(-1))
	}
	v.RemoveRef(id)
	if err := v.PushRefOnto(th, id); err == nil {
		t.Fatalf("PushRefOnto after RemoveRef should error")
	}
}

func TestGlobalSetGetNew(t *testing.T) {
	v, th := newTestEngine(t)
	mustPushInt(t, th, 99)
	if err := v.NewGlobal(th, -1, "answer"); err != nil {
		t.Fatalf("NewGlobal: %v", err)
	}
	if err := v.PushGlobal(th, "answer"); err != nil {
		t.Fatalf("PushGlobal: %v", err)
	}
	if th.GetInt(-1) != 99 {
		t.Fatalf("global answer = %d, want 99", th.GetInt(-1))
	}
	if !v.FindGlobal("answer") {
		t.Fatalf("FindGlobal(answer) should be true")
	}
	if err := v.NewGlobal(th, -1, "answer"); err == nil {
		t.Fatalf("redefining a global with NewGlobal should error")
	}
}

func TestGCCollectsUnreachableTable(t *testing.T) {
	v, th := newTestEngine(t)
	if err := th.NewTable(); err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if err := th.Pop(1); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	stats := v.GC()
	if stats.Freed == 0 {
		t.Fatalf("GC should have freed the unreachable table")
	}
}

func mustPushInt(t *testing.T, th *Thread, n int64) {
	t.Helper()
	if err := th.PushInt(n); err != nil {
		t.Fatalf("PushInt(%d): %v", n, err)
	}
}
