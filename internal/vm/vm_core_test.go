package vm

import (
	"testing"

	"github.com/croc-lang/croc/internal/value"
)

func TestNewVMHasRunningMainThread(t *testing.T) {
	v, _ := newTestVM()
	if v.MainThread().State() != StateRunning {
		t.Fatalf("main thread state = %v, want running", v.MainThread().State())
	}
}

func TestMetatableSetGet(t *testing.T) {
	v, _ := newTestVM()
	mt := &value.Metatable{}
	v.SetMetatable(value.KindInt, mt)
	if v.Metatable(value.KindInt) != mt {
		t.Fatalf("Metatable(KindInt) did not round-trip")
	}
	if v.Metatable(value.Kind(200)) != nil {
		t.Fatalf("Metatable with an out-of-range Kind should return nil")
	}
}

func TestCreateRefPushRefRemoveRef(t *testing.T) {
	v, _ := newTestVM()
	id := v.CreateRef(value.Int(42))
	got, ok := v.PushRef(id)
	if !ok || got.AsInt() != 42 {
		t.Fatalf("PushRef(%d) = %v, %v; want 42, true", id, got, ok)
	}
	v.RemoveRef(id)
	if _, ok := v.PushRef(id); ok {
		t.Fatalf("PushRef after RemoveRef should fail")
	}
}

func TestCollectFreesGarbageAcrossTheVM(t *testing.T) {
	v, _ := newTestVM()
	v.Alloc.NewTable() // unreachable from any root
	stats := v.Collect()
	if stats.Freed == 0 {
		t.Fatalf("Collect should have freed the unreachable table")
	}
}

func TestGlobalsSetGetNew(t *testing.T) {
	v, _ := newTestVM()
	v.Globals.Set("answer", value.Int(42))
	got, ok := v.Globals.Lookup("answer")
	if !ok || got.AsInt() != 42 {
		t.Fatalf("Globals.Lookup(answer) = %v, %v; want 42, true", got, ok)
	}
}
