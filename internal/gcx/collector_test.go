package gcx

import (
	"testing"

	"github.com/croc-lang/croc/internal/value"
)

func TestCollectFreesUnreachableTable(t *testing.T) {
	a := NewAllocator()
	intern := value.NewInternTable([]byte("seed"))
	c := NewCollector(a, intern)

	root := a.NewTable()
	garbage := a.NewTable()
	_ = garbage

	rootVal := value.NewTableValue(root)
	stats := c.Collect([]value.Value{rootVal}, nil)

	if stats.Freed != 1 {
		t.Fatalf("Freed = %d, want 1 (the unreachable table)", stats.Freed)
	}
	if a.Head() != root {
		t.Fatalf("the reachable table should remain on the allocation list")
	}
}

func TestCollectKeepsTransitivelyReachable(t *testing.T) {
	a := NewAllocator()
	intern := value.NewInternTable([]byte("seed"))
	c := NewCollector(a, intern)

	child := a.NewTable()
	parent := a.NewTable()
	if err := parent.Set(value.Int(1), value.NewTableValue(child)); err != nil {
		t.Fatal(err)
	}

	stats := c.Collect([]value.Value{value.NewTableValue(parent)}, nil)
	if stats.Freed != 0 {
		t.Fatalf("Freed = %d, want 0 (child reachable through parent)", stats.Freed)
	}
}

func TestCollectInvokesFinalizerOnce(t *testing.T) {
	a := NewAllocator()
	intern := value.NewInternTable([]byte("seed"))
	c := NewCollector(a, intern)

	obj := a.NewNativeObj("resource")
	finFn := value.NewFunctionValue(value.NewNativeFunction("fin", 1, func(value.NativeContext) ([]value.Value, error) { return nil, nil }, nil, nil))
	obj.GCHeader().SetFinalizer(&finFn)

	var invoked int
	var gotObjVal value.Value
	invoke := func(fn, objVal value.Value) {
		invoked++
		gotObjVal = objVal
	}

	// Cycle 1: unreachable, has a finalizer -> survives, finalizer fires.
	stats1 := c.Collect(nil, invoke)
	if stats1.Finalized != 1 {
		t.Fatalf("cycle 1 Finalized = %d, want 1", stats1.Finalized)
	}
	if invoked != 1 {
		t.Fatalf("finalizer invoked %d times, want 1", invoked)
	}
	if gotObjVal.Ref() != obj {
		t.Fatalf("finalizer was not passed the finalized object")
	}
	if a.Head() != obj {
		t.Fatalf("a just-finalized object should survive its own cycle")
	}

	// Cycle 2: still unreachable, already finalized -> freed without
	// re-invoking the finalizer.
	stats2 := c.Collect(nil, invoke)
	if stats2.Freed != 1 {
		t.Fatalf("cycle 2 Freed = %d, want 1", stats2.Freed)
	}
	if invoked != 1 {
		t.Fatalf("finalizer should not be invoked a second time, invoked = %d", invoked)
	}
}

func TestCollectNullsWeakRefToCollectedTarget(t *testing.T) {
	a := NewAllocator()
	intern := value.NewInternTable([]byte("seed"))
	c := NewCollector(a, intern)

	target := a.NewTable()
	w := a.NewWeakRef(value.NewTableValue(target))

	// Root only the WeakRef itself, not its target.
	stats := c.Collect([]value.Value{value.NewWeakRefValue(w)}, nil)
	if stats.Freed != 1 {
		t.Fatalf("Freed = %d, want 1 (the unrooted target)", stats.Freed)
	}
	if !w.Deref().IsNull() {
		t.Fatalf("WeakRef should be nulled once its target is collected")
	}
}

func TestCollectSweepsWhiteInternedStrings(t *testing.T) {
	a := NewAllocator()
	intern := value.NewInternTable([]byte("seed"))
	c := NewCollector(a, intern)

	a.Intern(intern, []byte("orphaned"))
	if intern.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 before collection", intern.Count())
	}

	stats := c.Collect(nil, nil)
	if stats.InternRemoved != 1 {
		t.Fatalf("InternRemoved = %d, want 1", stats.InternRemoved)
	}
	if intern.Count() != 0 {
		t.Fatalf("Count() after collection = %d, want 0", intern.Count())
	}
}

func TestCollectKeepsInternedStringReachableFromRoot(t *testing.T) {
	a := NewAllocator()
	intern := value.NewInternTable([]byte("seed"))
	c := NewCollector(a, intern)

	s := a.Intern(intern, []byte("kept"))
	root := a.NewTable()
	if err := root.Set(value.Int(1), value.Of(s)); err != nil {
		t.Fatal(err)
	}

	stats := c.Collect([]value.Value{value.NewTableValue(root)}, nil)
	if stats.InternRemoved != 0 {
		t.Fatalf("InternRemoved = %d, want 0 (string reachable from root)", stats.InternRemoved)
	}
	if intern.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", intern.Count())
	}
}
