package gcx

import "github.com/croc-lang/croc/internal/value"

// CollectStats summarizes one Collect cycle, returned for diagnostics and
// the debug log.
type CollectStats struct {
	Freed           int
	Finalized       int
	InternRemoved   int
	TotalBytesAfter uint64
	GCLimitAfter    uint64
}

// Collector runs the stop-the-world tri-color mark-and-sweep cycle over
// the object graph owned by an Allocator and an InternTable. It has no
// notion of threads, activation records, or metatables itself — the
// caller (package vm's VM) supplies the current root set every cycle,
// since only the VM knows what's currently live.
type Collector struct {
	Alloc  *Allocator
	Intern *value.InternTable
}

func NewCollector(a *Allocator, intern *value.InternTable) *Collector {
	return &Collector{Alloc: a, Intern: intern}
}

// Collect runs one full mark/sweep/finalize cycle.
//
// roots is every Value directly reachable from a VM root (registry
// namespace, per-type metatables, every live thread's stack and AR
// chain, the ref table, and the open-upvalue lists) as of the moment
// Collect is called — the caller must gather these with the mutator
// otherwise quiescent; collection always runs synchronously, never
// concurrently with the mutator.
//
// invokeFinalizer is called once per finalizable white object, with the
// finalizer Function Value and the object's own Value as argument; the
// caller (package vm) is the only thing that can actually perform a
// call, since that requires the interpreter.
func (c *Collector) Collect(roots []value.Value, invokeFinalizer func(fn, obj value.Value)) CollectStats {
	c.mark(roots)
	internRemoved := c.Intern.SweepWhite()
	freed, finalized := c.sweep(invokeFinalizer)
	c.Alloc.GrowIfStillFull()
	stats := CollectStats{
		Freed:           freed,
		Finalized:       finalized,
		InternRemoved:   internRemoved,
		TotalBytesAfter: c.Alloc.TotalBytes(),
		GCLimitAfter:    c.Alloc.GCLimit(),
	}
	logCycle(stats)
	return stats
}

// mark grays every root, then iterates the gray worklist to exhaustion,
// blackening each object and graying whatever it directly references.
// WeakRef targets are deliberately not followed — WeakRef.Traverse is a
// no-op by construction.
func (c *Collector) mark(roots []value.Value) {
	var gray []value.GCObject
	grayValue := func(v value.Value) {
		o := v.Ref()
		if o == nil {
			return
		}
		h := o.GCHeader()
		if h.Color() == value.White {
			h.SetColor(value.Gray)
			gray = append(gray, o)
		}
	}
	// The intern table is deliberately NOT grayed here: it is a weak
	// root. A string reachable from roots gets marked black through the
	// normal traversal; one with no other reference stays white and
	// SweepWhite removes it below, rather than the table itself keeping
	// every interned literal alive forever.
	for _, r := range roots {
		grayValue(r)
	}
	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		o.GCHeader().SetColor(value.Black)
		o.Traverse(grayValue)
	}
}

// sweep walks the allocation list once. White objects with no finalizer
// are unlinked and freed. White objects with an unfired finalizer are
// left linked (they "survive" this cycle) and have their
// finalizer invoked once the walk is complete; if that invocation does
// not resurrect them, the
// *next* cycle's mark will find them white again and, since Finalized is
// now true, sweep will free them without re-invoking the finalizer.
// Everything reached (black) has its color reset to White for the next
// cycle and survives untouched.
func (c *Collector) sweep(invokeFinalizer func(fn, obj value.Value)) (freed, finalized int) {
	var prev value.GCObject
	var dueFns, dueObjs []value.Value
	cur := c.Alloc.Head()
	for cur != nil {
		h := cur.GCHeader()
		next := h.AllocNext()
		if h.Color() != value.White {
			h.SetColor(value.White)
			prev = cur
			cur = next
			continue
		}

		value.ClearWeakRefsOn(cur)

		if h.Finalizer() != nil && !h.Finalized() {
			h.SetFinalized(true)
			dueFns = append(dueFns, *h.Finalizer())
			dueObjs = append(dueObjs, value.Of(cur))
			finalized++
			prev = cur
			cur = next
			continue
		}

		// No finalizer (or already fired and not resurrected): unlink
		// and free.
		if prev == nil {
			c.Alloc.SetHead(next)
		} else {
			prev.GCHeader().SetAllocNext(next)
		}
		c.Alloc.Free(approxSize(cur))
		freed++
		cur = next
	}
	if invokeFinalizer != nil {
		for i := range dueFns {
			invokeFinalizer(dueFns[i], dueObjs[i])
		}
	}
	return freed, finalized
}

// approxSize gives the sweep phase something to subtract from totalBytes
// when an object is actually freed; it does not need to be exact (the
// allocator's totalBytes is a GC-trigger heuristic, not a precise memory
// accountant — the Go runtime's own allocator is the real one).
func approxSize(o value.GCObject) uint64 {
	switch o.(type) {
	case *value.String:
		return 24
	case *value.Table:
		return 64
	case *value.Array:
		return 32
	case *value.Memblock:
		return 32
	case *value.Namespace:
		return 48
	case *value.Class:
		return 96
	case *value.Instance:
		return 48
	case *value.Function:
		return 64
	case *value.FuncDef:
		return 128
	case *value.Upvalue:
		return 24
	case *value.WeakRef:
		return 24
	case *value.NativeObj:
		return 16
	default:
		return 32
	}
}
