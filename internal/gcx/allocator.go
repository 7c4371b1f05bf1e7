// Package gcx is the allocator facade and tri-color mark-and-sweep
// collector. It owns byte accounting for every
// GC-managed object and every raw block the host asks the VM to track,
// and it owns the gcLimit growth heuristic: once totalBytes crosses
// gcLimit, the interpreter (package vm) is expected to call Collect at
// its next safe point, and if more than half the limit is still live
// afterwards, the limit doubles.
package gcx

import "github.com/croc-lang/croc/internal/value"

// Allocator is a thin accounting layer on top of Go's own allocator: it
// never allocates memory itself (the value package's typed constructors
// do, via plain `new`/composite literals), it only tracks byte totals and
// threads every GC-managed object through an intrusive allocation list so
// Collect can walk "everything ever allocated" during sweep.
type Allocator struct {
	totalBytes uint64
	gcLimit    uint64
	head       value.GCObject
	rawBytes   uint64 // host-tracked raw blocks
}

const defaultGCLimit = 1 << 20 // 1 MiB, matches the scale of a typical embedded script's working set

func NewAllocator() *Allocator {
	return &Allocator{gcLimit: defaultGCLimit}
}

// Track registers a freshly-constructed GC object and its estimated size
// with the allocator, threading it onto the allocation list the
// collector sweeps. Every typed New* helper below calls this.
func (a *Allocator) Track(o value.GCObject, size uint64) {
	o.GCHeader().SetAllocNext(a.head)
	a.head = o
	a.totalBytes += size
	logAlloc(o, size)
}

// Head returns the allocation list head, for package gcx's own collector
// to walk during sweep.
func (a *Allocator) Head() value.GCObject { return a.head }
func (a *Allocator) SetHead(o value.GCObject) { a.head = o }

// Resize adjusts accounting when an object's backing storage grows or
// shrinks in place (e.g. Array/Memblock/Table growth).
func (a *Allocator) Resize(oldSize, newSize uint64) {
	if newSize >= oldSize {
		a.totalBytes += newSize - oldSize
	} else {
		a.totalBytes -= oldSize - newSize
	}
}

// Free reduces accounting for size bytes freed during sweep.
func (a *Allocator) Free(size uint64) {
	if size > a.totalBytes {
		a.totalBytes = 0
		return
	}
	a.totalBytes -= size
}

// TrackRaw/FreeRaw account for host-facing raw memory blocks.
func (a *Allocator) TrackRaw(size uint64) { a.rawBytes += size; a.totalBytes += size }
func (a *Allocator) FreeRaw(size uint64) {
	if size > a.rawBytes {
		size = a.rawBytes
	}
	a.rawBytes -= size
	a.Free(size)
}

// ShouldCollect reports whether totalBytes has crossed gcLimit. VM's
// MaybeCollect checks it; the interpreter's dispatch loop does not.
func (a *Allocator) ShouldCollect() bool { return a.totalBytes >= a.gcLimit }

// GrowIfStillFull implements the classic doubling heuristic: if, after a
// collection, more than half the limit is still live, double it so the
// next cycle isn't immediately re-triggered by short-lived churn.
func (a *Allocator) GrowIfStillFull() {
	if a.totalBytes*2 > a.gcLimit {
		a.gcLimit *= 2
	}
}

func (a *Allocator) TotalBytes() uint64 { return a.totalBytes }
func (a *Allocator) GCLimit() uint64    { return a.gcLimit }
func (a *Allocator) SetGCLimit(n uint64) { a.gcLimit = n }

// --- typed helpers ---

func (a *Allocator) NewTable() *value.Table {
	t := value.NewTable()
	a.Track(t, 64)
	return t
}

func (a *Allocator) NewArray(capacity int) *value.Array {
	arr := value.NewArray(capacity)
	a.Track(arr, uint64(32+capacity*16))
	return arr
}

func (a *Allocator) NewMemblock(t value.MemblockType, length int) *value.Memblock {
	m := value.NewMemblock(t, length)
	a.Track(m, uint64(32+length*t.ElemSize()))
	return m
}

func (a *Allocator) NewNamespace(name string, parent *value.Namespace) *value.Namespace {
	n := value.NewNamespace(name, parent)
	a.Track(n, 48)
	return n
}

func (a *Allocator) NewClass(name string, base *value.Class) *value.Class {
	c := value.NewClass(name, base)
	a.Track(c, 96)
	return c
}

func (a *Allocator) NewInstance(class *value.Class, numExtra, rawBytes int) *value.Instance {
	inst := value.NewInstance(class, numExtra, rawBytes)
	a.Track(inst, uint64(48+numExtra*16+rawBytes))
	return inst
}

func (a *Allocator) NewScriptFunction(def *value.FuncDef, env *value.Namespace, upvals []*value.Upvalue) *value.Function {
	f := value.NewScriptFunction(def, env, upvals)
	a.Track(f, uint64(64+len(upvals)*8))
	return f
}

func (a *Allocator) NewNativeFunction(name string, numParams int, fn value.NativeFn, env *value.Namespace, upvals []value.Value) *value.Function {
	f := value.NewNativeFunction(name, numParams, fn, env, upvals)
	a.Track(f, uint64(64+len(upvals)*16))
	return f
}

func (a *Allocator) NewFuncDef() *value.FuncDef {
	fd := &value.FuncDef{}
	a.Track(fd, 128)
	return fd
}

func (a *Allocator) NewOpenUpvalue(slot *value.Value, slotIdx int) *value.Upvalue {
	u := value.NewOpenUpvalue(slot, slotIdx)
	a.Track(u, 24)
	return u
}

func (a *Allocator) NewClosedUpvalue(v value.Value) *value.Upvalue {
	u := value.NewClosedUpvalue(v)
	a.Track(u, 24)
	return u
}

func (a *Allocator) NewWeakRef(target value.Value) *value.WeakRef {
	w := value.NewWeakRef(target)
	a.Track(w, 24)
	return w
}

func (a *Allocator) NewNativeObj(data any) *value.NativeObj {
	n := value.NewNativeObj(data)
	a.Track(n, 16)
	return n
}

// Intern allocates (or finds) a String through t, tracking new
// allocations with this Allocator.
func (a *Allocator) Intern(t *value.InternTable, data []byte) *value.String {
	var allocated bool
	s := t.Intern(data, func(n int) *value.String {
		allocated = true
		return &value.String{}
	})
	if allocated {
		a.Track(s, uint64(24+len(data)))
	}
	return s
}
