// Package vm implements the activation-record call stack, the
// register-based bytecode interpreter, the metamethod dispatch protocol,
// exception unwinding, debug hooks, and the coroutine scheduler. It is
// the piece the embedding API (package croc) drives and the object
// model (package value) is executed against.
package vm

import (
	"container/list"

	"github.com/croc-lang/croc/internal/value"
)

// State is a Thread's position in the five-state coroutine lifecycle.
type State int

const (
	StateInitial State = iota
	StateRunning
	StateWaiting
	StateSuspended
	StateDead
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateSuspended:
		return "suspended"
	case StateDead:
		return "dead"
	}
	return "<bad state>"
}

// tryRegion records one active try/catch/finally scope within an
// activation, by bytecode offset.
type tryRegion struct {
	catchPC   int // -1 if this region has no catch (finally-only)
	finallyPC int // -1 if this region has no finally
}

// ActivationRecord is one call frame on a Thread's AR stack.
type ActivationRecord struct {
	Fn              *value.Function
	Base            int // register index; slot 0 is `this`, slot 1 is the first parameter
	Top             int // saved top / current stack extent
	VarargBase      int
	VarargCount     int
	ReturnSlot      int // destination slot in the caller's frame
	ExpectedReturns int // -1 means "keep all"
	TailCallCount   int // incremented on each tailcall through this slot, for tracebacks
	BaseClass       *value.Class
	PC              int
	TryRegions      []tryRegion

	// YieldDestSlot/YieldDestCount record where the most recent OpYield in
	// this frame expects its resume values delivered: an absolute register
	// index and a count, the same way ReturnSlot/ExpectedReturns record a
	// call's destination. Resume writes args there rather than at Base,
	// which is the read-only `this` slot.
	YieldDestSlot  int
	YieldDestCount int
}

// Thread owns its own register stack, AR stack, and open-upvalue list —
// a Thread is a first-class value, and a coroutine *is* a Thread.
type Thread struct {
	value.Header

	vm  *VM
	Name string

	// regs is a fixed-capacity register stack: upvalues alias pointers
	// into it (see value.Upvalue), so it must never reallocate its
	// backing array while any Upvalue could be open against it. Capacity
	// is set once at construction from Config.
	regs       []value.Value
	stackTop   int
	ars        []*ActivationRecord
	openUpvals *list.List // *value.Upvalue, ordered by register slot

	state   State
	bodyFn  *value.Function
	resumer *Thread // who last resumed this thread; nil for a never-resumed or main thread

	hookFn    value.Value
	hookMask  HookMask
	hookDelay int
	hookCount int
	inHook    bool

	pendingHalt bool
	nativeDepth int // >0 while a native Go function's call frame is on the Go stack

	// yieldedVals/resumeVals are the value.Value slices crossing a
	// resume/yield boundary.
	yieldedVals []value.Value
	resumeVals  []value.Value

	// pendingException/traceback implement the VM-level in-flight
	// exception slot a throw installs and a catch clears.
	pendingException value.Value
	isThrowing        bool
	traceback         []TraceEntry
}

func (t *Thread) GCHeader() *value.Header { return &t.Header }
func (t *Thread) TypeName() string        { return "thread" }
func (t *Thread) ValueKind() value.Kind   { return value.KindThread }

func (t *Thread) Traverse(visit func(value.Value)) {
	if t.bodyFn != nil {
		visit(value.NewFunctionValue(t.bodyFn))
	}
	for _, ar := range t.ars {
		if ar.Fn != nil {
			visit(value.NewFunctionValue(ar.Fn))
		}
		if ar.BaseClass != nil {
			visit(value.NewClassValue(ar.BaseClass))
		}
	}
	for i := 0; i < t.stackTop; i++ {
		visit(t.regs[i])
	}
	for e := t.openUpvals.Front(); e != nil; e = e.Next() {
		visit(value.Of(e.Value.(*value.Upvalue)))
	}
	if !t.pendingException.IsNull() {
		visit(t.pendingException)
	}
	if !t.hookFn.IsNull() {
		visit(t.hookFn)
	}
}

// ThreadValue wraps t as a Value, for pushing onto another thread's
// stack or storing in a Table/Array/global.
func ThreadValue(t *Thread) value.Value { return value.NewGCValue(value.KindThread, t) }
