package vm

import (
	"container/list"
	"fmt"

	"github.com/croc-lang/croc/internal/value"
)

// DefaultRegisterStackSize is the fixed capacity of a new Thread's
// register stack. It is sized generously since, unlike a native call stack,
// register slots are cheap.
const DefaultRegisterStackSize = 1 << 16

// NewThread allocates a Thread with a fixed-capacity register stack.
// The capacity is fixed (never reallocated) specifically so that open
// Upvalues, which alias *value.Value pointers into regs, stay valid for
// as long as the activation record that declared them is live.
func NewThread(v *VM, registerStackSize int, body *value.Function) *Thread {
	if registerStackSize <= 0 {
		registerStackSize = DefaultRegisterStackSize
	}
	t := &Thread{
		vm:         v,
		regs:       make([]value.Value, registerStackSize),
		openUpvals: list.New(),
		bodyFn:     body,
		state:      StateInitial,
	}
	return t
}

func (t *Thread) State() State { return t.state }
func (t *Thread) VM() *VM      { return t.vm }

// StackSize is the current frame's logical top, relative to the active
// AR's base — the embedding API's stack-relative indices resolve against
// this.
func (t *Thread) StackSize() int {
	if len(t.ars) == 0 {
		return t.stackTop
	}
	ar := t.currentAR()
	return t.stackTop - ar.Base
}

func (t *Thread) currentAR() *ActivationRecord {
	if len(t.ars) == 0 {
		return nil
	}
	return t.ars[len(t.ars)-1]
}

// absSlot resolves a frame-relative, possibly-negative index (negative
// indices count from the top, positive from the bottom of the current
// AR's frame) into an absolute register-stack index.
func (t *Thread) absSlot(idx int) (int, error) {
	ar := t.currentAR()
	base := 0
	size := t.stackTop
	if ar != nil {
		base = ar.Base
		size = t.stackTop - ar.Base
	}
	if idx < 0 {
		idx = size + idx
	}
	if idx < 0 || idx >= size {
		return 0, fmt.Errorf("stack index %d out of range (frame size %d)", idx, size)
	}
	return base + idx, nil
}

func (t *Thread) Get(idx int) (value.Value, error) {
	abs, err := t.absSlot(idx)
	if err != nil {
		return value.Null, err
	}
	return t.regs[abs], nil
}

func (t *Thread) Set(idx int, v value.Value) error {
	abs, err := t.absSlot(idx)
	if err != nil {
		return err
	}
	t.regs[abs] = v
	return nil
}

func (t *Thread) IsValidIndex(idx int) bool {
	_, err := t.absSlot(idx)
	return err == nil
}

// Push appends v at the current top, growing the logical frame.
func (t *Thread) Push(v value.Value) error {
	if t.stackTop >= len(t.regs) {
		return fmt.Errorf("croc: register stack overflow (limit %d)", len(t.regs))
	}
	t.regs[t.stackTop] = v
	t.stackTop++
	return nil
}

func (t *Thread) Pop(n int) error {
	ar := t.currentAR()
	floor := 0
	if ar != nil {
		floor = ar.Base
	}
	if t.stackTop-n < floor {
		return fmt.Errorf("croc: stack underflow popping %d values", n)
	}
	t.closeUpvalsFrom(t.stackTop - n)
	t.stackTop -= n
	return nil
}

// SetStackSize sets the current frame's logical size directly, zero
// (Null) filling on growth, matching the embedding API's setStackSize.
func (t *Thread) SetStackSize(n int) error {
	ar := t.currentAR()
	base := 0
	if ar != nil {
		base = ar.Base
	}
	target := base + n
	if target > len(t.regs) {
		return fmt.Errorf("croc: register stack overflow (limit %d)", len(t.regs))
	}
	if target < t.stackTop {
		t.closeUpvalsFrom(target)
	}
	for i := t.stackTop; i < target; i++ {
		t.regs[i] = value.Null
	}
	t.stackTop = target
	return nil
}

// openUpvalueFor returns an open Upvalue aliasing absolute register slot
// abs, reusing one already open at that slot if present, so two closures
// over the same local share one Upvalue.
func (t *Thread) openUpvalueFor(abs int) *value.Upvalue {
	for e := t.openUpvals.Front(); e != nil; e = e.Next() {
		uv := e.Value.(*value.Upvalue)
		if uv.SlotIndex() == abs {
			return uv
		}
		// list is kept sorted by ascending slot index;
		// once we've passed abs's position we can stop early.
	}
	uv := t.vm.Alloc.NewOpenUpvalue(&t.regs[abs], abs)
	t.insertOpenUpvalSorted(abs, uv)
	return uv
}

func (t *Thread) insertOpenUpvalSorted(abs int, uv *value.Upvalue) {
	for e := t.openUpvals.Front(); e != nil; e = e.Next() {
		if e.Value.(*value.Upvalue).SlotIndex() > abs {
			t.openUpvals.InsertBefore(uv, e)
			return
		}
	}
	t.openUpvals.PushBack(uv)
}

// closeUpvalsFrom closes every open upvalue whose slot is at or above
// abs, the mechanism that runs when an activation returns.
func (t *Thread) closeUpvalsFrom(abs int) {
	var next *list.Element
	for e := t.openUpvals.Front(); e != nil; e = next {
		next = e.Next()
		uv := e.Value.(*value.Upvalue)
		if uv.SlotIndex() >= abs {
			uv.Close()
			t.openUpvals.Remove(e)
		}
	}
}
