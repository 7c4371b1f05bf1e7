// Package croc is the embeddable dynamically-typed scripting-language
// runtime's public surface: construct a VM, push values onto a Thread's
// stack, call functions, and read results back, all without the host
// needing to know anything about the internal object model or bytecode
// dispatch loop living in this module's internal packages.
package croc

import (
	"fmt"
	"log"

	"github.com/croc-lang/croc/internal/gcx"
	"github.com/croc-lang/croc/internal/value"
	"github.com/croc-lang/croc/internal/vm"
)

// Config configures a VM at construction time. The zero Config is a
// usable default.
type Config struct {
	InitialGCLimit    uint64
	RegisterStackSize int
	Logger            *log.Logger
}

// FatalError is panicked by Value's typed accessors (AsBool, AsInt,
// AsFloat, AsChar, ...) when called on a value of another Kind, and is
// also returned as an ordinary error by Thread.Call when the call target
// is not a function. Register-stack overflow is reported as an ordinary
// error, not a FatalError. Embedders may recover() at their own call
// boundary.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string { return "croc: fatal: " + e.Msg }

func fatalf(format string, args ...any) {
	panic(&FatalError{Msg: fmt.Sprintf(format, args...)})
}

// VM is the top-level runtime handle: one allocator/collector, the
// global namespace, per-Kind metatables, the ref table, and the set of
// live threads.
type VM struct {
	inner *vm.VM
	ip    *vm.Interpreter
	main  *Thread
}

// NewVM constructs a VM and its main Thread.
func NewVM(cfg Config) *VM {
	iv := vm.NewVM(vm.Config{
		InitialGCLimit:    cfg.InitialGCLimit,
		RegisterStackSize: cfg.RegisterStackSize,
		Logger:            cfg.Logger,
	})
	v := &VM{inner: iv, ip: vm.NewInterpreter(iv)}
	v.main = &Thread{vm: v, t: iv.MainThread()}
	return v
}

// MainThread returns the VM's always-present main thread.
func (v *VM) MainThread() *Thread { return v.main }

// NewThread creates a new coroutine Thread running body.
func (v *VM) NewThread(body *Function) *Thread {
	t := vm.NewCoroutine(v.inner, body.fn)
	return &Thread{vm: v, t: t}
}

// GC forces an immediate full collection cycle.
func (v *VM) GC() gcx.CollectStats { return v.inner.Collect() }

// MaybeGC runs a collection only if the allocator's byte threshold has
// been crossed.
func (v *VM) MaybeGC() bool { return v.inner.MaybeCollect() }

// CreateRef pins a value against garbage collection and returns a
// handle an embedder can hold independent of any stack.
func (v *VM) CreateRef(val Value) int { return v.inner.CreateRef(val.raw) }

func (v *VM) PushRefOnto(t *Thread, id int) error {
	val, ok := v.inner.PushRef(id)
	if !ok {
		return fmt.Errorf("croc: no such ref %d", id)
	}
	return t.t.Push(val)
}

func (v *VM) RemoveRef(id int) { v.inner.RemoveRef(id) }

// PushGlobal looks up name in the VM's global namespace and pushes its
// value onto t.
func (v *VM) PushGlobal(t *Thread, name string) error {
	val, ok := v.inner.Globals.Lookup(name)
	if !ok {
		return fmt.Errorf("croc: global %q is not defined", name)
	}
	return t.t.Push(val)
}

// NewGlobal binds name to the value at stack index idx on t; it is an
// error if name is already bound.
func (v *VM) NewGlobal(t *Thread, idx int, name string) error {
	val, err := t.t.Get(idx)
	if err != nil {
		return err
	}
	if _, ok := v.inner.Globals.LocalGet(name); ok {
		return fmt.Errorf("croc: global %q already exists", name)
	}
	v.inner.Globals.Set(name, val)
	return nil
}

// SetGlobal rebinds an already-existing global; it is an error if name
// is not yet defined.
func (v *VM) SetGlobal(t *Thread, idx int, name string) error {
	val, err := t.t.Get(idx)
	if err != nil {
		return err
	}
	if _, ok := v.inner.Globals.Lookup(name); !ok {
		return fmt.Errorf("croc: global %q is not defined", name)
	}
	v.inner.Globals.Set(name, val)
	return nil
}

func (v *VM) FindGlobal(name string) bool {
	_, ok := v.inner.Globals.Lookup(name)
	return ok
}

func (v *VM) SetMetatable(k Kind, mt *Metatable) { v.inner.SetMetatable(value.Kind(k), mt.raw) }
func (v *VM) Metatable(k Kind) *Metatable {
	mt := v.inner.Metatable(value.Kind(k))
	if mt == nil {
		return nil
	}
	return &Metatable{raw: mt}
}
