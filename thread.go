package croc

import (
	"fmt"

	"github.com/croc-lang/croc/internal/value"
	"github.com/croc-lang/croc/internal/vm"
)

// Thread is a handle onto a coroutine or the VM's main thread, and the
// surface every stack-manipulation, push/get, arithmetic, indexing, and
// call operation in the embedding API is a method of.
type Thread struct {
	vm *VM
	t  *vm.Thread
}

func (t *Thread) State() string { return t.t.State().String() }

// --- stack manipulation ---

func (t *Thread) StackSize() int           { return t.t.StackSize() }
func (t *Thread) IsValidIndex(idx int) bool { return t.t.IsValidIndex(idx) }
func (t *Thread) Pop(n int) error           { return t.t.Pop(n) }
func (t *Thread) SetStackSize(n int) error  { return t.t.SetStackSize(n) }

// Dup pushes a copy of the value at idx.
func (t *Thread) Dup(idx int) error {
	v, err := t.t.Get(idx)
	if err != nil {
		return err
	}
	return t.t.Push(v)
}

// Swap exchanges the values at a and b.
func (t *Thread) Swap(a, b int) error {
	va, err := t.t.Get(a)
	if err != nil {
		return err
	}
	vb, err := t.t.Get(b)
	if err != nil {
		return err
	}
	if err := t.t.Set(a, vb); err != nil {
		return err
	}
	return t.t.Set(b, va)
}

// Insert pops the top value and inserts it at idx, shifting values above
// idx up by one.
func (t *Thread) Insert(idx int) error {
	top, err := t.t.Get(-1)
	if err != nil {
		return err
	}
	size := t.t.StackSize()
	abs := idx
	if abs < 0 {
		abs = size + abs
	}
	for i := size - 1; i > abs; i-- {
		v, err := t.t.Get(i - 1)
		if err != nil {
			return err
		}
		if err := t.t.Set(i, v); err != nil {
			return err
		}
	}
	return t.t.Set(abs, top)
}

// --- pushers ---

func (t *Thread) PushNull() error      { return t.t.Push(value.Null) }
func (t *Thread) PushBool(b bool) error { return t.t.Push(value.Bool(b)) }
func (t *Thread) PushInt(i int64) error { return t.t.Push(value.Int(i)) }
func (t *Thread) PushFloat(f float64) error { return t.t.Push(value.Float(f)) }
func (t *Thread) PushChar(r rune) error {
	if !value.ValidateScalar(r) {
		return fmt.Errorf("croc: %U is not a valid character scalar", r)
	}
	return t.t.Push(value.Char(r))
}

// PushString validates s as well-formed UTF-8 and interns it before pushing.
func (t *Thread) PushString(s string) error {
	if err := value.ValidateUTF8([]byte(s)); err != nil {
		return err
	}
	str := t.vm.inner.Alloc.Intern(t.vm.inner.Intern, []byte(s))
	return t.t.Push(value.Of(str))
}

func (t *Thread) NewTable() error { return t.t.Push(value.NewTableValue(t.vm.inner.Alloc.NewTable())) }
func (t *Thread) NewArray(capacity int) error {
	return t.t.Push(value.NewArrayValue(t.vm.inner.Alloc.NewArray(capacity)))
}

func (t *Thread) NewNamespace(name string) error {
	return t.t.Push(value.NewNamespaceValue(t.vm.inner.Alloc.NewNamespace(name, nil)))
}

func (t *Thread) NewNamespaceNoParent(name string) error {
	return t.NewNamespace(name)
}

// PushNativeObj wraps an arbitrary host value as an opaque NativeObj the
// garbage collector tracks but never inspects.
func (t *Thread) PushNativeObj(data any) error {
	return t.t.Push(value.Of(t.vm.inner.Alloc.NewNativeObj(data)))
}

// PushWeakRef pushes a WeakRef to the value currently at idx.
func (t *Thread) PushWeakRef(idx int) error {
	v, err := t.t.Get(idx)
	if err != nil {
		return err
	}
	return t.t.Push(value.Of(t.vm.inner.Alloc.NewWeakRef(v)))
}

// NewNativeFunction pushes a host-implemented Function bound to fn.
func (t *Thread) NewNativeFunction(name string, numParams int, fn value.NativeFn) error {
	f := t.vm.inner.Alloc.NewNativeFunction(name, numParams, fn, nil, nil)
	return t.t.Push(value.NewFunctionValue(f))
}

// --- queries ---

func (t *Thread) IsNull(idx int) bool   { return t.kindAt(idx) == KindNull }
func (t *Thread) IsBool(idx int) bool   { return t.kindAt(idx) == KindBool }
func (t *Thread) IsInt(idx int) bool    { return t.kindAt(idx) == KindInt }
func (t *Thread) IsFloat(idx int) bool  { return t.kindAt(idx) == KindFloat }
func (t *Thread) IsString(idx int) bool { return t.kindAt(idx) == KindString }

func (t *Thread) kindAt(idx int) Kind {
	v, err := t.t.Get(idx)
	if err != nil {
		return KindNull
	}
	return Kind(v.Kind())
}

func (t *Thread) Type(idx int) Kind { return t.kindAt(idx) }

func (t *Thread) IsTrue(idx int) bool {
	v, err := t.t.Get(idx)
	if err != nil {
		return false
	}
	return v.IsTrue()
}

// --- getters ---

func (t *Thread) Get(idx int) (Value, error) {
	v, err := t.t.Get(idx)
	if err != nil {
		return Value{}, err
	}
	return Value{raw: v}, nil
}

func (t *Thread) GetBool(idx int) bool    { v, _ := t.Get(idx); return v.AsBool() }
func (t *Thread) GetInt(idx int) int64    { v, _ := t.Get(idx); return v.AsInt() }
func (t *Thread) GetFloat(idx int) float64 { v, _ := t.Get(idx); return v.AsFloat() }
func (t *Thread) GetChar(idx int) rune    { v, _ := t.Get(idx); return v.AsChar() }
func (t *Thread) GetString(idx int) string { v, _ := t.Get(idx); return v.AsString() }

// --- arithmetic / logic ---

func (t *Thread) binaryOp(op func(*vm.Interpreter, *vm.Thread, value.Value, value.Value) (value.Value, error), a, b int) error {
	av, err := t.t.Get(a)
	if err != nil {
		return err
	}
	bv, err := t.t.Get(b)
	if err != nil {
		return err
	}
	res, err := op(t.vm.ip, t.t, av, bv)
	if err != nil {
		return err
	}
	return t.t.Push(res)
}

func (t *Thread) Add(a, b int) error { return t.binaryOp((*vm.Interpreter).Add, a, b) }
func (t *Thread) Sub(a, b int) error { return t.binaryOp((*vm.Interpreter).Sub, a, b) }
func (t *Thread) Mul(a, b int) error { return t.binaryOp((*vm.Interpreter).Mul, a, b) }
func (t *Thread) Div(a, b int) error { return t.binaryOp((*vm.Interpreter).Div, a, b) }
func (t *Thread) Mod(a, b int) error { return t.binaryOp((*vm.Interpreter).Mod, a, b) }

func (t *Thread) Neg(a int) error {
	av, err := t.t.Get(a)
	if err != nil {
		return err
	}
	res, err := t.vm.ip.Neg(t.t, av)
	if err != nil {
		return err
	}
	return t.t.Push(res)
}

func (t *Thread) Equals(a, b int) (bool, error) {
	av, err := t.t.Get(a)
	if err != nil {
		return false, err
	}
	bv, err := t.t.Get(b)
	if err != nil {
		return false, err
	}
	return t.vm.ip.Equals(t.t, av, bv), nil
}

func (t *Thread) Cmp(a, b int) (int, error) {
	av, err := t.t.Get(a)
	if err != nil {
		return 0, err
	}
	bv, err := t.t.Get(b)
	if err != nil {
		return 0, err
	}
	return t.vm.ip.Compare(t.t, av, bv)
}

// --- indexing ---

func (t *Thread) Idx(obj, key int) error {
	ov, err := t.t.Get(obj)
	if err != nil {
		return err
	}
	kv, err := t.t.Get(key)
	if err != nil {
		return err
	}
	res, err := t.vm.ip.Index(t.t, ov, kv)
	if err != nil {
		return err
	}
	return t.t.Push(res)
}

func (t *Thread) Idxa(obj, key, val int) error {
	ov, err := t.t.Get(obj)
	if err != nil {
		return err
	}
	kv, err := t.t.Get(key)
	if err != nil {
		return err
	}
	vv, err := t.t.Get(val)
	if err != nil {
		return err
	}
	return t.vm.ip.IndexAssign(t.t, ov, kv, vv)
}

func (t *Thread) Field(obj int, name string) error {
	ov, err := t.t.Get(obj)
	if err != nil {
		return err
	}
	res, err := t.vm.ip.Field(t.t, ov, name)
	if err != nil {
		return err
	}
	return t.t.Push(res)
}

func (t *Thread) Fielda(obj int, name string, val int) error {
	ov, err := t.t.Get(obj)
	if err != nil {
		return err
	}
	vv, err := t.t.Get(val)
	if err != nil {
		return err
	}
	return t.vm.ip.FieldAssign(t.t, ov, name, vv)
}

func (t *Thread) Len(obj int) error {
	ov, err := t.t.Get(obj)
	if err != nil {
		return err
	}
	res, err := t.vm.ip.Length(t.t, ov)
	if err != nil {
		return err
	}
	return t.t.Push(res)
}

// --- calls ---

// Call invokes the Function at fnIdx with numArgs values already pushed
// above it, requesting numReturns results (-1 keeps all); results
// replace the callee and its arguments on the stack.
func (t *Thread) Call(fnIdx, numArgs, numReturns int) error {
	fv, err := t.t.Get(fnIdx)
	if err != nil {
		return err
	}
	fn, ok := fv.Ref().(*value.Function)
	if !ok {
		return nonFunctionErr(fv)
	}
	args := make([]value.Value, numArgs)
	base := fnIdx
	size := t.t.StackSize()
	if base < 0 {
		base = size + base
	}
	for i := 0; i < numArgs; i++ {
		v, err := t.t.Get(base + 1 + i)
		if err != nil {
			return err
		}
		args[i] = v
	}
	results, err := t.vm.ip.Call(t.t, fn, args, numReturns)
	if err != nil {
		return err
	}
	if err := t.t.SetStackSize(base); err != nil {
		return err
	}
	for _, r := range results {
		if err := t.t.Push(r); err != nil {
			return err
		}
	}
	return nil
}

func nonFunctionErr(v value.Value) error {
	return &FatalError{Msg: "call target is a " + v.Kind().String() + ", not a function"}
}

// --- error handling ---

func (t *Thread) ThrowException(idx int) error {
	v, err := t.t.Get(idx)
	if err != nil {
		return err
	}
	t.t.Throw(v)
	return nil
}

func (t *Thread) GetTraceback() string { return vm.FormatTraceback(t.t.Traceback()) }

// --- coroutines ---

func (t *Thread) Resume(args ...Value) ([]Value, error) {
	raws := make([]value.Value, len(args))
	for i, a := range args {
		raws[i] = a.raw
	}
	results, err := t.vm.ip.Resume(t.vm.main.t, t.t, raws)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(results))
	for i, r := range results {
		out[i] = Value{raw: r}
	}
	return out, nil
}

func (t *Thread) Halt() { t.t.Halt() }
