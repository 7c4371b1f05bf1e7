package value

// NativeContext is the minimal surface a native (host-implemented)
// function needs from whatever Thread is calling it. It is declared here,
// rather than depending on package vm, so that Function (a value-model
// type) never has to import the interpreter — package vm's Thread
// satisfies this interface instead. The value model only needs the
// shape of a call, not how calls are dispatched.
type NativeContext interface {
	NumArgs() int
	Arg(i int) Value
	This() Value
	Upval(i int) Value
	SetUpval(i int, v Value)
}

// NativeFn is a host-implemented function body. It returns its results
// directly; a non-nil error is raised as a VM exception by the caller,
// whose value is the error's message as an interned String.
type NativeFn func(ctx NativeContext) ([]Value, error)

// Function is a closure: either a script function referencing a FuncDef
// plus captured Upvalues, or a native function wrapping a Go func plus
// its own captured "native upvalues".
type Function struct {
	Header
	Env  *Namespace
	Name string

	Def    *FuncDef
	Upvals []*Upvalue

	Native       NativeFn
	NumParams    int
	NativeUpvals []Value
}

func NewScriptFunction(def *FuncDef, env *Namespace, upvals []*Upvalue) *Function {
	return &Function{Def: def, Env: env, Upvals: upvals, Name: def.Name}
}

func NewNativeFunction(name string, numParams int, fn NativeFn, env *Namespace, upvals []Value) *Function {
	return &Function{Name: name, Native: fn, NumParams: numParams, Env: env, NativeUpvals: upvals}
}

func (f *Function) GCHeader() *Header { return &f.Header }
func (f *Function) TypeName() string  { return "function" }
func (f *Function) ValueKind() Kind   { return KindFunction }
func (f *Function) IsNative() bool    { return f.Native != nil }

func (f *Function) Traverse(visit func(Value)) {
	if f.Env != nil {
		visit(NewNamespaceValue(f.Env))
	}
	if f.Def != nil {
		visit(NewFuncDefValue(f.Def))
	}
	for _, uv := range f.Upvals {
		visit(newUpvalueValue(uv))
	}
	for _, v := range f.NativeUpvals {
		visit(v)
	}
}

func NewFunctionValue(f *Function) Value { return fromObject(KindFunction, f) }
