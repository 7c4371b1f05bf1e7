package vm

import "github.com/croc-lang/croc/internal/value"

// newTestVM builds a VM with a small register stack, convenient for unit
// tests that don't need DefaultRegisterStackSize's full capacity.
func newTestVM() (*VM, *Interpreter) {
	v := NewVM(Config{RegisterStackSize: 256})
	return v, NewInterpreter(v)
}

func mustPush(t interface{ Fatalf(string, ...any) }, th *Thread, v value.Value) {
	if err := th.Push(v); err != nil {
		t.Fatalf("Push: %v", err)
	}
}
