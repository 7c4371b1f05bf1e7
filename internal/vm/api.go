package vm

import "github.com/croc-lang/croc/internal/value"

// This file re-exports the Interpreter's operation set under capitalized
// names, for package croc (the public embedding API) to drive without
// reaching into vm's lowercase internals. Nothing here adds behavior;
// it is the seam between "how the interpreter implements an operation"
// and "how the host triggers one outside bytecode".

func (ip *Interpreter) Index(t *Thread, obj, key value.Value) (value.Value, error) {
	return ip.index(t, obj, key)
}

func (ip *Interpreter) IndexAssign(t *Thread, obj, key, val value.Value) error {
	return ip.indexAssign(t, obj, key, val)
}

func (ip *Interpreter) Field(t *Thread, obj value.Value, name string) (value.Value, error) {
	return ip.field(t, obj, name)
}

func (ip *Interpreter) FieldAssign(t *Thread, obj value.Value, name string, val value.Value) error {
	return ip.fieldAssign(t, obj, name, val)
}

func (ip *Interpreter) Equals(t *Thread, a, b value.Value) bool {
	return ip.equals(t, a, b)
}

func (ip *Interpreter) Compare(t *Thread, a, b value.Value) (int, error) {
	return ip.compare(t, a, b)
}

func (ip *Interpreter) Length(t *Thread, a value.Value) (value.Value, error) {
	return ip.length(t, a)
}

func (ip *Interpreter) Add(t *Thread, a, b value.Value) (value.Value, error) {
	return ip.arith(t, value.OpAdd, a, b)
}
func (ip *Interpreter) Sub(t *Thread, a, b value.Value) (value.Value, error) {
	return ip.arith(t, value.OpSub, a, b)
}
func (ip *Interpreter) Mul(t *Thread, a, b value.Value) (value.Value, error) {
	return ip.arith(t, value.OpMul, a, b)
}
func (ip *Interpreter) Div(t *Thread, a, b value.Value) (value.Value, error) {
	return ip.arith(t, value.OpDiv, a, b)
}
func (ip *Interpreter) Mod(t *Thread, a, b value.Value) (value.Value, error) {
	return ip.arith(t, value.OpMod, a, b)
}
func (ip *Interpreter) Neg(t *Thread, a value.Value) (value.Value, error) {
	return ip.negate(t, a)
}

func (ip *Interpreter) Concat(t *Thread, vals []value.Value) (value.Value, error) {
	if len(vals) == 0 {
		return value.Null, nil
	}
	acc := vals[0]
	for _, v := range vals[1:] {
		var err error
		acc, err = ip.concatPair(t, acc, v)
		if err != nil {
			return value.Null, err
		}
	}
	return acc, nil
}

// Call invokes fn with args, as the embedding API's rawCall:
// it is a thin wrapper over callSync, exported for package croc.
func (ip *Interpreter) Call(t *Thread, fn *value.Function, args []value.Value, numReturns int) ([]value.Value, error) {
	return t.callSync(fn, args, numReturns)
}
