package vm

import (
	"fmt"

	"github.com/croc-lang/croc/internal/value"
)

// arith implements the numeric fast path for Add/Sub/Mul/Div/Mod, falling
// back to the metamethod protocol for non-numeric operands.
func (ip *Interpreter) arith(t *Thread, op value.Opcode, a, b value.Value) (value.Value, error) {
	if isNumeric(a) && isNumeric(b) {
		if a.Kind() == value.KindInt && b.Kind() == value.KindInt {
			x, y := a.AsInt(), b.AsInt()
			switch op {
			case value.OpAdd:
				return value.Int(x + y), nil
			case value.OpSub:
				return value.Int(x - y), nil
			case value.OpMul:
				return value.Int(x * y), nil
			case value.OpDiv:
				if y == 0 {
					return value.Null, fmt.Errorf("croc: integer division by zero")
				}
				return value.Int(x / y), nil
			case value.OpMod:
				if y == 0 {
					return value.Null, fmt.Errorf("croc: integer modulo by zero")
				}
				return value.Int(x % y), nil
			}
		}
		x, y := numFloat(a), numFloat(b)
		switch op {
		case value.OpAdd:
			return value.Float(x + y), nil
		case value.OpSub:
			return value.Float(x - y), nil
		case value.OpMul:
			return value.Float(x * y), nil
		case value.OpDiv:
			return value.Float(x / y), nil
		case value.OpMod:
			return value.Float(modFloat(x, y)), nil
		}
	}
	mm, ok := mmFor(op)
	if !ok {
		return value.Null, fmt.Errorf("croc: bad arithmetic opcode %v", op)
	}
	return ip.callMetamethod(t, mm, a, b)
}

func mmFor(op value.Opcode) (value.MM, bool) {
	switch op {
	case value.OpAdd:
		return value.MMAdd, true
	case value.OpSub:
		return value.MMSub, true
	case value.OpMul:
		return value.MMMul, true
	case value.OpDiv:
		return value.MMDiv, true
	case value.OpMod:
		return value.MMMod, true
	case value.OpAnd:
		return value.MMAnd, true
	case value.OpOr:
		return value.MMOr, true
	case value.OpXor:
		return value.MMXor, true
	case value.OpShl:
		return value.MMShl, true
	case value.OpShr:
		return value.MMShr, true
	case value.OpUShr:
		return value.MMUShr, true
	}
	return 0, false
}

func modFloat(x, y float64) float64 {
	m := x - y*float64(int64(x/y))
	return m
}

func isNumeric(v value.Value) bool {
	switch v.Kind() {
	case value.KindInt, value.KindFloat, value.KindChar:
		return true
	}
	return false
}

func numFloat(v value.Value) float64 {
	switch v.Kind() {
	case value.KindInt:
		return float64(v.AsInt())
	case value.KindChar:
		return float64(v.AsChar())
	default:
		return v.AsFloat()
	}
}

func (ip *Interpreter) negate(t *Thread, a value.Value) (value.Value, error) {
	switch a.Kind() {
	case value.KindInt:
		return value.Int(-a.AsInt()), nil
	case value.KindFloat:
		return value.Float(-a.AsFloat()), nil
	}
	return ip.callMetamethod(t, value.MMNeg, a, value.Null)
}

func (ip *Interpreter) bitwise(t *Thread, op value.Opcode, a, b value.Value) (value.Value, error) {
	if a.Kind() == value.KindInt && b.Kind() == value.KindInt {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case value.OpAnd:
			return value.Int(x & y), nil
		case value.OpOr:
			return value.Int(x | y), nil
		case value.OpXor:
			return value.Int(x ^ y), nil
		case value.OpShl:
			return value.Int(x << uint(y)), nil
		case value.OpShr:
			return value.Int(x >> uint(y)), nil
		case value.OpUShr:
			return value.Int(int64(uint64(x) >> uint(y))), nil
		}
	}
	mm, _ := mmFor(op)
	return ip.callMetamethod(t, mm, a, b)
}

// callMetamethod looks up mm on a's per-Kind metatable (or a's class
// chain when a is an Instance; b is never consulted) and invokes it with
// (a, b). It returns an error if no handler exists — Run turns that
// into a thrown exception.
func (ip *Interpreter) callMetamethod(t *Thread, mm value.MM, a, b value.Value) (value.Value, error) {
	fn, ok := ip.lookupMetamethod(a, mm)
	if !ok {
		return value.Null, fmt.Errorf("croc: %s has no %s metamethod", a.Kind(), mm)
	}
	args := []value.Value{a}
	if !b.IsNull() {
		args = append(args, b)
	}
	results, err := t.callSync(fn, args, 1)
	if err != nil {
		return value.Null, err
	}
	if len(results) == 0 {
		return value.Null, nil
	}
	return results[0], nil
}

func (ip *Interpreter) lookupMetamethod(v value.Value, mm value.MM) (*value.Function, bool) {
	if v.Kind() == value.KindInstance {
		inst := v.Ref().(*value.Instance)
		fv, ok := inst.Lookup(mm.String())
		if ok {
			if fn, ok := fv.Ref().(*value.Function); ok {
				return fn, true
			}
		}
		return nil, false
	}
	mt := ip.VM.Metatable(v.Kind())
	if mt == nil {
		return nil, false
	}
	fv := mt.Get(mm)
	if fv.IsNull() {
		return nil, false
	}
	fn, ok := fv.Ref().(*value.Function)
	return fn, ok
}
