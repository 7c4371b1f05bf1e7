package vm

import (
	"fmt"

	"github.com/croc-lang/croc/internal/value"
)

// index implements opIndex: Table/Array/Memblock/Namespace natively
// (a wrongly-typed key, an out-of-range Array/Memblock index or a missing
// Namespace member is an error), an Instance's own string-keyed members
// through its field chain, and everything else through opIndex.
func (ip *Interpreter) index(t *Thread, obj, key value.Value) (value.Value, error) {
	switch obj.Kind() {
	case value.KindTable:
		return obj.Ref().(*value.Table).Get(key), nil
	case value.KindArray:
		if key.Kind() != value.KindInt {
			return value.Null, fmt.Errorf("croc: array index must be int, got %s", key.Kind())
		}
		v, ok := obj.Ref().(*value.Array).At(key.AsInt())
		if !ok {
			return value.Null, fmt.Errorf("croc: array index %d out of bounds", key.AsInt())
		}
		return v, nil
	case value.KindMemblock:
		if key.Kind() != value.KindInt {
			return value.Null, fmt.Errorf("croc: memblock index must be int, got %s", key.Kind())
		}
		v, ok := obj.Ref().(*value.Memblock).At(key.AsInt())
		if !ok {
			return value.Null, fmt.Errorf("croc: memblock index %d out of bounds", key.AsInt())
		}
		return v, nil
	case value.KindNamespace:
		if key.Kind() != value.KindString {
			return value.Null, fmt.Errorf("croc: namespace index must be string, got %s", key.Kind())
		}
		v, ok := obj.Ref().(*value.Namespace).Lookup(key.Ref().(*value.String).Go())
		if !ok {
			return value.Null, fmt.Errorf("croc: no such member %q", key.Ref().(*value.String).Go())
		}
		return v, nil
	case value.KindInstance:
		inst := obj.Ref().(*value.Instance)
		if key.Kind() == value.KindString {
			if v, ok := inst.Lookup(key.Ref().(*value.String).Go()); ok {
				return v, nil
			}
		}
	}
	return ip.callMetamethod(t, value.MMIndex, obj, key)
}

func (ip *Interpreter) indexAssign(t *Thread, obj, key, val value.Value) error {
	switch obj.Kind() {
	case value.KindTable:
		return obj.Ref().(*value.Table).Set(key, val)
	case value.KindArray:
		if key.Kind() != value.KindInt {
			return fmt.Errorf("croc: array index must be int, got %s", key.Kind())
		}
		if !obj.Ref().(*value.Array).SetAt(key.AsInt(), val) {
			return fmt.Errorf("croc: array index %d out of bounds", key.AsInt())
		}
		return nil
	case value.KindMemblock:
		if key.Kind() != value.KindInt {
			return fmt.Errorf("croc: memblock index must be int, got %s", key.Kind())
		}
		if !obj.Ref().(*value.Memblock).SetAt(key.AsInt(), val) {
			return fmt.Errorf("croc: memblock index %d out of bounds", key.AsInt())
		}
		return nil
	case value.KindNamespace:
		if key.Kind() != value.KindString {
			return fmt.Errorf("croc: namespace index must be string, got %s", key.Kind())
		}
		obj.Ref().(*value.Namespace).Set(key.Ref().(*value.String).Go(), val)
		return nil
	case value.KindInstance:
		if key.Kind() == value.KindString {
			obj.Ref().(*value.Instance).Fields.Set(key.Ref().(*value.String).Go(), val)
			return nil
		}
	}
	_, err := ip.callMetamethod(t, value.MMIndexAssign, obj, key)
	return err
}

// field implements opField: a dedicated string-keyed lookup for
// Namespace/Instance/Class member access (distinguished from opIndex so
// a compiler can emit it for `.name` syntax directly against a
// constant).
func (ip *Interpreter) field(t *Thread, obj value.Value, name string) (value.Value, error) {
	switch obj.Kind() {
	case value.KindNamespace:
		v, ok := obj.Ref().(*value.Namespace).Lookup(name)
		if !ok {
			return value.Null, fmt.Errorf("croc: no such member %q", name)
		}
		return v, nil
	case value.KindInstance:
		v, ok := obj.Ref().(*value.Instance).Lookup(name)
		if !ok {
			return value.Null, fmt.Errorf("croc: no such member %q", name)
		}
		return v, nil
	case value.KindClass:
		v, ok := obj.Ref().(*value.Class).Lookup(name)
		if !ok {
			return value.Null, fmt.Errorf("croc: no such member %q", name)
		}
		return v, nil
	}
	return ip.callMetamethod(t, value.MMField, obj, value.Of(t.vm.Alloc.Intern(t.vm.Intern, []byte(name))))
}

func (ip *Interpreter) fieldAssign(t *Thread, obj value.Value, name string, val value.Value) error {
	switch obj.Kind() {
	case value.KindNamespace:
		obj.Ref().(*value.Namespace).Set(name, val)
		return nil
	case value.KindInstance:
		obj.Ref().(*value.Instance).Fields.Set(name, val)
		return nil
	case value.KindClass:
		obj.Ref().(*value.Class).Fields.Set(name, val)
		return nil
	}
	_, err := ip.callMetamethod(t, value.MMFieldAssign, obj, val)
	return err
}
