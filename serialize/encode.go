package serialize

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/croc-lang/croc/internal/value"
)

// Serializer writes a cyclic-safe, reference-preserving encoding of a
// value graph to an Output stream. A Serializer is single-use:
// construct one per stream, call Encode once per root value you want on
// that stream (sharing is preserved across multiple Encode calls on the
// same Serializer, since the seen-id table persists).
type Serializer struct {
	out       Output
	transient *Transient
	seen      map[value.GCObject]uint32
	nextID    uint32
}

// NewSerializer prepares a Serializer writing to out. transient may be
// nil if the graph contains no distinguished host objects.
func NewSerializer(out Output, transient *Transient) *Serializer {
	return &Serializer{out: out, transient: transient, seen: make(map[value.GCObject]uint32)}
}

func (s *Serializer) writeByte(b byte) error {
	_, err := s.out.Write([]byte{b})
	return err
}

func (s *Serializer) writeUvarint(n uint64) error {
	var buf [binary.MaxVarintLen64]byte
	w := binary.PutUvarint(buf[:], n)
	_, err := s.out.Write(buf[:w])
	return err
}

func (s *Serializer) writeBytes(b []byte) error {
	if err := s.writeUvarint(uint64(len(b))); err != nil {
		return err
	}
	_, err := s.out.Write(b)
	return err
}

// Encode writes v to the stream.
func (s *Serializer) Encode(v value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		return s.writeByte(byte(tagNull))
	case value.KindBool:
		if v.AsBool() {
			return s.writeByte(byte(tagBoolTrue))
		}
		return s.writeByte(byte(tagBoolFalse))
	case value.KindInt:
		if err := s.writeByte(byte(tagInt)); err != nil {
			return err
		}
		return s.writeUvarint(uint64(v.AsInt()))
	case value.KindFloat:
		if err := s.writeByte(byte(tagFloat)); err != nil {
			return err
		}
		return s.writeUvarint(math.Float64bits(v.AsFloat()))
	case value.KindChar:
		if err := s.writeByte(byte(tagChar)); err != nil {
			return err
		}
		return s.writeUvarint(uint64(v.AsChar()))
	}

	obj := v.Ref()
	if obj == nil {
		return s.writeByte(byte(tagNull))
	}

	if tok, ok := s.transient.tokenFor(obj); ok {
		if err := s.writeByte(byte(tagTransient)); err != nil {
			return err
		}
		return s.writeUvarint(uint64(tok))
	}

	if id, ok := s.seen[obj]; ok {
		if err := s.writeByte(byte(tagBackref)); err != nil {
			return err
		}
		return s.writeUvarint(uint64(id))
	}

	s.nextID++
	id := s.nextID
	s.seen[obj] = id

	switch o := obj.(type) {
	case *value.String:
		if err := s.writeByte(byte(tagString)); err != nil {
			return err
		}
		if err := s.writeUvarint(uint64(id)); err != nil {
			return err
		}
		return s.writeBytes(o.Bytes())
	case *value.Table:
		return s.encodeTable(id, o)
	case *value.Array:
		return s.encodeArray(id, o)
	case *value.Namespace:
		return s.encodeNamespace(id, o)
	case *value.Class:
		return s.encodeClass(id, o)
	case *value.Instance:
		return s.encodeInstance(id, o)
	case *value.Function:
		return s.encodeFunction(id, o)
	case *value.FuncDef:
		return s.encodeFuncDef(id, o)
	}
	return fmt.Errorf("serialize: %s is not serializable (not in the transient table)", obj.TypeName())
}

func (s *Serializer) encodeTable(id uint32, tb *value.Table) error {
	if err := s.writeByte(byte(tagTable)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(id)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(tb.Len())); err != nil {
		return err
	}
	var encErr error
	tb.ForEach(func(k, v value.Value) bool {
		if err := s.Encode(k); err != nil {
			encErr = err
			return false
		}
		if err := s.Encode(v); err != nil {
			encErr = err
			return false
		}
		return true
	})
	return encErr
}

func (s *Serializer) encodeArray(id uint32, a *value.Array) error {
	if err := s.writeByte(byte(tagArray)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(id)); err != nil {
		return err
	}
	elems := a.Elems()
	if err := s.writeUvarint(uint64(len(elems))); err != nil {
		return err
	}
	for _, e := range elems {
		if err := s.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) encodeNamespace(id uint32, n *value.Namespace) error {
	if err := s.writeByte(byte(tagNamespace)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(id)); err != nil {
		return err
	}
	if err := s.writeBytes([]byte(n.Name)); err != nil {
		return err
	}
	hasParent := n.Parent != nil
	if err := s.writeByte(boolByte(hasParent)); err != nil {
		return err
	}
	if hasParent {
		if err := s.Encode(value.NewNamespaceValue(n.Parent)); err != nil {
			return err
		}
	}
	var keys []string
	var vals []value.Value
	n.ForEach(func(k string, v value.Value) bool {
		keys = append(keys, k)
		vals = append(vals, v)
		return true
	})
	if err := s.writeUvarint(uint64(len(keys))); err != nil {
		return err
	}
	for i, k := range keys {
		if err := s.writeBytes([]byte(k)); err != nil {
			return err
		}
		if err := s.Encode(vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) encodeClass(id uint32, c *value.Class) error {
	if err := s.writeByte(byte(tagClass)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(id)); err != nil {
		return err
	}
	if err := s.writeBytes([]byte(c.Name)); err != nil {
		return err
	}
	hasBase := c.Base != nil
	if err := s.writeByte(boolByte(hasBase)); err != nil {
		return err
	}
	if hasBase {
		if err := s.Encode(value.NewClassValue(c.Base)); err != nil {
			return err
		}
	}
	return s.encodeNamespaceInline(c.Fields)
}

// encodeNamespaceInline writes a Namespace's own id/tag/backref wrapper
// by delegating to Encode so sharing is tracked the same way as any
// other reference (a Class's Fields namespace is reachable from script
// code too, e.g. via reflection, so it must participate in the shared-
// reference graph like everything else).
func (s *Serializer) encodeNamespaceInline(n *value.Namespace) error {
	return s.Encode(value.NewNamespaceValue(n))
}

func (s *Serializer) encodeInstance(id uint32, inst *value.Instance) error {
	if err := s.writeByte(byte(tagInstance)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(id)); err != nil {
		return err
	}
	if err := s.Encode(value.NewClassValue(inst.Class)); err != nil {
		return err
	}
	if err := s.encodeNamespaceInline(inst.Fields); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(len(inst.Extra))); err != nil {
		return err
	}
	for _, e := range inst.Extra {
		if err := s.Encode(e); err != nil {
			return err
		}
	}
	return s.writeBytes(inst.Raw)
}

func (s *Serializer) encodeFunction(id uint32, f *value.Function) error {
	if f.IsNative() {
		return fmt.Errorf("serialize: native function %q is not serializable (not in the transient table)", f.Name)
	}
	if err := s.writeByte(byte(tagFunction)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(id)); err != nil {
		return err
	}
	if err := s.Encode(value.NewFuncDefValue(f.Def)); err != nil {
		return err
	}
	hasEnv := f.Env != nil
	if err := s.writeByte(boolByte(hasEnv)); err != nil {
		return err
	}
	if hasEnv {
		if err := s.encodeNamespaceInline(f.Env); err != nil {
			return err
		}
	}
	if err := s.writeUvarint(uint64(len(f.Upvals))); err != nil {
		return err
	}
	for _, uv := range f.Upvals {
		if uv.IsOpen() {
			return fmt.Errorf("serialize: function %q has an open upvalue aliasing a live stack slot", f.Name)
		}
		if err := s.Encode(uv.Get()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) encodeFuncDef(id uint32, fd *value.FuncDef) error {
	if err := s.writeByte(byte(tagFuncDef)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(id)); err != nil {
		return err
	}
	if err := s.writeBytes([]byte(fd.Module)); err != nil {
		return err
	}
	if err := s.writeBytes([]byte(fd.Name)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(fd.NumParams)); err != nil {
		return err
	}
	if err := s.writeByte(boolByte(fd.IsVararg)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(fd.MaxRegisters)); err != nil {
		return err
	}
	if err := s.writeUvarint(uint64(len(fd.Constants))); err != nil {
		return err
	}
	for _, c := range fd.Constants {
		if err := s.Encode(c); err != nil {
			return err
		}
	}
	if err := s.writeUvarint(uint64(len(fd.Code))); err != nil {
		return err
	}
	for i, instr := range fd.Code {
		if err := s.writeUvarint(uint64(instr.Op)); err != nil {
			return err
		}
		if err := s.writeUvarint(zigzag(int64(instr.A))); err != nil {
			return err
		}
		if err := s.writeUvarint(zigzag(int64(instr.B))); err != nil {
			return err
		}
		if err := s.writeUvarint(zigzag(int64(instr.C))); err != nil {
			return err
		}
		line := int32(0)
		if i < len(fd.Lines) {
			line = fd.Lines[i]
		}
		if err := s.writeUvarint(zigzag(int64(line))); err != nil {
			return err
		}
	}
	if err := s.writeUvarint(uint64(len(fd.Inner))); err != nil {
		return err
	}
	for _, inner := range fd.Inner {
		if err := s.Encode(value.NewFuncDefValue(inner)); err != nil {
			return err
		}
	}
	if err := s.writeUvarint(uint64(len(fd.UpvalDescs))); err != nil {
		return err
	}
	for _, d := range fd.UpvalDescs {
		if err := s.writeByte(boolByte(d.FromParentLocal)); err != nil {
			return err
		}
		if err := s.writeUvarint(uint64(d.Index)); err != nil {
			return err
		}
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func zigzag(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func unzigzag(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}
