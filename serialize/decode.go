package serialize

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/croc-lang/croc/internal/gcx"
	"github.com/croc-lang/croc/internal/value"
)

// Deserializer reconstructs a value graph from a stream written by a
// Serializer, allocating every heap object through alloc (and interning
// strings through intern) so the result participates in the destination
// VM's own GC accounting exactly like any other allocation. Containers
// are allocated and registered under their id before their contents are
// read (a Function once its FuncDef has been read, an Instance once its
// class has been read), so a backref encountered mid-read (including a
// self-reference) resolves to the same, possibly still-filling-in,
// object. A backref to an Instance from within its own class, or to a
// Function from within its FuncDef, is reported as an unknown id.
type Deserializer struct {
	in        Input
	alloc     *gcx.Allocator
	intern    *value.InternTable
	transient *Transient
	objs      map[uint32]value.GCObject
}

func NewDeserializer(in Input, alloc *gcx.Allocator, intern *value.InternTable, transient *Transient) *Deserializer {
	return &Deserializer{in: in, alloc: alloc, intern: intern, transient: transient, objs: make(map[uint32]value.GCObject)}
}

func (d *Deserializer) readByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.in, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Deserializer) readUvarint() (uint64, error) {
	return binary.ReadUvarint(byteReaderOf(d.in))
}

func (d *Deserializer) readBytes() ([]byte, error) {
	n, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.in, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// byteReaderOf adapts an Input (io.Reader) to io.ByteReader, which
// encoding/binary's varint decoder requires.
func byteReaderOf(r Input) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &singleByteReader{r: r}
}

type singleByteReader struct{ r io.Reader }

func (s *singleByteReader) ReadByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(s.r, b[:])
	return b[0], err
}

// Decode reads one value from the stream.
func (d *Deserializer) Decode() (value.Value, error) {
	b, err := d.readByte()
	if err != nil {
		return value.Null, err
	}
	t := tag(b)
	switch t {
	case tagNull:
		return value.Null, nil
	case tagBoolFalse:
		return value.Bool(false), nil
	case tagBoolTrue:
		return value.Bool(true), nil
	case tagInt:
		n, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		return value.Int(int64(n)), nil
	case tagFloat:
		n, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		return value.Float(math.Float64frombits(n)), nil
	case tagChar:
		n, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		return value.Char(rune(n)), nil
	case tagTransient:
		tok, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		obj, ok := d.transient.objFor(uint32(tok))
		if !ok {
			return value.Null, fmt.Errorf("serialize: transient token %d not found in destination table", tok)
		}
		return value.Of(obj), nil
	case tagBackref:
		id, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		obj, ok := d.objs[uint32(id)]
		if !ok {
			return value.Null, fmt.Errorf("serialize: backref to unknown id %d", id)
		}
		return value.Of(obj), nil
	case tagString:
		return d.decodeString()
	case tagTable:
		return d.decodeTable()
	case tagArray:
		return d.decodeArray()
	case tagNamespace:
		return d.decodeNamespace()
	case tagClass:
		return d.decodeClass()
	case tagInstance:
		return d.decodeInstance()
	case tagFunction:
		return d.decodeFunction()
	case tagFuncDef:
		return d.decodeFuncDef()
	}
	return value.Null, fmt.Errorf("serialize: bad tag %d", b)
}

func (d *Deserializer) decodeString() (value.Value, error) {
	id, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	data, err := d.readBytes()
	if err != nil {
		return value.Null, err
	}
	s := d.alloc.Intern(d.intern, data)
	d.objs[uint32(id)] = s
	return value.Of(s), nil
}

func (d *Deserializer) decodeTable() (value.Value, error) {
	id, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	tb := d.alloc.NewTable()
	d.objs[uint32(id)] = tb
	n, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	for i := uint64(0); i < n; i++ {
		k, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		v, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		if err := tb.Set(k, v); err != nil {
			return value.Null, err
		}
	}
	return value.NewTableValue(tb), nil
}

func (d *Deserializer) decodeArray() (value.Value, error) {
	id, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	n, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	a := d.alloc.NewArray(int(n))
	d.objs[uint32(id)] = a
	for i := uint64(0); i < n; i++ {
		v, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		a.Append(v)
	}
	return value.NewArrayValue(a), nil
}

func (d *Deserializer) decodeNamespace() (value.Value, error) {
	id, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	name, err := d.readBytes()
	if err != nil {
		return value.Null, err
	}
	n := d.alloc.NewNamespace(string(name), nil)
	d.objs[uint32(id)] = n
	hasParent, err := d.readByte()
	if err != nil {
		return value.Null, err
	}
	if hasParent != 0 {
		pv, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		n.Parent = pv.Ref().(*value.Namespace)
	}
	count, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	for i := uint64(0); i < count; i++ {
		k, err := d.readBytes()
		if err != nil {
			return value.Null, err
		}
		v, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		n.Set(string(k), v)
	}
	return value.NewNamespaceValue(n), nil
}

func (d *Deserializer) decodeClass() (value.Value, error) {
	id, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	name, err := d.readBytes()
	if err != nil {
		return value.Null, err
	}
	c := d.alloc.NewClass(string(name), nil)
	d.objs[uint32(id)] = c
	hasBase, err := d.readByte()
	if err != nil {
		return value.Null, err
	}
	if hasBase != 0 {
		bv, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		c.Base = bv.Ref().(*value.Class)
	}
	fv, err := d.Decode()
	if err != nil {
		return value.Null, err
	}
	c.Fields = fv.Ref().(*value.Namespace)
	return value.NewClassValue(c), nil
}

func (d *Deserializer) decodeInstance() (value.Value, error) {
	id, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	cv, err := d.Decode()
	if err != nil {
		return value.Null, err
	}
	cls := cv.Ref().(*value.Class)
	inst := d.alloc.NewInstance(cls, 0, 0)
	d.objs[uint32(id)] = inst
	fv, err := d.Decode()
	if err != nil {
		return value.Null, err
	}
	inst.Fields = fv.Ref().(*value.Namespace)
	n, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	inst.Extra = make([]value.Value, n)
	for i := uint64(0); i < n; i++ {
		v, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		inst.Extra[i] = v
	}
	raw, err := d.readBytes()
	if err != nil {
		return value.Null, err
	}
	inst.Raw = raw
	return value.NewInstanceValue(inst), nil
}

func (d *Deserializer) decodeFunction() (value.Value, error) {
	id, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	defv, err := d.Decode()
	if err != nil {
		return value.Null, err
	}
	def := defv.Ref().(*value.FuncDef)
	f := d.alloc.NewScriptFunction(def, nil, nil)
	d.objs[uint32(id)] = f
	hasEnv, err := d.readByte()
	if err != nil {
		return value.Null, err
	}
	var env *value.Namespace
	if hasEnv != 0 {
		ev, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		env = ev.Ref().(*value.Namespace)
	}
	n, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	upvals := make([]*value.Upvalue, n)
	for i := uint64(0); i < n; i++ {
		v, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		upvals[i] = d.alloc.NewClosedUpvalue(v)
	}
	f.Env = env
	f.Upvals = upvals
	d.alloc.Resize(64, uint64(64+len(upvals)*8))
	return value.NewFunctionValue(f), nil
}

func (d *Deserializer) decodeFuncDef() (value.Value, error) {
	id, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	fd := d.alloc.NewFuncDef()
	d.objs[uint32(id)] = fd

	mod, err := d.readBytes()
	if err != nil {
		return value.Null, err
	}
	fd.Module = string(mod)
	name, err := d.readBytes()
	if err != nil {
		return value.Null, err
	}
	fd.Name = string(name)
	numParams, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	fd.NumParams = int(numParams)
	vararg, err := d.readByte()
	if err != nil {
		return value.Null, err
	}
	fd.IsVararg = vararg != 0
	maxRegs, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	fd.MaxRegisters = int(maxRegs)

	numConsts, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	fd.Constants = make([]value.Value, numConsts)
	for i := range fd.Constants {
		v, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		fd.Constants[i] = v
	}

	numCode, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	fd.Code = make([]value.Instruction, numCode)
	fd.Lines = make([]int32, numCode)
	for i := range fd.Code {
		op, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		a, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		bOp, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		c, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		line, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		fd.Code[i] = value.Instruction{
			Op: value.Opcode(op),
			A:  int32(unzigzag(a)),
			B:  int32(unzigzag(bOp)),
			C:  int32(unzigzag(c)),
		}
		fd.Lines[i] = int32(unzigzag(line))
	}

	numInner, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	fd.Inner = make([]*value.FuncDef, numInner)
	for i := range fd.Inner {
		v, err := d.Decode()
		if err != nil {
			return value.Null, err
		}
		fd.Inner[i] = v.Ref().(*value.FuncDef)
	}

	numUpvals, err := d.readUvarint()
	if err != nil {
		return value.Null, err
	}
	fd.UpvalDescs = make([]value.UpvalDesc, numUpvals)
	for i := range fd.UpvalDescs {
		fromLocal, err := d.readByte()
		if err != nil {
			return value.Null, err
		}
		idx, err := d.readUvarint()
		if err != nil {
			return value.Null, err
		}
		fd.UpvalDescs[i] = value.UpvalDesc{FromParentLocal: fromLocal != 0, Index: int(idx)}
	}

	return value.NewFuncDefValue(fd), nil
}
