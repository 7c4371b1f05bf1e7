package value

import (
	"encoding/binary"
	"math"
)

// MemblockType is the element type code constraining a Memblock's typed
// indexed get/set conversions.
type MemblockType uint8

const (
	MemI8 MemblockType = iota
	MemU8
	MemI16
	MemU16
	MemI32
	MemU32
	MemI64
	MemU64
	MemF32
	MemF64
)

func (t MemblockType) ElemSize() int {
	switch t {
	case MemI8, MemU8:
		return 1
	case MemI16, MemU16:
		return 2
	case MemI32, MemU32, MemF32:
		return 4
	default:
		return 8
	}
}

// Memblock is a mutable typed raw-byte buffer used for binary I/O and
// numeric packing by script code.
type Memblock struct {
	Header
	Type MemblockType
	data []byte
}

func NewMemblock(t MemblockType, length int) *Memblock {
	return &Memblock{Type: t, data: make([]byte, length*t.ElemSize())}
}

func (m *Memblock) GCHeader() *Header          { return &m.Header }
func (m *Memblock) Traverse(visit func(Value)) {} // raw bytes hold no Values
func (m *Memblock) TypeName() string           { return "memblock" }
func (m *Memblock) ValueKind() Kind            { return KindMemblock }

func (m *Memblock) Len() int { return len(m.data) / m.Type.ElemSize() }

// Resize preserves contents up to the smaller of the old and new length,
// zero-filling any growth.
func (m *Memblock) Resize(length int) {
	newBytes := make([]byte, length*m.Type.ElemSize())
	copy(newBytes, m.data)
	m.data = newBytes
}

func (m *Memblock) index(i int64) (int, bool) {
	n := int64(m.Len())
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return int(i) * m.Type.ElemSize(), true
}

// At loads element i and returns it as an Int (integer element types) or
// Float (f32/f64), matching the type-code-constrained conversion rule.
func (m *Memblock) At(i int64) (Value, bool) {
	off, ok := m.index(i)
	if !ok {
		return Null, false
	}
	b := m.data[off : off+m.Type.ElemSize()]
	switch m.Type {
	case MemI8:
		return Int(int64(int8(b[0]))), true
	case MemU8:
		return Int(int64(b[0])), true
	case MemI16:
		return Int(int64(int16(binary.LittleEndian.Uint16(b)))), true
	case MemU16:
		return Int(int64(binary.LittleEndian.Uint16(b))), true
	case MemI32:
		return Int(int64(int32(binary.LittleEndian.Uint32(b)))), true
	case MemU32:
		return Int(int64(binary.LittleEndian.Uint32(b))), true
	case MemI64:
		return Int(int64(binary.LittleEndian.Uint64(b))), true
	case MemU64:
		return Int(int64(binary.LittleEndian.Uint64(b))), true
	case MemF32:
		return Float(float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))), true
	case MemF64:
		return Float(math.Float64frombits(binary.LittleEndian.Uint64(b))), true
	}
	return Null, false
}

// SetAt stores v (Int or Float, converted to the block's element type)
// at index i.
func (m *Memblock) SetAt(i int64, v Value) bool {
	off, ok := m.index(i)
	if !ok {
		return false
	}
	b := m.data[off : off+m.Type.ElemSize()]
	var iv int64
	var fv float64
	switch v.Kind() {
	case KindInt:
		iv = v.AsInt()
		fv = float64(iv)
	case KindFloat:
		fv = v.AsFloat()
		iv = int64(fv)
	default:
		return false
	}
	switch m.Type {
	case MemI8, MemU8:
		b[0] = byte(iv)
	case MemI16, MemU16:
		binary.LittleEndian.PutUint16(b, uint16(iv))
	case MemI32, MemU32:
		binary.LittleEndian.PutUint32(b, uint32(iv))
	case MemI64, MemU64:
		binary.LittleEndian.PutUint64(b, uint64(iv))
	case MemF32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(fv)))
	case MemF64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(fv))
	}
	return true
}

func (m *Memblock) Bytes() []byte { return m.data }

func NewMemblockValue(m *Memblock) Value { return fromObject(KindMemblock, m) }
