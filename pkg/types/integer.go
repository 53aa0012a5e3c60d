package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"strconv"
)

// IntFieldSize is the on-disk width of an IntField: one 32-bit signed value.
const IntFieldSize = 4

// IntField holds a 32-bit signed integer.
type IntField struct {
	Value int32
}

func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	var buf [IntFieldSize]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(f.Value))
	_, err := w.Write(buf[:])
	return err
}

func (f *IntField) Compare(op Predicate, other Field) (bool, error) {
	o, ok := other.(*IntField)
	if !ok {
		return false, nil
	}
	switch op {
	case Equals:
		return f.Value == o.Value, nil
	case NotEqual:
		return f.Value != o.Value, nil
	case LessThan:
		return f.Value < o.Value, nil
	case LessThanOrEqual:
		return f.Value <= o.Value, nil
	case GreaterThan:
		return f.Value > o.Value, nil
	case GreaterThanOrEqual:
		return f.Value >= o.Value, nil
	default:
		return false, nil
	}
}

func (f *IntField) GetType() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(int64(f.Value), 10)
}

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	return ok && f.Value == o.Value
}

func (f *IntField) Hash() (uint32, error) {
	h := fnv.New32a()
	var buf [IntFieldSize]byte
	binary.BigEndian.PutUint32(buf[:], uint32(f.Value))
	_, _ = h.Write(buf[:])
	return h.Sum32(), nil
}

// ReadIntField parses an IntFieldSize-byte buffer produced by Serialize.
func ReadIntField(buf []byte) (*IntField, error) {
	if len(buf) < IntFieldSize {
		return nil, io.ErrUnexpectedEOF
	}
	return &IntField{Value: int32(binary.LittleEndian.Uint32(buf))}, nil
}
