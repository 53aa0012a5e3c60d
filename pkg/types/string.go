package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"strings"
)

// StringCapacity is the maximum number of bytes a StringField may hold.
// StringFieldSize is the field's total on-disk width: a 4-byte big-endian
// length prefix followed by StringCapacity bytes of payload, zero-padded
// past the logical length. Fixing the width lets HeapPage compute its slot
// count from the schema alone, the same way IntField does.
const (
	StringCapacity  = 128
	StringFieldSize = 4 + StringCapacity
)

// StringField holds a string truncated to StringCapacity bytes.
type StringField struct {
	Value string
}

// NewStringField truncates value to StringCapacity bytes if necessary.
func NewStringField(value string) *StringField {
	if len(value) > StringCapacity {
		value = value[:StringCapacity]
	}
	return &StringField{Value: value}
}

func (f *StringField) Serialize(w io.Writer) error {
	length := len(f.Value)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(length))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}

	payload := make([]byte, StringCapacity)
	copy(payload, f.Value)
	_, err := w.Write(payload)
	return err
}

func (f *StringField) Compare(op Predicate, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok {
		return false, nil
	}
	cmp := strings.Compare(f.Value, o.Value)
	switch op {
	case Equals:
		return cmp == 0, nil
	case NotEqual:
		return cmp != 0, nil
	case LessThan:
		return cmp < 0, nil
	case LessThanOrEqual:
		return cmp <= 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case GreaterThanOrEqual:
		return cmp >= 0, nil
	case Like:
		return strings.Contains(f.Value, o.Value), nil
	default:
		return false, nil
	}
}

func (f *StringField) GetType() Type {
	return StringType
}

func (f *StringField) String() string {
	return f.Value
}

func (f *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	return ok && f.Value == o.Value
}

func (f *StringField) Hash() (uint32, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(f.Value))
	return h.Sum32(), nil
}

// ReadStringField parses a StringFieldSize-byte buffer produced by Serialize.
func ReadStringField(buf []byte) (*StringField, error) {
	if len(buf) < StringFieldSize {
		return nil, io.ErrUnexpectedEOF
	}
	length := binary.BigEndian.Uint32(buf[0:4])
	if length > StringCapacity {
		return nil, io.ErrUnexpectedEOF
	}
	return &StringField{Value: string(buf[4 : 4+length])}, nil
}
