package tuple

import (
	"fmt"
	"storemy/pkg/types"
	"strings"
)

// Tuple is a row: a fixed set of typed field values conforming to a
// TupleDescription, plus an optional RecordID recording where the tuple
// physically lives once it has been read off (or written to) a page.
type Tuple struct {
	TupleDesc *TupleDescription
	fields    []types.Field
	RecordID  *RecordID
}

func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// SetField assigns the ith field, rejecting a value whose type doesn't
// match the schema at that index.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	expected, _ := t.TupleDesc.TypeAtIndex(i)
	if field.GetType() != expected {
		return fmt.Errorf("field type mismatch at index %d: expected %v, got %v", i, expected, field.GetType())
	}
	t.fields[i] = field
	return nil
}

func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// String renders the tuple as tab-separated field values, one line.
func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		if f == nil {
			parts[i] = "null"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "\t")
}

// Combine concatenates the fields of two tuples into one matching the
// combined schema produced by Combine(td1, td2); used by Join.
func Combine(t1, t2 *Tuple) (*Tuple, error) {
	if t1 == nil || t2 == nil {
		return nil, fmt.Errorf("cannot combine nil tuples")
	}
	combined := NewTuple(CombineDesc(t1.TupleDesc, t2.TupleDesc))
	if err := t1.copyFieldsTo(combined, 0); err != nil {
		return nil, err
	}
	if err := t2.copyFieldsTo(combined, t1.TupleDesc.NumFields()); err != nil {
		return nil, err
	}
	return combined, nil
}

func (t *Tuple) copyFieldsTo(target *Tuple, startIndex int) error {
	for i := range t.TupleDesc.NumFields() {
		field, err := t.GetField(i)
		if err != nil {
			return err
		}
		if field != nil {
			if err := target.SetField(startIndex+i, field); err != nil {
				return err
			}
		}
	}
	return nil
}
