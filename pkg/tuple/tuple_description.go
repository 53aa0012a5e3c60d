// Package tuple defines rows (Tuple), their schema (TupleDescription) and
// their storage location (RecordID), plus the shared pull-based iterator
// contract every scan and operator in pkg/execution implements.
package tuple

import (
	"fmt"
	"storemy/pkg/types"
	"strings"
)

// TupleDescription is a table's schema: an ordered list of field types with
// optional "alias.field" names. Two descriptions with the same types in the
// same order are Equals regardless of names, since names exist only for
// column lookup by SeqScan and Join, not for structural identity.
type TupleDescription struct {
	Types      []types.Type
	FieldNames []string
}

// NewTupleDesc builds a schema from parallel type and name slices. Passing a
// nil fieldNames leaves every column unnamed.
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, fmt.Errorf("tuple description must have at least one field")
	}
	if fieldNames != nil && len(fieldNames) != len(fieldTypes) {
		return nil, fmt.Errorf("field names length (%d) must match field types length (%d)",
			len(fieldNames), len(fieldTypes))
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{Types: typesCopy, FieldNames: namesCopy}, nil
}

func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	if td.FieldNames == nil {
		return "", nil
	}
	return td.FieldNames[i], nil
}

func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// TupleSize returns the fixed on-disk width of a tuple with this schema, the
// sum of each field's fixed width.
func (td *TupleDescription) TupleSize() uint32 {
	var size uint32
	for _, ft := range td.Types {
		size += ft.Size()
	}
	return size
}

// Equals compares field types in order; names are ignored.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil || len(td.Types) != len(other.Types) {
		return false
	}
	for i, ft := range td.Types {
		if ft != other.Types[i] {
			return false
		}
	}
	return true
}

func (td *TupleDescription) String() string {
	parts := make([]string, len(td.Types))
	for i, ft := range td.Types {
		name := "null"
		if td.FieldNames != nil && i < len(td.FieldNames) {
			name = td.FieldNames[i]
		}
		parts[i] = fmt.Sprintf("%s(%s)", ft.String(), name)
	}
	return strings.Join(parts, ",")
}

// FindFieldIndex looks a field up by its "alias.field" name.
func (td *TupleDescription) FindFieldIndex(fieldName string) (int, error) {
	for i := range td.NumFields() {
		if name, _ := td.GetFieldName(i); name == fieldName {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %s not found", fieldName)
}

// CombineDesc concatenates two schemas, left fields first, for use by Join.
func CombineDesc(td1, td2 *TupleDescription) *TupleDescription {
	if td1 == nil {
		return td2
	}
	if td2 == nil {
		return td1
	}

	newTypes := make([]types.Type, 0, len(td1.Types)+len(td2.Types))
	newTypes = append(newTypes, td1.Types...)
	newTypes = append(newTypes, td2.Types...)

	var newNames []string
	if td1.FieldNames != nil || td2.FieldNames != nil {
		newNames = make([]string, 0, len(newTypes))
		newNames = append(newNames, padNames(td1)...)
		newNames = append(newNames, padNames(td2)...)
	}

	combined, _ := NewTupleDesc(newTypes, newNames)
	return combined
}

func padNames(td *TupleDescription) []string {
	if td.FieldNames != nil {
		return td.FieldNames
	}
	return make([]string, len(td.Types))
}
