// Package types defines the tagged-variant field values stored in tuples:
// their static type tag, the comparison predicates usable against them, and
// the two concrete field implementations (32-bit integers and fixed-width
// strings) the storage engine understands.
package types

// Type tags the runtime kind of a Field. Only two variants exist; there is
// no null type. A tuple field that has never been set is a nil Field.
type Type int

const (
	IntType Type = iota
	StringType
)

func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// Size returns the fixed on-disk width of a field of this type, in bytes.
// Both variants are fixed-width so that a HeapPage can compute its slot
// count without inspecting any tuple.
func (t Type) Size() uint32 {
	switch t {
	case IntType:
		return IntFieldSize
	case StringType:
		return StringFieldSize
	default:
		return 0
	}
}

// Predicate names a comparison operator usable in Filter and Join.
type Predicate int

const (
	Equals Predicate = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Like
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case Like:
		return "LIKE"
	default:
		return "UNKNOWN"
	}
}
