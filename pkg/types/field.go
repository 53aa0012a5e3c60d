package types

import "io"

// Field is a single typed value stored in a tuple. There are exactly two
// implementations, IntField and StringField; callers type-switch or type-
// assert on GetType() rather than on the concrete type.
type Field interface {
	// Serialize writes the field's fixed-width on-disk representation.
	Serialize(w io.Writer) error

	// Compare evaluates op between this field and other. Comparing across
	// field types (e.g. int against string) reports false rather than
	// erroring, matching how a Filter treats a type-mismatched predicate.
	Compare(op Predicate, other Field) (bool, error)

	GetType() Type

	String() string

	Equals(other Field) bool

	// Hash returns a value suitable for grouping equal fields together,
	// used by Aggregate to bucket by grouping field.
	Hash() (uint32, error)
}
