// Package aggregation implements GROUP BY-style aggregation over the
// iterator model: an Aggregator merges each source tuple into per-group
// state, then hands out an iterator over one result tuple per group.
package aggregation

import (
	"fmt"
	"storemy/pkg/tuple"
	"strings"
)

// NoGrouping marks an aggregation with no GROUP BY clause: every tuple
// merges into a single implicit group.
const NoGrouping = -1

// AggregateOp is the aggregation function applied to a group's values.
type AggregateOp int

const (
	Min AggregateOp = iota
	Max
	Sum
	Avg
	Count
)

func (op AggregateOp) String() string {
	switch op {
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Count:
		return "COUNT"
	default:
		return "UNKNOWN"
	}
}

// ParseAggregateOp converts a case-insensitive operator name into an
// AggregateOp.
func ParseAggregateOp(name string) (AggregateOp, error) {
	switch strings.ToUpper(name) {
	case "MIN":
		return Min, nil
	case "MAX":
		return Max, nil
	case "SUM":
		return Sum, nil
	case "AVG":
		return Avg, nil
	case "COUNT":
		return Count, nil
	default:
		return 0, fmt.Errorf("unknown aggregate operation: %q", name)
	}
}

// Aggregator merges tuples into per-group state and yields one result
// tuple per group. IntegerAggregator and StringAggregator implement it
// for the two field types tuples can carry.
type Aggregator interface {
	Merge(tup *tuple.Tuple) error
	Iterator() tuple.DbIterator
	GetTupleDesc() *tuple.TupleDescription
}
