package aggregation

import (
	"storemy/pkg/tuple"
	"storemy/pkg/types"
)

// GroupAggregator is the read side of an Aggregator: enough to drive an
// AggregatorIterator over its accumulated groups, without exposing the
// merge path.
type GroupAggregator interface {
	// GetGroups returns every group key seen so far, in the order each
	// group was first encountered.
	GetGroups() []string

	// GetGroupField returns the value of the grouping column for
	// groupKey, or nil for a NoGrouping aggregator.
	GetGroupField(groupKey string) types.Field

	// GetAggregateValue returns the computed aggregate for groupKey.
	GetAggregateValue(groupKey string) (types.Field, error)

	GetTupleDesc() *tuple.TupleDescription

	// GetGroupingField returns the source field index used for
	// grouping, or NoGrouping.
	GetGroupingField() int

	RLock()
	RUnlock()
}
