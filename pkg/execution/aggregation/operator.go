package aggregation

import (
	"fmt"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
)

// AggregateOperator drains its source child on Open, folding every tuple
// into an Aggregator, then hands out one result tuple per group.
type AggregateOperator struct {
	source        tuple.DbIterator
	aggregator    Aggregator
	aggIterator   tuple.DbIterator
	tupleDesc     *tuple.TupleDescription
	opened        bool
	nextTuple     *tuple.Tuple
	hasNextCalled bool
}

// NewAggregateOperator builds an aggregate over source, aggregating the
// field at aField with op and grouping by gField (NoGrouping for none).
// The aggregator implementation is picked from aField's type: IntType
// gets an IntegerAggregator, StringType a StringAggregator restricted to
// COUNT.
func NewAggregateOperator(source tuple.DbIterator, aField, gField int, op AggregateOp) (*AggregateOperator, error) {
	if source == nil {
		return nil, fmt.Errorf("source iterator cannot be nil")
	}

	sourceDesc := source.GetTupleDesc()
	if sourceDesc == nil {
		return nil, fmt.Errorf("source tuple description cannot be nil")
	}
	if aField < 0 || aField >= len(sourceDesc.Types) {
		return nil, fmt.Errorf("invalid aggregate field index: %d", aField)
	}
	if gField != NoGrouping && (gField < 0 || gField >= len(sourceDesc.Types)) {
		return nil, fmt.Errorf("invalid group field index: %d", gField)
	}

	var gbFieldType types.Type
	if gField != NoGrouping {
		gbFieldType = sourceDesc.Types[gField]
	}

	aggOp := &AggregateOperator{source: source}

	switch aggFieldType := sourceDesc.Types[aField]; aggFieldType {
	case types.IntType:
		agg, err := NewIntAggregator(gField, gbFieldType, aField, op)
		if err != nil {
			return nil, err
		}
		aggOp.aggregator = agg
	case types.StringType:
		agg, err := NewStringAggregator(gField, gbFieldType, aField, op)
		if err != nil {
			return nil, err
		}
		aggOp.aggregator = agg
	default:
		return nil, fmt.Errorf("unsupported field type for aggregation: %v", aggFieldType)
	}

	aggOp.tupleDesc = aggOp.aggregator.GetTupleDesc()
	return aggOp, nil
}

func (agg *AggregateOperator) Open() error {
	if agg.opened {
		return fmt.Errorf("aggregate operator already opened")
	}

	if err := agg.source.Open(); err != nil {
		return fmt.Errorf("failed to open source iterator: %v", err)
	}

	for {
		hasNext, err := agg.source.HasNext()
		if err != nil {
			return fmt.Errorf("error checking source iterator: %v", err)
		}
		if !hasNext {
			break
		}

		tup, err := agg.source.Next()
		if err != nil {
			return fmt.Errorf("error reading from source iterator: %v", err)
		}
		if err := agg.aggregator.Merge(tup); err != nil {
			return fmt.Errorf("error merging tuple: %v", err)
		}
	}

	agg.aggIterator = agg.aggregator.Iterator()
	if err := agg.aggIterator.Open(); err != nil {
		return fmt.Errorf("failed to open aggregate iterator: %v", err)
	}

	agg.opened = true
	agg.nextTuple = nil
	agg.hasNextCalled = false
	return nil
}

// Rewind resets iteration back to the first group. The aggregate values
// themselves were computed once during Open and don't change: rewinding
// the source would double-count every group, so only the result iterator
// is reset.
func (agg *AggregateOperator) Rewind() error {
	if !agg.opened {
		return fmt.Errorf("aggregate operator not opened")
	}

	agg.nextTuple = nil
	agg.hasNextCalled = false
	return agg.aggIterator.Rewind()
}

func (agg *AggregateOperator) Close() error {
	if agg.source != nil {
		agg.source.Close()
	}
	if agg.aggIterator != nil {
		agg.aggIterator.Close()
	}
	agg.opened = false
	agg.nextTuple = nil
	agg.hasNextCalled = false
	return nil
}

func (agg *AggregateOperator) GetTupleDesc() *tuple.TupleDescription {
	return agg.tupleDesc
}

func (agg *AggregateOperator) HasNext() (bool, error) {
	if !agg.opened {
		return false, fmt.Errorf("aggregate operator not opened")
	}

	if !agg.hasNextCalled {
		var err error
		agg.nextTuple, err = agg.readNext()
		if err != nil {
			return false, fmt.Errorf("error reading next tuple: %v", err)
		}
		agg.hasNextCalled = true
	}
	return agg.nextTuple != nil, nil
}

func (agg *AggregateOperator) Next() (*tuple.Tuple, error) {
	if !agg.opened {
		return nil, fmt.Errorf("aggregate operator not opened")
	}

	if !agg.hasNextCalled {
		hasNext, err := agg.HasNext()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			return nil, fmt.Errorf("no more tuples available")
		}
	}

	result := agg.nextTuple
	agg.nextTuple = nil
	agg.hasNextCalled = false
	if result == nil {
		return nil, fmt.Errorf("no more tuples available")
	}
	return result, nil
}

func (agg *AggregateOperator) readNext() (*tuple.Tuple, error) {
	if agg.aggIterator == nil {
		return nil, nil
	}

	hasNext, err := agg.aggIterator.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, nil
	}
	return agg.aggIterator.Next()
}
