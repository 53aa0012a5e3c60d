package aggregation

import (
	"fmt"
	"storemy/pkg/types"
)

// StringAggregator aggregates a string field, optionally grouped by
// another field. String fields only support Count: there is no natural
// numeric sum or average over strings, and Min/Max lexicographic ordering
// is out of scope here.
type StringAggregator struct {
	*BaseAggregator
}

func NewStringAggregator(gbField int, gbFieldType types.Type, aField int, op AggregateOp) (*StringAggregator, error) {
	calc := &stringCalculator{counts: make(map[string]int32)}
	base, err := NewBaseAggregator(gbField, gbFieldType, aField, op, calc)
	if err != nil {
		return nil, fmt.Errorf("creating string aggregator: %w", err)
	}
	return &StringAggregator{BaseAggregator: base}, nil
}

type stringCalculator struct {
	counts map[string]int32
}

func (c *stringCalculator) ValidateOperation(op AggregateOp) error {
	if op != Count {
		return fmt.Errorf("string aggregator only supports COUNT, got: %s", op.String())
	}
	return nil
}

func (c *stringCalculator) GetResultType(AggregateOp) types.Type {
	return types.IntType
}

func (c *stringCalculator) InitializeGroup(groupKey string) {
	c.counts[groupKey] = 0
}

func (c *stringCalculator) UpdateAggregate(groupKey string, fieldValue types.Field) error {
	if _, ok := fieldValue.(*types.StringField); !ok {
		return fmt.Errorf("aggregate field is not a string")
	}
	c.counts[groupKey]++
	return nil
}

func (c *stringCalculator) GetFinalValue(groupKey string) (types.Field, error) {
	return types.NewIntField(c.counts[groupKey]), nil
}
