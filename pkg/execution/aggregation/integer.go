package aggregation

import (
	"fmt"
	"storemy/pkg/types"
)

// IntegerAggregator aggregates an int field, optionally grouped by another
// field. Every operation in AggregateOp is supported; Avg is integer
// division, truncated toward zero like the rest of this engine's int
// arithmetic.
type IntegerAggregator struct {
	*BaseAggregator
}

func NewIntAggregator(gbField int, gbFieldType types.Type, aField int, op AggregateOp) (*IntegerAggregator, error) {
	calc := &intCalculator{op: op, values: make(map[string]int32), counts: make(map[string]int32)}
	base, err := NewBaseAggregator(gbField, gbFieldType, aField, op, calc)
	if err != nil {
		return nil, fmt.Errorf("creating integer aggregator: %w", err)
	}
	return &IntegerAggregator{BaseAggregator: base}, nil
}

// intCalculator implements AggregateCalculator for int fields. values
// holds the running Min/Max/Sum(/Avg numerator); counts tracks how many
// tuples have landed in each group, needed for Avg's division and to
// tell a fresh group from one already seeded.
type intCalculator struct {
	op     AggregateOp
	values map[string]int32
	counts map[string]int32
}

func (c *intCalculator) ValidateOperation(op AggregateOp) error {
	switch op {
	case Min, Max, Sum, Avg, Count:
		return nil
	default:
		return fmt.Errorf("integer aggregator does not support operation: %s", op.String())
	}
}

func (c *intCalculator) GetResultType(AggregateOp) types.Type {
	return types.IntType
}

func (c *intCalculator) InitializeGroup(groupKey string) {
	c.counts[groupKey] = 0
}

func (c *intCalculator) UpdateAggregate(groupKey string, fieldValue types.Field) error {
	intField, ok := fieldValue.(*types.IntField)
	if !ok {
		return fmt.Errorf("aggregate field is not an integer")
	}
	v := intField.Value
	first := c.counts[groupKey] == 0

	switch c.op {
	case Min:
		if first || v < c.values[groupKey] {
			c.values[groupKey] = v
		}
	case Max:
		if first || v > c.values[groupKey] {
			c.values[groupKey] = v
		}
	case Sum, Avg:
		c.values[groupKey] += v
	case Count:
		c.values[groupKey]++
	default:
		return fmt.Errorf("unsupported operation: %v", c.op)
	}

	c.counts[groupKey]++
	return nil
}

func (c *intCalculator) GetFinalValue(groupKey string) (types.Field, error) {
	if c.op == Avg {
		count := c.counts[groupKey]
		if count == 0 {
			return types.NewIntField(0), nil
		}
		return types.NewIntField(c.values[groupKey] / count), nil
	}
	return types.NewIntField(c.values[groupKey]), nil
}

