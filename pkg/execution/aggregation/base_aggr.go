package aggregation

import (
	"fmt"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
	"sync"
)

// BaseAggregator holds the bookkeeping shared by every Aggregator: group
// discovery order, the group column's own field values (so the result
// iterator can reconstruct a correctly-typed group column instead of
// re-parsing a string key), and the tuple description of the result. The
// type-specific arithmetic lives behind AggregateCalculator.
type BaseAggregator struct {
	gbField     int
	gbFieldType types.Type
	aField      int
	op          AggregateOp
	tupleDesc   *tuple.TupleDescription
	mutex       sync.RWMutex
	groupOrder  []string
	groupField  map[string]types.Field
	seen        map[string]bool
	calculator  AggregateCalculator
}

func NewBaseAggregator(gbField int, gbFieldType types.Type, aField int, op AggregateOp, calculator AggregateCalculator) (*BaseAggregator, error) {
	if err := calculator.ValidateOperation(op); err != nil {
		return nil, err
	}

	ba := &BaseAggregator{
		gbField:     gbField,
		gbFieldType: gbFieldType,
		aField:      aField,
		op:          op,
		groupField:  make(map[string]types.Field),
		seen:        make(map[string]bool),
		calculator:  calculator,
	}

	td, err := ba.createTupleDesc()
	if err != nil {
		return nil, err
	}
	ba.tupleDesc = td
	return ba, nil
}

func (ba *BaseAggregator) createTupleDesc() (*tuple.TupleDescription, error) {
	resultType := ba.calculator.GetResultType(ba.op)

	if ba.gbField == NoGrouping {
		return tuple.NewTupleDesc([]types.Type{resultType}, []string{ba.op.String()})
	}
	return tuple.NewTupleDesc([]types.Type{ba.gbFieldType, resultType}, []string{"group", ba.op.String()})
}

func (ba *BaseAggregator) GetGroups() []string {
	groups := make([]string, len(ba.groupOrder))
	copy(groups, ba.groupOrder)
	return groups
}

func (ba *BaseAggregator) GetGroupField(groupKey string) types.Field {
	return ba.groupField[groupKey]
}

func (ba *BaseAggregator) GetAggregateValue(groupKey string) (types.Field, error) {
	return ba.calculator.GetFinalValue(groupKey)
}

func (ba *BaseAggregator) GetTupleDesc() *tuple.TupleDescription {
	return ba.tupleDesc
}

func (ba *BaseAggregator) GetGroupingField() int {
	return ba.gbField
}

func (ba *BaseAggregator) RLock()   { ba.mutex.RLock() }
func (ba *BaseAggregator) RUnlock() { ba.mutex.RUnlock() }

func (ba *BaseAggregator) Iterator() tuple.DbIterator {
	return NewAggregatorIterator(ba)
}

// Merge extracts the group key and aggregate field from tup and folds
// them into the calculator's per-group state.
func (ba *BaseAggregator) Merge(tup *tuple.Tuple) error {
	ba.mutex.Lock()
	defer ba.mutex.Unlock()

	groupKey, groupField, err := ba.extractGroupKey(tup)
	if err != nil {
		return err
	}

	aggField, err := tup.GetField(ba.aField)
	if err != nil {
		return fmt.Errorf("failed to get aggregate field: %v", err)
	}
	if aggField == nil {
		return nil
	}

	if !ba.seen[groupKey] {
		ba.calculator.InitializeGroup(groupKey)
		ba.seen[groupKey] = true
		ba.groupOrder = append(ba.groupOrder, groupKey)
		ba.groupField[groupKey] = groupField
	}

	return ba.calculator.UpdateAggregate(groupKey, aggField)
}

const noGroupingKey = "NO_GROUPING"

func (ba *BaseAggregator) extractGroupKey(tup *tuple.Tuple) (string, types.Field, error) {
	if ba.gbField == NoGrouping {
		return noGroupingKey, nil, nil
	}

	groupField, err := tup.GetField(ba.gbField)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get grouping field: %v", err)
	}
	return groupField.String(), groupField, nil
}
