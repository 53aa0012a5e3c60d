package aggregation

import (
	"storemy/pkg/tuple"
	"storemy/pkg/types"
	"testing"
)

func TestStringAggregatorCountNoGrouping(t *testing.T) {
	td, _ := tuple.NewTupleDesc([]types.Type{types.StringType}, []string{"name"})
	agg, err := NewStringAggregator(NoGrouping, types.StringType, 0, Count)
	if err != nil {
		t.Fatalf("NewStringAggregator: %v", err)
	}

	for _, name := range []string{"alice", "bob", "carol"} {
		row := tuple.NewTuple(td)
		row.SetField(0, types.NewStringField(name))
		if err := agg.Merge(row); err != nil {
			t.Fatalf("Merge: %v", err)
		}
	}

	value, err := agg.GetAggregateValue(noGroupingKey)
	if err != nil {
		t.Fatalf("GetAggregateValue: %v", err)
	}
	if value.(*types.IntField).Value != 3 {
		t.Errorf("COUNT = %d, want 3", value.(*types.IntField).Value)
	}
}

func TestStringAggregatorGrouped(t *testing.T) {
	td, _ := tuple.NewTupleDesc([]types.Type{types.StringType, types.StringType}, []string{"dept", "name"})
	agg, err := NewStringAggregator(0, types.StringType, 1, Count)
	if err != nil {
		t.Fatalf("NewStringAggregator: %v", err)
	}

	rows := [][2]string{{"eng", "alice"}, {"eng", "bob"}, {"sales", "carol"}}
	for _, r := range rows {
		row := tuple.NewTuple(td)
		row.SetField(0, types.NewStringField(r[0]))
		row.SetField(1, types.NewStringField(r[1]))
		agg.Merge(row)
	}

	groups := agg.GetGroups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	for _, g := range groups {
		field := agg.GetGroupField(g)
		if field == nil {
			t.Fatalf("expected a group field for key %q", g)
		}
		if _, ok := field.(*types.StringField); !ok {
			t.Errorf("expected group field to be a StringField, got %T", field)
		}
	}
}

func TestStringAggregatorRejectsNonCount(t *testing.T) {
	for _, op := range []AggregateOp{Sum, Avg, Min, Max} {
		if _, err := NewStringAggregator(NoGrouping, types.StringType, 0, op); err == nil {
			t.Errorf("expected %s to be rejected for string aggregation", op.String())
		}
	}
}
