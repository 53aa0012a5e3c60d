package execution

import (
	"fmt"
	"storemy/pkg/tuple"
)

// Filter wraps a child iterator and yields only the rows that satisfy a
// predicate. It pulls from the child lazily, one row at a time, and never
// buffers more than the single row it is currently testing.
type Filter struct {
	base      *BaseIterator
	predicate *Predicate
	child     DbIterator
}

// NewFilter builds a Filter over child, keeping only rows where predicate
// evaluates true.
func NewFilter(predicate *Predicate, child DbIterator) (*Filter, error) {
	if predicate == nil {
		return nil, fmt.Errorf("filter predicate cannot be nil")
	}
	if child == nil {
		return nil, fmt.Errorf("filter child cannot be nil")
	}

	f := &Filter{predicate: predicate, child: child}
	f.base = NewBaseIterator(f.next)
	return f, nil
}

func (f *Filter) Open() error {
	if err := f.child.Open(); err != nil {
		return fmt.Errorf("opening filter child: %w", err)
	}
	f.base.MarkOpened()
	return nil
}

func (f *Filter) Rewind() error {
	if err := f.child.Rewind(); err != nil {
		return err
	}
	f.base.ClearCache()
	return nil
}

func (f *Filter) Close() error {
	if f.child != nil {
		f.child.Close()
	}
	return f.base.Close()
}

// GetTupleDesc returns the child's schema unchanged; filtering drops rows,
// not columns.
func (f *Filter) GetTupleDesc() *tuple.TupleDescription { return f.child.GetTupleDesc() }

func (f *Filter) HasNext() (bool, error)      { return f.base.HasNext() }
func (f *Filter) Next() (*tuple.Tuple, error) { return f.base.Next() }

// next pulls rows from the child until one passes the predicate or the
// child runs dry.
func (f *Filter) next() (*tuple.Tuple, error) {
	for {
		row, err := f.pullChild()
		if err != nil || row == nil {
			return nil, err
		}

		ok, err := f.predicate.Filter(row)
		if err != nil {
			return nil, fmt.Errorf("evaluating filter predicate: %w", err)
		}
		if ok {
			return row, nil
		}
	}
}

// pullChild fetches the next row from the child, or nil once it's exhausted.
func (f *Filter) pullChild() (*tuple.Tuple, error) {
	hasNext, err := f.child.HasNext()
	if err != nil {
		return nil, fmt.Errorf("checking filter child: %w", err)
	}
	if !hasNext {
		return nil, nil
	}
	return f.child.Next()
}
