package execution

import (
	"fmt"
	"storemy/pkg/memory"
	"storemy/pkg/primitives"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
)

// Delete pulls every tuple out of its child and removes each one from the
// page its RecordID names, on behalf of tid. Like Insert, it is a one-shot
// iterator: the child is drained during the first read and a single tuple
// carrying the number of rows deleted is yielded.
type Delete struct {
	base       *BaseIterator
	bufferPool *memory.BufferPool
	child      DbIterator
	tid        *primitives.TransactionID
	tupleDesc  *tuple.TupleDescription
	done       bool
}

func NewDelete(tid *primitives.TransactionID, child DbIterator, bp *memory.BufferPool) (*Delete, error) {
	if child == nil {
		return nil, fmt.Errorf("child operator cannot be nil")
	}
	if bp == nil {
		return nil, fmt.Errorf("buffer pool is required")
	}

	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"count"})
	if err != nil {
		return nil, err
	}

	del := &Delete{
		bufferPool: bp,
		child:      child,
		tid:        tid,
		tupleDesc:  td,
	}
	del.base = NewBaseIterator(del.readNext)
	return del, nil
}

func (del *Delete) Open() error {
	if err := del.child.Open(); err != nil {
		return fmt.Errorf("failed to open child: %w", err)
	}
	del.done = false
	del.base.MarkOpened()
	return nil
}

func (del *Delete) readNext() (*tuple.Tuple, error) {
	if del.done {
		return nil, nil
	}
	del.done = true

	var count int32
	for {
		hasNext, err := del.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			break
		}

		row, err := del.child.Next()
		if err != nil {
			return nil, err
		}
		if err := del.bufferPool.DeleteTuple(del.tid, row); err != nil {
			return nil, fmt.Errorf("failed to delete row: %w", err)
		}
		count++
	}

	result := tuple.NewTuple(del.tupleDesc)
	if err := result.SetField(0, types.NewIntField(count)); err != nil {
		return nil, err
	}
	return result, nil
}

func (del *Delete) Rewind() error {
	if err := del.child.Rewind(); err != nil {
		return err
	}
	del.done = false
	del.base.ClearCache()
	return nil
}

func (del *Delete) Close() error {
	del.child.Close()
	return del.base.Close()
}

func (del *Delete) GetTupleDesc() *tuple.TupleDescription { return del.tupleDesc }

func (del *Delete) HasNext() (bool, error) { return del.base.HasNext() }

func (del *Delete) Next() (*tuple.Tuple, error) { return del.base.Next() }
