package execution

import (
	"fmt"
	"storemy/pkg/memory"
	"storemy/pkg/primitives"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
)

// Insert pulls every tuple out of its child and writes each one into the
// buffer pool under tableID, on behalf of tid. It is a one-shot iterator:
// the whole child is drained during the first read and a single tuple carrying the
// number of rows inserted is yielded to the caller.
type Insert struct {
	base       *BaseIterator
	bufferPool *memory.BufferPool
	child      DbIterator
	tid        *primitives.TransactionID
	tableID    primitives.TableID
	tupleDesc  *tuple.TupleDescription
	done       bool
}

func NewInsert(tid *primitives.TransactionID, child DbIterator, tableID primitives.TableID, bp *memory.BufferPool) (*Insert, error) {
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

	ins := &Insert{
		bufferPool: bp,
		child:      child,
		tid:        tid,
		tableID:    tableID,
		tupleDesc:  td,
	}
	ins.base = NewBaseIterator(ins.readNext)
	return ins, nil
}

func (ins *Insert) Open() error {
	if err := ins.child.Open(); err != nil {
		return fmt.Errorf("failed to open child: %w", err)
	}
	ins.done = false
	ins.base.MarkOpened()
	return nil
}

// readNext drains the child on its first call and reports the number of
// rows inserted; every call after that reports end of data.
func (ins *Insert) readNext() (*tuple.Tuple, error) {
	if ins.done {
		return nil, nil
	}
	ins.done = true

	var count int32
	for {
		hasNext, err := ins.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			break
		}

		row, err := ins.child.Next()
		if err != nil {
			return nil, err
		}
		if err := ins.bufferPool.InsertTuple(ins.tid, ins.tableID, row); err != nil {
			return nil, fmt.Errorf("failed to insert row: %w", err)
		}
		count++
	}

	result := tuple.NewTuple(ins.tupleDesc)
	if err := result.SetField(0, types.NewIntField(count)); err != nil {
		return nil, err
	}
	return result, nil
}

func (ins *Insert) Rewind() error {
	if err := ins.child.Rewind(); err != nil {
		return err
	}
	ins.done = false
	ins.base.ClearCache()
	return nil
}

func (ins *Insert) Close() error {
	ins.child.Close()
	return ins.base.Close()
}

func (ins *Insert) GetTupleDesc() *tuple.TupleDescription { return ins.tupleDesc }

func (ins *Insert) HasNext() (bool, error) { return ins.base.HasNext() }

func (ins *Insert) Next() (*tuple.Tuple, error) { return ins.base.Next() }
