package execution

import (
	"fmt"
	"storemy/pkg/catalog"
	"storemy/pkg/memory"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/page"
	"storemy/pkg/tuple"
)

type tupleLister interface {
	GetTuples() []*tuple.Tuple
}

// SequentialScan walks every page of a table in page order, yielding every
// tuple on it before moving on. It never touches the underlying file
// directly — every page comes from the buffer pool, so the scan
// participates in the same locking and caching as every other operator.
type SequentialScan struct {
	base        *BaseIterator
	bufferPool  *memory.BufferPool
	catalog     *catalog.Catalog
	tid         *primitives.TransactionID
	tableID     primitives.TableID
	tupleDesc   *tuple.TupleDescription
	numPages    primitives.PageNumber
	currentPage primitives.PageNumber
	pageTuples  []*tuple.Tuple
	pageIdx     int
}

func NewSeqScan(tid *primitives.TransactionID, tableID primitives.TableID, bp *memory.BufferPool, cat *catalog.Catalog) (*SequentialScan, error) {
	if bp == nil || cat == nil {
		return nil, fmt.Errorf("buffer pool and catalog are required")
	}

	td, err := cat.GetTupleDesc(tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tuple desc for table %d: %w", tableID, err)
	}

	ss := &SequentialScan{
		bufferPool: bp,
		catalog:    cat,
		tid:        tid,
		tableID:    tableID,
		tupleDesc:  td,
	}
	ss.base = NewBaseIterator(ss.readNext)
	return ss, nil
}

func (ss *SequentialScan) Open() error {
	dbFile, err := ss.catalog.GetDbFile(ss.tableID)
	if err != nil {
		return fmt.Errorf("failed to get db file for table %d: %w", ss.tableID, err)
	}
	numPages, err := dbFile.NumPages()
	if err != nil {
		return fmt.Errorf("failed to inspect table %d: %w", ss.tableID, err)
	}

	ss.numPages = numPages
	ss.currentPage = 0
	ss.pageTuples = nil
	ss.pageIdx = 0
	ss.base.MarkOpened()
	return nil
}

// readNext advances page by page, skipping empty pages, until it finds a
// tuple or exhausts the table.
func (ss *SequentialScan) readNext() (*tuple.Tuple, error) {
	for {
		if ss.pageIdx < len(ss.pageTuples) {
			t := ss.pageTuples[ss.pageIdx]
			ss.pageIdx++
			return t, nil
		}

		if ss.currentPage >= ss.numPages {
			return nil, nil
		}

		pid := page.NewPageDescriptor(ss.tableID, ss.currentPage)
		p, err := ss.bufferPool.GetPage(ss.tid, pid, memory.ReadOnly)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %s: %w", pid.String(), err)
		}
		lister, ok := p.(tupleLister)
		if !ok {
			return nil, fmt.Errorf("page %s does not support tuple listing", pid.String())
		}
		ss.pageTuples = lister.GetTuples()
		ss.pageIdx = 0
		ss.currentPage++
	}
}

func (ss *SequentialScan) Rewind() error {
	return ss.Open()
}

func (ss *SequentialScan) GetTupleDesc() *tuple.TupleDescription {
	return ss.tupleDesc
}

func (ss *SequentialScan) Close() error {
	ss.pageTuples = nil
	return ss.base.Close()
}

func (ss *SequentialScan) HasNext() (bool, error) { return ss.base.HasNext() }

func (ss *SequentialScan) Next() (*tuple.Tuple, error) { return ss.base.Next() }
