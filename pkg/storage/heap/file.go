package heap

import (
	"fmt"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/page"
	"storemy/pkg/tuple"
)

// HeapFile is a collection of HeapPages backed by a single OS file. Reads
// and writes are physical I/O and normally reach a HeapFile only through
// the buffer pool; HeapFile itself knows nothing about caching, locking or
// transactions.
type HeapFile struct {
	*page.BaseFile
	tupleDesc *tuple.TupleDescription
}

func NewHeapFile(filename primitives.Filepath, td *tuple.TupleDescription) (*HeapFile, error) {
	base, err := page.NewBaseFile(filename)
	if err != nil {
		return nil, err
	}
	return &HeapFile{BaseFile: base, tupleDesc: td}, nil
}

func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// ReadPage loads pid off disk. Reading a page number the file has never
// allocated is an error, not a blank page: a caller that asks for page 5 of
// a 3-page file has a bug, and returning fabricated empty data would hide
// it rather than surface it.
func (hf *HeapFile) ReadPage(pid page.PageDescriptor) (page.Page, error) {
	if pid.TableID() != hf.GetID() {
		return nil, fmt.Errorf("page %s does not belong to file %d", pid.String(), hf.GetID())
	}

	data, err := hf.ReadPageData(pid.PageNo())
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", pid.String(), err)
	}
	return NewHeapPage(pid, data, hf.tupleDesc)
}

func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return fmt.Errorf("page cannot be nil")
	}
	hp, ok := p.(*HeapPage)
	if !ok {
		return fmt.Errorf("heap file cannot write page of type %T", p)
	}
	return hf.WritePageData(hp.GetID().PageNo(), hp.GetPageData())
}

// AllocateNewPage extends the file by one page and returns it already
// parsed as a blank HeapPage, ready for the caller to AddTuple into.
func (hf *HeapFile) AllocateNewPage() (page.Page, error) {
	pageNo, err := hf.BaseFile.AllocateNewPage()
	if err != nil {
		return nil, err
	}
	pid := page.NewPageDescriptor(hf.GetID(), pageNo)
	return NewHeapPage(pid, make([]byte, page.PageSize), hf.tupleDesc)
}
