package page

import "storemy/pkg/primitives"

// Page is a page resident in the buffer pool. A page is dirty once some
// transaction has modified it; NO-STEAL means eviction never writes a dirty
// page back (only that transaction's commit or the buffer pool's
// FlushAllPages does), so IsDirty doubles as "who last wrote this and
// hasn't committed yet".
type Page interface {
	GetID() PageDescriptor
	IsDirty() *primitives.TransactionID
	MarkDirty(dirty bool, tid *primitives.TransactionID)
	GetPageData() []byte
}

// DbFile is a heap file: the on-disk collection of pages backing one table.
// Every method here performs physical I/O and, outside of tests, should
// only ever be called by the buffer pool, never directly by an iterator.
type DbFile interface {
	ReadPage(pid PageDescriptor) (Page, error)
	WritePage(p Page) error
	AllocateNewPage() (Page, error)
	NumPages() (primitives.PageNumber, error)
	GetID() primitives.TableID
	Close() error
}
