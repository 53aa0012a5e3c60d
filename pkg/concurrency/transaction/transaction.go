// Package transaction wraps a transaction identity with the bookkeeping the
// buffer pool needs to commit or abort it: which pages it has dirtied.
package transaction

import (
	"fmt"
	"storemy/pkg/primitives"
	"sync"
)

// Transaction is a running unit of work: an identity plus the set of pages
// it has modified. The buffer pool consults DirtyPages on commit (flush
// them) and on abort (discard them by re-reading from disk).
type Transaction struct {
	tid    *primitives.TransactionID
	mutex  sync.Mutex
	dirty  map[primitives.PageID]bool
	active bool
}

// NewTransaction wraps tid, an identity already handed out by
// primitives.NewTransactionID, with the dirty-page bookkeeping the buffer
// pool needs to commit or abort it.
func NewTransaction(tid *primitives.TransactionID) *Transaction {
	return &Transaction{
		tid:    tid,
		dirty:  make(map[primitives.PageID]bool),
		active: true,
	}
}

func (t *Transaction) ID() *primitives.TransactionID {
	return t.tid
}

func (t *Transaction) IsActive() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.active
}

// MarkDirty records that pid was modified by this transaction.
func (t *Transaction) MarkDirty(pid primitives.PageID) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.dirty[pid] = true
}

// DirtyPages returns every page this transaction has modified.
func (t *Transaction) DirtyPages() []primitives.PageID {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	pages := make([]primitives.PageID, 0, len(t.dirty))
	for pid := range t.dirty {
		pages = append(pages, pid)
	}
	return pages
}

// Finish marks the transaction complete, whether by commit or abort. Once
// finished it cannot be reused.
func (t *Transaction) Finish() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.active = false
	t.dirty = make(map[primitives.PageID]bool)
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction(%s)", t.tid)
}
