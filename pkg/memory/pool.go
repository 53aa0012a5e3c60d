package memory

import (
	"fmt"
	"storemy/pkg/catalog"
	"storemy/pkg/concurrency/lock"
	"storemy/pkg/concurrency/transaction"
	"storemy/pkg/logging"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/page"
	"storemy/pkg/tuple"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DefaultMaxPages bounds how many pages the pool will hold in memory at
// once. It is deliberately small so eviction is easy to exercise in tests.
const DefaultMaxPages = 50

// Permissions is the access level a caller requests for a page: shared
// (ReadOnly) or exclusive (ReadWrite) locking.
type Permissions int

const (
	ReadOnly Permissions = iota
	ReadWrite
)

// BufferPool is the single path every transaction uses to reach a page.
// It acquires the appropriate lock, serves cached pages, and evicts under a
// NO-STEAL policy: a dirty page is never written out from under an active
// transaction, so abort never needs to synthesize an undo — it just
// re-reads the clean version off disk. Each transaction's dirty-page set is
// owned by a transaction.Transaction, not the pool itself.
type BufferPool struct {
	catalog     *catalog.Catalog
	lockManager *lock.LockManager
	cache       pageCache
	mutex       deadlock.RWMutex
	txns        map[*primitives.TransactionID]*transaction.Transaction
}

func NewBufferPool(cat *catalog.Catalog, maxPages int) *BufferPool {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &BufferPool{
		catalog:     cat,
		lockManager: lock.NewLockManager(),
		cache:       newLRUPageCache(maxPages),
		txns:        make(map[*primitives.TransactionID]*transaction.Transaction),
	}
}

func (bp *BufferPool) LockManager() *lock.LockManager {
	return bp.lockManager
}

// GetPage is the only way callers should reach a page: it locks first,
// then serves from cache or loads from disk, evicting a clean page if the
// cache is full.
func (bp *BufferPool) GetPage(tid *primitives.TransactionID, pid primitives.PageID, perm Permissions) (page.Page, error) {
	if err := bp.lockManager.LockPage(tid, pid, perm == ReadWrite); err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", pid.String(), err)
	}

	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if p, exists := bp.cache.Get(pid); exists {
		return p, nil
	}

	if bp.cache.Size() >= bp.capacity() {
		if err := bp.evictLocked(); err != nil {
			return nil, err
		}
	}

	dbFile, err := bp.catalog.GetDbFile(pid.TableID())
	if err != nil {
		return nil, fmt.Errorf("table %d not found: %w", pid.TableID(), err)
	}

	pd, ok := pid.(page.PageDescriptor)
	if !ok {
		return nil, fmt.Errorf("unsupported page id implementation %T", pid)
	}

	p, err := dbFile.ReadPage(pd)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s from disk: %w", pid.String(), err)
	}

	if err := bp.cache.Put(pid, p); err != nil {
		return nil, fmt.Errorf("failed to cache page %s: %w", pid.String(), err)
	}

	return p, nil
}

func (bp *BufferPool) capacity() int {
	if c, ok := bp.cache.(*lruPageCache); ok {
		return c.maxSize
	}
	return DefaultMaxPages
}

// evictLocked removes one clean, unlocked page from the cache. Called with
// bp.mutex held. NO-STEAL: a dirty page can only leave the cache via an
// explicit flush, never as a side effect of eviction.
func (bp *BufferPool) evictLocked() error {
	for _, pid := range bp.cache.GetAll() {
		p, exists := bp.cache.Get(pid)
		if !exists {
			continue
		}
		if p.IsDirty() != nil {
			continue
		}
		if bp.lockManager.IsPageLocked(pid) {
			continue
		}
		bp.cache.Remove(pid)
		return nil
	}
	return fmt.Errorf("buffer pool full: every page is dirty or locked (NO-STEAL)")
}

func (bp *BufferPool) txFor(tid *primitives.TransactionID) *transaction.Transaction {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	tx, exists := bp.txns[tid]
	if !exists {
		tx = transaction.NewTransaction(tid)
		bp.txns[tid] = tx
	}
	return tx
}

func (bp *BufferPool) markDirty(tid *primitives.TransactionID, pages ...page.Page) {
	tx := bp.txFor(tid)
	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	for _, p := range pages {
		p.MarkDirty(true, tid)
		bp.cache.Put(p.GetID(), p)
		tx.MarkDirty(p.GetID())
	}
}

// InsertTuple places t into the first page of tableID with a free slot,
// allocating a fresh page if none has room, and marks whatever page it
// lands on dirty for tid.
func (bp *BufferPool) InsertTuple(tid *primitives.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error {
	dbFile, err := bp.catalog.GetDbFile(tableID)
	if err != nil {
		return fmt.Errorf("table %d not found: %w", tableID, err)
	}

	numPages, err := dbFile.NumPages()
	if err != nil {
		return fmt.Errorf("failed to inspect table %d: %w", tableID, err)
	}

	type slotted interface {
		AddTuple(t *tuple.Tuple) error
		EmptySlots() int
	}

	for pn := primitives.PageNumber(0); pn < numPages; pn++ {
		pid := page.NewPageDescriptor(tableID, pn)
		p, err := bp.GetPage(tid, pid, ReadWrite)
		if err != nil {
			return err
		}
		hp, ok := p.(slotted)
		if !ok || hp.EmptySlots() == 0 {
			continue
		}
		if err := hp.AddTuple(t); err != nil {
			return err
		}
		bp.markDirty(tid, p)
		return nil
	}

	newPage, err := dbFile.AllocateNewPage()
	if err != nil {
		return fmt.Errorf("failed to allocate new page in table %d: %w", tableID, err)
	}
	if err := dbFile.WritePage(newPage); err != nil {
		return fmt.Errorf("failed to persist newly allocated page: %w", err)
	}

	p, err := bp.GetPage(tid, newPage.GetID(), ReadWrite)
	if err != nil {
		return err
	}
	hp, ok := p.(slotted)
	if !ok {
		return fmt.Errorf("table %d does not use slotted pages", tableID)
	}
	if err := hp.AddTuple(t); err != nil {
		return err
	}
	bp.markDirty(tid, p)
	return nil
}

// DeleteTuple removes t from the page its RecordID names.
func (bp *BufferPool) DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple) error {
	if t == nil || t.RecordID == nil {
		return fmt.Errorf("tuple has no record id to delete")
	}

	p, err := bp.GetPage(tid, t.RecordID.PageID, ReadWrite)
	if err != nil {
		return fmt.Errorf("failed to get page for delete: %w", err)
	}

	type deletable interface {
		DeleteTuple(t *tuple.Tuple) error
	}
	hp, ok := p.(deletable)
	if !ok {
		return fmt.Errorf("page %s does not support tuple deletion", p.GetID().String())
	}
	if err := hp.DeleteTuple(t); err != nil {
		return err
	}
	bp.markDirty(tid, p)
	return nil
}

// CommitTransaction flushes tid's dirty pages to disk and releases its
// locks. Once flushed the pages are clean and visible to every reader.
func (bp *BufferPool) CommitTransaction(tid *primitives.TransactionID) error {
	bp.mutex.Lock()
	tx, exists := bp.txns[tid]
	if !exists {
		bp.mutex.Unlock()
		bp.lockManager.UnlockAllPages(tid)
		return nil
	}
	pids := tx.DirtyPages()
	delete(bp.txns, tid)
	bp.mutex.Unlock()

	for _, pid := range pids {
		if err := bp.flushPage(pid); err != nil {
			return fmt.Errorf("commit failed while flushing %s: %w", pid.String(), err)
		}
	}

	tx.Finish()
	bp.lockManager.UnlockAllPages(tid)
	return nil
}

// AbortTransaction discards tid's changes. Because dirty pages are never
// stolen out to disk before commit, the on-disk copy is still the
// pre-transaction version, so undo is a fresh read, not a before-image
// restore.
func (bp *BufferPool) AbortTransaction(tid *primitives.TransactionID) error {
	bp.mutex.Lock()
	tx, exists := bp.txns[tid]
	if !exists {
		bp.mutex.Unlock()
		bp.lockManager.UnlockAllPages(tid)
		return nil
	}
	pids := tx.DirtyPages()
	delete(bp.txns, tid)
	bp.mutex.Unlock()

	for _, pid := range pids {
		dbFile, err := bp.catalog.GetDbFile(pid.TableID())
		if err != nil {
			logging.Warn("cannot revert page during abort: table not found", "page", pid.String(), "err", err)
			continue
		}
		pd, ok := pid.(page.PageDescriptor)
		if !ok {
			logging.Warn("cannot revert page during abort: unsupported page id", "page", pid.String())
			continue
		}
		fresh, err := dbFile.ReadPage(pd)
		if err != nil {
			logging.Warn("cannot revert page during abort: re-read failed", "page", pid.String(), "err", err)
			bp.mutex.Lock()
			bp.cache.Remove(pid)
			bp.mutex.Unlock()
			continue
		}
		bp.mutex.Lock()
		bp.cache.Put(pid, fresh)
		bp.mutex.Unlock()
	}

	tx.Finish()
	bp.lockManager.UnlockAllPages(tid)
	return nil
}

func (bp *BufferPool) flushPage(pid primitives.PageID) error {
	bp.mutex.RLock()
	p, exists := bp.cache.Get(pid)
	bp.mutex.RUnlock()
	if !exists || p.IsDirty() == nil {
		return nil
	}

	dbFile, err := bp.catalog.GetDbFile(pid.TableID())
	if err != nil {
		return fmt.Errorf("table for page %s not found: %w", pid.String(), err)
	}
	if err := dbFile.WritePage(p); err != nil {
		return fmt.Errorf("failed to write page %s: %w", pid.String(), err)
	}
	p.MarkDirty(false, nil)

	bp.mutex.Lock()
	bp.cache.Put(pid, p)
	bp.mutex.Unlock()
	return nil
}

// FlushAllPages writes every dirty page in the cache to disk, independent
// of transaction bookkeeping. Used on clean shutdown.
func (bp *BufferPool) FlushAllPages() error {
	bp.mutex.RLock()
	pids := bp.cache.GetAll()
	bp.mutex.RUnlock()

	for _, pid := range pids {
		if err := bp.flushPage(pid); err != nil {
			return err
		}
	}
	return nil
}

func (bp *BufferPool) Close() error {
	return bp.FlushAllPages()
}
