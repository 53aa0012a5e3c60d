package lock

import (
	"fmt"
	dberror "storemy/pkg/error"
	"storemy/pkg/primitives"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// LockManager grants and tracks shared/exclusive page locks under
// two-phase locking. Acquisition never blocks on a channel: a caller that
// cannot be granted a lock immediately is parked on that page's wait line
// and the goroutine retries on a backoff, checking on every pass whether
// it is itself part of a waits-for cycle, so a deadlock is caught within
// one retry interval rather than left to a timeout.
type LockManager struct {
	locks      map[primitives.PageID]*pageHolders                   // page -> who holds it
	held       map[*primitives.TransactionID]map[primitives.PageID]LockType // transaction -> its own view of what it holds
	waitingFor map[*primitives.TransactionID][]primitives.PageID     // transaction -> pages it's blocked on
	waitLine   map[primitives.PageID][]waiter                        // page -> requests parked behind current holders
	depGraph   *DependencyGraph
	mutex      deadlock.RWMutex // wraps sync.RWMutex with a background hold-time checker
}

func NewLockManager() *LockManager {
	return &LockManager{
		locks:      make(map[primitives.PageID]*pageHolders),
		held:       make(map[*primitives.TransactionID]map[primitives.PageID]LockType),
		waitingFor: make(map[*primitives.TransactionID][]primitives.PageID),
		waitLine:   make(map[primitives.PageID][]waiter),
		depGraph:   NewDependencyGraph(),
	}
}

// LockPage acquires a shared (exclusive=false) or exclusive lock on pid for
// tid, blocking the calling goroutine until the lock is granted, a deadlock
// is detected, or the retry budget is exhausted.
func (lm *LockManager) LockPage(tid *primitives.TransactionID, pid primitives.PageID, exclusive bool) error {
	if tid == nil {
		return fmt.Errorf("transaction ID cannot be nil")
	}

	want := SharedLock
	if exclusive {
		want = ExclusiveLock
	}

	lm.mutex.RLock()
	satisfied := lm.satisfies(tid, pid, want)
	lm.mutex.RUnlock()
	if satisfied {
		return nil
	}

	return lm.acquire(tid, pid, want)
}

// satisfies reports whether tid's current grant on pid already covers a
// request for want (an exclusive holder needs nothing more; a shared
// holder is only satisfied by another shared request).
func (lm *LockManager) satisfies(tid *primitives.TransactionID, pid primitives.PageID, want LockType) bool {
	held, ok := lm.locks[pid]
	if !ok {
		return false
	}
	current, ok := held.lockTypeOf(tid)
	if !ok {
		return false
	}
	return current == ExclusiveLock || want == SharedLock
}

// acquire runs the grant/park/retry loop until tid gets lockType on pid.
func (lm *LockManager) acquire(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) error {
	const (
		maxAttempts = 1000
		baseDelay   = time.Millisecond
		maxDelay    = 100 * time.Millisecond
	)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		lm.mutex.Lock()

		if lm.satisfies(tid, pid, lockType) {
			lm.mutex.Unlock()
			return nil
		}

		if lockType == ExclusiveLock && lm.tryUpgrade(tid, pid) {
			lm.mutex.Unlock()
			return nil
		}

		if lm.holdersFor(pid).canGrant(tid, lockType) {
			lm.grantLock(tid, pid, lockType)
			lm.depGraph.RemoveTransaction(tid)
			lm.mutex.Unlock()
			return nil
		}

		lm.park(tid, pid, lockType)
		lm.recordWait(tid, pid, lockType)

		if lm.depGraph.ReachesSelf(tid) {
			lm.unpark(tid, pid)
			lm.depGraph.RemoveTransaction(tid)
			lm.mutex.Unlock()
			deadlockErr := dberror.New(dberror.ErrCategoryConcurrency, "DEADLOCK_DETECTED", "deadlock detected")
			deadlockErr.Detail = fmt.Sprintf("transaction %d aborted to break a waits-for cycle on page %s", tid.ID(), pid.String())
			deadlockErr.Hint = "retry the transaction from the start"
			deadlockErr.Operation = "AcquireLock"
			deadlockErr.Component = "LockManager"
			return deadlockErr
		}

		lm.mutex.Unlock()
		time.Sleep(backoff(attempt, baseDelay, maxDelay))
	}

	return fmt.Errorf("timeout waiting for lock on page %v", pid)
}

// tryUpgrade promotes tid's existing shared lock on pid to exclusive if
// tid is the page's sole holder, reporting whether it did so.
func (lm *LockManager) tryUpgrade(tid *primitives.TransactionID, pid primitives.PageID) bool {
	held, ok := lm.locks[pid]
	if !ok {
		return false
	}
	current, hasShared := held.lockTypeOf(tid)
	if !hasShared || current != SharedLock || !held.soleHolderIs(tid) {
		return false
	}

	held.upgrade(tid)
	lm.held[tid][pid] = ExclusiveLock
	return true
}

// holdersFor returns the holder set for pid, creating an empty one if this
// is the page's first request.
func (lm *LockManager) holdersFor(pid primitives.PageID) *pageHolders {
	held, ok := lm.locks[pid]
	if !ok {
		held = &pageHolders{}
		lm.locks[pid] = held
	}
	return held
}

func (lm *LockManager) grantLock(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) {
	lm.holdersFor(pid).grant(tid, lockType)

	if lm.held[tid] == nil {
		lm.held[tid] = make(map[primitives.PageID]LockType)
	}
	lm.held[tid][pid] = lockType
	delete(lm.waitingFor, tid)
}

// park adds tid to pid's wait line, ignoring a request already parked
// there for the same page.
func (lm *LockManager) park(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) {
	for _, w := range lm.waitLine[pid] {
		if w.tid == tid {
			return
		}
	}

	lm.waitLine[pid] = append(lm.waitLine[pid], waiter{tid: tid, lockType: lockType})
	lm.waitingFor[tid] = append(lm.waitingFor[tid], pid)
}

// unpark removes tid's parked request for pid, if any.
func (lm *LockManager) unpark(tid *primitives.TransactionID, pid primitives.PageID) {
	if line, ok := lm.waitLine[pid]; ok {
		kept := line[:0]
		for _, w := range line {
			if w.tid != tid {
				kept = append(kept, w)
			}
		}
		if len(kept) > 0 {
			lm.waitLine[pid] = kept
		} else {
			delete(lm.waitLine, pid)
		}
	}

	if pages, ok := lm.waitingFor[tid]; ok {
		kept := pages[:0]
		for _, p := range pages {
			if !p.Equals(pid) {
				kept = append(kept, p)
			}
		}
		if len(kept) > 0 {
			lm.waitingFor[tid] = kept
		} else {
			delete(lm.waitingFor, tid)
		}
	}
}

// recordWait adds a waits-for edge from tid to every current holder of pid
// that would conflict with lockType.
func (lm *LockManager) recordWait(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) {
	for _, g := range lm.holdersFor(pid).entries {
		if g.tid == tid {
			continue
		}
		if lockType == ExclusiveLock || g.lockType == ExclusiveLock {
			lm.depGraph.AddEdge(tid, g.tid)
		}
	}
}

// backoff computes the delay before the next acquisition attempt, doubling
// every ten attempts up to maxDelay.
func backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	shift := min(attempt/10, 10)
	delay := base * time.Duration(1<<uint(shift))
	return min(delay, maxDelay)
}

// UnlockPage releases tid's lock on pid, if it holds one, and wakes any
// waiters on that page that can now be granted.
func (lm *LockManager) UnlockPage(tid *primitives.TransactionID, pid primitives.PageID) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.releaseLocked(tid, pid)
	lm.depGraph.RemoveTransaction(tid)
	lm.wakeWaiters(pid)
}

// releaseLocked drops tid's grant on pid and its bookkeeping entry. Caller
// holds lm.mutex.
func (lm *LockManager) releaseLocked(tid *primitives.TransactionID, pid primitives.PageID) {
	if held, ok := lm.locks[pid]; ok {
		held.release(tid)
		if held.count() == 0 {
			delete(lm.locks, pid)
		}
	}

	if pages, ok := lm.held[tid]; ok {
		delete(pages, pid)
		if len(pages) == 0 {
			delete(lm.held, tid)
		}
	}
}

// wakeWaiters grants pid's lock to every parked waiter that can now be
// satisfied, in wait-line order, leaving the rest parked.
func (lm *LockManager) wakeWaiters(pid primitives.PageID) {
	line, ok := lm.waitLine[pid]
	if !ok || len(line) == 0 {
		return
	}

	remaining := make([]waiter, 0, len(line))
	for _, w := range line {
		if lm.holdersFor(pid).canGrant(w.tid, w.lockType) {
			lm.grantLock(w.tid, pid, w.lockType)
		} else {
			remaining = append(remaining, w)
		}
	}

	if len(remaining) > 0 {
		lm.waitLine[pid] = remaining
	} else {
		delete(lm.waitLine, pid)
	}
}

// IsPageLocked reports whether any transaction currently holds a lock on
// pid.
func (lm *LockManager) IsPageLocked(pid primitives.PageID) bool {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	held, ok := lm.locks[pid]
	return ok && held.count() > 0
}

// UnlockAllPages releases every lock tid holds, typically called at
// transaction commit or abort, and wakes waiters on each page it frees.
func (lm *LockManager) UnlockAllPages(tid *primitives.TransactionID) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	pages, ok := lm.held[tid]
	if !ok {
		return
	}

	freed := make([]primitives.PageID, 0, len(pages))
	for pid := range pages {
		freed = append(freed, pid)
	}

	for _, pid := range freed {
		lm.releaseLocked(tid, pid)
	}

	delete(lm.held, tid)
	lm.depGraph.RemoveTransaction(tid)
	delete(lm.waitingFor, tid)

	for _, pid := range freed {
		lm.wakeWaiters(pid)
	}
}
