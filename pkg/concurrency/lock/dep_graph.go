package lock

import (
	"storemy/pkg/primitives"

	mapset "github.com/deckarep/golang-set/v2"
	deadlock "github.com/sasha-s/go-deadlock"
)

// visitState marks a transaction's position in an in-progress depth-first
// walk of the waits-for graph: unseen, on the current path, or fully
// explored with no cycle found through it.
type visitState int

const (
	unseen visitState = iota
	onPath
	cleared
)

// DependencyGraph is the waits-for graph over blocked transactions: an
// edge from A to B means A is waiting on a page held by B. A cycle in
// this graph is a deadlock — the transactions on the cycle can never all
// proceed.
type DependencyGraph struct {
	waitsFor    map[*primitives.TransactionID]mapset.Set[*primitives.TransactionID]
	mutex       deadlock.RWMutex
	cacheValid  bool
	cachedCycle bool
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{waitsFor: make(map[*primitives.TransactionID]mapset.Set[*primitives.TransactionID])}
}

// AddEdge records that waiter is blocked on a page held by holder.
func (dg *DependencyGraph) AddEdge(waiter, holder *primitives.TransactionID) {
	dg.mutex.Lock()
	defer dg.mutex.Unlock()

	blockedBy, ok := dg.waitsFor[waiter]
	if !ok {
		blockedBy = mapset.NewThreadUnsafeSet[*primitives.TransactionID]()
		dg.waitsFor[waiter] = blockedBy
	}
	blockedBy.Add(holder)
	dg.cacheValid = false
}

// RemoveTransaction drops tid from the graph entirely, both as a waiter
// and as anything another transaction is waiting on. Called once a
// transaction gets its lock or is aborted, so its edges stop influencing
// deadlock detection.
func (dg *DependencyGraph) RemoveTransaction(tid *primitives.TransactionID) {
	dg.mutex.Lock()
	defer dg.mutex.Unlock()

	delete(dg.waitsFor, tid)
	for waiter, blockedBy := range dg.waitsFor {
		if !blockedBy.Contains(tid) {
			continue
		}
		blockedBy.Remove(tid)
		if blockedBy.Cardinality() == 0 {
			delete(dg.waitsFor, waiter)
		}
	}
	dg.cacheValid = false
}

// HasCycle reports whether the waits-for graph currently contains a
// cycle. The result is cached until the next AddEdge or RemoveTransaction
// invalidates it, since a lock manager under load calls this far more
// often than the graph actually changes shape.
func (dg *DependencyGraph) HasCycle() bool {
	dg.mutex.Lock()
	defer dg.mutex.Unlock()

	if dg.cacheValid {
		return dg.cachedCycle
	}

	states := make(map[*primitives.TransactionID]visitState, len(dg.waitsFor))
	cycle := false
	for tid := range dg.waitsFor {
		if states[tid] == unseen && dg.walk(tid, states) {
			cycle = true
			break
		}
	}

	dg.cachedCycle = cycle
	dg.cacheValid = true
	return cycle
}

// walk follows waits-for edges out of tid, returning true the instant it
// reaches a transaction still marked onPath — a back edge, and therefore
// a cycle.
func (dg *DependencyGraph) walk(tid *primitives.TransactionID, states map[*primitives.TransactionID]visitState) bool {
	states[tid] = onPath

	if blockedBy, ok := dg.waitsFor[tid]; ok {
		for blocker := range blockedBy.Iter() {
			switch states[blocker] {
			case onPath:
				return true
			case unseen:
				if dg.walk(blocker, states) {
					return true
				}
			}
		}
	}

	states[tid] = cleared
	return false
}

// ReachesSelf reports whether tid is itself part of a cycle: whether
// following waits-for edges out of tid eventually leads back to tid. This
// is narrower than HasCycle, which reports any cycle anywhere in the
// graph — a transaction merely blocked behind an unrelated cycle among
// other transactions should not be chosen as the abort victim.
func (dg *DependencyGraph) ReachesSelf(tid *primitives.TransactionID) bool {
	dg.mutex.RLock()
	defer dg.mutex.RUnlock()

	states := make(map[*primitives.TransactionID]visitState, len(dg.waitsFor))
	return dg.walkToSelf(tid, tid, states)
}

// walkToSelf follows waits-for edges out of tid looking specifically for a
// path back to root. A back edge to some other on-path transaction means a
// cycle exists somewhere in the graph, but not necessarily through root, so
// that branch is abandoned rather than reported.
func (dg *DependencyGraph) walkToSelf(root, tid *primitives.TransactionID, states map[*primitives.TransactionID]visitState) bool {
	states[tid] = onPath

	if blockedBy, ok := dg.waitsFor[tid]; ok {
		for blocker := range blockedBy.Iter() {
			if blocker == root {
				return true
			}
			if states[blocker] == unseen && dg.walkToSelf(root, blocker, states) {
				return true
			}
		}
	}

	states[tid] = cleared
	return false
}

// GetWaitingTransactions returns every transaction that currently has at
// least one outstanding waits-for edge, i.e. is blocked on some page.
func (dg *DependencyGraph) GetWaitingTransactions() []*primitives.TransactionID {
	dg.mutex.RLock()
	defer dg.mutex.RUnlock()

	waiters := make([]*primitives.TransactionID, 0, len(dg.waitsFor))
	for tid := range dg.waitsFor {
		waiters = append(waiters, tid)
	}
	return waiters
}
