package memory

import (
	"storemy/pkg/primitives"
	"storemy/pkg/storage/page"
	"testing"
)

type fakePage struct {
	id    page.PageDescriptor
	dirty *primitives.TransactionID
}

func (f *fakePage) GetID() page.PageDescriptor                            { return f.id }
func (f *fakePage) IsDirty() *primitives.TransactionID                    { return f.dirty }
func (f *fakePage) MarkDirty(dirty bool, tid *primitives.TransactionID) {
	if dirty {
		f.dirty = tid
	} else {
		f.dirty = nil
	}
}
func (f *fakePage) GetPageData() []byte { return make([]byte, page.PageSize) }

func TestLRUCachePutGet(t *testing.T) {
	c := newLRUPageCache(2)
	pid := page.NewPageDescriptor(1, 0)
	p := &fakePage{id: pid}

	if err := c.Put(pid, p); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get(pid)
	if !ok || got != page.Page(p) {
		t.Fatalf("Get returned (%v, %v), want (%v, true)", got, ok, p)
	}
}

func TestLRUCacheFullReturnsError(t *testing.T) {
	c := newLRUPageCache(1)
	pid1 := page.NewPageDescriptor(1, 0)
	pid2 := page.NewPageDescriptor(1, 1)

	if err := c.Put(pid1, &fakePage{id: pid1}); err != nil {
		t.Fatalf("Put pid1: %v", err)
	}
	if err := c.Put(pid2, &fakePage{id: pid2}); err == nil {
		t.Fatal("expected error inserting into full cache")
	}
}

func TestLRUCacheEvictionOrder(t *testing.T) {
	c := newLRUPageCache(3)
	pids := []page.PageDescriptor{
		page.NewPageDescriptor(1, 0),
		page.NewPageDescriptor(1, 1),
		page.NewPageDescriptor(1, 2),
	}
	for _, pid := range pids {
		c.Put(pid, &fakePage{id: pid})
	}

	// touch pid[0] so it becomes most-recently-used
	c.Get(pids[0])

	order := c.GetAll()
	if len(order) != 3 {
		t.Fatalf("GetAll returned %d entries, want 3", len(order))
	}
	// Least recently used first: pid[1] then pid[2] then pid[0]
	if !order[0].Equals(pids[1]) {
		t.Errorf("expected pid[1] to be least recently used, got %s", order[0].String())
	}
	if !order[len(order)-1].Equals(pids[0]) {
		t.Errorf("expected pid[0] to be most recently used, got %s", order[len(order)-1].String())
	}
}

func TestLRUCacheRemove(t *testing.T) {
	c := newLRUPageCache(2)
	pid := page.NewPageDescriptor(1, 0)
	c.Put(pid, &fakePage{id: pid})
	c.Remove(pid)

	if _, ok := c.Get(pid); ok {
		t.Fatal("expected page to be gone after Remove")
	}
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}
