// Package catalog is the process-wide registry mapping table names and IDs
// to the heap files and schemas backing them.
package catalog

import (
	"fmt"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/heap"
	"storemy/pkg/tuple"
	"sync"
)

type tableEntry struct {
	name       string
	file       *heap.HeapFile
	tupleDesc  *tuple.TupleDescription
	primaryKey string
}

// Catalog is the single source of truth for "what tables exist". A
// TableID is derived from its file's absolute path (primitives.Filepath.Hash),
// so it is stable across a process restart as long as the path doesn't move.
type Catalog struct {
	mutex  sync.RWMutex
	byID   map[primitives.TableID]*tableEntry
	byName map[string]primitives.TableID
}

func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[primitives.TableID]*tableEntry),
		byName: make(map[string]primitives.TableID),
	}
}

// AddTable registers name as backed by file, whose ID is derived from its
// path. primaryKey names the column used for uniqueness elsewhere in the
// system; pass "" if the table has none.
func (c *Catalog) AddTable(name string, file *heap.HeapFile, primaryKey string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.byName[name]; exists {
		return fmt.Errorf("table %q already exists", name)
	}

	id := file.GetID()
	c.byID[id] = &tableEntry{
		name:       name,
		file:       file,
		tupleDesc:  file.GetTupleDesc(),
		primaryKey: primaryKey,
	}
	c.byName[name] = id
	return nil
}

func (c *Catalog) GetTableID(name string) (primitives.TableID, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	id, ok := c.byName[name]
	if !ok {
		return 0, fmt.Errorf("table %q not found", name)
	}
	return id, nil
}

func (c *Catalog) GetTableName(id primitives.TableID) (string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return "", fmt.Errorf("table id %d not found", id)
	}
	return e.name, nil
}

func (c *Catalog) GetDbFile(id primitives.TableID) (*heap.HeapFile, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("table id %d not found", id)
	}
	return e.file, nil
}

func (c *Catalog) GetTupleDesc(id primitives.TableID) (*tuple.TupleDescription, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("table id %d not found", id)
	}
	return e.tupleDesc, nil
}

func (c *Catalog) GetPrimaryKey(id primitives.TableID) (string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return "", fmt.Errorf("table id %d not found", id)
	}
	return e.primaryKey, nil
}

// TableExists reports whether name has been registered.
func (c *Catalog) TableExists(name string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.byName[name]
	return ok
}
