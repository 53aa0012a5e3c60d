package catalog

import (
	"path/filepath"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/heap"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
	"strings"
	"testing"
)

func newTestFile(t *testing.T, name string) *heap.HeapFile {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType, types.StringType}, []string{name + ".id", name + ".name"})
	if err != nil {
		t.Fatalf("NewTupleDesc: %v", err)
	}
	path := filepath.Join(t.TempDir(), name+".dat")
	f, err := heap.NewHeapFile(primitives.Filepath(path), td)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	return f
}

func TestCatalogAddAndLookup(t *testing.T) {
	c := NewCatalog()
	f := newTestFile(t, "employees")

	if err := c.AddTable("employees", f, "id"); err != nil {
		t.Fatalf("AddTable: %v", err)
	}

	id, err := c.GetTableID("employees")
	if err != nil {
		t.Fatalf("GetTableID: %v", err)
	}

	name, err := c.GetTableName(id)
	if err != nil || name != "employees" {
		t.Fatalf("GetTableName = (%s, %v), want (employees, nil)", name, err)
	}

	pk, err := c.GetPrimaryKey(id)
	if err != nil || pk != "id" {
		t.Fatalf("GetPrimaryKey = (%s, %v), want (id, nil)", pk, err)
	}
}

func TestCatalogDuplicateNameRejected(t *testing.T) {
	c := NewCatalog()
	f1 := newTestFile(t, "employees")
	f2 := newTestFile(t, "employees2")

	if err := c.AddTable("employees", f1, ""); err != nil {
		t.Fatalf("AddTable: %v", err)
	}
	if err := c.AddTable("employees", f2, ""); err == nil {
		t.Fatalf("expected error registering a duplicate table name")
	}
}

func TestCatalogUnknownTable(t *testing.T) {
	c := NewCatalog()
	if _, err := c.GetTableID("missing"); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}

func TestCatalogLoadFromReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "employees.dat")

	c := NewCatalog()
	src := strings.NewReader(
		"# a comment\n\n" +
			path + " employees (id int pk, name string)\n",
	)
	if err := c.LoadFromReader(src); err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	id, err := c.GetTableID("employees")
	if err != nil {
		t.Fatalf("GetTableID: %v", err)
	}
	pk, _ := c.GetPrimaryKey(id)
	if pk != "id" {
		t.Fatalf("pk = %q, want id", pk)
	}

	td, err := c.GetTupleDesc(id)
	if err != nil || td.NumFields() != 2 {
		t.Fatalf("GetTupleDesc = (%v, %v)", td, err)
	}
}

func TestCatalogLoadFromReaderMalformed(t *testing.T) {
	c := NewCatalog()
	src := strings.NewReader("this line has no parens\n")
	if err := c.LoadFromReader(src); err == nil {
		t.Fatalf("expected parse error")
	}
}
