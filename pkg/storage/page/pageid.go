// Package page defines the fixed-size on-disk unit of storage: page
// identity, the Page and DbFile interfaces buffer pool and heap files
// implement, and the thread-safe file handle both build on.
package page

import (
	"fmt"
	"storemy/pkg/primitives"
)

// PageSize is the fixed size of every page in bytes.
const PageSize = 4096

// PageDescriptor identifies a page by the table it belongs to and its
// offset within that table's file. It is a plain comparable value (not a
// pointer) precisely so that two PageDescriptors built independently for
// the same page compare equal both with == and as keys in a
// map[primitives.PageID]..., which the buffer pool's cache relies on.
type PageDescriptor struct {
	Table primitives.TableID
	Page  primitives.PageNumber
}

func NewPageDescriptor(tableID primitives.TableID, pageNum primitives.PageNumber) PageDescriptor {
	return PageDescriptor{Table: tableID, Page: pageNum}
}

func (pd PageDescriptor) TableID() primitives.TableID {
	return pd.Table
}

func (pd PageDescriptor) PageNo() primitives.PageNumber {
	return pd.Page
}

func (pd PageDescriptor) Equals(other primitives.PageID) bool {
	if other == nil {
		return false
	}
	return pd.Table == other.TableID() && pd.Page == other.PageNo()
}

func (pd PageDescriptor) String() string {
	return fmt.Sprintf("PageDescriptor(table=%d, page=%d)", pd.Table, pd.Page)
}
