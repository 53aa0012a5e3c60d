// Package heap implements the row-oriented, slotted-page storage engine:
// HeapPage's bitmap-header layout and HeapFile, the on-disk collection of
// heap pages backing one table.
package heap

import (
	"storemy/pkg/storage/page"
	"storemy/pkg/tuple"
)

// slotsPerPage computes how many fixed-width tuples of the given schema fit
// in one page alongside their 1-bit-per-slot presence bitmap. Each slot
// costs tupleSize*8+1 bits: the tuple's bytes plus its bitmap bit.
func slotsPerPage(td *tuple.TupleDescription) int {
	tupleBits := int(td.TupleSize()) * 8
	return (page.PageSize * 8) / (tupleBits + 1)
}

// headerSizeBytes returns the byte length of a bitmap covering numSlots
// slots, one bit per slot, rounded up to a whole byte.
func headerSizeBytes(numSlots int) int {
	return (numSlots + 7) / 8
}
