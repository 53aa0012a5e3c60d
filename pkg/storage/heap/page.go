package heap

import (
	"bytes"
	"fmt"
	dberror "storemy/pkg/error"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/page"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
)

// HeapPage is a slotted page: a bitmap header (one bit per slot, 1 meaning
// occupied) followed by a fixed-size slot array, each slot exactly wide
// enough for one tuple of the page's schema. Unlike a variable-length
// slot-pointer layout, every slot's offset is computable from its index
// alone, so DeleteTuple and per-slot decoding are O(1); AddTuple scans the
// header for the first free slot.
type HeapPage struct {
	id        page.PageDescriptor
	tupleDesc *tuple.TupleDescription
	numSlots  int
	header    []byte // headerSizeBytes(numSlots) bytes, 1 bit per slot
	tuples    []*tuple.Tuple
	dirtyBy   *primitives.TransactionID
}

// NewHeapPage parses a raw PageSize-byte buffer (as read from disk) into a
// HeapPage. A buffer of all zeros parses cleanly into an empty page: every
// header bit is 0, so no slot is read as occupied.
func NewHeapPage(id page.PageDescriptor, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) != page.PageSize {
		sizeErr := dberror.New(dberror.ErrCategoryData, "PAGE_CORRUPTED", "invalid page data size")
		sizeErr.Detail = fmt.Sprintf("page %s: expected %d bytes, got %d", id.String(), page.PageSize, len(data))
		sizeErr.Operation = "ReadPage"
		sizeErr.Component = "HeapPage"
		return nil, sizeErr
	}

	numSlots := slotsPerPage(td)
	if numSlots <= 0 {
		return nil, fmt.Errorf("tuple of size %d does not fit in a %d-byte page", td.TupleSize(), page.PageSize)
	}
	hdrSize := headerSizeBytes(numSlots)

	hp := &HeapPage{
		id:        id,
		tupleDesc: td,
		numSlots:  numSlots,
		header:    append([]byte(nil), data[:hdrSize]...),
		tuples:    make([]*tuple.Tuple, numSlots),
	}

	tupleSize := int(td.TupleSize())
	for i := range numSlots {
		if !hp.isSlotUsed(i) {
			continue
		}
		start := hdrSize + i*tupleSize
		t, err := readTuple(data[start:start+tupleSize], td)
		if err != nil {
			return nil, &dberror.DBError{
				Code:      "PAGE_CORRUPTED",
				Category:  dberror.ErrCategoryData,
				Message:   "failed to decode tuple",
				Detail:    fmt.Sprintf("page %s, slot %d", id.String(), i),
				Operation: "ReadPage",
				Component: "HeapPage",
				Cause:     err,
			}
		}
		t.RecordID = tuple.NewRecordID(id, i)
		hp.tuples[i] = t
	}

	return hp, nil
}

func (hp *HeapPage) GetID() page.PageDescriptor {
	return hp.id
}

func (hp *HeapPage) IsDirty() *primitives.TransactionID {
	return hp.dirtyBy
}

func (hp *HeapPage) MarkDirty(dirty bool, tid *primitives.TransactionID) {
	if dirty {
		hp.dirtyBy = tid
	} else {
		hp.dirtyBy = nil
	}
}

func (hp *HeapPage) isSlotUsed(i int) bool {
	byteIdx, bitIdx := i/8, i%8
	return hp.header[byteIdx]&(1<<uint(bitIdx)) != 0
}

func (hp *HeapPage) setSlotUsed(i int, used bool) {
	byteIdx, bitIdx := i/8, i%8
	if used {
		hp.header[byteIdx] |= 1 << uint(bitIdx)
	} else {
		hp.header[byteIdx] &^= 1 << uint(bitIdx)
	}
}

// EmptySlots reports how many slots are free, used by the buffer pool's
// insert path to pick a page worth reusing before allocating a new one.
func (hp *HeapPage) EmptySlots() int {
	n := 0
	for i := range hp.numSlots {
		if !hp.isSlotUsed(i) {
			n++
		}
	}
	return n
}

// AddTuple stores t in the first free slot and stamps t.RecordID to match.
// t's schema must equal the page's schema.
func (hp *HeapPage) AddTuple(t *tuple.Tuple) error {
	if !t.TupleDesc.Equals(hp.tupleDesc) {
		return fmt.Errorf("tuple schema does not match page schema")
	}

	for i := range hp.numSlots {
		if hp.isSlotUsed(i) {
			continue
		}
		hp.setSlotUsed(i, true)
		hp.tuples[i] = t
		t.RecordID = tuple.NewRecordID(hp.id, i)
		return nil
	}
	return fmt.Errorf("page %s is full", hp.id.String())
}

// DeleteTuple frees the slot t.RecordID names. t must have been read from
// this exact page: a nil RecordID, or one pointing at a different page,
// is an error rather than a silent no-op.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	if t.RecordID == nil {
		return fmt.Errorf("tuple has no record id")
	}
	if !t.RecordID.PageID.Equals(hp.id) {
		return fmt.Errorf("tuple does not belong to page %s", hp.id.String())
	}
	slot := t.RecordID.SlotNum
	if slot < 0 || slot >= hp.numSlots || !hp.isSlotUsed(slot) {
		return fmt.Errorf("slot %d is not occupied on page %s", slot, hp.id.String())
	}
	hp.setSlotUsed(slot, false)
	hp.tuples[slot] = nil
	return nil
}

// GetTuples returns every occupied tuple on the page in slot order.
func (hp *HeapPage) GetTuples() []*tuple.Tuple {
	out := make([]*tuple.Tuple, 0, hp.numSlots)
	for i := range hp.numSlots {
		if hp.isSlotUsed(i) {
			out = append(out, hp.tuples[i])
		}
	}
	return out
}

// GetPageData re-serializes the header and every occupied slot into a
// fresh PageSize-byte buffer suitable for BaseFile.WritePageData.
func (hp *HeapPage) GetPageData() []byte {
	buf := make([]byte, page.PageSize)
	copy(buf, hp.header)

	hdrSize := len(hp.header)
	tupleSize := int(hp.tupleDesc.TupleSize())
	for i := range hp.numSlots {
		if !hp.isSlotUsed(i) {
			continue
		}
		start := hdrSize + i*tupleSize
		writeTuple(buf[start:start+tupleSize], hp.tuples[i])
	}
	return buf
}

func readTuple(buf []byte, td *tuple.TupleDescription) (*tuple.Tuple, error) {
	t := tuple.NewTuple(td)
	offset := 0
	for i := range td.NumFields() {
		ft, _ := td.TypeAtIndex(i)
		switch ft {
		case types.IntType:
			f, err := types.ReadIntField(buf[offset:])
			if err != nil {
				return nil, err
			}
			if err := t.SetField(i, f); err != nil {
				return nil, err
			}
			offset += types.IntFieldSize
		case types.StringType:
			f, err := types.ReadStringField(buf[offset:])
			if err != nil {
				return nil, err
			}
			if err := t.SetField(i, f); err != nil {
				return nil, err
			}
			offset += types.StringFieldSize
		default:
			return nil, fmt.Errorf("unsupported field type %v", ft)
		}
	}
	return t, nil
}

func writeTuple(buf []byte, t *tuple.Tuple) {
	var w bytes.Buffer
	for i := range t.TupleDesc.NumFields() {
		f, _ := t.GetField(i)
		_ = f.Serialize(&w)
	}
	copy(buf, w.Bytes())
}
