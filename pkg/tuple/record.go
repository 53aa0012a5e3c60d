package tuple

import (
	"fmt"
	"storemy/pkg/primitives"
)

// RecordID pins a tuple to the exact slot it occupies: a page plus a slot
// index within that page's bitmap header.
type RecordID struct {
	PageID  primitives.PageID
	SlotNum int
}

func NewRecordID(pageID primitives.PageID, slotNum int) *RecordID {
	return &RecordID{PageID: pageID, SlotNum: slotNum}
}

func (rid *RecordID) Equals(other *RecordID) bool {
	if rid == nil || other == nil {
		return false
	}
	return rid.PageID.Equals(other.PageID) && rid.SlotNum == other.SlotNum
}

func (rid *RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%s, slot=%d)", rid.PageID.String(), rid.SlotNum)
}
