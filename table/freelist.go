package table

import (
	"math"
	"slices"

	"github.com/alexhholmes/avltriee"
)

// FreeList tracks row ids released by Delete for reuse.
type FreeList struct {
	ids []avltriee.RowID // sorted ascending, no duplicates
}

// NewFreeList creates an empty freelist
func NewFreeList() *FreeList {
	return &FreeList{
		ids: make([]avltriee.RowID, 0),
	}
}

// Allocate returns the lowest free row id, or 0 if none available
func (f *FreeList) Allocate() avltriee.RowID {
	if len(f.ids) == 0 {
		return 0
	}
	id := f.ids[0]
	f.ids = slices.Delete(f.ids, 0, 1)
	return id
}

// Free adds a row id to the free list
func (f *FreeList) Free(id avltriee.RowID) {
	i, found := slices.BinarySearch(f.ids, id)
	if found {
		return // Already free, don't add duplicate
	}
	f.ids = slices.Insert(f.ids, i, id)
}

// Release drops every id above highWater. Those rows sit past the arena's
// high-water mark, so the next fresh allocation hands them out again in
// order.
func (f *FreeList) Release(highWater avltriee.RowID) {
	if highWater == math.MaxUint32 {
		return
	}
	i, _ := slices.BinarySearch(f.ids, highWater+1)
	f.ids = f.ids[:i]
}

// Size returns number of free row ids
func (f *FreeList) Size() int {
	return len(f.ids)
}
