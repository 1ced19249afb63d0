package avltriee

import (
	"fmt"
	"slices"
)

// Allocator owns the node arena. Slot 0 is reserved and never handed out as
// a row.
//
// Slices and pointers returned by Nodes and Get are invalidated by Resize.
type Allocator[T any] interface {
	// Nodes returns the whole arena, sentinel slot included.
	Nodes() []Node[T]

	// Get returns the node for row, or false if row is 0 or outside the arena.
	Get(row RowID) (*Node[T], bool)

	// Resize grows the arena so that rows 0..rowsCount are addressable. New
	// slots are free. Resize never shrinks the arena; a failed Resize leaves
	// it unchanged and returns an error wrapping ErrAllocation.
	Resize(rowsCount uint32) error
}

// VecAllocator is an Allocator backed by a growable slice.
type VecAllocator[T any] struct {
	nodes []Node[T]
	limit uint32 // Highest row the arena may grow to cover. 0 means no limit.
}

// NewVecAllocator returns a slice-backed allocator. A non-zero limit caps the
// highest row id the arena can hold; growing past it fails with
// ErrAllocation.
func NewVecAllocator[T any](limit uint32) *VecAllocator[T] {
	return &VecAllocator[T]{
		nodes: make([]Node[T], 1),
		limit: limit,
	}
}

func (a *VecAllocator[T]) Nodes() []Node[T] {
	return a.nodes
}

func (a *VecAllocator[T]) Get(row RowID) (*Node[T], bool) {
	if row == 0 || int(row) >= len(a.nodes) {
		return nil, false
	}
	return &a.nodes[row], true
}

func (a *VecAllocator[T]) Resize(rowsCount uint32) error {
	if a.limit != 0 && rowsCount > a.limit {
		return fmt.Errorf("%w: %d rows requested, limit is %d", ErrAllocation, rowsCount, a.limit)
	}
	want := int(rowsCount) + 1
	if want <= len(a.nodes) {
		return nil
	}
	old := len(a.nodes)
	a.nodes = slices.Grow(a.nodes, want-old)[:want]
	clear(a.nodes[old:])
	return nil
}
