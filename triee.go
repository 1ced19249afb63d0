// Package avltriee implements an ordered index over caller-numbered rows.
//
// A Triee keeps an AVL tree inside a flat arena owned by an Allocator. Each
// row id addresses one arena slot; the tree links are row ids, never
// pointers, so the arena can live in a plain slice or in a memory-mapped
// file. Rows whose values compare equal share a single structural node: the
// most recently written row takes the tree position and the older ones hang
// off it in a "same" chain.
//
// A Triee is not safe for concurrent use. Readers may run in parallel only
// while no Update or Delete is in progress.
package avltriee

import (
	"cmp"
	"fmt"
)

// Triee is the AVL index engine.
type Triee[T any] struct {
	alloc Allocator[T]
	nodes []Node[T] // Cached alloc.Nodes(), refreshed after every Resize
	cmp   func(a, b T) int
	head  Head

	logger       Logger
	replaceEqual bool
}

// New returns an empty engine over alloc ordered by cmp. The allocator must
// not hold live rows; use Load to attach to a populated arena.
func New[T any](alloc Allocator[T], cmp func(a, b T) int, opts ...Option) *Triee[T] {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Triee[T]{
		alloc:        alloc,
		nodes:        alloc.Nodes(),
		cmp:          cmp,
		logger:       options.logger,
		replaceEqual: options.replaceEqual,
	}
}

// NewOrdered returns an empty engine for a naturally ordered value type,
// backed by an unbounded VecAllocator.
//
//goland:noinspection GoUnusedExportedFunction
func NewOrdered[T cmp.Ordered](opts ...Option) *Triee[T] {
	return New[T](NewVecAllocator[T](0), cmp.Compare[T], opts...)
}

// Load attaches an engine to an arena that already holds rows, such as a
// reopened MmapAllocator, and rebuilds the head from the slots: the root is
// the only structural node without a parent, and the row count is the
// highest live row. The slots are then checked with Validate, so a damaged
// arena fails here instead of on the first query.
func Load[T any](alloc Allocator[T], cmp func(a, b T) int, opts ...Option) (*Triee[T], error) {
	t := New(alloc, cmp, opts...)

	var live int
	for i := 1; i < len(t.nodes); i++ {
		n := &t.nodes[i]
		if !n.Live() {
			continue
		}
		live++
		t.head.RowsCount = uint32(i)
		if n.State == StateTree && n.Parent == 0 {
			if t.head.Root != 0 {
				return nil, fmt.Errorf("%w: rows %d and %d both have no parent", ErrCorruption, t.head.Root, i)
			}
			t.head.Root = RowID(i)
		}
	}
	if live > 0 && t.head.Root == 0 {
		return nil, fmt.Errorf("%w: %d live rows but no root", ErrCorruption, live)
	}
	if err := t.Validate(); err != nil {
		t.logger.Error("arena failed validation", "root", t.head.Root, "rows", t.head.RowsCount, "error", err)
		return nil, err
	}

	t.logger.Info("head recovered", "root", t.head.Root, "rows", t.head.RowsCount, "live", live)
	return t, nil
}

// Root returns the root row, or 0 if the tree is empty.
func (t *Triee[T]) Root() RowID {
	return t.head.Root
}

// RowsCount returns the highest live row id, or 0 if the tree is empty.
func (t *Triee[T]) RowsCount() uint32 {
	return t.head.RowsCount
}

// Head returns a copy of the tree metadata.
func (t *Triee[T]) Head() Head {
	return t.head
}

// Key returns a Query that orders stored values against v with the engine's
// comparison.
func (t *Triee[T]) Key(v T) Query[T] {
	return func(stored T) int {
		return t.cmp(stored, v)
	}
}

// Node returns a copy of the node for row. It returns false if the row is
// outside the arena or free.
func (t *Triee[T]) Node(row RowID) (Node[T], bool) {
	n, ok := t.alloc.Get(row)
	if !ok || !n.Live() {
		return Node[T]{}, false
	}
	return *n, true
}

// Live reports whether row currently holds a value.
func (t *Triee[T]) Live(row RowID) bool {
	n, ok := t.alloc.Get(row)
	return ok && n.Live()
}

// Value returns the value stored at row.
func (t *Triee[T]) Value(row RowID) (T, bool) {
	n, ok := t.alloc.Get(row)
	if !ok || !n.Live() {
		var zero T
		return zero, false
	}
	return n.Value, true
}

// MustValue returns the value stored at row. It panics if row is outside the
// arena or free, so callers must only pass rows obtained from this engine.
func (t *Triee[T]) MustValue(row RowID) T {
	v, ok := t.Value(row)
	if !ok {
		panic(fmt.Sprintf("avltriee: row %d is not live", row))
	}
	return v
}

// node returns the slot for a row known to be inside the arena.
func (t *Triee[T]) node(row RowID) *Node[T] {
	return &t.nodes[row]
}

// height treats row 0 as an empty subtree.
func (t *Triee[T]) height(row RowID) uint8 {
	if row == 0 {
		return 0
	}
	return t.nodes[row].Height
}

func (t *Triee[T]) setParent(row, parent RowID) {
	if row != 0 {
		t.nodes[row].Parent = parent
	}
}

// replaceChild points parent's link to old at repl instead, or moves the
// root when parent is 0. It does not touch repl's own Parent.
func (t *Triee[T]) replaceChild(parent, old, repl RowID) {
	if parent == 0 {
		t.head.Root = repl
		return
	}
	p := t.node(parent)
	if p.Left == old {
		p.Left = repl
	} else {
		p.Right = repl
	}
}

// check validates that row addresses a slot of the arena.
func (t *Triee[T]) check(row RowID) error {
	if row == 0 || int(row) >= len(t.nodes) {
		return fmt.Errorf("%w: row %d, arena holds %d slots", ErrRowOutOfRange, row, len(t.nodes))
	}
	return nil
}

// grow makes sure the arena covers row.
func (t *Triee[T]) grow(row RowID) error {
	if row == 0 {
		return fmt.Errorf("%w: row 0 is reserved", ErrRowOutOfRange)
	}
	if int(row) < len(t.nodes) {
		return nil
	}
	if err := t.alloc.Resize(uint32(row)); err != nil {
		t.logger.Error("arena resize failed", "row", row, "slots", len(t.nodes), "error", err)
		return fmt.Errorf("grow arena to row %d: %w", row, err)
	}
	t.nodes = t.alloc.Nodes()
	return nil
}
