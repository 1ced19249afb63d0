// Package table is a small record store built on an avltriee index. It owns
// what the engine leaves to its caller: row id allocation and recycling, and
// locking so readers can share the index between writes.
package table

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sync"

	"github.com/alexhholmes/avltriee"
)

var (
	ErrRowNotFound = errors.New("row not found")
	ErrTableFull   = errors.New("table has no row ids left")
)

type options[T any] struct {
	alloc  avltriee.Allocator[T]
	logger avltriee.Logger
}

// Option configures a Table.
type Option[T any] func(*options[T])

// WithAllocator stores the index in alloc instead of a new VecAllocator.
//
//goland:noinspection GoUnusedExportedFunction
func WithAllocator[T any](alloc avltriee.Allocator[T]) Option[T] {
	return func(o *options[T]) {
		o.alloc = alloc
	}
}

// WithLogger sets the logger shared by the table and its index.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger[T any](logger avltriee.Logger) Option[T] {
	return func(o *options[T]) {
		o.logger = logger
	}
}

// Table stores values under row ids it allocates itself and keeps them
// ordered by cmp. It is safe for concurrent use.
type Table[T any] struct {
	mu     sync.RWMutex
	index  *avltriee.Triee[T]
	free   *FreeList
	live   int
	logger avltriee.Logger
}

// New creates an empty table ordered by cmp.
func New[T any](cmp func(a, b T) int, opts ...Option[T]) *Table[T] {
	o := build(opts)
	return &Table[T]{
		index:  avltriee.New(o.alloc, cmp, avltriee.WithLogger(o.logger)),
		free:   NewFreeList(),
		logger: o.logger,
	}
}

// Open attaches a table to an allocator that already holds rows, such as a
// reopened avltriee.MmapAllocator. Free slots below the high-water mark go
// back on the freelist.
func Open[T any](cmp func(a, b T) int, opts ...Option[T]) (*Table[T], error) {
	o := build(opts)
	index, err := avltriee.Load(o.alloc, cmp, avltriee.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	t := &Table[T]{
		index:  index,
		free:   NewFreeList(),
		logger: o.logger,
	}
	for row := avltriee.RowID(1); uint32(row) <= index.RowsCount(); row++ {
		if index.Live(row) {
			t.live++
		} else {
			t.free.Free(row)
		}
	}
	t.logger.Info("table opened", "rows", t.live, "free", t.free.Size())
	return t, nil
}

func build[T any](opts []Option[T]) options[T] {
	o := options[T]{logger: avltriee.DiscardLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alloc == nil {
		o.alloc = avltriee.NewVecAllocator[T](0)
	}
	if o.logger == nil {
		o.logger = avltriee.DiscardLogger{}
	}
	return o
}

// Insert stores v under a new row id and returns it. Ids freed by Delete are
// reused lowest first.
func (t *Table[T]) Insert(v T) (avltriee.RowID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row := t.free.Allocate()
	if row == 0 {
		next := t.index.RowsCount()
		if next == math.MaxUint32 {
			return 0, ErrTableFull
		}
		row = avltriee.RowID(next + 1)
	}

	if err := t.index.Update(row, v); err != nil {
		t.free.Free(row)
		t.free.Release(avltriee.RowID(t.index.RowsCount()))
		return 0, fmt.Errorf("insert row %d: %w", row, err)
	}
	t.live++
	return row, nil
}

// Update replaces the value of an existing row.
func (t *Table[T]) Update(row avltriee.RowID, v T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.index.Live(row) {
		return fmt.Errorf("%w: %d", ErrRowNotFound, row)
	}
	return t.index.Update(row, v)
}

// Delete removes a row and makes its id available again.
func (t *Table[T]) Delete(row avltriee.RowID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.index.Live(row) {
		return fmt.Errorf("%w: %d", ErrRowNotFound, row)
	}
	if err := t.index.Delete(row); err != nil {
		return err
	}
	t.live--
	t.free.Free(row)
	t.free.Release(avltriee.RowID(t.index.RowsCount()))
	return nil
}

// Get returns the value stored at row.
func (t *Table[T]) Get(row avltriee.RowID) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index.Value(row)
}

// Len returns the number of stored rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// First returns a row equal to q, or false. Among rows holding the same value
// the most recently written one is returned.
func (t *Table[T]) First(q avltriee.Query[T]) (avltriee.RowID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row := t.index.EQ(q)
	return row, row != 0
}

// Find yields every row equal to q with its value.
//
// The table stays read-locked while the loop runs, so the loop body must not
// write to the table.
func (t *Table[T]) Find(q avltriee.Query[T]) iter.Seq2[avltriee.RowID, T] {
	return t.scan(func(index *avltriee.Triee[T]) *avltriee.Iterator[T] {
		return index.By(q)
	})
}

// Range yields the rows within [lo, hi] in ascending order, with the same
// locking rule as Find.
func (t *Table[T]) Range(lo, hi avltriee.Query[T]) iter.Seq2[avltriee.RowID, T] {
	return t.scan(func(index *avltriee.Triee[T]) *avltriee.Iterator[T] {
		return index.RangeIter(lo, hi)
	})
}

// Scan yields every row in ascending order, or descending when desc is set,
// with the same locking rule as Find.
func (t *Table[T]) Scan(desc bool) iter.Seq2[avltriee.RowID, T] {
	return t.scan(func(index *avltriee.Triee[T]) *avltriee.Iterator[T] {
		if desc {
			return index.Desc()
		}
		return index.Iter()
	})
}

func (t *Table[T]) scan(open func(*avltriee.Triee[T]) *avltriee.Iterator[T]) iter.Seq2[avltriee.RowID, T] {
	return func(yield func(avltriee.RowID, T) bool) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		for row, v := range open(t.index).Seq2() {
			if !yield(row, v) {
				return
			}
		}
	}
}

// Validate checks the index invariants and the table's row accounting.
func (t *Table[T]) Validate() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.index.Validate(); err != nil {
		return err
	}
	var live int
	for row := avltriee.RowID(1); uint32(row) <= t.index.RowsCount(); row++ {
		if t.index.Live(row) {
			live++
		}
	}
	if live != t.live {
		return fmt.Errorf("%w: table counts %d rows, index holds %d", avltriee.ErrCorruption, t.live, live)
	}
	return nil
}
