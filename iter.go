package avltriee

import "iter"

// Iterator walks rows in value order. Each structural row is followed by its
// same chain, newest duplicate first, before the walk moves on.
//
// An Iterator is single pass and reads the live tree: it is invalidated by
// any Update or Delete made while it is in use.
type Iterator[T any] struct {
	t     *Triee[T]
	next  RowID // Structural row to yield next
	chain RowID // Pending duplicate of the last structural row
	end   RowID // Last structural row to visit, 0 to run off the tree
	desc  bool
}

// iterator builds a walk from start to end. A bounded walk with no end row
// is empty.
func (t *Triee[T]) iterator(start, end RowID, bounded, desc bool) *Iterator[T] {
	if bounded && end == 0 {
		start = 0
	}
	return &Iterator[T]{t: t, next: start, end: end, desc: desc}
}

// Next returns the next row, or false once the walk is exhausted.
func (it *Iterator[T]) Next() (RowID, bool) {
	if it.chain != 0 {
		row := it.chain
		it.chain = it.t.node(row).Same
		return row, true
	}
	if it.next == 0 {
		return 0, false
	}

	row := it.next
	it.chain = it.t.node(row).Same
	switch {
	case row == it.end:
		it.next = 0
	case it.desc:
		it.next = it.t.predecessor(row)
	default:
		it.next = it.t.successor(row)
	}
	return row, true
}

// Seq adapts the iterator to a range-over-func sequence of rows.
func (it *Iterator[T]) Seq() iter.Seq[RowID] {
	return func(yield func(RowID) bool) {
		for row, ok := it.Next(); ok; row, ok = it.Next() {
			if !yield(row) {
				return
			}
		}
	}
}

// Seq2 is like Seq but also yields each row's value.
func (it *Iterator[T]) Seq2() iter.Seq2[RowID, T] {
	return func(yield func(RowID, T) bool) {
		for row, ok := it.Next(); ok; row, ok = it.Next() {
			if !yield(row, it.t.node(row).Value) {
				return
			}
		}
	}
}

// Iter walks every row in ascending order.
func (t *Triee[T]) Iter() *Iterator[T] {
	return t.iterator(t.Min(), 0, false, false)
}

// Desc walks every row in descending order.
func (t *Triee[T]) Desc() *Iterator[T] {
	return t.iterator(t.Max(), 0, false, true)
}

// All returns every row in ascending order.
func (t *Triee[T]) All() iter.Seq[RowID] {
	return t.Iter().Seq()
}

// Backward returns every row in descending order.
func (t *Triee[T]) Backward() iter.Seq[RowID] {
	return t.Desc().Seq()
}

// By walks the rows equal to q.
func (t *Triee[T]) By(q Query[T]) *Iterator[T] {
	row := t.EQ(q)
	return t.iterator(row, row, true, false)
}

// From walks rows greater than or equal to q, ascending.
func (t *Triee[T]) From(q Query[T]) *Iterator[T] {
	return t.iterator(t.GE(q), 0, false, false)
}

// Over walks rows strictly greater than q, ascending.
func (t *Triee[T]) Over(q Query[T]) *Iterator[T] {
	return t.iterator(t.GT(q), 0, false, false)
}

// To walks rows less than or equal to q, ascending.
func (t *Triee[T]) To(q Query[T]) *Iterator[T] {
	return t.iterator(t.Min(), t.LE(q), true, false)
}

// Under walks rows strictly less than q, ascending.
func (t *Triee[T]) Under(q Query[T]) *Iterator[T] {
	return t.iterator(t.Min(), t.LT(q), true, false)
}

// RangeIter walks rows within [lo, hi], ascending.
func (t *Triee[T]) RangeIter(lo, hi Query[T]) *Iterator[T] {
	start, end, ok := t.Range(lo, hi)
	return t.iterator(start, end, ok, false)
}

// DescBy walks the rows equal to q. The order matches By: duplicates are
// always newest first.
func (t *Triee[T]) DescBy(q Query[T]) *Iterator[T] {
	row := t.EQ(q)
	return t.iterator(row, row, true, true)
}

// DescFrom walks rows less than or equal to q, descending.
func (t *Triee[T]) DescFrom(q Query[T]) *Iterator[T] {
	return t.iterator(t.LE(q), 0, false, true)
}

// DescOver walks rows strictly less than q, descending.
func (t *Triee[T]) DescOver(q Query[T]) *Iterator[T] {
	return t.iterator(t.LT(q), 0, false, true)
}

// DescTo walks rows greater than or equal to q, descending.
func (t *Triee[T]) DescTo(q Query[T]) *Iterator[T] {
	return t.iterator(t.Max(), t.GE(q), true, true)
}

// DescUnder walks rows strictly greater than q, descending.
func (t *Triee[T]) DescUnder(q Query[T]) *Iterator[T] {
	return t.iterator(t.Max(), t.GT(q), true, true)
}

// DescRange walks rows within [lo, hi], descending.
func (t *Triee[T]) DescRange(lo, hi Query[T]) *Iterator[T] {
	start, end, ok := t.Range(lo, hi)
	return t.iterator(end, start, ok, true)
}

// SameRows returns row followed by every older row holding an equal key.
// It yields nothing if row is not live.
func (t *Triee[T]) SameRows(row RowID) iter.Seq[RowID] {
	return func(yield func(RowID) bool) {
		if !t.Live(row) {
			return
		}
		for ; row != 0; row = t.node(row).Same {
			if !yield(row) {
				return
			}
		}
	}
}
