package avltriee

// Edge descends from the root following q and returns the row where the
// descent stopped together with the last ordering. On an empty tree it
// returns the zero Found.
func (t *Triee[T]) Edge(q Query[T]) Found {
	row := t.head.Root
	if row == 0 {
		return Found{}
	}
	for {
		n := t.node(row)
		ord := q(n.Value)
		switch {
		case ord > 0:
			if n.Left == 0 {
				return Found{Row: row, Ord: ord}
			}
			row = n.Left
		case ord < 0:
			if n.Right == 0 {
				return Found{Row: row, Ord: ord}
			}
			row = n.Right
		default:
			return Found{Row: row, Ord: 0}
		}
	}
}

// EQ returns the structural row whose value matches q, or 0. The row returned
// is the most recently written one; older rows with the same key follow it in
// SameRows.
func (t *Triee[T]) EQ(q Query[T]) RowID {
	f := t.Edge(q)
	if f.Row != 0 && f.Ord == 0 {
		return f.Row
	}
	return 0
}

// GE returns the first row whose value is greater than or equal to q.
func (t *Triee[T]) GE(q Query[T]) RowID {
	var keep RowID
	row := t.head.Root
	for row != 0 {
		n := t.node(row)
		ord := q(n.Value)
		switch {
		case ord > 0:
			keep = row
			row = n.Left
		case ord < 0:
			row = n.Right
		default:
			return row
		}
	}
	return keep
}

// GT returns the first row whose value is strictly greater than q.
func (t *Triee[T]) GT(q Query[T]) RowID {
	var keep RowID
	row := t.head.Root
	for row != 0 {
		n := t.node(row)
		ord := q(n.Value)
		switch {
		case ord > 0:
			keep = row
			row = n.Left
		case ord < 0:
			row = n.Right
		default:
			return t.successor(row)
		}
	}
	return keep
}

// LE returns the last row whose value is less than or equal to q.
func (t *Triee[T]) LE(q Query[T]) RowID {
	var keep RowID
	row := t.head.Root
	for row != 0 {
		n := t.node(row)
		ord := q(n.Value)
		switch {
		case ord < 0:
			keep = row
			row = n.Right
		case ord > 0:
			row = n.Left
		default:
			return row
		}
	}
	return keep
}

// LT returns the last row whose value is strictly less than q.
func (t *Triee[T]) LT(q Query[T]) RowID {
	var keep RowID
	row := t.head.Root
	for row != 0 {
		n := t.node(row)
		ord := q(n.Value)
		switch {
		case ord < 0:
			keep = row
			row = n.Right
		case ord > 0:
			row = n.Left
		default:
			return t.predecessor(row)
		}
	}
	return keep
}

// Range returns the first row at or above lo and the last row at or below hi.
// It returns false when no row falls inside [lo, hi].
func (t *Triee[T]) Range(lo, hi Query[T]) (start, end RowID, ok bool) {
	start = t.GE(lo)
	if start == 0 || hi(t.node(start).Value) > 0 {
		return 0, 0, false
	}
	end = t.LE(hi)
	return start, end, end != 0
}

// Min returns the structural row holding the smallest value, or 0.
func (t *Triee[T]) Min() RowID {
	return t.min(t.head.Root)
}

// Max returns the structural row holding the largest value, or 0.
func (t *Triee[T]) Max() RowID {
	return t.max(t.head.Root)
}

func (t *Triee[T]) min(row RowID) RowID {
	if row == 0 {
		return 0
	}
	for l := t.node(row).Left; l != 0; l = t.node(row).Left {
		row = l
	}
	return row
}

func (t *Triee[T]) max(row RowID) RowID {
	if row == 0 {
		return 0
	}
	for r := t.node(row).Right; r != 0; r = t.node(row).Right {
		row = r
	}
	return row
}

// successor returns the next structural row in order, skipping same chains.
func (t *Triee[T]) successor(row RowID) RowID {
	n := t.node(row)
	if n.Right != 0 {
		return t.min(n.Right)
	}
	for p := n.Parent; p != 0; p = t.node(row).Parent {
		if t.node(p).Left == row {
			return p
		}
		row = p
	}
	return 0
}

// predecessor returns the previous structural row in order.
func (t *Triee[T]) predecessor(row RowID) RowID {
	n := t.node(row)
	if n.Left != 0 {
		return t.max(n.Left)
	}
	for p := n.Parent; p != 0; p = t.node(row).Parent {
		if t.node(p).Right == row {
			return p
		}
		row = p
	}
	return 0
}
