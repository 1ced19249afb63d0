package avltriee

// Update stores value at row, inserting the row into the tree or moving it to
// its new position.
//
// If the row is live and value compares Equal to the stored value the call
// leaves the row untouched, unless the engine was built WithReplaceEqual, in
// which case only the payload is overwritten. Update grows the allocator to
// cover row first; a failed growth leaves the tree unchanged.
func (t *Triee[T]) Update(row RowID, value T) error {
	if err := t.grow(row); err != nil {
		return err
	}

	if n := t.node(row); n.Live() {
		if t.cmp(n.Value, value) == 0 {
			if t.replaceEqual {
				n.Value = value
			}
			return nil
		}
		t.delete(row)
	}

	if uint32(row) > t.head.RowsCount {
		t.head.RowsCount = uint32(row)
	}

	if t.head.Root == 0 {
		*t.node(row) = Node[T]{Height: 1, State: StateTree, Value: value}
		t.head.Root = row
		return nil
	}

	found := t.Edge(t.Key(value))
	if found.Ord == 0 {
		t.attachSame(row, found.Row, value)
		return nil
	}

	*t.node(row) = Node[T]{Parent: found.Row, Height: 1, State: StateTree, Value: value}
	if found.Ord > 0 {
		t.node(found.Row).Left = row
	} else {
		t.node(found.Row).Right = row
	}
	t.balance(found.Row)
	return nil
}

// attachSame puts row in anchor's structural slot and pushes anchor onto the
// front of row's same chain. The tree shape is unchanged.
func (t *Triee[T]) attachSame(row, anchor RowID, value T) {
	a := t.node(anchor)
	*t.node(row) = Node[T]{
		Parent: a.Parent,
		Left:   a.Left,
		Right:  a.Right,
		Same:   anchor,
		Height: a.Height,
		State:  StateTree,
		Value:  value,
	}
	t.setParent(a.Left, row)
	t.setParent(a.Right, row)
	t.replaceChild(a.Parent, anchor, row)

	a.Parent = row
	a.Left = 0
	a.Right = 0
	a.Height = 0
	a.State = StateSame
}
