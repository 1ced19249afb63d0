package avltriee

// Delete removes row from the tree and frees its slot. Deleting a free row is
// a no-op; a row outside the arena fails with ErrRowOutOfRange.
func (t *Triee[T]) Delete(row RowID) error {
	if err := t.check(row); err != nil {
		return err
	}
	if t.node(row).Live() {
		t.delete(row)
	}
	return nil
}

func (t *Triee[T]) delete(row RowID) {
	n := t.node(row)

	switch {
	case n.State == StateSame:
		// Chain member: unlink it, the tree does not change.
		prev := n.Parent
		t.node(prev).Same = n.Same
		t.setParent(n.Same, prev)

	case n.Same != 0:
		// Chain head: the next duplicate takes over the structural slot.
		next := n.Same
		s := t.node(next)
		s.Parent = n.Parent
		s.Left = n.Left
		s.Right = n.Right
		s.Height = n.Height
		s.State = StateTree
		t.setParent(n.Left, next)
		t.setParent(n.Right, next)
		t.replaceChild(n.Parent, row, next)

	default:
		t.unlink(row)
	}

	*n = Node[T]{}

	if uint32(row) == t.head.RowsCount {
		r := row - 1
		for r > 0 && !t.node(r).Live() {
			r--
		}
		t.head.RowsCount = uint32(r)
	}
}

// unlink removes a structural node without duplicates and rebalances.
func (t *Triee[T]) unlink(row RowID) {
	n := t.node(row)
	parent := n.Parent

	switch {
	case n.Left == 0 && n.Right == 0:
		t.replaceChild(parent, row, 0)
		t.balance(parent)

	case n.Left == 0 || n.Right == 0:
		child := n.Left
		if child == 0 {
			child = n.Right
		}
		t.replaceChild(parent, row, child)
		t.node(child).Parent = parent
		t.balance(parent)

	default:
		repl := t.max(n.Left)
		r := t.node(repl)
		if repl == n.Left {
			// The left child has no right subtree; it takes row's place and
			// adopts row's right subtree.
			r.Right = n.Right
			t.node(n.Right).Parent = repl
			r.Parent = parent
			r.Height = n.Height
			t.replaceChild(parent, row, repl)
			t.balance(repl)
			return
		}

		from := r.Parent
		t.node(from).Right = r.Left
		t.setParent(r.Left, from)

		r.Left = n.Left
		r.Right = n.Right
		r.Parent = parent
		r.Height = n.Height
		t.node(n.Left).Parent = repl
		t.node(n.Right).Parent = repl
		t.replaceChild(parent, row, repl)
		t.balance(from)
	}
}
