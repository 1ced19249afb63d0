package avltriee

import "fmt"

// Validate walks the whole tree and checks its invariants: parent links,
// ordering, stored heights, AVL balance, same chains and the head. Every
// violation is reported as an error wrapping ErrCorruption.
//
// Validate is O(n) and intended for tests and offline checks.
func (t *Triee[T]) Validate() error {
	root := t.head.Root
	if root != 0 {
		if err := t.check(root); err != nil {
			return fmt.Errorf("%w: root: %v", ErrCorruption, err)
		}
		if p := t.node(root).Parent; p != 0 {
			return fmt.Errorf("%w: root %d has parent %d", ErrCorruption, root, p)
		}
	}

	var seen, highest int
	if _, err := t.validate(root, &seen, &highest); err != nil {
		return err
	}

	var live int
	for i := 1; i < len(t.nodes); i++ {
		if t.nodes[i].Live() {
			live++
		}
	}
	if live != seen {
		return fmt.Errorf("%w: %d live slots but %d reachable rows", ErrCorruption, live, seen)
	}
	if uint32(highest) != t.head.RowsCount {
		return fmt.Errorf("%w: rows count %d, highest live row %d", ErrCorruption, t.head.RowsCount, highest)
	}
	return nil
}

// validate checks the subtree at row and returns its height.
func (t *Triee[T]) validate(row RowID, seen, highest *int) (uint8, error) {
	if row == 0 {
		return 0, nil
	}
	n := t.node(row)
	if n.State != StateTree {
		return 0, fmt.Errorf("%w: row %d is linked into the tree in state %s", ErrCorruption, row, n.State)
	}

	for _, child := range []RowID{n.Left, n.Right} {
		if child == 0 {
			continue
		}
		if err := t.check(child); err != nil {
			return 0, fmt.Errorf("%w: child of %d: %v", ErrCorruption, row, err)
		}
		if p := t.node(child).Parent; p != row {
			return 0, fmt.Errorf("%w: row %d has parent %d, expected %d", ErrCorruption, child, p, row)
		}
	}
	if n.Left != 0 && t.cmp(t.node(n.Left).Value, n.Value) >= 0 {
		return 0, fmt.Errorf("%w: left child %d does not sort before %d", ErrCorruption, n.Left, row)
	}
	if n.Right != 0 && t.cmp(t.node(n.Right).Value, n.Value) <= 0 {
		return 0, fmt.Errorf("%w: right child %d does not sort after %d", ErrCorruption, n.Right, row)
	}

	hl, err := t.validate(n.Left, seen, highest)
	if err != nil {
		return 0, err
	}
	hr, err := t.validate(n.Right, seen, highest)
	if err != nil {
		return 0, err
	}
	if diff := int(hl) - int(hr); diff > 1 || diff < -1 {
		return 0, fmt.Errorf("%w: row %d is unbalanced (%d vs %d)", ErrCorruption, row, hl, hr)
	}
	h := 1 + max(hl, hr)
	if n.Height != h {
		return 0, fmt.Errorf("%w: row %d stores height %d, computed %d", ErrCorruption, row, n.Height, h)
	}
	if n.Left != 0 && t.cmp(t.node(t.max(n.Left)).Value, n.Value) >= 0 {
		return 0, fmt.Errorf("%w: left subtree of %d is out of order", ErrCorruption, row)
	}
	if n.Right != 0 && t.cmp(t.node(t.min(n.Right)).Value, n.Value) <= 0 {
		return 0, fmt.Errorf("%w: right subtree of %d is out of order", ErrCorruption, row)
	}

	prev := row
	for r := row; r != 0; r = t.node(r).Same {
		if err := t.check(r); err != nil {
			return 0, fmt.Errorf("%w: same chain of %d: %v", ErrCorruption, row, err)
		}
		m := t.node(r)
		if r != row {
			if m.State != StateSame {
				return 0, fmt.Errorf("%w: chain member %d is in state %s", ErrCorruption, r, m.State)
			}
			if m.Left != 0 || m.Right != 0 {
				return 0, fmt.Errorf("%w: chain member %d has children", ErrCorruption, r)
			}
			if m.Parent != prev {
				return 0, fmt.Errorf("%w: chain member %d has parent %d, expected %d", ErrCorruption, r, m.Parent, prev)
			}
			if t.cmp(m.Value, n.Value) != 0 {
				return 0, fmt.Errorf("%w: chain member %d does not equal head %d", ErrCorruption, r, row)
			}
		}
		*seen++
		if *seen >= len(t.nodes) {
			return 0, fmt.Errorf("%w: cycle through row %d", ErrCorruption, r)
		}
		*highest = max(*highest, int(r))
		prev = r
	}
	return h, nil
}
