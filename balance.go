package avltriee

// balance walks from row up to the root restoring heights and the AVL
// balance. It stops at the first node whose subtree height did not change.
func (t *Triee[T]) balance(row RowID) {
	for row != 0 {
		n := t.node(row)
		before := n.Height

		hl, hr := t.height(n.Left), t.height(n.Right)
		n.Height = 1 + max(hl, hr)

		switch {
		case int(hl)-int(hr) == 2:
			l := t.node(n.Left)
			if t.height(l.Left) < t.height(l.Right) {
				t.rotateLeft(n.Left)
			}
			row = t.rotateRight(row)
		case int(hr)-int(hl) == 2:
			r := t.node(n.Right)
			if t.height(r.Left) > t.height(r.Right) {
				t.rotateRight(n.Right)
			}
			row = t.rotateLeft(row)
		}

		n = t.node(row)
		if n.Height == before {
			return
		}
		row = n.Parent
	}
}

// rotateRight turns (y (x a b) c) into (x a (y b c)) and returns x.
func (t *Triee[T]) rotateRight(y RowID) RowID {
	yn := t.node(y)
	parent := yn.Parent
	x := yn.Left
	xn := t.node(x)
	b := xn.Right

	xn.Right = y
	yn.Parent = x
	yn.Left = b
	t.setParent(b, y)
	xn.Parent = parent
	t.replaceChild(parent, y, x)

	t.fixHeight(y)
	t.fixHeight(x)
	return x
}

// rotateLeft turns (x a (y b c)) into (y (x a b) c) and returns y.
func (t *Triee[T]) rotateLeft(x RowID) RowID {
	xn := t.node(x)
	parent := xn.Parent
	y := xn.Right
	yn := t.node(y)
	b := yn.Left

	yn.Left = x
	xn.Parent = y
	xn.Right = b
	t.setParent(b, x)
	yn.Parent = parent
	t.replaceChild(parent, x, y)

	t.fixHeight(x)
	t.fixHeight(y)
	return y
}

func (t *Triee[T]) fixHeight(row RowID) {
	n := t.node(row)
	n.Height = 1 + max(t.height(n.Left), t.height(n.Right))
}
