package avltriee

import (
	"cmp"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureValues are written to rows 1..11 in order.
var fixtureValues = []int{8, 8, 5, 10, 6, 3, 10, 8, 3, 5, 11}

func newFixture(t *testing.T) *Triee[int] {
	t.Helper()

	tr := NewOrdered[int]()
	for i, v := range fixtureValues {
		require.NoError(t, tr.Update(RowID(i+1), v))
		require.NoError(t, tr.Validate(), "after update of row %d", i+1)
	}
	return tr
}

func rows[T any](it *Iterator[T]) []RowID {
	return slices.Collect(it.Seq())
}

func TestFixtureSearch(t *testing.T) {
	t.Parallel()

	tr := newFixture(t)

	assert.Equal(t, RowID(0), tr.EQ(tr.Key(2)))
	assert.Equal(t, RowID(9), tr.EQ(tr.Key(3)))
	assert.Equal(t, RowID(9), tr.GT(tr.Key(2)))
	assert.Equal(t, RowID(11), tr.GT(tr.Key(10)))
	assert.Equal(t, RowID(11), tr.GE(tr.Key(11)))
	assert.Equal(t, RowID(0), tr.LT(tr.Key(2)))
	assert.Equal(t, RowID(0), tr.LE(tr.Key(2)))

	start, end, ok := tr.Range(tr.Key(2), tr.Key(10))
	require.True(t, ok)
	assert.Equal(t, RowID(9), start)
	assert.Equal(t, RowID(7), end)

	_, _, ok = tr.Range(tr.Key(1), tr.Key(2))
	assert.False(t, ok)

	start, end, ok = tr.Range(tr.Key(11), tr.Key(11))
	require.True(t, ok)
	assert.Equal(t, RowID(11), start)
	assert.Equal(t, RowID(11), end)
}

func TestFixtureShape(t *testing.T) {
	t.Parallel()

	tr := newFixture(t)

	assert.Equal(t, RowID(8), tr.Root())
	assert.Equal(t, uint32(11), tr.RowsCount())

	root, ok := tr.Node(8)
	require.True(t, ok)
	assert.Equal(t, StateTree, root.State)
	assert.Equal(t, RowID(10), root.Left)
	assert.Equal(t, RowID(7), root.Right)
	assert.Equal(t, RowID(2), root.Same)
	assert.Equal(t, uint8(3), root.Height)

	// Rows displaced by newer duplicates hang off the chain only.
	for _, row := range []RowID{1, 2, 3, 4, 6} {
		n, ok := tr.Node(row)
		require.True(t, ok)
		assert.Equal(t, StateSame, n.State, "row %d", row)
		assert.Zero(t, n.Left, "row %d", row)
		assert.Zero(t, n.Right, "row %d", row)
	}

	assert.Equal(t, []RowID{8, 2, 1}, slices.Collect(tr.SameRows(8)))
	assert.Equal(t, []RowID{2, 1}, slices.Collect(tr.SameRows(2)))
}

func TestBoundaries(t *testing.T) {
	t.Parallel()

	tr := newFixture(t)

	tests := []struct {
		name string
		q    int
		eq   RowID
		ge   RowID
		gt   RowID
		le   RowID
		lt   RowID
	}{
		{name: "below_min", q: 0, eq: 0, ge: 9, gt: 9, le: 0, lt: 0},
		{name: "min", q: 3, eq: 9, ge: 9, gt: 10, le: 9, lt: 0},
		{name: "gap", q: 4, eq: 0, ge: 10, gt: 10, le: 9, lt: 9},
		{name: "inner", q: 6, eq: 5, ge: 5, gt: 8, le: 5, lt: 10},
		{name: "root", q: 8, eq: 8, ge: 8, gt: 7, le: 8, lt: 5},
		{name: "max", q: 11, eq: 11, ge: 11, gt: 0, le: 11, lt: 7},
		{name: "above_max", q: 12, eq: 0, ge: 0, gt: 0, le: 11, lt: 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tr.Key(tt.q)
			assert.Equal(t, tt.eq, tr.EQ(q), "eq")
			assert.Equal(t, tt.ge, tr.GE(q), "ge")
			assert.Equal(t, tt.gt, tr.GT(q), "gt")
			assert.Equal(t, tt.le, tr.LE(q), "le")
			assert.Equal(t, tt.lt, tr.LT(q), "lt")
		})
	}
}

func TestEdge(t *testing.T) {
	t.Parallel()

	tr := NewOrdered[int]()
	assert.Equal(t, Found{}, tr.Edge(tr.Key(1)))

	tr = newFixture(t)
	assert.Equal(t, Found{Row: 10, Ord: 0}, tr.Edge(tr.Key(5)))

	f := tr.Edge(tr.Key(7))
	assert.Equal(t, RowID(5), f.Row)
	assert.Negative(t, f.Ord)

	f = tr.Edge(tr.Key(1))
	assert.Equal(t, RowID(9), f.Row)
	assert.Positive(t, f.Ord)
}

func TestQueryOtherType(t *testing.T) {
	t.Parallel()

	type user struct {
		age  int
		name string
	}
	byAge := func(a, b user) int { return cmp.Compare(a.age, b.age) }

	tr := New[user](NewVecAllocator[user](0), byAge)
	require.NoError(t, tr.Update(1, user{age: 30, name: "ann"}))
	require.NoError(t, tr.Update(2, user{age: 20, name: "bob"}))
	require.NoError(t, tr.Update(3, user{age: 40, name: "cid"}))

	age := func(stored user, key int) int { return cmp.Compare(stored.age, key) }
	assert.Equal(t, RowID(1), tr.EQ(By(30, age)))
	assert.Equal(t, RowID(3), tr.GT(By(30, age)))
	assert.Equal(t, "bob", tr.MustValue(tr.LT(By(25, age))).name)
}

func TestUpdateMovesRow(t *testing.T) {
	t.Parallel()

	tr := newFixture(t)

	require.NoError(t, tr.Update(11, 1))
	require.NoError(t, tr.Validate())
	assert.Equal(t, RowID(11), tr.Min())
	assert.Equal(t, RowID(0), tr.EQ(tr.Key(11)))
	assert.Equal(t, uint32(11), tr.RowsCount())

	// Moving a chain member out of its chain.
	require.NoError(t, tr.Update(1, 7))
	require.NoError(t, tr.Validate())
	assert.Equal(t, []RowID{8, 2}, slices.Collect(tr.SameRows(8)))
	assert.Equal(t, RowID(1), tr.EQ(tr.Key(7)))
}

func TestUpdateEqualIsNoop(t *testing.T) {
	t.Parallel()

	type pair struct {
		key     int
		payload int
	}
	byKey := func(a, b pair) int { return cmp.Compare(a.key, b.key) }

	t.Run("default", func(t *testing.T) {
		tr := New[pair](NewVecAllocator[pair](0), byKey)
		require.NoError(t, tr.Update(1, pair{key: 1, payload: 10}))
		require.NoError(t, tr.Update(2, pair{key: 1, payload: 20}))
		require.NoError(t, tr.Update(1, pair{key: 1, payload: 99}))

		assert.Equal(t, 10, tr.MustValue(1).payload)
		// The no-op update does not move row 1 to the front of the chain.
		assert.Equal(t, RowID(2), tr.EQ(tr.Key(pair{key: 1})))
		require.NoError(t, tr.Validate())
	})

	t.Run("replace_equal", func(t *testing.T) {
		tr := New[pair](NewVecAllocator[pair](0), byKey, WithReplaceEqual())
		require.NoError(t, tr.Update(1, pair{key: 1, payload: 10}))
		require.NoError(t, tr.Update(2, pair{key: 1, payload: 20}))
		require.NoError(t, tr.Update(1, pair{key: 1, payload: 99}))

		assert.Equal(t, 99, tr.MustValue(1).payload)
		assert.Equal(t, RowID(2), tr.EQ(tr.Key(pair{key: 1})))
		require.NoError(t, tr.Validate())
	})
}

func TestRowErrors(t *testing.T) {
	t.Parallel()

	tr := newFixture(t)

	err := tr.Update(0, 1)
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	err = tr.Delete(0)
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	err = tr.Delete(1000)
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	_, ok := tr.Value(1000)
	assert.False(t, ok)
	_, ok = tr.Node(0)
	assert.False(t, ok)
	assert.False(t, tr.Live(1000))

	assert.Panics(t, func() { tr.MustValue(1000) })
	assert.NotPanics(t, func() { tr.MustValue(11) })

	require.NoError(t, tr.Validate())
}

func TestAllocationFailure(t *testing.T) {
	t.Parallel()

	tr := New[int](NewVecAllocator[int](4), cmp.Compare[int])
	for row := RowID(1); row <= 4; row++ {
		require.NoError(t, tr.Update(row, int(row)*10))
	}
	before := rows(tr.Iter())
	head := tr.Head()

	err := tr.Update(5, 25)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocation))

	assert.Equal(t, before, rows(tr.Iter()))
	assert.Equal(t, head, tr.Head())
	require.NoError(t, tr.Validate())

	// Rows inside the arena keep working.
	require.NoError(t, tr.Update(2, 25))
	require.NoError(t, tr.Validate())
}

func TestDeleteFreeRowIsNoop(t *testing.T) {
	t.Parallel()

	tr := newFixture(t)
	require.NoError(t, tr.Delete(4))
	head := tr.Head()

	require.NoError(t, tr.Delete(4))
	assert.Equal(t, head, tr.Head())
	require.NoError(t, tr.Validate())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	alloc := NewVecAllocator[int](0)
	tr := New[int](alloc, cmp.Compare[int])
	for i, v := range fixtureValues {
		require.NoError(t, tr.Update(RowID(i+1), v))
	}
	require.NoError(t, tr.Delete(11))

	loaded, err := Load[int](alloc, cmp.Compare[int])
	require.NoError(t, err)
	assert.Equal(t, tr.Head(), loaded.Head())
	assert.Equal(t, rows(tr.Iter()), rows(loaded.Iter()))
	require.NoError(t, loaded.Validate())
}

func TestLoadCorruption(t *testing.T) {
	t.Parallel()

	alloc := NewVecAllocator[int](0)
	require.NoError(t, alloc.Resize(2))
	nodes := alloc.Nodes()
	nodes[1] = Node[int]{Height: 1, State: StateTree, Value: 1}
	nodes[2] = Node[int]{Height: 1, State: StateTree, Value: 2}

	_, err := Load[int](alloc, cmp.Compare[int])
	assert.ErrorIs(t, err, ErrCorruption)

	nodes[1].Parent = 2
	nodes[2].Left = 1
	nodes[2].Height = 2
	tr, err := Load[int](alloc, cmp.Compare[int])
	require.NoError(t, err)
	assert.Equal(t, RowID(2), tr.Root())
	assert.Equal(t, uint32(2), tr.RowsCount())
	require.NoError(t, tr.Validate())
}

func TestLoadRejectsBrokenLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(nodes []Node[int])
	}{
		{
			name:    "left_past_arena",
			corrupt: func(nodes []Node[int]) { nodes[8].Left = 900 },
		},
		{
			name:    "right_past_arena",
			corrupt: func(nodes []Node[int]) { nodes[7].Right = 900 },
		},
		{
			name:    "same_past_arena",
			corrupt: func(nodes []Node[int]) { nodes[2].Same = 900 },
		},
		{
			name:    "same_to_free_slot",
			corrupt: func(nodes []Node[int]) { nodes[9].Same = 11 },
		},
		{
			name:    "child_parent",
			corrupt: func(nodes []Node[int]) { nodes[5].Parent = 7 },
		},
		{
			name:    "height",
			corrupt: func(nodes []Node[int]) { nodes[10].Height = 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			alloc := NewVecAllocator[int](0)
			tr := New[int](alloc, cmp.Compare[int])
			for i, v := range fixtureValues {
				require.NoError(t, tr.Update(RowID(i+1), v))
			}
			require.NoError(t, tr.Delete(11))
			tt.corrupt(alloc.Nodes())

			_, err := Load[int](alloc, cmp.Compare[int])
			require.ErrorIs(t, err, ErrCorruption)
		})
	}

	// A lone structural slot pointing outside a small arena
	alloc := NewVecAllocator[int](0)
	require.NoError(t, alloc.Resize(3))
	alloc.Nodes()[1] = Node[int]{State: StateTree, Height: 2, Left: 900, Value: 1}
	_, err := Load[int](alloc, cmp.Compare[int])
	require.ErrorIs(t, err, ErrCorruption)
}

func TestValidateDetectsCorruption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(nodes []Node[int])
	}{
		{
			name:    "height",
			corrupt: func(nodes []Node[int]) { nodes[8].Height = 7 },
		},
		{
			name:    "parent",
			corrupt: func(nodes []Node[int]) { nodes[9].Parent = 8 },
		},
		{
			name:    "order",
			corrupt: func(nodes []Node[int]) { nodes[11].Value = 0 },
		},
		{
			name:    "chain_children",
			corrupt: func(nodes []Node[int]) { nodes[1].Left = 6 },
		},
		{
			name:    "chain_value",
			corrupt: func(nodes []Node[int]) { nodes[4].Value = 9 },
		},
		{
			name:    "stray_row",
			corrupt: func(nodes []Node[int]) { nodes[7].Same = 0 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := NewVecAllocator[int](0)
			tr := New[int](alloc, cmp.Compare[int])
			for i, v := range fixtureValues {
				require.NoError(t, tr.Update(RowID(i+1), v))
			}
			require.NoError(t, tr.Validate())

			tt.corrupt(alloc.Nodes())
			assert.ErrorIs(t, tr.Validate(), ErrCorruption)
		})
	}
}
