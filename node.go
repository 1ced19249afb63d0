package avltriee

// RowID identifies one arena slot. Row ids are assigned by the caller; zero
// means "no row" and names the reserved sentinel slot.
type RowID uint32

// State is the liveness tag of an arena slot.
type State uint8

const (
	// StateFree marks an unused slot. All links are zero.
	StateFree State = iota

	// StateTree marks a structural node: it takes part in the binary tree
	// through Parent, Left and Right.
	StateTree

	// StateSame marks a duplicate chain member. Left and Right are always
	// zero; Parent is the previous row of the chain (the chain head or an
	// older member's predecessor).
	StateSame
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateTree:
		return "tree"
	case StateSame:
		return "same"
	default:
		return "unknown"
	}
}

// Node is the per-row record stored in the arena.
//
// The layout is fixed size and, for pointer-free T, safe to place in a
// memory-mapped region.
type Node[T any] struct {
	Parent RowID
	Left   RowID
	Right  RowID
	Same   RowID // Next (older) row holding an equal key
	Height uint8
	State  State
	Value  T
}

// Live reports whether the slot holds a row.
func (n *Node[T]) Live() bool {
	return n.State != StateFree
}

// Head is the tree metadata: the root row and the row-count high-water mark.
type Head struct {
	Root      RowID
	RowsCount uint32
}

// Found is the result of an edge descent: the last row visited and the
// ordering of its value against the query.
type Found struct {
	Row RowID
	Ord int
}

// Query orders a stored value against a search key. It returns a negative
// number when stored sorts before the key, zero when they are equal and a
// positive number when stored sorts after it.
type Query[T any] func(stored T) int

// By builds a Query for a key whose type differs from the stored value type.
func By[T, Q any](key Q, cmp func(stored T, key Q) int) Query[T] {
	return func(stored T) int {
		return cmp(stored, key)
	}
}
