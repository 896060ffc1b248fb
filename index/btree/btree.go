// Package btree implements an in-memory B-tree keyed by any ordered type.
//
// The tree is parameterised by its minimum degree t: every node holds at most
// 2t-1 keys, every node except the root holds at least t-1, and an internal
// node with k keys has k+1 children. Insertion splits full nodes on the way
// down, so a single top-down pass is enough and the tree only grows in height
// when the root itself is split.
//
// Inserting a key that is already present does not add a second copy. The
// node holding the key counts it instead; see Tree.Count.
//
// Deletion is not supported. A Tree is not safe for concurrent use.
package btree

import (
	"slices"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// ErrInvalidDegree is returned by New when the minimum degree is below 2.
var ErrInvalidDegree = errors.New("btree: minimum degree must be at least 2")

// Tree is a B-tree of minimum degree t. The zero value is not usable; use New.
type Tree[K constraints.Ordered] struct {
	t      int
	root   *Node[K]
	height int
	size   int
}

// New returns an empty tree with minimum degree t.
func New[K constraints.Ordered](t int) (*Tree[K], error) {
	if t < 2 {
		return nil, errors.Wrapf(ErrInvalidDegree, "got %d", t)
	}
	return &Tree[K]{t: t, root: newLeaf[K](), height: 1}, nil
}

// MustNew is like New but panics on an invalid degree.
func MustNew[K constraints.Ordered](t int) *Tree[K] {
	tr, err := New[K](t)
	if err != nil {
		panic(err)
	}
	return tr
}

// Degree returns the minimum degree t the tree was built with.
func (tr *Tree[K]) Degree() int { return tr.t }

// MaxKeys returns 2t-1, the most keys any node may hold.
func (tr *Tree[K]) MaxKeys() int { return 2*tr.t - 1 }

// MinKeys returns t-1, the fewest keys a non-root node may hold.
func (tr *Tree[K]) MinKeys() int { return tr.t - 1 }

// Root returns the root node. An empty tree has an empty leaf root.
func (tr *Tree[K]) Root() *Node[K] { return tr.root }

// Height returns the number of levels in the tree, counting nodes rather
// than edges: a tree whose root is a leaf has height 1.
func (tr *Tree[K]) Height() int { return tr.height }

// Len returns the number of distinct keys. Repeated inserts of a key are
// reported by Count, not Len.
func (tr *Tree[K]) Len() int { return tr.size }

// Search returns the node holding key, or nil if key is not in the tree.
func (tr *Tree[K]) Search(key K) *Node[K] {
	return tr.search(tr.root, key)
}

func (tr *Tree[K]) search(x *Node[K], key K) *Node[K] {
	i, found := slices.BinarySearch(x.keys, key)
	if found {
		return x
	}
	if x.leaf {
		return nil
	}
	return tr.search(x.children[i], key)
}

func (tr *Tree[K]) Contains(key K) bool {
	return tr.Search(key) != nil
}

// Count returns the number of times key has been inserted.
func (tr *Tree[K]) Count(key K) int {
	n := tr.Search(key)
	if n == nil {
		return 0
	}
	return n.Count(key)
}

// Insert adds key to the tree. Inserting a key that is already present only
// bumps its count and leaves the structure untouched.
func (tr *Tree[K]) Insert(key K) {
	if n := tr.Search(key); n != nil {
		i, _ := slices.BinarySearch(n.keys, key)
		n.counts[i]++
		return
	}

	root := tr.root
	if root.full(tr.t) {
		newRoot := &Node[K]{children: []*Node[K]{root}}
		tr.splitChild(newRoot, 0)
		tr.root = newRoot
		tr.height++
	}
	tr.insertNonFull(tr.root, key)
	tr.size++
}

// insertNonFull inserts key below x, which must not be full.
func (tr *Tree[K]) insertNonFull(x *Node[K], key K) {
	i, _ := slices.BinarySearch(x.keys, key)
	if x.leaf {
		x.keys = slices.Insert(x.keys, i, key)
		x.counts = slices.Insert(x.counts, i, 1)
		return
	}
	if x.children[i].full(tr.t) {
		tr.splitChild(x, i)
		if key > x.keys[i] {
			i++
		}
	}
	tr.insertNonFull(x.children[i], key)
}

/*
splitChild splits the full child y = x.children[i] around its median key
y.keys[t-1]. The median moves up into x at position i, the upper t-1 keys
(and upper t children) move into a new right sibling z placed at
x.children[i+1], and y keeps the lower half. x must not be full.
*/
func (tr *Tree[K]) splitChild(x *Node[K], i int) {
	t := tr.t
	y := x.children[i]
	z := &Node[K]{leaf: y.leaf}

	z.keys = append(z.keys, y.keys[t:]...)
	z.counts = append(z.counts, y.counts[t:]...)
	if !y.leaf {
		z.children = append(z.children, y.children[t:]...)
	}

	midKey, midCount := y.keys[t-1], y.counts[t-1]
	clear(y.keys[t-1:])
	y.keys, y.counts = y.keys[:t-1], y.counts[:t-1]
	if !y.leaf {
		clear(y.children[t:])
		y.children = y.children[:t]
	}

	x.keys = slices.Insert(x.keys, i, midKey)
	x.counts = slices.Insert(x.counts, i, midCount)
	x.children = slices.Insert(x.children, i+1, z)
}
