package btree

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// Node is a single B-tree node. Keys are strictly ascending; counts[i] is the
// multiplicity of keys[i]. Internal nodes own len(keys)+1 children.
type Node[K constraints.Ordered] struct {
	leaf     bool
	keys     []K
	counts   []int
	children []*Node[K]
}

func newLeaf[K constraints.Ordered]() *Node[K] {
	return &Node[K]{leaf: true}
}

// Leaf reports whether n has no children.
func (n *Node[K]) Leaf() bool { return n.leaf }

// Len returns the number of distinct keys stored in n.
func (n *Node[K]) Len() int { return len(n.keys) }

// Keys returns a copy of the node's keys in ascending order.
func (n *Node[K]) Keys() []K { return slices.Clone(n.keys) }

// Children returns a copy of the node's child slice. It is empty for leaves.
func (n *Node[K]) Children() []*Node[K] { return slices.Clone(n.children) }

// Count returns how many times key was inserted into n, or 0 if n does not
// hold it.
func (n *Node[K]) Count(key K) int {
	i, found := slices.BinarySearch(n.keys, key)
	if !found {
		return 0
	}
	return n.counts[i]
}

func (n *Node[K]) full(t int) bool {
	return len(n.keys) == 2*t-1
}
