// Package bplustree is a keys-only B+ tree used as a baseline next to the
// B-tree. Every key lives in a leaf; internal nodes hold separator copies,
// so lookups always descend the full height of the tree.
package bplustree

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/btree-query-bench/degree/index"
)

var (
	_ index.Index    = (*BPlusTree)(nil)
	_ index.Heighter = (*BPlusTree)(nil)
)

// ErrInvalidDegree is returned by NewBPlusTree for t < 2.
var ErrInvalidDegree = errors.New("bplustree: minimum degree must be at least 2")

type BPlusNode struct {
	IsLeaf   bool
	Keys     []int64
	Children []*BPlusNode // only populated if IsLeaf == false
}

type BPlusTree struct {
	T      int // minimum degree, max keys = 2t-1
	Root   *BPlusNode
	height int
	size   int
}

func NewBPlusTree(t int) (*BPlusTree, error) {
	if t < 2 {
		return nil, errors.Wrapf(ErrInvalidDegree, "got %d", t)
	}
	return &BPlusTree{
		T:      t,
		Root:   &BPlusNode{IsLeaf: true},
		height: 1,
	}, nil
}

// --- LOOKUP ---

func (bt *BPlusTree) Contains(key int64) (bool, error) {
	node := bt.findLeaf(bt.Root, key)
	_, found := slices.BinarySearch(node.Keys, key)
	return found, nil
}

func (bt *BPlusTree) findLeaf(curr *BPlusNode, key int64) *BPlusNode {
	for !curr.IsLeaf {
		curr = curr.Children[childIndex(curr.Keys, key)]
	}
	return curr
}

// childIndex picks the child to descend into: keys equal to a separator live
// in the right subtree.
func childIndex(keys []int64, key int64) int {
	i, found := slices.BinarySearch(keys, key)
	if found {
		i++
	}
	return i
}

// --- INSERT ---

// Insert adds key to the tree. Inserting a key that is already present
// leaves the key set unchanged.
func (bt *BPlusTree) Insert(key int64) error {
	root := bt.Root
	// If root is full, tree grows in height
	if len(root.Keys) == 2*bt.T-1 {
		newRoot := &BPlusNode{IsLeaf: false, Children: []*BPlusNode{root}}
		bt.splitChild(newRoot, 0)
		bt.Root = newRoot
		bt.height++
	}
	if bt.insertNonFull(bt.Root, key) {
		bt.size++
	}
	return nil
}

func (bt *BPlusTree) insertNonFull(x *BPlusNode, k int64) bool {
	for !x.IsLeaf {
		i := childIndex(x.Keys, k)
		if len(x.Children[i].Keys) == 2*bt.T-1 {
			bt.splitChild(x, i)
			if k >= x.Keys[i] {
				i++
			}
		}
		x = x.Children[i]
	}
	idx, found := slices.BinarySearch(x.Keys, k)
	if found {
		return false
	}
	x.Keys = slices.Insert(x.Keys, idx, k)
	return true
}

func (bt *BPlusTree) splitChild(x *BPlusNode, i int) {
	t := bt.T
	y := x.Children[i]
	z := &BPlusNode{IsLeaf: y.IsLeaf}

	if y.IsLeaf {
		// the first key of the new leaf is copied to the parent
		z.Keys = append([]int64{}, y.Keys[t-1:]...)
		y.Keys = slices.Clip(y.Keys[:t-1])
		x.Keys = slices.Insert(x.Keys, i, z.Keys[0])
	} else {
		// the middle key moves to the parent
		z.Keys = append([]int64{}, y.Keys[t:]...)
		z.Children = append([]*BPlusNode{}, y.Children[t:]...)

		midKey := y.Keys[t-1]
		clear(y.Children[t:])
		y.Keys = slices.Clip(y.Keys[:t-1])
		y.Children = slices.Clip(y.Children[:t])

		x.Keys = slices.Insert(x.Keys, i, midKey)
	}
	x.Children = slices.Insert(x.Children, i+1, z)
}

// Height is the number of levels; a lone leaf root has height 1.
func (bt *BPlusTree) Height() int { return bt.height }

// Len is the number of distinct keys stored in the leaves.
func (bt *BPlusTree) Len() int { return bt.size }

func (bt *BPlusTree) Close() error { return nil }
