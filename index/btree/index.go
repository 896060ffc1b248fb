package btree

import "github.com/btree-query-bench/degree/index"

var _ index.Index = (*Index)(nil)
var _ index.Heighter = (*Index)(nil)

// Index exposes an int64 Tree through the index.Index interface.
type Index struct {
	tree *Tree[int64]
}

func NewIndex(t int) (*Index, error) {
	tr, err := New[int64](t)
	if err != nil {
		return nil, err
	}
	return &Index{tree: tr}, nil
}

func (ix *Index) Insert(key int64) error {
	ix.tree.Insert(key)
	return nil
}

func (ix *Index) Contains(key int64) (bool, error) {
	return ix.tree.Contains(key), nil
}

func (ix *Index) Height() int        { return ix.tree.Height() }
func (ix *Index) Tree() *Tree[int64] { return ix.tree }
func (ix *Index) Close() error       { return nil }
