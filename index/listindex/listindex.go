// Package listindex is the sorted-slice baseline: a single ordered array,
// searched by bisection and grown by shifting its tail.
package listindex

import (
	"slices"

	"github.com/btree-query-bench/degree/index"
)

var _ index.Index = (*ListIndex)(nil)

type ListIndex struct {
	Keys []int64
}

func NewListIndex() *ListIndex {
	return &ListIndex{
		Keys: make([]int64, 0),
	}
}

func (l *ListIndex) Insert(key int64) error {
	i, found := slices.BinarySearch(l.Keys, key)
	if found {
		return nil
	}
	l.Keys = slices.Insert(l.Keys, i, key)
	return nil
}

func (l *ListIndex) Contains(key int64) (bool, error) {
	_, found := slices.BinarySearch(l.Keys, key)
	return found, nil
}

func (l *ListIndex) Len() int     { return len(l.Keys) }
func (l *ListIndex) Close() error { return nil }
