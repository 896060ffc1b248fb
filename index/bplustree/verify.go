package bplustree

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Verification errors, wrapped with the path of the offending node.
var (
	ErrTooManyKeys  = errors.New("bplustree: node holds more than 2t-1 keys")
	ErrTooFewKeys   = errors.New("bplustree: node holds fewer keys than allowed")
	ErrChildCount   = errors.New("bplustree: internal node child count is not keys+1")
	ErrUnordered    = errors.New("bplustree: keys not strictly increasing")
	ErrOutOfRange   = errors.New("bplustree: key outside its separator range")
	ErrUnbalanced   = errors.New("bplustree: leaves at different depths")
	ErrSizeMismatch = errors.New("bplustree: leaf key total disagrees with Len")
)

// Verify checks the structural invariants of the tree and returns the first
// violation found, or nil. A key equal to a separator belongs to the right
// subtree, so subtree ranges are [lo, hi).
func (bt *BPlusTree) Verify() error {
	v := &verifier{t: bt.T, leafDepth: -1}
	if err := v.walk(bt.Root, "root", 0, nil, nil); err != nil {
		return err
	}
	if v.leafDepth+1 != bt.height {
		return errors.Wrapf(ErrUnbalanced, "leaves at depth %d but height is %d", v.leafDepth, bt.height)
	}
	if v.leafKeys != bt.size {
		return errors.Wrapf(ErrSizeMismatch, "counted %d, Len %d", v.leafKeys, bt.size)
	}
	return nil
}

type verifier struct {
	t         int
	leafDepth int
	leafKeys  int
}

func (v *verifier) walk(x *BPlusNode, path string, depth int, lo, hi *int64) error {
	n := len(x.Keys)
	if n > 2*v.t-1 {
		return errors.Wrapf(ErrTooManyKeys, "%s: %d keys", path, n)
	}
	if depth > 0 && n < v.t-1 {
		return errors.Wrapf(ErrTooFewKeys, "%s: %d keys", path, n)
	}
	if !x.IsLeaf && len(x.Children) != n+1 {
		return errors.Wrapf(ErrChildCount, "%s: %d keys, %d children", path, n, len(x.Children))
	}
	for i, k := range x.Keys {
		if i > 0 && x.Keys[i-1] >= k {
			return errors.Wrapf(ErrUnordered, "%s: %d before %d", path, x.Keys[i-1], k)
		}
		if (lo != nil && k < *lo) || (hi != nil && k >= *hi) {
			return errors.Wrapf(ErrOutOfRange, "%s: key %d", path, k)
		}
	}

	if x.IsLeaf {
		v.leafKeys += n
		if v.leafDepth < 0 {
			v.leafDepth = depth
		} else if v.leafDepth != depth {
			return errors.Wrapf(ErrUnbalanced, "%s: leaf at depth %d, expected %d", path, depth, v.leafDepth)
		}
		return nil
	}

	for i, c := range x.Children {
		clo, chi := lo, hi
		if i > 0 {
			clo = &x.Keys[i-1]
		}
		if i < n {
			chi = &x.Keys[i]
		}
		if err := v.walk(c, fmt.Sprintf("%s/%d", path, i), depth+1, clo, chi); err != nil {
			return err
		}
	}
	return nil
}
