package btree

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Verification errors. Verify wraps them with the path of the offending node.
var (
	ErrTooManyKeys  = errors.New("btree: node holds more than 2t-1 keys")
	ErrTooFewKeys   = errors.New("btree: node holds fewer keys than allowed")
	ErrChildCount   = errors.New("btree: internal node child count is not keys+1")
	ErrLeafFlag     = errors.New("btree: leaf flag disagrees with children")
	ErrUnordered    = errors.New("btree: keys not strictly increasing")
	ErrOutOfRange   = errors.New("btree: key outside its separator range")
	ErrUnbalanced   = errors.New("btree: leaves at different depths")
	ErrBadCount     = errors.New("btree: bad key multiplicity")
	ErrSizeMismatch = errors.New("btree: distinct key total disagrees with Len")
)

// Verify checks every structural invariant of the tree and returns the first
// violation found, or nil.
func (tr *Tree[K]) Verify() error {
	v := &verifier[K]{t: tr.t, leafDepth: -1}
	if err := v.walk(tr.root, "root", 0, nil, nil); err != nil {
		return err
	}
	if v.leafDepth+1 != tr.height {
		return errors.Wrapf(ErrUnbalanced, "leaves at depth %d but height is %d", v.leafDepth, tr.height)
	}
	if v.keys != tr.size {
		return errors.Wrapf(ErrSizeMismatch, "counted %d, Len %d", v.keys, tr.size)
	}
	return nil
}

type verifier[K constraints.Ordered] struct {
	t         int
	leafDepth int
	keys      int
}

// walk checks x and its subtree. Every key of x must lie strictly between lo
// and hi when those are set.
func (v *verifier[K]) walk(x *Node[K], path string, depth int, lo, hi *K) error {
	n := len(x.keys)
	if n > 2*v.t-1 {
		return errors.Wrapf(ErrTooManyKeys, "%s: %d keys", path, n)
	}
	if depth > 0 && n < v.t-1 {
		return errors.Wrapf(ErrTooFewKeys, "%s: %d keys", path, n)
	}
	if depth == 0 && !x.leaf && n == 0 {
		return errors.Wrapf(ErrTooFewKeys, "%s: internal root without keys", path)
	}
	if x.leaf != (len(x.children) == 0) {
		return errors.Wrapf(ErrLeafFlag, "%s: leaf=%t with %d children", path, x.leaf, len(x.children))
	}
	if !x.leaf && len(x.children) != n+1 {
		return errors.Wrapf(ErrChildCount, "%s: %d keys, %d children", path, n, len(x.children))
	}
	if len(x.counts) != n {
		return errors.Wrapf(ErrBadCount, "%s: %d counts for %d keys", path, len(x.counts), n)
	}

	for i, k := range x.keys {
		if i > 0 && x.keys[i-1] >= k {
			return errors.Wrapf(ErrUnordered, "%s: %v before %v", path, x.keys[i-1], k)
		}
		if (lo != nil && k <= *lo) || (hi != nil && k >= *hi) {
			return errors.Wrapf(ErrOutOfRange, "%s: key %v", path, k)
		}
		if x.counts[i] < 1 {
			return errors.Wrapf(ErrBadCount, "%s: key %v counted %d times", path, k, x.counts[i])
		}
	}
	v.keys += n

	if x.leaf {
		if v.leafDepth < 0 {
			v.leafDepth = depth
		} else if v.leafDepth != depth {
			return errors.Wrapf(ErrUnbalanced, "%s: leaf at depth %d, expected %d", path, depth, v.leafDepth)
		}
		return nil
	}

	for i, c := range x.children {
		clo, chi := lo, hi
		if i > 0 {
			clo = &x.keys[i-1]
		}
		if i < n {
			chi = &x.keys[i]
		}
		if err := v.walk(c, fmt.Sprintf("%s/%d", path, i), depth+1, clo, chi); err != nil {
			return err
		}
	}
	return nil
}
