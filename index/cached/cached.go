// Package cached puts a ristretto cache of positive lookups in front of an
// index.Index. Keys are never removed from an index, so a cached hit can not
// go stale and Insert never has to invalidate anything.
package cached

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/btree-query-bench/degree/index"
)

var _ index.Index = (*Index)(nil)
var _ index.Heighter = (*Index)(nil)

type Index struct {
	inner  index.Index
	cache  *ristretto.Cache[int64, struct{}]
	logger *zap.Logger
}

// New wraps inner with a cache holding up to capacity keys.
func New(inner index.Index, capacity int64, logger *zap.Logger) (*Index, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[int64, struct{}]{
		NumCounters: capacity * 10,
		MaxCost:     capacity,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cached: new cache")
	}
	return &Index{inner: inner, cache: cache, logger: logger}, nil
}

func (c *Index) Insert(key int64) error {
	if err := c.inner.Insert(key); err != nil {
		return err
	}
	c.cache.Set(key, struct{}{}, 1)
	return nil
}

func (c *Index) Contains(key int64) (bool, error) {
	if _, ok := c.cache.Get(key); ok {
		return true, nil
	}
	ok, err := c.inner.Contains(key)
	if err != nil {
		return false, err
	}
	if ok {
		c.cache.Set(key, struct{}{}, 1)
	}
	return ok, nil
}

// Height reports the height of the wrapped index, or 0 if it has none.
func (c *Index) Height() int {
	if h, ok := c.inner.(index.Heighter); ok {
		return h.Height()
	}
	return 0
}

// Unwrap returns the index behind the cache.
func (c *Index) Unwrap() index.Index { return c.inner }

// Wait blocks until buffered cache writes have been applied.
func (c *Index) Wait() { c.cache.Wait() }

func (c *Index) Close() error {
	m := c.cache.Metrics
	c.logger.Info("cache closed",
		zap.Uint64("hits", m.Hits()),
		zap.Uint64("misses", m.Misses()),
		zap.Float64("ratio", m.Ratio()),
	)
	c.cache.Close()
	return c.inner.Close()
}
