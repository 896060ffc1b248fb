package cached

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/btree-query-bench/degree/index/btree"
	"github.com/btree-query-bench/degree/index/listindex"
)

func TestCachedLookups(t *testing.T) {
	c, err := New(listindex.NewListIndex(), 1000, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	for k := int64(0); k < 100; k++ {
		if err := c.Insert(k); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	c.Wait()

	for round := 0; round < 2; round++ {
		for k := int64(0); k < 100; k++ {
			ok, err := c.Contains(k)
			if err != nil || !ok {
				t.Fatalf("round %d: Contains(%d) = %t, %v", round, k, ok, err)
			}
		}
		for k := int64(100); k < 120; k++ {
			if ok, _ := c.Contains(k); ok {
				t.Fatalf("round %d: Contains(%d) should be false", round, k)
			}
		}
		c.Wait()
	}

	if c.Height() != 0 {
		t.Errorf("a list index has no height, got %d", c.Height())
	}
}

func TestCachedForwardsHeight(t *testing.T) {
	bt, err := btree.NewIndex(2)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	c, err := New(bt, 100, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	for k := int64(1); k <= 10; k++ {
		c.Insert(k)
	}
	if c.Height() != 3 {
		t.Errorf("height = %d, want 3", c.Height())
	}
}
