package btree

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestIndexAdapter(t *testing.T) {
	if _, err := NewIndex(1); !errors.Is(err, ErrInvalidDegree) {
		t.Fatalf("NewIndex(1) = %v, want ErrInvalidDegree", err)
	}

	ix, err := NewIndex(4)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	defer ix.Close()

	for k := int64(-50); k < 50; k++ {
		if err := ix.Insert(k); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	for k := int64(-50); k < 50; k++ {
		if ok, err := ix.Contains(k); err != nil || !ok {
			t.Errorf("Contains(%d) = %t, %v", k, ok, err)
		}
	}
	if ok, _ := ix.Contains(50); ok {
		t.Errorf("Contains(50) should be false")
	}
	if ix.Height() != ix.Tree().Height() || ix.Height() < 2 {
		t.Errorf("unexpected height %d", ix.Height())
	}
	if err := ix.Tree().Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
}
