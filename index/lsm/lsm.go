// Package lsm wraps Pebble (CockroachDB's LSM storage engine) behind the
// common Index interface so it can be benchmarked alongside the in-memory
// B-tree.
package lsm

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"github.com/btree-query-bench/degree/index"
)

var _ index.Index = (*LSM)(nil)

type LSM struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database at the given directory path.
func Open(dir string) (*LSM, error) {
	opts := &pebble.Options{
		MemTableSize: 16 << 20,
		// Keep a few memtables so one can be flushed while another takes writes.
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
	}

	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrap(err, "lsm: open")
	}
	return &LSM{db: db}, nil
}

// Close cleanly shuts down Pebble, flushing any in-memory state.
func (l *LSM) Close() error {
	return l.db.Close()
}

// Insert stores key with an empty value. Re-inserting a key is a no-op.
func (l *LSM) Insert(key int64) error {
	if err := l.db.Set(encodeKey(key), []byte{}, pebble.NoSync); err != nil {
		return errors.Wrap(err, "lsm: set")
	}
	return nil
}

func (l *LSM) Contains(key int64) (bool, error) {
	_, closer, err := l.db.Get(encodeKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "lsm: get")
	}
	return true, release(closer)
}

// release closes the value handle returned by a Pebble Get.
func release(closer io.Closer) error {
	return errors.Wrap(closer.Close(), "lsm: release value")
}

// encodeKey encodes an int64 as a big-endian 8-byte slice with the sign bit
// flipped, so byte order matches numeric order for negative keys too.
func encodeKey(k int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k)^(1<<63))
	return b
}
