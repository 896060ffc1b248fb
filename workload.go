package main

import (
	"math/rand"

	"github.com/btree-query-bench/degree/index"
)

type WorkloadType string

const (
	OLTP WorkloadType = "OLTP (90/10)"
	OLAP WorkloadType = "OLAP (10/90)"
	Miss WorkloadType = "Miss (absent keys)"
)

// ExecuteWorkload runs ops operations against idx. keySpace is the size of
// the initial load: mixed workloads draw keys from [0, 2*keySpace) so about
// half of them are new. Miss only looks up keys no workload inserts.
func ExecuteWorkload(idx index.Index, wType WorkloadType, ops, keySpace int, rng *rand.Rand) error {
	for i := 0; i < ops; i++ {
		choice := rng.Intn(100)
		key := int64(rng.Intn(2 * keySpace))

		var err error
		switch wType {
		case OLTP:
			if choice < 90 {
				_, err = idx.Contains(key)
			} else {
				err = idx.Insert(key)
			}
		case OLAP:
			if choice < 10 {
				_, err = idx.Contains(key)
			} else {
				err = idx.Insert(key)
			}
		case Miss:
			_, err = idx.Contains(key + int64(2*keySpace))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
