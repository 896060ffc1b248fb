package index

// Index is the point-lookup surface every benchmarked structure implements.
type Index interface {
	Insert(key int64) error
	Contains(key int64) (bool, error)
	Close() error
}

// Heighter is implemented by tree-shaped indexes that can report their
// number of levels.
type Heighter interface {
	Height() int
}
