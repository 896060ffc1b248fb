package main

import (
	"encoding/csv"
	"runtime"
	"strconv"
)

type BenchResult struct {
	Name      string
	Config    string
	Operation string
	LatencyNs int64
	MemMB     uint64
	Objects   uint64
	Height    int
}

type MemoryStats struct {
	AllocMB      uint64
	TotalAllocMB uint64
	HeapObjects  uint64
}

// GetDetailedMem reports live heap usage after forcing a collection, so the
// numbers reflect the structure and not garbage left by the workload.
func GetDetailedMem() MemoryStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		HeapObjects:  m.HeapObjects,
	}
}

func WriteHeader(w *csv.Writer) error {
	return w.Write([]string{"Structure", "Config", "TestType", "LatencyNs", "MemMB", "HeapObjects", "Height"})
}

func Record(w *csv.Writer, res BenchResult) error {
	return w.Write([]string{
		res.Name,
		res.Config,
		res.Operation,
		strconv.FormatInt(res.LatencyNs, 10),
		strconv.FormatUint(res.MemMB, 10),
		strconv.FormatUint(res.Objects, 10),
		strconv.Itoa(res.Height),
	})
}
