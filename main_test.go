package main

import (
	"bytes"
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"go.uber.org/zap/zaptest"

	"github.com/btree-query-bench/degree/index/bplustree"
	"github.com/btree-query-bench/degree/index/btree"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !slices.Equal(cfg.degrees, []int{8, 32, 128}) {
		t.Errorf("degrees = %v", cfg.degrees)
	}
	if cfg.n != 1000000 || !cfg.withLSM || cfg.demo {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseFlagsRejectsBadDegrees(t *testing.T) {
	for _, arg := range []string{"-degrees=1", "-degrees=3,x", "-degrees=,"} {
		if _, err := parseFlags([]string{arg}, &bytes.Buffer{}); err == nil {
			t.Errorf("%s: expected error", arg)
		}
	}
	_, err := parseFlags([]string{"-degrees=4,1"}, &bytes.Buffer{})
	if !errors.Is(err, btree.ErrInvalidDegree) {
		t.Errorf("expected ErrInvalidDegree, got %v", err)
	}
}

func TestRunSuites(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-degrees=2,5", "-n=500", "-ops=300", "-cache", "-verify", "-list",
		"-lsm-dir=" + t.TempDir(),
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	logger := zaptest.NewLogger(t)

	suites, cleanup, err := buildSuites(cfg, logger)
	if err != nil {
		t.Fatalf("buildSuites: %v", err)
	}
	defer cleanup()
	// B-Tree, B+Tree and B-Tree+cache per degree, then SortedList and Pebble-LSM
	if len(suites) != 8 {
		t.Fatalf("got %d suites, want 8", len(suites))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := WriteHeader(w); err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(7))
	var all []BenchResult
	for _, s := range suites {
		results, err := runSuite(s, cfg, rng, logger)
		if err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if len(results) != 4 {
			t.Fatalf("%s: got %d results, want 4", s.name, len(results))
		}
		for _, r := range results {
			if strings.HasPrefix(r.Name, "B") && r.Height < 2 {
				t.Errorf("%s t=%s %s: height %d", r.Name, r.Config, r.Operation, r.Height)
			}
			if err := Record(w, r); err != nil {
				t.Fatal(err)
			}
		}
		all = append(all, results...)
	}
	w.Flush()

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != len(all)+1 || len(rows[0]) != 7 {
		t.Errorf("csv has %d rows of %d columns", len(rows), len(rows[0]))
	}

	png := filepath.Join(t.TempDir(), "chart.png")
	if err := PlotResults(png, all); err != nil {
		t.Fatalf("PlotResults: %v", err)
	}
	if st, err := os.Stat(png); err != nil || st.Size() == 0 {
		t.Errorf("chart not written: %v", err)
	}
}

func TestExecuteWorkloadMissLeavesIndexUnchanged(t *testing.T) {
	idx, err := btree.NewIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	for k := int64(0); k < 100; k++ {
		idx.Insert(k)
	}
	rng := rand.New(rand.NewSource(1))
	if err := ExecuteWorkload(idx, OLAP, 1000, 100, rng); err != nil {
		t.Fatal(err)
	}
	before := idx.Tree().Len()
	if before <= 100 || before > 200 {
		t.Errorf("OLAP should add keys below 200, len = %d", before)
	}
	if err := ExecuteWorkload(idx, Miss, 1000, 100, rng); err != nil {
		t.Fatal(err)
	}
	if idx.Tree().Len() != before {
		t.Errorf("miss workload inserted keys")
	}
}

func TestVerifyCoversBPlusTree(t *testing.T) {
	bt, err := bplustree.NewBPlusTree(2)
	if err != nil {
		t.Fatal(err)
	}
	for k := int64(0); k < 50; k++ {
		bt.Insert(k)
	}
	if err := verify(bt); err != nil {
		t.Fatalf("verify: %v", err)
	}
	bt.Root.Keys[0] = 1000
	if err := verify(bt); err == nil {
		t.Errorf("verify accepted a corrupted B+ tree")
	}
}

func TestBuildSuitesRejectsNonEmptyLSMDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "CURRENT"), []byte("MANIFEST-000001\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := parseFlags([]string{"-degrees=2", "-lsm-dir=" + dir}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if _, _, err := buildSuites(cfg, zaptest.NewLogger(t)); !errors.Is(err, ErrLSMDirNotEmpty) {
		t.Fatalf("buildSuites = %v, want ErrLSMDirNotEmpty", err)
	}

	cfg.lsmDir = filepath.Join(dir, "fresh")
	suites, cleanup, err := buildSuites(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("missing dir: %v", err)
	}
	defer cleanup()
	if got := suites[len(suites)-1].name; got != "Pebble-LSM" {
		t.Errorf("last suite = %s, want Pebble-LSM", got)
	}
}

func TestRunWritesResults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.csv")
	cfg, err := parseFlags([]string{"-degrees=3", "-n=200", "-ops=100", "-lsm=false", "-out=" + out}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := run(cfg, &bytes.Buffer{}, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	// header plus four steps for each of B-Tree and B+Tree
	if len(rows) != 9 {
		t.Errorf("got %d rows, want 9", len(rows))
	}
}

func TestRunRemovesTempDirOnError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	cfg, err := parseFlags([]string{
		"-degrees=2", "-n=10", "-ops=0",
		"-out=" + filepath.Join(tmp, "missing", "results.csv"),
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := run(cfg, &bytes.Buffer{}, zaptest.NewLogger(t)); err == nil {
		t.Fatal("run should fail to create the results file")
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "degree-lsm-") {
			t.Errorf("temporary pebble dir %s left behind", e.Name())
		}
	}
}

func TestRunDemo(t *testing.T) {
	cfg := &config{dotPath: filepath.Join(t.TempDir(), "words.dot")}

	var buf bytes.Buffer
	if err := runDemo(&buf, cfg, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	out := buf.String()
	for _, s := range []string{
		"Level 0: [2 5]\nLevel 1: [0 1] [3 4] [6 7 8 9]\n",
		"2 is in the tree\n9 is in the tree\n11 is NOT in the tree\n4 is in the tree\n",
		"×",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("demo output missing %q:\n%s", s, out)
		}
	}

	dot, err := os.ReadFile(cfg.dotPath)
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.HasPrefix(string(dot), "digraph BTree {") {
		t.Errorf("dot file not written")
	}
}
