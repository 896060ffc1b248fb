package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/btree-query-bench/degree/index"
	"github.com/btree-query-bench/degree/index/bplustree"
	"github.com/btree-query-bench/degree/index/btree"
	"github.com/btree-query-bench/degree/index/cached"
	"github.com/btree-query-bench/degree/index/listindex"
	"github.com/btree-query-bench/degree/index/lsm"
)

type config struct {
	degrees  []int
	n        int
	ops      int
	out      string
	plotPath string
	withList bool
	withLSM  bool
	lsmDir   string
	cache    bool
	verify   bool
	demo     bool
	dotPath  string
	seed     int64
	logLevel string
}

func parseFlags(args []string, output io.Writer) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("degree", flag.ContinueOnError)
	fs.SetOutput(output)

	degrees := fs.String("degrees", "8,32,128", "Comma separated minimum degrees to sweep.")
	fs.IntVar(&cfg.n, "n", 1000000, "Number of sequential keys loaded into every structure.")
	fs.IntVar(&cfg.ops, "ops", 500000, "Operations per mixed workload.")
	fs.StringVar(&cfg.out, "out", "results.csv", "CSV file the results are written to.")
	fs.StringVar(&cfg.plotPath, "plot", "", "Render a bar chart of the results to this PNG file.")
	fs.BoolVar(&cfg.withList, "list", false, "Include the sorted-slice baseline. Its inserts shift the whole tail, keep -n small.")
	fs.BoolVar(&cfg.withLSM, "lsm", true, "Include the Pebble LSM baseline.")
	fs.StringVar(&cfg.lsmDir, "lsm-dir", "", "Empty or missing directory for the Pebble baseline (default: a temporary directory).")
	fs.BoolVar(&cfg.cache, "cache", false, "Also benchmark every B-tree behind a ristretto lookup cache.")
	fs.BoolVar(&cfg.verify, "verify", false, "Check B-tree invariants after every workload.")
	fs.BoolVar(&cfg.demo, "demo", false, "Run the demo instead of the benchmark.")
	fs.StringVar(&cfg.dotPath, "dot", "", "With -demo, export the word tree as Graphviz DOT to this file.")
	fs.Int64Var(&cfg.seed, "seed", 1, "Seed for the workload generator.")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug, info, warn, error).")
	fs.Usage = func() {
		fmt.Fprintln(output, "\nB-tree degree benchmark\n\nArguments:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	var err error
	if cfg.degrees, err = parseDegrees(*degrees); err != nil {
		return nil, err
	}
	if cfg.n < 1 || cfg.ops < 0 {
		return nil, errors.Newf("invalid sizes: n=%d ops=%d", cfg.n, cfg.ops)
	}
	return cfg, nil
}

func parseDegrees(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "degree %q", f)
		}
		if d < 2 {
			return nil, errors.Wrapf(btree.ErrInvalidDegree, "degree %d", d)
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, errors.New("no degrees given")
	}
	return out, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	err = run(cfg, os.Stdout, logger)
	if err != nil {
		logger.Error("benchmark failed", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run executes the demo or the benchmark described by cfg. Temporary
// directories and the results file are released before it returns.
func run(cfg *config, stdout io.Writer, logger *zap.Logger) error {
	if cfg.demo {
		return errors.Wrap(runDemo(stdout, cfg, logger), "demo")
	}

	suites, cleanup, err := buildSuites(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "setup")
	}
	defer cleanup()

	f, err := os.Create(cfg.out)
	if err != nil {
		return errors.Wrap(err, "create results file")
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := WriteHeader(w); err != nil {
		return errors.Wrap(err, "write header")
	}

	rng := rand.New(rand.NewSource(cfg.seed))
	var all []BenchResult
	for _, s := range suites {
		results, err := runSuite(s, cfg, rng, logger)
		if err != nil {
			return err
		}
		for _, r := range results {
			if err := Record(w, r); err != nil {
				return errors.Wrap(err, "write result")
			}
		}
		all = append(all, results...)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "flush results")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close results file")
	}

	if cfg.plotPath != "" {
		if err := PlotResults(cfg.plotPath, all); err != nil {
			return errors.Wrap(err, "plot results")
		}
		logger.Info("chart written", zap.String("path", cfg.plotPath))
	}
	logger.Info("benchmark complete", zap.String("results", cfg.out), zap.Int("rows", len(all)))
	return nil
}

// ─── Suites ───────────────────────────────────────────────────────────────────

type suite struct {
	name string
	conf int
	open func() (index.Index, error)
}

// ErrLSMDirNotEmpty is returned when -lsm-dir names a directory that already
// has content. Reusing an old Pebble store would skew the load numbers.
var ErrLSMDirNotEmpty = errors.New("lsm dir is not empty")

// buildSuites lists the structures to benchmark. The returned cleanup removes
// any temporary directory created for the Pebble baseline.
func buildSuites(cfg *config, logger *zap.Logger) ([]suite, func(), error) {
	var suites []suite
	for _, d := range cfg.degrees {
		suites = append(suites, suite{"B-Tree", d, func() (index.Index, error) {
			return btree.NewIndex(d)
		}})
		suites = append(suites, suite{"B+Tree", d, func() (index.Index, error) {
			return bplustree.NewBPlusTree(d)
		}})
		if cfg.cache {
			suites = append(suites, suite{"B-Tree+cache", d, func() (index.Index, error) {
				bt, err := btree.NewIndex(d)
				if err != nil {
					return nil, err
				}
				return cached.New(bt, int64(cfg.n/10)+1, logger.Named("cache"))
			}})
		}
	}
	if cfg.withList {
		suites = append(suites, suite{"SortedList", 0, func() (index.Index, error) {
			return listindex.NewListIndex(), nil
		}})
	}

	cleanup := func() {}
	if cfg.withLSM {
		dir := cfg.lsmDir
		if dir != "" {
			entries, err := os.ReadDir(dir)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, nil, errors.Wrap(err, "read lsm dir")
			}
			if len(entries) > 0 {
				return nil, nil, errors.Wrapf(ErrLSMDirNotEmpty, "%s", dir)
			}
		} else {
			tmp, err := os.MkdirTemp("", "degree-lsm-*")
			if err != nil {
				return nil, nil, errors.Wrap(err, "create lsm dir")
			}
			dir = tmp
			cleanup = func() { os.RemoveAll(tmp) }
		}
		suites = append(suites, suite{"Pebble-LSM", 0, func() (index.Index, error) {
			return lsm.Open(dir)
		}})
	}
	return suites, cleanup, nil
}

func runSuite(s suite, cfg *config, rng *rand.Rand, logger *zap.Logger) ([]BenchResult, error) {
	log := logger.With(zap.String("structure", s.name), zap.Int("config", s.conf))
	log.Info("testing")
	confStr := strconv.Itoa(s.conf)

	idx, err := s.open()
	if err != nil {
		return nil, errors.Wrapf(err, "%s: open", s.name)
	}
	defer idx.Close()

	var results []BenchResult
	record := func(op string, latency int64, stats MemoryStats) error {
		r := BenchResult{
			Name:      s.name,
			Config:    confStr,
			Operation: op,
			LatencyNs: latency,
			MemMB:     stats.AllocMB,
			Objects:   stats.HeapObjects,
			Height:    heightOf(idx),
		}
		results = append(results, r)
		log.Debug("step done", zap.String("op", op), zap.Int64("ns_per_op", latency), zap.Int("height", r.Height))
		if cfg.verify {
			if err := verify(idx); err != nil {
				return errors.Wrapf(err, "%s: after %s", s.name, op)
			}
		}
		return nil
	}

	// 1. Sequential load
	start := time.Now()
	for k := 0; k < cfg.n; k++ {
		if err := idx.Insert(int64(k)); err != nil {
			return nil, errors.Wrapf(err, "%s: load", s.name)
		}
	}
	if err := record("Load", time.Since(start).Nanoseconds()/int64(cfg.n), GetDetailedMem()); err != nil {
		return nil, err
	}

	// 2. Mixed workloads, then lookups of absent keys
	for _, wType := range []WorkloadType{OLTP, OLAP, Miss} {
		if cfg.ops == 0 {
			break
		}
		start = time.Now()
		if err := ExecuteWorkload(idx, wType, cfg.ops, cfg.n, rng); err != nil {
			return nil, errors.Wrapf(err, "%s: %s", s.name, wType)
		}
		latency := time.Since(start).Nanoseconds() / int64(cfg.ops)
		if err := record(string(wType), latency, GetDetailedMem()); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func heightOf(idx index.Index) int {
	if h, ok := idx.(index.Heighter); ok {
		return h.Height()
	}
	return 0
}

// verify runs the tree invariant check on idx, looking through cache
// wrappers. Other structures pass trivially.
func verify(idx index.Index) error {
	for {
		switch v := idx.(type) {
		case *btree.Index:
			return v.Tree().Verify()
		case *bplustree.BPlusTree:
			return v.Verify()
		case *cached.Index:
			idx = v.Unwrap()
		default:
			return nil
		}
	}
}
