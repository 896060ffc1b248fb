package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-faker/faker/v4"
	"go.uber.org/zap"

	"github.com/btree-query-bench/degree/index/btree"
	"github.com/btree-query-bench/degree/index/btree/inspect"
)

const demoWords = 20

// runDemo builds a small integer tree, dumps it and looks up a few keys, then
// does the same with a tree of random words.
func runDemo(w io.Writer, cfg *config, logger *zap.Logger) error {
	tree := btree.MustNew[int](3)
	for i := 0; i < 10; i++ {
		tree.Insert(i)
	}

	if err := inspect.LevelOrder(w, tree.Root()); err != nil {
		return err
	}
	fmt.Fprintln(w)

	for _, key := range []int{2, 9, 11, 4} {
		if tree.Search(key) != nil {
			fmt.Fprintf(w, "%d is in the tree\n", key)
		} else {
			fmt.Fprintf(w, "%d is NOT in the tree\n", key)
		}
	}
	fmt.Fprintln(w)

	words := btree.MustNew[string](2)
	first := faker.Word()
	words.Insert(first)
	for i := 1; i < demoWords; i++ {
		words.Insert(faker.Word())
	}
	// A repeated word shows up with its count in the dump.
	words.Insert(first)

	if err := inspect.LevelOrder(w, words.Root()); err != nil {
		return err
	}
	if err := words.Verify(); err != nil {
		return err
	}
	logger.Info("word tree built",
		zap.Int("distinct", words.Len()),
		zap.Int("height", words.Height()),
		zap.String("repeated", first),
		zap.Int("count", words.Count(first)),
	)

	if cfg.dotPath == "" {
		return nil
	}
	return exportDOT(cfg.dotPath, words, logger)
}

func exportDOT(dotPath string, tree *btree.Tree[string], logger *zap.Logger) error {
	f, err := os.Create(dotPath)
	if err != nil {
		return errors.Wrap(err, "create dot file")
	}
	if err := inspect.WriteDOT(f, tree.Root()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close dot file")
	}

	pngPath := strings.TrimSuffix(dotPath, ".dot") + ".png"
	switch err := inspect.RenderPNG(dotPath, pngPath); {
	case errors.Is(err, inspect.ErrNoGraphviz):
		logger.Warn("graphviz not installed, skipping png", zap.String("dot", dotPath))
	case err != nil:
		return err
	default:
		logger.Info("tree exported", zap.String("png", pngPath))
	}
	return nil
}
