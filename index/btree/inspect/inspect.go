// Package inspect renders B-trees for debugging: a level-order text dump
// and a Graphviz DOT export. It only uses the public node surface of
// package btree.
package inspect

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"golang.org/x/exp/constraints"

	"github.com/btree-query-bench/degree/index/btree"
)

// ErrNoGraphviz is returned by RenderPNG when the dot binary is not on PATH.
var ErrNoGraphviz = errors.New("inspect: graphviz dot binary not found")

var (
	levelColor    = color.New(color.FgCyan, color.Bold)
	leafColor     = color.New(color.FgGreen)
	internalColor = color.New(color.FgBlue)
)

// formatKey renders a key, adding its multiplicity when it was inserted more
// than once.
func formatKey[K constraints.Ordered](n *btree.Node[K], k K) string {
	if c := n.Count(k); c > 1 {
		return fmt.Sprintf("%v×%d", k, c)
	}
	return fmt.Sprint(k)
}

func formatNode[K constraints.Ordered](n *btree.Node[K]) string {
	keys := n.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = formatKey(n, k)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

/*
LevelOrder writes the tree rooted at root breadth first, one line per level:

	Level 0: [2 5]
	Level 1: [0 1] [3 4] [6 7 8 9]

Leaves and internal nodes are coloured differently when the output is a
terminal.
*/
func LevelOrder[K constraints.Ordered](w io.Writer, root *btree.Node[K]) error {
	queue := []*btree.Node[K]{root}
	for level := 0; len(queue) > 0; level++ {
		size := len(queue)
		var line strings.Builder
		line.WriteString(levelColor.Sprintf("Level %d:", level))
		for _, n := range queue[:size] {
			line.WriteByte(' ')
			if n.Leaf() {
				line.WriteString(leafColor.Sprint(formatNode(n)))
			} else {
				line.WriteString(internalColor.Sprint(formatNode(n)))
				queue = append(queue, n.Children()...)
			}
		}
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return errors.Wrap(err, "inspect: write level")
		}
		queue = queue[size:]
	}
	return nil
}

// ─── Graphviz ─────────────────────────────────────────────────────────────────

var recordEscaper = strings.NewReplacer(
	`\`, `\\`, `"`, `\"`, `{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

// WriteDOT writes the tree rooted at root as a Graphviz digraph. Internal
// nodes get one record port per child slot so edges leave from between the
// separator keys.
func WriteDOT[K constraints.Ordered](w io.Writer, root *btree.Node[K]) error {
	var b strings.Builder
	b.WriteString("digraph BTree {\n")
	b.WriteString("  graph [ranksep=0.8, nodesep=0.5, bgcolor=\"#ffffff\", rankdir=TB];\n")
	b.WriteString("  node [shape=record, style=filled, fontname=\"Helvetica\", fontsize=10];\n")
	b.WriteString("  edge [arrowsize=0.8, color=\"#444444\"];\n")

	var counter int
	var exportRec func(n *btree.Node[K]) string
	exportRec = func(n *btree.Node[K]) string {
		name := fmt.Sprintf("n%d", counter)
		counter++

		keys := n.Keys()
		if n.Leaf() {
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = recordEscaper.Replace(formatKey(n, k))
			}
			fmt.Fprintf(&b, "  %s [label=\"%s\", fillcolor=\"#D5E8D4\"];\n", name, strings.Join(parts, "|"))
			return name
		}

		parts := make([]string, 0, 2*len(keys)+1)
		for i, k := range keys {
			parts = append(parts, fmt.Sprintf("<c%d>", i), recordEscaper.Replace(formatKey(n, k)))
		}
		parts = append(parts, fmt.Sprintf("<c%d>", len(keys)))
		fmt.Fprintf(&b, "  %s [label=\"%s\", fillcolor=\"#DAE8FC\"];\n", name, strings.Join(parts, "|"))

		for i, c := range n.Children() {
			child := exportRec(c)
			fmt.Fprintf(&b, "  %s:c%d -> %s;\n", name, i, child)
		}
		return name
	}
	exportRec(root)
	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "inspect: write dot")
	}
	return nil
}

// RenderPNG runs Graphviz over a DOT file written by WriteDOT.
func RenderPNG(dotPath, pngPath string) error {
	bin, err := exec.LookPath("dot")
	if err != nil {
		return ErrNoGraphviz
	}
	out, err := exec.Command(bin, "-Tpng", dotPath, "-o", pngPath).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "inspect: dot %s: %s", dotPath, strings.TrimSpace(string(out)))
	}
	return nil
}
