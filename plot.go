package main

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func structureLabel(r BenchResult) string {
	if r.Config == "0" {
		return r.Name
	}
	return r.Name + " t=" + r.Config
}

// PlotResults renders a grouped bar chart of ns/op: one group per structure,
// one bar per workload.
func PlotResults(path string, results []BenchResult) error {
	if len(results) == 0 {
		return errors.New("plot: no results")
	}

	var labels, ops []string
	labelIdx := map[string]int{}
	opIdx := map[string]int{}
	for _, r := range results {
		l := structureLabel(r)
		if _, ok := labelIdx[l]; !ok {
			labelIdx[l] = len(labels)
			labels = append(labels, l)
		}
		if _, ok := opIdx[r.Operation]; !ok {
			opIdx[r.Operation] = len(ops)
			ops = append(ops, r.Operation)
		}
	}

	values := make([]plotter.Values, len(ops))
	for i := range values {
		values[i] = make(plotter.Values, len(labels))
	}
	for _, r := range results {
		values[opIdx[r.Operation]][labelIdx[structureLabel(r)]] = float64(r.LatencyNs)
	}

	p := plot.New()
	p.Title.Text = "Mean latency per operation"
	p.Y.Label.Text = "ns/op"
	p.Legend.Top = true

	w := vg.Points(10)
	for i, op := range ops {
		bars, err := plotter.NewBarChart(values[i], w)
		if err != nil {
			return errors.Wrapf(err, "plot: %s bars", op)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = w * vg.Length(2*i-len(ops)+1) / 2
		p.Add(bars)
		p.Legend.Add(op, bars)
	}
	p.NominalX(labels...)

	width := vg.Length(len(labels)*len(ops)) * w * 2
	if width < 6*vg.Inch {
		width = 6 * vg.Inch
	}
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "plot: save")
	}
	return nil
}
