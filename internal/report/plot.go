package report

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// savePlot renders chart with gonum/plot. The format follows the file extension.
func savePlot(chart Chart, path string) error {
	p := newPlot(chart.Title, chart.XLabel, chart.YLabel)
	for i, s := range chart.Series {
		if len(s.X) != len(s.Y) {
			return errors.Errorf("series %q has %d x values and %d y values", s.Name, len(s.X), len(s.Y))
		}
		xys := make(plotter.XYs, len(s.X))
		for j := range xys {
			xys[j].X = s.X[j]
			xys[j].Y = s.Y[j]
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return errors.Wrapf(err, "series %q", s.Name)
		}
		line.Color = plotutil.Color(i)
		if s.Dashed {
			line.Dashes = plotutil.Dashes(1)
		}
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
	}
	return p.Save(plotWidth, plotHeight, path)
}
