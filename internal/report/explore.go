package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	ptypes "github.com/MetalBlueberry/go-plotly/pkg/types"
	"github.com/pkg/errors"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"k8s.io/klog/v2"

	"hiddenunit-sweep/internal/dataset"
)

// Explore charts the raw data of split: a histogram of the labels and a
// scatter of the first two features coloured by label. With a single feature
// the scatter plots that feature against the label.
func Explore(split dataset.Split, numClasses int, opts Options) ([]string, error) {
	if split.Rows() == 0 {
		return nil, errors.New("report: nothing to explore")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "report: create %q", opts.Dir)
	}
	counts := split.LabelCounts(numClasses)
	scatter := labelScatter(split, numClasses)

	var written []string
	for _, format := range opts.Formats {
		histPath := filepath.Join(opts.Dir, "label_histogram."+format)
		scatterPath := filepath.Join(opts.Dir, "feature_scatter."+format)
		var err error
		switch format {
		case PNG, SVG:
			if err = saveHistogram(counts, histPath); err == nil {
				err = saveScatter(scatter, scatterPath)
			}
		case HTML:
			if err = saveHTML(histogramFigure(counts), histPath, false); err == nil {
				err = saveHTML(scatterFigure(scatter), scatterPath, opts.Show)
			}
		default:
			err = errors.Errorf("unknown format %q", format)
		}
		if err != nil {
			return written, errors.WithMessagef(err, "report: explore %s", format)
		}
		klog.V(1).Infof("wrote %s and %s", histPath, scatterPath)
		written = append(written, histPath, scatterPath)
	}
	return written, nil
}

// labelScatter groups the points of split into one series per label.
func labelScatter(split dataset.Split, numClasses int) Chart {
	chart := Chart{Title: "Features by Label", XLabel: "Feature 1", YLabel: "Feature 2"}
	xCol, yCol := 0, 1
	if split.Width() < 2 {
		chart.YLabel = "Label"
		yCol = -1
	}
	chart.Series = make([]Series, numClasses)
	for l := range chart.Series {
		chart.Series[l].Name = fmt.Sprintf("label %d", l)
	}
	for i, l := range split.Labels {
		if l < 0 || l >= numClasses {
			continue
		}
		y := float64(l)
		if yCol >= 0 {
			y = split.Features.At(i, yCol)
		}
		s := &chart.Series[l]
		s.X = append(s.X, split.Features.At(i, xCol))
		s.Y = append(s.Y, y)
	}
	return chart
}

func saveHistogram(counts []int, path string) error {
	p := newPlot("Label Distribution", "Label", "Examples")
	values := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for l, c := range counts {
		values[l] = float64(c)
		names[l] = strconv.Itoa(l)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "label histogram")
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)
	return p.Save(plotWidth, plotHeight, path)
}

func saveScatter(chart Chart, path string) error {
	p := newPlot(chart.Title, chart.XLabel, chart.YLabel)
	for l, s := range chart.Series {
		if len(s.X) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.X))
		for j := range xys {
			xys[j].X = s.X[j]
			xys[j].Y = s.Y[j]
		}
		points, err := plotter.NewScatter(xys)
		if err != nil {
			return errors.Wrapf(err, "scatter %q", s.Name)
		}
		points.Color = plotutil.Color(l)
		points.Shape = plotutil.Shape(l)
		p.Add(points)
		p.Legend.Add(s.Name, points)
	}
	return p.Save(plotWidth, plotHeight, path)
}

func histogramFigure(counts []int) *grob.Fig {
	labels := make([]float64, len(counts))
	values := make([]float64, len(counts))
	for l, c := range counts {
		labels[l] = float64(l)
		values[l] = float64(c)
	}
	fig := &grob.Fig{Layout: newLayout("Label Distribution", "Label", "Examples")}
	fig.Data = append(fig.Data, &grob.Bar{
		Name: ptypes.S("examples"),
		X:    ptypes.DataArray(labels),
		Y:    ptypes.DataArray(values),
	})
	return fig
}

func scatterFigure(chart Chart) *grob.Fig {
	fig := &grob.Fig{Layout: newLayout(chart.Title, chart.XLabel, chart.YLabel)}
	for _, s := range chart.Series {
		if len(s.X) == 0 {
			continue
		}
		fig.Data = append(fig.Data, &grob.Scatter{
			Name: ptypes.S(s.Name),
			Mode: "markers",
			X:    ptypes.DataArray(s.X),
			Y:    ptypes.DataArray(s.Y),
		})
	}
	return fig
}
