// Package report renders sweep results as charts and tables.
//
// Each chart is described once as a Chart and rendered to every requested
// format: PNG through gonum/plot, SVG through margaid and interactive HTML
// through go-plotly.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"hiddenunit-sweep/internal/sweep"
)

// Output formats.
const (
	PNG  = "png"
	SVG  = "svg"
	HTML = "html"
)

// Options controls where and how charts are written.
type Options struct {
	Dir     string
	Formats []string
	// Show opens the interactive version of the main chart in a browser.
	Show bool
}

// Series is one named line of a Chart.
type Series struct {
	Name   string
	X, Y   []float64
	Dashed bool
}

// Chart is a line chart independent of the rendering library.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

// LossVsUnits charts the mean training and validation loss against the
// hidden-unit count of each result.
func LossVsUnits(results []sweep.Result, opts Options) ([]string, error) {
	if len(results) == 0 {
		return nil, errors.New("report: no results to plot")
	}
	units := sweep.Units(results)
	xs := make([]float64, len(units))
	for i, u := range units {
		xs[i] = float64(u)
	}
	train := Series{Name: "Average Training Cross-Entropy", X: xs}
	valid := Series{Name: "Average Validation Cross-Entropy", X: xs, Dashed: true}
	for _, r := range results {
		train.Y = append(train.Y, r.Summary.MeanLoss)
		valid.Y = append(valid.Y, r.Summary.MeanValLoss)
	}
	chart := Chart{
		Title:  "Effect of Hidden Units on Cross-Entropy Loss",
		XLabel: "Number of Hidden Units",
		YLabel: "Cross-Entropy Loss",
		Series: []Series{train, valid},
	}
	return render(chart, "loss_vs_units", opts, opts.Show)
}

// Curves charts the per-epoch training and validation loss of every result
// that kept its history.
func Curves(results []sweep.Result, opts Options) ([]string, error) {
	chart := Chart{
		Title:  "Cross-Entropy Loss per Epoch",
		XLabel: "Epoch",
		YLabel: "Cross-Entropy Loss",
	}
	for _, r := range results {
		if r.History == nil {
			continue
		}
		epochs := make([]float64, r.History.Epochs())
		for i := range epochs {
			epochs[i] = float64(i + 1)
		}
		chart.Series = append(chart.Series,
			Series{Name: fmt.Sprintf("train h=%d", r.HiddenUnits), X: epochs, Y: r.History.Loss},
			Series{Name: fmt.Sprintf("val h=%d", r.HiddenUnits), X: epochs, Y: r.History.ValLoss, Dashed: true},
		)
	}
	if len(chart.Series) == 0 {
		return nil, errors.New("report: no loss histories to plot")
	}
	return render(chart, "loss_curves", opts, false)
}

func render(chart Chart, name string, opts Options, show bool) ([]string, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "report: create %q", opts.Dir)
	}
	var written []string
	for _, format := range opts.Formats {
		path := filepath.Join(opts.Dir, name+"."+format)
		var err error
		switch format {
		case PNG:
			err = savePlot(chart, path)
		case SVG:
			err = saveSVG(chart, path)
		case HTML:
			err = saveHTML(newFigure(chart), path, show)
		default:
			err = errors.Errorf("unknown format %q", format)
		}
		if err != nil {
			return written, errors.WithMessagef(err, "report: write %s", path)
		}
		klog.V(1).Infof("wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}
