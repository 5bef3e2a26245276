// Package sweep trains one model per hidden-layer width and collects the results in order.
package sweep

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"hiddenunit-sweep/internal/metrics"
)

// FitFunc trains one model with the given hidden width.
type FitFunc func(ctx context.Context, hiddenUnits int) (*metrics.History, error)

// Mode selects what a Result keeps.
type Mode int

const (
	// KeepHistory keeps the full per-epoch history.
	KeepHistory Mode = iota
	// KeepSummary keeps only the mean losses.
	KeepSummary
)

// Result is the outcome of one configuration.
type Result struct {
	HiddenUnits int
	// History is nil in KeepSummary mode.
	History *metrics.History
	Summary metrics.Summary
	Elapsed time.Duration
}

// Options configures Run.
type Options struct {
	Mode Mode
	// Progress, when set, receives a progress bar advanced once per configuration.
	Progress io.Writer
}

// Run calls fit once per entry of units, in order, and returns one Result per
// entry. The first failure aborts the sweep.
func Run(ctx context.Context, units []int, fit FitFunc, opts Options) ([]Result, error) {
	if len(units) == 0 {
		return nil, errors.New("sweep: no hidden-unit counts given")
	}
	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(units),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("sweep"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(opts.Progress, "\n") }),
		)
	}

	results := make([]Result, 0, len(units))
	for i, u := range units {
		if bar != nil {
			bar.Describe(fmt.Sprintf("hidden_units=%d", u))
		}
		start := time.Now()
		hist, err := fit(ctx, u)
		if err != nil {
			return nil, errors.WithMessagef(err, "sweep: configuration %d (hidden_units=%d)", i+1, u)
		}
		if hist == nil {
			return nil, errors.Errorf("sweep: configuration %d (hidden_units=%d) returned no history", i+1, u)
		}
		if err := hist.Check(); err != nil {
			return nil, errors.WithMessagef(err, "sweep: configuration %d (hidden_units=%d)", i+1, u)
		}
		r := Result{
			HiddenUnits: u,
			History:     hist,
			Summary:     hist.Summary(),
			Elapsed:     time.Since(start),
		}
		if opts.Mode == KeepSummary {
			r.History = nil
		}
		klog.Infof("hidden_units=%d epochs=%d mean_loss=%.4f mean_val_loss=%.4f elapsed=%s",
			u, hist.Epochs(), r.Summary.MeanLoss, r.Summary.MeanValLoss, r.Elapsed.Round(time.Millisecond))
		results = append(results, r)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return results, nil
}

// Units returns the hidden-unit counts of results, in order.
func Units(results []Result) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.HiddenUnits
	}
	return out
}
