// hiddenunit-sweep trains a one-hidden-layer classifier for each width in a
// list of hidden-unit counts and plots the training and validation loss
// against the width.
//
// With -reporter=explore it instead plots the label histogram and a scatter of
// the first two features of the training set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"hiddenunit-sweep/internal/config"
	"hiddenunit-sweep/internal/dataset"
	"hiddenunit-sweep/internal/metrics"
	"hiddenunit-sweep/internal/model"
	"hiddenunit-sweep/internal/report"
	"hiddenunit-sweep/internal/sweep"
	"hiddenunit-sweep/internal/trainer"
)

var (
	flagConfig      = flag.String("config", "", "Path to YAML config. Empty uses the built-in defaults.")
	flagDataSource  = flag.String("data-source", "", "Override data source: local or mounted.")
	flagDataDir     = flag.String("data-dir", "", "Override directory holding the train and validation files.")
	flagMountPoint  = flag.String("mount-point", "", "Override mount point of a mounted data source.")
	flagHiddenUnits = flag.String("hidden-units", "", "Override comma separated list of hidden-unit counts, e.g. 5,20,50.")
	flagEpochs      = flag.Int("epochs", 0, "Override number of epochs.")
	flagBatchSize   = flag.Int("batch-size", 0, "Override batch size.")
	flagSeed        = flag.Int64("seed", 0, "PRNG seed. 0 leaves training unseeded.")
	flagMode        = flag.String("mode", "", "Override result mode: history or summary.")
	flagReporter    = flag.String("reporter", "", "Override reporter: loss or explore.")
	flagOutput      = flag.String("out", "", "Override output directory.")
	flagShow        = flag.Bool("show", false, "Open the interactive chart in a browser.")
	flagProgress    = flag.Bool("progress", false, "Show a progress bar over the sweep.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			klog.Exitf("failed to load config: %+v", err)
		}
	}

	units, err := parseUnits(*flagHiddenUnits)
	if err != nil {
		klog.Exitf("invalid -hidden-units: %v", err)
	}
	cfg.ApplyOverrides(config.Overrides{
		DataSource:  *flagDataSource,
		DataDir:     *flagDataDir,
		MountPoint:  *flagMountPoint,
		HiddenUnits: units,
		Epochs:      *flagEpochs,
		BatchSize:   *flagBatchSize,
		Seed:        *flagSeed,
		ResultMode:  *flagMode,
		Reporter:    *flagReporter,
		OutputDir:   *flagOutput,
		Show:        *flagShow,
		Progress:    *flagProgress,
	})
	if err := cfg.Validate(); err != nil {
		klog.Exitf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, _, err := run(ctx, cfg)
	if err != nil {
		klog.Exitf("sweep failed: %+v", err)
	}
	if len(results) > 0 {
		fmt.Println(report.Table(results))
	}
}

// run loads the data, runs the sweep (or the exploration) and writes the
// charts. It returns the sweep results and the files written.
func run(ctx context.Context, cfg *config.Config) ([]sweep.Result, []string, error) {
	runID := uuid.NewString()
	src, err := cfg.Source()
	if err != nil {
		return nil, nil, errors.WithMessage(err, "resolve data source")
	}
	ds, err := dataset.Load(src, dataset.Options{NumClasses: cfg.NumClasses})
	if err != nil {
		return nil, nil, err
	}
	klog.Infof("run=%s train=%s validation=%s features=%d",
		runID,
		humanize.Comma(int64(ds.Train.Rows())),
		humanize.Comma(int64(ds.Validation.Rows())),
		ds.Train.Width(),
	)

	reportOpts := report.Options{
		Dir:     filepath.Join(cfg.OutputDir, runID),
		Formats: cfg.Formats,
		Show:    cfg.Show,
	}
	if cfg.Reporter == config.ReporterExplore {
		paths, err := report.Explore(ds.Train, cfg.NumClasses, reportOpts)
		if err != nil {
			return nil, paths, err
		}
		klog.Infof("run=%s wrote %d charts to %s", runID, len(paths), reportOpts.Dir)
		return nil, paths, nil
	}

	backend, err := model.NewBackend()
	if err != nil {
		return nil, nil, err
	}
	trainOpts := trainer.Options{
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		NumClasses:   cfg.NumClasses,
		Seed:         cfg.Seed,
		Backend:      backend,
	}
	fit := func(ctx context.Context, units int) (*metrics.History, error) {
		return trainer.Fit(ctx, units, ds, trainOpts)
	}
	sweepOpts := sweep.Options{Mode: sweep.KeepHistory}
	if cfg.ResultMode == config.ModeSummary {
		sweepOpts.Mode = sweep.KeepSummary
	}
	if cfg.Progress {
		sweepOpts.Progress = os.Stderr
	}
	results, err := sweep.Run(ctx, cfg.HiddenUnits, fit, sweepOpts)
	if err != nil {
		return nil, nil, err
	}

	paths, err := report.LossVsUnits(results, reportOpts)
	if err != nil {
		return results, paths, err
	}
	if sweepOpts.Mode == sweep.KeepHistory {
		curves, err := report.Curves(results, reportOpts)
		paths = append(paths, curves...)
		if err != nil {
			return results, paths, err
		}
	}
	klog.Infof("run=%s wrote %d charts to %s", runID, len(paths), reportOpts.Dir)
	return results, paths, nil
}

func parseUnits(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var units []int
	for _, part := range strings.Split(s, ",") {
		u, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Wrapf(err, "hidden-unit count %q", part)
		}
		units = append(units, u)
	}
	return units, nil
}
