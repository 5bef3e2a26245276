package trainer

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/gomlx/gomlx/backends"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"hiddenunit-sweep/internal/dataset"
	"hiddenunit-sweep/internal/metrics"
	"hiddenunit-sweep/internal/model"
)

// ErrDiverged is returned when an epoch ends with a NaN or infinite loss.
var ErrDiverged = errors.New("training diverged")

// Options captures the knobs required by the training loop.
type Options struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	NumClasses   int
	// Seed drives weight initialization and shuffling. Zero draws a seed from
	// the clock, so repeated runs differ.
	Seed int64
	// Backend compiles the classifier graphs. Nil creates a new pure Go backend.
	Backend backends.Backend
}

func (o Options) validate() error {
	if o.Epochs <= 0 {
		return errors.New("trainer: epochs must be > 0")
	}
	if o.BatchSize <= 0 {
		return errors.New("trainer: batch size must be > 0")
	}
	if o.LearningRate <= 0 {
		return errors.New("trainer: learning rate must be > 0")
	}
	if o.NumClasses <= 0 {
		return errors.New("trainer: number of classes must be > 0")
	}
	return nil
}

// Fit builds a classifier with hiddenUnits ReLU units and trains it on ds,
// returning the per-epoch loss history.
func Fit(ctx context.Context, hiddenUnits int, ds *dataset.Dataset, opts Options) (*metrics.History, error) {
	if hiddenUnits <= 0 {
		return nil, errors.Errorf("trainer: hidden units must be > 0 (got %d)", hiddenUnits)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := checkDataset(ds, opts.NumClasses); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	backend := opts.Backend
	if backend == nil {
		var err error
		if backend, err = model.NewBackend(); err != nil {
			return nil, err
		}
	}
	clf, err := model.NewClassifier(backend, model.Config{
		HiddenUnits:  hiddenUnits,
		NumClasses:   opts.NumClasses,
		LearningRate: opts.LearningRate,
		Seed:         seed,
	})
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("hidden_units=%d inputs=%d seed=%d backend=%s", hiddenUnits, ds.Train.Width(), seed, backend.Name())
	return Run(ctx, clf, ds, opts, rand.New(rand.NewSource(seed)))
}

// Run trains mdl for opts.Epochs epochs, reshuffling the training set with
// rng every epoch, and evaluates the validation set at the end of each epoch.
func Run(ctx context.Context, mdl model.Model, ds *dataset.Dataset, opts Options, rng *rand.Rand) (*metrics.History, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := checkDataset(ds, opts.NumClasses); err != nil {
		return nil, err
	}

	valBatch := model.Batch{Inputs: ds.Validation.Features, Labels: ds.Validation.Labels}
	hist := &metrics.History{}
	var window metrics.Window

	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "trainer: stopped before epoch %d", epoch)
		}
		for _, idx := range dataset.Batches(ds.Train.Rows(), opts.BatchSize, rng) {
			startData := time.Now()
			inputs, labels := ds.Train.Gather(idx)
			dataTime := time.Since(startData)

			startCompute := time.Now()
			m, err := mdl.TrainStep(model.Batch{Inputs: inputs, Labels: labels})
			if err != nil {
				return nil, errors.WithMessagef(err, "trainer: epoch %d", epoch)
			}
			computeTime := time.Since(startCompute)

			window.Record(len(idx), dataTime, computeTime, m.Loss, m.Accuracy)
		}

		snap := window.Snapshot()
		val, err := mdl.Evaluate(valBatch)
		if err != nil {
			return nil, errors.WithMessagef(err, "trainer: validate epoch %d", epoch)
		}
		hist.Append(snap.MeanLoss, val.Loss, snap.MeanAccuracy, val.Accuracy)

		if !finite(snap.MeanLoss) || !finite(val.Loss) {
			return nil, errors.Wrapf(ErrDiverged, "epoch %d: loss=%g val_loss=%g", epoch, snap.MeanLoss, val.Loss)
		}
		if klog.V(2).Enabled() {
			klog.Infof("epoch=%d steps=%d samples=%d examples_per_sec=%.1f data_ms=%.2f compute_ms=%.2f last_loss=%.4f loss=%.4f acc=%.4f val_loss=%.4f val_acc=%.4f",
				epoch,
				snap.Steps,
				snap.Samples,
				snap.ExamplesPerSec,
				snap.AvgDataMS,
				snap.AvgComputeMS,
				snap.LastLoss,
				snap.MeanLoss,
				snap.MeanAccuracy,
				val.Loss,
				val.Accuracy,
			)
		}
	}

	return hist, nil
}

func checkDataset(ds *dataset.Dataset, numClasses int) error {
	if ds == nil || ds.Train.Rows() == 0 || ds.Validation.Rows() == 0 {
		return errors.New("trainer: train and validation sets must be non-empty")
	}
	if ds.Train.Width() != ds.Validation.Width() {
		return errors.Wrapf(dataset.ErrShapeMismatch, "trainer: train width %d, validation width %d",
			ds.Train.Width(), ds.Validation.Width())
	}
	for _, split := range []dataset.Split{ds.Train, ds.Validation} {
		for _, l := range split.Labels {
			if l < 0 || l >= numClasses {
				return errors.Wrapf(dataset.ErrLabelRange, "trainer: label %d with %d classes", l, numClasses)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
