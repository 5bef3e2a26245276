package trainer

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"hiddenunit-sweep/internal/dataset"
	"hiddenunit-sweep/internal/model"
)

// syntheticDataset draws n examples per split whose label is the index of
// the largest of the first numClasses features.
func syntheticDataset(n, width, numClasses int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	split := func() dataset.Split {
		features := mat.NewDense(n, width, nil)
		labels := make([]int, n)
		for i := 0; i < n; i++ {
			best := 0
			for j := 0; j < width; j++ {
				v := float64(rng.Intn(10))
				features.Set(i, j, v)
				if j < numClasses && v > features.At(i, best) {
					best = j
				}
			}
			labels[i] = best
		}
		return dataset.Split{Features: features, Labels: labels}
	}
	return &dataset.Dataset{Train: split(), Validation: split()}
}

func defaultOptions() Options {
	return Options{Epochs: 50, BatchSize: 32, LearningRate: 0.01, NumClasses: 10}
}

func TestFitReturnsOneValuePerEpoch(t *testing.T) {
	ds := syntheticDataset(40, 4, 4, 1)
	for _, units := range []int{5, 20, 50, 100, 200} {
		hist, err := Fit(context.Background(), units, ds, defaultOptions())
		require.NoError(t, err, "hidden_units=%d", units)
		require.Len(t, hist.Loss, 50)
		require.Len(t, hist.ValLoss, 50)
		require.Len(t, hist.ValAccuracy, 50)
		for i := range hist.Loss {
			for _, v := range []float64{hist.Loss[i], hist.ValLoss[i]} {
				require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
				require.GreaterOrEqual(t, v, 0.0)
			}
		}
	}
}

func TestFitLearns(t *testing.T) {
	ds := syntheticDataset(200, 4, 4, 2)
	opts := defaultOptions()
	opts.Seed = 5
	hist, err := Fit(context.Background(), 20, ds, opts)
	require.NoError(t, err)
	assert.Less(t, hist.Loss[len(hist.Loss)-1], hist.Loss[0])
}

func TestFitSeededIsReproducible(t *testing.T) {
	ds := syntheticDataset(30, 3, 3, 3)
	opts := defaultOptions()
	opts.Epochs = 5
	opts.Seed = 42
	first, err := Fit(context.Background(), 8, ds, opts)
	require.NoError(t, err)
	second, err := Fit(context.Background(), 8, ds, opts)
	require.NoError(t, err)
	require.InDeltaSlice(t, first.Loss, second.Loss, 1e-5)
	require.InDeltaSlice(t, first.ValLoss, second.ValLoss, 1e-5)
}

func TestFitRejectsBadInput(t *testing.T) {
	ds := syntheticDataset(10, 3, 3, 4)
	ds.Validation.Features = mat.NewDense(ds.Validation.Rows(), 2, nil)
	_, err := Fit(context.Background(), 5, ds, defaultOptions())
	require.True(t, errors.Is(err, dataset.ErrShapeMismatch))

	ds = syntheticDataset(10, 3, 3, 4)
	opts := defaultOptions()
	opts.NumClasses = 2
	ds.Train.Labels[0] = 2
	_, err = Fit(context.Background(), 5, ds, opts)
	require.True(t, errors.Is(err, dataset.ErrLabelRange))

	_, err = Fit(context.Background(), 0, ds, defaultOptions())
	require.Error(t, err)

	_, err = Fit(context.Background(), 5, nil, defaultOptions())
	require.Error(t, err)
}

func TestFitStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fit(ctx, 5, syntheticDataset(10, 3, 3, 5), defaultOptions())
	require.True(t, errors.Is(err, context.Canceled))
}

// constantModel reports fixed metrics and counts the examples it saw.
type constantModel struct {
	loss      float64
	trained   int
	failAfter int
}

func (c *constantModel) TrainStep(b model.Batch) (model.Metrics, error) {
	c.trained += b.Size()
	if c.failAfter > 0 && c.trained > c.failAfter {
		return model.Metrics{}, errors.New("step failed")
	}
	return model.Metrics{Loss: c.loss, Accuracy: 0.5}, nil
}

func (c *constantModel) Evaluate(model.Batch) (model.Metrics, error) {
	return model.Metrics{Loss: c.loss + 1}, nil
}

func TestRunVisitsEveryExampleEachEpoch(t *testing.T) {
	ds := syntheticDataset(70, 3, 3, 6)
	mdl := &constantModel{loss: 0.25}
	opts := defaultOptions()
	opts.Epochs = 3
	hist, err := Run(context.Background(), mdl, ds, opts, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 3*70, mdl.trained)
	assert.Equal(t, []float64{0.25, 0.25, 0.25}, hist.Loss)
	assert.Equal(t, []float64{1.25, 1.25, 1.25}, hist.ValLoss)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, hist.Accuracy)
}

func TestRunReportsDivergence(t *testing.T) {
	ds := syntheticDataset(10, 3, 3, 7)
	_, err := Run(context.Background(), &constantModel{loss: math.NaN()}, ds, defaultOptions(), rand.New(rand.NewSource(1)))
	require.True(t, errors.Is(err, ErrDiverged))
}

func TestRunStopsOnModelError(t *testing.T) {
	ds := syntheticDataset(70, 3, 3, 8)
	mdl := &constantModel{loss: 0.5, failAfter: 100}
	_, err := Run(context.Background(), mdl, ds, defaultOptions(), rand.New(rand.NewSource(1)))
	require.ErrorContains(t, err, "epoch 2")
	require.ErrorContains(t, err, "step failed")
}
