package sweep

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiddenunit-sweep/internal/metrics"
)

// fakeFit returns a history whose loss encodes the hidden width.
func fakeFit(calls *[]int) FitFunc {
	return func(_ context.Context, units int) (*metrics.History, error) {
		*calls = append(*calls, units)
		h := &metrics.History{}
		for e := 0; e < 50; e++ {
			h.Append(float64(units), float64(units)+1, 0, 0)
		}
		return h, nil
	}
}

func TestRunPreservesOrder(t *testing.T) {
	units := []int{5, 20, 50, 100, 200}
	var calls []int
	results, err := Run(context.Background(), units, fakeFit(&calls), Options{})
	require.NoError(t, err)
	require.Equal(t, units, calls)
	require.Len(t, results, len(units))
	for i, r := range results {
		assert.Equal(t, units[i], r.HiddenUnits)
		require.NotNil(t, r.History)
		assert.Len(t, r.History.Loss, 50)
		assert.Equal(t, float64(units[i]), r.Summary.MeanLoss)
		assert.Equal(t, float64(units[i])+1, r.Summary.MeanValLoss)
	}
	assert.Equal(t, units, Units(results))
}

func TestRunSummaryModeDropsHistory(t *testing.T) {
	var calls []int
	results, err := Run(context.Background(), []int{5, 20}, fakeFit(&calls), Options{Mode: KeepSummary})
	require.NoError(t, err)
	for _, r := range results {
		assert.Nil(t, r.History)
		assert.False(t, math.IsNaN(r.Summary.MeanLoss))
	}
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var calls []int
	fit := func(ctx context.Context, units int) (*metrics.History, error) {
		if units == 20 {
			calls = append(calls, units)
			return nil, boom
		}
		return fakeFit(&calls)(ctx, units)
	}
	results, err := Run(context.Background(), []int{5, 20, 50}, fit, Options{})
	require.Nil(t, results)
	require.True(t, errors.Is(err, boom))
	require.ErrorContains(t, err, "hidden_units=20")
	require.Equal(t, []int{5, 20}, calls)
}

func TestRunRejectsInvalidHistory(t *testing.T) {
	fit := func(context.Context, int) (*metrics.History, error) {
		h := &metrics.History{}
		h.Append(-1, 0, 0, 0)
		return h, nil
	}
	_, err := Run(context.Background(), []int{5}, fit, Options{})
	require.Error(t, err)

	_, err = Run(context.Background(), nil, fit, Options{})
	require.Error(t, err)
}

func TestRunWritesProgress(t *testing.T) {
	var calls []int
	var buf bytes.Buffer
	_, err := Run(context.Background(), []int{5, 20}, fakeFit(&calls), Options{Progress: &buf})
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}
