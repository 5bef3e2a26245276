package metrics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// History holds the per-epoch series of one training run.
type History struct {
	Loss        []float64
	ValLoss     []float64
	Accuracy    []float64
	ValAccuracy []float64
}

// Append records one epoch.
func (h *History) Append(loss, valLoss, accuracy, valAccuracy float64) {
	h.Loss = append(h.Loss, loss)
	h.ValLoss = append(h.ValLoss, valLoss)
	h.Accuracy = append(h.Accuracy, accuracy)
	h.ValAccuracy = append(h.ValAccuracy, valAccuracy)
}

// Epochs returns the number of recorded epochs.
func (h *History) Epochs() int {
	return len(h.Loss)
}

// Summary reduces a History to scalars.
type Summary struct {
	MeanLoss         float64
	MeanValLoss      float64
	FinalLoss        float64
	FinalValLoss     float64
	FinalValAccuracy float64
}

// Summary returns the mean and final values of h. An empty history yields NaN means.
func (h *History) Summary() Summary {
	s := Summary{
		MeanLoss:         math.NaN(),
		MeanValLoss:      math.NaN(),
		FinalLoss:        math.NaN(),
		FinalValLoss:     math.NaN(),
		FinalValAccuracy: math.NaN(),
	}
	if h.Epochs() == 0 {
		return s
	}
	s.MeanLoss = stat.Mean(h.Loss, nil)
	s.MeanValLoss = stat.Mean(h.ValLoss, nil)
	s.FinalLoss = h.Loss[len(h.Loss)-1]
	s.FinalValLoss = h.ValLoss[len(h.ValLoss)-1]
	if len(h.ValAccuracy) > 0 {
		s.FinalValAccuracy = h.ValAccuracy[len(h.ValAccuracy)-1]
	}
	return s
}

// Check returns an error naming the first loss that is negative, NaN or infinite.
func (h *History) Check() error {
	for _, s := range []struct {
		name   string
		values []float64
	}{{"loss", h.Loss}, {"val_loss", h.ValLoss}} {
		for epoch, v := range s.values {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return errors.Errorf("%s at epoch %d is %g", s.name, epoch+1, v)
			}
		}
	}
	return nil
}
