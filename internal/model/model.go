// Package model holds the feed-forward classifier trained by the sweep.
package model

import "gonum.org/v1/gonum/mat"

// Batch represents a minibatch of features and labels.
type Batch struct {
	Inputs *mat.Dense
	Labels []int
}

// Size returns the number of examples in the batch.
func (b Batch) Size() int {
	return len(b.Labels)
}

// Metrics are the loss and accuracy of one forward pass.
type Metrics struct {
	Loss     float64
	Accuracy float64
}

// Model defines the training functionality required by the trainer.
type Model interface {
	// TrainStep runs forward and backward on batch, applies one optimizer
	// update and returns the metrics measured before the update.
	TrainStep(batch Batch) (Metrics, error)
	// Evaluate runs forward only.
	Evaluate(batch Batch) (Metrics, error)
}
