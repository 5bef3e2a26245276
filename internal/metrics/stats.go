package metrics

import "time"

// Window accumulates batch metrics and timing across the steps of an epoch.
// Loss and accuracy are weighted by batch size.
type Window struct {
	samples  int
	data     time.Duration
	compute  time.Duration
	steps    int
	loss     float64
	correct  float64
	lastLoss float64
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration, loss, accuracy float64) {
	w.samples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.loss += loss * float64(batchSize)
	w.correct += accuracy * float64(batchSize)
	w.lastLoss = loss
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Steps: w.steps, Samples: w.samples}
	total := w.data + w.compute
	if total > 0 {
		snap.ExamplesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = (w.data.Seconds() * 1000) / float64(w.steps)
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}
	if w.samples > 0 {
		snap.MeanLoss = w.loss / float64(w.samples)
		snap.MeanAccuracy = w.correct / float64(w.samples)
	}
	snap.LastLoss = w.lastLoss

	*w = Window{}
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Steps          int
	Samples        int
	ExamplesPerSec float64
	AvgDataMS      float64
	AvgComputeMS   float64
	MeanLoss       float64
	MeanAccuracy   float64
	LastLoss       float64
}
