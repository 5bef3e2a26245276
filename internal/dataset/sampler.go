package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Batches returns the example indices of one epoch split into batches of
// batchSize. The order is shuffled with rng when rng is non-nil; the last
// batch holds the remainder and may be shorter.
func Batches(n, batchSize int, rng *rand.Rand) [][]int {
	if n <= 0 {
		return nil
	}
	if batchSize <= 0 || batchSize > n {
		batchSize = n
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	batches := make([][]int, 0, (n+batchSize-1)/batchSize)
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		batches = append(batches, order[start:end])
	}
	return batches
}

// Gather copies the rows listed in idx into a new feature matrix and label slice.
func (s Split) Gather(idx []int) (*mat.Dense, []int) {
	features := mat.NewDense(len(idx), s.Width(), nil)
	labels := make([]int, len(idx))
	for i, row := range idx {
		features.SetRow(i, s.Features.RawRowView(row))
		labels[i] = s.Labels[row]
	}
	return features, labels
}

// LabelCounts returns how many examples carry each label in [0, numClasses).
func (s Split) LabelCounts(numClasses int) []int {
	counts := make([]int, numClasses)
	for _, l := range s.Labels {
		if l >= 0 && l < numClasses {
			counts[l]++
		}
	}
	return counts
}
