package model

import (
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/backends/simplego"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/context/initializers"
	"github.com/gomlx/gomlx/pkg/ml/layers"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
	"github.com/gomlx/gomlx/pkg/ml/train/losses"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/pkg/errors"
)

// NewBackend returns the pure Go backend classifiers are compiled for.
func NewBackend() (backends.Backend, error) {
	backend, err := simplego.New("")
	if err != nil {
		return nil, errors.Wrap(err, "model: create backend")
	}
	return backend, nil
}

// Config describes one classifier.
type Config struct {
	HiddenUnits  int
	NumClasses   int
	LearningRate float64
	// Seed fixes weight initialization when non-zero.
	Seed int64
}

// Classifier is Dense(HiddenUnits, relu) followed by Dense(NumClasses)
// producing logits. Weights start Glorot-uniform with zero biases, and
// training minimizes the mean sparse categorical cross-entropy of the softmax
// of those logits with Adam.
type Classifier struct {
	cfg       Config
	ctx       *context.Context
	optimizer optimizers.Interface
	trainExec *context.Exec
	evalExec  *context.Exec
}

var _ Model = (*Classifier)(nil)

// NewClassifier prepares the training and evaluation graphs on backend.
// Variables are created on the first step.
func NewClassifier(backend backends.Backend, cfg Config) (*Classifier, error) {
	if cfg.HiddenUnits <= 0 {
		return nil, errors.Errorf("model: hidden units must be > 0 (got %d)", cfg.HiddenUnits)
	}
	if cfg.NumClasses <= 0 {
		return nil, errors.Errorf("model: number of classes must be > 0 (got %d)", cfg.NumClasses)
	}
	if cfg.LearningRate <= 0 {
		return nil, errors.Errorf("model: learning rate must be > 0 (got %g)", cfg.LearningRate)
	}

	ctx := context.New().Checked(false)
	ctx = ctx.WithInitializer(initializers.GlorotUniformFn(ctx))
	if cfg.Seed != 0 {
		if err := ctx.SetRNGStateFromSeed(cfg.Seed); err != nil {
			return nil, errors.Wrap(err, "model: seed")
		}
	}
	c := &Classifier{
		cfg:       cfg,
		ctx:       ctx,
		optimizer: optimizers.Adam().LearningRate(cfg.LearningRate).Done(),
	}
	var err error
	if c.trainExec, err = context.NewExec(backend, c.ctx, c.trainGraph); err != nil {
		return nil, errors.Wrap(err, "model: train graph")
	}
	if c.evalExec, err = context.NewExec(backend, c.ctx, c.evalGraph); err != nil {
		return nil, errors.Wrap(err, "model: eval graph")
	}
	return c, nil
}

func (c *Classifier) logits(ctx *context.Context, x *graph.Node) *graph.Node {
	hidden := layers.Dense(ctx.In("hidden"), x, true, c.cfg.HiddenUnits)
	hidden = activations.Relu(hidden)
	return layers.Dense(ctx.In("output"), hidden, true, c.cfg.NumClasses)
}

func (c *Classifier) loss(labels, logits *graph.Node) *graph.Node {
	return losses.SparseCategoricalCrossEntropyLogits([]*graph.Node{labels}, []*graph.Node{logits})
}

func (c *Classifier) trainGraph(ctx *context.Context, x, labels *graph.Node) (*graph.Node, *graph.Node) {
	logits := c.logits(ctx, x)
	loss := c.loss(labels, logits)
	c.optimizer.UpdateGraph(ctx, x.Graph(), loss)
	return loss, logits
}

func (c *Classifier) evalGraph(ctx *context.Context, x, labels *graph.Node) (*graph.Node, *graph.Node) {
	logits := c.logits(ctx, x)
	return c.loss(labels, logits), logits
}

// TrainStep implements Model.
func (c *Classifier) TrainStep(batch Batch) (Metrics, error) {
	m, err := c.run(c.trainExec, batch)
	return m, errors.WithMessage(err, "model: train step")
}

// Evaluate implements Model.
func (c *Classifier) Evaluate(batch Batch) (Metrics, error) {
	m, err := c.run(c.evalExec, batch)
	return m, errors.WithMessage(err, "model: evaluate")
}

func (c *Classifier) run(exec *context.Exec, batch Batch) (Metrics, error) {
	if batch.Size() == 0 {
		return Metrics{}, errors.New("empty batch")
	}
	inputs, labels := toTensors(batch)
	outputs, err := exec.Exec(inputs, labels)
	if err != nil {
		return Metrics{}, err
	}
	if len(outputs) != 2 {
		return Metrics{}, errors.Errorf("expected loss and logits, got %d outputs", len(outputs))
	}
	lossValue, err := outputs[0].ValueSafe()
	if err != nil {
		return Metrics{}, err
	}
	logitsValue, err := outputs[1].ValueSafe()
	if err != nil {
		return Metrics{}, err
	}
	loss, ok := lossValue.(float32)
	if !ok {
		return Metrics{}, errors.Errorf("loss has unexpected type %T", lossValue)
	}
	logits, ok := logitsValue.([][]float32)
	if !ok {
		return Metrics{}, errors.Errorf("logits have unexpected type %T", logitsValue)
	}
	return Metrics{Loss: float64(loss), Accuracy: accuracy(logits, batch.Labels)}, nil
}

// toTensors converts batch to float32 inputs [n, width] and int32 labels [n, 1].
func toTensors(batch Batch) (*tensors.Tensor, *tensors.Tensor) {
	rows, cols := batch.Inputs.Dims()
	flat := make([]float32, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for _, v := range batch.Inputs.RawRowView(r) {
			flat = append(flat, float32(v))
		}
	}
	labels := make([]int32, len(batch.Labels))
	for i, l := range batch.Labels {
		labels[i] = int32(l)
	}
	return tensors.FromFlatDataAndDimensions(flat, rows, cols),
		tensors.FromFlatDataAndDimensions(labels, len(labels), 1)
}

// accuracy is the fraction of rows whose largest logit is the label.
func accuracy(logits [][]float32, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	correct := 0
	for i, row := range logits {
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		if best == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}
