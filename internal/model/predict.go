package model

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/nn"
	"github.com/born-ml/chainnet/internal/tensor"
)

// ErrInputSize is returned when prediction input does not match the
// model's declared input size.
var ErrInputSize = errors.New("input size does not match the model input")

// Model is a built forward model with its description.
type Model struct {
	*nn.Sequential
	Description *Description
	inputSize   int
	backend     tensor.Backend
}

// Build creates the forward model and streams the description's weights
// into it in declaration order. Leftover or missing weights yield a
// *stream.CountMismatchError.
func (d *Description) Build(backend tensor.Backend) (*Model, error) {
	specs, err := d.Specs()
	if err != nil {
		return nil, err
	}
	seq, loaders, err := nn.Build(specs, backend)
	if err != nil {
		return nil, err
	}
	weights, err := d.Weights()
	if err != nil {
		return nil, err
	}
	if err := nn.Fill(loaders, widen(weights)); err != nil {
		return nil, err
	}

	m := &Model{Sequential: seq, Description: d, backend: backend}
	if in, ok := specs[0].(layer.Input); ok {
		m.inputSize = layer.NewShapeContext(in.Dims...).Size()
	}
	return m, nil
}

// Predict runs one forward pass over a flat input.
func (m *Model) Predict(input []float64) (*tensor.Tensor, error) {
	if m.inputSize > 0 && len(input) != m.inputSize {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrInputSize, m.inputSize, len(input))
	}
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInputSize)
	}
	x, err := tensor.FromSlice(input, tensor.Shape{len(input)}, m.backend)
	if err != nil {
		return nil, err
	}
	return m.Forward(x), nil
}

// Prediction is a classified model output.
type Prediction struct {
	Index       int
	Label       string
	Probability float64
}

// Classify applies the global softmax to out and returns the most likely
// class. Label is empty when the description names no classes.
func (m *Model) Classify(out *tensor.Tensor) Prediction {
	probs := out.Softmax()
	best := probs.Argmax()

	p := Prediction{Index: best, Probability: probs.Data()[best]}
	if classes := m.Description.Classes; best < len(classes) {
		p.Label = classes[best]
	}
	return p
}

// PredictBatch runs every input through the model described by d. Each of
// the workers builds its own model, so recurrent state is never shared.
// workers <= 0 uses GOMAXPROCS. Outputs are returned in input order.
func PredictBatch(ctx context.Context, d *Description, backend tensor.Backend, inputs [][]float64, workers int) ([]*tensor.Tensor, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(inputs))

	outputs := make([]*tensor.Tensor, len(inputs))
	next := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(next)
		for i := range inputs {
			select {
			case next <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			m, err := d.Build(backend)
			if err != nil {
				return err
			}
			for i := range next {
				m.ResetState()
				out, err := m.Predict(inputs[i])
				if err != nil {
					return fmt.Errorf("input %d: %w", i, err)
				}
				outputs[i] = out
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
