package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/stream"
	"github.com/born-ml/chainnet/internal/tensor"
)

// ErrForwardUnsupported is returned when a model contains a layer kind whose
// forward pass only exists on the target.
var ErrForwardUnsupported = errors.New("forward pass not supported off-target")

// newLayer builds the empty layer for spec given its input shape.
func newLayer(spec layer.Spec, ctx layer.ShapeContext, backend tensor.Backend) (any, error) {
	if spec.Kind() != layer.KindInput && spec.Kind() != layer.KindPassThrough && !ctx.Set {
		return nil, fmt.Errorf("%s: %w", spec.Kind(), layer.ErrNoInputShape)
	}

	switch s := spec.(type) {
	case layer.Input:
		if s.InputKind == layer.InputToken {
			return NewTokenInput(s.Dims), nil
		}
		return NewInput(s.Dims), nil

	case layer.Dense:
		in := s.InputDim
		if in <= 0 {
			in = ctx.Last()
		}
		if in <= 0 {
			return nil, fmt.Errorf("dense: input %s: %w", ctx, layer.ErrUnknownDim)
		}
		return NewDense(in, s.Units, s.Activation, backend), nil

	case layer.Flatten:
		return NewFlatten(), nil

	case layer.Rescaling:
		return NewRescaling(s.Scale, s.Offset), nil

	case layer.MaxPooling2D:
		return NewMaxPooling2D(s.Size, s.Stride, s.Padding), nil

	case layer.Conv2D:
		if len(ctx.Dims) != 3 || ctx.Dims[2] <= 0 {
			return nil, fmt.Errorf("conv2d: input %s: %w", ctx, layer.ErrRankMismatch)
		}
		return NewConv2D(ctx.Dims[2], s.Filters, s.Size, s.Stride, s.Padding, s.Activation, backend), nil

	case layer.Embedding:
		return NewEmbedding(s.InputDim, s.OutputDim, backend), nil

	case layer.SimpleRNN:
		if ctx.Last() <= 0 {
			return nil, fmt.Errorf("simple rnn: input %s: %w", ctx, layer.ErrUnknownDim)
		}
		return NewSimpleRNN(ctx.Last(), s.Units, s.Activation, backend), nil

	case layer.LSTM:
		if ctx.Last() <= 0 {
			return nil, fmt.Errorf("lstm: input %s: %w", ctx, layer.ErrUnknownDim)
		}
		return NewLSTM(ctx.Last(), s.Units, s.Activation, s.RecurrentActivation, backend), nil

	case layer.PassThrough:
		return nil, nil

	default:
		panic(fmt.Sprintf("nn: unhandled spec %T", spec))
	}
}

// FromSpec builds the empty module for spec. LSTM yields
// ErrForwardUnsupported; pass-through specs yield a nil module.
func FromSpec(spec layer.Spec, ctx layer.ShapeContext, backend tensor.Backend) (Module, error) {
	l, err := newLayer(spec, ctx, backend)
	if err != nil || l == nil {
		return nil, err
	}
	m, ok := l.(Module)
	if !ok {
		return nil, fmt.Errorf("%s: %w", spec.Kind(), ErrForwardUnsupported)
	}
	return m, nil
}

// Build folds the shape context over specs and returns the empty model and
// its weight loaders in declaration order. Pass-through specs are skipped.
func Build(specs []layer.Spec, backend tensor.Backend) (*Sequential, []WeightLoader, error) {
	var (
		ctx   layer.ShapeContext
		model = NewSequential()
	)
	for i, spec := range specs {
		m, err := FromSpec(spec, ctx, backend)
		if err != nil {
			return nil, nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if ctx, err = layer.Next(spec, ctx); err != nil {
			return nil, nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if m != nil {
			model.Add(m)
		}
	}
	return model, model.Loaders(), nil
}

// Loaders builds weight holders for every weight-bearing spec, LSTM
// included, without building a forward model.
func Loaders(specs []layer.Spec, backend tensor.Backend) ([]WeightLoader, error) {
	var (
		ctx     layer.ShapeContext
		loaders []WeightLoader
	)
	for i, spec := range specs {
		l, err := newLayer(spec, ctx, backend)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if ctx, err = layer.Next(spec, ctx); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if wl, ok := l.(WeightLoader); ok {
			loaders = append(loaders, wl)
		}
	}
	return loaders, nil
}

// Fill streams weights into loaders in order. The weight count must match
// the loaders' total exactly; otherwise nothing is considered loaded and a
// *stream.CountMismatchError is returned.
func Fill(loaders []WeightLoader, weights []float64) error {
	want := 0
	for _, l := range loaders {
		want += l.WeightCount()
	}
	if want != len(weights) {
		return &stream.CountMismatchError{
			Kind:     layer.KindPassThrough,
			Instance: -1,
			Expected: want,
			Got:      len(weights),
		}
	}

	rest := weights
	for i, l := range loaders {
		n := l.WeightCount()
		if err := l.AppendWeights(rest[:n]); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
		rest = rest[n:]
	}
	return nil
}
