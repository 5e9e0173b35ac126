// Package nn implements the forward pass of every supported layer kind.
//
// Layers are built empty from a layer.Spec and filled through the same
// streaming protocol the execution target uses: weights arrive as a flat
// scalar sequence in Keras order (kernel, then recurrent kernel, then
// bias) and AppendWeights may be called with chunks of any size.
//
//   - Module: anything with a forward pass
//   - WeightLoader: anything that accepts streamed weights
//   - Dense, Conv2D, MaxPooling2D, Flatten, Rescaling, Embedding, SimpleRNN
//   - LSTM: weight sizing and loading only
//   - GELU, LayerNorm, MLP: composites used by generation models
//   - Sequential: ordered composition
package nn

import (
	"github.com/born-ml/chainnet/internal/stream"
	"github.com/born-ml/chainnet/internal/tensor"
)

// Module is anything with a forward pass.
//
// Forward must not modify its input. It runs synchronously and never
// blocks.
type Module interface {
	Forward(input *tensor.Tensor) *tensor.Tensor
}

// WeightLoader accepts weights streamed in stream order.
type WeightLoader interface {
	// AppendWeights writes values at the current fill position, carrying
	// over slot boundaries. Values past the last slot are rejected with a
	// *stream.SlotOverflowError.
	AppendWeights(values []float64) error

	// WeightCount returns the total number of scalars the layer holds.
	WeightCount() int

	// Loaded reports whether every weight has been written.
	Loaded() bool
}

// Stateful is implemented by modules that carry state across Forward
// calls.
type Stateful interface {
	ResetState()
}

// weightSet is the streaming fill state shared by weight-bearing layers.
// The cursor writes straight into the parameter tensors.
type weightSet struct {
	params []*Parameter
	cursor stream.Cursor[float64]
}

func newWeightSet(params ...*Parameter) weightSet {
	bufs := make([][]float64, len(params))
	for i, p := range params {
		bufs[i] = p.Tensor().Data()
	}
	return weightSet{params: params, cursor: stream.FromBuffers(bufs...)}
}

// AppendWeights implements WeightLoader.
func (w *weightSet) AppendWeights(values []float64) error {
	next, err := w.cursor.Append(values)
	w.cursor = next
	return err
}

// WeightCount implements WeightLoader.
func (w *weightSet) WeightCount() int {
	return w.cursor.Capacity()
}

// Loaded implements WeightLoader.
func (w *weightSet) Loaded() bool {
	return w.cursor.Done()
}

// Parameters returns the layer's weight tensors in stream order.
func (w *weightSet) Parameters() []*Parameter {
	return w.params
}
