package nn

import (
	"fmt"

	"github.com/born-ml/chainnet/internal/tensor"
)

// Input reshapes incoming data to the model's declared input shape when
// the element counts agree, so callers may pass flat pixel buffers.
//
// Token inputs are never reshaped: a recurrent text model is fed any
// number of ids per call, down to a single id per generation step.
type Input struct {
	dims  tensor.Shape
	token bool
}

// NewInput creates an input layer. Dimensions of 0 mark unknown sizes; an
// input with unknown sizes passes data through unchanged.
func NewInput(dims []int) *Input {
	return &Input{dims: tensor.Shape(dims).Clone()}
}

// NewTokenInput creates an input layer for token ids. It passes data
// through unchanged whatever the declared sequence length.
func NewTokenInput(dims []int) *Input {
	return &Input{dims: tensor.Shape(dims).Clone(), token: true}
}

// Forward reshapes input to the declared shape.
func (in *Input) Forward(input *tensor.Tensor) *tensor.Tensor {
	if in.token || len(in.dims) == 0 || in.dims.Validate() != nil {
		return input
	}
	if input.Shape().Equal(in.dims) {
		return input
	}
	if input.NumElements() != in.dims.NumElements() {
		panic(fmt.Sprintf("input: expected %v (%d elements), got shape %v",
			in.dims, in.dims.NumElements(), input.Shape()))
	}
	return input.Reshape(in.dims...)
}

// Flatten collapses its input to rank 1 in row-major order.
type Flatten struct{}

// NewFlatten creates a Flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward flattens the input.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Flatten()
}

// Rescaling computes x*scale + offset element-wise.
type Rescaling struct {
	scale, offset float64
}

// NewRescaling creates a Rescaling layer.
func NewRescaling(scale, offset float64) *Rescaling {
	return &Rescaling{scale: scale, offset: offset}
}

// Forward rescales the input.
func (r *Rescaling) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Rescale(r.scale, r.offset)
}
