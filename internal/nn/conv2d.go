package nn

import (
	"fmt"

	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/tensor"
)

// Conv2D implements a channels-last 2D convolution.
//
// Input shape:  [W, H, D]
// Kernel shape: [Fw, Fh, D, K] (Keras layout)
// Output shape: [outW, outH, K]
//
// Output size and padding follow layer.ConvSize. Source cells outside the
// input contribute zero.
//
// Example:
//
//	conv := nn.NewConv2D(1, 8, [2]int{3, 3}, [2]int{1, 1}, layer.PaddingValid, tensor.ReLU, backend)
//	output := conv.Forward(image) // [28, 28, 1] -> [26, 26, 8]
type Conv2D struct {
	weightSet
	Kernel     *Parameter // [Fw, Fh, D, K]
	Bias       *Parameter // [K]
	size       [2]int
	stride     [2]int
	padding    layer.Padding
	activation tensor.Activation
}

// NewConv2D creates a Conv2D layer with zero weights.
func NewConv2D(
	inChannels, filters int,
	size, stride [2]int,
	padding layer.Padding,
	act tensor.Activation,
	backend tensor.Backend,
) *Conv2D {
	if inChannels <= 0 || filters <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels %d -> %d", inChannels, filters))
	}
	if stride[0] <= 0 || stride[1] <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %v", stride))
	}

	kernel := zeroParam(layer.SlotKernel, tensor.Shape{size[0], size[1], inChannels, filters}, backend)
	bias := zeroParam(layer.SlotBias, tensor.Shape{filters}, backend)

	return &Conv2D{
		weightSet:  newWeightSet(kernel, bias),
		Kernel:     kernel,
		Bias:       bias,
		size:       size,
		stride:     stride,
		padding:    padding,
		activation: act,
	}
}

// Forward convolves, adds the per-filter bias and applies the activation.
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("conv2d: expected 3D input [W,H,D], got shape %v", shape))
	}

	out, pad := layer.ConvSize([2]int{shape[0], shape[1]}, c.size, c.stride, c.padding)
	y := input.Conv2D(c.Kernel.Tensor(), c.stride, pad, out)
	return addLastAxis(y, c.Bias.Tensor()).Activate(c.activation)
}

// String returns a short description of the layer.
func (c *Conv2D) String() string {
	k := c.Kernel.Tensor().Shape()
	return fmt.Sprintf("Conv2D(%d -> %d, size=%v, stride=%v, %s, %s)",
		k[2], k[3], c.size, c.stride, c.padding, c.activation)
}
