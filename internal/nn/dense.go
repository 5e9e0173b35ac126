package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/tensor"
)

// Dense implements a fully connected layer.
//
// Performs: y = activation(x @ W + b)
// where:
//   - x has shape [in] or [n, in]
//   - W is the kernel with shape [in, out] (Keras layout)
//   - b is the bias with shape [out]
//
// Inputs of rank 3 or more are treated as a batch of rows over the last
// axis, as Keras does.
//
// Example:
//
//	dense := nn.NewDense(784, 128, tensor.ReLU, backend)
//	_ = dense.AppendWeights(weights) // 784*128 + 128 scalars
//	output := dense.Forward(input)   // [784] -> [128]
type Dense struct {
	weightSet
	Kernel     *Parameter // [in, out]
	Bias       *Parameter // [out]
	activation tensor.Activation
	in, out    int
}

// NewDense creates a Dense layer with zero weights.
func NewDense(in, out int, act tensor.Activation, backend tensor.Backend) *Dense {
	if in <= 0 || out <= 0 {
		panic(fmt.Sprintf("dense: invalid size %d -> %d", in, out))
	}
	kernel := zeroParam(layer.SlotKernel, tensor.Shape{in, out}, backend)
	bias := zeroParam(layer.SlotBias, tensor.Shape{out}, backend)
	return newDenseWith(kernel, bias, act)
}

func newDenseWith(kernel, bias *Parameter, act tensor.Activation) *Dense {
	shape := kernel.Tensor().Shape()
	return &Dense{
		weightSet:  newWeightSet(kernel, bias),
		Kernel:     kernel,
		Bias:       bias,
		activation: act,
		in:         shape[0],
		out:        shape[1],
	}
}

// Forward computes activation(x @ W + b).
func (d *Dense) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if shape.Last() != d.in {
		panic(fmt.Sprintf("dense: expected last dimension %d, got shape %v", d.in, shape))
	}

	x := input
	if len(shape) > 2 {
		x = input.Reshape(shape.NumElements()/d.in, d.in)
	}

	y := addLastAxis(x.MatMul(d.Kernel.Tensor()), d.Bias.Tensor())

	if len(shape) > 2 {
		outShape := shape.Clone()
		outShape[len(outShape)-1] = d.out
		y = y.Reshape(outShape...)
	}
	return y.Activate(d.activation)
}

// Activation returns the layer's activation.
func (d *Dense) Activation() tensor.Activation {
	return d.activation
}

// String returns a short description of the layer.
func (d *Dense) String() string {
	return fmt.Sprintf("Dense(%d -> %d, %s)", d.in, d.out, d.activation)
}

// addLastAxis adds b to every row of y along the last axis.
func addLastAxis(y, b *tensor.Tensor) *tensor.Tensor {
	if y.Rank() == 1 {
		return y.Add(b)
	}

	n := b.NumElements()
	if y.Shape().Last() != n {
		panic(fmt.Sprintf("bias: last dimension %d does not match bias %d", y.Shape().Last(), n))
	}

	out := y.Clone()
	data := out.Data()
	for i := 0; i < len(data); i += n {
		floats.Add(data[i:i+n], b.Data())
	}
	return out
}
