package nn

import (
	"github.com/born-ml/chainnet/internal/tensor"
)

// Parameter is a named weight tensor of a layer.
//
// Example:
//
//	kernel := nn.NewParameter("kernel", tensor.Zeros(tensor.Shape{16, 2}, backend))
//	w := kernel.Tensor()
type Parameter struct {
	name   string         // Slot name (e.g., "kernel", "bias")
	tensor *tensor.Tensor // The weight tensor
}

// NewParameter creates a new parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

func zeroParam(name string, shape tensor.Shape, b tensor.Backend) *Parameter {
	return NewParameter(name, tensor.Zeros(shape, b))
}
