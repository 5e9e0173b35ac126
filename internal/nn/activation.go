package nn

import (
	"github.com/born-ml/chainnet/internal/tensor"
)

// Activation applies a fixed activation element-wise (global softmax for
// tensor.Softmax).
type Activation struct {
	act tensor.Activation
}

// NewActivation creates an activation module.
func NewActivation(act tensor.Activation) *Activation {
	return &Activation{act: act}
}

// Forward applies the activation.
func (a *Activation) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Activate(a.act)
}

// NewGELU returns the GELU activation, x/2 * (1 + erf(x/sqrt(2))), with erf
// approximated the same way the target does it.
func NewGELU() *Activation {
	return NewActivation(tensor.GELU)
}
