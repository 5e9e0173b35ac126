package nn

import (
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/tensor"
)

// MLP implements the two-layer feed-forward block:
//
//	MLP(x) = Dense2(GELU(Dense1(x)))
//
// Both Dense layers are linear; GELU sits between them. Weights stream in
// as Dense1 kernel, Dense1 bias, Dense2 kernel, Dense2 bias.
//
// Example:
//
//	mlp := nn.NewMLP(64, 256, 64, backend)
//	output := mlp.Forward(x) // [64] -> [64]
type MLP struct {
	weightSet
	Dense1 *Dense // [in -> hidden]
	GELU   *Activation
	Dense2 *Dense // [hidden -> out]
}

// NewMLP creates an MLP with zero weights.
func NewMLP(in, hidden, out int, backend tensor.Backend) *MLP {
	k1 := zeroParam(layer.SlotKernel, tensor.Shape{in, hidden}, backend)
	b1 := zeroParam(layer.SlotBias, tensor.Shape{hidden}, backend)
	k2 := zeroParam(layer.SlotKernel, tensor.Shape{hidden, out}, backend)
	b2 := zeroParam(layer.SlotBias, tensor.Shape{out}, backend)

	return &MLP{
		weightSet: newWeightSet(k1, b1, k2, b2),
		Dense1:    newDenseWith(k1, b1, tensor.Linear),
		GELU:      NewGELU(),
		Dense2:    newDenseWith(k2, b2, tensor.Linear),
	}
}

// Forward computes Dense2(GELU(Dense1(x))).
func (m *MLP) Forward(input *tensor.Tensor) *tensor.Tensor {
	return m.Dense2.Forward(m.GELU.Forward(m.Dense1.Forward(input)))
}
