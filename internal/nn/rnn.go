package nn

import (
	"fmt"

	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/tensor"
)

// SimpleRNN is a fully connected recurrent layer.
//
// Each step computes:
//
//	state = activation(x @ Wx + state @ Wh + b)
//
// The state lives on the instance and persists across Forward calls until
// ResetState zeroes it. A rank-1 input is one step; a rank-2 input is one
// step per row. Forward returns a copy of the final state, shape [units].
type SimpleRNN struct {
	weightSet
	Kernel     *Parameter // Wx [in, units]
	Recurrent  *Parameter // Wh [units, units]
	Bias       *Parameter // [units]
	activation tensor.Activation
	state      *tensor.Tensor
}

// NewSimpleRNN creates a SimpleRNN layer with zero weights and state.
func NewSimpleRNN(in, units int, act tensor.Activation, backend tensor.Backend) *SimpleRNN {
	if in <= 0 || units <= 0 {
		panic(fmt.Sprintf("simple rnn: invalid size %d -> %d", in, units))
	}
	kernel := zeroParam(layer.SlotKernel, tensor.Shape{in, units}, backend)
	recurrent := zeroParam(layer.SlotRecurrent, tensor.Shape{units, units}, backend)
	bias := zeroParam(layer.SlotBias, tensor.Shape{units}, backend)

	return &SimpleRNN{
		weightSet:  newWeightSet(kernel, recurrent, bias),
		Kernel:     kernel,
		Recurrent:  recurrent,
		Bias:       bias,
		activation: act,
		state:      tensor.Zeros(tensor.Shape{units}, backend),
	}
}

// Forward advances the state by one step per input row.
func (r *SimpleRNN) Forward(input *tensor.Tensor) *tensor.Tensor {
	switch input.Rank() {
	case 1:
		r.step(input)
	case 2:
		for i := range input.Shape()[0] {
			r.step(input.Row(i))
		}
	default:
		panic(fmt.Sprintf("simple rnn: expected 1D or 2D input, got shape %v", input.Shape()))
	}
	return r.state.Clone()
}

func (r *SimpleRNN) step(x *tensor.Tensor) {
	h := x.MatMul(r.Kernel.Tensor()).
		Add(r.state.MatMul(r.Recurrent.Tensor())).
		Add(r.Bias.Tensor())
	r.state = h.Activate(r.activation)
}

// State returns a copy of the current state.
func (r *SimpleRNN) State() *tensor.Tensor {
	return r.state.Clone()
}

// ResetState zeroes the state.
func (r *SimpleRNN) ResetState() {
	r.state = tensor.Zeros(r.state.Shape(), r.state.Backend())
}

// LSTM holds the weights of a four-gate LSTM layer.
//
// Slot sizes follow the Keras gate layout (input, forget, cell, output
// stacked along the last axis): kernel [in, 4u], recurrent kernel [u, 4u],
// bias [4u]. The recurrence runs on the target only; LSTM has no Forward.
type LSTM struct {
	weightSet
	Kernel              *Parameter // [in, 4*units]
	Recurrent           *Parameter // [units, 4*units]
	Bias                *Parameter // [4*units]
	Units               int
	Activation          tensor.Activation
	RecurrentActivation tensor.Activation
}

// NewLSTM creates an LSTM weight holder with zero weights.
func NewLSTM(in, units int, act, recAct tensor.Activation, backend tensor.Backend) *LSTM {
	if in <= 0 || units <= 0 {
		panic(fmt.Sprintf("lstm: invalid size %d -> %d", in, units))
	}
	gates := 4 * units
	kernel := zeroParam(layer.SlotKernel, tensor.Shape{in, gates}, backend)
	recurrent := zeroParam(layer.SlotRecurrent, tensor.Shape{units, gates}, backend)
	bias := zeroParam(layer.SlotBias, tensor.Shape{gates}, backend)

	return &LSTM{
		weightSet:           newWeightSet(kernel, recurrent, bias),
		Kernel:              kernel,
		Recurrent:           recurrent,
		Bias:                bias,
		Units:               units,
		Activation:          act,
		RecurrentActivation: recAct,
	}
}
