package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainnet/backend/cpu"
	"github.com/born-ml/chainnet/nn"
	"github.com/born-ml/chainnet/tensor"
)

func TestSequential_Fill(t *testing.T) {
	backend := cpu.New()
	model := nn.NewSequential(
		nn.NewFlatten(),
		nn.NewDense(4, 2, tensor.Linear, backend),
	)

	weights := []float64{
		1, 0,
		0, 1,
		1, 0,
		0, 1,
		0.5, -0.5,
	}
	require.NoError(t, nn.Fill(model.Loaders(), weights))

	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{4.5, 5.5}, model.Forward(x).Data(), 1e-12)

	assert.Error(t, nn.Fill(model.Loaders(), weights[:3]))
}

func TestComposites(t *testing.T) {
	backend := cpu.New()

	mlp := nn.NewMLP(2, 3, 2, backend)
	assert.Equal(t, 2*3+3+3*2+2, mlp.WeightCount())

	lstm := nn.NewLSTM(2, 1, tensor.Tanh, tensor.Sigmoid, backend)
	assert.Equal(t, 2*4+1*4+4, lstm.WeightCount())

	x, err := tensor.FromSlice([]float64{0}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0}, nn.NewGELU().Forward(x).Data(), 1e-12)

	assert.Same(t, x, nn.NewTokenInput([]int{10}).Forward(x))
}
