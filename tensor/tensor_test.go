package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainnet/backend/cpu"
	"github.com/born-ml/chainnet/tensor"
)

func TestPublicAPI(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float64{1, -2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	w := tensor.Ones(tensor.Shape{3, 2}, backend)
	y := x.MatMul(w).Activate(tensor.ReLU)
	assert.Equal(t, []float64{2, 2}, y.Data())

	assert.Equal(t, []float64{0, 1, 2, 3}, tensor.Arange(4, backend).Data())
	assert.Equal(t, []float64{7, 7}, tensor.Full(tensor.Shape{2}, 7, backend).Data())
	assert.Equal(t, "CPU", backend.Name())
}
