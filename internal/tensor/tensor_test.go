package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainnet/internal/backend/cpu"
	"github.com/born-ml/chainnet/internal/tensor"
)

func TestShape_Validate(t *testing.T) {
	tests := []struct {
		name    string
		shape   tensor.Shape
		wantErr bool
	}{
		{"vector", tensor.Shape{3}, false},
		{"image", tensor.Shape{28, 28, 1}, false},
		{"rank 4", tensor.Shape{2, 2, 2, 2}, false},
		{"scalar", tensor.Shape{}, true},
		{"rank 5", tensor.Shape{1, 1, 1, 1, 1}, true},
		{"zero dim", tensor.Shape{3, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShape_Strides(t *testing.T) {
	assert.Equal(t, []int{6, 2, 1}, tensor.Shape{4, 3, 2}.ComputeStrides())
	assert.Equal(t, 24, tensor.Shape{4, 3, 2}.NumElements())
	assert.Equal(t, 2, tensor.Shape{4, 3, 2}.Last())
}

func TestFromSlice(t *testing.T) {
	backend := cpu.New()
	data := []float64{1, 2, 3, 4, 5, 6}

	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, 6.0, x.At(1, 2))

	// The slice is copied.
	data[0] = 100
	assert.Equal(t, 1.0, x.At(0, 0))

	_, err = tensor.FromSlice(data, tensor.Shape{4}, backend)
	assert.Error(t, err)
}

func TestReshapeRowFlatten(t *testing.T) {
	backend := cpu.New()
	x := tensor.Arange(6, backend).Reshape(2, 3)

	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())
	assert.Equal(t, []float64{3, 4, 5}, x.Row(1).Data())
	assert.Equal(t, tensor.Shape{6}, x.Flatten().Shape())

	assert.Panics(t, func() { x.Reshape(4) })
	assert.Panics(t, func() { x.Row(2) })
}

func TestOpsDoNotModifyInputs(t *testing.T) {
	backend := cpu.New()
	x := tensor.Full(tensor.Shape{2}, 2, backend)
	y := tensor.Ones(tensor.Shape{2}, backend)

	assert.Equal(t, []float64{3, 3}, x.Add(y).Data())
	assert.Equal(t, []float64{2, 2}, x.Mul(y).Data())
	assert.Equal(t, []float64{5, 5}, x.Rescale(2, 1).Data())
	assert.Equal(t, []float64{2, 2}, x.Data())
}

func TestArgmax_TiesPickLowest(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float64{1, 5, 5, 2}, tensor.Shape{4}, backend)
	require.NoError(t, err)
	assert.Equal(t, 1, x.Argmax())
}

func TestActivation_String(t *testing.T) {
	assert.Equal(t, "relu", tensor.ReLU.String())
	assert.Equal(t, "softmax", tensor.Softmax.String())
}
