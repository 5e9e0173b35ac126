package tensor

import "fmt"

// Tensor is an immutable-by-convention N-dimensional array (rank 1..4)
// bound to a compute backend.
//
// Operations never modify their receiver; they return newly allocated
// tensors. The only in-place writes happen through Set and Data, which
// weight loading uses while a layer is being filled.
//
// Example:
//
//	backend := cpu.New()
//	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
//	y := x.Add(x)
type Tensor struct {
	raw     *RawTensor
	backend Backend
}

// New creates a Tensor from a RawTensor and backend.
func New(raw *RawTensor, b Backend) *Tensor {
	return &Tensor{
		raw:     raw,
		backend: b,
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape, b Backend) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	copy(raw.data, data)

	return New(raw, b), nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.raw.Shape()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.raw.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
// Used by backend implementations for low-level operations.
func (t *Tensor) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor) Backend() Backend {
	return t.backend
}

// Data returns the tensor's flat row-major data.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.raw.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float64 {
	return t.raw.data[t.raw.Offset(indices...)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float64, indices ...int) {
	t.raw.data[t.raw.Offset(indices...)] = value
}

// Equal reports whether two tensors have the same shape and contents.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.Shape().Equal(other.Shape()) {
		return false
	}
	for i, v := range t.raw.data {
		if other.raw.data[i] != v {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v on %s", t.raw.Shape(), t.backend.Name())
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	return New(t.raw.Clone(), t.backend)
}
