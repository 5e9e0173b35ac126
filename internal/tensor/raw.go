package tensor

import "fmt"

// RawTensor is the low-level tensor representation used by backends.
//
// Data is stored as a dense row-major float64 buffer. The engine computes in
// ordinary float64 arithmetic; fixed-point values are converted at the edges
// by the fixed package.
type RawTensor struct {
	data   []float64
	shape  Shape
	stride []int
}

// NewRaw creates a new zero-filled RawTensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]float64, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// MustRaw is NewRaw for shapes already known to be valid.
// Backends use it for output allocation.
func MustRaw(shape Shape) *RawTensor {
	r, err := NewRaw(shape)
	if err != nil {
		panic(err)
	}
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// Data returns the underlying buffer.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []float64 {
	return r.data
}

// Offset returns the flat buffer position of the given indices.
// Panics if the indices do not address an element.
func (r *RawTensor) Offset(indices ...int) int {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(r.shape), len(indices)))
	}

	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, r.shape[i]))
		}
		offset += idx * r.stride[i]
	}
	return offset
}

// Clone creates a deep copy of the RawTensor.
func (r *RawTensor) Clone() *RawTensor {
	return &RawTensor{
		data:   append([]float64(nil), r.data...),
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
	}
}

// WithShape returns a copy of the tensor viewed with a new shape.
// The new shape must have the same number of elements.
func (r *RawTensor) WithShape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot reshape %v (%d elements) to %v (%d elements)",
			r.shape, r.NumElements(), shape, shape.NumElements())
	}

	return &RawTensor{
		data:   append([]float64(nil), r.data...),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}
