package tensor

import "fmt"

// Add performs element-wise addition. Shapes must match exactly.
func (t *Tensor) Add(other *Tensor) *Tensor {
	return New(t.backend.Add(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication. Shapes must match exactly.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return New(t.backend.Mul(t.raw, other.raw), t.backend)
}

// Rescale computes t*scale + offset element-wise.
func (t *Tensor) Rescale(scale, offset float64) *Tensor {
	return New(t.backend.Rescale(t.raw, scale, offset), t.backend)
}

// MatMul performs matrix multiplication.
//
// Requirements:
//   - 1D (n) @ 2D (n, m) → 1D (m)
//   - 2D (n, k) @ 2D (k, m) → 2D (n, m)
//
// No broadcasting is performed.
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	return New(t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Conv2D convolves a [W,H,D] tensor with a [Fw,Fh,D,K] filter.
//
// pad is the left/top padding and out the output spatial size, both
// normally produced by layer.ConvSize.
func (t *Tensor) Conv2D(filter *Tensor, stride, pad, out [2]int) *Tensor {
	return New(t.backend.Conv2D(t.raw, filter.raw, stride, pad, out), t.backend)
}

// MaxPool2D max-pools a [W,H,D] tensor. Out-of-bounds window cells count as 0.
func (t *Tensor) MaxPool2D(size, stride, pad, out [2]int) *Tensor {
	return New(t.backend.MaxPool2D(t.raw, size, stride, pad, out), t.backend)
}

// Softmax computes a single softmax over all elements of the tensor,
// regardless of rank.
func (t *Tensor) Softmax() *Tensor {
	return New(t.backend.Softmax(t.raw), t.backend)
}

// Activate applies an activation function element-wise.
func (t *Tensor) Activate(act Activation) *Tensor {
	return New(t.backend.Activate(t.raw, act), t.backend)
}

// Reshape returns a copy of the tensor with a different shape.
// The new shape must have the same number of elements.
func (t *Tensor) Reshape(newShape ...int) *Tensor {
	raw, err := t.raw.WithShape(Shape(newShape))
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return New(raw, t.backend)
}

// Flatten collapses the tensor to rank 1 in row-major order.
func (t *Tensor) Flatten() *Tensor {
	return t.Reshape(t.NumElements())
}

// Row returns a copy of row i of a rank-2 tensor as a rank-1 tensor.
func (t *Tensor) Row(i int) *Tensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("row: expected 2D tensor, got shape %v", shape))
	}
	if i < 0 || i >= shape[0] {
		panic(fmt.Sprintf("row: index %d out of bounds for %d rows", i, shape[0]))
	}

	cols := shape[1]
	row := Zeros(Shape{cols}, t.backend)
	copy(row.raw.data, t.raw.data[i*cols:(i+1)*cols])
	return row
}

// Argmax returns the flat index of the largest element.
// Ties resolve to the lowest index.
func (t *Tensor) Argmax() int {
	best := 0
	for i, v := range t.raw.data {
		if v > t.raw.data[best] {
			best = i
		}
	}
	return best
}
