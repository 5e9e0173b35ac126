package tensor

// Backend defines the interface that compute backends implement.
// Backends handle the actual computation for tensor operations and
// allocate a new RawTensor for every result.
//
// Implementations:
//   - CPU: Pure Go over float64 buffers (internal/backend/cpu)
type Backend interface {
	// Element-wise binary operations. Shapes must match exactly.
	Add(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Rescale computes x*scale + offset element-wise.
	Rescale(x *RawTensor, scale, offset float64) *RawTensor

	// MatMul supports 1D(n) x 2D(n,m) -> 1D(m) and 2D(n,k) x 2D(k,m) -> 2D(n,m).
	MatMul(a, b *RawTensor) *RawTensor

	// Conv2D convolves input [W,H,D] with filter [Fw,Fh,D,K].
	// Out-of-bounds source cells contribute zero.
	Conv2D(input, filter *RawTensor, stride, pad, out [2]int) *RawTensor

	// MaxPool2D pools input [W,H,D] over size windows.
	// Out-of-bounds cells contribute zero to the maximum.
	MaxPool2D(input *RawTensor, size, stride, pad, out [2]int) *RawTensor

	// Softmax normalizes over every element of the tensor at once.
	Softmax(x *RawTensor) *RawTensor

	// Activate applies an activation function element-wise.
	Activate(x *RawTensor, act Activation) *RawTensor

	// Metadata
	Name() string
}
