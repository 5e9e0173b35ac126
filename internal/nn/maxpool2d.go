package nn

import (
	"fmt"

	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/tensor"
)

// MaxPooling2D is a 2D max pooling layer with no weights.
//
// Input shape:  [W, H, D]
// Output shape: [outW, outH, D]
//
// Window cells outside the input count as 0, so with "same" padding a
// border window holding only negative values pools to 0.
type MaxPooling2D struct {
	size    [2]int
	stride  [2]int
	padding layer.Padding
}

// NewMaxPooling2D creates a new 2D max pooling layer.
func NewMaxPooling2D(size, stride [2]int, padding layer.Padding) *MaxPooling2D {
	if size[0] <= 0 || size[1] <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid pool size %v", size))
	}
	if stride[0] <= 0 || stride[1] <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %v", stride))
	}
	return &MaxPooling2D{size: size, stride: stride, padding: padding}
}

// Forward performs the pooling.
func (m *MaxPooling2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("maxpool2d: expected 3D input [W,H,D], got shape %v", shape))
	}

	out, pad := layer.ConvSize([2]int{shape[0], shape[1]}, m.size, m.stride, m.padding)
	return input.MaxPool2D(m.size, m.stride, pad, out)
}
