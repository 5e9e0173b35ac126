package layer

import (
	"strings"

	"github.com/born-ml/chainnet/internal/tensor"
)

// Sentinel is the encoded value of an unrecognized activation or padding
// name. Encoding never fails on names; callers detect the sentinel and
// reject the model.
const Sentinel = -1

// Activation tags on the wire.
const (
	TagLeakyReLU = 0
	TagLinear    = 1
	TagReLU      = 2
	TagSigmoid   = 3
	TagTanh      = 4
)

// ParseActivation maps a Keras activation name to an engine activation.
// Unrecognized names yield tensor.ActivationUnknown.
func ParseActivation(name string) tensor.Activation {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "") {
	case "leakyrelu":
		return tensor.LeakyReLU
	case "linear", "":
		return tensor.Linear
	case "relu":
		return tensor.ReLU
	case "sigmoid":
		return tensor.Sigmoid
	case "tanh":
		return tensor.Tanh
	case "gelu":
		return tensor.GELU
	case "softmax":
		return tensor.Softmax
	default:
		return tensor.ActivationUnknown
	}
}

// ActivationTag returns the wire tag of an activation, or Sentinel for
// activations the target cannot execute (GELU, Softmax, unknown).
func ActivationTag(a tensor.Activation) int64 {
	switch a {
	case tensor.LeakyReLU:
		return TagLeakyReLU
	case tensor.Linear:
		return TagLinear
	case tensor.ReLU:
		return TagReLU
	case tensor.Sigmoid:
		return TagSigmoid
	case tensor.Tanh:
		return TagTanh
	default:
		return Sentinel
	}
}

// ActivationFromTag inverts ActivationTag.
func ActivationFromTag(tag int64) tensor.Activation {
	switch tag {
	case TagLeakyReLU:
		return tensor.LeakyReLU
	case TagLinear:
		return tensor.Linear
	case TagReLU:
		return tensor.ReLU
	case TagSigmoid:
		return tensor.Sigmoid
	case TagTanh:
		return tensor.Tanh
	default:
		return tensor.ActivationUnknown
	}
}

// Padding selects the convolution/pooling border rule.
type Padding int

// Padding modes. The values double as wire tags.
const (
	PaddingUnknown Padding = Sentinel
	PaddingValid   Padding = 0
	PaddingSame    Padding = 1
)

// ParsePadding maps a Keras padding name to a Padding.
func ParsePadding(name string) Padding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "valid", "":
		return PaddingValid
	case "same":
		return PaddingSame
	default:
		return PaddingUnknown
	}
}

// Tag returns the wire tag of the padding mode.
func (p Padding) Tag() int64 {
	switch p {
	case PaddingValid, PaddingSame:
		return int64(p)
	default:
		return Sentinel
	}
}

// String returns the Keras name of the padding mode.
func (p Padding) String() string {
	switch p {
	case PaddingValid:
		return "valid"
	case PaddingSame:
		return "same"
	default:
		return "unknown"
	}
}
