package tensor

// Activation identifies an element-wise activation function.
type Activation int

// Supported activations. GELU and Softmax are engine-only: the layer codec
// has no tag for them.
const (
	ActivationUnknown Activation = iota
	Linear
	ReLU
	LeakyReLU
	Sigmoid
	Tanh
	GELU
	Softmax
)

// LeakySlope is the negative-side slope of LeakyReLU.
const LeakySlope = 0.2

// String returns the activation's canonical name.
func (a Activation) String() string {
	switch a {
	case Linear:
		return "linear"
	case ReLU:
		return "relu"
	case LeakyReLU:
		return "leakyrelu"
	case Sigmoid:
		return "sigmoid"
	case Tanh:
		return "tanh"
	case GELU:
		return "gelu"
	case Softmax:
		return "softmax"
	default:
		return "unknown"
	}
}
