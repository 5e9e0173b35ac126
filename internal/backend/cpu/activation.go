package cpu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/chainnet/internal/tensor"
)

// Abramowitz–Stegun 7.1.26 coefficients. The execution target has no erf,
// so GELU uses this approximation on both sides.
const (
	erfP  = 0.3275911
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
)

// Activate applies an activation function element-wise.
// Softmax is not element-wise and is routed to the global Softmax.
func (cpu *CPUBackend) Activate(x *tensor.RawTensor, act tensor.Activation) *tensor.RawTensor {
	if act == tensor.Softmax {
		return cpu.Softmax(x)
	}

	fn := activationFunc(act)
	result := tensor.MustRaw(x.Shape())
	dst := result.Data()
	for i, v := range x.Data() {
		dst[i] = fn(v)
	}
	return result
}

// Softmax computes exp(x_i) / sum(exp(x_j)) with j ranging over every
// element of the tensor, not over a single axis.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape())
	dst := result.Data()

	// Subtracting the max keeps exp in range and cancels in the ratio.
	maxVal := floats.Max(x.Data())
	for i, v := range x.Data() {
		dst[i] = math.Exp(v - maxVal)
	}
	floats.Scale(1/floats.Sum(dst), dst)
	return result
}

func activationFunc(act tensor.Activation) func(float64) float64 {
	switch act {
	case tensor.Linear:
		return func(v float64) float64 { return v }
	case tensor.ReLU:
		return func(v float64) float64 { return math.Max(v, 0) }
	case tensor.LeakyReLU:
		return func(v float64) float64 {
			if v > 0 {
				return v
			}
			return tensor.LeakySlope * v
		}
	case tensor.Sigmoid:
		return func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
	case tensor.Tanh:
		return math.Tanh
	case tensor.GELU:
		return func(v float64) float64 { return v / 2 * (1 + Erf(v/math.Sqrt2)) }
	default:
		panic(fmt.Sprintf("activate: unsupported activation %s", act))
	}
}

// Erf approximates the error function with the five-coefficient
// Abramowitz–Stegun rational/exponential form (|error| < 1.5e-7).
func Erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1
		x = -x
	}

	t := 1 / (1 + erfP*x)
	poly := t * (erfA1 + t*(erfA2+t*(erfA3+t*(erfA4+t*erfA5))))
	return sign * (1 - poly*math.Exp(-x*x))
}
