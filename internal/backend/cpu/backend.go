// Package cpu implements the CPU tensor backend.
//
// All arithmetic runs in float64 over dense row-major buffers. Vector and
// matrix kernels delegate to gonum; spatial kernels (convolution, pooling)
// are direct loops so that their boundary behavior matches the execution
// target exactly.
package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/chainnet/internal/parallel"
	"github.com/born-ml/chainnet/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend. Spatial kernels split their output cells
// across all CPUs.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{parallel: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition. Shapes must match exactly.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireSameShape("add", a, b)
	result := tensor.MustRaw(a.Shape())
	floats.AddTo(result.Data(), a.Data(), b.Data())
	return result
}

// Mul performs element-wise multiplication. Shapes must match exactly.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireSameShape("mul", a, b)
	result := tensor.MustRaw(a.Shape())
	floats.MulTo(result.Data(), a.Data(), b.Data())
	return result
}

// Rescale computes x*scale + offset element-wise.
func (cpu *CPUBackend) Rescale(x *tensor.RawTensor, scale, offset float64) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape())
	dst := result.Data()
	floats.ScaleTo(dst, scale, x.Data())
	floats.AddConst(offset, dst)
	return result
}

func requireSameShape(op string, a, b *tensor.RawTensor) {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
}

// Compile-time check that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)
