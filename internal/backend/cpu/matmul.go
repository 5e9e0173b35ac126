package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/chainnet/internal/tensor"
)

// MatMul performs matrix multiplication.
//
// Supported forms:
//   - 1D (n) @ 2D (n, m) -> 1D (m)
//   - 2D (n, k) @ 2D (k, m) -> 2D (n, m)
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: right operand must be 2D, got %dD", len(bShape)))
	}
	k, m := bShape[0], bShape[1]
	bm := mat.NewDense(k, m, b.Data())

	switch len(aShape) {
	case 1:
		if aShape[0] != k {
			panic(fmt.Sprintf("matmul: shape mismatch [%d] @ [%d,%d]", aShape[0], k, m))
		}
		result := tensor.MustRaw(tensor.Shape{m})
		out := mat.NewVecDense(m, result.Data())
		out.MulVec(bm.T(), mat.NewVecDense(k, a.Data()))
		return result

	case 2:
		n := aShape[0]
		if aShape[1] != k {
			panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", n, aShape[1], k, m))
		}
		result := tensor.MustRaw(tensor.Shape{n, m})
		out := mat.NewDense(n, m, result.Data())
		out.Mul(mat.NewDense(n, k, a.Data()), bm)
		return result

	default:
		panic(fmt.Sprintf("matmul: left operand must be 1D or 2D, got %dD", len(aShape)))
	}
}
