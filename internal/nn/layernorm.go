package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/chainnet/internal/tensor"
)

// DefaultLayerNormEpsilon is the variance floor used by NewLayerNorm.
const DefaultLayerNormEpsilon = 1e-5

// LayerNorm normalizes over the last dimension and scales per feature.
//
// Formula: Y = gamma * (X - mean(X)) / sqrt(var(X) + eps)
//
// There is no learned shift in this variant. Variance is the population
// variance.
type LayerNorm struct {
	weightSet
	Gamma   *Parameter // [features]
	Epsilon float64
}

// NewLayerNorm creates a LayerNorm with gamma initialized to ones. Streaming
// weights into it overwrites gamma.
func NewLayerNorm(features int, epsilon float64, backend tensor.Backend) *LayerNorm {
	if features <= 0 {
		panic(fmt.Sprintf("layernorm: invalid feature count %d", features))
	}
	gamma := NewParameter("gamma", tensor.Ones(tensor.Shape{features}, backend))
	return &LayerNorm{
		weightSet: newWeightSet(gamma),
		Gamma:     gamma,
		Epsilon:   epsilon,
	}
}

// Forward normalizes every row along the last axis.
func (ln *LayerNorm) Forward(input *tensor.Tensor) *tensor.Tensor {
	n := ln.Gamma.Tensor().NumElements()
	if input.Shape().Last() != n {
		panic(fmt.Sprintf("layernorm: expected last dimension %d, got shape %v", n, input.Shape()))
	}

	out := input.Clone()
	data := out.Data()
	gamma := ln.Gamma.Tensor().Data()
	for i := 0; i < len(data); i += n {
		row := data[i : i+n]
		mean, variance := stat.PopMeanVariance(row, nil)
		inv := 1 / math.Sqrt(variance+ln.Epsilon)
		for j := range row {
			row[j] = (row[j] - mean) * inv * gamma[j]
		}
	}
	return out
}
