package nn

import (
	"fmt"

	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/tensor"
)

// Embedding is a lookup table that maps token ids to dense vectors.
//
// Architecture:
//   - Table: [NumEmbed, EmbedDim] (Keras layout)
//   - Forward: ids [n] -> embeddings [n, EmbedDim]
//
// Ids are carried as float64 values and truncated to integers.
//
// Example:
//
//	embed := nn.NewEmbedding(100, 16, backend)
//	ids, _ := tensor.FromSlice([]float64{3, 7}, tensor.Shape{2}, backend)
//	vectors := embed.Forward(ids) // [2, 16]
type Embedding struct {
	weightSet
	Table    *Parameter // [NumEmbed, EmbedDim]
	NumEmbed int        // Vocabulary size
	EmbedDim int        // Vector size
}

// NewEmbedding creates an Embedding layer with a zero table.
func NewEmbedding(numEmbed, embedDim int, backend tensor.Backend) *Embedding {
	if numEmbed <= 0 || embedDim <= 0 {
		panic(fmt.Sprintf("embedding: invalid size %d x %d", numEmbed, embedDim))
	}
	table := zeroParam(layer.SlotTable, tensor.Shape{numEmbed, embedDim}, backend)
	return &Embedding{
		weightSet: newWeightSet(table),
		Table:     table,
		NumEmbed:  numEmbed,
		EmbedDim:  embedDim,
	}
}

// Forward looks up one row per id.
//
// Panics if an id is outside [0, NumEmbed).
func (e *Embedding) Forward(input *tensor.Tensor) *tensor.Tensor {
	if input.Rank() != 1 {
		panic(fmt.Sprintf("embedding: expected 1D ids, got shape %v", input.Shape()))
	}

	ids := input.Data()
	table := e.Table.Tensor().Data()
	out := tensor.Zeros(tensor.Shape{len(ids), e.EmbedDim}, input.Backend())
	dst := out.Data()

	for i, v := range ids {
		id := int(v)
		if id < 0 || id >= e.NumEmbed {
			panic(fmt.Sprintf("embedding: token id %d out of range [0, %d)", id, e.NumEmbed))
		}
		copy(dst[i*e.EmbedDim:(i+1)*e.EmbedDim], table[id*e.EmbedDim:(id+1)*e.EmbedDim])
	}
	return out
}
