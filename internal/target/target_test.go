package target

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainnet/internal/backend/cpu"
	"github.com/born-ml/chainnet/internal/codec"
	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/nn"
	"github.com/born-ml/chainnet/internal/stream"
	"github.com/born-ml/chainnet/internal/tensor"
)

func mnistSpecs() []layer.Spec {
	return []layer.Spec{
		layer.Input{InputKind: layer.InputImage, Dims: []int{6, 6, 1}},
		layer.Rescaling{Scale: 0.5},
		layer.Conv2D{Filters: 2, Size: [2]int{3, 3}, Stride: [2]int{1, 1}, Padding: layer.PaddingSame, Activation: tensor.ReLU},
		layer.MaxPooling2D{Size: [2]int{2, 2}, Stride: [2]int{2, 2}, Padding: layer.PaddingValid},
		layer.Flatten{},
		layer.Dense{Units: 4, Activation: tensor.Tanh},
		layer.Dense{Units: 3, Activation: tensor.Linear},
	}
}

// plan encodes specs and streams weights (exact at q32) in chunks of maxLen.
func plan(t *testing.T, specs []layer.Spec, maxLen int) ([][]byte, []stream.Chunk, []float64) {
	t.Helper()
	layers, err := codec.Encoder{Scale: fixed.Q32}.EncodeModel(specs)
	require.NoError(t, err)

	s := stream.NewStreamer()
	instances := map[layer.Kind]int{}
	var all []float64
	var blobs [][]byte
	for _, l := range layers {
		blobs = append(blobs, l.Blob)
		if l.Weights == 0 {
			continue
		}
		scalars := make([]int64, l.Weights)
		for i := range scalars {
			v := float64((len(all)+i)%7-3) / 8
			all = append(all, v)
			scalars[i], err = fixed.Q32.ToFixed(v)
			require.NoError(t, err)
		}
		require.NoError(t, s.Queue(l.Kind, instances[l.Kind], l.Slots, scalars))
		instances[l.Kind]++
	}
	return blobs, s.Drain(maxLen), all
}

func TestDeploy_MatchesEngine(t *testing.T) {
	specs := mnistSpecs()
	blobs, chunks, weights := plan(t, specs, 5)

	tgt := New(fixed.Q32)
	require.NoError(t, tgt.Deploy(blobs, chunks))
	assert.True(t, tgt.Complete())

	onTarget, err := tgt.Model(cpu.New())
	require.NoError(t, err)

	engine, loaders, err := nn.Build(specs, cpu.New())
	require.NoError(t, err)
	require.NoError(t, nn.Fill(loaders, weights))

	input := make([]float64, 36)
	for i := range input {
		input[i] = float64(i%5) - 1.5
	}
	x, err := tensor.FromSlice(input, tensor.Shape{36}, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, engine.Forward(x).Data(), onTarget.Forward(x).Data())
}

func TestUpload_Resubmission(t *testing.T) {
	blobs, chunks, _ := plan(t, mnistSpecs(), 4)

	tgt := New(fixed.Q32)
	for _, b := range blobs {
		require.NoError(t, tgt.Declare(b))
	}

	require.NoError(t, tgt.Upload(chunks[0]))
	assert.ErrorIs(t, tgt.Upload(chunks[0]), stream.ErrAlreadyApplied)
	assert.ErrorIs(t, tgt.Upload(chunks[2]), stream.ErrGap)

	filled, total, err := tgt.Progress(chunks[0].Kind, chunks[0].Instance)
	require.NoError(t, err)
	assert.Equal(t, 4, filled)
	assert.Equal(t, layer.KindDense, chunks[0].Kind)
	assert.Equal(t, 3*3*2*4+4, total)

	for _, c := range chunks[1:] {
		require.NoError(t, tgt.Upload(c))
	}
	assert.True(t, tgt.Complete())
}

func TestUpload_Errors(t *testing.T) {
	tgt := New(fixed.Q32)
	err := tgt.Upload(stream.Chunk{Kind: layer.KindDense, Instance: 0})
	assert.ErrorIs(t, err, ErrUnknownInstance)

	_, _, err = tgt.Progress(layer.KindDense, 3)
	assert.ErrorIs(t, err, ErrUnknownInstance)

	blobs, _, _ := plan(t, []layer.Spec{layer.Input{Dims: []int{1}}, layer.Dense{Units: 1}}, 8)
	for _, b := range blobs {
		require.NoError(t, tgt.Declare(b))
	}
	err = tgt.Upload(stream.Chunk{Kind: layer.KindDense, Scalars: []int64{1, 2, 3}})
	var overflow *stream.SlotOverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 1, overflow.Dropped)
	assert.True(t, tgt.Complete())
}

func TestModel_Incomplete(t *testing.T) {
	blobs, _, _ := plan(t, mnistSpecs(), 8)
	tgt := New(fixed.Q32)
	for _, b := range blobs {
		require.NoError(t, tgt.Declare(b))
	}
	assert.False(t, tgt.Complete())

	_, err := tgt.Model(cpu.New())
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDeclare_RejectsSentinel(t *testing.T) {
	tgt := New(fixed.Q32)
	in, ctx, err := codec.Encoder{}.EncodeLayer(layer.Input{Dims: []int{2}}, layer.ShapeContext{})
	require.NoError(t, err)
	require.NoError(t, tgt.Declare(in.Blob))

	dense, _, err := codec.Encoder{}.EncodeLayer(layer.Dense{Units: 1, Activation: tensor.GELU}, ctx)
	require.NoError(t, err)

	var cfg *codec.ConfigurationError
	assert.True(t, errors.As(tgt.Declare(dense.Blob), &cfg))
	assert.Len(t, tgt.Specs(), 1)
}

func TestCheckScale(t *testing.T) {
	tgt := New(fixed.Q32)
	assert.NoError(t, tgt.CheckScale(fixed.Q32))
	assert.ErrorIs(t, tgt.CheckScale(fixed.E18), ErrScaleMismatch)
}
