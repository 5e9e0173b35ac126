package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainnet/internal/backend/cpu"
	"github.com/born-ml/chainnet/internal/codec"
	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/stream"
	"github.com/born-ml/chainnet/internal/tensor"
)

const denseConfig = `{
  "class_name": "Sequential",
  "config": {
    "name": "tiny",
    "layers": [
      {"class_name": "InputLayer", "config": {"batch_input_shape": [null, 4, 4, 1], "dtype": "float32"}},
      {"class_name": "Flatten", "config": {}},
      {"class_name": "Dropout", "config": {"rate": 0.2}},
      {"class_name": "Dense", "config": {"units": 2, "activation": "relu"}}
    ]
  }
}`

func describe(t *testing.T, config string, weights []float32) *Description {
	t.Helper()
	d := &Description{Name: "test", Classes: []string{"yes", "no"}}
	require.NoError(t, json.Unmarshal([]byte(config), &d.LayersConfig))
	d.SetWeights(weights)
	return d
}

func identityWeights() []float32 {
	w := make([]float32, 16*2+2)
	w[32], w[33] = 1, -1
	return w
}

func TestParse_RoundTrip(t *testing.T) {
	d := describe(t, denseConfig, identityWeights())
	d.Vocabulary = []string{"a", "b"}

	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf))

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "test", got.Name)
	assert.Equal(t, []string{"yes", "no"}, got.Classes)
	assert.Equal(t, []string{"a", "b"}, got.Vocabulary)
	assert.Len(t, got.LayersConfig.Config.Layers, 4)

	weights, err := got.Weights()
	require.NoError(t, err)
	assert.Equal(t, identityWeights(), weights)
}

func TestParse_StringEncodedConfig(t *testing.T) {
	encoded, err := json.Marshal(denseConfig)
	require.NoError(t, err)

	doc := `{"model_name": "s", "layers_config": ` + string(encoded) + `, "weight_b64": ""}`
	d, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "tiny", d.LayersConfig.Config.Name)
	assert.Len(t, d.LayersConfig.Config.Layers, 4)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, describe(t, denseConfig, identityWeights()).Write(f))
	require.NoError(t, f.Close())

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", d.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWeights_BadLength(t *testing.T) {
	d := &Description{WeightB64: "AAAA"} // 3 bytes
	_, err := d.Weights()
	assert.ErrorIs(t, err, ErrWeightEncoding)
}

func TestSpecs(t *testing.T) {
	config := `{"class_name": "Sequential", "config": {"layers": [
	  {"class_name": "Rescaling", "config": {"batch_input_shape": [null, 8, 8, 3], "scale": 0.00390625, "offset": 0}},
	  {"class_name": "Conv2D", "config": {"filters": 4, "kernel_size": [3, 3], "strides": [1, 1], "padding": "same", "activation": "relu"}},
	  {"class_name": "MaxPooling2D", "config": {"pool_size": [2, 2], "strides": null, "padding": "valid"}},
	  {"class_name": "Flatten", "config": {}},
	  {"class_name": "Dense", "config": {"units": 10, "activation": {"class_name": "Softmax", "config": {"name": "softmax"}}}}
	]}}`
	d := describe(t, config, nil)

	specs, err := d.Specs()
	require.NoError(t, err)

	want := []layer.Spec{
		layer.Input{InputKind: layer.InputImage, Dims: []int{8, 8, 3}},
		layer.Rescaling{Scale: 0.00390625},
		layer.Conv2D{Filters: 4, Size: [2]int{3, 3}, Stride: [2]int{1, 1}, Padding: layer.PaddingSame, Activation: tensor.ReLU},
		layer.MaxPooling2D{Size: [2]int{2, 2}, Stride: [2]int{2, 2}, Padding: layer.PaddingValid},
		layer.Flatten{},
		layer.Dense{Units: 10, Activation: tensor.Softmax},
	}
	if diff := cmp.Diff(want, specs); diff != "" {
		t.Errorf("specs mismatch (-want +got):\n%s", diff)
	}
}

func TestSpecs_Recurrent(t *testing.T) {
	config := `{"class_name": "Sequential", "config": {"layers": [
	  {"class_name": "Embedding", "config": {"batch_input_shape": [null, null], "input_dim": 20, "output_dim": 4}},
	  {"class_name": "SimpleRNN", "config": {"units": 8}},
	  {"class_name": "LSTM", "config": {"units": 8}},
	  {"class_name": "Dense", "config": {"units": 20, "activation": "linear"}}
	]}}`
	specs, err := describe(t, config, nil).Specs()
	require.NoError(t, err)

	want := []layer.Spec{
		layer.Input{InputKind: layer.InputToken, Dims: []int{0}},
		layer.Embedding{InputDim: 20, OutputDim: 4},
		layer.SimpleRNN{Units: 8, Activation: tensor.Tanh},
		layer.LSTM{Units: 8, Activation: tensor.Tanh, RecurrentActivation: tensor.Sigmoid},
		layer.Dense{Units: 20, Activation: tensor.Linear},
	}
	if diff := cmp.Diff(want, specs); diff != "" {
		t.Errorf("specs mismatch (-want +got):\n%s", diff)
	}
}

func TestSpecs_Errors(t *testing.T) {
	_, err := (&Description{}).Specs()
	assert.ErrorIs(t, err, ErrNoLayers)

	bad := `{"class_name": "Sequential", "config": {"layers": [
	  {"class_name": "Conv2D", "config": {"kernel_size": [1, 2, 3]}}
	]}}`
	_, err = describe(t, bad, nil).Specs()
	assert.Error(t, err)
}

func TestBuild_Forward(t *testing.T) {
	m, err := describe(t, denseConfig, identityWeights()).Build(cpu.New())
	require.NoError(t, err)

	input := make([]float64, 16)
	for i := range input {
		input[i] = float64(i)
	}
	out, err := m.Predict(input)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, out.Data())

	p := m.Classify(out)
	assert.Equal(t, 0, p.Index)
	assert.Equal(t, "yes", p.Label)
	assert.Greater(t, p.Probability, 0.5)

	_, err = m.Predict(input[:3])
	assert.ErrorIs(t, err, ErrInputSize)
}

func TestBuild_CountMismatch(t *testing.T) {
	for _, n := range []int{33, 35} {
		_, err := describe(t, denseConfig, make([]float32, n)).Build(cpu.New())
		var mismatch *stream.CountMismatchError
		require.True(t, errors.As(err, &mismatch), "n=%d", n)
		assert.Equal(t, 34, mismatch.Expected)
		assert.Equal(t, n, mismatch.Got)
	}
}

func TestPlan(t *testing.T) {
	weights := make([]float32, 34)
	for i := range weights {
		weights[i] = float32(i) / 4
	}
	d := describe(t, denseConfig, weights)

	plan, err := d.Plan(fixed.Q32, 10)
	require.NoError(t, err)

	assert.Len(t, plan.Layers, 3) // Dropout is not encoded
	assert.Equal(t, map[layer.Kind]int{layer.KindDense: 34}, plan.Totals)
	require.Len(t, plan.Chunks, 4)

	var all []int64
	for i, c := range plan.Chunks {
		assert.Equal(t, layer.KindDense, c.Kind)
		assert.Equal(t, 0, c.Instance)
		assert.Equal(t, i*10, c.Offset)
		all = append(all, c.Scalars...)
	}
	want, err := fixed.Q32.Encode(weights)
	require.NoError(t, err)
	assert.Equal(t, want, all)

	decoded, err := codec.Decoder{}.DecodeModel(plan.Blobs())
	require.NoError(t, err)
	assert.Equal(t, layer.Dense{Units: 2, Activation: tensor.ReLU}, decoded[2])
}

func TestPlan_Instances(t *testing.T) {
	config := `{"class_name": "Sequential", "config": {"layers": [
	  {"class_name": "InputLayer", "config": {"batch_shape": [null, 3]}},
	  {"class_name": "Dense", "config": {"units": 2}},
	  {"class_name": "Dense", "config": {"units": 1}}
	]}}`
	plan, err := describe(t, config, make([]float32, 3*2+2+2*1+1)).Plan(fixed.Q32, 100)
	require.NoError(t, err)

	require.Len(t, plan.Chunks, 2)
	assert.Equal(t, 0, plan.Chunks[0].Instance)
	assert.Len(t, plan.Chunks[0].Scalars, 8)
	assert.Equal(t, 1, plan.Chunks[1].Instance)
	assert.Len(t, plan.Chunks[1].Scalars, 3)
}

func TestPlan_Rejects(t *testing.T) {
	t.Run("unsupported activation", func(t *testing.T) {
		config := strings.Replace(denseConfig, `"relu"`, `"gelu"`, 1)
		_, err := describe(t, config, identityWeights()).Plan(fixed.Q32, 8)
		var cfg *codec.ConfigurationError
		require.True(t, errors.As(err, &cfg))
		assert.Equal(t, "activation", cfg.Field)
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, err := describe(t, denseConfig, make([]float32, 30)).Plan(fixed.Q32, 8)
		var mismatch *stream.CountMismatchError
		assert.True(t, errors.As(err, &mismatch))
	})

	t.Run("overflow", func(t *testing.T) {
		w := identityWeights()
		w[0] = 100
		_, err := describe(t, denseConfig, w).Plan(fixed.E18, 8)
		assert.ErrorIs(t, err, fixed.ErrOverflow)
	})

	t.Run("chunk length", func(t *testing.T) {
		_, err := describe(t, denseConfig, identityWeights()).Plan(fixed.Q32, 0)
		assert.Error(t, err)
	})
}

func TestValidate_AcceptsLSTM(t *testing.T) {
	config := `{"class_name": "Sequential", "config": {"layers": [
	  {"class_name": "InputLayer", "config": {"batch_input_shape": [null, 2]}},
	  {"class_name": "LSTM", "config": {"units": 1}}
	]}}`
	n := 4 * (2*1 + 1*1 + 1)

	assert.NoError(t, describe(t, config, make([]float32, n)).Validate(cpu.New()))
	assert.Error(t, describe(t, config, make([]float32, n+1)).Validate(cpu.New()))

	_, err := describe(t, config, make([]float32, n)).Build(cpu.New())
	assert.Error(t, err)
}

func TestPredictBatch(t *testing.T) {
	d := describe(t, denseConfig, identityWeights())

	inputs := make([][]float64, 9)
	for i := range inputs {
		inputs[i] = make([]float64, 16)
		inputs[i][0] = float64(i)
	}

	outs, err := PredictBatch(context.Background(), d, cpu.New(), inputs, 3)
	require.NoError(t, err)
	require.Len(t, outs, len(inputs))
	for _, out := range outs {
		assert.Equal(t, []float64{1, 0}, out.Data())
	}

	inputs[4] = []float64{1}
	_, err = PredictBatch(context.Background(), d, cpu.New(), inputs, 2)
	assert.ErrorIs(t, err, ErrInputSize)

	outs, err = PredictBatch(context.Background(), d, cpu.New(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, outs)
}
