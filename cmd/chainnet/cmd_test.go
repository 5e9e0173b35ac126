package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainnet/internal/bundle"
	"github.com/born-ml/chainnet/internal/model"
)

const classifierConfig = `{"class_name": "Sequential", "config": {"name": "clf", "layers": [
  {"class_name": "InputLayer", "config": {"batch_input_shape": [null, 4]}},
  {"class_name": "Dense", "config": {"units": 3, "activation": "relu"}},
  {"class_name": "Dense", "config": {"units": 2, "activation": "linear"}}
]}}`

const textConfig = `{"class_name": "Sequential", "config": {"name": "txt", "layers": [
  {"class_name": "Embedding", "config": {"batch_input_shape": [null, null], "input_dim": 3, "output_dim": 2}},
  {"class_name": "SimpleRNN", "config": {"units": 2, "activation": "linear"}},
  {"class_name": "Dense", "config": {"units": 3, "activation": "linear"}}
]}}`

func writeDescription(t *testing.T, config string, weights []float32, vocab []string) string {
	t.Helper()
	d := &model.Description{Name: "test", Classes: []string{"left", "right"}, Vocabulary: vocab}
	require.NoError(t, json.Unmarshal([]byte(config), &d.LayersConfig))
	d.SetWeights(weights)

	path := filepath.Join(t.TempDir(), "model.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, d.Write(f))
	require.NoError(t, f.Close())
	return path
}

func classifierWeights() []float32 {
	w := make([]float32, 0, 4*3+3+3*2+2)
	// Dense 4->3: input i feeds unit i%3.
	for i := range 4 {
		for j := range 3 {
			if i%3 == j {
				w = append(w, 0.5)
			} else {
				w = append(w, 0)
			}
		}
	}
	w = append(w, 0, 0, 0)
	// Dense 3->2: right = sum, left = -sum.
	w = append(w, -1, 1, -1, 1, -1, 1)
	return append(w, 0, 0)
}

// textWeights make the model predict (id + 1) mod 3.
func textWeights() []float32 {
	w := []float32{
		// Embedding 3x2: one-hot-ish codes.
		1, 0,
		0, 1,
		-1, -1,
		// SimpleRNN kernel 2x2 identity, recurrent 2x2 zero, bias 0.
		1, 0, 0, 1,
		0, 0, 0, 0,
		0, 0,
		// Dense 2x3 and bias.
		-1, 1, 0,
		0, -1, 1,
		0, 0, 0,
	}
	return w
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CHAINNET_DEBUG", "")
	t.Setenv("CHAINNET_MAX_CHUNK", "")
	t.Setenv("CHAINNET_SCALE", "")

	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, bundle.ChainnetVersion)
}

func TestInspect(t *testing.T) {
	path := writeDescription(t, classifierConfig, classifierWeights(), nil)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "InputLayer")
	assert.Contains(t, out, "Dense")
	assert.Contains(t, out, "15") // 4*3+3
	assert.NotContains(t, out, "not deployable")
}

func TestEncodeAndInspectBundle(t *testing.T) {
	path := writeDescription(t, classifierConfig, classifierWeights(), nil)
	cnet := filepath.Join(t.TempDir(), "clf.cnet")

	out, err := run(t, "encode", path, "-o", cnet, "--max-chunk", "4")
	require.NoError(t, err)
	assert.Equal(t, cnet, strings.TrimSpace(out))

	b, err := bundle.ReadFile(cnet)
	require.NoError(t, err)
	assert.Equal(t, 4, b.Header.MaxChunkLen)
	assert.Len(t, b.Layers, 3)

	out, err = run(t, "inspect", cnet)
	require.NoError(t, err)
	assert.Contains(t, out, b.Header.BundleID)
	assert.Contains(t, out, "q32")
}

func TestEncode_DefaultOutput(t *testing.T) {
	path := writeDescription(t, classifierConfig, classifierWeights(), nil)

	out, err := run(t, "encode", path)
	require.NoError(t, err)
	want := strings.TrimSuffix(path, ".json") + ".cnet"
	assert.Equal(t, want, strings.TrimSpace(out))
	assert.FileExists(t, want)
}

func TestPlan(t *testing.T) {
	path := writeDescription(t, classifierConfig, classifierWeights(), nil)

	out, err := run(t, "plan", path, "--max-chunk", "8", "--scale", "e18")
	require.NoError(t, err)
	// 15 + 8 weights in chunks of at most 8: 8, 7 then 8.
	assert.Contains(t, out, "3 layers, 3 chunks, scale e18")

	_, err = run(t, "plan", path, "--scale", "q7")
	assert.Error(t, err)
}

func TestPlan_WeightCountMismatch(t *testing.T) {
	path := writeDescription(t, classifierConfig, classifierWeights()[:10], nil)
	_, err := run(t, "plan", path)
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	path := writeDescription(t, classifierConfig, classifierWeights(), nil)

	out, err := run(t, "verify", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ok: 3 layers"), out)

	cnet := filepath.Join(t.TempDir(), "clf.cnet")
	_, err = run(t, "encode", path, "-o", cnet)
	require.NoError(t, err)

	input := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(input, []byte(`[[1, 2, 3, 4], [0.5, -1, 0, 2]]`), 0o600))
	_, err = run(t, "verify", path, cnet, "--input", input)
	require.NoError(t, err)
}

func TestPredict(t *testing.T) {
	path := writeDescription(t, classifierConfig, classifierWeights(), nil)
	input := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(input, []byte(`[[1, 1, 1, 1], [0, 0, 0, 0]]`), 0o600))

	out, err := run(t, "predict", path, input, "--workers", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "right")
	// All-zero input ties; argmax keeps the first class.
	assert.Contains(t, lines[2], "left")
	assert.Contains(t, lines[2], "0.5000")
}

func TestPredict_BadInput(t *testing.T) {
	path := writeDescription(t, classifierConfig, classifierWeights(), nil)
	input := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(input, []byte(`[1, 2]`), 0o600))

	_, err := run(t, "predict", path, input)
	assert.ErrorIs(t, err, model.ErrInputSize)

	require.NoError(t, os.WriteFile(input, []byte(`[]`), 0o600))
	_, err = run(t, "predict", path, input)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestGenerate(t *testing.T) {
	path := writeDescription(t, textConfig, textWeights(), []string{"a", "b", "c"})

	out, err := run(t, "generate", path, "a", "-n", "4", "--temperature", "0")
	require.NoError(t, err)
	assert.Equal(t, "abcab", strings.TrimSpace(out))

	noVocab := writeDescription(t, textConfig, textWeights(), nil)
	_, err = run(t, "generate", noVocab, "a")
	assert.ErrorIs(t, err, ErrNoVocabulary)
}
