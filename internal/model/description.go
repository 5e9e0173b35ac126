// Package model loads exported Keras model descriptions and turns them into
// the artifacts the rest of chainnet works with: layer specs, a forward
// model, and an upload plan.
//
// A description is a JSON document:
//
//	{
//	  "model_name":    "mnist",
//	  "classes_name":  ["0", "1", ...],
//	  "layers_config": {"class_name": "Sequential", "config": {"layers": [...]}},
//	  "weight_b64":    "<base64 of little-endian float32 weights>",
//	  "vocabulary":    ["a", "b", ...]
//	}
//
// Weights are consumed in layer declaration order, each layer taking its
// slots in Keras order.
package model

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ErrWeightEncoding is returned when weight_b64 is not a whole number of
// float32 values.
var ErrWeightEncoding = errors.New("weight data is not a whole number of float32 values")

// Description is a parsed model description.
type Description struct {
	Name         string       `json:"model_name"`
	Classes      []string     `json:"classes_name,omitempty"`
	LayersConfig LayersConfig `json:"layers_config"`
	WeightB64    string       `json:"weight_b64"`
	Vocabulary   []string     `json:"vocabulary,omitempty"`
}

// LayersConfig is the Keras model config.
type LayersConfig struct {
	ClassName string `json:"class_name"`
	Config    struct {
		Name   string        `json:"name,omitempty"`
		Layers []LayerConfig `json:"layers"`
	} `json:"config"`
}

// UnmarshalJSON accepts the config either inline or as a JSON-encoded
// string, which is how model.to_json() output is often embedded.
func (c *LayersConfig) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	type plain LayersConfig
	return json.Unmarshal(data, (*plain)(c))
}

// LayerConfig is one entry of layers_config.config.layers.
type LayerConfig struct {
	ClassName string          `json:"class_name"`
	Config    json.RawMessage `json:"config"`
}

// Load reads a description from a file.
func Load(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model description: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a description from r.
func Parse(r io.Reader) (*Description, error) {
	var d Description
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to parse model description: %w", err)
	}
	return &d, nil
}

// Weights decodes weight_b64.
func (d *Description) Weights() ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(d.WeightB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode weights: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrWeightEncoding, len(raw))
	}

	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// SetWeights encodes weights into weight_b64.
func (d *Description) SetWeights(weights []float32) {
	raw := make([]byte, 0, 4*len(weights))
	for _, w := range weights {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(w))
	}
	d.WeightB64 = base64.StdEncoding.EncodeToString(raw)
}

// Write encodes the description as JSON.
func (d *Description) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func widen(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
