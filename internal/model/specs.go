package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/born-ml/chainnet/internal/layer"
)

// ErrNoLayers is returned for a description without layers.
var ErrNoLayers = errors.New("model has no layers")

// keras mirrors the Keras layer config fields chainnet reads. Fields absent
// from a layer's config stay zero.
type keras struct {
	BatchInputShape     []*int  `json:"batch_input_shape"`
	BatchShape          []*int  `json:"batch_shape"`
	Units               int     `json:"units"`
	Activation          name    `json:"activation"`
	RecurrentActivation name    `json:"recurrent_activation"`
	Filters             int     `json:"filters"`
	KernelSize          pair    `json:"kernel_size"`
	PoolSize            pair    `json:"pool_size"`
	Strides             pair    `json:"strides"`
	Padding             name    `json:"padding"`
	Scale               float64 `json:"scale"`
	Offset              float64 `json:"offset"`
	InputDim            int     `json:"input_dim"`
	OutputDim           int     `json:"output_dim"`
	Name                string  `json:"name"`
}

// name is a Keras name field. Keras 3 may serialize activations as
// {"class_name": ..., "config": {"name": ...}} instead of a bare string.
type name string

func (n *name) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = name(s)
		return nil
	}
	var obj struct {
		ClassName string `json:"class_name"`
		Config    struct {
			Name string `json:"name"`
		} `json:"config"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Config.Name != "" {
		*n = name(obj.Config.Name)
	} else {
		*n = name(obj.ClassName)
	}
	return nil
}

// pair is a Keras 2-tuple that may also be written as a single int or null.
type pair struct {
	v   [2]int
	set bool
}

func (p *pair) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var one int
	if err := json.Unmarshal(data, &one); err == nil {
		p.v, p.set = [2]int{one, one}, true
		return nil
	}
	var two []int
	if err := json.Unmarshal(data, &two); err != nil {
		return err
	}
	switch len(two) {
	case 1:
		p.v = [2]int{two[0], two[0]}
	case 2:
		p.v = [2]int{two[0], two[1]}
	default:
		return fmt.Errorf("expected 1 or 2 values, got %d", len(two))
	}
	p.set = true
	return nil
}

func (p pair) or(def [2]int) [2]int {
	if p.set {
		return p.v
	}
	return def
}

// inputDims returns the batch shape without its batch dimension. Unknown
// sizes become 0.
func (k keras) inputDims() ([]int, bool) {
	shape := k.BatchInputShape
	if shape == nil {
		shape = k.BatchShape
	}
	if len(shape) < 2 {
		return nil, false
	}
	dims := make([]int, len(shape)-1)
	for i, d := range shape[1:] {
		if d != nil {
			dims[i] = *d
		}
	}
	return dims, true
}

// Specs maps the Keras layer configs to layer specs in declaration order.
// Unknown class names become layer.PassThrough. When the first layer is not
// an InputLayer but declares a batch input shape, an Input spec is
// synthesized in front of it.
func (d *Description) Specs() ([]layer.Spec, error) {
	configs := d.LayersConfig.Config.Layers
	if len(configs) == 0 {
		return nil, ErrNoLayers
	}

	parsed := make([]keras, len(configs))
	for i, lc := range configs {
		if len(lc.Config) == 0 {
			continue
		}
		if err := json.Unmarshal(lc.Config, &parsed[i]); err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, lc.ClassName, err)
		}
	}

	specs := make([]layer.Spec, 0, len(configs)+1)
	if configs[0].ClassName != layer.KindInput.String() {
		if dims, ok := parsed[0].inputDims(); ok {
			specs = append(specs, layer.Input{InputKind: inputKind(configs, dims), Dims: dims})
		}
	}

	for i, lc := range configs {
		spec, err := toSpec(lc.ClassName, parsed[i], configs)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, lc.ClassName, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func toSpec(className string, k keras, configs []LayerConfig) (layer.Spec, error) {
	kind, ok := layer.ParseKind(className)
	if !ok {
		return layer.PassThrough{ClassName: className}, nil
	}

	switch kind {
	case layer.KindInput:
		dims, ok := k.inputDims()
		if !ok {
			return nil, errors.New("input layer without batch shape")
		}
		return layer.Input{InputKind: inputKind(configs, dims), Dims: dims}, nil

	case layer.KindDense:
		return layer.Dense{
			Units:      k.Units,
			Activation: layer.ParseActivation(string(k.Activation)),
		}, nil

	case layer.KindFlatten:
		return layer.Flatten{}, nil

	case layer.KindRescaling:
		return layer.Rescaling{Scale: k.Scale, Offset: k.Offset}, nil

	case layer.KindMaxPooling2D:
		size := k.PoolSize.or([2]int{2, 2})
		return layer.MaxPooling2D{
			Size:    size,
			Stride:  k.Strides.or(size),
			Padding: layer.ParsePadding(string(k.Padding)),
		}, nil

	case layer.KindConv2D:
		return layer.Conv2D{
			Filters:    k.Filters,
			Size:       k.KernelSize.or([2]int{1, 1}),
			Stride:     k.Strides.or([2]int{1, 1}),
			Padding:    layer.ParsePadding(string(k.Padding)),
			Activation: layer.ParseActivation(string(k.Activation)),
		}, nil

	case layer.KindEmbedding:
		return layer.Embedding{InputDim: k.InputDim, OutputDim: k.OutputDim}, nil

	case layer.KindSimpleRNN:
		act := k.Activation
		if act == "" {
			act = "tanh"
		}
		return layer.SimpleRNN{Units: k.Units, Activation: layer.ParseActivation(string(act))}, nil

	case layer.KindLSTM:
		act, rec := k.Activation, k.RecurrentActivation
		if act == "" {
			act = "tanh"
		}
		if rec == "" {
			rec = "sigmoid"
		}
		return layer.LSTM{
			Units:               k.Units,
			Activation:          layer.ParseActivation(string(act)),
			RecurrentActivation: layer.ParseActivation(string(rec)),
		}, nil

	default:
		return nil, fmt.Errorf("unhandled kind %s", kind)
	}
}

// inputKind guesses how the target should read model input: token ids when
// the model embeds them, images for rank-3 input, scalars otherwise.
func inputKind(configs []LayerConfig, dims []int) layer.InputKind {
	for _, lc := range configs {
		if lc.ClassName == layer.KindEmbedding.String() {
			return layer.InputToken
		}
	}
	if len(dims) == 3 {
		return layer.InputImage
	}
	return layer.InputScalar
}
