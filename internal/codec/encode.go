package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/layer"
)

const wordSize = 8

// Layer is one encoded layer together with what the fold derived for it.
type Layer struct {
	Spec    layer.Spec
	Kind    layer.Kind
	Blob    []byte
	Input   layer.ShapeContext // shape seen by this layer
	Output  layer.ShapeContext // shape handed to the next layer
	Slots   []int              // weight slot capacities, stream order
	Weights int                // total weight scalars
}

// Encoder turns layer specs into blobs. Scale converts Rescaling's real
// parameters to fixed point.
type Encoder struct {
	Scale fixed.Scale
}

// EncodeLayer encodes spec given its input shape and returns the encoded
// layer and the shape context for the next layer.
func (e Encoder) EncodeLayer(spec layer.Spec, ctx layer.ShapeContext) (Layer, layer.ShapeContext, error) {
	next, err := layer.Next(spec, ctx)
	if err != nil {
		return Layer{}, layer.ShapeContext{}, err
	}
	slots, err := layer.SlotCapacities(spec, ctx)
	if err != nil {
		return Layer{}, layer.ShapeContext{}, err
	}
	words, err := e.fields(spec)
	if err != nil {
		return Layer{}, layer.ShapeContext{}, fmt.Errorf("%s: %w", spec.Kind(), err)
	}

	total := 0
	for _, c := range slots {
		total += c
	}

	return Layer{
		Spec:    spec,
		Kind:    spec.Kind(),
		Blob:    pack(spec.Kind(), words),
		Input:   ctx,
		Output:  next,
		Slots:   slots,
		Weights: total,
	}, next, nil
}

// EncodeModel folds EncodeLayer over specs in order. Pass-through specs are
// skipped and leave the shape context untouched.
func (e Encoder) EncodeModel(specs []layer.Spec) ([]Layer, error) {
	var (
		ctx    layer.ShapeContext
		layers = make([]Layer, 0, len(specs))
	)
	for i, spec := range specs {
		if spec.Kind() == layer.KindPassThrough {
			continue
		}
		l, next, err := e.EncodeLayer(spec, ctx)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, l)
		ctx = next
	}
	return layers, nil
}

func (e Encoder) fields(spec layer.Spec) ([]int64, error) {
	switch s := spec.(type) {
	case layer.Input:
		if len(s.Dims) < 1 || len(s.Dims) > 3 {
			return nil, fmt.Errorf("%w, got %d", ErrInputRank, len(s.Dims))
		}
		words := []int64{int64(s.InputKind), int64(len(s.Dims)), 0, 0, 0}
		for i, d := range s.Dims {
			words[2+i] = int64(d)
		}
		return words, nil

	case layer.Dense:
		return []int64{layer.ActivationTag(s.Activation), int64(s.Units)}, nil

	case layer.Flatten:
		return nil, nil

	case layer.Rescaling:
		scale, err := e.Scale.ToFixed(s.Scale)
		if err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
		offset, err := e.Scale.ToFixed(s.Offset)
		if err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
		return []int64{scale, offset}, nil

	case layer.MaxPooling2D:
		return []int64{
			int64(s.Size[0]), int64(s.Size[1]),
			int64(s.Stride[0]), int64(s.Stride[1]),
			s.Padding.Tag(),
		}, nil

	case layer.Conv2D:
		return []int64{
			layer.ActivationTag(s.Activation),
			int64(s.Filters),
			int64(s.Size[0]), int64(s.Size[1]),
			int64(s.Stride[0]), int64(s.Stride[1]),
			s.Padding.Tag(),
		}, nil

	case layer.Embedding:
		return []int64{int64(s.InputDim), int64(s.OutputDim)}, nil

	case layer.SimpleRNN:
		return []int64{layer.ActivationTag(s.Activation), int64(s.Units)}, nil

	case layer.LSTM:
		return []int64{
			layer.ActivationTag(s.Activation),
			layer.ActivationTag(s.RecurrentActivation),
			int64(s.Units),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, spec)
	}
}

func pack(kind layer.Kind, words []int64) []byte {
	blob := make([]byte, 1, 1+wordSize*(len(words)+1))
	blob[0] = layer.TagVersion
	blob = binary.BigEndian.AppendUint64(blob, uint64(int64(kind)))
	for _, w := range words {
		blob = binary.BigEndian.AppendUint64(blob, uint64(w))
	}
	return blob
}

// enumFields lists, per kind, the word positions (after the kind tag) that
// hold activation or padding enums.
var enumFields = map[layer.Kind][]struct {
	word  int
	field string
}{
	layer.KindDense:        {{0, "activation"}},
	layer.KindMaxPooling2D: {{4, "padding"}},
	layer.KindConv2D:       {{0, "activation"}, {6, "padding"}},
	layer.KindSimpleRNN:    {{0, "activation"}},
	layer.KindLSTM:         {{0, "activation"}, {1, "recurrent_activation"}},
}

// Check scans encoded layers for sentinel enum values and returns every
// offending field as a *ConfigurationError, joined. It returns nil when the
// model is executable by the target.
func Check(layers []Layer) error {
	var errs []error
	for i, l := range layers {
		kind, words, err := unpack(l.Blob)
		if err != nil {
			errs = append(errs, fmt.Errorf("layer %d: %w", i, err))
			continue
		}
		for _, f := range enumFields[kind] {
			if f.word < len(words) && words[f.word] == layer.Sentinel {
				errs = append(errs, &ConfigurationError{Index: i, Kind: kind, Field: f.field})
			}
		}
	}
	return errors.Join(errs...)
}

// Totals returns the expected weight count per kind, summed over instances.
// Kinds without weights are omitted.
func Totals(layers []Layer) map[layer.Kind]int {
	totals := make(map[layer.Kind]int)
	for _, l := range layers {
		if l.Weights > 0 {
			totals[l.Kind] += l.Weights
		}
	}
	return totals
}
