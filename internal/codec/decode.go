package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/tensor"
)

// fieldCount is the number of words following the kind tag.
var fieldCount = map[layer.Kind]int{
	layer.KindInput:        5,
	layer.KindDense:        2,
	layer.KindFlatten:      0,
	layer.KindRescaling:    2,
	layer.KindMaxPooling2D: 5,
	layer.KindConv2D:       7,
	layer.KindEmbedding:    2,
	layer.KindSimpleRNN:    2,
	layer.KindLSTM:         3,
}

// Decoder is the consumer side of the codec.
type Decoder struct {
	Scale fixed.Scale
}

// DecodeLayer parses one blob back into a layer spec. Dense.InputDim is not
// part of the encoding and decodes as 0; sentinel enums decode as
// tensor.ActivationUnknown and layer.PaddingUnknown.
func (d Decoder) DecodeLayer(blob []byte) (layer.Spec, error) {
	kind, w, err := unpack(blob)
	if err != nil {
		return nil, err
	}

	switch kind {
	case layer.KindInput:
		rank := int(w[1])
		if rank < 1 || rank > 3 {
			return nil, fmt.Errorf("%w, got %d", ErrInputRank, rank)
		}
		dims := make([]int, rank)
		for i := range dims {
			dims[i] = int(w[2+i])
		}
		return layer.Input{InputKind: layer.InputKind(w[0]), Dims: dims}, nil

	case layer.KindDense:
		return layer.Dense{Activation: act(w[0]), Units: int(w[1])}, nil

	case layer.KindFlatten:
		return layer.Flatten{}, nil

	case layer.KindRescaling:
		return layer.Rescaling{Scale: d.Scale.FromFixed(w[0]), Offset: d.Scale.FromFixed(w[1])}, nil

	case layer.KindMaxPooling2D:
		return layer.MaxPooling2D{
			Size:    [2]int{int(w[0]), int(w[1])},
			Stride:  [2]int{int(w[2]), int(w[3])},
			Padding: padding(w[4]),
		}, nil

	case layer.KindConv2D:
		return layer.Conv2D{
			Activation: act(w[0]),
			Filters:    int(w[1]),
			Size:       [2]int{int(w[2]), int(w[3])},
			Stride:     [2]int{int(w[4]), int(w[5])},
			Padding:    padding(w[6]),
		}, nil

	case layer.KindEmbedding:
		return layer.Embedding{InputDim: int(w[0]), OutputDim: int(w[1])}, nil

	case layer.KindSimpleRNN:
		return layer.SimpleRNN{Activation: act(w[0]), Units: int(w[1])}, nil

	case layer.KindLSTM:
		return layer.LSTM{Activation: act(w[0]), RecurrentActivation: act(w[1]), Units: int(w[2])}, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// DecodeModel decodes a sequence of blobs.
func (d Decoder) DecodeModel(blobs [][]byte) ([]layer.Spec, error) {
	specs := make([]layer.Spec, len(blobs))
	for i, b := range blobs {
		spec, err := d.DecodeLayer(b)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		specs[i] = spec
	}
	return specs, nil
}

// ExpectedTotals decodes blobs, folds the shape context through them and
// returns the weight count per kind the decoded layers consume.
func (d Decoder) ExpectedTotals(blobs [][]byte) (map[layer.Kind]int, error) {
	specs, err := d.DecodeModel(blobs)
	if err != nil {
		return nil, err
	}

	var ctx layer.ShapeContext
	totals := make(map[layer.Kind]int)
	for i, spec := range specs {
		n, err := layer.ExpectedWeightCount(spec, ctx)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if n > 0 {
			totals[spec.Kind()] += n
		}
		if ctx, err = layer.Next(spec, ctx); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return totals, nil
}

// unpack splits a blob into its kind tag and field words.
func unpack(blob []byte) (layer.Kind, []int64, error) {
	if len(blob) < 1+wordSize {
		return 0, nil, ErrTruncated
	}
	if blob[0] != layer.TagVersion {
		return 0, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, blob[0])
	}

	kind := layer.Kind(int64(binary.BigEndian.Uint64(blob[1:])))
	n, ok := fieldCount[kind]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}

	body := blob[1+wordSize:]
	if len(body) != n*wordSize {
		return 0, nil, fmt.Errorf("%w: %s wants %d fields, blob holds %d bytes", ErrTruncated, kind, n, len(body))
	}

	words := make([]int64, n)
	for i := range words {
		words[i] = int64(binary.BigEndian.Uint64(body[i*wordSize:]))
	}
	return kind, words, nil
}

func act(tag int64) tensor.Activation {
	return layer.ActivationFromTag(tag)
}

func padding(tag int64) layer.Padding {
	switch tag {
	case int64(layer.PaddingValid):
		return layer.PaddingValid
	case int64(layer.PaddingSame):
		return layer.PaddingSame
	default:
		return layer.PaddingUnknown
	}
}
