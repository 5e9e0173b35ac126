package model

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/chainnet/internal/codec"
	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/nn"
	"github.com/born-ml/chainnet/internal/stream"
	"github.com/born-ml/chainnet/internal/tensor"
)

// Plan is everything needed to deploy a model to the target: the encoded
// layers in order and the weight chunks in upload order.
type Plan struct {
	Name        string
	Classes     []string
	Scale       fixed.Scale
	MaxChunkLen int
	Layers      []codec.Layer
	Chunks      []stream.Chunk
	Totals      map[layer.Kind]int
}

// Plan encodes the model, rejects configurations the target cannot
// execute, converts the weights to fixed point and slices them into chunks
// of at most maxChunkLen scalars.
func (d *Description) Plan(scale fixed.Scale, maxChunkLen int) (*Plan, error) {
	if maxChunkLen <= 0 {
		return nil, fmt.Errorf("max chunk length must be positive, got %d", maxChunkLen)
	}

	specs, err := d.Specs()
	if err != nil {
		return nil, err
	}
	layers, err := codec.Encoder{Scale: scale}.EncodeModel(specs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode layers: %w", err)
	}
	if err := codec.Check(layers); err != nil {
		return nil, fmt.Errorf("model %q cannot run on the target: %w", d.Name, err)
	}

	weights, err := d.Weights()
	if err != nil {
		return nil, err
	}

	expected := 0
	for _, l := range layers {
		expected += l.Weights
	}
	if expected != len(weights) {
		return nil, &stream.CountMismatchError{
			Kind:     layer.KindPassThrough,
			Instance: -1,
			Expected: expected,
			Got:      len(weights),
		}
	}

	streamer := stream.NewStreamer()
	instances := make(map[layer.Kind]int)
	pos := 0
	for i, l := range layers {
		if l.Weights == 0 {
			continue
		}
		scalars, err := scale.Encode(weights[pos : pos+l.Weights])
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, l.Kind, err)
		}
		if err := streamer.Queue(l.Kind, instances[l.Kind], l.Slots, scalars); err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, l.Kind, err)
		}
		instances[l.Kind]++
		pos += l.Weights
	}

	blobs := make([][]byte, len(layers))
	for i, l := range layers {
		blobs[i] = l.Blob
	}
	decoded, err := codec.Decoder{Scale: scale}.ExpectedTotals(blobs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode planned layers: %w", err)
	}
	if err := streamer.Verify(decoded); err != nil {
		return nil, err
	}

	plan := &Plan{
		Name:        d.Name,
		Classes:     d.Classes,
		Scale:       scale,
		MaxChunkLen: maxChunkLen,
		Layers:      layers,
		Chunks:      streamer.Drain(maxChunkLen),
		Totals:      codec.Totals(layers),
	}
	slog.Debug("planned model upload",
		"model", d.Name, "layers", len(layers), "weights", expected,
		"chunks", len(plan.Chunks), "scale", scale)
	return plan, nil
}

// Blobs returns the encoded layer blobs in order.
func (p *Plan) Blobs() [][]byte {
	blobs := make([][]byte, len(p.Layers))
	for i, l := range p.Layers {
		blobs[i] = l.Blob
	}
	return blobs
}

// Validate checks that the weight stream exactly fills every weight-bearing
// layer, with nothing left over. Unlike Build it accepts LSTM layers.
func (d *Description) Validate(backend tensor.Backend) error {
	specs, err := d.Specs()
	if err != nil {
		return err
	}
	loaders, err := nn.Loaders(specs, backend)
	if err != nil {
		return err
	}
	weights, err := d.Weights()
	if err != nil {
		return err
	}
	return nn.Fill(loaders, widen(weights))
}
