// Package target is an in-memory mirror of the execution target's model
// storage. It accepts the same encoded layers and weight chunks a
// deployment sends, applies the same resumable fill rules, and can
// materialize the stored model for forward comparison with the engine.
package target

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/chainnet/internal/codec"
	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/nn"
	"github.com/born-ml/chainnet/internal/stream"
	"github.com/born-ml/chainnet/internal/tensor"
)

// Target errors.
var (
	ErrUnknownInstance = errors.New("no such layer instance")
	ErrIncomplete      = errors.New("model upload is incomplete")
	ErrScaleMismatch   = errors.New("fixed-point scale differs from the target's")
)

// instance is one declared weight-bearing layer.
type instance struct {
	index  int // position in the declared layer sequence
	cursor stream.Cursor[int64]
}

// Target stores declared layers and their weights.
type Target struct {
	scale     fixed.Scale
	specs     []layer.Spec
	ctx       layer.ShapeContext
	instances map[stream.Key]*instance
	counts    map[layer.Kind]int
}

// New returns an empty target storing weights at scale.
func New(scale fixed.Scale) *Target {
	return &Target{
		scale:     scale,
		instances: make(map[stream.Key]*instance),
		counts:    make(map[layer.Kind]int),
	}
}

// Scale returns the scale the target expects.
func (t *Target) Scale() fixed.Scale {
	return t.scale
}

// CheckScale rejects uploads encoded at a different scale.
func (t *Target) CheckScale(s fixed.Scale) error {
	if s != t.scale {
		return fmt.Errorf("%w: upload uses %s, target stores %s", ErrScaleMismatch, s, t.scale)
	}
	return nil
}

// Declare decodes one layer blob and appends it to the model. Layers must
// be declared in model order. Weight-bearing layers get a cursor keyed by
// their kind and per-kind instance index.
func (t *Target) Declare(blob []byte) error {
	spec, err := codec.Decoder{Scale: t.scale}.DecodeLayer(blob)
	if err != nil {
		return err
	}
	if err := codec.Check([]codec.Layer{{Kind: spec.Kind(), Blob: blob}}); err != nil {
		return err
	}

	caps, err := layer.SlotCapacities(spec, t.ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", spec.Kind(), err)
	}
	next, err := layer.Next(spec, t.ctx)
	if err != nil {
		return err
	}

	if len(caps) > 0 {
		key := stream.Key{Kind: spec.Kind(), Instance: t.counts[spec.Kind()]}
		t.instances[key] = &instance{index: len(t.specs), cursor: stream.NewCursor[int64](caps...)}
		t.counts[spec.Kind()]++
		slog.Debug("declared layer", "kind", key.Kind, "instance", key.Instance, "slots", caps)
	}

	t.specs = append(t.specs, spec)
	t.ctx = next
	return nil
}

// Upload applies one chunk. A chunk whose offset is behind the instance's
// fill position was already applied and yields stream.ErrAlreadyApplied
// without changing anything; a chunk ahead of it yields stream.ErrGap.
func (t *Target) Upload(c stream.Chunk) error {
	inst, ok := t.instances[stream.Key{Kind: c.Kind, Instance: c.Instance}]
	if !ok {
		return fmt.Errorf("%s #%d: %w", c.Kind, c.Instance, ErrUnknownInstance)
	}

	next, err := inst.cursor.AppendAt(c.Offset, c.Scalars)
	var overflow *stream.SlotOverflowError
	if err == nil || errors.As(err, &overflow) {
		inst.cursor = next
	}
	if err != nil {
		return fmt.Errorf("%s #%d: %w", c.Kind, c.Instance, err)
	}
	return nil
}

// Progress returns the filled and total weight counts of one instance.
func (t *Target) Progress(kind layer.Kind, instance int) (filled, total int, err error) {
	inst, ok := t.instances[stream.Key{Kind: kind, Instance: instance}]
	if !ok {
		return 0, 0, fmt.Errorf("%s #%d: %w", kind, instance, ErrUnknownInstance)
	}
	return inst.cursor.Offset(), inst.cursor.Capacity(), nil
}

// Complete reports whether every declared instance is fully loaded.
func (t *Target) Complete() bool {
	for _, inst := range t.instances {
		if !inst.cursor.Done() {
			return false
		}
	}
	return true
}

// Specs returns the declared layers.
func (t *Target) Specs() []layer.Spec {
	return t.specs
}

// Model materializes the stored model: fixed-point weights are converted
// back to real values and streamed into a forward model.
func (t *Target) Model(backend tensor.Backend) (*nn.Sequential, error) {
	if !t.Complete() {
		return nil, ErrIncomplete
	}

	model, loaders, err := nn.Build(t.specs, backend)
	if err != nil {
		return nil, err
	}

	// Loaders come back in declaration order; pair them with instances by
	// their layer index.
	byIndex := make(map[int]*instance, len(t.instances))
	for _, inst := range t.instances {
		byIndex[inst.index] = inst
	}
	var weights []float64
	for i := range t.specs {
		if inst, ok := byIndex[i]; ok {
			weights = append(weights, t.scale.Decode(inst.cursor.Values())...)
		}
	}
	if err := nn.Fill(loaders, weights); err != nil {
		return nil, err
	}
	return model, nil
}

// Deploy declares every layer of a plan and uploads every chunk.
func (t *Target) Deploy(blobs [][]byte, chunks []stream.Chunk) error {
	for i, b := range blobs {
		if err := t.Declare(b); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	for i, c := range chunks {
		if err := t.Upload(c); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	if !t.Complete() {
		return ErrIncomplete
	}
	return nil
}
