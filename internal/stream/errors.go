package stream

import (
	"errors"
	"fmt"

	"github.com/born-ml/chainnet/internal/layer"
)

// Streaming errors.
var (
	ErrAlreadyApplied    = errors.New("chunk already applied: slot is past this offset")
	ErrGap               = errors.New("chunk offset is ahead of the cursor")
	ErrDuplicateInstance = errors.New("layer instance already queued")
)

// SlotOverflowError reports scalars that did not fit into the cursor's
// remaining capacity. Everything that fit was written; Dropped scalars were
// not.
type SlotOverflowError struct {
	Capacity int // Total cursor capacity
	Dropped  int // Scalars left over after the last slot filled
}

// Error implements the error interface.
func (e *SlotOverflowError) Error() string {
	return fmt.Sprintf("slot overflow: %d scalars past capacity %d", e.Dropped, e.Capacity)
}

// CountMismatchError reports a weight count that differs from the count
// derived from the layer configuration. It is fatal for an upload.
type CountMismatchError struct {
	Kind     layer.Kind // KindPassThrough when the count is model-wide
	Instance int        // -1 for per-kind or model-wide totals
	Expected int
	Got      int
}

// Error implements the error interface.
func (e *CountMismatchError) Error() string {
	switch {
	case e.Kind == layer.KindPassThrough:
		return fmt.Sprintf("weight count mismatch: model expects %d scalars, got %d", e.Expected, e.Got)
	case e.Instance < 0:
		return fmt.Sprintf("weight count mismatch: %s layers expect %d scalars, got %d", e.Kind, e.Expected, e.Got)
	default:
		return fmt.Sprintf("weight count mismatch: %s #%d expects %d scalars, got %d", e.Kind, e.Instance, e.Expected, e.Got)
	}
}
