package codec

import (
	"errors"
	"fmt"

	"github.com/born-ml/chainnet/internal/layer"
)

// Decoding errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported layer tag version")
	ErrTruncated          = errors.New("layer blob is truncated")
	ErrUnknownKind        = errors.New("unknown layer kind tag")
	ErrInputRank          = errors.New("input rank must be 1..3")
)

// ConfigurationError reports a layer field that encoded as the sentinel.
type ConfigurationError struct {
	Index int        // Position in the encoded layer sequence
	Kind  layer.Kind // Layer kind
	Field string     // "activation", "recurrent_activation" or "padding"
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("layer %d (%s): unsupported %s", e.Index, e.Kind, e.Field)
}
