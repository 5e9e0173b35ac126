package layer

import "errors"

// Shape context errors.
var (
	ErrNoInputShape = errors.New("no input shape: the first layer must be an InputLayer or declare an input shape")
	ErrUnknownDim   = errors.New("input dimension is unknown")
	ErrRankMismatch = errors.New("layer does not accept an input of this rank")
	ErrEmptyOutput  = errors.New("layer produces an empty output")
)
