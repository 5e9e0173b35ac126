// Package layer defines the layer descriptions shared by the encoder, the
// weight streamer, the forward engine and every consumer of the encoded
// form.
//
// Spec is a closed sum type over the nine supported layer kinds. Kind tags
// and the name enums in this package are the wire vocabulary; they are
// stamped with TagVersion so that their meaning can never shift silently.
package layer

import (
	"fmt"

	"github.com/born-ml/chainnet/internal/tensor"
)

// TagVersion stamps every encoded layer. Bump it whenever a tag value or
// field layout changes.
const TagVersion = 1

// Kind is the wire tag of a layer kind.
type Kind int

// KindPassThrough marks unsupported layers. It is never encoded.
const KindPassThrough Kind = -1

// Layer kind tags.
const (
	KindInput Kind = iota
	KindDense
	KindFlatten
	KindRescaling
	KindMaxPooling2D
	KindConv2D
	KindEmbedding
	KindSimpleRNN
	KindLSTM

	numKinds
)

// Kinds lists every supported kind in tag order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := KindInput; k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is a known tag.
func (k Kind) Valid() bool {
	return k >= KindInput && k < numKinds
}

// String returns the Keras class name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "InputLayer"
	case KindDense:
		return "Dense"
	case KindFlatten:
		return "Flatten"
	case KindRescaling:
		return "Rescaling"
	case KindMaxPooling2D:
		return "MaxPooling2D"
	case KindConv2D:
		return "Conv2D"
	case KindEmbedding:
		return "Embedding"
	case KindSimpleRNN:
		return "SimpleRNN"
	case KindLSTM:
		return "LSTM"
	case KindPassThrough:
		return "PassThrough"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a Keras class name to a Kind.
func ParseKind(className string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.String() == className {
			return k, true
		}
	}
	return 0, false
}

// InputKind tells the target how to interpret model input.
type InputKind int

// Input kinds.
const (
	InputImage InputKind = iota
	InputToken
	InputScalar
)

// String returns the input kind's name.
func (k InputKind) String() string {
	switch k {
	case InputImage:
		return "image"
	case InputToken:
		return "token"
	case InputScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Spec describes one layer. The set of implementations is closed.
type Spec interface {
	Kind() Kind
	sealed()
}

// Input declares the model's input shape.
type Input struct {
	InputKind InputKind
	Dims      []int // without batch dimension; 0 marks an unknown size
}

// Dense is a fully connected layer. InputDim 0 means "take it from the
// shape context".
type Dense struct {
	InputDim   int
	Units      int
	Activation tensor.Activation
}

// Flatten collapses its input to rank 1.
type Flatten struct{}

// Rescaling computes x*Scale + Offset.
type Rescaling struct {
	Scale  float64
	Offset float64
}

// MaxPooling2D pools [W,H,D] inputs.
type MaxPooling2D struct {
	Size    [2]int
	Stride  [2]int
	Padding Padding
}

// Conv2D is a channels-last 2D convolution.
type Conv2D struct {
	Filters    int
	Size       [2]int
	Stride     [2]int
	Padding    Padding
	Activation tensor.Activation
}

// Embedding maps token ids to rows of a [InputDim, OutputDim] table.
type Embedding struct {
	InputDim  int
	OutputDim int
}

// SimpleRNN is a fully connected recurrent layer.
type SimpleRNN struct {
	Units      int
	Activation tensor.Activation
}

// LSTM is a four-gate long short-term memory layer.
type LSTM struct {
	Units               int
	Activation          tensor.Activation
	RecurrentActivation tensor.Activation
}

func (Input) Kind() Kind        { return KindInput }
func (Dense) Kind() Kind        { return KindDense }
func (Flatten) Kind() Kind      { return KindFlatten }
func (Rescaling) Kind() Kind    { return KindRescaling }
func (MaxPooling2D) Kind() Kind { return KindMaxPooling2D }
func (Conv2D) Kind() Kind       { return KindConv2D }
func (Embedding) Kind() Kind    { return KindEmbedding }
func (SimpleRNN) Kind() Kind    { return KindSimpleRNN }
func (LSTM) Kind() Kind         { return KindLSTM }

func (Input) sealed()        {}
func (Dense) sealed()        {}
func (Flatten) sealed()      {}
func (Rescaling) sealed()    {}
func (MaxPooling2D) sealed() {}
func (Conv2D) sealed()       {}
func (Embedding) sealed()    {}
func (SimpleRNN) sealed()    {}
func (LSTM) sealed()         {}

// PassThrough stands for a layer kind outside the supported set, such as
// Dropout. It consumes no weights, does not change the shape context and is
// skipped by the encoder.
type PassThrough struct {
	ClassName string
}

// Kind returns KindPassThrough.
func (PassThrough) Kind() Kind { return KindPassThrough }
func (PassThrough) sealed()    {}
