// Package codec translates layer specs into the tagged binary form the
// execution target stores, and back.
//
// Every encoded layer is one blob:
//
//	[1 byte: layer.TagVersion]
//	[8 bytes: kind tag (int64 BE)]
//	[8 bytes per field (int64 BE)]
//
// Field layouts per kind:
//
//	InputLayer    inputKind, rank, d0, d1, d2
//	Dense         activation, units
//	Flatten       -
//	Rescaling     fixed(scale), fixed(offset)
//	MaxPooling2D  size0, size1, stride0, stride1, padding
//	Conv2D        activation, filters, size0, size1, stride0, stride1, padding
//	Embedding     inputDim, outputDim
//	SimpleRNN     activation, units
//	LSTM          activation, recurrentActivation, units
//
// Activation and padding names that the target cannot execute encode as
// layer.Sentinel. Encoding succeeds anyway; Check reports them so the caller
// can reject the model before streaming any weights.
//
// Example:
//
//	enc := codec.Encoder{Scale: fixed.Q32}
//	layers, err := enc.EncodeModel(specs)
//	if err != nil {
//	    return err
//	}
//	if err := codec.Check(layers); err != nil {
//	    return err
//	}
package codec
