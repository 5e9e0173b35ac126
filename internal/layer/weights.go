package layer

import "fmt"

// Weight slot names, in the order scalars arrive in the weight stream.
const (
	SlotKernel    = "kernel"
	SlotRecurrent = "recurrent_kernel"
	SlotBias      = "bias"
	SlotTable     = "embeddings"
)

// Slot is the analytic size of one weight sub-tensor of a layer.
type Slot struct {
	Name     string
	Capacity int
}

// Slots returns the weight slots of spec in stream order:
//
//	Dense      kernel(in·out), bias(out)
//	Conv2D     kernel(fw·fh·inChannels·filters), bias(filters)
//	Embedding  embeddings(inputDim·outputDim)
//	SimpleRNN  kernel(in·units), recurrent_kernel(units·units), bias(units)
//	LSTM       kernel(in·4units), recurrent_kernel(units·4units), bias(4units)
//
// Every other kind has no slots.
func Slots(spec Spec, ctx ShapeContext) ([]Slot, error) {
	switch s := spec.(type) {
	case Dense:
		in, err := inputWidth(s.InputDim, ctx)
		if err != nil {
			return nil, fmt.Errorf("dense: %w", err)
		}
		return []Slot{
			{SlotKernel, in * s.Units},
			{SlotBias, s.Units},
		}, nil

	case Conv2D:
		if len(ctx.Dims) != 3 {
			return nil, fmt.Errorf("conv2d: input %s: %w", ctx, ErrRankMismatch)
		}
		channels := ctx.Dims[2]
		if channels <= 0 {
			return nil, fmt.Errorf("conv2d: input %s: %w", ctx, ErrUnknownDim)
		}
		return []Slot{
			{SlotKernel, s.Size[0] * s.Size[1] * channels * s.Filters},
			{SlotBias, s.Filters},
		}, nil

	case Embedding:
		return []Slot{{SlotTable, s.InputDim * s.OutputDim}}, nil

	case SimpleRNN:
		in, err := inputWidth(0, ctx)
		if err != nil {
			return nil, fmt.Errorf("simple rnn: %w", err)
		}
		return []Slot{
			{SlotKernel, in * s.Units},
			{SlotRecurrent, s.Units * s.Units},
			{SlotBias, s.Units},
		}, nil

	case LSTM:
		in, err := inputWidth(0, ctx)
		if err != nil {
			return nil, fmt.Errorf("lstm: %w", err)
		}
		gates := 4 * s.Units
		return []Slot{
			{SlotKernel, in * gates},
			{SlotRecurrent, s.Units * gates},
			{SlotBias, gates},
		}, nil

	case Input, Flatten, Rescaling, MaxPooling2D, PassThrough:
		return nil, nil

	default:
		panic(fmt.Sprintf("layer: unhandled spec %T", spec))
	}
}

// SlotCapacities returns just the capacities of Slots.
func SlotCapacities(spec Spec, ctx ShapeContext) ([]int, error) {
	slots, err := Slots(spec, ctx)
	if err != nil {
		return nil, err
	}
	caps := make([]int, len(slots))
	for i, s := range slots {
		caps[i] = s.Capacity
	}
	return caps, nil
}

// ExpectedWeightCount returns the number of weight scalars spec consumes
// given the input shape ctx.
func ExpectedWeightCount(spec Spec, ctx ShapeContext) (int, error) {
	caps, err := SlotCapacities(spec, ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range caps {
		total += c
	}
	return total, nil
}

// HasWeights reports whether layers of kind k carry weights.
func HasWeights(k Kind) bool {
	switch k {
	case KindDense, KindConv2D, KindEmbedding, KindSimpleRNN, KindLSTM:
		return true
	default:
		return false
	}
}

func inputWidth(declared int, ctx ShapeContext) (int, error) {
	if declared > 0 {
		return declared, nil
	}
	if !ctx.Set {
		return 0, ErrNoInputShape
	}
	if ctx.Last() <= 0 {
		return 0, fmt.Errorf("input %s: %w", ctx, ErrUnknownDim)
	}
	return ctx.Last(), nil
}
