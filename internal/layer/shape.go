package layer

import (
	"fmt"
	"slices"
)

// ShapeContext is the input shape seen by the next layer. It is a value:
// Next returns a fresh context and never modifies its argument.
type ShapeContext struct {
	Dims []int
	Set  bool
}

// NewShapeContext returns a context holding dims.
func NewShapeContext(dims ...int) ShapeContext {
	return ShapeContext{Dims: slices.Clone(dims), Set: true}
}

// Last returns the innermost dimension, or 0 if unknown.
func (c ShapeContext) Last() int {
	if len(c.Dims) == 0 {
		return 0
	}
	return c.Dims[len(c.Dims)-1]
}

// Size returns the element count, or 0 if any dimension is unknown.
func (c ShapeContext) Size() int {
	if len(c.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range c.Dims {
		n *= d
	}
	return n
}

// String formats the context like a Keras shape, with ? for unknown sizes.
func (c ShapeContext) String() string {
	if !c.Set {
		return "(unset)"
	}
	s := "("
	for i, d := range c.Dims {
		if i > 0 {
			s += ", "
		}
		if d <= 0 {
			s += "?"
		} else {
			s += fmt.Sprint(d)
		}
	}
	return s + ")"
}

// ConvSize computes the output size and left/top padding shared by Conv2D
// and MaxPooling2D.
//
// For "same": out = ceil(dim/stride); the total padding is
// max(size-stride, 0) when dim divides evenly by stride and
// max(size - dim%stride, 0) otherwise, and the left share is floor(total/2).
//
// For "valid": out = floor((dim-size)/stride) + 1 and no padding.
//
// An unrecognized padding falls back to the "valid" rule; its sentinel tag is
// what rejects the model.
func ConvSize(dim, size, stride [2]int, padding Padding) (out, padLeft [2]int) {
	for i := range 2 {
		if padding == PaddingSame {
			out[i] = ceilDiv(dim[i], stride[i])
			var total int
			if dim[i]%stride[i] == 0 {
				total = max(size[i]-stride[i], 0)
			} else {
				total = max(size[i]-dim[i]%stride[i], 0)
			}
			padLeft[i] = total / 2
			continue
		}
		out[i] = floorDiv(dim[i]-size[i], stride[i]) + 1
	}
	return out, padLeft
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

// Next folds one layer into the shape context and returns the context for
// the following layer.
func Next(spec Spec, ctx ShapeContext) (ShapeContext, error) {
	if spec.Kind() != KindInput && spec.Kind() != KindPassThrough && !ctx.Set {
		return ShapeContext{}, fmt.Errorf("%s: %w", spec.Kind(), ErrNoInputShape)
	}

	switch s := spec.(type) {
	case Input:
		return NewShapeContext(s.Dims...), nil

	case PassThrough:
		return ctx, nil

	case Dense:
		if len(ctx.Dims) == 0 {
			return NewShapeContext(s.Units), nil
		}
		dims := slices.Clone(ctx.Dims)
		dims[len(dims)-1] = s.Units
		return NewShapeContext(dims...), nil

	case Flatten:
		size := ctx.Size()
		if size <= 0 {
			return ShapeContext{}, fmt.Errorf("flatten %s: %w", ctx, ErrUnknownDim)
		}
		return NewShapeContext(size), nil

	case Rescaling:
		return NewShapeContext(ctx.Dims...), nil

	case MaxPooling2D:
		out, err := spatial(ctx, s.Size, s.Stride, s.Padding)
		if err != nil {
			return ShapeContext{}, fmt.Errorf("max pooling: %w", err)
		}
		return NewShapeContext(out[0], out[1], ctx.Dims[2]), nil

	case Conv2D:
		out, err := spatial(ctx, s.Size, s.Stride, s.Padding)
		if err != nil {
			return ShapeContext{}, fmt.Errorf("conv2d: %w", err)
		}
		return NewShapeContext(out[0], out[1], s.Filters), nil

	case Embedding:
		return NewShapeContext(s.OutputDim), nil

	case SimpleRNN:
		return NewShapeContext(s.Units), nil

	case LSTM:
		return NewShapeContext(s.Units), nil

	default:
		panic(fmt.Sprintf("layer: unhandled spec %T", spec))
	}
}

func spatial(ctx ShapeContext, size, stride [2]int, padding Padding) ([2]int, error) {
	if len(ctx.Dims) != 3 {
		return [2]int{}, fmt.Errorf("input %s: %w", ctx, ErrRankMismatch)
	}
	if ctx.Dims[0] <= 0 || ctx.Dims[1] <= 0 {
		return [2]int{}, fmt.Errorf("input %s: %w", ctx, ErrUnknownDim)
	}
	if stride[0] <= 0 || stride[1] <= 0 {
		return [2]int{}, fmt.Errorf("invalid stride %v", stride)
	}

	out, _ := ConvSize([2]int{ctx.Dims[0], ctx.Dims[1]}, size, stride, padding)
	if out[0] <= 0 || out[1] <= 0 {
		return [2]int{}, fmt.Errorf("input %s, window %v: %w", ctx, size, ErrEmptyOutput)
	}
	return out, nil
}
