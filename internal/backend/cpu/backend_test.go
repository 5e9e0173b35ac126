package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainnet/internal/parallel"
	"github.com/born-ml/chainnet/internal/tensor"
)

func raw(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(tensor.Shape(shape))
	require.NoError(t, err)
	copy(r.Data(), data)
	return r
}

func TestAddMul(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4}, 2, 2)
	b := raw(t, []float64{10, 20, 30, 40}, 2, 2)

	assert.Equal(t, []float64{11, 22, 33, 44}, backend.Add(a, b).Data())
	assert.Equal(t, []float64{10, 40, 90, 160}, backend.Mul(a, b).Data())

	// Inputs are never modified.
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data())
}

func TestAdd_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4}, 2, 2)
	b := raw(t, []float64{1, 2, 3, 4}, 4)

	assert.Panics(t, func() { backend.Add(a, b) })
}

func TestRescale(t *testing.T) {
	backend := New()
	x := raw(t, []float64{0, 127.5, 255}, 3)

	out := backend.Rescale(x, 1.0/127.5, -1)
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, out.Data(), 1e-12)
}

func TestMatMul(t *testing.T) {
	backend := New()

	t.Run("vector by matrix", func(t *testing.T) {
		x := raw(t, []float64{1, 2}, 2)
		w := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

		out := backend.MatMul(x, w)
		assert.Equal(t, tensor.Shape{3}, out.Shape())
		assert.Equal(t, []float64{9, 12, 15}, out.Data())
	})

	t.Run("matrix by matrix", func(t *testing.T) {
		a := raw(t, []float64{1, 2, 3, 4}, 2, 2)
		b := raw(t, []float64{5, 6, 7, 8}, 2, 2)

		out := backend.MatMul(a, b)
		assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
		assert.Equal(t, []float64{19, 22, 43, 50}, out.Data())
	})

	t.Run("inner dimension mismatch", func(t *testing.T) {
		x := raw(t, []float64{1, 2, 3}, 3)
		w := raw(t, []float64{1, 2, 3, 4}, 2, 2)
		assert.Panics(t, func() { backend.MatMul(x, w) })
	})
}

func TestConv2D_KnownValues(t *testing.T) {
	backend := New()

	// in[x,y] = x*3 + y + 1
	input := raw(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 3, 3, 1)
	filter := raw(t, []float64{1, 2, 3, 4}, 2, 2, 1, 1)

	out := backend.Conv2D(input, filter, [2]int{1, 1}, [2]int{0, 0}, [2]int{2, 2})
	assert.Equal(t, tensor.Shape{2, 2, 1}, out.Shape())
	assert.Equal(t, []float64{37, 47, 67, 77}, out.Data())
}

func TestConv2D_IdentityFilter(t *testing.T) {
	backend := New()
	data := []float64{1, -2, 3, -4, 5, -6, 7, -8, 9, -10, 11, -12}
	input := raw(t, data, 2, 3, 2)

	// 1x1 filter mapping channel d to output channel d.
	filter := raw(t, []float64{1, 0, 0, 1}, 1, 1, 2, 2)

	out := backend.Conv2D(input, filter, [2]int{1, 1}, [2]int{0, 0}, [2]int{2, 3})
	assert.Equal(t, input.Shape(), out.Shape())
	assert.Equal(t, data, out.Data())
}

func TestConv2D_SamePaddingZeroFill(t *testing.T) {
	backend := New()
	input := raw(t, []float64{1, 1, 1, 1}, 2, 2, 1)
	filter := raw(t, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}, 3, 3, 1, 1)

	out := backend.Conv2D(input, filter, [2]int{1, 1}, [2]int{1, 1}, [2]int{2, 2})
	assert.Equal(t, []float64{4, 4, 4, 4}, out.Data())
}

func TestMaxPool2D_Basic(t *testing.T) {
	backend := New()
	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i + 1)
	}
	input := raw(t, data, 4, 4, 1)

	out := backend.MaxPool2D(input, [2]int{2, 2}, [2]int{2, 2}, [2]int{0, 0}, [2]int{2, 2})
	assert.Equal(t, tensor.Shape{2, 2, 1}, out.Shape())
	assert.Equal(t, []float64{6, 8, 14, 16}, out.Data())
}

func TestMaxPool2D_BorderCountsAsZero(t *testing.T) {
	backend := New()
	input := raw(t, []float64{-1, -1, -1, -1, -1, -1, -1, -1, -1}, 3, 3, 1)

	// "same" pooling of a 3x3 input with 2x2 windows, stride 2: no left padding,
	// the last window in each direction overhangs the edge.
	out := backend.MaxPool2D(input, [2]int{2, 2}, [2]int{2, 2}, [2]int{0, 0}, [2]int{2, 2})
	assert.Equal(t, []float64{-1, 0, 0, 0}, out.Data())
}

func TestSoftmax_Global(t *testing.T) {
	backend := New()
	x := raw(t, []float64{1, 2, 3, 4}, 2, 2)

	out := backend.Softmax(x)

	var sum float64
	for _, v := range []float64{1, 2, 3, 4} {
		sum += math.Exp(v)
	}
	want := []float64{math.Exp(1) / sum, math.Exp(2) / sum, math.Exp(3) / sum, math.Exp(4) / sum}
	assert.InDeltaSlice(t, want, out.Data(), 1e-12)

	// Rows do not sum to one on their own: normalization spans the whole tensor.
	assert.Less(t, out.Data()[0]+out.Data()[1], 0.5)
}

func TestActivate(t *testing.T) {
	backend := New()
	x := raw(t, []float64{-2, -0.5, 0, 0.5, 2}, 5)

	tests := []struct {
		act  tensor.Activation
		want []float64
	}{
		{tensor.Linear, []float64{-2, -0.5, 0, 0.5, 2}},
		{tensor.ReLU, []float64{0, 0, 0, 0.5, 2}},
		{tensor.LeakyReLU, []float64{-0.4, -0.1, 0, 0.5, 2}},
		{tensor.Tanh, []float64{math.Tanh(-2), math.Tanh(-0.5), 0, math.Tanh(0.5), math.Tanh(2)}},
		{tensor.Sigmoid, []float64{
			1 / (1 + math.Exp(2)), 1 / (1 + math.Exp(0.5)), 0.5, 1 / (1 + math.Exp(-0.5)), 1 / (1 + math.Exp(-2)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.act.String(), func(t *testing.T) {
			out := backend.Activate(x, tt.act)
			assert.InDeltaSlice(t, tt.want, out.Data(), 1e-12)
		})
	}
}

func TestActivate_GELU(t *testing.T) {
	backend := New()
	x := raw(t, []float64{-1, 0, 1, 3}, 4)

	out := backend.Activate(x, tensor.GELU).Data()
	for i, v := range x.Data() {
		exact := v / 2 * (1 + math.Erf(v/math.Sqrt2))
		assert.InDelta(t, exact, out[i], 1e-6, "gelu(%v)", v)
	}
	assert.Equal(t, 0.0, out[1])
}

func TestErf_OddSymmetry(t *testing.T) {
	for _, v := range []float64{0.1, 0.7, 1.3, 2.5} {
		assert.InDelta(t, -Erf(v), Erf(-v), 1e-15)
		assert.InDelta(t, math.Erf(v), Erf(v), 2e-7)
	}
}

func TestActivate_UnknownPanics(t *testing.T) {
	backend := New()
	x := raw(t, []float64{1}, 1)
	assert.Panics(t, func() { backend.Activate(x, tensor.ActivationUnknown) })
}

func TestSpatial_ParallelMatchesSequential(t *testing.T) {
	seq := NewWithConfig(parallel.Sequential())
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 3})

	const w, h, d, k = 9, 7, 3, 4
	in := make([]float64, w*h*d)
	for i := range in {
		in[i] = math.Sin(float64(i))
	}
	f := make([]float64, 3*3*d*k)
	for i := range f {
		f[i] = math.Cos(float64(i))
	}
	input := raw(t, in, w, h, d)
	filter := raw(t, f, 3, 3, d, k)

	stride, pad, out := [2]int{2, 1}, [2]int{1, 1}, [2]int{5, 7}
	assert.Equal(t,
		seq.Conv2D(input, filter, stride, pad, out).Data(),
		par.Conv2D(input, filter, stride, pad, out).Data())

	size, pool := [2]int{2, 2}, [2]int{5, 4}
	assert.Equal(t,
		seq.MaxPool2D(input, size, size, [2]int{0, 0}, pool).Data(),
		par.MaxPool2D(input, size, size, [2]int{0, 0}, pool).Data())
}
