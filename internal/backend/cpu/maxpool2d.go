package cpu

import (
	"fmt"

	"github.com/born-ml/chainnet/internal/parallel"
	"github.com/born-ml/chainnet/internal/tensor"
)

// MaxPool2D performs 2D max pooling in channels-last layout.
//
// Input shape:  [W, H, D]
// Output shape: [outW, outH, D]
//
// Window cells that fall outside the input contribute the value 0 to the
// maximum. They are neither skipped nor treated as -Inf, so a border window
// whose in-range values are all negative pools to 0. The execution target
// computes it this way and the engine must agree with it.
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, size, stride, pad, out [2]int) *tensor.RawTensor {
	inShape := input.Shape()
	if len(inShape) != 3 {
		panic(fmt.Sprintf("maxpool2d: input must be 3D [W,H,D], got %dD", len(inShape)))
	}
	if size[0] <= 0 || size[1] <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid pool size %v", size))
	}
	if stride[0] <= 0 || stride[1] <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %v", stride))
	}

	W, H, D := inShape[0], inShape[1], inShape[2]
	result := tensor.MustRaw(tensor.Shape{out[0], out[1], D})
	src := input.Data()
	dst := result.Data()

	parallel.ForGrid(out[0], out[1], func(x, y int) {
		for d := 0; d < D; d++ {
			first := true
			var best float64
			for dx := 0; dx < size[0]; dx++ {
				for dy := 0; dy < size[1]; dy++ {
					ix := x*stride[0] + dx - pad[0]
					iy := y*stride[1] + dy - pad[1]

					v := 0.0
					if ix >= 0 && ix < W && iy >= 0 && iy < H {
						v = src[(ix*H+iy)*D+d]
					}
					if first || v > best {
						best = v
						first = false
					}
				}
			}
			dst[(x*out[1]+y)*D+d] = best
		}
	}, cpu.parallel)

	return result
}
