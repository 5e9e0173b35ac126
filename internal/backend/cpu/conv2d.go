package cpu

import (
	"fmt"

	"github.com/born-ml/chainnet/internal/parallel"
	"github.com/born-ml/chainnet/internal/tensor"
)

// Conv2D performs 2D convolution in channels-last layout.
//
// Input shape:  [W, H, D]
// Filter shape: [Fw, Fh, D, K]
// Output shape: [outW, outH, K]
//
// For every output cell (x, y, k):
//
//	out[x,y,k] = sum over dx, dy, d of in[x*sw+dx-padW, y*sh+dy-padH, d] * filter[dx,dy,d,k]
//
// Source indices outside the input contribute zero. This is implicit
// zero-padding at the true edges, so a window that overhangs only the right
// or bottom border (as "same" padding with odd totals produces) is handled
// without materializing a padded copy.
func (cpu *CPUBackend) Conv2D(input, filter *tensor.RawTensor, stride, pad, out [2]int) *tensor.RawTensor {
	inShape := input.Shape()
	fShape := filter.Shape()

	if len(inShape) != 3 {
		panic(fmt.Sprintf("conv2d: input must be 3D [W,H,D], got %dD", len(inShape)))
	}
	if len(fShape) != 4 {
		panic(fmt.Sprintf("conv2d: filter must be 4D [Fw,Fh,D,K], got %dD", len(fShape)))
	}

	W, H, D := inShape[0], inShape[1], inShape[2]
	FW, FH, FD, K := fShape[0], fShape[1], fShape[2], fShape[3]
	if D != FD {
		panic(fmt.Sprintf("conv2d: input channels %d != filter channels %d", D, FD))
	}
	if stride[0] <= 0 || stride[1] <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %v", stride))
	}

	result := tensor.MustRaw(tensor.Shape{out[0], out[1], K})
	src := input.Data()
	kernel := filter.Data()
	dst := result.Data()

	parallel.ForGrid(out[0], out[1], func(x, y int) {
		acc := dst[(x*out[1]+y)*K : (x*out[1]+y+1)*K]
		for dx := 0; dx < FW; dx++ {
			ix := x*stride[0] + dx - pad[0]
			if ix < 0 || ix >= W {
				continue
			}
			for dy := 0; dy < FH; dy++ {
				iy := y*stride[1] + dy - pad[1]
				if iy < 0 || iy >= H {
					continue
				}
				for d := 0; d < D; d++ {
					v := src[(ix*H+iy)*D+d]
					if v == 0 {
						continue
					}
					base := ((dx*FH+dy)*D + d) * K
					for k := 0; k < K; k++ {
						acc[k] += v * kernel[base+k]
					}
				}
			}
		}
	}, cpu.parallel)

	return result
}
