package layers

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/emanuele-moscato/cv-explorations/tensor"
	"github.com/emanuele-moscato/cv-explorations/utils"
)

type PoolArgs struct {
	// The size of the area that will be pooled, in each spatial dimension: {width, height}
	// defaults to {2, 2} if nil
	Pool []int

	// The number of inputs per step of the window, in each spatial dimension
	// defaults to 'Pool' if nil, so that windows don't overlap
	Stride []int

	// Either PaddingValid (the default) or PaddingSame. Padded positions never win the max.
	Padding string
}

// MaxPool2D takes the maximum over each window, for each channel separately
type MaxPool2D struct {
	pool    [2]int
	stride  [2]int
	padding string
}

// MaxPool checks the arguments and returns the layer
func MaxPool(args PoolArgs) (*MaxPool2D, error) {
	p := new(MaxPool2D)

	var err error
	if p.pool, err = pair("Pool", args.Pool, [2]int{2, 2}); err != nil {
		return nil, errors.Wrap(err, "Can't make maxpool2d layer")
	}
	if p.stride, err = pair("Stride", args.Stride, p.pool); err != nil {
		return nil, errors.Wrap(err, "Can't make maxpool2d layer")
	}
	if p.padding, err = checkPadding(args.Padding); err != nil {
		return nil, errors.Wrap(err, "Can't make maxpool2d layer")
	}

	return p, nil
}

func (p *MaxPool2D) TypeString() string {
	return "maxpool2d"
}

// Pool returns the {width, height} of the window
func (p *MaxPool2D) Pool() [2]int {
	return p.pool
}

func (p *MaxPool2D) Stride() [2]int {
	return p.stride
}

// OutputShape returns the shape of the output, given the shape of the input
func (p *MaxPool2D) OutputShape(in []int) ([]int, error) {
	if err := checkRank4(in); err != nil {
		return nil, errors.Wrap(err, "maxpool2d")
	}

	out := []int{in[0], 0, 0, in[3]}
	for i, axis := range spatialAxes {
		o, _, err := outputLength(in[axis], p.pool[i], p.stride[i], p.padding)
		if err != nil {
			return nil, errors.Wrapf(err, "maxpool2d, shape %v, axis %d", in, axis)
		}
		out[axis] = o
	}

	return out, nil
}

// Call pools every image in the batch
func (p *MaxPool2D) Call(x *tensor.Tensor) (*tensor.Tensor, error) {
	in := x.Shape()
	outDims, err := p.OutputShape(in)
	if err != nil {
		return nil, err
	}

	out, err := tensor.New(outDims...)
	if err != nil {
		return nil, errors.Wrap(err, "maxpool2d")
	}

	if out.Len() == 0 {
		return out, nil
	}

	_, padW, _ := outputLength(in[1], p.pool[0], p.stride[0], p.padding)
	_, padH, _ := outputLength(in[2], p.pool[1], p.stride[1], p.padding)

	inW, inH, ch := in[1], in[2], in[3]
	outW, outH := outDims[1], outDims[2]

	evaluate := func(n int) {
		src := x.Sub(n).Data()
		dst := out.Sub(n).Data()
		window := make([]float64, 0, p.pool[0]*p.pool[1])

		for ox := 0; ox < outW; ox++ {
			for oy := 0; oy < outH; oy++ {
				for c := 0; c < ch; c++ {
					window = window[:0]

					for kx := 0; kx < p.pool[0]; kx++ {
						ix := ox*p.stride[0] + kx - padW
						if ix < 0 || ix >= inW {
							continue
						}
						for ky := 0; ky < p.pool[1]; ky++ {
							iy := oy*p.stride[1] + ky - padH
							if iy < 0 || iy >= inH {
								continue
							}
							window = append(window, src[(ix*inH+iy)*ch+c])
						}
					}

					dst[(ox*outH+oy)*ch+c] = floats.Max(window)
				}
			}
		}
	}

	opsPerThread, threadsPerCPU := 1, 1
	utils.MultiThread(0, outDims[0], evaluate, opsPerThread, threadsPerCPU)

	return out, nil
}
