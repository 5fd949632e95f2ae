package layers

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/emanuele-moscato/cv-explorations/initializers"
	"github.com/emanuele-moscato/cv-explorations/tensor"
	"github.com/emanuele-moscato/cv-explorations/utils"
)

// used to provide to the constructor (Conv())
// has provided public fields to allow for simplified and more easily readible syntax
type ConvArgs struct {
	// The number of filters, which becomes the number of output channels
	// Conv() will return error if this is < 1
	Filters int

	// The size of the filter in each spatial dimension: {width, height}
	// defaults to {3, 3} if nil
	Kernel []int

	// The number of inputs per step of the filter, in each spatial dimension
	// defaults to {1, 1} if nil
	Stride []int

	// Either PaddingValid (the default) or PaddingSame
	Padding string

	// The name of the activation applied to every output; see Activation()
	// defaults to "linear"
	Activation string

	// whether or not filters go without a bias
	NoBias bool

	// how the filter weights are set when the layer is built
	// defaults to initializers.Default()
	Init initializers.Initializer

	// source of randomness for Init. It is only used while building, under a lock, but should not be
	// shared with other layers that may build at the same time.
	// defaults to one seeded from the clock
	Rand *rand.Rand
}

// Conv2D is a 2D convolutional layer over (batch, width, height, channels) tensors.
//
// Its weights are allocated lazily, by the first call to Call, because the number of input
// channels is not known until then. After that, the number of input channels is fixed.
type Conv2D struct {
	filters int
	kernel  [2]int
	stride  [2]int
	padding string
	actName string
	act     ActivationFunc
	biased  bool
	init    initializers.Initializer
	rng     *rand.Rand

	mux        sync.Mutex
	built      bool
	inChannels int

	// (kernel area * input channels) x filters
	weights *mat.Dense
	biases  []float64
}

// Conv checks the arguments and returns the unbuilt layer
func Conv(args ConvArgs) (*Conv2D, error) {
	if args.Filters < 1 {
		return nil, errors.Wrapf(ErrBadFilterCount, "Can't make conv2d layer, filters = %d", args.Filters)
	}

	c := &Conv2D{
		filters: args.Filters,
		actName: args.Activation,
		biased:  !args.NoBias,
		init:    args.Init,
		rng:     args.Rand,
	}

	var err error
	if c.kernel, err = pair("Kernel", args.Kernel, [2]int{3, 3}); err != nil {
		return nil, errors.Wrap(err, "Can't make conv2d layer")
	}
	if c.stride, err = pair("Stride", args.Stride, [2]int{1, 1}); err != nil {
		return nil, errors.Wrap(err, "Can't make conv2d layer")
	}
	if c.padding, err = checkPadding(args.Padding); err != nil {
		return nil, errors.Wrap(err, "Can't make conv2d layer")
	}
	if c.act, err = Activation(args.Activation); err != nil {
		return nil, errors.Wrap(err, "Can't make conv2d layer")
	}

	if c.actName == "" {
		c.actName = "linear"
	}
	if c.init == nil {
		c.init = initializers.Default()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return c, nil
}

func (c *Conv2D) TypeString() string {
	return "conv2d"
}

// Filters returns the number of output channels
func (c *Conv2D) Filters() int {
	return c.filters
}

// Kernel returns the {width, height} of the filters
func (c *Conv2D) Kernel() [2]int {
	return c.kernel
}

func (c *Conv2D) ActivationName() string {
	return c.actName
}

// Built returns whether or not the weights have been allocated
func (c *Conv2D) Built() bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.built
}

// NumParams returns the number of weights and biases, or 0 if the layer hasn't been built
func (c *Conv2D) NumParams() int {
	c.mux.Lock()
	defer c.mux.Unlock()

	if !c.built {
		return 0
	}

	return c.paramsFor(c.inChannels)
}

func (c *Conv2D) paramsFor(inChannels int) int {
	n := c.kernel[0] * c.kernel[1] * inChannels * c.filters
	if c.biased {
		n += c.filters
	}
	return n
}

// ParamsFor returns the number of weights and biases the layer has (or will have) once built
// for the given number of input channels
func (c *Conv2D) ParamsFor(inChannels int) int {
	return c.paramsFor(inChannels)
}

// Weights returns a copy of the filter weights, as a (kernel area * input channels) x filters
// matrix, and the biases. Both are nil if the layer hasn't been built.
func (c *Conv2D) Weights() (*mat.Dense, []float64) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if !c.built {
		return nil, nil
	}

	w := mat.DenseCopyOf(c.weights)
	b := make([]float64, len(c.biases))
	copy(b, c.biases)
	return w, b
}

// SetWeights replaces the weights, building the layer for the number of input channels implied
// by the shape of 'w'. 'b' is ignored if the layer has no biases.
func (c *Conv2D) SetWeights(w *mat.Dense, b []float64) error {
	r, cols := w.Dims()
	area := c.kernel[0] * c.kernel[1]
	if cols != c.filters || r%area != 0 {
		return errors.Wrapf(ErrBadArgs, "Can't set conv2d weights, expected (%d * channels) x %d, got %d x %d", area, c.filters, r, cols)
	}
	if c.biased && len(b) != c.filters {
		return errors.Wrapf(ErrBadArgs, "Can't set conv2d biases, expected %d, got %d", c.filters, len(b))
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	if c.built && c.inChannels != r/area {
		return errors.Wrapf(ErrChannelMismatch, "Can't set conv2d weights for %d channels, built for %d", r/area, c.inChannels)
	}

	c.weights = mat.DenseCopyOf(w)
	c.biases = make([]float64, c.filters)
	if c.biased {
		copy(c.biases, b)
	}
	c.inChannels = r / area
	c.built = true
	return nil
}

// build allocates and initializes the weights, if they haven't been yet
func (c *Conv2D) build(inChannels int) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.built {
		if inChannels != c.inChannels {
			return errors.Wrapf(ErrChannelMismatch, "conv2d built for %d channels, given %d", c.inChannels, inChannels)
		}
		return nil
	}

	if inChannels < 1 {
		return errors.Wrapf(ErrInputTooSmall, "Can't build conv2d layer for %d input channels", inChannels)
	}

	area := c.kernel[0] * c.kernel[1]
	fanIn, fanOut := area*inChannels, area*c.filters

	ws := make([]float64, fanIn*c.filters)
	c.init.Set(fanIn, fanOut, c.rng, ws)

	c.weights = mat.NewDense(fanIn, c.filters, ws)
	c.biases = make([]float64, c.filters)
	c.inChannels = inChannels
	c.built = true
	return nil
}

// OutputShape returns the shape of the output, given the shape of the input
func (c *Conv2D) OutputShape(in []int) ([]int, error) {
	if err := checkRank4(in); err != nil {
		return nil, errors.Wrap(err, "conv2d")
	}

	out := []int{in[0], 0, 0, c.filters}
	for i, axis := range spatialAxes {
		o, _, err := outputLength(in[axis], c.kernel[i], c.stride[i], c.padding)
		if err != nil {
			return nil, errors.Wrapf(err, "conv2d, shape %v, axis %d", in, axis)
		}
		out[axis] = o
	}

	return out, nil
}

// Call applies the convolution and the activation to every image in the batch
func (c *Conv2D) Call(x *tensor.Tensor) (*tensor.Tensor, error) {
	in := x.Shape()
	outDims, err := c.OutputShape(in)
	if err != nil {
		return nil, err
	}

	if err := c.build(in[3]); err != nil {
		return nil, err
	}

	out, err := tensor.New(outDims...)
	if err != nil {
		return nil, errors.Wrap(err, "conv2d")
	}

	if out.Len() == 0 {
		return out, nil
	}

	_, padW, _ := outputLength(in[1], c.kernel[0], c.stride[0], c.padding)
	_, padH, _ := outputLength(in[2], c.kernel[1], c.stride[1], c.padding)

	evaluate := func(n int) {
		cols := c.im2col(x.Sub(n), outDims[1], outDims[2], padW, padH)

		dst := out.Sub(n).Matrix()
		dst.Mul(cols, c.weights)

		rows, _ := dst.Dims()
		for r := 0; r < rows; r++ {
			row := dst.RawRowView(r)
			for f := range row {
				row[f] = c.act(row[f] + c.biases[f])
			}
		}
	}

	opsPerThread, threadsPerCPU := 1, 1
	utils.MultiThread(0, outDims[0], evaluate, opsPerThread, threadsPerCPU)

	return out, nil
}

// im2col lays out every window of the image as a row, so that the convolution is a single
// matrix product with the weights
//
// rows are ordered (out x, out y); columns are ordered (kernel x, kernel y, channel), the same
// as the rows of the weights
func (c *Conv2D) im2col(img *tensor.Tensor, outW, outH, padW, padH int) *mat.Dense {
	inW, inH, ch := img.Dim(0), img.Dim(1), img.Dim(2)
	data := img.Data()

	width := c.kernel[0] * c.kernel[1] * ch
	cols := make([]float64, outW*outH*width)

	for ox := 0; ox < outW; ox++ {
		for oy := 0; oy < outH; oy++ {
			row := cols[(ox*outH+oy)*width:]

			for kx := 0; kx < c.kernel[0]; kx++ {
				ix := ox*c.stride[0] + kx - padW
				for ky := 0; ky < c.kernel[1]; ky++ {
					iy := oy*c.stride[1] + ky - padH

					// zero padding is already in place
					if ix < 0 || ix >= inW || iy < 0 || iy >= inH {
						continue
					}

					start := (ix*inH + iy) * ch
					copy(row[(kx*c.kernel[1]+ky)*ch:], data[start:start+ch])
				}
			}
		}
	}

	return mat.NewDense(outW*outH, width, cols)
}
