package layers

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	cv "github.com/emanuele-moscato/cv-explorations"
	"github.com/emanuele-moscato/cv-explorations/tensor"
)

var (
	_ cv.Layer = (*Conv2D)(nil)
	_ cv.Layer = (*MaxPool2D)(nil)
)

func randomTensor(rng *rand.Rand, dims ...int) *tensor.Tensor {
	x := tensor.Must(tensor.New(dims...))
	for i := range x.Data() {
		x.Data()[i] = rng.NormFloat64()
	}
	return x
}

// naiveConv is the textbook definition, for checking the im2col version against
func naiveConv(x *tensor.Tensor, w *mat.Dense, b []float64, k, s [2]int, pad [2]int, outDims []int, act ActivationFunc) *tensor.Tensor {
	out := tensor.Must(tensor.New(outDims...))
	in := x.Shape()
	for n := 0; n < outDims[0]; n++ {
		for ox := 0; ox < outDims[1]; ox++ {
			for oy := 0; oy < outDims[2]; oy++ {
				for f := 0; f < outDims[3]; f++ {
					sum := b[f]
					for kx := 0; kx < k[0]; kx++ {
						for ky := 0; ky < k[1]; ky++ {
							ix, iy := ox*s[0]+kx-pad[0], oy*s[1]+ky-pad[1]
							if ix < 0 || ix >= in[1] || iy < 0 || iy >= in[2] {
								continue
							}
							for c := 0; c < in[3]; c++ {
								sum += x.At(n, ix, iy, c) * w.At((kx*k[1]+ky)*in[3]+c, f)
							}
						}
					}
					out.Set(act(sum), n, ox, oy, f)
				}
			}
		}
	}
	return out
}

func TestConvRejectsBadArgs(t *testing.T) {
	for _, f := range []int{0, -3} {
		_, err := Conv(ConvArgs{Filters: f})
		require.Error(t, err)
		assert.Equal(t, ErrBadFilterCount, errors.Cause(err))
	}

	_, err := Conv(ConvArgs{Filters: 1, Kernel: []int{3}})
	assert.True(t, errors.Is(err, ErrBadArgs))

	_, err = Conv(ConvArgs{Filters: 1, Stride: []int{1, 0}})
	assert.True(t, errors.Is(err, ErrBadArgs))

	_, err = Conv(ConvArgs{Filters: 1, Padding: "full"})
	assert.True(t, errors.Is(err, ErrBadArgs))

	_, err = Conv(ConvArgs{Filters: 1, Activation: "sigmoidish"})
	assert.True(t, errors.Is(err, ErrUnknownAct))
}

func TestConvHandComputed(t *testing.T) {
	c, err := Conv(ConvArgs{Filters: 1, Activation: "relu"})
	require.NoError(t, err)

	ones := make([]float64, 9)
	for i := range ones {
		ones[i] = 1
	}
	require.NoError(t, c.SetWeights(mat.NewDense(9, 1, ones), []float64{-40}))

	// 4x4 single channel image holding 0..15
	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i)
	}
	x := tensor.Must(tensor.FromSlice(data, 1, 4, 4, 1))

	y, err := c.Call(x)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 2, 1}, y.Shape())

	// window sums are 45, 54, 81, 90; minus the bias of 40, and no negatives
	assert.Equal(t, []float64{5, 14, 41, 50}, y.Data())
}

func TestConvMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	cases := []struct {
		name    string
		args    ConvArgs
		in      []int
		out     []int
		padding [2]int
	}{
		{"valid 3x3", ConvArgs{Filters: 4, Activation: "relu"}, []int{2, 7, 6, 3}, []int{2, 5, 4, 4}, [2]int{}},
		{"valid strided", ConvArgs{Filters: 2, Stride: []int{2, 2}}, []int{1, 9, 8, 2}, []int{1, 4, 3, 2}, [2]int{}},
		{"same", ConvArgs{Filters: 3, Padding: PaddingSame, Kernel: []int{3, 5}}, []int{3, 5, 6, 2}, []int{3, 5, 6, 3}, [2]int{1, 2}},
		{"same strided", ConvArgs{Filters: 1, Padding: PaddingSame, Stride: []int{2, 2}}, []int{1, 6, 5, 1}, []int{1, 3, 3, 1}, [2]int{0, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.args.Rand = rng
			c, err := Conv(tc.args)
			require.NoError(t, err)

			shape, err := c.OutputShape(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.out, shape)

			x := randomTensor(rng, tc.in...)
			y, err := c.Call(x)
			require.NoError(t, err)
			require.Equal(t, tc.out, y.Shape())

			w, b := c.Weights()
			want := naiveConv(x, w, b, c.kernel, c.stride, tc.padding, tc.out, c.act)
			assert.InDeltaSlice(t, want.Data(), y.Data(), 1e-9)
		})
	}
}

func TestConvBuildsOnceForChannels(t *testing.T) {
	c, err := Conv(ConvArgs{Filters: 8, Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	assert.False(t, c.Built())
	assert.Zero(t, c.NumParams())
	assert.Equal(t, 3*3*3*8+8, c.ParamsFor(3))

	_, err = c.Call(tensor.Must(tensor.New(1, 5, 5, 3)))
	require.NoError(t, err)
	assert.True(t, c.Built())
	assert.Equal(t, 3*3*3*8+8, c.NumParams())

	_, b := c.Weights()
	assert.Equal(t, make([]float64, 8), b)

	_, err = c.Call(tensor.Must(tensor.New(1, 5, 5, 4)))
	require.Error(t, err)
	assert.Equal(t, ErrChannelMismatch, errors.Cause(err))
}

func TestConvNoBias(t *testing.T) {
	c, err := Conv(ConvArgs{Filters: 2, NoBias: true, Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	assert.Equal(t, 3*3*3*2, c.ParamsFor(3))

	_, err = c.Call(tensor.Must(tensor.New(1, 4, 4, 3)))
	require.NoError(t, err)
	assert.Equal(t, 3*3*3*2, c.NumParams())

	_, b := c.Weights()
	assert.Equal(t, []float64{0, 0}, b)
}

func TestConvConcurrentFirstCalls(t *testing.T) {
	c, err := Conv(ConvArgs{Filters: 2, Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)

	x := randomTensor(rand.New(rand.NewSource(2)), 2, 6, 6, 3)

	var wg sync.WaitGroup
	results := make([]*tensor.Tensor, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			y, err := c.Call(x)
			assert.NoError(t, err)
			results[i] = y
		}(i)
	}
	wg.Wait()

	for _, y := range results[1:] {
		assert.Equal(t, results[0].Data(), y.Data())
	}
}

func TestConvInputTooSmall(t *testing.T) {
	c, err := Conv(ConvArgs{Filters: 1})
	require.NoError(t, err)

	_, err = c.Call(tensor.Must(tensor.New(1, 2, 5, 1)))
	require.Error(t, err)
	assert.Equal(t, ErrInputTooSmall, errors.Cause(err))

	_, err = c.OutputShape([]int{5, 5, 1})
	assert.Error(t, err)
}

func TestMaxPool(t *testing.T) {
	p, err := MaxPool(PoolArgs{})
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 2}, p.Pool())
	assert.Equal(t, [2]int{2, 2}, p.Stride())

	// 5x4 image with 2 channels; channel 1 is the negation of channel 0
	x := tensor.Must(tensor.New(1, 5, 4, 2))
	for ix := 0; ix < 5; ix++ {
		for iy := 0; iy < 4; iy++ {
			v := float64(ix*4 + iy)
			x.Set(v, 0, ix, iy, 0)
			x.Set(-v, 0, ix, iy, 1)
		}
	}

	y, err := p.Call(x)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 2, 2}, y.Shape())

	assert.Equal(t, 5.0, y.At(0, 0, 0, 0))
	assert.Equal(t, 7.0, y.At(0, 0, 1, 0))
	assert.Equal(t, 13.0, y.At(0, 1, 0, 0))
	assert.Equal(t, 15.0, y.At(0, 1, 1, 0))
	assert.Equal(t, 0.0, y.At(0, 0, 0, 1))
	assert.Equal(t, -10.0, y.At(0, 1, 1, 1))
}

func TestMaxPoolSamePadding(t *testing.T) {
	p, err := MaxPool(PoolArgs{Padding: PaddingSame})
	require.NoError(t, err)

	x := tensor.Must(tensor.FromSlice([]float64{-1, -2, -3, -4, -5, -6, -7, -8, -9}, 1, 3, 3, 1))
	y, err := p.Call(x)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 2, 1}, y.Shape())

	// padding never wins the max, even against negative values
	assert.Equal(t, []float64{-1, -3, -7, -9}, y.Data())
}

func TestMaxPoolTooSmall(t *testing.T) {
	p, err := MaxPool(PoolArgs{})
	require.NoError(t, err)

	_, err = p.Call(tensor.Must(tensor.New(1, 1, 4, 3)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputTooSmall))

	_, err = MaxPool(PoolArgs{Pool: []int{0, 2}})
	assert.True(t, errors.Is(err, ErrBadArgs))
}

func TestActivations(t *testing.T) {
	relu, err := Activation("relu")
	require.NoError(t, err)
	assert.Equal(t, 0.0, relu(-3))
	assert.Equal(t, 2.5, relu(2.5))

	lin, err := Activation("")
	require.NoError(t, err)
	assert.Equal(t, -3.0, lin(-3))

	assert.InDelta(t, -0.3, LeakyReLU(0.3)(-1), 1e-12)
	assert.InDelta(t, math.Exp(-1)-1, ELU(1)(-1), 1e-12)
	assert.InDelta(t, math.Log(2), Softplus(0), 1e-12)

	assert.Contains(t, Activations(), "relu")

	_, err = Activation("nope")
	assert.Equal(t, ErrUnknownAct, errors.Cause(err))
}
