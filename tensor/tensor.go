// Package tensor provides dense, n-dimensional arrays of float64, stored row-major.
//
// Image batches are laid out as (batch, width, height, channels), the same order the rest of the
// module uses. Values are held in a gorgonia-style *tensor.Dense (see Dense and FromDense),
// while individual images or slices of a batch can be viewed as gonum matrices with Matrix,
// which is how the convolution kernels multiply them.
package tensor

import (
	"fmt"

	gt "github.com/pdevine/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by the tensor package. They are usually wrapped; use errors.Cause (or
// errors.Is) to check for them.
var (
	ErrNegativeDim   = errors.New("negative dimension")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrWrongDtype    = errors.New("wrong dtype")
)

// Tensor is a dense n-dimensional array
type Tensor struct {
	shape *Shape

	// dense shares 'data' as its backing; nil if the tensor holds no values
	dense *gt.Dense
	data  []float64
}

func wrap(s *Shape, data []float64) *Tensor {
	t := &Tensor{shape: s, data: data}
	if len(data) != 0 {
		t.dense = gt.New(gt.WithShape(s.Dims...), gt.WithBacking(data))
	}

	return t
}

// New returns a zero-filled Tensor with the given dimensions
func New(dims ...int) (*Tensor, error) {
	s, err := NewShape(dims...)
	if err != nil {
		return nil, err
	}

	return wrap(s, make([]float64, s.Size())), nil
}

// FromSlice wraps the given data as a Tensor with the given dimensions. The slice is not copied.
//
// returns ErrShapeMismatch if len(data) is not the product of the dimensions
func FromSlice(data []float64, dims ...int) (*Tensor, error) {
	s, err := NewShape(dims...)
	if err != nil {
		return nil, err
	}

	if s.Size() != len(data) {
		return nil, errors.Wrapf(ErrShapeMismatch, "Can't make tensor, %d values do not fill shape %v", len(data), dims)
	}

	return wrap(s, data), nil
}

// FromDense copies a float64 *tensor.Dense into a Tensor with the same shape.
//
// returns ErrWrongDtype for any other dtype
func FromDense(d *gt.Dense) (*Tensor, error) {
	if d.Dtype() != gt.Float64 {
		return nil, errors.Wrapf(ErrWrongDtype, "Can't make tensor from %v dense", d.Dtype())
	}

	var data []float64
	switch v := d.Data().(type) {
	case []float64:
		data = make([]float64, len(v))
		copy(data, v)
	case float64:
		data = []float64{v}
	default:
		return nil, errors.Wrapf(ErrWrongDtype, "Can't make tensor from %T", v)
	}

	return FromSlice(data, d.Shape()...)
}

// Must panics if err is not nil. Useful for tests and package-level variables.
func Must(t *Tensor, err error) *Tensor {
	if err != nil {
		panic(err)
	}

	return t
}

// Dense returns the *tensor.Dense holding the values, sharing data with the tensor. It is nil
// if the tensor has no values.
func (t *Tensor) Dense() *gt.Dense {
	return t.dense
}

// Shape returns a copy of the dimensions of the tensor
func (t *Tensor) Shape() []int {
	dims := make([]int, len(t.shape.Dims))
	copy(dims, t.shape.Dims)
	return dims
}

// Dim returns the size of a single dimension
func (t *Tensor) Dim(d int) int {
	return t.shape.Dims[d]
}

// Rank returns the number of dimensions
func (t *Tensor) Rank() int {
	return t.shape.Rank()
}

// Len returns the number of values
func (t *Tensor) Len() int {
	return len(t.data)
}

// Data returns the backing slice. Changes to it are reflected in the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

func (t *Tensor) checkPoint(idx []int) error {
	if !t.shape.InBounds(idx) {
		return errors.Wrapf(ErrShapeMismatch, "Index %v is not in shape %v", idx, t.shape.Dims)
	}

	return nil
}

// At returns the value at the given point. It panics if the point is not inside the tensor.
func (t *Tensor) At(idx ...int) float64 {
	if err := t.checkPoint(idx); err != nil {
		panic(err)
	}

	return t.data[t.shape.Index(idx)]
}

// Set sets the value at the given point. It panics if the point is not inside the tensor.
func (t *Tensor) Set(v float64, idx ...int) {
	if err := t.checkPoint(idx); err != nil {
		panic(err)
	}

	t.data[t.shape.Index(idx)] = v
}

// Apply replaces every value 'v' with f(v), in place, and returns the tensor
func (t *Tensor) Apply(f func(float64) float64) *Tensor {
	for i, v := range t.data {
		t.data[i] = f(v)
	}

	return t
}

// Clone returns a deep copy of the tensor
func (t *Tensor) Clone() *Tensor {
	if t.dense == nil {
		return wrap(t.shape, nil)
	}

	c, err := FromDense(t.dense.Clone().(*gt.Dense))
	if err != nil {
		panic(errors.Wrap(err, "Can't clone tensor"))
	}

	return c
}

// Reshape returns a tensor sharing the same data, with new dimensions of the same total size
func (t *Tensor) Reshape(dims ...int) (*Tensor, error) {
	r, err := FromSlice(t.data, dims...)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't reshape %v to %v", t.shape.Dims, dims)
	}

	return r, nil
}

// Sub returns the i-th entry along the first dimension, sharing data with the tensor.
// For a batch of images, this is a single image.
func (t *Tensor) Sub(i int) *Tensor {
	if t.Rank() == 0 || i < 0 || i >= t.shape.Dims[0] {
		panic(errors.Wrapf(ErrShapeMismatch, "Can't take entry %d of shape %v", i, t.shape.Dims))
	}

	stride := t.shape.Strides[0]
	sub, _ := FromSlice(t.data[i*stride:(i+1)*stride], t.shape.Dims[1:]...)
	return sub
}

// Matrix views the tensor as a gonum matrix, with all but the last dimension collapsed into rows.
// The matrix shares data with the tensor.
func (t *Tensor) Matrix() *mat.Dense {
	if t.Rank() == 0 || t.Len() == 0 {
		panic(errors.Wrapf(ErrShapeMismatch, "Can't view shape %v as a matrix", t.shape.Dims))
	}

	cols := t.shape.Dims[t.Rank()-1]
	return mat.NewDense(t.Len()/cols, cols, t.data)
}

// Max returns the largest value. Panics on an empty tensor.
func (t *Tensor) Max() float64 {
	return floats.Max(t.data)
}

// Min returns the smallest value. Panics on an empty tensor.
func (t *Tensor) Min() float64 {
	return floats.Min(t.data)
}

// Sum returns the sum of all values
func (t *Tensor) Sum() float64 {
	return floats.Sum(t.data)
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape.Dims)
}
