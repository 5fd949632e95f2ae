package tensor

import (
	"github.com/pkg/errors"
)

// Shape maps n-dimensional points onto indexes of a flat slice.
//
// stored row-major, such that the last dimension oscillates the fastest:
// for dims {2, 3}, the order is (0,0) (0,1) (0,2) (1,0) ...
//
// the fields are made public in order to allow exporting to JSON,
// but they should not actually be altered once it has been initialized
type Shape struct {
	// the size of each dimension
	Dims []int

	// the number of values spanned by a step of 1 in each dimension
	// -- Strides[end] = 1; Strides[0] * Dims[0] = Size()
	// initialized by the constructor -- should not be provided
	Strides []int
}

// NewShape creates a new Shape with the given dimensions, which are copied.
//
// returns ErrNegativeDim if any dimension is < 0. A dimension of 0 is allowed, and makes a shape
// with no values. A Shape with no dimensions is a scalar, and has size 1.
func NewShape(dims ...int) (*Shape, error) {
	for i, d := range dims {
		if d < 0 {
			return nil, errors.Wrapf(ErrNegativeDim, "Can't make shape %v, dims[%d] = %d", dims, i, d)
		}
	}

	s := &Shape{
		Dims:    make([]int, len(dims)),
		Strides: make([]int, len(dims)),
	}
	copy(s.Dims, dims)

	stride := 1
	for i := len(dims) - 1; i >= 0; i-- {
		s.Strides[i] = stride
		stride *= dims[i]
	}

	return s, nil
}

// returns the index corresponding to the given point
// assumes that the point has the same number of dimensions as 's' and is in bounds
func (s *Shape) Index(point []int) int {
	index := 0
	for i, p := range point {
		index += p * s.Strides[i]
	}

	return index
}

// returns the multi-dimensional point leading to the given index in the flat slice
//
// assumes that the given index will be in bounds
func (s *Shape) Point(index int) []int {
	p := make([]int, len(s.Dims))
	for i := range p {
		p[i] = index / s.Strides[i]
		index %= s.Strides[i]
	}

	return p
}

// Size returns the total number of values described by the shape
func (s *Shape) Size() int {
	size := 1
	for _, d := range s.Dims {
		size *= d
	}

	return size
}

// Rank is the number of dimensions
func (s *Shape) Rank() int {
	return len(s.Dims)
}

func (s *Shape) Dim(d int) int {
	return s.Dims[d]
}

// Increments the given point by 1, in the same order as the flat slice
// assumes that len(point) = len(dims)
//
// if it overflows, the point is reset to all zeros
// returns false if it overflows, else returns true
func (s *Shape) Increment(point []int) bool {
	for i := len(point) - 1; i >= 0; i-- {
		point[i]++
		if point[i] < s.Dims[i] {
			return true
		}

		point[i] = 0
	}

	return false
}

// InBounds returns whether or not the point is within the shape
func (s *Shape) InBounds(point []int) bool {
	if len(point) != len(s.Dims) {
		return false
	}

	for i, p := range point {
		if p < 0 || p >= s.Dims[i] {
			return false
		}
	}

	return true
}

// Equal returns whether the two shapes have identical dimensions
func (s *Shape) Equal(other *Shape) bool {
	return EqualDims(s.Dims, other.Dims)
}

// EqualDims compares two lists of dimensions
func EqualDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
