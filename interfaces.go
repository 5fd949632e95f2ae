package cvexp

import (
	"github.com/emanuele-moscato/cv-explorations/tensor"
)

// Schedule is an interface for learning-rate schedules
type Schedule interface {
	// TypeString returns the string corresponding to the type of the Schedule.
	// For example: the Schedule "Step" should return "step".
	TypeString() string

	// Value returns the learning rate to use at the given epoch, given the current learning rate.
	// Epochs start at 0. Nothing is retained between calls; the caller is responsible for
	// passing the updated value back in, if it so desires.
	//
	// Should return ErrNegativeEpoch (possibly wrapped) if the epoch is < 0.
	Value(epoch int, lr float64) (float64, error)
}

// Layer is an interface for anything that can perform a forward pass over a tensor. Both the
// framework primitives (convolution, pooling) and the blocks composed from them implement it.
type Layer interface {
	// TypeString returns the string corresponding to the type of the Layer.
	TypeString() string

	// Call performs the forward pass. The input is never modified; the returned tensor is newly
	// allocated and owned by the caller.
	Call(*tensor.Tensor) (*tensor.Tensor, error)

	// OutputShape returns the shape that Call would produce for an input of the given shape,
	// without doing any of the work. Returns the same error Call would for shape problems.
	OutputShape(in []int) ([]int, error)
}
