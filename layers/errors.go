// Package layers provides the numerical primitives that blocks of a network are composed from:
// 2D convolutions, max-pooling, and activation functions.
//
// All layers operate on rank-4 tensors shaped (batch, width, height, channels) and are safe for
// concurrent use once constructed.
package layers

import (
	"github.com/pkg/errors"
)

// Errors returned by the layers. They are always wrapped with the context of what failed; use
// errors.Cause (or errors.Is) to check for them.
var (
	ErrBadFilterCount  = errors.New("number of filters must be ≥ 1")
	ErrBadArgs         = errors.New("invalid layer arguments")
	ErrInputTooSmall   = errors.New("input is smaller than the window")
	ErrChannelMismatch = errors.New("number of input channels changed after build")
	ErrUnknownAct      = errors.New("unknown activation")
)

const (
	// PaddingValid means no padding; windows only cover positions fully inside the input
	PaddingValid = "valid"
	// PaddingSame pads with zeros so that the output has ceil(input / stride) positions
	PaddingSame = "same"
)

// the dimension indexes of spatial axes in a (batch, width, height, channels) tensor
var spatialAxes = [2]int{1, 2}

func checkRank4(in []int) error {
	if len(in) != 4 {
		return errors.Errorf("Input must have shape (batch, width, height, channels), got %v", in)
	}

	for i, d := range in {
		if d < 0 {
			return errors.Errorf("Input shape %v has negative dimension %d", in, i)
		}
	}

	return nil
}

// pair fills in a 2D window argument, checking that it holds values ≥ 1
func pair(name string, given []int, def [2]int) ([2]int, error) {
	if len(given) == 0 {
		return def, nil
	} else if len(given) != 2 {
		return def, errors.Wrapf(ErrBadArgs, "%s should have 2 values, got %v", name, given)
	}

	for i, v := range given {
		if v < 1 {
			return def, errors.Wrapf(ErrBadArgs, "%s[%d] = %d. All values should be ≥ 1", name, i, v)
		}
	}

	return [2]int{given[0], given[1]}, nil
}

func checkPadding(p string) (string, error) {
	switch p {
	case "":
		return PaddingValid, nil
	case PaddingValid, PaddingSame:
		return p, nil
	}

	return "", errors.Wrapf(ErrBadArgs, "Padding %q should be %q or %q", p, PaddingValid, PaddingSame)
}

// outputLength gives the length of one spatial side of the output, and the amount of padding
// before the first input value
//
// the length of the side of the output volume can be determined by:
// (input length - window + total padding) / (stride) + 1
func outputLength(in, window, stride int, padding string) (out, before int, err error) {
	if padding == PaddingSame {
		out = (in + stride - 1) / stride
		total := (out-1)*stride + window - in
		if total < 0 {
			total = 0
		}
		return out, total / 2, nil
	}

	if in < window {
		return 0, 0, errors.Wrapf(ErrInputTooSmall, "Input length %d < window %d", in, window)
	}

	return (in-window)/stride + 1, 0, nil
}
