// Package initializers provides the ways that layer weights can be set before their first use.
package initializers

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Initializer dictates how the weights of a layer will be set, given a blank slice to hold them,
// the number of inputs and outputs that each weight connects, and a source of randomness.
//
// For convolutions, fanIn is (kernel area * input channels) and fanOut is
// (kernel area * filters).
type Initializer interface {
	Set(fanIn, fanOut int, rng *rand.Rand, ws []float64)
}

// default values, because 'default' is a keyword
var defaultValue = map[string]float64{
	"uniform-lower": -0.05,
	"uniform-upper": 0.05,
	"normal-mean":   0,
	"normal-sd":     0.05,
	"varscl-factor": 1,
}

// SetDefault sets the default values used by newly made Initializers and RNGs. The values that
// can be set are: "uniform-lower", "uniform-upper", "normal-mean", "normal-sd", and
// "varscl-factor".
func SetDefault(name string, value float64) error {
	if _, ok := defaultValue[name]; !ok {
		return errors.Errorf("Value with name %q does not exist", name)
	} else if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.Errorf("Value is invalid (%v)", value)
	}

	defaultValue[name] = value
	return nil
}

// Default returns the Initializer used when none is given: Glorot uniform
func Default() Initializer {
	return GlorotUniform()
}
