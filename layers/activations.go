// activations.go contains all of the element-wise activation functions that can be used by
// layers with weights:
// * Linear
// * ReLU
// * Leaky ReLU
// * ELU
// * Softplus (because it's similar)
package layers

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ActivationFunc is an element-wise activation
type ActivationFunc func(float64) float64

var activations = map[string]ActivationFunc{
	"linear":     Linear,
	"relu":       ReLU,
	"leaky-relu": LeakyReLU(0.3),
	"elu":        ELU(1),
	"softplus":   Softplus,
}

// Activation returns the activation with the given name. The empty string is "linear".
func Activation(name string) (ActivationFunc, error) {
	if name == "" {
		name = "linear"
	}

	f, ok := activations[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAct, "Activation %q", name)
	}

	return f, nil
}

// Activations returns the sorted names of every available activation
func Activations() []string {
	names := make([]string, 0, len(activations))
	for n := range activations {
		names = append(names, n)
	}

	sort.Strings(names)
	return names
}

// Linear is the identity
func Linear(in float64) float64 {
	return in
}

// ReLU is the standard rectified linear unit
func ReLU(in float64) float64 {
	return math.Max(in, 0)
}

// LeakyReLU returns a standard 'leaky ReLU', where the leaky factor is given by alpha.
func LeakyReLU(alpha float64) ActivationFunc {
	return func(in float64) float64 {
		if in < 0 {
			return alpha * in
		}
		return in
	}
}

// ELU returns the exponential linear unit with the given alpha
func ELU(alpha float64) ActivationFunc {
	return func(in float64) float64 {
		if in < 0 {
			return alpha * (math.Exp(in) - 1)
		}
		return in
	}
}

func Softplus(in float64) float64 {
	return math.Log1p(math.Exp(in))
}
