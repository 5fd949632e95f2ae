package initializers

import (
	"math"
	"math/rand"
)

type varianceScaling struct {
	// either: "in", "out", "avg"
	mode   string
	factor float64

	// either: "uniform", "normal"
	dist string
}

const defaultVarianceMode string = "avg"

// VarianceScaling returns the variance scaling initializer, which has 3 modes and a user-defined
// scaling factor. The three modes can be set by In, Out, and Avg. It defaults to Avg.
//
// Weights are drawn from a truncated normal distribution, unless UniformDist is set, with a
// variance of factor / n, where n depends on the mode.
func VarianceScaling() *varianceScaling {
	return &varianceScaling{defaultVarianceMode, defaultValue["varscl-factor"], "normal"}
}

// Factor sets the scaling factor to be used for the Initializer. The default factor can be set by
// SetDefault("varscl-factor")
func (v *varianceScaling) Factor(f float64) *varianceScaling {
	v.factor = f
	return v
}

// In sets the scaling to be based on the fan-in.
func (v *varianceScaling) In() *varianceScaling {
	v.mode = "in"
	return v
}

// Out sets the scaling to be based on the fan-out.
func (v *varianceScaling) Out() *varianceScaling {
	v.mode = "out"
	return v
}

// Avg sets the scaling to be based on the average of the fan-in and fan-out.
func (v *varianceScaling) Avg() *varianceScaling {
	v.mode = "avg"
	return v
}

// UniformDist draws from a uniform distribution on [-limit, limit) with the same variance,
// where limit = sqrt(3 * factor / n).
func (v *varianceScaling) UniformDist() *varianceScaling {
	v.dist = "uniform"
	return v
}

func (v *varianceScaling) scale(fanIn, fanOut int) float64 {
	var n float64
	switch v.mode {
	case "in":
		n = float64(fanIn)
	case "out":
		n = float64(fanOut)
	default: // must be "avg"
		n = float64(fanIn+fanOut) / 2
	}

	return math.Max(1, n)
}

// Limit returns the bound of the uniform distribution that would be used for the given fans
func (v *varianceScaling) Limit(fanIn, fanOut int) float64 {
	return math.Sqrt(3 * v.factor / v.scale(fanIn, fanOut))
}

// Set is the implementation of Initializer
func (v *varianceScaling) Set(fanIn, fanOut int, rng *rand.Rand, ws []float64) {
	var gen RNG
	if v.dist == "uniform" {
		limit := v.Limit(fanIn, fanOut)
		gen = Uniform().Bounds(-limit, limit)
	} else {
		// stddev of the normal truncated at 2 sds is ~0.88 of the untruncated one
		sd := math.Sqrt(v.factor/v.scale(fanIn, fanOut)) / .87962566103423978
		gen = TruncNormal().Mean(0).SD(sd)
	}

	for i := range ws {
		ws[i] = gen.Gen(rng)
	}
}
