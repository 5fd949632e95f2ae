// Package synth generates synthetic data for exercising models without a real dataset.
package synth

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/emanuele-moscato/cv-explorations/tensor"
)

const (
	// DefaultChannels is the number of channels when WithChannels isn't given
	DefaultChannels = 3

	// pixel values are drawn from the integers [0, MaxPixel)
	MaxPixel = 128
)

type options struct {
	channels int
	rng      *rand.Rand
}

// Option configures GenerateTestBatch
type Option func(*options)

// WithChannels sets the number of channels of each image
func WithChannels(n int) Option {
	return func(o *options) {
		o.channels = n
	}
}

// WithSeed makes the batch reproducible
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand draws values from the given source. It is not safe to share it with other goroutines
// while GenerateTestBatch runs.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// GenerateTestBatch returns a batch of random images shaped (batchSize, imageWidth, imageHeight,
// channels), with channels = 3 unless set by WithChannels. Every value is drawn independently
// and uniformly from the integers [0, 128), and stored as a float.
//
// Negative dimensions are reported by the tensor package, as tensor.ErrNegativeDim.
func GenerateTestBatch(batchSize, imageWidth, imageHeight int, opts ...Option) (*tensor.Tensor, error) {
	o := options{channels: DefaultChannels}
	for _, opt := range opts {
		opt(&o)
	}

	x, err := tensor.New(batchSize, imageWidth, imageHeight, o.channels)
	if err != nil {
		return nil, errors.Wrap(err, "Can't generate test batch")
	}

	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	data := x.Data()
	for i := range data {
		data[i] = float64(rng.Intn(MaxPixel))
	}

	return x, nil
}
