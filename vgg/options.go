package vgg

import (
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/emanuele-moscato/cv-explorations/initializers"
	"github.com/emanuele-moscato/cv-explorations/layers"
)

type options struct {
	rng     *rand.Rand
	padding string
	init    initializers.Initializer
	logger  *slog.Logger
}

// Option configures New
type Option func(*options)

// WithSeed makes the weight initialization reproducible
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand sets the source of randomness for the weights. It must not be used elsewhere while
// the layer can be building.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithPadding sets the padding of every convolution. The default is layers.PaddingValid.
func WithPadding(p string) Option {
	return func(o *options) {
		o.padding = p
	}
}

// WithInitializer sets how the convolution weights are set, taking precedence over Config.Init.
func WithInitializer(init initializers.Initializer) Option {
	return func(o *options) {
		o.init = init
	}
}

// WithLogger sets where the layer logs to. By default, nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		padding: layers.PaddingValid,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
