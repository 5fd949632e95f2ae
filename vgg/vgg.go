// Package vgg provides a VGG-style layer: blocks of stacked 3x3 convolutions, each block followed
// by a 2x2 max-pooling step.
package vgg

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	cv "github.com/emanuele-moscato/cv-explorations"
	"github.com/emanuele-moscato/cv-explorations/initializers"
	"github.com/emanuele-moscato/cv-explorations/layers"
	"github.com/emanuele-moscato/cv-explorations/tensor"
)

// Layer is a VGG block stack. The convolutions are fixed at construction; their weights are
// allocated by the first call, once the number of input channels is known.
//
// Layer is safe for concurrent use.
type Layer struct {
	blocks  [][]*layers.Conv2D
	maxpool *layers.MaxPool2D

	// name of the initializer from the config; empty for the default or WithInitializer
	init string

	logger *slog.Logger
	calls  *atomic.Int64
}

var _ cv.Layer = (*Layer)(nil)

// New builds the convolutions described by the config: for each block, one 3x3 convolution with
// a ReLU activation per filter count, and no padding. A single 2x2, stride 2 max-pooling layer
// is shared by all of the blocks.
//
// Filter counts < 1 are rejected with layers.ErrBadFilterCount. Empty blocks are allowed and
// only pool; an empty list of blocks makes Call the identity.
//
// The weights are set by the initializer named by cfg.Init, unless WithInitializer is given.
func New(cfg Config, opts ...Option) (*Layer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	l := &Layer{
		blocks: make([][]*layers.Conv2D, len(cfg.NFiltersConvBlocks)),
		logger: o.logger,
		calls:  atomic.NewInt64(0),
	}

	if o.init == nil {
		ini, err := initializers.Named(cfg.Init)
		if err != nil {
			return nil, errors.Wrap(err, "Can't make vgg layer")
		}
		o.init = ini
		l.init = cfg.Init
	}

	for b, block := range cfg.NFiltersConvBlocks {
		l.blocks[b] = make([]*layers.Conv2D, len(block))

		for i, n := range block {
			conv, err := layers.Conv(layers.ConvArgs{
				Filters:    n,
				Kernel:     []int{3, 3},
				Activation: "relu",
				Padding:    o.padding,
				Init:       o.init,
				Rand:       o.rng,
			})
			if err != nil {
				return nil, errors.Wrapf(err, "Can't make vgg layer, block %d, convolution %d", b, i)
			}

			l.blocks[b][i] = conv
		}
	}

	var err error
	l.maxpool, err = layers.MaxPool(layers.PoolArgs{
		Pool:    []int{2, 2},
		Stride:  []int{2, 2},
		Padding: layers.PaddingValid,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't make vgg layer")
	}

	l.logger.Debug("vgg layer constructed", "blocks", len(l.blocks), "convs", cfg.NumConvs())
	return l, nil
}

func (l *Layer) TypeString() string {
	return "vgg"
}

// Blocks returns the filter counts of each block, the same as the config given to New
func (l *Layer) Blocks() [][]int {
	blocks := make([][]int, len(l.blocks))
	for b, block := range l.blocks {
		blocks[b] = make([]int, len(block))
		for i, conv := range block {
			blocks[b][i] = conv.Filters()
		}
	}
	return blocks
}

// Config returns the config that the layer was made with
func (l *Layer) Config() Config {
	return Config{NFiltersConvBlocks: l.Blocks(), Init: l.init}
}

// Calls returns how many forward passes have completed successfully
func (l *Layer) Calls() int64 {
	return l.calls.Load()
}

// NumParams returns the number of weights and biases of the convolutions that have been built
func (l *Layer) NumParams() int {
	n := 0
	for _, block := range l.blocks {
		for _, conv := range block {
			n += conv.NumParams()
		}
	}
	return n
}

// Built returns whether or not every convolution has its weights
func (l *Layer) Built() bool {
	for _, block := range l.blocks {
		for _, conv := range block {
			if !conv.Built() {
				return false
			}
		}
	}
	return true
}

// OutputShape composes the output shapes of every convolution and pooling step
func (l *Layer) OutputShape(in []int) ([]int, error) {
	shape := append([]int(nil), in...)

	for b, block := range l.blocks {
		var err error
		for i, conv := range block {
			if shape, err = conv.OutputShape(shape); err != nil {
				return nil, errors.Wrapf(err, "vgg block %d, convolution %d", b, i)
			}
		}

		if shape, err = l.maxpool.OutputShape(shape); err != nil {
			return nil, errors.Wrapf(err, "vgg block %d, pooling", b)
		}
	}

	return shape, nil
}

// Call runs the forward pass: each block's convolutions in order, followed by pooling. The input
// is not modified.
func (l *Layer) Call(x *tensor.Tensor) (*tensor.Tensor, error) {
	if x == nil {
		return nil, errors.New("Can't call vgg layer, input is nil")
	}

	in := x.Shape()
	if len(l.blocks) == 0 {
		l.calls.Inc()
		return x.Clone(), nil
	}

	var err error
	for b, block := range l.blocks {
		for i, conv := range block {
			wasBuilt := conv.Built()

			if x, err = conv.Call(x); err != nil {
				return nil, errors.Wrapf(err, "vgg block %d, convolution %d", b, i)
			}

			if !wasBuilt {
				l.logger.Debug("built convolution", "block", b, "conv", i, "filters", conv.Filters(), "params", conv.NumParams())
			}
		}

		if x, err = l.maxpool.Call(x); err != nil {
			return nil, errors.Wrapf(err, "vgg block %d, pooling", b)
		}
	}

	l.calls.Inc()
	l.logger.Debug("vgg forward pass", "in", in, "out", x.Shape())
	return x, nil
}

// Summary renders a table of every step of the forward pass for an input of the given shape: its
// name, output shape, and number of parameters. The layer does not need to be built.
func (l *Layer) Summary(in []int) (string, error) {
	if _, err := l.OutputShape(in); err != nil {
		return "", err
	}

	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.SetHeader([]string{"Layer", "Type", "Output shape", "Params"})
	table.SetAutoFormatHeaders(false)

	shape := append([]int(nil), in...)
	total := 0
	for b, block := range l.blocks {
		for i, conv := range block {
			params := conv.ParamsFor(shape[3])
			shape, _ = conv.OutputShape(shape)
			total += params

			table.Append([]string{
				fmt.Sprintf("block%d_conv%d", b+1, i+1),
				fmt.Sprintf("%s %dx%d %s", conv.TypeString(), conv.Kernel()[0], conv.Kernel()[1], conv.ActivationName()),
				fmt.Sprint(shape),
				fmt.Sprint(params),
			})
		}

		shape, _ = l.maxpool.OutputShape(shape)
		table.Append([]string{
			fmt.Sprintf("block%d_pool", b+1),
			l.maxpool.TypeString(),
			fmt.Sprint(shape),
			"0",
		})
	}

	table.SetFooter([]string{"", "", "Total", fmt.Sprint(total)})
	table.Render()

	return sb.String(), nil
}
