package vgg

import (
	"github.com/pkg/errors"

	"github.com/emanuele-moscato/cv-explorations/initializers"
	"github.com/emanuele-moscato/cv-explorations/layers"
)

// Config describes the blocks of a VGG layer: each entry of NFiltersConvBlocks is a block, and
// each value within it is the number of filters of one 3x3 convolution of that block.
type Config struct {
	NFiltersConvBlocks [][]int `toml:"n_filters_conv_blocks" json:"n_filters_conv_blocks"`

	// name of the weight initializer, one of initializers.Names()
	// defaults to Glorot uniform if empty
	Init string `toml:"init" json:"init,omitempty"`
}

// VGG16 is the convolutional part of VGG-16: 13 convolutions in 5 blocks
func VGG16() Config {
	return Config{NFiltersConvBlocks: [][]int{
		{64, 64},
		{128, 128},
		{256, 256, 256},
		{512, 512, 512},
		{512, 512, 512},
	}}
}

// VGG11 is the convolutional part of VGG-11 ("configuration A")
func VGG11() Config {
	return Config{NFiltersConvBlocks: [][]int{
		{64},
		{128},
		{256, 256},
		{512, 512},
		{512, 512},
	}}
}

// Validate checks that every filter count is ≥ 1, returning layers.ErrBadFilterCount otherwise.
// Empty blocks, and an empty list of blocks, are valid. Unknown initializer names are also
// rejected.
func (c Config) Validate() error {
	for b, block := range c.NFiltersConvBlocks {
		for i, n := range block {
			if n < 1 {
				return errors.Wrapf(layers.ErrBadFilterCount, "block %d, convolution %d has %d filters", b, i, n)
			}
		}
	}

	if _, err := initializers.Named(c.Init); err != nil {
		return err
	}

	return nil
}

// NumConvs is the total number of convolutions across all blocks
func (c Config) NumConvs() int {
	n := 0
	for _, block := range c.NFiltersConvBlocks {
		n += len(block)
	}
	return n
}

// Clone returns a deep copy, so that the original can be changed freely
func (c Config) Clone() Config {
	blocks := make([][]int, len(c.NFiltersConvBlocks))
	for i, b := range c.NFiltersConvBlocks {
		blocks[i] = append([]int(nil), b...)
	}
	return Config{NFiltersConvBlocks: blocks, Init: c.Init}
}
