package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emanuele-moscato/cv-explorations/config"
	"github.com/emanuele-moscato/cv-explorations/initializers"
	"github.com/emanuele-moscato/cv-explorations/synth"
	"github.com/emanuele-moscato/cv-explorations/vgg"
)

func newForwardCmd() *cobra.Command {
	var o config.Overrides

	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Run a synthetic batch through the configured VGG layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForward(cmd, o)
		},
	}

	cmd.Flags().IntVar(&o.BatchSize, "batch-size", 0, "Override batch size")
	cmd.Flags().IntVar(&o.Width, "width", 0, "Override image width")
	cmd.Flags().IntVar(&o.Height, "height", 0, "Override image height")
	cmd.Flags().IntVar(&o.Channels, "channels", 0, "Override number of channels")
	cmd.Flags().Int64Var(&o.Seed, "seed", 0, "PRNG seed for weights and data (0 keeps the config's)")
	cmd.Flags().StringVar(&o.Init, "init", "", "Override weight initializer ("+strings.Join(initializers.Names(), ", ")+")")

	return cmd
}

func runForward(cmd *cobra.Command, o config.Overrides) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)

	opts := []vgg.Option{vgg.WithLogger(logger)}
	dataOpts := []synth.Option{synth.WithChannels(cfg.Batch.Channels)}
	if cfg.Seed != 0 {
		opts = append(opts, vgg.WithSeed(cfg.Seed))
		dataOpts = append(dataOpts, synth.WithSeed(cfg.Seed+1))
	}

	layer, err := vgg.New(cfg.Model, opts...)
	if err != nil {
		return err
	}

	in := []int{cfg.Batch.Size, cfg.Batch.Width, cfg.Batch.Height, cfg.Batch.Channels}
	summary, err := layer.Summary(in)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), summary)

	x, err := synth.GenerateTestBatch(cfg.Batch.Size, cfg.Batch.Width, cfg.Batch.Height, dataOpts...)
	if err != nil {
		return err
	}

	start := time.Now()
	y, err := layer.Call(x)
	if err != nil {
		return err
	}

	logger.Info("forward pass complete",
		"in", x.Shape(),
		"out", y.Shape(),
		"params", layer.NumParams(),
		"init", cfg.Model.Init,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return nil
}
