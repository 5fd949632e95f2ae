package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	cv "github.com/emanuele-moscato/cv-explorations"
	"github.com/emanuele-moscato/cv-explorations/config"
	"github.com/emanuele-moscato/cv-explorations/schedules"
)

func newScheduleCmd() *cobra.Command {
	var o config.Overrides
	var typ string
	var gamma float64
	var every int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the learning rate at every epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("type") {
				cfg.Schedule.Type = typ
			}
			if cmd.Flags().Changed("gamma") {
				cfg.Schedule.Gamma = gamma
			}
			if cmd.Flags().Changed("every") {
				cfg.Schedule.Every = every
			}

			return runSchedule(cmd, cfg.Schedule)
		},
	}

	cmd.Flags().Float64Var(&o.LR, "lr", 0, "Override the base learning rate")
	cmd.Flags().IntVar(&o.Epochs, "epochs", 0, "Override the number of epochs")
	cmd.Flags().StringVar(&typ, "type", "", fmt.Sprintf("Schedule type, one of %v", cv.ScheduleTypes()))
	cmd.Flags().Float64Var(&gamma, "gamma", schedules.DefaultGamma, "Decay factor of the step schedule")
	cmd.Flags().IntVar(&every, "every", schedules.DefaultEvery, "Epochs between steps of the step schedule")

	return cmd
}

func runSchedule(cmd *cobra.Command, sc config.ScheduleConfig) error {
	s, err := sc.Build()
	if err != nil {
		return err
	}

	rates, err := schedules.Table(s, sc.LR, sc.Epochs)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Epoch", "Learning rate"})
	for e, lr := range rates {
		// only print the epochs where something changes, and the last
		if e > 0 && e < len(rates)-1 && lr == rates[e-1] {
			continue
		}
		table.Append([]string{strconv.Itoa(e), strconv.FormatFloat(lr, 'g', 6, 64)})
	}
	table.Render()

	return nil
}
