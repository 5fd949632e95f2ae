// vggprobe builds a VGG layer from an experiment file and pushes a synthetic batch through it, or
// prints the learning rates of a schedule.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/emanuele-moscato/cv-explorations/config"
)

func main() {
	if err := NewCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewCLI returns the root command with every subcommand attached
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vggprobe",
		Short:         "Probe VGG layers and learning-rate schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to TOML experiment file (defaults are used if empty)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log at debug level")

	rootCmd.AddCommand(newForwardCmd(), newScheduleCmd())
	return rootCmd
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config if given, applies the overrides and validates the result
func loadConfig(cmd *cobra.Command, o config.Overrides) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
