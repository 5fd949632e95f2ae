// Package config loads experiment files, which describe a VGG layer, the synthetic batch to push
// through it, and a learning-rate schedule.
package config

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	cv "github.com/emanuele-moscato/cv-explorations"
	"github.com/emanuele-moscato/cv-explorations/schedules"
	"github.com/emanuele-moscato/cv-explorations/synth"
	"github.com/emanuele-moscato/cv-explorations/vgg"
)

// Config captures everything needed for an experiment run.
type Config struct {
	Seed     int64          `toml:"seed"`
	Model    vgg.Config     `toml:"model"`
	Batch    BatchConfig    `toml:"batch"`
	Schedule ScheduleConfig `toml:"schedule"`
}

// BatchConfig is the shape of the synthetic batch
type BatchConfig struct {
	Size     int `toml:"size"`
	Width    int `toml:"width"`
	Height   int `toml:"height"`
	Channels int `toml:"channels"`
}

// ScheduleConfig picks a registered schedule and its parameters
type ScheduleConfig struct {
	Type   string  `toml:"type"`
	LR     float64 `toml:"lr"`
	Gamma  float64 `toml:"gamma"`
	Every  int     `toml:"every"`
	Epochs int     `toml:"epochs"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Seed      int64
	BatchSize int
	Width     int
	Height    int
	Channels  int
	LR        float64
	Epochs    int
	Init      string
}

// Default returns the config used for anything that a file leaves out: a single VGG block of two
// 64-filter convolutions over a pair of 32x32 RGB images, and the standard step schedule.
func Default() *Config {
	return &Config{
		Model: vgg.Config{NFiltersConvBlocks: [][]int{{64, 64}}},
		Batch: BatchConfig{
			Size:     2,
			Width:    32,
			Height:   32,
			Channels: synth.DefaultChannels,
		},
		Schedule: ScheduleConfig{
			Type:   "step",
			LR:     0.01,
			Gamma:  schedules.DefaultGamma,
			Every:  schedules.DefaultEvery,
			Epochs: 60,
		},
	}
}

// Load reads and validates a Config from TOML. Keys that aren't part of the config are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't load config %q", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.Errorf("Can't load config %q, unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Invalid config %q", path)
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.BatchSize > 0 {
		c.Batch.Size = o.BatchSize
	}
	if o.Width > 0 {
		c.Batch.Width = o.Width
	}
	if o.Height > 0 {
		c.Batch.Height = o.Height
	}
	if o.Channels > 0 {
		c.Batch.Channels = o.Channels
	}
	if o.LR > 0 {
		c.Schedule.LR = o.LR
	}
	if o.Epochs > 0 {
		c.Schedule.Epochs = o.Epochs
	}
	if o.Init != "" {
		c.Model.Init = o.Init
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if err := c.Model.Validate(); err != nil {
		return errors.Wrap(err, "model")
	}

	b := c.Batch
	if b.Size <= 0 || b.Width <= 0 || b.Height <= 0 || b.Channels <= 0 {
		return errors.Errorf("batch dimensions must be > 0 (got size=%d width=%d height=%d channels=%d)", b.Size, b.Width, b.Height, b.Channels)
	}

	if c.Schedule.LR <= 0 {
		return errors.Errorf("schedule lr must be > 0 (got %v)", c.Schedule.LR)
	}
	if c.Schedule.Epochs < 0 {
		return errors.Errorf("schedule epochs must be ≥ 0 (got %d)", c.Schedule.Epochs)
	}

	if _, err := c.Schedule.Build(); err != nil {
		return errors.Wrap(err, "schedule")
	}

	return nil
}

// Build makes the schedule that the config describes. Gamma and Every only apply to "step".
func (s ScheduleConfig) Build() (cv.Schedule, error) {
	if s.Type == schedules.Step().TypeString() {
		step := schedules.Step().Gamma(s.Gamma).Every(s.Every)
		if err := step.Validate(); err != nil {
			return nil, err
		}
		return step, nil
	}

	return cv.NewSchedule(s.Type)
}
