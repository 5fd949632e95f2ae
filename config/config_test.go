package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cv "github.com/emanuele-moscato/cv-explorations"
	"github.com/emanuele-moscato/cv-explorations/initializers"
	"github.com/emanuele-moscato/cv-explorations/layers"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
seed = 42

[model]
n_filters_conv_blocks = [[8, 8], [16]]

[batch]
size = 4
width = 48
height = 40

[schedule]
type = "step"
lr = 0.1
gamma = 0.5
every = 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, [][]int{{8, 8}, {16}}, cfg.Model.NFiltersConvBlocks)
	assert.Equal(t, BatchConfig{Size: 4, Width: 48, Height: 40, Channels: 3}, cfg.Batch)
	assert.Equal(t, 60, cfg.Schedule.Epochs)

	s, err := cfg.Schedule.Build()
	require.NoError(t, err)
	v, err := s.Value(20, cfg.Schedule.LR)
	require.NoError(t, err)
	assert.InDelta(t, 0.025, v, 1e-12)
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyModel(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[model]\nn_filters_conv_blocks = []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Model.NFiltersConvBlocks)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "epochz = 3\n",
		"bad filters":     "[model]\nn_filters_conv_blocks = [[64, 0]]\n",
		"bad batch":       "[batch]\nwidth = -2\n",
		"bad lr":          "[schedule]\nlr = 0.0\n",
		"bad gamma":       "[schedule]\ngamma = 2.0\n",
		"unknown sched":   "[schedule]\ntype = \"cosine\"\n",
		"malformed toml":  "[model\n",
		"negative epochs": "[schedule]\nepochs = -1\n",
		"unknown init":    "[model]\ninit = \"orthogonal\"\n",
	}

	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, contents))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, "[model]\nn_filters_conv_blocks = [[64, 0]]\n"))
	assert.Equal(t, layers.ErrBadFilterCount, errors.Cause(err))

	_, err = Load(writeConfig(t, "[schedule]\ntype = \"cosine\"\n"))
	assert.Equal(t, cv.ErrUnknownType, errors.Cause(err))

	_, err = Load(writeConfig(t, "[model]\ninit = \"orthogonal\"\n"))
	assert.Equal(t, initializers.ErrUnknownInit, errors.Cause(err))

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadInit(t *testing.T) {
	for _, name := range initializers.Names() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "[model]\ninit = \""+name+"\"\n"))
			require.NoError(t, err)
			assert.Equal(t, name, cfg.Model.Init)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{BatchSize: 8, Width: 64, LR: 0.5, Init: "he"})
	assert.Equal(t, "he", cfg.Model.Init)

	assert.Equal(t, 8, cfg.Batch.Size)
	assert.Equal(t, 64, cfg.Batch.Width)
	assert.Equal(t, 32, cfg.Batch.Height)
	assert.Equal(t, 0.5, cfg.Schedule.LR)
	assert.Equal(t, int64(0), cfg.Seed)
	require.NoError(t, cfg.Validate())
}
