package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(context.Background(), "", envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Len(t, cfg.Experiment.Seeds, 20)
	assert.Equal(t, 2000, cfg.Experiment.Years[0])
	assert.Equal(t, 2018, cfg.Experiment.Years[len(cfg.Experiment.Years)-1])
	assert.Empty(t, cfg.Experiment.Methods)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
dataset:
  path: leagues/nba.json.zst
experiment:
  seeds: [1, 2]
  years: [2015]
  sparsity: 0.5
  methods: [BT, svdc]
methods:
  pkrr_epochs: 50
`)

	cfg, err := load(context.Background(), path, envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, "leagues/nba.json.zst", cfg.Dataset.Path)
	assert.Equal(t, []int{1, 2}, cfg.Experiment.Seeds)
	assert.Equal(t, []int{2015}, cfg.Experiment.Years)
	assert.Equal(t, 0.5, cfg.Experiment.Sparsity)
	assert.Equal(t, []string{"BT", "svdc"}, cfg.Experiment.Methods)
	assert.Equal(t, 50, cfg.Methods.PKRREpochs)

	// untouched keys keep their defaults
	assert.Equal(t, 0.7, cfg.Experiment.TrainRatio)
	assert.Equal(t, 1000, cfg.Methods.BTIterations)
	assert.Equal(t, "NFL_Full_results", cfg.Output.Dir)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
experiment:
  seeds: [1, 2]
  workers: 2
`)

	cfg, err := load(context.Background(), path, envconfig.MapLookuper(map[string]string{
		"SEEDS":           "5,6,7",
		"WORKERS":         "8",
		"FEATURE_SCALING": "false",
		"OUTPUT_DIR":      "out",
		"OUTPUT_COMPRESS": "true",
		"KCCA_LAMBDA":     "0.5",
	}))
	require.NoError(t, err)

	assert.Equal(t, []int{5, 6, 7}, cfg.Experiment.Seeds)
	assert.Equal(t, 8, cfg.Experiment.Workers)
	assert.False(t, cfg.Experiment.FeatureScaling)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Output.Compress)
	assert.Equal(t, 0.5, cfg.Methods.KCCALambda)
}

func TestLoadErrors(t *testing.T) {
	_, err := load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), envconfig.MapLookuper(nil))
	assert.Error(t, err)

	_, err = load(context.Background(), writeConfig(t, "experiment: [oops"), envconfig.MapLookuper(nil))
	assert.Error(t, err)

	_, err = load(context.Background(), "", envconfig.MapLookuper(map[string]string{"WORKERS": "many"}))
	assert.Error(t, err)

	_, err = load(context.Background(), "", envconfig.MapLookuper(map[string]string{"SPARSITY": "1"}))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = load(context.Background(), "", envconfig.MapLookuper(map[string]string{"YEARS": "2001,2002,2001"}))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"empty dataset path", func(c *AppConfig) { c.Dataset.Path = "" }},
		{"no seeds", func(c *AppConfig) { c.Experiment.Seeds = nil }},
		{"no years", func(c *AppConfig) { c.Experiment.Years = nil }},
		{"duplicate seed", func(c *AppConfig) { c.Experiment.Seeds = []int{0, 1, 0} }},
		{"duplicate year", func(c *AppConfig) { c.Experiment.Years = []int{2001, 2001} }},
		{"zero train ratio", func(c *AppConfig) { c.Experiment.TrainRatio = 0 }},
		{"train ratio above one", func(c *AppConfig) { c.Experiment.TrainRatio = 1.5 }},
		{"zero sparsity", func(c *AppConfig) { c.Experiment.Sparsity = 0 }},
		{"no workers", func(c *AppConfig) { c.Experiment.Workers = 0 }},
		{"empty output dir", func(c *AppConfig) { c.Output.Dir = "" }},
		{"negative lambda", func(c *AppConfig) { c.Methods.SVDCovLambda = -1 }},
		{"no bt iterations", func(c *AppConfig) { c.Methods.BTIterations = 0 }},
		{"no pkrr epochs", func(c *AppConfig) { c.Methods.PKRREpochs = 0 }},
		{"zero learning rate", func(c *AppConfig) { c.Methods.PKRRLearningRate = 0 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
