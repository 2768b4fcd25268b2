// Package config defines the benchmark configuration structs and loaders.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// AppConfig is the full benchmark configuration. Values are resolved as
// in-code defaults, then the optional YAML file, then environment variables.
type AppConfig struct {
	Dataset    DatasetEnvConfig    `yaml:"dataset"`
	Experiment ExperimentEnvConfig `yaml:"experiment"`
	Output     OutputEnvConfig     `yaml:"output"`
	Methods    MethodsConfig       `yaml:"methods"`
}

// DatasetEnvConfig locates the season dataset.
type DatasetEnvConfig struct {
	Path string `yaml:"path" env:"DATASET_PATH, overwrite"`
}

// ExperimentEnvConfig describes the (seed, year) grid and the splits.
type ExperimentEnvConfig struct {
	Seeds          []int    `yaml:"seeds" env:"SEEDS, overwrite"`
	Years          []int    `yaml:"years" env:"YEARS, overwrite"`
	TrainRatio     float64  `yaml:"train_ratio" env:"TRAIN_RATIO, overwrite"`
	Sparsity       float64  `yaml:"sparsity" env:"SPARSITY, overwrite"`
	Workers        int      `yaml:"workers" env:"WORKERS, overwrite"`
	FeatureScaling bool     `yaml:"feature_scaling" env:"FEATURE_SCALING, overwrite"`
	Methods        []string `yaml:"methods" env:"METHODS, overwrite"`
}

// OutputEnvConfig controls where result records go.
type OutputEnvConfig struct {
	Dir      string `yaml:"dir" env:"OUTPUT_DIR, overwrite"`
	Compress bool   `yaml:"compress" env:"OUTPUT_COMPRESS, overwrite"`
}

// MethodsConfig holds per-method hyperparameters.
type MethodsConfig struct {
	SVDCovLambda     float64 `yaml:"svdc_lambda" env:"SVDC_LAMBDA, overwrite"`
	SVDKCovLambda    float64 `yaml:"svdk_lambda" env:"SVDK_LAMBDA, overwrite"`
	CSerialLambda    float64 `yaml:"cserial_lambda" env:"CSERIAL_LAMBDA, overwrite"`
	CCAEpsilon       float64 `yaml:"cca_epsilon" env:"CCA_EPSILON, overwrite"`
	KCCALambda       float64 `yaml:"kcca_lambda" env:"KCCA_LAMBDA, overwrite"`
	BTIterations     int     `yaml:"bt_iterations" env:"BT_ITERATIONS, overwrite"`
	BTTolerance      float64 `yaml:"bt_tolerance" env:"BT_TOLERANCE, overwrite"`
	PairLRLambda     float64 `yaml:"pairlr_lambda" env:"PAIRLR_LAMBDA, overwrite"`
	PKRREpochs       int     `yaml:"pkrr_epochs" env:"PKRR_EPOCHS, overwrite"`
	PKRRLearningRate float64 `yaml:"pkrr_learning_rate" env:"PKRR_LEARNING_RATE, overwrite"`
	PKRRLambda       float64 `yaml:"pkrr_lambda" env:"PKRR_LAMBDA, overwrite"`
}

func seq(start, n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = start + i
	}
	return s
}

// Default returns the configuration of the NFL study: seeds 0..19, seasons
// 2000..2018, a 70/30 comparison split and 70% of teams seen.
func Default() *AppConfig {
	return &AppConfig{
		Dataset: DatasetEnvConfig{
			Path: "data/nfl_dict.json",
		},
		Experiment: ExperimentEnvConfig{
			Seeds:          seq(0, 20),
			Years:          seq(2000, 19),
			TrainRatio:     0.7,
			Sparsity:       0.7,
			Workers:        1,
			FeatureScaling: true,
		},
		Output: OutputEnvConfig{
			Dir: "NFL_Full_results",
		},
		Methods: DefaultMethodsConfig(),
	}
}

func DefaultMethodsConfig() MethodsConfig {
	return MethodsConfig{
		SVDCovLambda:     1e-3,
		SVDKCovLambda:    1e-3,
		CSerialLambda:    1e-1,
		CCAEpsilon:       1e-3,
		KCCALambda:       1e-1,
		BTIterations:     1000,
		BTTolerance:      1e-8,
		PairLRLambda:     1e-2,
		PKRREpochs:       500,
		PKRRLearningRate: 1e-1,
		PKRRLambda:       1e-3,
	}
}

// LoadConfig resolves the configuration. path may be empty, in which case
// only defaults and the environment are used.
func LoadConfig(ctx context.Context, path string) (*AppConfig, error) {
	return load(ctx, path, envconfig.OsLookuper())
}

func load(ctx context.Context, path string, lookuper envconfig.Lookuper) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first configuration value that cannot be used.
func (c *AppConfig) Validate() error {
	e := c.Experiment
	switch {
	case c.Dataset.Path == "":
		return fmt.Errorf("%w: dataset path is empty", ErrInvalid)
	case len(e.Seeds) == 0:
		return fmt.Errorf("%w: no seeds", ErrInvalid)
	case len(e.Years) == 0:
		return fmt.Errorf("%w: no years", ErrInvalid)
	case hasDuplicate(e.Seeds):
		return fmt.Errorf("%w: duplicate seed in %v", ErrInvalid, e.Seeds)
	case hasDuplicate(e.Years):
		return fmt.Errorf("%w: duplicate year in %v", ErrInvalid, e.Years)
	case e.TrainRatio <= 0 || e.TrainRatio > 1:
		return fmt.Errorf("%w: train ratio %v not in (0, 1]", ErrInvalid, e.TrainRatio)
	case e.Sparsity <= 0 || e.Sparsity >= 1:
		return fmt.Errorf("%w: sparsity %v not in (0, 1)", ErrInvalid, e.Sparsity)
	case e.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, e.Workers)
	case c.Output.Dir == "":
		return fmt.Errorf("%w: output dir is empty", ErrInvalid)
	}
	return c.Methods.Validate()
}

func hasDuplicate(xs []int) bool {
	seen := make(map[int]bool, len(xs))
	for _, x := range xs {
		if seen[x] {
			return true
		}
		seen[x] = true
	}
	return false
}

func (m MethodsConfig) Validate() error {
	for name, v := range map[string]float64{
		"svdc_lambda":    m.SVDCovLambda,
		"svdk_lambda":    m.SVDKCovLambda,
		"cserial_lambda": m.CSerialLambda,
		"cca_epsilon":    m.CCAEpsilon,
		"kcca_lambda":    m.KCCALambda,
		"pairlr_lambda":  m.PairLRLambda,
		"pkrr_lambda":    m.PKRRLambda,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalid, name, v)
		}
	}
	if m.BTIterations < 1 {
		return fmt.Errorf("%w: bt_iterations must be positive", ErrInvalid)
	}
	if m.PKRREpochs < 1 {
		return fmt.Errorf("%w: pkrr_epochs must be positive", ErrInvalid)
	}
	if m.PKRRLearningRate <= 0 {
		return fmt.Errorf("%w: pkrr_learning_rate must be positive", ErrInvalid)
	}
	return nil
}
