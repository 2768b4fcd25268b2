package bench

import (
	"github.com/tensorplex-labs/rankbench/internal/config"
)

type RunnerOption func(*Runner)

func WithSeeds(seeds ...int) RunnerOption {
	return func(r *Runner) {
		r.seeds = seeds
	}
}

func WithYears(years ...int) RunnerOption {
	return func(r *Runner) {
		r.years = years
	}
}

func WithTrainRatio(ratio float64) RunnerOption {
	return func(r *Runner) {
		r.trainRatio = ratio
	}
}

func WithSparsity(sparsity float64) RunnerOption {
	return func(r *Runner) {
		r.sparsity = sparsity
	}
}

func WithMethods(methods ...string) RunnerOption {
	return func(r *Runner) {
		r.methods = methods
	}
}

func WithMethodsConfig(cfg config.MethodsConfig) RunnerOption {
	return func(r *Runner) {
		r.methodsConfig = cfg
	}
}

func WithWorkers(workers int) RunnerOption {
	return func(r *Runner) {
		r.workers = workers
	}
}

func WithFeatureScaling(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.featureScaling = enabled
	}
}

func WithRunID(id string) RunnerOption {
	return func(r *Runner) {
		r.runID = id
	}
}

// FromConfig translates the experiment and method settings into options.
func FromConfig(cfg *config.AppConfig) []RunnerOption {
	e := cfg.Experiment
	return []RunnerOption{
		WithSeeds(e.Seeds...),
		WithYears(e.Years...),
		WithTrainRatio(e.TrainRatio),
		WithSparsity(e.Sparsity),
		WithMethods(e.Methods...),
		WithWorkers(e.Workers),
		WithFeatureScaling(e.FeatureScaling),
		WithMethodsConfig(cfg.Methods),
	}
}
