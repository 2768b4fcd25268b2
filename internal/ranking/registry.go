package ranking

import (
	"fmt"
	"slices"

	"github.com/tensorplex-labs/rankbench/internal/config"
)

// Method keys, as used in result records.
const (
	MethodSVDCov    = "svdc"
	MethodSVDNormal = "svdn"
	MethodSVDKCov   = "svdk"
	MethodSerial    = "serial"
	MethodCSerial   = "c-serial"
	MethodCCA       = "CCA"
	MethodKCCA      = "KCCA"
	MethodBT        = "BT"
	MethodPairLR    = "PairLR"
	MethodPrefKRR   = "pkrr"
)

// Factory builds an unfitted ranker from the method hyperparameters.
type Factory func(cfg config.MethodsConfig) Ranker

var methodOrder = []string{
	MethodSVDCov,
	MethodSVDNormal,
	MethodSVDKCov,
	MethodSerial,
	MethodCSerial,
	MethodCCA,
	MethodKCCA,
	MethodBT,
	MethodPairLR,
	MethodPrefKRR,
}

var factories = map[string]Factory{
	MethodSVDCov:    func(cfg config.MethodsConfig) Ranker { return NewSVDCov(cfg.SVDCovLambda) },
	MethodSVDNormal: func(config.MethodsConfig) Ranker { return NewSVDNormal() },
	MethodSVDKCov:   func(cfg config.MethodsConfig) Ranker { return NewSVDKCov(cfg.SVDKCovLambda) },
	MethodSerial:    func(config.MethodsConfig) Ranker { return NewSerial() },
	MethodCSerial:   func(cfg config.MethodsConfig) Ranker { return NewCSerial(cfg.CSerialLambda) },
	MethodCCA:       func(cfg config.MethodsConfig) Ranker { return NewCCA(cfg.CCAEpsilon) },
	MethodKCCA:      func(cfg config.MethodsConfig) Ranker { return NewKCCA(cfg.KCCALambda) },
	MethodBT:        func(cfg config.MethodsConfig) Ranker { return NewBradleyTerry(cfg.BTIterations, cfg.BTTolerance) },
	MethodPairLR:    func(cfg config.MethodsConfig) Ranker { return NewPairLR(cfg.PairLRLambda) },
	MethodPrefKRR: func(cfg config.MethodsConfig) Ranker {
		return NewPrefKRR(cfg.PKRREpochs, cfg.PKRRLearningRate, cfg.PKRRLambda)
	},
}

// Methods returns every method key in benchmark order.
func Methods() []string {
	return slices.Clone(methodOrder)
}

// Resolve validates keys and returns them in benchmark order without
// duplicates. An empty selection means every method.
func Resolve(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return Methods(), nil
	}
	for _, k := range keys {
		if _, ok := factories[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknown, k)
		}
	}
	var out []string
	for _, k := range methodOrder {
		if slices.Contains(keys, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Build returns fresh rankers for the selected methods.
func Build(keys []string, cfg config.MethodsConfig) ([]Ranker, error) {
	resolved, err := Resolve(keys)
	if err != nil {
		return nil, err
	}
	rankers := make([]Ranker, len(resolved))
	for i, k := range resolved {
		rankers[i] = factories[k](cfg)
	}
	return rankers, nil
}

// Inductive reports whether the method can score unseen items.
func Inductive(key string) bool {
	f, ok := factories[key]
	if !ok {
		return false
	}
	_, ok = f(config.DefaultMethodsConfig()).(Predictor)
	return ok
}
