package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SynthOptions shapes a synthetic league.
type SynthOptions struct {
	Teams        int
	Features     int
	GamesPerTeam int
	// FeatureNoise is the stddev of the noise added to the latent traits to
	// form the observed features.
	FeatureNoise float64
}

func DefaultSynthOptions() SynthOptions {
	return SynthOptions{
		Teams:        32,
		Features:     8,
		GamesPerTeam: 16,
		FeatureNoise: 0.3,
	}
}

// Synthesize builds one season. Every team has latent traits drawn from a
// standard normal, a hidden strength linear in those traits, and observed
// features equal to the traits plus noise. Games pair two distinct teams
// uniformly; the home side wins with probability sigmoid(s_i - s_j).
func Synthesize(year int, opts SynthOptions, rng *rand.Rand) (*Season, error) {
	if opts.Teams < 3 || opts.Features < 1 || opts.GamesPerTeam < 1 {
		return nil, fmt.Errorf("%w: need at least 3 teams, 1 feature and 1 game per team", ErrEmpty)
	}

	n, d := opts.Teams, opts.Features
	weights := make([]float64, d)
	for k := range weights {
		weights[k] = rng.NormFloat64()
	}

	x := mat.NewDense(n, d, nil)
	strength := make([]float64, n)
	for i := range n {
		traits := make([]float64, d)
		for k := range traits {
			traits[k] = rng.NormFloat64()
		}
		strength[i] = floats.Dot(traits, weights)
		for k, t := range traits {
			x.Set(i, k, t+opts.FeatureNoise*rng.NormFloat64())
		}
	}

	c := mat.NewDense(n, n, nil)
	games := n * opts.GamesPerTeam / 2
	for g := 0; g < games; g++ {
		i, j := rng.IntN(n), rng.IntN(n)
		if i == j {
			g--
			continue
		}
		p := 1 / (1 + math.Exp(-(strength[i] - strength[j])))
		if rng.Float64() >= p {
			i, j = j, i
		}
		c.Set(i, j, c.At(i, j)+1)
		c.Set(j, i, c.At(j, i)-1)
	}

	teams := make([]string, n)
	for i := range teams {
		teams[i] = fmt.Sprintf("team-%02d", i)
	}

	return &Season{Year: year, Teams: teams, Comparisons: c, Features: x}, nil
}

// SynthesizeDataset builds consecutive seasons starting at startYear.
func SynthesizeDataset(startYear, years int, opts SynthOptions, rng *rand.Rand) (Dataset, error) {
	ds := make(Dataset, years)
	for y := startYear; y < startYear+years; y++ {
		s, err := Synthesize(y, opts, rng)
		if err != nil {
			return nil, err
		}
		ds[y] = s
	}
	return ds, nil
}
