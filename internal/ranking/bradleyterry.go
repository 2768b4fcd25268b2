package ranking

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// BradleyTerry estimates strengths p such that
//
//	Pr(i beats j) = p[i] / (p[i] + p[j])
//
// with the minorization-maximization updates of Hunter (2004):
//
//	p[i] = W[i] / Σ_j n[i][j] / (p[i] + p[j])
//
// where W[i] counts the wins of i and n[i][j] the games between i and j.
// Scores are log p.
type BradleyTerry struct {
	MaxIterations int
	Tolerance     float64

	r          []float64
	iterations int
}

func NewBradleyTerry(maxIterations int, tolerance float64) *BradleyTerry {
	return &BradleyTerry{MaxIterations: maxIterations, Tolerance: tolerance}
}

func (bt *BradleyTerry) Name() string { return MethodBT }

func (bt *BradleyTerry) Fit(ctx context.Context, p *Problem) error {
	n := p.N()

	// As part of the initialization,
	// we pretend that each competitor won once and lost once
	// against every other competitor.
	// That keeps unbeaten and winless teams at finite strengths.
	pairwiseWins := make([][]float64, n)
	wins := make([]float64, n)
	for i := range n {
		pairwiseWins[i] = make([]float64, n)
		for j := range n {
			if i == j {
				continue
			}
			pairwiseWins[i][j] = 1
		}
		wins[i] = float64(n - 1)
	}
	for _, ch := range p.Choices {
		pairwiseWins[ch.Winner][ch.Loser]++
		wins[ch.Winner]++
	}

	score := make([]float64, n)
	for i := range score {
		score[i] = 1
	}
	next := make([]float64, n)

	bt.iterations = 0
	for iter := 0; iter < bt.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range n {
			denom := 0.0
			for j := range n {
				if i == j {
					continue
				}
				denom += (pairwiseWins[i][j] + pairwiseWins[j][i]) / (score[i] + score[j])
			}
			next[i] = wins[i] / denom
		}

		// the model is scale free; pin the geometric mean to 1
		logMean := 0.0
		for _, v := range next {
			logMean += math.Log(v)
		}
		floats.Scale(math.Exp(-logMean/float64(n)), next)

		change := 0.0
		for i := range n {
			change = math.Max(change, math.Abs(next[i]-score[i])/score[i])
		}
		copy(score, next)
		bt.iterations = iter + 1
		if change < bt.Tolerance {
			break
		}
	}
	log.Trace().Int("iterations", bt.iterations).Msg("bradley-terry converged")

	r := make([]float64, n)
	for i, v := range score {
		r[i] = math.Log(v)
	}
	bt.r = r
	return nil
}

func (bt *BradleyTerry) Scores() []float64 { return bt.r }
