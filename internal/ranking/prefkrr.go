package ranking

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// PrefKRR is preferential kernel ridge regression. The score function
// f = Kα is fitted to the observed margins,
//
//	loss(α) = 1/m Σ_(i,j) (C[i][j] - (f_i - f_j))² + λ αᵀKα,
//
// with Adam for a fixed number of epochs. Unseen items get K_test α.
type PrefKRR struct {
	Epochs       int
	LearningRate float64
	Lambda       float64

	alpha []float64
	r     []float64
	loss  float64
}

func NewPrefKRR(epochs int, learningRate, lambda float64) *PrefKRR {
	return &PrefKRR{Epochs: epochs, LearningRate: learningRate, Lambda: lambda}
}

func (m *PrefKRR) Name() string { return MethodPrefKRR }

type margin struct {
	i, j int
	y    float64
}

func (m *PrefKRR) Fit(ctx context.Context, p *Problem) error {
	n := p.N()
	var margins []margin
	for i := range n {
		for j := i + 1; j < n; j++ {
			if y := p.C.At(i, j); y != 0 {
				margins = append(margins, margin{i, j, y})
			}
		}
	}

	alpha := make([]float64, n)
	m.alpha = alpha
	m.r = make([]float64, n)
	if len(margins) == 0 {
		return nil
	}

	inv := 1 / float64(len(margins))
	first := make([]float64, n)
	second := make([]float64, n)
	gradF := make([]float64, n)
	inner := make([]float64, n)
	f := make([]float64, n)
	var fv, gv mat.VecDense

	for epoch := 1; epoch <= m.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		fv.MulVec(p.K, mat.NewVecDense(n, alpha))
		copy(f, fv.RawVector().Data)

		clear(gradF)
		loss := 0.0
		for _, mg := range margins {
			res := mg.y - (f[mg.i] - f[mg.j])
			loss += res * res * inv
			gradF[mg.i] -= 2 * res * inv
			gradF[mg.j] += 2 * res * inv
		}
		m.loss = loss + m.Lambda*floats.Dot(alpha, f)

		// ∂loss/∂α = K (∂loss/∂f + 2λα)
		for i := range inner {
			inner[i] = gradF[i] + 2*m.Lambda*alpha[i]
		}
		gv.MulVec(p.K, mat.NewVecDense(n, inner))
		grad := gv.RawVector().Data

		c1 := 1 - math.Pow(adamBeta1, float64(epoch))
		c2 := 1 - math.Pow(adamBeta2, float64(epoch))
		for i, g := range grad {
			first[i] = adamBeta1*first[i] + (1-adamBeta1)*g
			second[i] = adamBeta2*second[i] + (1-adamBeta2)*g*g
			alpha[i] -= m.LearningRate * (first[i] / c1) / (math.Sqrt(second[i]/c2) + adamEpsilon)
		}
	}

	if !finite(alpha) {
		return fmt.Errorf("preferential krr diverged after %d epochs", m.Epochs)
	}
	log.Trace().Float64("loss", m.loss).Int("epochs", m.Epochs).Msg("preferential krr fitted")

	m.r = mulVec(p.K, alpha)
	return nil
}

func (m *PrefKRR) Scores() []float64 { return m.r }

func (m *PrefKRR) Predict(u *Unseen) ([]float64, error) {
	return kernelPredict(u.K, m.alpha)
}
