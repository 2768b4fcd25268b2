package ranking

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// PairLR is pairwise logistic regression: Pr(i beats j) = σ(β·(x_i - x_j)).
// Every observed choice is a positive example of its feature difference; the
// mirrored negative example carries the same loss, so only one is kept.
// β minimises the mean log-loss plus λ/2 ||β||², solved with L-BFGS.
type PairLR struct {
	Lambda float64

	beta []float64
	r    []float64
}

func NewPairLR(lambda float64) *PairLR { return &PairLR{Lambda: lambda} }

func (m *PairLR) Name() string { return MethodPairLR }

// softplus is log(1 + e^t) without overflow.
func softplus(t float64) float64 {
	return math.Max(t, 0) + math.Log1p(math.Exp(-math.Abs(t)))
}

func sigmoid(t float64) float64 {
	return 1 / (1 + math.Exp(-t))
}

func (m *PairLR) Fit(ctx context.Context, p *Problem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, d := p.X.Dims()

	diffs := make([][]float64, len(p.Choices))
	for k, ch := range p.Choices {
		diff := make([]float64, d)
		floats.SubTo(diff, p.X.RawRowView(ch.Winner), p.X.RawRowView(ch.Loser))
		diffs[k] = diff
	}

	beta := make([]float64, d)
	if len(diffs) > 0 {
		inv := 1 / float64(len(diffs))
		lambda := m.Lambda
		problem := optimize.Problem{
			Func: func(b []float64) float64 {
				loss := 0.0
				for _, diff := range diffs {
					loss += softplus(-floats.Dot(b, diff))
				}
				return loss*inv + lambda/2*floats.Dot(b, b)
			},
			Grad: func(grad, b []float64) {
				for k := range grad {
					grad[k] = lambda * b[k]
				}
				for _, diff := range diffs {
					floats.AddScaled(grad, -sigmoid(-floats.Dot(b, diff))*inv, diff)
				}
			},
		}

		result, err := optimize.Minimize(problem, beta, &optimize.Settings{
			GradientThreshold: 1e-8,
			MajorIterations:   500,
			Recorder:          contextRecorder{ctx: ctx},
		}, &optimize.LBFGS{})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if result == nil {
			return fmt.Errorf("pairwise logistic regression: %w", err)
		}
		if err != nil {
			log.Debug().Err(err).Str("status", result.Status.String()).Msg("pairwise logistic regression stopped early")
		}
		copy(beta, result.X)
	}

	m.beta = beta
	m.r = mulVec(p.X, beta)
	return nil
}

// contextRecorder aborts the optimizer once ctx is done.
type contextRecorder struct {
	ctx context.Context
}

func (r contextRecorder) Init() error { return nil }

func (r contextRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	return r.ctx.Err()
}

func (m *PairLR) Scores() []float64 { return m.r }

func (m *PairLR) Predict(u *Unseen) ([]float64, error) {
	if m.beta == nil {
		return nil, ErrNotFitted
	}
	if _, d := u.X.Dims(); d != len(m.beta) {
		return nil, fmt.Errorf("%w: %d features, model has %d", ErrDimension, d, len(m.beta))
	}
	return mulVec(u.X, m.beta), nil
}
