// Package ranking implements pairwise-comparison rankers behind a uniform
// fit/score/predict convention. Every ranker fits on a Problem: the seen
// items' comparison matrix, features and RBF kernel. Inductive rankers also
// implement Predictor and score unseen items from their features or their
// kernel against the seen items.
package ranking

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/rankbench/internal/dataset"
	"github.com/tensorplex-labs/rankbench/internal/kernel"
)

var (
	ErrFactorize = errors.New("matrix factorization failed")
	ErrDimension = errors.New("dimension mismatch")
	ErrNotFitted = errors.New("ranker is not fitted")
	ErrUnknown   = errors.New("unknown ranking method")
)

// Problem is the training view shared by all rankers.
type Problem struct {
	C       *mat.Dense
	X       *mat.Dense
	K       *mat.SymDense
	Kernel  *kernel.RBF
	Choices []dataset.Choice
}

// NewProblem builds a Problem over c and x with an RBF kernel whose
// lengthscale comes from the median heuristic.
func NewProblem(c, x *mat.Dense) (*Problem, error) {
	k := kernel.NewRBF(x)
	p := &Problem{
		C:       c,
		X:       x,
		K:       k.Gram(x),
		Kernel:  k,
		Choices: dataset.ChoiceList(c),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// N is the number of seen items.
func (p *Problem) N() int {
	n, _ := p.C.Dims()
	return n
}

func (p *Problem) Validate() error {
	n, m := p.C.Dims()
	if n != m {
		return fmt.Errorf("%w: comparisons are %dx%d", ErrDimension, n, m)
	}
	if xn, _ := p.X.Dims(); xn != n {
		return fmt.Errorf("%w: %d feature rows for %d items", ErrDimension, xn, n)
	}
	if p.K != nil && p.K.SymmetricDim() != n {
		return fmt.Errorf("%w: kernel is %d wide for %d items", ErrDimension, p.K.SymmetricDim(), n)
	}
	return nil
}

// Unseen holds what inductive rankers may know about held-out items: their
// features and their kernel against the seen items (rows unseen, cols seen).
type Unseen struct {
	X *mat.Dense
	K *mat.Dense
}

// NewUnseen evaluates the problem kernel between xTest and the seen items.
func (p *Problem) NewUnseen(xTest *mat.Dense) *Unseen {
	return &Unseen{X: xTest, K: p.Kernel.Cross(xTest, p.X)}
}

func (u *Unseen) N() int {
	n, _ := u.X.Dims()
	return n
}

// Ranker fits a score per seen item; higher means stronger.
type Ranker interface {
	Name() string
	Fit(ctx context.Context, p *Problem) error
	// Scores returns the in-sample scores of the last Fit.
	Scores() []float64
}

// Predictor is implemented by rankers that can score unseen items.
type Predictor interface {
	Predict(u *Unseen) ([]float64, error)
}

// orientation returns -1 when r correlates negatively with net wins and 1
// otherwise. Spectral solutions are only defined up to sign.
func orientation(r []float64, c mat.Matrix) float64 {
	n, _ := c.Dims()
	dot := 0.0
	for i := range n {
		wins := 0.0
		for j := range n {
			wins += c.At(i, j)
		}
		dot += wins * r[i]
	}
	if dot < 0 {
		return -1
	}
	return 1
}
