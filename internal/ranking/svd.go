package ranking

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// svdScores ranks from the comparison matrix alone. A noiseless skew-symmetric
// C = r1ᵀ - 1rᵀ has rank two and its leading left singular vectors span
// {r, 1}; the unit vector of that span orthogonal to 1 is the centred r.
func svdScores(c mat.Matrix) ([]float64, error) {
	n, _ := c.Dims()
	if n < 2 {
		return nil, fmt.Errorf("%w: svd ranking needs at least 2 items, got %d", ErrDimension, n)
	}

	var svd mat.SVD
	if ok := svd.Factorize(c, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: svd", ErrFactorize)
	}
	var u mat.Dense
	svd.UTo(&u)

	u1, u2 := mat.Col(nil, 0, &u), mat.Col(nil, 1, &u)
	s1, s2 := floats.Sum(u1), floats.Sum(u2)
	r := make([]float64, n)
	for i := range r {
		r[i] = s2*u1[i] - s1*u2[i]
	}
	if floats.Norm(r, 2) < 1e-12 {
		// the span is already orthogonal to 1
		copy(r, u1)
		floats.AddConst(-floats.Sum(r)/float64(n), r)
	}
	if norm := floats.Norm(r, 2); norm > 0 {
		floats.Scale(1/norm, r)
	}
	return scale(orientation(r, c), r), nil
}

// SVDNormal is SVD ranking on the comparison matrix only.
type SVDNormal struct {
	r []float64
}

func NewSVDNormal() *SVDNormal { return &SVDNormal{} }

func (s *SVDNormal) Name() string { return MethodSVDNormal }

func (s *SVDNormal) Fit(_ context.Context, p *Problem) error {
	r, err := svdScores(p.C)
	if err != nil {
		return err
	}
	s.r = r
	return nil
}

func (s *SVDNormal) Scores() []float64 { return s.r }

// SVDCov explains the SVD scores with a ridge regression on the features, so
// that any item with features can be scored.
type SVDCov struct {
	Lambda float64

	beta []float64
	r    []float64
}

func NewSVDCov(lambda float64) *SVDCov { return &SVDCov{Lambda: lambda} }

func (s *SVDCov) Name() string { return MethodSVDCov }

func (s *SVDCov) Fit(_ context.Context, p *Problem) error {
	base, err := svdScores(p.C)
	if err != nil {
		return err
	}
	a := withIntercept(p.X)
	beta, err := ridge(a, base, s.Lambda)
	if err != nil {
		return err
	}
	s.beta = beta
	s.r = mulVec(a, beta)
	return nil
}

func (s *SVDCov) Scores() []float64 { return s.r }

func (s *SVDCov) Predict(u *Unseen) ([]float64, error) {
	if s.beta == nil {
		return nil, ErrNotFitted
	}
	if _, d := u.X.Dims(); d+1 != len(s.beta) {
		return nil, fmt.Errorf("%w: %d features, model has %d", ErrDimension, d, len(s.beta)-1)
	}
	return mulVec(withIntercept(u.X), s.beta), nil
}

// SVDKCov is SVDCov with kernel ridge regression: scores are Kα.
type SVDKCov struct {
	Lambda float64

	alpha []float64
	r     []float64
}

func NewSVDKCov(lambda float64) *SVDKCov { return &SVDKCov{Lambda: lambda} }

func (s *SVDKCov) Name() string { return MethodSVDKCov }

func (s *SVDKCov) Fit(_ context.Context, p *Problem) error {
	base, err := svdScores(p.C)
	if err != nil {
		return err
	}
	alpha, err := solveSym(addDiag(p.K, s.Lambda), base)
	if err != nil {
		return err
	}
	s.alpha = alpha
	s.r = mulVec(p.K, alpha)
	return nil
}

func (s *SVDKCov) Scores() []float64 { return s.r }

func (s *SVDKCov) Predict(u *Unseen) ([]float64, error) {
	return kernelPredict(u.K, s.alpha)
}

// kernelPredict evaluates Σ_j K(i, j) α_j for every unseen row i.
func kernelPredict(kTest mat.Matrix, alpha []float64) ([]float64, error) {
	if alpha == nil {
		return nil, ErrNotFitted
	}
	if _, n := kTest.Dims(); n != len(alpha) {
		return nil, fmt.Errorf("%w: test kernel has %d columns, model has %d", ErrDimension, n, len(alpha))
	}
	return mulVec(kTest, alpha), nil
}
