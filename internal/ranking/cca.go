package ranking

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CCA finds the feature direction a maximally correlated with the items'
// comparison profiles (the rows of C). Both covariance blocks are ridge
// regularised by Epsilon times their mean variance. Scores are (x - μ)·a.
type CCA struct {
	Epsilon float64

	means []float64
	a     []float64
	r     []float64
}

func NewCCA(epsilon float64) *CCA { return &CCA{Epsilon: epsilon} }

func (m *CCA) Name() string { return MethodCCA }

func (m *CCA) Fit(_ context.Context, p *Problem) error {
	xc, means := centerColumns(p.X)
	yc, _ := centerColumns(p.C)

	cxx := gram(xc)
	cxx = addDiag(cxx, m.Epsilon*meanDiag(cxx)+1e-12)
	cyy := gram(yc)
	cyy = addDiag(cyy, m.Epsilon*meanDiag(cyy)+1e-12)

	cxxInvSqrt, err := symFunc(cxx, func(v float64) float64 { return 1 / math.Sqrt(math.Max(v, 1e-12)) })
	if err != nil {
		return err
	}
	cyyInv, err := symFunc(cyy, func(v float64) float64 { return 1 / math.Max(v, 1e-12) })
	if err != nil {
		return err
	}

	// M = Cxx^-1/2 Cxy Cyy^-1 Cyx Cxx^-1/2
	var cxy, b, bc, mm mat.Dense
	cxy.Mul(xc.T(), yc)
	b.Mul(cxxInvSqrt, &cxy)
	bc.Mul(&b, cyyInv)
	mm.Mul(&bc, b.T())

	w, err := topEigenvector(symmetrize(&mm))
	if err != nil {
		return err
	}
	a := mulVec(cxxInvSqrt, w)
	r := mulVec(xc, a)
	sgn := orientation(r, p.C)

	m.means = means
	m.a = scale(sgn, a)
	m.r = scale(sgn, r)
	return nil
}

func (m *CCA) Scores() []float64 { return m.r }

func (m *CCA) Predict(u *Unseen) ([]float64, error) {
	if m.a == nil {
		return nil, ErrNotFitted
	}
	if _, d := u.X.Dims(); d != len(m.a) {
		return nil, fmt.Errorf("%w: %d features, model has %d", ErrDimension, d, len(m.a))
	}
	return mulVec(subtractMeans(u.X, m.means), m.a), nil
}

// KCCA is regularised kernel CCA between the centred feature kernel and the
// centred linear kernel of comparison profiles. With the smoothers
// A = (K+λI)⁻¹K and B = (L+λI)⁻¹L, the canonical scores are f = A^½w for the
// top eigenvector w of A^½ B A^½. Unseen items are scored through the dual
// coefficients α = (K+λI)⁻¹f.
type KCCA struct {
	Lambda float64

	rowMeans []float64
	grand    float64
	alpha    []float64
	r        []float64
}

func NewKCCA(lambda float64) *KCCA { return &KCCA{Lambda: lambda} }

func (m *KCCA) Name() string { return MethodKCCA }

func (m *KCCA) Fit(_ context.Context, p *Problem) error {
	if p.N() < 2 {
		return fmt.Errorf("%w: kcca needs at least 2 items", ErrDimension)
	}
	kc, rowMeans, grand := centerGram(p.K)

	lc, _, _ := centerGram(gram(p.C.T()))
	if d := meanDiag(lc); d > 0 {
		lc.ScaleSym(1/d, lc)
	}

	lambda := m.Lambda
	aHalf, err := symFunc(kc, func(v float64) float64 {
		return math.Sqrt(shrink(v, lambda))
	})
	if err != nil {
		return err
	}
	b, err := symFunc(lc, func(v float64) float64 {
		return shrink(v, lambda)
	})
	if err != nil {
		return err
	}

	var ab, aba mat.Dense
	ab.Mul(aHalf, b)
	aba.Mul(&ab, aHalf)

	w, err := topEigenvector(symmetrize(&aba))
	if err != nil {
		return err
	}
	f := mulVec(aHalf, w)

	alpha, err := solveSym(addDiag(kc, lambda+1e-12), f)
	if err != nil {
		return err
	}
	r := mulVec(kc, alpha)
	sgn := orientation(r, p.C)

	m.rowMeans = rowMeans
	m.grand = grand
	m.alpha = scale(sgn, alpha)
	m.r = scale(sgn, r)
	return nil
}

func (m *KCCA) Scores() []float64 { return m.r }

func (m *KCCA) Predict(u *Unseen) ([]float64, error) {
	if m.alpha == nil {
		return nil, ErrNotFitted
	}
	if _, n := u.K.Dims(); n != len(m.alpha) {
		return nil, fmt.Errorf("%w: test kernel has %d columns, model has %d", ErrDimension, n, len(m.alpha))
	}
	return kernelPredict(centerCross(u.K, m.rowMeans, m.grand), m.alpha)
}

// shrink is the ridge smoother eigenvalue v/(v+λ), 0 on the null space.
func shrink(v, lambda float64) float64 {
	v = math.Max(v, 0)
	if v+lambda <= 0 {
		return 0
	}
	return v / (v + lambda)
}
