package ranking

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// matchSimilarity counts, for every pair of items, how many comparisons they
// agree on: S = (n 11ᵀ + sign(C) sign(C)ᵀ) / 2.
func matchSimilarity(c mat.Matrix) *mat.SymDense {
	n, _ := c.Dims()
	sgn := mat.NewDense(n, n, nil)
	sgn.Apply(func(_, _ int, v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		}
		return 0
	}, c)

	s := mat.NewSymDense(n, nil)
	s.SymOuterK(0.5, sgn)
	for i := range n {
		for j := i; j < n; j++ {
			s.SetSym(i, j, s.At(i, j)+float64(n)/2)
		}
	}
	return s
}

// fiedler returns the eigenvector of the second smallest eigenvalue of the
// Laplacian diag(S1) - S, which orders the items along the similarity chain.
func fiedler(s mat.Symmetric) ([]float64, error) {
	n := s.SymmetricDim()
	if n < 2 {
		return nil, fmt.Errorf("%w: seriation needs at least 2 items, got %d", ErrDimension, n)
	}
	l := mat.NewSymDense(n, nil)
	for i := range n {
		deg := 0.0
		for j := range n {
			deg += s.At(i, j)
			if j > i {
				l.SetSym(i, j, -s.At(i, j))
			}
		}
		l.SetSym(i, i, deg-s.At(i, i))
	}
	return eigenvector(l, 1)
}

// Serial is SerialRank: spectral seriation of the match similarity.
type Serial struct {
	r []float64
}

func NewSerial() *Serial { return &Serial{} }

func (s *Serial) Name() string { return MethodSerial }

func (s *Serial) Fit(_ context.Context, p *Problem) error {
	r, err := fiedler(matchSimilarity(p.C))
	if err != nil {
		return err
	}
	s.r = scale(orientation(r, p.C), r)
	return nil
}

func (s *Serial) Scores() []float64 { return s.r }

// CSerial adds the feature kernel to the match similarity, S/n + λK, so that
// teams with similar statistics are placed close in the seriation.
type CSerial struct {
	Lambda float64

	r []float64
}

func NewCSerial(lambda float64) *CSerial { return &CSerial{Lambda: lambda} }

func (s *CSerial) Name() string { return MethodCSerial }

func (s *CSerial) Fit(_ context.Context, p *Problem) error {
	n := p.N()
	sim := matchSimilarity(p.C)
	sim.ScaleSym(1/float64(n), sim)
	sim.AddSym(sim, scaledSym(s.Lambda, p.K))

	r, err := fiedler(sim)
	if err != nil {
		return err
	}
	s.r = scale(orientation(r, p.C), r)
	return nil
}

func (s *CSerial) Scores() []float64 { return s.r }

func scaledSym(f float64, a mat.Symmetric) *mat.SymDense {
	out := mat.NewSymDense(a.SymmetricDim(), nil)
	out.ScaleSym(f, a)
	return out
}
