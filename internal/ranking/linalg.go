package ranking

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// symFunc applies f to the eigenvalues of a: V f(Λ) Vᵀ.
func symFunc(a mat.Symmetric, f func(float64) float64) (*mat.SymDense, error) {
	var es mat.EigenSym
	if ok := es.Factorize(a, true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition", ErrFactorize)
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	n := len(vals)
	out := mat.NewSymDense(n, nil)
	for k, lambda := range vals {
		w := f(lambda)
		if w == 0 {
			continue
		}
		out.SymRankOne(out, w, vecs.ColView(k))
	}
	return out, nil
}

// eigenvector returns the eigenvector of a for the k-th smallest eigenvalue.
func eigenvector(a mat.Symmetric, k int) ([]float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(a, true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition", ErrFactorize)
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	return mat.Col(nil, k, &vecs), nil
}

// topEigenvector returns the eigenvector of the largest eigenvalue of a.
func topEigenvector(a mat.Symmetric) ([]float64, error) {
	return eigenvector(a, a.SymmetricDim()-1)
}

// symmetrize returns (m + mᵀ)/2 for a square m.
func symmetrize(m mat.Matrix) *mat.SymDense {
	n, _ := m.Dims()
	out := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			out.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}
	return out
}

// gram returns aᵀa.
func gram(a mat.Matrix) *mat.SymDense {
	_, c := a.Dims()
	out := mat.NewSymDense(c, nil)
	out.SymOuterK(1, a.T())
	return out
}

// addDiag returns a + lambda*I without modifying a.
func addDiag(a mat.Symmetric, lambda float64) *mat.SymDense {
	n := a.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(a)
	for i := range n {
		out.SetSym(i, i, out.At(i, i)+lambda)
	}
	return out
}

func meanDiag(a mat.Symmetric) float64 {
	n := a.SymmetricDim()
	if n == 0 {
		return 0
	}
	return mat.Trace(a) / float64(n)
}

// solveSym solves a x = b for symmetric positive definite a.
func solveSym(a mat.Symmetric, b []float64) ([]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, fmt.Errorf("%w: cholesky", ErrFactorize)
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(len(b), b)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("cholesky solve: %w", err)
		}
		log.Debug().Float64("condition", float64(cond)).Msg("ill-conditioned solve")
	}
	return x.RawVector().Data, nil
}

// ridge solves min ||a β - y||² + lambda ||β||².
func ridge(a mat.Matrix, y []float64, lambda float64) ([]float64, error) {
	return solveSym(addDiag(gram(a), lambda), mulVec(a.T(), y))
}

// withIntercept appends a column of ones to x.
func withIntercept(x mat.Matrix) *mat.Dense {
	n, d := x.Dims()
	out := mat.NewDense(n, d+1, nil)
	for i := range n {
		for j := range d {
			out.Set(i, j, x.At(i, j))
		}
		out.Set(i, d, 1)
	}
	return out
}

// centerColumns subtracts column means from x and returns the means.
func centerColumns(x mat.Matrix) (*mat.Dense, []float64) {
	n, d := x.Dims()
	means := make([]float64, d)
	for j := range d {
		means[j] = floats.Sum(mat.Col(nil, j, x)) / float64(n)
	}
	out := mat.NewDense(n, d, nil)
	out.Apply(func(_, j int, v float64) float64 { return v - means[j] }, x)
	return out, means
}

// subtractMeans subtracts precomputed column means from x.
func subtractMeans(x mat.Matrix, means []float64) *mat.Dense {
	n, d := x.Dims()
	out := mat.NewDense(n, d, nil)
	out.Apply(func(_, j int, v float64) float64 { return v - means[j] }, x)
	return out
}

// centerGram double-centres a kernel matrix: H K H with H = I - 11ᵀ/n.
func centerGram(k mat.Symmetric) (*mat.SymDense, []float64, float64) {
	n := k.SymmetricDim()
	rowMeans := make([]float64, n)
	grand := 0.0
	for i := range n {
		for j := range n {
			rowMeans[i] += k.At(i, j)
		}
		grand += rowMeans[i]
		rowMeans[i] /= float64(n)
	}
	grand /= float64(n * n)

	out := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			out.SetSym(i, j, k.At(i, j)-rowMeans[i]-rowMeans[j]+grand)
		}
	}
	return out, rowMeans, grand
}

// centerCross centres a test-by-train kernel consistently with centerGram.
func centerCross(kTest mat.Matrix, trainRowMeans []float64, grand float64) *mat.Dense {
	m, n := kTest.Dims()
	out := mat.NewDense(m, n, nil)
	for i := range m {
		rowMean := floats.Sum(mat.Row(nil, i, kTest)) / float64(n)
		for j := range n {
			out.Set(i, j, kTest.At(i, j)-rowMean-trainRowMeans[j]+grand)
		}
	}
	return out
}

// mulVec returns a·x as a slice.
func mulVec(a mat.Matrix, x []float64) []float64 {
	var out mat.VecDense
	out.MulVec(a, mat.NewVecDense(len(x), x))
	return out.RawVector().Data
}

func scale(s float64, x []float64) []float64 {
	floats.Scale(s, x)
	return x
}

func finite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
