// Package kernel builds RBF similarity matrices over feature rows.
package kernel

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RBF is the Gaussian kernel k(x, y) = exp(-||x-y||^2 / (2 l^2)).
type RBF struct {
	Lengthscale float64
}

// NewRBF returns an RBF kernel whose lengthscale is the median heuristic of x.
func NewRBF(x mat.Matrix) *RBF {
	return &RBF{Lengthscale: MedianHeuristic(x)}
}

// Eval evaluates the kernel on two vectors of equal length.
func (k *RBF) Eval(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Exp(-d * d / (2 * k.Lengthscale * k.Lengthscale))
}

// Gram returns the symmetric kernel matrix over the rows of x.
func (k *RBF) Gram(x mat.Matrix) *mat.SymDense {
	n, _ := x.Dims()
	rows := rowSlices(x)
	g := mat.NewSymDense(n, nil)
	for i := range n {
		g.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			g.SetSym(i, j, k.Eval(rows[i], rows[j]))
		}
	}
	return g
}

// Cross returns the kernel between the rows of a and the rows of b.
func (k *RBF) Cross(a, b mat.Matrix) *mat.Dense {
	ra, rb := rowSlices(a), rowSlices(b)
	out := mat.NewDense(len(ra), len(rb), nil)
	for i, x := range ra {
		for j, y := range rb {
			out.Set(i, j, k.Eval(x, y))
		}
	}
	return out
}

// MedianHeuristic returns the median Euclidean distance between distinct rows
// of x. It falls back to 1 when x has fewer than two rows or the median is 0.
func MedianHeuristic(x mat.Matrix) float64 {
	rows := rowSlices(x)
	if len(rows) < 2 {
		return 1
	}
	dists := make([]float64, 0, len(rows)*(len(rows)-1)/2)
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			dists = append(dists, floats.Distance(rows[i], rows[j], 2))
		}
	}
	slices.Sort(dists)

	m := len(dists) / 2
	med := dists[m]
	if len(dists)%2 == 0 {
		med = (dists[m-1] + dists[m]) / 2
	}
	if med == 0 {
		return 1
	}
	return med
}

func rowSlices(x mat.Matrix) [][]float64 {
	n, _ := x.Dims()
	out := make([][]float64, n)
	for i := range n {
		out[i] = mat.Row(nil, i, x)
	}
	return out
}
