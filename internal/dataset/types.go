// Package dataset loads, validates, splits and synthesizes season data:
// a skew-symmetric comparison matrix and a per-team feature matrix per year.
package dataset

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrShape     = errors.New("shape mismatch")
	ErrAsymmetry = errors.New("comparison matrix is not skew-symmetric")
	ErrEmpty     = errors.New("empty season")
	ErrRatio     = errors.New("ratio out of range")
	ErrNonFinite = errors.New("non-finite value")
)

// skewTolerance bounds |C[i][j] + C[j][i]| for a valid comparison matrix.
const skewTolerance = 1e-9

// Season holds one year of outcomes. Comparisons[i][j] > 0 means team i beat
// team j (net wins); Comparisons[j][i] is its negation. Features row i
// describes team i.
type Season struct {
	Year        int
	Teams       []string
	Comparisons *mat.Dense
	Features    *mat.Dense
}

// Dataset maps a year to its season.
type Dataset map[int]*Season

// Choice is one observed outcome as a (winner, loser) index pair.
type Choice struct {
	Winner int
	Loser  int
}

// Trial is the per-job view of a season after the comparison split and the
// seen/unseen item split. CTrain is over seen items, CTest over unseen items.
type Trial struct {
	CTrain *mat.Dense
	CTest  *mat.Dense
	X      *mat.Dense
	XTest  *mat.Dense
	Seen   []int
	Unseen []int
}

// seasonFile is the on-disk form of a Season.
type seasonFile struct {
	Teams       []string    `json:"teams,omitempty"`
	Comparisons [][]float64 `json:"comparisons"`
	Features    [][]float64 `json:"features"`
}

type datasetFile struct {
	Seasons map[string]seasonFile `json:"seasons"`
}
