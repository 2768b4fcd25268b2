package scoring

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// unitRange maps v from [lo, hi] onto [0, 1]; a degenerate range maps to 0.
func unitRange(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// MinMaxScale rescales scores onto [0, 1] by their own range.
func MinMaxScale(scores []float64) []float64 {
	result := make([]float64, len(scores))
	if len(scores) == 0 {
		return result
	}
	lo, hi := floats.Min(scores), floats.Max(scores)
	for i, v := range scores {
		result[i] = unitRange(v, lo, hi)
	}
	return result
}

// MinMaxScaler maps every feature column to [0, 1] using the column ranges of
// the matrix it was fitted on. Constant columns map to 0.
type MinMaxScaler struct {
	Min []float64
	Max []float64
}

func FitMinMaxScaler(x mat.Matrix) *MinMaxScaler {
	_, cols := x.Dims()
	s := &MinMaxScaler{Min: make([]float64, cols), Max: make([]float64, cols)}
	for colIdx := range cols {
		col := mat.Col(nil, colIdx, x)
		s.Min[colIdx] = floats.Min(col)
		s.Max[colIdx] = floats.Max(col)
	}
	return s
}

// Transform scales x with the fitted ranges. Rows from outside the fitted
// matrix may fall outside [0, 1].
func (s *MinMaxScaler) Transform(x mat.Matrix) *mat.Dense {
	rows, cols := x.Dims()
	scaled := mat.NewDense(rows, cols, nil)
	scaled.Apply(func(_, j int, v float64) float64 {
		return unitRange(v, s.Min[j], s.Max[j])
	}, x)
	return scaled
}
