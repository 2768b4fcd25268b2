package scoring

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// ComputeUpsets compares the order implied by r with every observed pair
// i<j of c. A pair is an upset when sign(r_i - r_j) differs from the sign of
// c[i][j]; tied scores are upsets in both orientations.
func ComputeUpsets(r []float64, c mat.Matrix) (Upsets, error) {
	n, m := c.Dims()
	if n != m || len(r) != n {
		return Upsets{}, fmt.Errorf("%w: %d scores for %dx%d comparisons", ErrLength, len(r), n, m)
	}

	var u Upsets
	for i := range n {
		for j := i + 1; j < n; j++ {
			obs := sign(c.At(i, j))
			if obs == 0 {
				continue
			}
			u.Comparisons++
			pred := sign(r[i] - r[j])
			if pred != obs {
				u.Forward++
			}
			if -pred != obs {
				u.Reverse++
			}
		}
	}
	return u, nil
}

// ExtractUpsets returns the orientation-free upset rate of r on c.
func ExtractUpsets(r []float64, c mat.Matrix) (float64, error) {
	u, err := ComputeUpsets(r, c)
	if err != nil {
		return 0, err
	}
	return u.Rate(), nil
}
