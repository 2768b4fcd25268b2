package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"
)

type pair struct{ i, j int }

// observedPairs lists the unordered pairs i<j with a recorded outcome.
func observedPairs(c *mat.Dense) []pair {
	n, _ := c.Dims()
	var ps []pair
	for i := range n {
		for j := i + 1; j < n; j++ {
			if c.At(i, j) != 0 {
				ps = append(ps, pair{i, j})
			}
		}
	}
	return ps
}

// SplitComparisons assigns each observed pair of c to either the train or the
// test matrix. After a random permutation the first round(ratio*m) pairs go to
// train. Both results keep c's shape and skew symmetry.
func SplitComparisons(c *mat.Dense, ratio float64, rng *rand.Rand) (train, test *mat.Dense, err error) {
	if ratio <= 0 || ratio > 1 {
		return nil, nil, fmt.Errorf("%w: train ratio %v", ErrRatio, ratio)
	}
	n, m := c.Dims()
	if n != m {
		return nil, nil, fmt.Errorf("%w: comparisons are %dx%d", ErrShape, n, m)
	}

	ps := observedPairs(c)
	rng.Shuffle(len(ps), func(a, b int) { ps[a], ps[b] = ps[b], ps[a] })
	nTrain := int(math.Round(ratio * float64(len(ps))))

	train = mat.NewDense(n, n, nil)
	test = mat.NewDense(n, n, nil)
	for k, p := range ps {
		dst := test
		if k < nTrain {
			dst = train
		}
		dst.Set(p.i, p.j, c.At(p.i, p.j))
		dst.Set(p.j, p.i, c.At(p.j, p.i))
	}
	return train, test, nil
}

// UnseenSetup marks round(sparsity*n) random items as seen and the rest as
// unseen. Training comparisons are restricted to seen items and test
// comparisons to unseen items, so inductive rankers are scored on teams they
// never saw.
func UnseenSetup(cTrain, cTest, x *mat.Dense, sparsity float64, rng *rand.Rand) (*Trial, error) {
	if sparsity <= 0 || sparsity >= 1 {
		return nil, fmt.Errorf("%w: sparsity %v", ErrRatio, sparsity)
	}
	n, _ := cTrain.Dims()
	if tn, _ := cTest.Dims(); tn != n {
		return nil, fmt.Errorf("%w: train has %d items, test has %d", ErrShape, n, tn)
	}
	if xn, _ := x.Dims(); xn != n {
		return nil, fmt.Errorf("%w: %d feature rows for %d items", ErrShape, xn, n)
	}

	nSeen := int(math.Round(sparsity * float64(n)))
	if nSeen >= n {
		nSeen = n - 1
	}
	if nSeen < 2 {
		return nil, fmt.Errorf("%w: %d items leave %d seen", ErrEmpty, n, nSeen)
	}

	perm := rng.Perm(n)
	seen := slices.Clone(perm[:nSeen])
	unseen := slices.Clone(perm[nSeen:])
	slices.Sort(seen)
	slices.Sort(unseen)

	_, d := x.Dims()
	all := make([]int, d)
	for i := range all {
		all[i] = i
	}

	return &Trial{
		CTrain: subMatrix(cTrain, seen, seen),
		CTest:  subMatrix(cTest, unseen, unseen),
		X:      subMatrix(x, seen, all),
		XTest:  subMatrix(x, unseen, all),
		Seen:   seen,
		Unseen: unseen,
	}, nil
}

// ChoiceList expands c into (winner, loser) pairs; C[i][j] > 0 contributes
// round(C[i][j]) choices, at least one.
func ChoiceList(c *mat.Dense) []Choice {
	n, _ := c.Dims()
	var out []Choice
	for i := range n {
		for j := range n {
			v := c.At(i, j)
			if v <= 0 {
				continue
			}
			reps := max(int(math.Round(v)), 1)
			for range reps {
				out = append(out, Choice{Winner: i, Loser: j})
			}
		}
	}
	return out
}

func subMatrix(m *mat.Dense, rows, cols []int) *mat.Dense {
	out := mat.NewDense(len(rows), len(cols), nil)
	for a, i := range rows {
		for b, j := range cols {
			out.Set(a, b, m.At(i, j))
		}
	}
	return out
}
