package ranking

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/tensorplex-labs/rankbench/internal/config"
	"github.com/tensorplex-labs/rankbench/internal/scoring"
)

// plantedLeague returns features for n items and a complete round robin in
// which item i beats item j whenever x_i·w > x_j·w.
func plantedLeague(n int, seed uint64) (c, x *mat.Dense, strength []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	w := []float64{1, -0.5, 0.25}
	x = mat.NewDense(n, len(w), nil)
	strength = make([]float64, n)
	for i := range n {
		for k := range w {
			x.Set(i, k, rng.NormFloat64())
		}
		strength[i] = floats.Dot(x.RawRowView(i), w)
	}
	c = mat.NewDense(n, n, nil)
	for i := range n {
		for j := range n {
			switch {
			case strength[i] > strength[j]:
				c.Set(i, j, 1)
			case strength[i] < strength[j]:
				c.Set(i, j, -1)
			}
		}
	}
	return c, x, strength
}

type RankingTestSuite struct {
	suite.Suite
	problem *Problem
	unseen  *Unseen
	cTest   *mat.Dense
}

func (s *RankingTestSuite) SetupSuite() {
	c, x, _ := plantedLeague(24, 7)
	seen, unseen := indices(0, 18), indices(18, 24)

	p, err := NewProblem(pick(c, seen, seen), pick(x, seen, []int{0, 1, 2}))
	s.Require().NoError(err)
	s.problem = p
	s.unseen = p.NewUnseen(pick(x, unseen, []int{0, 1, 2}))
	s.cTest = pick(c, unseen, unseen)
}

func indices(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func pick(m *mat.Dense, rows, cols []int) *mat.Dense {
	out := mat.NewDense(len(rows), len(cols), nil)
	for a, i := range rows {
		for b, j := range cols {
			out.Set(a, b, m.At(i, j))
		}
	}
	return out
}

func (s *RankingTestSuite) fit(r Ranker) []float64 {
	s.Require().NoError(r.Fit(context.Background(), s.problem))
	scores := r.Scores()
	s.Require().Len(scores, s.problem.N())
	s.Require().True(finite(scores), "%s produced non-finite scores", r.Name())
	return scores
}

func (s *RankingTestSuite) TestInSampleRecovery() {
	tests := []struct {
		ranker  Ranker
		maxRate float64
	}{
		{NewSVDNormal(), 0},
		{NewSerial(), 0},
		{NewBradleyTerry(1000, 1e-10), 0},
		{NewSVDKCov(1e-3), 0.05},
		{NewPairLR(1e-2), 0.05},
		{NewCSerial(1e-1), 0.05},
		{NewSVDCov(1e-3), 0.05},
		{NewPrefKRR(500, 1e-1, 1e-3), 0.05},
		{NewCCA(1e-3), 0.05},
		{NewKCCA(1e-1), 0.05},
	}

	for _, tt := range tests {
		s.Run(tt.ranker.Name(), func() {
			scores := s.fit(tt.ranker)
			rate, err := scoring.ExtractUpsets(scores, s.problem.C)
			s.Require().NoError(err)
			s.LessOrEqual(rate, tt.maxRate)
		})
	}
}

func (s *RankingTestSuite) TestSpectralScoresFollowWins() {
	for _, r := range []Ranker{NewSVDNormal(), NewSerial()} {
		scores := s.fit(r)
		u, err := scoring.ComputeUpsets(scores, s.problem.C)
		s.Require().NoError(err)
		s.LessOrEqual(u.Forward, u.Reverse, "%s is not oriented with net wins", r.Name())
	}
}

func (s *RankingTestSuite) TestUnseenRecovery() {
	// 15 unseen pairs: 0.2 allows three upsets, 1/3 allows five
	tests := []struct {
		ranker  Ranker
		maxRate float64
	}{
		{NewSVDCov(1e-3), 0.2},
		{NewPairLR(1e-2), 0.2},
		{NewCCA(1e-3), 0.2},
		{NewSVDKCov(1e-3), 1.0 / 3},
		{NewKCCA(1e-1), 1.0 / 3},
		{NewPrefKRR(500, 1e-1, 1e-3), 1.0 / 3},
	}

	for _, tt := range tests {
		s.Run(tt.ranker.Name(), func() {
			s.fit(tt.ranker)
			pred, err := tt.ranker.(Predictor).Predict(s.unseen)
			s.Require().NoError(err)
			s.Require().Len(pred, s.unseen.N())
			s.Require().True(finite(pred))

			rate, err := scoring.ExtractUpsets(pred, s.cTest)
			s.Require().NoError(err)
			s.LessOrEqual(rate, tt.maxRate)
		})
	}
}

func (s *RankingTestSuite) TestInductiveRankersScoreUnseenItems() {
	rankers, err := Build(nil, config.DefaultMethodsConfig())
	s.Require().NoError(err)

	inductive := 0
	for _, r := range rankers {
		s.fit(r)
		p, ok := r.(Predictor)
		if !ok {
			continue
		}
		inductive++
		pred, err := p.Predict(s.unseen)
		s.Require().NoError(err, r.Name())
		s.Len(pred, s.unseen.N())
		s.True(finite(pred))

		_, err = scoring.ExtractUpsets(pred, s.cTest)
		s.NoError(err)
	}
	s.Equal(6, inductive)
}

func (s *RankingTestSuite) TestPredictBeforeFit() {
	for _, p := range []Predictor{NewSVDCov(0.1), NewSVDKCov(0.1), NewCCA(0.1), NewKCCA(0.1), NewPairLR(0.1), NewPrefKRR(1, 0.1, 0)} {
		_, err := p.Predict(s.unseen)
		s.ErrorIs(err, ErrNotFitted)
	}
}

func (s *RankingTestSuite) TestPredictDimensionMismatch() {
	r := NewPairLR(1e-2)
	s.fit(r)
	_, err := r.Predict(&Unseen{X: mat.NewDense(2, 5, nil), K: mat.NewDense(2, 18, nil)})
	s.ErrorIs(err, ErrDimension)

	k := NewSVDKCov(1e-3)
	s.fit(k)
	_, err = k.Predict(&Unseen{X: mat.NewDense(2, 3, nil), K: mat.NewDense(2, 5, nil)})
	s.ErrorIs(err, ErrDimension)
}

func (s *RankingTestSuite) TestIterativeRankersObserveCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, r := range []Ranker{NewBradleyTerry(10, 0), NewPrefKRR(10, 0.1, 0), NewPairLR(0.1)} {
		err := r.Fit(ctx, s.problem)
		s.ErrorIs(err, context.Canceled, r.Name())
	}
}

func TestRankingTestSuite(t *testing.T) {
	suite.Run(t, new(RankingTestSuite))
}

func TestContextRecorderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := contextRecorder{ctx: ctx}
	require.NoError(t, rec.Init())
	require.NoError(t, rec.Record(nil, optimize.MajorIteration, nil))

	cancel()
	assert.ErrorIs(t, rec.Record(nil, optimize.MajorIteration, nil), context.Canceled)
}

func TestNewProblemValidates(t *testing.T) {
	_, err := NewProblem(mat.NewDense(3, 3, nil), mat.NewDense(4, 2, nil))
	require.ErrorIs(t, err, ErrDimension)
}

func TestProblemWithoutComparisons(t *testing.T) {
	_, x, _ := plantedLeague(5, 3)
	p, err := NewProblem(mat.NewDense(5, 5, nil), x)
	require.NoError(t, err)

	for _, r := range []Ranker{NewBradleyTerry(50, 1e-9), NewPrefKRR(5, 0.1, 0), NewPairLR(0.1)} {
		require.NoError(t, r.Fit(context.Background(), p), r.Name())
		assert.Len(t, r.Scores(), 5)
	}
}

func TestBradleyTerryOrdersByWins(t *testing.T) {
	// 0 beats everyone twice, 1 beats 2, 2 beats nobody
	c := mat.NewDense(3, 3, []float64{
		0, 2, 2,
		-2, 0, 1,
		-2, -1, 0,
	})
	_, x, _ := plantedLeague(3, 11)
	p, err := NewProblem(c, x)
	require.NoError(t, err)

	bt := NewBradleyTerry(1000, 1e-12)
	require.NoError(t, bt.Fit(context.Background(), p))
	r := bt.Scores()
	assert.Greater(t, r[0], r[1])
	assert.Greater(t, r[1], r[2])
	assert.InDelta(t, 0, floats.Sum(r), 1e-9)
}

func TestResolve(t *testing.T) {
	keys, err := Resolve([]string{MethodPrefKRR, MethodBT, MethodSVDCov, MethodBT})
	require.NoError(t, err)
	assert.Equal(t, []string{MethodSVDCov, MethodBT, MethodPrefKRR}, keys)

	all, err := Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, Methods(), all)
	assert.Len(t, all, 10)

	_, err = Resolve([]string{"elo"})
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestBuildNamesMatchKeys(t *testing.T) {
	rankers, err := Build(nil, config.DefaultMethodsConfig())
	require.NoError(t, err)
	for i, r := range rankers {
		assert.Equal(t, Methods()[i], r.Name())
	}
}

func TestMatchSimilarityUsesOutcomeSigns(t *testing.T) {
	// a two-game margin counts the same as a single win
	c := mat.NewDense(3, 3, []float64{
		0, 2, 1,
		-2, 0, 1,
		-1, -1, 0,
	})
	want := mat.NewSymDense(3, []float64{
		2.5, 2, 1,
		2, 2.5, 2,
		1, 2, 2.5,
	})
	assert.True(t, mat.EqualApprox(matchSimilarity(c), want, 1e-12))
}

func TestSymFunc(t *testing.T) {
	a := mat.NewSymDense(2, []float64{4, 1, 1, 3})
	half, err := symFunc(a, math.Sqrt)
	require.NoError(t, err)

	var sq mat.Dense
	sq.Mul(half, half)
	assert.True(t, mat.EqualApprox(&sq, a, 1e-10))
}

func TestCenterGram(t *testing.T) {
	k := mat.NewSymDense(3, []float64{
		1, 0.5, 0.2,
		0.5, 1, 0.4,
		0.2, 0.4, 1,
	})
	kc, rowMeans, grand := centerGram(k)
	for i := range 3 {
		assert.InDelta(t, 0, floats.Sum(mat.Row(nil, i, kc)), 1e-12)
	}

	// centring the training kernel as a cross kernel gives the same matrix
	cross := centerCross(k, rowMeans, grand)
	assert.True(t, mat.EqualApprox(cross, kc, 1e-12))
}

func TestInductive(t *testing.T) {
	for _, k := range []string{MethodSVDCov, MethodSVDKCov, MethodCCA, MethodKCCA, MethodPairLR, MethodPrefKRR} {
		assert.True(t, Inductive(k), k)
	}
	for _, k := range []string{MethodSVDNormal, MethodSerial, MethodCSerial, MethodBT, "elo"} {
		assert.False(t, Inductive(k), k)
	}
}
