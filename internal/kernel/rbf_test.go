package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMedianHeuristic(t *testing.T) {
	tests := []struct {
		name string
		x    *mat.Dense
		want float64
	}{
		// distances: 1, 2, 3 -> median 2
		{"odd count", mat.NewDense(3, 1, []float64{0, 1, 3}), 2},
		// distances: 1, 2, 3, 1, 2, 1 -> sorted 1 1 1 2 2 3 -> (1+2)/2
		{"even count", mat.NewDense(4, 1, []float64{0, 1, 2, 3}), 1.5},
		{"single row", mat.NewDense(1, 2, []float64{4, 5}), 1},
		{"identical rows", mat.NewDense(3, 2, []float64{1, 1, 1, 1, 1, 1}), 1},
		{"2d", mat.NewDense(2, 2, []float64{0, 0, 3, 4}), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MedianHeuristic(tt.x), 1e-12)
		})
	}
}

func TestGram(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 0,
		0, 2,
	})
	k := &RBF{Lengthscale: 1}
	g := k.Gram(x)

	require.Equal(t, 3, g.SymmetricDim())
	for i := range 3 {
		assert.Equal(t, 1.0, g.At(i, i))
		for j := range 3 {
			assert.Equal(t, g.At(i, j), g.At(j, i))
			assert.Greater(t, g.At(i, j), 0.0)
			assert.LessOrEqual(t, g.At(i, j), 1.0)
		}
	}
	assert.InDelta(t, math.Exp(-0.5), g.At(0, 1), 1e-12)
	assert.InDelta(t, math.Exp(-2.5), g.At(1, 2), 1e-12)
}

func TestCrossMatchesGram(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{0.1, 0.2, 1.5, -0.3, 2.0, 0.7})
	k := NewRBF(x)

	cross := k.Cross(x, x)
	gram := k.Gram(x)
	r, c := cross.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)
	for i := range 3 {
		for j := range 3 {
			assert.InDelta(t, gram.At(i, j), cross.At(i, j), 1e-12)
		}
	}

	y := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
	r, c = k.Cross(y, x).Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
}

func BenchmarkGram(b *testing.B) {
	data := make([]float64, 32*10)
	for i := range data {
		data[i] = float64(i%17) * 0.13
	}
	x := mat.NewDense(32, 10, data)
	k := NewRBF(x)

	b.ResetTimer()
	for b.Loop() {
		_ = k.Gram(x)
	}
}
