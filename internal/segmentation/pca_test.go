package segmentation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectPCA_PerfectlyCorrelatedData(t *testing.T) {
	// y = 2x: all variance lies along a single direction
	rows := [][]float64{
		{-2, -4},
		{-1, -2},
		{1, 2},
		{2, 4},
	}

	res, err := ProjectPCA(rows, 2)
	require.NoError(t, err)

	assert.InDelta(t, 1, res.ExplainedVariance[0], 1e-9)
	assert.InDelta(t, 0, res.ExplainedVariance[1], 1e-9)

	// First component is (1,2)/sqrt(5) after sign normalization, so the
	// projection of (x, 2x) is sqrt(5)*x
	for i, row := range rows {
		assert.InDelta(t, math.Sqrt(5)*row[0], res.Coordinates[i][0], 1e-9)
		assert.InDelta(t, 0, res.Coordinates[i][1], 1e-9)
	}
}

func TestProjectPCA_ComponentsAreOrthonormal(t *testing.T) {
	rows := [][]float64{
		{1, 0.5, 3},
		{2, -1.5, 0},
		{-3, 2.5, 1},
		{0.5, 1, -2},
		{4, -0.5, 2},
	}

	res, err := ProjectPCA(rows, 3)
	require.NoError(t, err)
	require.Len(t, res.Components, 3)

	for i := 0; i < 3; i++ {
		var norm float64
		for _, v := range res.Components[i] {
			norm += v * v
		}
		assert.InDelta(t, 1, math.Sqrt(norm), 1e-9)

		for j := i + 1; j < 3; j++ {
			var dot float64
			for d := range res.Components[i] {
				dot += res.Components[i][d] * res.Components[j][d]
			}
			assert.InDelta(t, 0, dot, 1e-9)
		}
	}

	var total float64
	for _, ev := range res.ExplainedVariance {
		assert.GreaterOrEqual(t, ev, 0.0)
		total += ev
	}
	assert.InDelta(t, 1, total, 1e-9)
}

func TestProjectPCA_VarianceOrdering(t *testing.T) {
	rows := [][]float64{
		{-10, -1},
		{-5, 1},
		{5, -1},
		{10, 1},
	}

	res, err := ProjectPCA(rows, 2)
	require.NoError(t, err)

	assert.Greater(t, res.ExplainedVariance[0], res.ExplainedVariance[1])
}

func TestProjectPCA_Deterministic(t *testing.T) {
	rows := [][]float64{
		{1, 2, 3}, {4, 5, 6}, {7, 8, 10}, {-1, 0, 2},
	}

	a, err := ProjectPCA(rows, 3)
	require.NoError(t, err)
	b, err := ProjectPCA(rows, 3)
	require.NoError(t, err)

	assert.Equal(t, a.Coordinates, b.Coordinates)
	assert.Equal(t, a.ExplainedVariance, b.ExplainedVariance)
}

func TestProjectPCA_InvalidInput(t *testing.T) {
	_, err := ProjectPCA(nil, 3)
	assert.Error(t, err)

	_, err = ProjectPCA([][]float64{{1, 2}}, 3)
	assert.Error(t, err)

	_, err = ProjectPCA([][]float64{{1, 2}}, 0)
	assert.Error(t, err)
}
