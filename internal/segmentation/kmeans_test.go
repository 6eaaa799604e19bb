package segmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

func twoGroupRows() [][]float64 {
	return [][]float64{
		{0, 0}, {0.5, 0}, {0, 0.5}, {0.5, 0.5},
		{10, 10}, {10.5, 10}, {10, 10.5}, {10.5, 10.5},
	}
}

func TestRunKMeans_RecoversSeparatedGroups(t *testing.T) {
	rows := twoGroupRows()

	res, err := RunKMeans(rows, KMeansConfig{K: 2, Seed: 42, NInit: 5, MaxIterations: 300})
	require.NoError(t, err)
	require.Len(t, res.Assignments, len(rows))

	first := res.Assignments[0]
	second := res.Assignments[4]
	assert.NotEqual(t, first, second)
	for i := 0; i < 4; i++ {
		assert.Equal(t, first, res.Assignments[i])
	}
	for i := 4; i < 8; i++ {
		assert.Equal(t, second, res.Assignments[i])
	}

	counts := make(map[int]int)
	for _, c := range res.Assignments {
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, 2)
		counts[c]++
	}
	assert.Equal(t, 4, counts[first])
	assert.Equal(t, 4, counts[second])
	assert.Greater(t, res.Inertia, 0.0)
}

func TestRunKMeans_Deterministic(t *testing.T) {
	rows := twoGroupRows()
	cfg := KMeansConfig{K: 2, Seed: 7, NInit: 10, MaxIterations: 300}

	a, err := RunKMeans(rows, cfg)
	require.NoError(t, err)
	b, err := RunKMeans(rows, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Assignments, b.Assignments)
	assert.Equal(t, a.Centroids, b.Centroids)
	assert.Equal(t, a.Inertia, b.Inertia)
	assert.Equal(t, a.InitIndex, b.InitIndex)
}

func TestRunKMeans_EveryPointAssignedOnce(t *testing.T) {
	rows := twoGroupRows()

	res, err := RunKMeans(rows, KMeansConfig{K: 3, Seed: 1, NInit: 5, MaxIterations: 300})
	require.NoError(t, err)

	assert.Len(t, res.Assignments, len(rows))
	for _, c := range res.Assignments {
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, 3)
	}
}

func TestRunKMeans_DegenerateClusterFails(t *testing.T) {
	// More clusters than distinct positions: one cluster must end up empty
	rows := [][]float64{
		{1, 1}, {1, 1}, {1, 1}, {1, 1},
	}

	_, err := RunKMeans(rows, KMeansConfig{K: 2, Seed: 3, NInit: 4, MaxIterations: 50})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDegenerateCluster))
}

func TestRunKMeans_RejectsMoreClustersThanPoints(t *testing.T) {
	rows := [][]float64{{1}, {2}}

	_, err := RunKMeans(rows, KMeansConfig{K: 3, Seed: 1, NInit: 1, MaxIterations: 10})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestRunKMeans_RejectsNonPositiveK(t *testing.T) {
	_, err := RunKMeans([][]float64{{1}}, KMeansConfig{K: 0, Seed: 1, NInit: 1, MaxIterations: 10})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
