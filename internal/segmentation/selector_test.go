package segmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepClusterCounts_CoversRangeInOrder(t *testing.T) {
	rows := twoGroupRows()

	points, err := SweepClusterCounts(rows, 2, 4, KMeansConfig{Seed: 42, NInit: 5, MaxIterations: 300}, false)
	require.NoError(t, err)
	require.Len(t, points, 3)

	for i, p := range points {
		assert.Equal(t, i+2, p.K)
		assert.GreaterOrEqual(t, p.Inertia, 0.0)
		assert.GreaterOrEqual(t, p.Silhouette, -1.0)
		assert.LessOrEqual(t, p.Silhouette, 1.0)
	}

	// Two well-separated groups: k=2 should look clearly good
	assert.Greater(t, points[0].Silhouette, 0.5)
}

func TestSweepClusterCounts_InvalidRangeFails(t *testing.T) {
	rows := twoGroupRows()

	_, err := SweepClusterCounts(rows, 1, 4, KMeansConfig{Seed: 1, NInit: 1, MaxIterations: 10}, false)
	assert.Error(t, err)

	_, err = SweepClusterCounts(rows, 5, 4, KMeansConfig{Seed: 1, NInit: 1, MaxIterations: 10}, false)
	assert.Error(t, err)
}

func TestSilhouetteScore_KnownValue(t *testing.T) {
	rows := [][]float64{{0}, {1}, {10}, {11}}
	assignments := []int{0, 0, 1, 1}

	// Outer points: a=1, b=10.5; inner points: a=1, b=9.5
	expected := (2*(9.5/10.5) + 2*(8.5/9.5)) / 4
	assert.InDelta(t, expected, SilhouetteScore(rows, assignments, 2), 1e-9)
}

func TestSilhouetteScore_SingletonClustersContributeZero(t *testing.T) {
	rows := [][]float64{{0}, {10}}
	assignments := []int{0, 1}

	assert.Equal(t, 0.0, SilhouetteScore(rows, assignments, 2))
}
