package segmentation

import (
	"fmt"
	"math"

	"github.com/schollz/progressbar/v3"

	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

// SweepPoint records the fit quality observed for one candidate cluster count
type SweepPoint struct {
	K          int     `json:"k"`
	Inertia    float64 `json:"inertia"`
	Silhouette float64 `json:"silhouette"`
}

// SweepClusterCounts runs the clustering engine for every candidate k in
// [minK, maxK] and records inertia and silhouette score per candidate. The
// sweep is diagnostic: it informs the operator but the production cluster
// count stays a fixed configuration value.
func SweepClusterCounts(rows [][]float64, minK, maxK int, base KMeansConfig, verbose bool) ([]SweepPoint, error) {
	if minK < 2 || maxK < minK {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid sweep range [%d, %d]", minK, maxK))
	}

	var bar *progressbar.ProgressBar
	if verbose {
		bar = progressbar.Default(int64(maxK - minK + 1))
	}

	points := make([]SweepPoint, 0, maxK-minK+1)
	for k := minK; k <= maxK; k++ {
		cfg := base
		cfg.K = k

		res, err := RunKMeans(rows, cfg)
		if err != nil {
			return nil, fmt.Errorf("sweep failed at k=%d: %w", k, err)
		}

		points = append(points, SweepPoint{
			K:          k,
			Inertia:    res.Inertia,
			Silhouette: SilhouetteScore(rows, res.Assignments, k),
		})

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return points, nil
}

// SilhouetteScore computes the mean silhouette coefficient over all rows.
// For each point, cohesion a is its mean distance to the rest of its own
// cluster and separation b is its mean distance to the nearest other cluster;
// the coefficient is (b-a)/max(a,b), in [-1, 1]. Points alone in their
// cluster contribute zero.
func SilhouetteScore(rows [][]float64, assignments []int, k int) float64 {
	n := len(rows)
	if n == 0 || k < 2 {
		return 0
	}

	counts := make([]int, k)
	for _, c := range assignments {
		counts[c]++
	}

	var total float64
	for i, row := range rows {
		own := assignments[i]
		if counts[own] <= 1 {
			continue
		}

		// Mean distance from row i to every cluster
		sums := make([]float64, k)
		for j, other := range rows {
			if i == j {
				continue
			}
			sums[assignments[j]] += math.Sqrt(squaredDistance(row, other))
		}

		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if m := sums[c] / float64(counts[c]); m < b {
				b = m
			}
		}

		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}

	return total / float64(n)
}
