package segmentation

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

// KMeansConfig holds the clustering engine parameters
type KMeansConfig struct {
	K             int
	Seed          int64
	NInit         int
	MaxIterations int
}

// KMeansResult is the outcome of one converged clustering run
type KMeansResult struct {
	// Assignments maps each input row index to a cluster index in [0, K)
	Assignments []int

	// Centroids holds the final centroid per cluster
	Centroids [][]float64

	// Inertia is the sum of squared distances from each row to its centroid
	Inertia float64

	// Iterations is the number of refinement passes the winning run took
	Iterations int

	// InitIndex identifies which initialization won
	InitIndex int
}

// RunKMeans partitions rows into cfg.K clusters via iterative centroid
// refinement. It runs cfg.NInit independent seeded initializations and keeps
// the one with the lowest final inertia, tie-broken by initialization index,
// so the result is identical no matter in which order the initializations are
// evaluated. A cluster left empty after convergence fails the run with a
// DEGENERATE_CLUSTER error instead of silently renumbering clusters.
func RunKMeans(rows [][]float64, cfg KMeansConfig) (*KMeansResult, error) {
	if cfg.K < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cluster count must be positive, got %d", cfg.K))
	}
	if len(rows) < cfg.K {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot form %d clusters from %d points", cfg.K, len(rows)))
	}
	if cfg.NInit < 1 {
		cfg.NInit = 1
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = 300
	}

	// Every initialization writes into its own slot; the reduction below is
	// the only place a winner is chosen, so concurrent evaluation cannot
	// change the outcome.
	results := make([]*KMeansResult, cfg.NInit)
	errs := make([]error, cfg.NInit)

	var wg sync.WaitGroup
	for i := 0; i < cfg.NInit; i++ {
		wg.Add(1)
		go func(initIdx int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(initIdx)))
			res, err := lloydRun(rows, cfg.K, cfg.MaxIterations, rng)
			if err != nil {
				errs[initIdx] = err
				return
			}
			res.InitIndex = initIdx
			results[initIdx] = res
		}(i)
	}
	wg.Wait()

	var best *KMeansResult
	for _, res := range results {
		if res == nil {
			continue
		}
		// Strict comparison keeps the lowest init index on inertia ties
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	if best == nil {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		return nil, apperrors.NewInternalError("no clustering initialization produced a result", nil)
	}

	return best, nil
}

// lloydRun performs one full k-means run: seeded k-means++ initialization
// followed by assign/recompute passes until assignments stop changing or the
// iteration cap is reached.
func lloydRun(rows [][]float64, k, maxIter int, rng *rand.Rand) (*KMeansResult, error) {
	n := len(rows)
	dims := len(rows[0])

	centroids := seedCentroids(rows, k, rng)
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	iterations := 0
	for iter := 0; iter < maxIter; iter++ {
		iterations = iter + 1

		changed := false
		for i, row := range rows {
			c := nearestCentroid(row, centroids)
			if c != assignments[i] {
				assignments[i] = c
				changed = true
			}
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, row := range rows {
			c := assignments[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Keep the previous centroid; if the cluster is still empty
				// at convergence the run fails below.
				continue
			}
			for j := 0; j < dims; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}

		if !changed {
			break
		}
	}

	memberCounts := make([]int, k)
	for _, c := range assignments {
		memberCounts[c]++
	}
	for c, count := range memberCounts {
		if count == 0 {
			return nil, apperrors.NewDegenerateClusterError(
				fmt.Sprintf("cluster %d has no members after convergence; retry with a different seed or fewer clusters", c))
		}
	}

	var inertia float64
	for i, row := range rows {
		inertia += squaredDistance(row, centroids[assignments[i]])
	}

	return &KMeansResult{
		Assignments: assignments,
		Centroids:   centroids,
		Inertia:     inertia,
		Iterations:  iterations,
	}, nil
}

// seedCentroids picks k starting centroids k-means++ style: the first
// uniformly at random, each subsequent one with probability proportional to
// its squared distance from the nearest centroid chosen so far.
func seedCentroids(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(rows)
	centroids := make([][]float64, 0, k)

	first := rows[rng.Intn(n)]
	centroids = append(centroids, append([]float64(nil), first...))

	dists := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, row := range rows {
			d := math.Inf(1)
			for _, c := range centroids {
				if sq := squaredDistance(row, c); sq < d {
					d = sq
				}
			}
			dists[i] = d
			total += d
		}

		var next []float64
		if total == 0 {
			// All points coincide with existing centroids; fall back to a
			// uniform pick and let the empty-cluster check catch degeneracy.
			next = rows[rng.Intn(n)]
		} else {
			target := rng.Float64() * total
			idx := n - 1
			var cum float64
			for i, d := range dists {
				cum += d
				if cum >= target {
					idx = i
					break
				}
			}
			next = rows[idx]
		}
		centroids = append(centroids, append([]float64(nil), next...))
	}

	return centroids
}

// nearestCentroid returns the index of the closest centroid, lowest index
// winning ties so assignment is deterministic.
func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := squaredDistance(row, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := squaredDistance(row, centroids[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
