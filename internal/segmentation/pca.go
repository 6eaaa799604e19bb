package segmentation

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

// PCAResult holds the low-dimensional projection used for visualization. It
// never feeds back into clustering or labeling.
type PCAResult struct {
	// Coordinates has one row per input row and one column per kept component
	Coordinates [][]float64

	// Components holds the kept principal directions, one per row
	Components [][]float64

	// ExplainedVariance is the fraction of total variance captured by each
	// kept component
	ExplainedVariance []float64
}

// ProjectPCA projects rows onto their top-dims directions of maximum
// variance. The projection is deterministic: eigenvectors are sorted by
// eigenvalue (descending) and each is oriented so its largest-magnitude entry
// is positive.
func ProjectPCA(rows [][]float64, dims int) (*PCAResult, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("cannot project an empty matrix")
	}
	cols := len(rows[0])
	if dims < 1 || dims > cols {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("projection dims must be in [1, %d], got %d", cols, dims))
	}

	n := float64(len(rows))

	means := make([]float64, cols)
	for _, row := range rows {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}

	centered := make([][]float64, len(rows))
	for i, row := range rows {
		centered[i] = make([]float64, cols)
		for j, v := range row {
			centered[i][j] = v - means[j]
		}
	}

	cov := make([][]float64, cols)
	for i := range cov {
		cov[i] = make([]float64, cols)
	}
	for _, row := range centered {
		for i := 0; i < cols; i++ {
			for j := i; j < cols; j++ {
				cov[i][j] += row[i] * row[j]
			}
		}
	}
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			cov[i][j] /= n
			cov[j][i] = cov[i][j]
		}
	}

	eigenvalues, eigenvectors := jacobiEigen(cov)

	order := make([]int, cols)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return eigenvalues[order[a]] > eigenvalues[order[b]]
	})

	var totalVariance float64
	for _, ev := range eigenvalues {
		if ev > 0 {
			totalVariance += ev
		}
	}

	components := make([][]float64, dims)
	explained := make([]float64, dims)
	for d := 0; d < dims; d++ {
		idx := order[d]
		comp := make([]float64, cols)
		maxAbs, sign := 0.0, 1.0
		for j := 0; j < cols; j++ {
			comp[j] = eigenvectors[j][idx]
			if a := math.Abs(comp[j]); a > maxAbs {
				maxAbs = a
				sign = 1
				if comp[j] < 0 {
					sign = -1
				}
			}
		}
		for j := range comp {
			comp[j] *= sign
		}
		components[d] = comp

		if ev := eigenvalues[idx]; ev > 0 && totalVariance > 0 {
			explained[d] = ev / totalVariance
		}
	}

	coords := make([][]float64, len(rows))
	for i, row := range centered {
		coords[i] = make([]float64, dims)
		for d, comp := range components {
			var dot float64
			for j, v := range row {
				dot += v * comp[j]
			}
			coords[i][d] = dot
		}
	}

	return &PCAResult{
		Coordinates:       coords,
		Components:        components,
		ExplainedVariance: explained,
	}, nil
}

// jacobiEigen diagonalizes a symmetric matrix with cyclic Jacobi rotations.
// Returns the eigenvalues and a matrix whose columns are the corresponding
// eigenvectors. The feature covariance is small and symmetric, so this
// converges in a handful of sweeps.
func jacobiEigen(m [][]float64) ([]float64, [][]float64) {
	size := len(m)

	a := make([][]float64, size)
	v := make([][]float64, size)
	for i := 0; i < size; i++ {
		a[i] = append([]float64(nil), m[i]...)
		v[i] = make([]float64, size)
		v[i][i] = 1
	}

	const (
		maxSweeps = 100
		tolerance = 1e-12
	)

	for sweep := 0; sweep < maxSweeps; sweep++ {
		var off float64
		for i := 0; i < size; i++ {
			for j := i + 1; j < size; j++ {
				off += a[i][j] * a[i][j]
			}
		}
		if off < tolerance {
			break
		}

		for p := 0; p < size-1; p++ {
			for q := p + 1; q < size; q++ {
				if math.Abs(a[p][q]) < tolerance/float64(size*size) {
					continue
				}

				theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
				t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				c := 1 / math.Sqrt(t*t+1)
				s := t * c

				for i := 0; i < size; i++ {
					aip, aiq := a[i][p], a[i][q]
					a[i][p] = c*aip - s*aiq
					a[i][q] = s*aip + c*aiq
				}
				for i := 0; i < size; i++ {
					api, aqi := a[p][i], a[q][i]
					a[p][i] = c*api - s*aqi
					a[q][i] = s*api + c*aqi
				}
				for i := 0; i < size; i++ {
					vip, viq := v[i][p], v[i][q]
					v[i][p] = c*vip - s*viq
					v[i][q] = s*vip + c*viq
				}
			}
		}
	}

	eigenvalues := make([]float64, size)
	for i := 0; i < size; i++ {
		eigenvalues[i] = a[i][i]
	}
	return eigenvalues, v
}
