package segmentation

import (
	"math"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

// stdEpsilon is the threshold below which a column is treated as constant
const stdEpsilon = 1e-12

// Matrix converts feature vectors into a dense row-major matrix in
// FeatureNames column order.
func Matrix(vectors []*entities.FeatureVector) [][]float64 {
	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		rows[i] = v.Values()
	}
	return rows
}

// StandardScaler standardizes each column to zero mean and unit variance. The
// fitted means and deviations are kept so the transform is invertible within
// the run.
type StandardScaler struct {
	Means []float64
	Stds  []float64

	// DegenerateColumns lists columns whose variance was numerically zero.
	// Those columns pass through with std treated as 1; callers log them as
	// warnings.
	DegenerateColumns []int
}

// FitScaler computes per-column means and standard deviations over rows
func FitScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("cannot fit scaler on an empty matrix")
	}

	cols := len(rows[0])
	n := float64(len(rows))

	s := &StandardScaler{
		Means: make([]float64, cols),
		Stds:  make([]float64, cols),
	}

	for j := 0; j < cols; j++ {
		var sum float64
		for _, row := range rows {
			sum += row[j]
		}
		s.Means[j] = sum / n
	}

	for j := 0; j < cols; j++ {
		var sq float64
		for _, row := range rows {
			d := row[j] - s.Means[j]
			sq += d * d
		}
		std := math.Sqrt(sq / n)
		if std < stdEpsilon {
			s.DegenerateColumns = append(s.DegenerateColumns, j)
			std = 1
		}
		s.Stds[j] = std
	}

	return s, nil
}

// Transform returns a new matrix with every value standardized as
// (x - mean) / std. The input is not modified.
func (s *StandardScaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Means[j]) / s.Stds[j]
		}
		out[i] = scaled
	}
	return out
}

// Inverse maps standardized values back to the original feature space
func (s *StandardScaler) Inverse(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		orig := make([]float64, len(row))
		for j, v := range row {
			orig[j] = v*s.Stds[j] + s.Means[j]
		}
		out[i] = orig
	}
	return out
}
