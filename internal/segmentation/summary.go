package segmentation

import (
	"fmt"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

// Summarize computes per-cluster aggregate statistics over the original
// (unscaled) feature vectors. The summaries are the immutable intermediate
// artifact between clustering and labeling: thresholds are computed against
// the finished table, never incrementally during aggregation.
func Summarize(vectors []*entities.FeatureVector, assignments []int, k int) ([]*entities.SegmentSummary, error) {
	if len(vectors) != len(assignments) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("have %d feature vectors but %d assignments", len(vectors), len(assignments)))
	}
	if k < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cluster count must be positive, got %d", k))
	}

	summaries := make([]*entities.SegmentSummary, k)
	for c := range summaries {
		summaries[c] = &entities.SegmentSummary{Cluster: c}
	}

	var totalSpend float64
	for i, fv := range vectors {
		c := assignments[i]
		if c < 0 || c >= k {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("assignment %d out of range for %d clusters", c, k))
		}

		s := summaries[c]
		s.MemberCount++
		s.MeanRecencyDays += fv.RecencyDays
		s.MeanFrequency += fv.Frequency
		s.MeanSpend += fv.TotalSpend
		s.MeanTransactionValue += fv.AvgTransactionValue
		totalSpend += fv.TotalSpend
	}

	for _, s := range summaries {
		if s.MemberCount == 0 {
			continue
		}
		n := float64(s.MemberCount)
		s.RevenueShare = 0
		if totalSpend > 0 {
			s.RevenueShare = s.MeanSpend / totalSpend
		}
		s.MeanRecencyDays /= n
		s.MeanFrequency /= n
		s.MeanSpend /= n
		s.MeanTransactionValue /= n
	}

	return summaries, nil
}
