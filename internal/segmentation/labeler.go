package segmentation

import (
	"math"
	"sort"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

// The segment label taxonomy. Two clusters may share a label; the taxonomy is
// not a bijection with the cluster count.
const (
	LabelChampions          = "Champions"
	LabelAtRisk             = "At-Risk"
	LabelBigSpenders        = "Big Spenders"
	LabelLoyalCustomers     = "Loyal Customers"
	LabelPotentialLoyalists = "Potential Loyalists"
)

// referenceStats are computed across the per-cluster aggregates, not across
// individual customers: labeling reacts to how clusters compare to each other.
type referenceStats struct {
	medianSpend     float64
	medianFrequency float64
	medianRecency   float64
	q75Recency      float64
}

// labelRule pairs a label with its predicate. Rules are evaluated in fixed
// order, first match wins, so precedence stays auditable and testable.
type labelRule struct {
	label   string
	matches func(s *entities.SegmentSummary, ref referenceStats) bool
}

var labelRules = []labelRule{
	{
		label: LabelChampions,
		matches: func(s *entities.SegmentSummary, ref referenceStats) bool {
			return s.MeanSpend > ref.medianSpend && s.MeanFrequency > ref.medianFrequency
		},
	},
	{
		label: LabelAtRisk,
		matches: func(s *entities.SegmentSummary, ref referenceStats) bool {
			return s.MeanSpend > ref.medianSpend && s.MeanRecencyDays > ref.q75Recency
		},
	},
	{
		label: LabelBigSpenders,
		matches: func(s *entities.SegmentSummary, ref referenceStats) bool {
			return s.MeanSpend > ref.medianSpend
		},
	},
	{
		label: LabelLoyalCustomers,
		matches: func(s *entities.SegmentSummary, ref referenceStats) bool {
			return s.MeanFrequency > ref.medianFrequency && s.MeanRecencyDays < ref.medianRecency
		},
	},
	{
		label:   LabelPotentialLoyalists,
		matches: func(*entities.SegmentSummary, referenceStats) bool { return true },
	},
}

// LabelSegments maps each cluster to a business label by comparing its
// aggregates against cross-cluster reference statistics. It requires at least
// two clusters; medians over a single cluster are meaningless.
func LabelSegments(summaries []*entities.SegmentSummary) (map[int]string, error) {
	if len(summaries) == 0 {
		return nil, apperrors.NewInsufficientClustersError("cannot label an empty segment summary")
	}
	if len(summaries) < 2 {
		return nil, apperrors.NewInsufficientClustersError("labeling requires at least two clusters")
	}

	ref := computeReferenceStats(summaries)

	labels := make(map[int]string, len(summaries))
	for _, s := range summaries {
		for _, rule := range labelRules {
			if rule.matches(s, ref) {
				labels[s.Cluster] = rule.label
				break
			}
		}
	}

	return labels, nil
}

func computeReferenceStats(summaries []*entities.SegmentSummary) referenceStats {
	spends := make([]float64, len(summaries))
	frequencies := make([]float64, len(summaries))
	recencies := make([]float64, len(summaries))
	for i, s := range summaries {
		spends[i] = s.MeanSpend
		frequencies[i] = s.MeanFrequency
		recencies[i] = s.MeanRecencyDays
	}
	sort.Float64s(spends)
	sort.Float64s(frequencies)
	sort.Float64s(recencies)

	return referenceStats{
		medianSpend:     percentile(spends, 0.5),
		medianFrequency: percentile(frequencies, 0.5),
		medianRecency:   percentile(recencies, 0.5),
		q75Recency:      percentile(recencies, 0.75),
	}
}

// percentile interpolates linearly between the two nearest order statistics.
// The input must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
