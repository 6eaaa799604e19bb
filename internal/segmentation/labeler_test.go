package segmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

func TestLabelSegments_ChampionsAndPotentialLoyalists(t *testing.T) {
	summaries := []*entities.SegmentSummary{
		{Cluster: 0, MemberCount: 5, MeanSpend: 500, MeanFrequency: 10, MeanRecencyDays: 5},
		{Cluster: 1, MemberCount: 5, MeanSpend: 100, MeanFrequency: 2, MeanRecencyDays: 10},
	}

	labels, err := LabelSegments(summaries)
	require.NoError(t, err)

	assert.Equal(t, LabelChampions, labels[0])
	assert.Equal(t, LabelPotentialLoyalists, labels[1])
}

func TestLabelSegments_AtRiskBeatsBigSpenders(t *testing.T) {
	// Cluster 2 spends above the median but has gone quiet: recency 100 sits
	// past the 75th percentile (55), so At-Risk fires before Big Spenders.
	summaries := []*entities.SegmentSummary{
		{Cluster: 0, MemberCount: 3, MeanSpend: 100, MeanFrequency: 10, MeanRecencyDays: 5},
		{Cluster: 1, MemberCount: 3, MeanSpend: 200, MeanFrequency: 5, MeanRecencyDays: 10},
		{Cluster: 2, MemberCount: 3, MeanSpend: 600, MeanFrequency: 2, MeanRecencyDays: 100},
	}

	labels, err := LabelSegments(summaries)
	require.NoError(t, err)

	assert.Equal(t, LabelAtRisk, labels[2])
	assert.Equal(t, LabelLoyalCustomers, labels[0])
	assert.Equal(t, LabelPotentialLoyalists, labels[1])
}

func TestLabelSegments_BigSpenders(t *testing.T) {
	// High spend, low frequency, recent enough to dodge At-Risk.
	summaries := []*entities.SegmentSummary{
		{Cluster: 0, MemberCount: 4, MeanSpend: 500, MeanFrequency: 2, MeanRecencyDays: 10},
		{Cluster: 1, MemberCount: 4, MeanSpend: 100, MeanFrequency: 10, MeanRecencyDays: 20},
	}

	labels, err := LabelSegments(summaries)
	require.NoError(t, err)

	assert.Equal(t, LabelBigSpenders, labels[0])
	assert.Equal(t, LabelPotentialLoyalists, labels[1])
}

func TestLabelSegments_EveryClusterGetsALabel(t *testing.T) {
	summaries := []*entities.SegmentSummary{
		{Cluster: 0, MeanSpend: 50, MeanFrequency: 1, MeanRecencyDays: 200},
		{Cluster: 1, MeanSpend: 80, MeanFrequency: 3, MeanRecencyDays: 90},
		{Cluster: 2, MeanSpend: 120, MeanFrequency: 5, MeanRecencyDays: 30},
		{Cluster: 3, MeanSpend: 300, MeanFrequency: 8, MeanRecencyDays: 10},
	}

	labels, err := LabelSegments(summaries)
	require.NoError(t, err)
	require.Len(t, labels, len(summaries))

	for _, s := range summaries {
		assert.NotEmpty(t, labels[s.Cluster])
	}
}

func TestLabelSegments_Deterministic(t *testing.T) {
	summaries := []*entities.SegmentSummary{
		{Cluster: 0, MeanSpend: 500, MeanFrequency: 10, MeanRecencyDays: 5},
		{Cluster: 1, MeanSpend: 100, MeanFrequency: 2, MeanRecencyDays: 10},
		{Cluster: 2, MeanSpend: 250, MeanFrequency: 6, MeanRecencyDays: 40},
	}

	a, err := LabelSegments(summaries)
	require.NoError(t, err)
	b, err := LabelSegments(summaries)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestLabelSegments_RequiresAtLeastTwoClusters(t *testing.T) {
	_, err := LabelSegments(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientClusters))

	_, err = LabelSegments([]*entities.SegmentSummary{{Cluster: 0, MeanSpend: 10}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientClusters))
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{5, 10, 100}

	assert.InDelta(t, 10, percentile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 55, percentile(sorted, 0.75), 1e-9)
	assert.InDelta(t, 5, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 100, percentile(sorted, 1), 1e-9)
	assert.InDelta(t, 42, percentile([]float64{42}, 0.75), 1e-9)
}
