package segmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

func TestSummarize_ComputesClusterMeans(t *testing.T) {
	vectors := []*entities.FeatureVector{
		{CustomerID: "a", RecencyDays: 10, Frequency: 4, TotalSpend: 400, AvgTransactionValue: 100},
		{CustomerID: "b", RecencyDays: 20, Frequency: 6, TotalSpend: 600, AvgTransactionValue: 100},
		{CustomerID: "c", RecencyDays: 90, Frequency: 1, TotalSpend: 50, AvgTransactionValue: 50},
	}
	assignments := []int{0, 0, 1}

	summaries, err := Summarize(vectors, assignments, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	s0 := summaries[0]
	assert.Equal(t, 0, s0.Cluster)
	assert.Equal(t, 2, s0.MemberCount)
	assert.InDelta(t, 15, s0.MeanRecencyDays, 1e-9)
	assert.InDelta(t, 5, s0.MeanFrequency, 1e-9)
	assert.InDelta(t, 500, s0.MeanSpend, 1e-9)
	assert.InDelta(t, 100, s0.MeanTransactionValue, 1e-9)
	assert.InDelta(t, 1000.0/1050.0, s0.RevenueShare, 1e-9)

	s1 := summaries[1]
	assert.Equal(t, 1, s1.MemberCount)
	assert.InDelta(t, 50, s1.MeanSpend, 1e-9)
	assert.InDelta(t, 50.0/1050.0, s1.RevenueShare, 1e-9)
}

func TestSummarize_RevenueSharesSumToOne(t *testing.T) {
	vectors := []*entities.FeatureVector{
		{TotalSpend: 10}, {TotalSpend: 25}, {TotalSpend: 65}, {TotalSpend: 100},
	}
	assignments := []int{0, 1, 1, 2}

	summaries, err := Summarize(vectors, assignments, 3)
	require.NoError(t, err)

	var total float64
	var members int
	for _, s := range summaries {
		total += s.RevenueShare
		members += s.MemberCount
	}
	assert.InDelta(t, 1, total, 1e-9)
	assert.Equal(t, len(vectors), members)
}

func TestSummarize_ZeroTotalSpend(t *testing.T) {
	vectors := []*entities.FeatureVector{{TotalSpend: 0}, {TotalSpend: 0}}
	assignments := []int{0, 1}

	summaries, err := Summarize(vectors, assignments, 2)
	require.NoError(t, err)

	for _, s := range summaries {
		assert.Equal(t, 0.0, s.RevenueShare)
	}
}

func TestSummarize_EmptyClusterStaysZeroed(t *testing.T) {
	vectors := []*entities.FeatureVector{{TotalSpend: 100, Frequency: 2}}
	assignments := []int{0}

	summaries, err := Summarize(vectors, assignments, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, 0, summaries[1].MemberCount)
	assert.Equal(t, 0.0, summaries[1].MeanSpend)
	assert.Equal(t, 0.0, summaries[1].RevenueShare)
}

func TestSummarize_LengthMismatchFails(t *testing.T) {
	vectors := []*entities.FeatureVector{{}, {}}

	_, err := Summarize(vectors, []int{0}, 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSummarize_OutOfRangeAssignmentFails(t *testing.T) {
	vectors := []*entities.FeatureVector{{}}

	_, err := Summarize(vectors, []int{5}, 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = Summarize(vectors, []int{-1}, 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
