package repositories

import (
	"context"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
)

// SegmentRepository defines the output surface of a pipeline run. The two
// tables are replaced together: downstream consumers only ever see a complete,
// internally consistent snapshot of a single run.
type SegmentRepository interface {
	// Publish atomically replaces both output tables with the run's artifacts
	Publish(ctx context.Context, rows []*entities.CustomerSegmentRow, summaries []*entities.SegmentSummary) error

	// ListSegments retrieves the per-customer output table, ordered by customer ID
	ListSegments(ctx context.Context) ([]*entities.CustomerSegmentRow, error)

	// ListSummaries retrieves the per-cluster output table, ordered by cluster
	ListSummaries(ctx context.Context) ([]*entities.SegmentSummary, error)
}
