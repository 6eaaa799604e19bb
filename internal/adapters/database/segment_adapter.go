package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	"github.com/cohortiq/customer-segmentation/internal/domain/repositories"
	"github.com/cohortiq/customer-segmentation/internal/infrastructure/clients/postgres"
	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

// insertChunkSize keeps batch inserts under the postgres parameter limit
const insertChunkSize = 500

// SegmentAdapter implements SegmentRepository
type SegmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSegmentAdapter creates a new segment adapter
func NewSegmentAdapter(client *postgres.Client) repositories.SegmentRepository {
	return &SegmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Publish replaces both output tables inside a single transaction, so readers
// only ever see a complete run's snapshot.
func (a *SegmentAdapter) Publish(ctx context.Context, rows []*entities.CustomerSegmentRow, summaries []*entities.SegmentSummary) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin publish transaction", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"customer_segments", "segment_summaries"} {
		query, args, err := a.db.Delete(table).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build delete for "+table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to clear "+table, err)
		}
	}

	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}

		records := make([]interface{}, 0, end-start)
		for _, r := range rows[start:end] {
			records = append(records, segmentRowRecord(r))
		}

		query, args, err := a.db.Insert("customer_segments").Rows(records...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build customer_segments insert", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to insert customer segments", err)
		}
	}

	if len(summaries) > 0 {
		records := make([]interface{}, len(summaries))
		for i, s := range summaries {
			records[i] = goqu.Record{
				"cluster":                s.Cluster,
				"member_count":           s.MemberCount,
				"mean_recency_days":      s.MeanRecencyDays,
				"mean_frequency":         s.MeanFrequency,
				"mean_spend":             s.MeanSpend,
				"mean_transaction_value": s.MeanTransactionValue,
				"revenue_share":          s.RevenueShare,
				"label":                  s.Label,
			}
		}

		query, args, err := a.db.Insert("segment_summaries").Rows(records...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build segment_summaries insert", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to insert segment summaries", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit publish transaction", err)
	}
	return nil
}

func segmentRowRecord(r *entities.CustomerSegmentRow) goqu.Record {
	return goqu.Record{
		"customer_id":              r.CustomerID,
		"recency_days":             r.RecencyDays,
		"frequency":                r.Frequency,
		"total_spend":              r.TotalSpend,
		"avg_transaction_value":    r.AvgTransactionValue,
		"unique_products":          r.UniqueProducts,
		"max_purchase":             r.MaxPurchase,
		"min_purchase":             r.MinPurchase,
		"interaction_count":        r.InteractionCount,
		"avg_interaction_duration": r.AvgInteractionDuration,
		"interaction_kinds":        r.InteractionKinds,
		"email_opens":              r.EmailOpens,
		"site_visits":              r.SiteVisits,
		"tenure_days":              r.TenureDays,
		"cluster":                  r.Cluster,
		"label":                    r.Label,
		"coord_1":                  r.Coord1,
		"coord_2":                  r.Coord2,
		"coord_3":                  r.Coord3,
		"computed_at":              r.ComputedAt,
	}
}

// ListSegments retrieves the per-customer output table, ordered by customer ID
func (a *SegmentAdapter) ListSegments(ctx context.Context) ([]*entities.CustomerSegmentRow, error) {
	query, args, err := a.db.Select(
		"customer_id", "recency_days", "frequency", "total_spend",
		"avg_transaction_value", "unique_products", "max_purchase", "min_purchase",
		"interaction_count", "avg_interaction_duration", "interaction_kinds",
		"email_opens", "site_visits", "tenure_days",
		"cluster", "label", "coord_1", "coord_2", "coord_3", "computed_at",
	).From("customer_segments").
		Order(goqu.C("customer_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build customer_segments query", err)
	}

	dbRows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list customer segments", err)
	}
	defer dbRows.Close()

	var rows []*entities.CustomerSegmentRow
	for dbRows.Next() {
		r := &entities.CustomerSegmentRow{}
		err := dbRows.Scan(
			&r.CustomerID, &r.RecencyDays, &r.Frequency, &r.TotalSpend,
			&r.AvgTransactionValue, &r.UniqueProducts, &r.MaxPurchase, &r.MinPurchase,
			&r.InteractionCount, &r.AvgInteractionDuration, &r.InteractionKinds,
			&r.EmailOpens, &r.SiteVisits, &r.TenureDays,
			&r.Cluster, &r.Label, &r.Coord1, &r.Coord2, &r.Coord3, &r.ComputedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan customer segment", err)
		}
		rows = append(rows, r)
	}
	if err := dbRows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate customer segments", err)
	}

	return rows, nil
}

// ListSummaries retrieves the per-cluster output table, ordered by cluster
func (a *SegmentAdapter) ListSummaries(ctx context.Context) ([]*entities.SegmentSummary, error) {
	query, args, err := a.db.Select(
		"cluster", "member_count", "mean_recency_days", "mean_frequency",
		"mean_spend", "mean_transaction_value", "revenue_share", "label",
	).From("segment_summaries").
		Order(goqu.C("cluster").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build segment_summaries query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list segment summaries", err)
	}
	defer rows.Close()

	var summaries []*entities.SegmentSummary
	for rows.Next() {
		s := &entities.SegmentSummary{}
		err := rows.Scan(
			&s.Cluster, &s.MemberCount, &s.MeanRecencyDays, &s.MeanFrequency,
			&s.MeanSpend, &s.MeanTransactionValue, &s.RevenueShare, &s.Label,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan segment summary", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate segment summaries", err)
	}

	return summaries, nil
}
