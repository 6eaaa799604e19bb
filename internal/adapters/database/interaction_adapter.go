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

// InteractionAdapter implements InteractionRepository
type InteractionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewInteractionAdapter creates a new interaction adapter
func NewInteractionAdapter(client *postgres.Client) repositories.InteractionRepository {
	return &InteractionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListAll retrieves every interaction
func (a *InteractionAdapter) ListAll(ctx context.Context) ([]*entities.Interaction, error) {
	query, args, err := a.db.Select(
		"id", "customer_id", "kind", "date", "duration_seconds",
	).From("interactions").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build interactions query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list interactions", err)
	}
	defer rows.Close()

	var interactions []*entities.Interaction
	for rows.Next() {
		in := &entities.Interaction{}
		var kind string
		if err := rows.Scan(&in.ID, &in.CustomerID, &kind, &in.Date, &in.DurationSeconds); err != nil {
			return nil, apperrors.NewInternalError("failed to scan interaction", err)
		}
		in.Kind = entities.InteractionKind(kind)
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate interactions", err)
	}

	return interactions, nil
}

// BulkInsert inserts interactions in one statement
func (a *InteractionAdapter) BulkInsert(ctx context.Context, interactions []*entities.Interaction) error {
	if len(interactions) == 0 {
		return nil
	}

	records := make([]interface{}, len(interactions))
	for i, in := range interactions {
		records[i] = goqu.Record{
			"id":               in.ID,
			"customer_id":      in.CustomerID,
			"kind":             string(in.Kind),
			"date":             in.Date,
			"duration_seconds": in.DurationSeconds,
		}
	}

	query, args, err := a.db.Insert("interactions").Rows(records...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build interactions insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert interactions", err)
	}
	return nil
}
