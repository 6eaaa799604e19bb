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

// CustomerAdapter implements CustomerRepository
type CustomerAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCustomerAdapter creates a new customer adapter
func NewCustomerAdapter(client *postgres.Client) repositories.CustomerRepository {
	return &CustomerAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListAll retrieves every customer, ordered by ID
func (a *CustomerAdapter) ListAll(ctx context.Context) ([]*entities.Customer, error) {
	query, args, err := a.db.Select(
		"id", "name", "signup_date", "age_group", "region",
	).From("customers").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build customers query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list customers", err)
	}
	defer rows.Close()

	var customers []*entities.Customer
	for rows.Next() {
		c := &entities.Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.SignupDate, &c.AgeGroup, &c.Region); err != nil {
			return nil, apperrors.NewInternalError("failed to scan customer", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate customers", err)
	}

	return customers, nil
}

// BulkInsert inserts customers in one statement
func (a *CustomerAdapter) BulkInsert(ctx context.Context, customers []*entities.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	records := make([]interface{}, len(customers))
	for i, c := range customers {
		records[i] = goqu.Record{
			"id":          c.ID,
			"name":        c.Name,
			"signup_date": c.SignupDate,
			"age_group":   c.AgeGroup,
			"region":      c.Region,
		}
	}

	query, args, err := a.db.Insert("customers").Rows(records...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build customers insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert customers", err)
	}
	return nil
}
