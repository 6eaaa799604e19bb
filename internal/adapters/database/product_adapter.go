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

// ProductAdapter implements ProductRepository
type ProductAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProductAdapter creates a new product adapter
func NewProductAdapter(client *postgres.Client) repositories.ProductRepository {
	return &ProductAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListAll retrieves every product, ordered by ID
func (a *ProductAdapter) ListAll(ctx context.Context) ([]*entities.Product, error) {
	query, args, err := a.db.Select(
		"id", "name", "category", "price",
	).From("products").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build products query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list products", err)
	}
	defer rows.Close()

	var products []*entities.Product
	for rows.Next() {
		p := &entities.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price); err != nil {
			return nil, apperrors.NewInternalError("failed to scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate products", err)
	}

	return products, nil
}

// BulkInsert inserts products in one statement
func (a *ProductAdapter) BulkInsert(ctx context.Context, products []*entities.Product) error {
	if len(products) == 0 {
		return nil
	}

	records := make([]interface{}, len(products))
	for i, p := range products {
		records[i] = goqu.Record{
			"id":       p.ID,
			"name":     p.Name,
			"category": p.Category,
			"price":    p.Price,
		}
	}

	query, args, err := a.db.Insert("products").Rows(records...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build products insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert products", err)
	}
	return nil
}
