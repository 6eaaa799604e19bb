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

// TransactionAdapter implements TransactionRepository
type TransactionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTransactionAdapter creates a new transaction adapter
func NewTransactionAdapter(client *postgres.Client) repositories.TransactionRepository {
	return &TransactionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListAll retrieves every transaction
func (a *TransactionAdapter) ListAll(ctx context.Context) ([]*entities.Transaction, error) {
	query, args, err := a.db.Select(
		"id", "customer_id", "product_id", "date", "quantity", "amount",
	).From("transactions").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build transactions query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list transactions", err)
	}
	defer rows.Close()

	var transactions []*entities.Transaction
	for rows.Next() {
		t := &entities.Transaction{}
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.ProductID, &t.Date, &t.Quantity, &t.Amount); err != nil {
			return nil, apperrors.NewInternalError("failed to scan transaction", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate transactions", err)
	}

	return transactions, nil
}

// BulkInsert inserts transactions in one statement
func (a *TransactionAdapter) BulkInsert(ctx context.Context, transactions []*entities.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	records := make([]interface{}, len(transactions))
	for i, t := range transactions {
		records[i] = goqu.Record{
			"id":          t.ID,
			"customer_id": t.CustomerID,
			"product_id":  t.ProductID,
			"date":        t.Date,
			"quantity":    t.Quantity,
			"amount":      t.Amount,
		}
	}

	query, args, err := a.db.Insert("transactions").Rows(records...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build transactions insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert transactions", err)
	}
	return nil
}
