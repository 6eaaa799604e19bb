package repositories

import (
	"context"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
)

// CustomerRepository defines access to the customer population
type CustomerRepository interface {
	// ListAll retrieves every customer, ordered by ID
	ListAll(ctx context.Context) ([]*entities.Customer, error)

	// BulkInsert inserts customers (used by seeding)
	BulkInsert(ctx context.Context, customers []*entities.Customer) error
}

// ProductRepository defines access to the product catalog
type ProductRepository interface {
	// ListAll retrieves every product, ordered by ID
	ListAll(ctx context.Context) ([]*entities.Product, error)

	// BulkInsert inserts products (used by seeding)
	BulkInsert(ctx context.Context, products []*entities.Product) error
}

// TransactionRepository defines access to purchase history
type TransactionRepository interface {
	// ListAll retrieves every transaction
	ListAll(ctx context.Context) ([]*entities.Transaction, error)

	// BulkInsert inserts transactions (used by seeding)
	BulkInsert(ctx context.Context, transactions []*entities.Transaction) error
}

// InteractionRepository defines access to engagement history
type InteractionRepository interface {
	// ListAll retrieves every interaction
	ListAll(ctx context.Context) ([]*entities.Interaction, error)

	// BulkInsert inserts interactions (used by seeding)
	BulkInsert(ctx context.Context, interactions []*entities.Interaction) error
}
