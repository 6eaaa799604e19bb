package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/cohortiq/customer-segmentation/internal/adapters/database"
	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	"github.com/cohortiq/customer-segmentation/internal/infrastructure/clients/postgres"
	"github.com/cohortiq/customer-segmentation/pkg/config"
)

// Seeds a synthetic population with two planted behavioral groups: frequent
// high spenders and infrequent low spenders. Useful for demos and for eyeballing
// that the pipeline separates the groups.
func main() {
	var (
		customerCount int
		highShare     float64
		seed          int64
		reset         bool
	)
	flag.IntVar(&customerCount, "customers", 200, "Number of customers to generate")
	flag.Float64Var(&highShare, "high-share", 0.4, "Fraction of high-value customers")
	flag.Int64Var(&seed, "seed", 7, "Generator seed")
	flag.BoolVar(&reset, "reset", false, "Truncate source tables before seeding")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if err := createSchema(ctx, pgClient); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	if reset {
		log.Println("Truncating source tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				interactions,
				transactions,
				products,
				customers
			CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UTC()

	products := generateProducts(rng)
	customers, transactions, interactions := generatePopulation(rng, now, customerCount, highShare, products)

	customerRepo := database.NewCustomerAdapter(pgClient)
	productRepo := database.NewProductAdapter(pgClient)
	transactionRepo := database.NewTransactionAdapter(pgClient)
	interactionRepo := database.NewInteractionAdapter(pgClient)

	bar := progressbar.Default(4)

	if err := productRepo.BulkInsert(ctx, products); err != nil {
		log.Fatalf("Failed to insert products: %v", err)
	}
	_ = bar.Add(1)

	if err := customerRepo.BulkInsert(ctx, customers); err != nil {
		log.Fatalf("Failed to insert customers: %v", err)
	}
	_ = bar.Add(1)

	if err := transactionRepo.BulkInsert(ctx, transactions); err != nil {
		log.Fatalf("Failed to insert transactions: %v", err)
	}
	_ = bar.Add(1)

	if err := interactionRepo.BulkInsert(ctx, interactions); err != nil {
		log.Fatalf("Failed to insert interactions: %v", err)
	}
	_ = bar.Add(1)

	fmt.Printf("Seeded %d customers, %d products, %d transactions, %d interactions\n",
		len(customers), len(products), len(transactions), len(interactions))
}

func createSchema(ctx context.Context, client *postgres.Client) error {
	_, err := client.DB().ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		signup_date TIMESTAMPTZ NOT NULL,
		age_group TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		date TIMESTAMPTZ NOT NULL,
		quantity INTEGER NOT NULL,
		amount DOUBLE PRECISION NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		kind TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		duration_seconds DOUBLE PRECISION NOT NULL
	);

	CREATE TABLE IF NOT EXISTS customer_segments (
		customer_id TEXT PRIMARY KEY,
		recency_days DOUBLE PRECISION NOT NULL,
		frequency DOUBLE PRECISION NOT NULL,
		total_spend DOUBLE PRECISION NOT NULL,
		avg_transaction_value DOUBLE PRECISION NOT NULL,
		unique_products DOUBLE PRECISION NOT NULL,
		max_purchase DOUBLE PRECISION NOT NULL,
		min_purchase DOUBLE PRECISION NOT NULL,
		interaction_count DOUBLE PRECISION NOT NULL,
		avg_interaction_duration DOUBLE PRECISION NOT NULL,
		interaction_kinds DOUBLE PRECISION NOT NULL,
		email_opens DOUBLE PRECISION NOT NULL,
		site_visits DOUBLE PRECISION NOT NULL,
		tenure_days DOUBLE PRECISION NOT NULL,
		cluster INTEGER NOT NULL,
		label TEXT NOT NULL,
		coord_1 DOUBLE PRECISION NOT NULL DEFAULT 0,
		coord_2 DOUBLE PRECISION NOT NULL DEFAULT 0,
		coord_3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		computed_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS segment_summaries (
		cluster INTEGER PRIMARY KEY,
		member_count INTEGER NOT NULL,
		mean_recency_days DOUBLE PRECISION NOT NULL,
		mean_frequency DOUBLE PRECISION NOT NULL,
		mean_spend DOUBLE PRECISION NOT NULL,
		mean_transaction_value DOUBLE PRECISION NOT NULL,
		revenue_share DOUBLE PRECISION NOT NULL,
		label TEXT NOT NULL
	);
	`)
	return err
}

func generateProducts(rng *rand.Rand) []*entities.Product {
	categories := []string{"electronics", "apparel", "home", "beauty", "outdoors"}
	products := make([]*entities.Product, 0, 25)
	for i := 0; i < 25; i++ {
		products = append(products, &entities.Product{
			ID:       uuid.NewString(),
			Name:     fmt.Sprintf("Product %02d", i+1),
			Category: categories[i%len(categories)],
			Price:    10 + rng.Float64()*240,
		})
	}
	return products
}

func generatePopulation(
	rng *rand.Rand,
	now time.Time,
	count int,
	highShare float64,
	products []*entities.Product,
) ([]*entities.Customer, []*entities.Transaction, []*entities.Interaction) {
	regions := []string{"north", "south", "east", "west"}
	ageGroups := []string{"18-24", "25-34", "35-44", "45-54", "55+"}
	kinds := []entities.InteractionKind{
		entities.InteractionEmailOpen,
		entities.InteractionSiteVisit,
		entities.InteractionSupportTicket,
		entities.InteractionSurveyResponse,
	}

	highCount := int(float64(count) * highShare)

	var (
		customers    []*entities.Customer
		transactions []*entities.Transaction
		interactions []*entities.Interaction
	)

	for i := 0; i < count; i++ {
		high := i < highCount
		c := &entities.Customer{
			ID:         uuid.NewString(),
			Name:       fmt.Sprintf("Customer %04d", i+1),
			SignupDate: now.AddDate(0, 0, -(180 + rng.Intn(900))),
			AgeGroup:   ageGroups[rng.Intn(len(ageGroups))],
			Region:     regions[rng.Intn(len(regions))],
		}
		customers = append(customers, c)

		txCount := 1 + rng.Intn(4)
		maxRecency := 120
		amountBase := 20.0
		if high {
			txCount = 12 + rng.Intn(20)
			maxRecency = 20
			amountBase = 150.0
		}
		for t := 0; t < txCount; t++ {
			p := products[rng.Intn(len(products))]
			transactions = append(transactions, &entities.Transaction{
				ID:         uuid.NewString(),
				CustomerID: c.ID,
				ProductID:  p.ID,
				Date:       now.AddDate(0, 0, -(1 + rng.Intn(maxRecency))),
				Quantity:   1 + rng.Intn(3),
				Amount:     amountBase + rng.Float64()*amountBase,
			})
		}

		interCount := rng.Intn(5)
		if high {
			interCount = 10 + rng.Intn(30)
		}
		for n := 0; n < interCount; n++ {
			interactions = append(interactions, &entities.Interaction{
				ID:              uuid.NewString(),
				CustomerID:      c.ID,
				Kind:            kinds[rng.Intn(len(kinds))],
				Date:            now.AddDate(0, 0, -rng.Intn(180)),
				DurationSeconds: 10 + rng.Float64()*290,
			})
		}
	}

	return customers, transactions, interactions
}
