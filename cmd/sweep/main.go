package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cohortiq/customer-segmentation/internal/adapters/database"
	"github.com/cohortiq/customer-segmentation/internal/application/services"
	"github.com/cohortiq/customer-segmentation/internal/infrastructure/clients/postgres"
	"github.com/cohortiq/customer-segmentation/internal/infrastructure/observability"
	"github.com/cohortiq/customer-segmentation/pkg/config"
)

// Diagnostic candidate-k sweep. Prints (k, inertia, silhouette) per candidate;
// the production cluster count remains the fixed configuration value.
func main() {
	var verbose bool
	flag.BoolVar(&verbose, "v", true, "Show sweep progress")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-sweep", cfg.Env)
	logger := observability.GetLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	svc := services.NewSegmentationService(
		database.NewCustomerAdapter(pgClient),
		database.NewTransactionAdapter(pgClient),
		database.NewInteractionAdapter(pgClient),
		database.NewSegmentAdapter(pgClient),
		cfg.Pipeline,
		nil,
	)

	points, err := svc.Sweep(ctx, time.Now().UTC(), verbose)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweep failed")
	}

	out, _ := json.MarshalIndent(points, "", "  ")
	fmt.Println(string(out))
}
