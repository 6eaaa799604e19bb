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

	"github.com/cohortiq/customer-segmentation/internal/adapters/cache"
	"github.com/cohortiq/customer-segmentation/internal/adapters/database"
	"github.com/cohortiq/customer-segmentation/internal/application/services"
	"github.com/cohortiq/customer-segmentation/internal/domain/repositories"
	"github.com/cohortiq/customer-segmentation/internal/infrastructure/clients/postgres"
	redisclient "github.com/cohortiq/customer-segmentation/internal/infrastructure/clients/redis"
	"github.com/cohortiq/customer-segmentation/internal/infrastructure/observability"
	"github.com/cohortiq/customer-segmentation/pkg/config"
)

func main() {
	var observedAtFlag string
	flag.StringVar(&observedAtFlag, "observed-at", "", "Observation date (RFC 3339), defaults to now")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	logger := observability.GetLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var metrics *observability.Metrics
	if cfg.OTEL.Enabled {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to set up telemetry")
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("telemetry shutdown failed")
			}
		}()

		if metrics, err = observability.InitMetrics(); err != nil {
			logger.Fatal().Err(err).Msg("failed to init metrics")
		}
	}

	observedAt := time.Now().UTC()
	if observedAtFlag != "" {
		observedAt, err = time.Parse(time.RFC3339, observedAtFlag)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid -observed-at value")
		}
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	var segmentRepo repositories.SegmentRepository = database.NewSegmentAdapter(pgClient)
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; dashboard reads will hit the database directly")
		} else {
			defer redisClient.Close()
			segmentRepo = database.NewCachedSegmentAdapter(
				segmentRepo,
				cache.NewRedisAdapter(redisClient),
				cfg.Pipeline.SnapshotTTLSeconds,
			)
		}
	}

	svc := services.NewSegmentationService(
		database.NewCustomerAdapter(pgClient),
		database.NewTransactionAdapter(pgClient),
		database.NewInteractionAdapter(pgClient),
		segmentRepo,
		cfg.Pipeline,
		metrics,
	)

	report, err := svc.Run(ctx, observedAt)
	if err != nil {
		logger.Fatal().Err(err).Msg("segmentation run failed")
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
}
