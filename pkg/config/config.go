package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Env      string
	Database DatabaseConfig
	Redis    RedisConfig
	Pipeline PipelineConfig
	OTEL     OTELConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// PipelineConfig holds the segmentation pipeline parameters.
// The cluster count is a fixed configuration value rather than whatever the
// sweep recommends, so segment label semantics stay stable across runs.
type PipelineConfig struct {
	Clusters            int
	Seed                int64
	NInit               int
	MaxIterations       int
	SweepMinClusters    int
	SweepMaxClusters    int
	ProjectionDims      int
	RecencySentinelDays float64
	SnapshotTTLSeconds  int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "customer_segmentation"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Pipeline: PipelineConfig{
			Clusters:            getEnvAsInt("PIPELINE_CLUSTERS", 5),
			Seed:                getEnvAsInt64("PIPELINE_SEED", 42),
			NInit:               getEnvAsInt("PIPELINE_N_INIT", 10),
			MaxIterations:       getEnvAsInt("PIPELINE_MAX_ITERATIONS", 300),
			SweepMinClusters:    getEnvAsInt("PIPELINE_SWEEP_MIN", 2),
			SweepMaxClusters:    getEnvAsInt("PIPELINE_SWEEP_MAX", 10),
			ProjectionDims:      getEnvAsInt("PIPELINE_PROJECTION_DIMS", 3),
			RecencySentinelDays: getEnvAsFloat("PIPELINE_RECENCY_SENTINEL_DAYS", 365),
			SnapshotTTLSeconds:  getEnvAsInt("PIPELINE_SNAPSHOT_TTL_SECONDS", 300),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "customer-segmentation"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the pipeline parameters for values the core cannot run with
func (p *PipelineConfig) Validate() error {
	if p.Clusters < 2 {
		return fmt.Errorf("PIPELINE_CLUSTERS must be at least 2, got %d", p.Clusters)
	}
	if p.NInit < 1 {
		return fmt.Errorf("PIPELINE_N_INIT must be at least 1, got %d", p.NInit)
	}
	if p.MaxIterations < 1 {
		return fmt.Errorf("PIPELINE_MAX_ITERATIONS must be at least 1, got %d", p.MaxIterations)
	}
	if p.SweepMinClusters < 2 || p.SweepMaxClusters < p.SweepMinClusters {
		return fmt.Errorf("invalid sweep range [%d, %d]", p.SweepMinClusters, p.SweepMaxClusters)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
