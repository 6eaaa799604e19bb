package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	"github.com/cohortiq/customer-segmentation/internal/domain/repositories"
	"github.com/cohortiq/customer-segmentation/internal/infrastructure/observability"
	"github.com/cohortiq/customer-segmentation/internal/segmentation"
	"github.com/cohortiq/customer-segmentation/pkg/config"
)

// RunReport summarizes a completed pipeline run
type RunReport struct {
	Customers         int                      `json:"customers"`
	Clusters          int                      `json:"clusters"`
	Inertia           float64                  `json:"inertia"`
	Iterations        int                      `json:"iterations"`
	WinningInit       int                      `json:"winning_init"`
	ExplainedVariance []float64                `json:"explained_variance"`
	LabelDistribution map[string]int           `json:"label_distribution"`
	StageDurations    map[string]time.Duration `json:"stage_durations"`
	StartedAt         time.Time                `json:"started_at"`
	CompletedAt       time.Time                `json:"completed_at"`
}

// SegmentationService orchestrates the pipeline: load, extract, scale,
// cluster, project, summarize, label, publish. Each stage fully consumes its
// predecessor's output; any fatal error aborts the run before anything is
// published.
type SegmentationService struct {
	customerRepo    repositories.CustomerRepository
	transactionRepo repositories.TransactionRepository
	interactionRepo repositories.InteractionRepository
	segmentRepo     repositories.SegmentRepository
	cfg             config.PipelineConfig
	tracer          trace.Tracer
	metrics         *observability.Metrics
}

// NewSegmentationService creates a new segmentation service. metrics may be
// nil when telemetry is disabled.
func NewSegmentationService(
	customerRepo repositories.CustomerRepository,
	transactionRepo repositories.TransactionRepository,
	interactionRepo repositories.InteractionRepository,
	segmentRepo repositories.SegmentRepository,
	cfg config.PipelineConfig,
	metrics *observability.Metrics,
) *SegmentationService {
	return &SegmentationService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		interactionRepo: interactionRepo,
		segmentRepo:     segmentRepo,
		cfg:             cfg,
		tracer:          otel.Tracer("segmentation-service"),
		metrics:         metrics,
	}
}

// Run executes the full pipeline anchored at observedAt and publishes the
// labeled output tables.
func (s *SegmentationService) Run(ctx context.Context, observedAt time.Time) (*RunReport, error) {
	report := &RunReport{
		Clusters:       s.cfg.Clusters,
		StageDurations: make(map[string]time.Duration),
		StartedAt:      time.Now(),
	}

	ctx, span := s.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	customers, transactions, interactions, err := s.loadSources(ctx, report)
	if err != nil {
		return nil, err
	}
	report.Customers = len(customers)

	vectors, err := s.extract(ctx, report, customers, transactions, interactions, observedAt)
	if err != nil {
		return nil, err
	}

	raw := segmentation.Matrix(vectors)

	scaled, err := s.scale(ctx, report, raw)
	if err != nil {
		return nil, err
	}

	var clustering *segmentation.KMeansResult
	err = s.stage(ctx, report, "cluster", func(ctx context.Context) error {
		var err error
		clustering, err = segmentation.RunKMeans(scaled, segmentation.KMeansConfig{
			K:             s.cfg.Clusters,
			Seed:          s.cfg.Seed,
			NInit:         s.cfg.NInit,
			MaxIterations: s.cfg.MaxIterations,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	report.Inertia = clustering.Inertia
	report.Iterations = clustering.Iterations
	report.WinningInit = clustering.InitIndex

	var projection *segmentation.PCAResult
	err = s.stage(ctx, report, "project", func(ctx context.Context) error {
		var err error
		projection, err = segmentation.ProjectPCA(scaled, s.projectionDims(len(entities.FeatureNames)))
		return err
	})
	if err != nil {
		return nil, err
	}
	report.ExplainedVariance = projection.ExplainedVariance

	var summaries []*entities.SegmentSummary
	var labels map[int]string
	err = s.stage(ctx, report, "label", func(ctx context.Context) error {
		var err error
		summaries, err = segmentation.Summarize(vectors, clustering.Assignments, s.cfg.Clusters)
		if err != nil {
			return err
		}
		labels, err = segmentation.LabelSegments(summaries)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, summary := range summaries {
		summary.Label = labels[summary.Cluster]
	}

	rows := buildSegmentRows(vectors, clustering.Assignments, labels, projection, report.StartedAt)

	report.LabelDistribution = make(map[string]int)
	for _, r := range rows {
		report.LabelDistribution[r.Label]++
	}

	err = s.stage(ctx, report, "publish", func(ctx context.Context) error {
		return s.segmentRepo.Publish(ctx, rows, summaries)
	})
	if err != nil {
		return nil, err
	}

	report.CompletedAt = time.Now()

	if s.metrics != nil {
		s.metrics.RunCount.Add(ctx, 1)
		s.metrics.CustomersProcessed.Add(ctx, int64(report.Customers))
	}

	logger := observability.LoggerFromContext(ctx)
	logger.Info().
		Int("customers", report.Customers).
		Int("clusters", report.Clusters).
		Float64("inertia", report.Inertia).
		Int("winning_init", report.WinningInit).
		Interface("label_distribution", report.LabelDistribution).
		Dur("elapsed", report.CompletedAt.Sub(report.StartedAt)).
		Msg("segmentation run published")

	return report, nil
}

// Sweep runs the diagnostic candidate-k sweep on the same extracted and
// scaled matrix the production run would use. It never writes anything.
func (s *SegmentationService) Sweep(ctx context.Context, observedAt time.Time, verbose bool) ([]segmentation.SweepPoint, error) {
	report := &RunReport{StageDurations: make(map[string]time.Duration)}

	customers, transactions, interactions, err := s.loadSources(ctx, report)
	if err != nil {
		return nil, err
	}

	vectors, err := s.extract(ctx, report, customers, transactions, interactions, observedAt)
	if err != nil {
		return nil, err
	}

	scaled, err := s.scale(ctx, report, segmentation.Matrix(vectors))
	if err != nil {
		return nil, err
	}

	return segmentation.SweepClusterCounts(scaled, s.cfg.SweepMinClusters, s.cfg.SweepMaxClusters, segmentation.KMeansConfig{
		Seed:          s.cfg.Seed,
		NInit:         s.cfg.NInit,
		MaxIterations: s.cfg.MaxIterations,
	}, verbose)
}

func (s *SegmentationService) loadSources(ctx context.Context, report *RunReport) ([]*entities.Customer, []*entities.Transaction, []*entities.Interaction, error) {
	var (
		customers    []*entities.Customer
		transactions []*entities.Transaction
		interactions []*entities.Interaction
	)
	err := s.stage(ctx, report, "load", func(ctx context.Context) error {
		var err error
		if customers, err = s.customerRepo.ListAll(ctx); err != nil {
			return err
		}
		if transactions, err = s.transactionRepo.ListAll(ctx); err != nil {
			return err
		}
		interactions, err = s.interactionRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return customers, transactions, interactions, nil
}

func (s *SegmentationService) extract(
	ctx context.Context,
	report *RunReport,
	customers []*entities.Customer,
	transactions []*entities.Transaction,
	interactions []*entities.Interaction,
	observedAt time.Time,
) ([]*entities.FeatureVector, error) {
	var vectors []*entities.FeatureVector
	err := s.stage(ctx, report, "extract", func(ctx context.Context) error {
		var err error
		vectors, err = segmentation.ExtractFeatures(customers, transactions, interactions, segmentation.ExtractorConfig{
			ObservedAt:          observedAt,
			RecencySentinelDays: s.cfg.RecencySentinelDays,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

func (s *SegmentationService) scale(ctx context.Context, report *RunReport, raw [][]float64) ([][]float64, error) {
	var scaled [][]float64
	err := s.stage(ctx, report, "scale", func(ctx context.Context) error {
		scaler, err := segmentation.FitScaler(raw)
		if err != nil {
			return err
		}
		for _, col := range scaler.DegenerateColumns {
			observability.LoggerFromContext(ctx).Warn().
				Str("feature", entities.FeatureNames[col]).
				Msg("feature has zero variance; passing through unscaled")
		}
		scaled = scaler.Transform(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scaled, nil
}

// stage wraps one pipeline stage with a span, a duration record and a metric
func (s *SegmentationService) stage(ctx context.Context, report *RunReport, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	report.StageDurations[name] = elapsed
	if s.metrics != nil {
		s.metrics.StageDuration.Record(ctx, float64(elapsed.Milliseconds()),
			metric.WithAttributes(attribute.String("stage", name)))
	}

	if err != nil {
		span.RecordError(err)
		observability.LoggerFromContext(ctx).Error().Err(err).Str("stage", name).Msg("pipeline stage failed")
		return err
	}

	observability.LoggerFromContext(ctx).Debug().Str("stage", name).Dur("elapsed", elapsed).Msg("pipeline stage completed")
	return nil
}

func (s *SegmentationService) projectionDims(cols int) int {
	dims := s.cfg.ProjectionDims
	if dims < 1 {
		dims = 3
	}
	if dims > cols {
		dims = cols
	}
	return dims
}

func buildSegmentRows(
	vectors []*entities.FeatureVector,
	assignments []int,
	labels map[int]string,
	projection *segmentation.PCAResult,
	computedAt time.Time,
) []*entities.CustomerSegmentRow {
	rows := make([]*entities.CustomerSegmentRow, len(vectors))
	for i, fv := range vectors {
		cluster := assignments[i]
		row := &entities.CustomerSegmentRow{
			FeatureVector: *fv,
			Cluster:       cluster,
			Label:         labels[cluster],
			ComputedAt:    computedAt,
		}
		coords := projection.Coordinates[i]
		if len(coords) > 0 {
			row.Coord1 = coords[0]
		}
		if len(coords) > 1 {
			row.Coord2 = coords[1]
		}
		if len(coords) > 2 {
			row.Coord3 = coords[2]
		}
		rows[i] = row
	}
	return rows
}
