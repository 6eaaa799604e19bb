package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	"github.com/cohortiq/customer-segmentation/pkg/config"
	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

type mockCustomerRepo struct{ mock.Mock }

func (m *mockCustomerRepo) ListAll(ctx context.Context) ([]*entities.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Customer), args.Error(1)
}

func (m *mockCustomerRepo) BulkInsert(ctx context.Context, customers []*entities.Customer) error {
	args := m.Called(ctx, customers)
	return args.Error(0)
}

type mockTransactionRepo struct{ mock.Mock }

func (m *mockTransactionRepo) ListAll(ctx context.Context) ([]*entities.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *mockTransactionRepo) BulkInsert(ctx context.Context, transactions []*entities.Transaction) error {
	args := m.Called(ctx, transactions)
	return args.Error(0)
}

type mockInteractionRepo struct{ mock.Mock }

func (m *mockInteractionRepo) ListAll(ctx context.Context) ([]*entities.Interaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Interaction), args.Error(1)
}

func (m *mockInteractionRepo) BulkInsert(ctx context.Context, interactions []*entities.Interaction) error {
	args := m.Called(ctx, interactions)
	return args.Error(0)
}

type mockSegmentRepo struct{ mock.Mock }

func (m *mockSegmentRepo) Publish(ctx context.Context, rows []*entities.CustomerSegmentRow, summaries []*entities.SegmentSummary) error {
	args := m.Called(ctx, rows, summaries)
	return args.Error(0)
}

func (m *mockSegmentRepo) ListSegments(ctx context.Context) ([]*entities.CustomerSegmentRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CustomerSegmentRow), args.Error(1)
}

func (m *mockSegmentRepo) ListSummaries(ctx context.Context) ([]*entities.SegmentSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SegmentSummary), args.Error(1)
}

var testObservedAt = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Clusters:            2,
		Seed:                42,
		NInit:               10,
		MaxIterations:       300,
		SweepMinClusters:    2,
		SweepMaxClusters:    3,
		ProjectionDims:      3,
		RecencySentinelDays: 365,
	}
}

// twoTierPopulation plants two clearly separated behavioral groups: five
// high-value engaged customers and five low-value dormant ones.
func twoTierPopulation() ([]*entities.Customer, []*entities.Transaction, []*entities.Interaction) {
	var customers []*entities.Customer
	var transactions []*entities.Transaction
	var interactions []*entities.Interaction

	highIDs := []string{"high-1", "high-2", "high-3", "high-4", "high-5"}
	lowIDs := []string{"low-1", "low-2", "low-3", "low-4", "low-5"}

	// Small per-customer offsets keep every point distinct so higher cluster
	// counts remain satisfiable during sweeps.
	for j, id := range highIDs {
		customers = append(customers, &entities.Customer{ID: id, SignupDate: testObservedAt.AddDate(0, 0, -300)})
		for i := 0; i < 10; i++ {
			productID := "p1"
			if i%2 == 0 {
				productID = "p2"
			}
			transactions = append(transactions, &entities.Transaction{
				ID:         id + "-t" + string(rune('a'+i)),
				CustomerID: id,
				ProductID:  productID,
				Date:       testObservedAt.AddDate(0, 0, -(5 + j)),
				Quantity:   1,
				Amount:     float64(200 + 2*j),
			})
		}
		interactions = append(interactions,
			&entities.Interaction{ID: id + "-i1", CustomerID: id, Kind: entities.InteractionEmailOpen, Date: testObservedAt.AddDate(0, 0, -2), DurationSeconds: float64(30 + j)},
			&entities.Interaction{ID: id + "-i2", CustomerID: id, Kind: entities.InteractionSiteVisit, Date: testObservedAt.AddDate(0, 0, -3), DurationSeconds: 60},
			&entities.Interaction{ID: id + "-i3", CustomerID: id, Kind: entities.InteractionEmailOpen, Date: testObservedAt.AddDate(0, 0, -4), DurationSeconds: 30},
		)
	}

	for j, id := range lowIDs {
		customers = append(customers, &entities.Customer{ID: id, SignupDate: testObservedAt.AddDate(0, 0, -100)})
		transactions = append(transactions, &entities.Transaction{
			ID:         id + "-t1",
			CustomerID: id,
			ProductID:  "p1",
			Date:       testObservedAt.AddDate(0, 0, -(60 + j)),
			Quantity:   1,
			Amount:     float64(10 + j),
		})
	}

	return customers, transactions, interactions
}

func TestRun_PublishesLabeledSegments(t *testing.T) {
	customers, transactions, interactions := twoTierPopulation()

	customerRepo := new(mockCustomerRepo)
	transactionRepo := new(mockTransactionRepo)
	interactionRepo := new(mockInteractionRepo)
	segmentRepo := new(mockSegmentRepo)

	customerRepo.On("ListAll", mock.Anything).Return(customers, nil)
	transactionRepo.On("ListAll", mock.Anything).Return(transactions, nil)
	interactionRepo.On("ListAll", mock.Anything).Return(interactions, nil)

	var publishedRows []*entities.CustomerSegmentRow
	var publishedSummaries []*entities.SegmentSummary
	segmentRepo.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			publishedRows = args.Get(1).([]*entities.CustomerSegmentRow)
			publishedSummaries = args.Get(2).([]*entities.SegmentSummary)
		}).
		Return(nil)

	svc := NewSegmentationService(customerRepo, transactionRepo, interactionRepo, segmentRepo, testPipelineConfig(), nil)

	report, err := svc.Run(context.Background(), testObservedAt)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 10, report.Customers)
	assert.Equal(t, 2, report.Clusters)
	assert.GreaterOrEqual(t, report.WinningInit, 0)
	assert.Len(t, report.ExplainedVariance, 3)

	require.Len(t, publishedRows, 10)
	labelByCustomer := make(map[string]string, len(publishedRows))
	for _, row := range publishedRows {
		labelByCustomer[row.CustomerID] = row.Label
	}
	for _, c := range customers {
		label := labelByCustomer[c.ID]
		if c.ID[:4] == "high" {
			assert.Equal(t, "Champions", label, "customer %s", c.ID)
		} else {
			assert.Equal(t, "Potential Loyalists", label, "customer %s", c.ID)
		}
	}

	require.Len(t, publishedSummaries, 2)
	var members int
	var shares float64
	for _, s := range publishedSummaries {
		assert.NotEmpty(t, s.Label)
		members += s.MemberCount
		shares += s.RevenueShare
	}
	assert.Equal(t, 10, members)
	assert.InDelta(t, 1, shares, 1e-9)

	assert.Equal(t, 5, report.LabelDistribution["Champions"])
	assert.Equal(t, 5, report.LabelDistribution["Potential Loyalists"])

	for _, stage := range []string{"load", "extract", "scale", "cluster", "project", "label", "publish"} {
		assert.Contains(t, report.StageDurations, stage)
	}
}

func TestRun_RowsFollowCustomerIDOrder(t *testing.T) {
	customers, transactions, interactions := twoTierPopulation()

	customerRepo := new(mockCustomerRepo)
	transactionRepo := new(mockTransactionRepo)
	interactionRepo := new(mockInteractionRepo)
	segmentRepo := new(mockSegmentRepo)

	customerRepo.On("ListAll", mock.Anything).Return(customers, nil)
	transactionRepo.On("ListAll", mock.Anything).Return(transactions, nil)
	interactionRepo.On("ListAll", mock.Anything).Return(interactions, nil)

	var publishedRows []*entities.CustomerSegmentRow
	segmentRepo.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			publishedRows = args.Get(1).([]*entities.CustomerSegmentRow)
		}).
		Return(nil)

	svc := NewSegmentationService(customerRepo, transactionRepo, interactionRepo, segmentRepo, testPipelineConfig(), nil)

	_, err := svc.Run(context.Background(), testObservedAt)
	require.NoError(t, err)

	require.Len(t, publishedRows, 10)
	for i := 1; i < len(publishedRows); i++ {
		assert.Less(t, publishedRows[i-1].CustomerID, publishedRows[i].CustomerID)
	}
}

func TestRun_DataIntegrityFailureAbortsBeforePublish(t *testing.T) {
	customers, transactions, interactions := twoTierPopulation()
	transactions = append(transactions, &entities.Transaction{
		ID:         "orphan",
		CustomerID: "no-such-customer",
		ProductID:  "p1",
		Date:       testObservedAt.AddDate(0, 0, -1),
		Amount:     99,
	})

	customerRepo := new(mockCustomerRepo)
	transactionRepo := new(mockTransactionRepo)
	interactionRepo := new(mockInteractionRepo)
	segmentRepo := new(mockSegmentRepo)

	customerRepo.On("ListAll", mock.Anything).Return(customers, nil)
	transactionRepo.On("ListAll", mock.Anything).Return(transactions, nil)
	interactionRepo.On("ListAll", mock.Anything).Return(interactions, nil)

	svc := NewSegmentationService(customerRepo, transactionRepo, interactionRepo, segmentRepo, testPipelineConfig(), nil)

	_, err := svc.Run(context.Background(), testObservedAt)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDataIntegrity))
	segmentRepo.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_LoadFailurePropagates(t *testing.T) {
	customerRepo := new(mockCustomerRepo)
	transactionRepo := new(mockTransactionRepo)
	interactionRepo := new(mockInteractionRepo)
	segmentRepo := new(mockSegmentRepo)

	customerRepo.On("ListAll", mock.Anything).Return(nil, apperrors.NewInternalError("database unavailable", nil))

	svc := NewSegmentationService(customerRepo, transactionRepo, interactionRepo, segmentRepo, testPipelineConfig(), nil)

	_, err := svc.Run(context.Background(), testObservedAt)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	segmentRepo.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	customers, transactions, interactions := twoTierPopulation()

	run := func() (*RunReport, []*entities.CustomerSegmentRow) {
		customerRepo := new(mockCustomerRepo)
		transactionRepo := new(mockTransactionRepo)
		interactionRepo := new(mockInteractionRepo)
		segmentRepo := new(mockSegmentRepo)

		customerRepo.On("ListAll", mock.Anything).Return(customers, nil)
		transactionRepo.On("ListAll", mock.Anything).Return(transactions, nil)
		interactionRepo.On("ListAll", mock.Anything).Return(interactions, nil)

		var rows []*entities.CustomerSegmentRow
		segmentRepo.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				rows = args.Get(1).([]*entities.CustomerSegmentRow)
			}).
			Return(nil)

		svc := NewSegmentationService(customerRepo, transactionRepo, interactionRepo, segmentRepo, testPipelineConfig(), nil)
		report, err := svc.Run(context.Background(), testObservedAt)
		require.NoError(t, err)
		return report, rows
	}

	reportA, rowsA := run()
	reportB, rowsB := run()

	assert.Equal(t, reportA.Inertia, reportB.Inertia)
	assert.Equal(t, reportA.WinningInit, reportB.WinningInit)
	assert.Equal(t, reportA.ExplainedVariance, reportB.ExplainedVariance)

	require.Equal(t, len(rowsA), len(rowsB))
	for i := range rowsA {
		assert.Equal(t, rowsA[i].CustomerID, rowsB[i].CustomerID)
		assert.Equal(t, rowsA[i].Label, rowsB[i].Label)
		assert.Equal(t, rowsA[i].Coord1, rowsB[i].Coord1)
	}
}

func TestSweep_CoversConfiguredRange(t *testing.T) {
	customers, transactions, interactions := twoTierPopulation()

	customerRepo := new(mockCustomerRepo)
	transactionRepo := new(mockTransactionRepo)
	interactionRepo := new(mockInteractionRepo)
	segmentRepo := new(mockSegmentRepo)

	customerRepo.On("ListAll", mock.Anything).Return(customers, nil)
	transactionRepo.On("ListAll", mock.Anything).Return(transactions, nil)
	interactionRepo.On("ListAll", mock.Anything).Return(interactions, nil)

	svc := NewSegmentationService(customerRepo, transactionRepo, interactionRepo, segmentRepo, testPipelineConfig(), nil)

	points, err := svc.Sweep(context.Background(), testObservedAt, false)
	require.NoError(t, err)
	require.Len(t, points, 2)
	for i, p := range points {
		assert.Equal(t, i+2, p.K)
	}
	segmentRepo.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
