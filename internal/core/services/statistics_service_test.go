package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
	"github.com/jizhangapp/pft_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock StatisticsRepository ---
type MockStatisticsRepository struct {
	mock.Mock
}

var _ portsrepo.StatisticsRepository = (*MockStatisticsRepository)(nil)

func (m *MockStatisticsRepository) ListTransactionDetails(ctx context.Context, userID string, startDate, endDate *time.Time) ([]domain.TransactionWithCategory, error) {
	args := m.Called(ctx, userID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionWithCategory), args.Error(1)
}

// --- Test Suite Setup ---
type StatisticsServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockStatisticsRepository
	service        portssvc.StatisticsSvc
	userID         string
	salaryCategory domain.Category
	foodCategory   domain.Category
	rentCategory   domain.Category
}

func (suite *StatisticsServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockStatisticsRepository)
	suite.service = services.NewStatisticsService(suite.mockRepo)
	suite.userID = uuid.NewString()

	suite.salaryCategory = domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     suite.userID,
		Name:       "薪資",
		Type:       domain.CategoryTypeIncome,
		Color:      "#4A90D9",
	}
	suite.foodCategory = domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     suite.userID,
		Name:       "餐飲",
		Type:       domain.CategoryTypeExpense,
		Color:      "#FF9800",
	}
	suite.rentCategory = domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     suite.userID,
		Name:       "房租",
		Type:       domain.CategoryTypeExpense,
		Color:      "#795548",
	}
}

func (suite *StatisticsServiceTestSuite) txn(category domain.Category, amount string, date time.Time) domain.TransactionWithCategory {
	return domain.TransactionWithCategory{
		Transaction: domain.Transaction{
			TransactionID:   uuid.NewString(),
			UserID:          suite.userID,
			CategoryID:      category.CategoryID,
			Amount:          decimal.RequireFromString(amount),
			TransactionDate: date,
		},
		Category: category,
	}
}

// --- Test Cases ---

func (suite *StatisticsServiceTestSuite) TestSummarize_EmptyWindow() {
	ctx := context.Background()
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return([]domain.TransactionWithCategory{}, nil).Once()

	summary, err := suite.service.Summarize(ctx, suite.userID, domain.StatisticsRange{})

	suite.Require().NoError(err)
	suite.Require().NotNil(summary)
	// Both type keys are present and zero-valued, never absent.
	suite.True(summary.Income.Total.IsZero())
	suite.Zero(summary.Income.Count)
	suite.True(summary.Expense.Total.IsZero())
	suite.Zero(summary.Expense.Count)
	suite.True(summary.Balance.IsZero())

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StatisticsServiceTestSuite) TestSummarize_MixedTypes() {
	ctx := context.Background()
	day := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	txns := []domain.TransactionWithCategory{
		suite.txn(suite.salaryCategory, "50000.00", day),
		suite.txn(suite.foodCategory, "120.50", day),
		suite.txn(suite.foodCategory, "89.50", day.AddDate(0, 0, 1)),
	}
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(txns, nil).Once()

	summary, err := suite.service.Summarize(ctx, suite.userID, domain.StatisticsRange{})

	suite.Require().NoError(err)
	suite.True(summary.Income.Total.Equal(decimal.RequireFromString("50000.00")))
	suite.Equal(int64(1), summary.Income.Count)
	suite.True(summary.Expense.Total.Equal(decimal.RequireFromString("210.00")))
	suite.Equal(int64(2), summary.Expense.Count)
	suite.True(summary.Balance.Equal(decimal.RequireFromString("49790.00")))
}

func (suite *StatisticsServiceTestSuite) TestSummarize_DecimalExactness() {
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// 0.10 added a thousand times must be exactly 100.00, not a float
	// neighborhood of it.
	txns := make([]domain.TransactionWithCategory, 1000)
	for i := range txns {
		txns[i] = suite.txn(suite.foodCategory, "0.10", day)
	}
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(txns, nil).Once()

	summary, err := suite.service.Summarize(ctx, suite.userID, domain.StatisticsRange{})

	suite.Require().NoError(err)
	suite.True(summary.Expense.Total.Equal(decimal.RequireFromString("100.00")),
		"got %s", summary.Expense.Total)
	suite.Equal(int64(1000), summary.Expense.Count)
}

func (suite *StatisticsServiceTestSuite) TestCategoryBreakdown_SortedByTotalDesc() {
	ctx := context.Background()
	day := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	txns := []domain.TransactionWithCategory{
		suite.txn(suite.foodCategory, "100.00", day),
		suite.txn(suite.rentCategory, "15000.00", day),
		suite.txn(suite.foodCategory, "200.00", day),
		suite.txn(suite.salaryCategory, "50000.00", day),
	}
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(txns, nil).Once()

	rows, err := suite.service.CategoryBreakdown(ctx, suite.userID, domain.StatisticsRange{})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 3)
	suite.Equal(suite.salaryCategory.CategoryID, rows[0].Category.CategoryID)
	suite.Equal(suite.rentCategory.CategoryID, rows[1].Category.CategoryID)
	suite.Equal(suite.foodCategory.CategoryID, rows[2].Category.CategoryID)
	suite.True(rows[2].Total.Equal(decimal.RequireFromString("300.00")))
	suite.Equal(int64(2), rows[2].Count)
}

func (suite *StatisticsServiceTestSuite) TestCategoryBreakdown_StableOnEqualTotals() {
	ctx := context.Background()
	day := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	txns := []domain.TransactionWithCategory{
		suite.txn(suite.foodCategory, "100.00", day),
		suite.txn(suite.rentCategory, "100.00", day),
	}
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(txns, nil).Once()

	rows, err := suite.service.CategoryBreakdown(ctx, suite.userID, domain.StatisticsRange{})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	// Equal totals keep first-seen order.
	suite.Equal(suite.foodCategory.CategoryID, rows[0].Category.CategoryID)
	suite.Equal(suite.rentCategory.CategoryID, rows[1].Category.CategoryID)
}

func (suite *StatisticsServiceTestSuite) TestTimeSeries_MonthlySparseMostRecentFirst() {
	ctx := context.Background()
	txns := []domain.TransactionWithCategory{
		suite.txn(suite.salaryCategory, "50000.00", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)),
		suite.txn(suite.foodCategory, "300.00", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)),
		// February has no transactions: no bucket for it.
		suite.txn(suite.foodCategory, "450.00", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(txns, nil).Once()

	entries, err := suite.service.TimeSeries(ctx, suite.userID, domain.StatisticsRange{}, domain.GroupByMonth)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 3)

	suite.Equal(2025, entries[0].Year)
	suite.Equal(time.March, entries[0].Month)
	suite.Equal(domain.CategoryTypeExpense, entries[0].Type)
	suite.True(entries[0].Total.Equal(decimal.RequireFromString("450.00")))

	// Within January, expense sorts before income.
	suite.Equal(time.January, entries[1].Month)
	suite.Equal(domain.CategoryTypeExpense, entries[1].Type)
	suite.Equal(time.January, entries[2].Month)
	suite.Equal(domain.CategoryTypeIncome, entries[2].Type)

	for _, e := range entries {
		suite.Nil(e.Date, "monthly entries carry year/month, not a date")
	}
}

func (suite *StatisticsServiceTestSuite) TestTimeSeries_DailyGrouping() {
	ctx := context.Background()
	txns := []domain.TransactionWithCategory{
		suite.txn(suite.foodCategory, "100.00", time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)),
		suite.txn(suite.foodCategory, "50.00", time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)),
		suite.txn(suite.foodCategory, "25.00", time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)),
	}
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(txns, nil).Once()

	entries, err := suite.service.TimeSeries(ctx, suite.userID, domain.StatisticsRange{}, domain.GroupByDay)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Require().NotNil(entries[0].Date)
	suite.Equal("2025-07-15", entries[0].Date.Format("2006-01-02"))
	suite.True(entries[0].Total.Equal(decimal.RequireFromString("75.00")))
	suite.Equal("2025-07-14", entries[1].Date.Format("2006-01-02"))
}

func (suite *StatisticsServiceTestSuite) TestInvalidRange_EndBeforeStart() {
	ctx := context.Background()
	start := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := suite.service.Summarize(ctx, suite.userID, domain.StatisticsRange{StartDate: &start, EndDate: &end})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListTransactionDetails")
}

func (suite *StatisticsServiceTestSuite) TestInvalidRange_SpanOverTwoYears() {
	ctx := context.Background()
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.service.GetStatistics(ctx, suite.userID, domain.StatisticsRange{StartDate: &start, EndDate: &end}, domain.GroupByMonth)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
}

func (suite *StatisticsServiceTestSuite) TestGetStatistics_SingleSnapshotRead() {
	ctx := context.Background()
	day := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	txns := []domain.TransactionWithCategory{
		suite.txn(suite.salaryCategory, "50000.00", day),
		suite.txn(suite.foodCategory, "210.00", day),
	}
	// The bundle must issue exactly one repository read.
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(txns, nil).Once()

	stats, err := suite.service.GetStatistics(ctx, suite.userID, domain.StatisticsRange{}, domain.GroupByMonth)

	suite.Require().NoError(err)
	suite.True(stats.Summary.Balance.Equal(decimal.RequireFromString("49790.00")))
	suite.Len(stats.Breakdown, 2)
	suite.Len(stats.Series, 2)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StatisticsServiceTestSuite) TestRepositoryErrorIsWrapped() {
	ctx := context.Background()
	repoErr := errors.New("connection reset")
	suite.mockRepo.On("ListTransactionDetails", ctx, suite.userID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(nil, repoErr).Once()

	_, err := suite.service.Summarize(ctx, suite.userID, domain.StatisticsRange{})

	suite.Require().Error(err)
	suite.ErrorIs(err, repoErr)
	suite.Contains(err.Error(), "failed to fetch transactions")
}

func TestStatisticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatisticsServiceTestSuite))
}
