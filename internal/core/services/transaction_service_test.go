package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
	"github.com/jizhangapp/pft_backend/internal/core/services"
	"github.com/jizhangapp/pft_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.TransactionWithCategory, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionWithCategory), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, userID string, filter portsrepo.TransactionListFilter, limit, offset int) ([]domain.TransactionWithCategory, int64, error) {
	args := m.Called(ctx, userID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.TransactionWithCategory), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	args := m.Called(ctx, userID, transactionID)
	return args.Error(0)
}

// --- Mock CategoryService ---
type MockCategoryService struct {
	mock.Mock
}

var _ portssvc.CategorySvcFacade = (*MockCategoryService)(nil)

func (m *MockCategoryService) GetCategoryByID(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryService) ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.CategoryWithUsage, error) {
	args := m.Called(ctx, userID, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryWithUsage), args.Error(1)
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryService) ResolveOrCreateCategory(ctx context.Context, userID, name string, categoryType domain.CategoryType) (*domain.Category, error) {
	args := m.Called(ctx, userID, name, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategoryWithUsage(ctx context.Context, userID, categoryID string) (*domain.CategoryWithUsage, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryWithUsage), args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(ctx context.Context, userID, categoryID string, req dto.UpdateCategoryRequest) (*domain.CategoryWithUsage, error) {
	args := m.Called(ctx, userID, categoryID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryWithUsage), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	args := m.Called(ctx, userID, categoryID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type TransactionServiceTestSuite struct {
	suite.Suite
	mockRepo        *MockTransactionRepository
	mockCategorySvc *MockCategoryService
	service         portssvc.TransactionSvcFacade
	userID          string
	today           string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransactionRepository)
	suite.mockCategorySvc = new(MockCategoryService)
	suite.service = services.NewTransactionService(suite.mockRepo, suite.mockCategorySvc)
	suite.userID = uuid.NewString()
	suite.today = time.Now().UTC().Format(dto.TransactionDateFormat)
}

func (suite *TransactionServiceTestSuite) expenseCategory(name string) *domain.Category {
	return &domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     suite.userID,
		Name:       name,
		Type:       domain.CategoryTypeExpense,
		Color:      "#E57373",
	}
}

// --- Test Cases ---

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ExplicitCategoryID() {
	ctx := context.Background()
	category := suite.expenseCategory("餐飲")
	suite.mockCategorySvc.On("GetCategoryByID", ctx, suite.userID, category.CategoryID).
		Return(category, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.UserID == suite.userID &&
			t.CategoryID == category.CategoryID &&
			t.Amount.Equal(decimal.RequireFromString("120.50")) &&
			t.TransactionID != ""
	})).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("120.50"),
		Description:     "午餐",
		TransactionDate: suite.today,
		CategoryID:      &category.CategoryID,
	})

	suite.Require().NoError(err)
	suite.Equal(category.CategoryID, txn.Category.CategoryID)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCategorySvc.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_InfersTypeFromName() {
	ctx := context.Background()
	name := "薪資"
	category := &domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     suite.userID,
		Name:       name,
		Type:       domain.CategoryTypeIncome,
	}
	// Known income keyword: classification supplies the type.
	suite.mockCategorySvc.On("ResolveOrCreateCategory", ctx, suite.userID, name, domain.CategoryTypeIncome).
		Return(category, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("50000"),
		TransactionDate: suite.today,
		CategoryName:    &name,
	})

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryTypeIncome, txn.Category.Type)
	suite.mockCategorySvc.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_UnknownNameDefaultsToExpense() {
	ctx := context.Background()
	name := "小明"
	category := suite.expenseCategory(name)
	suite.mockCategorySvc.On("ResolveOrCreateCategory", ctx, suite.userID, name, domain.CategoryTypeExpense).
		Return(category, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("100"),
		TransactionDate: suite.today,
		CategoryName:    &name,
	})

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryTypeExpense, txn.Category.Type)
	suite.mockCategorySvc.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ExplicitTypeSkipsClassification() {
	ctx := context.Background()
	name := "薪資" // income keyword, but the caller insists on expense
	expenseType := domain.CategoryTypeExpense
	category := suite.expenseCategory(name)
	suite.mockCategorySvc.On("ResolveOrCreateCategory", ctx, suite.userID, name, domain.CategoryTypeExpense).
		Return(category, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	_, err := suite.service.CreateTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("100"),
		TransactionDate: suite.today,
		CategoryName:    &name,
		Type:            &expenseType,
	})

	suite.Require().NoError(err)
	suite.mockCategorySvc.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_MissingCategory() {
	ctx := context.Background()

	_, err := suite.service.CreateTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("100"),
		TransactionDate: suite.today,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_AmountValidation() {
	ctx := context.Background()
	categoryID := uuid.NewString()

	cases := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"too many decimals", "10.999"},
		{"at limit", "10000000"},
		{"above limit", "10000000.01"},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.service.CreateTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
				Amount:          decimal.RequireFromString(tc.amount),
				TransactionDate: suite.today,
				CategoryID:      &categoryID,
			})
			suite.Require().Error(err)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_DateValidation() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	future := time.Now().UTC().AddDate(0, 0, 2).Format(dto.TransactionDateFormat)
	tooOld := time.Now().UTC().AddDate(0, 0, -370).Format(dto.TransactionDateFormat)

	for _, date := range []string{future, tooOld, "2025-13-40"} {
		_, err := suite.service.CreateTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
			Amount:          decimal.RequireFromString("100"),
			TransactionDate: date,
			CategoryID:      &categoryID,
		})
		suite.Require().Error(err, "date %s should be rejected", date)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ForeignCategoryForbidden() {
	ctx := context.Background()
	category := suite.expenseCategory("餐飲")
	suite.mockCategorySvc.On("GetCategoryByID", ctx, suite.userID, category.CategoryID).
		Return(category, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CreateTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("100"),
		TransactionDate: suite.today,
		CategoryID:      &category.CategoryID,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *TransactionServiceTestSuite) TestListTransactions_Pagination() {
	ctx := context.Background()
	category := suite.expenseCategory("餐飲")
	rows := make([]domain.TransactionWithCategory, 20)
	for i := range rows {
		rows[i] = domain.TransactionWithCategory{
			Transaction: domain.Transaction{
				TransactionID:   uuid.NewString(),
				UserID:          suite.userID,
				CategoryID:      category.CategoryID,
				Amount:          decimal.RequireFromString("10.00"),
				TransactionDate: time.Now().UTC(),
			},
			Category: *category,
		}
	}
	suite.mockRepo.On("ListTransactions", ctx, suite.userID, portsrepo.TransactionListFilter{}, 20, 20).
		Return(rows, int64(45), nil).Once()

	resp, err := suite.service.ListTransactions(ctx, suite.userID, dto.ListTransactionsParams{Page: 2, Limit: 20})

	suite.Require().NoError(err)
	suite.Len(resp.Transactions, 20)
	suite.Equal(2, resp.Pagination.Page)
	suite.Equal(int64(45), resp.Pagination.Total)
	suite.True(resp.Pagination.HasMore, "rows 21-40 of 45 leave a further page")
}

func (suite *TransactionServiceTestSuite) TestListTransactions_LastPageHasNoMore() {
	ctx := context.Background()
	suite.mockRepo.On("ListTransactions", ctx, suite.userID, portsrepo.TransactionListFilter{}, 20, 40).
		Return([]domain.TransactionWithCategory{}, int64(45), nil).Once()

	resp, err := suite.service.ListTransactions(ctx, suite.userID, dto.ListTransactionsParams{Page: 3, Limit: 20})

	suite.Require().NoError(err)
	suite.Empty(resp.Transactions)
	suite.False(resp.Pagination.HasMore)
}

func (suite *TransactionServiceTestSuite) TestListTransactions_ClampsPageAndLimit() {
	ctx := context.Background()
	suite.mockRepo.On("ListTransactions", ctx, suite.userID, portsrepo.TransactionListFilter{}, 20, 0).
		Return([]domain.TransactionWithCategory{}, int64(0), nil).Once()

	resp, err := suite.service.ListTransactions(ctx, suite.userID, dto.ListTransactionsParams{Page: 0, Limit: 0})

	suite.Require().NoError(err)
	suite.Equal(1, resp.Pagination.Page)
	suite.Equal(20, resp.Pagination.Limit)
}

func (suite *TransactionServiceTestSuite) TestListTransactions_EndBeforeStart() {
	ctx := context.Background()
	start := "2025-07-15"
	end := "2025-07-01"

	_, err := suite.service.ListTransactions(ctx, suite.userID, dto.ListTransactionsParams{
		Page: 1, Limit: 20, StartDate: &start, EndDate: &end,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListTransactions")
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_AmountOnly() {
	ctx := context.Background()
	category := suite.expenseCategory("餐飲")
	transactionID := uuid.NewString()
	existing := &domain.TransactionWithCategory{
		Transaction: domain.Transaction{
			TransactionID:   transactionID,
			UserID:          suite.userID,
			CategoryID:      category.CategoryID,
			Amount:          decimal.RequireFromString("100.00"),
			Description:     "午餐",
			TransactionDate: time.Now().UTC().AddDate(0, 0, -1),
		},
		Category: *category,
	}
	suite.mockRepo.On("FindTransactionByID", ctx, suite.userID, transactionID).
		Return(existing, nil).Once()
	suite.mockRepo.On("UpdateTransaction", ctx, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Amount.Equal(decimal.RequireFromString("150.00")) &&
			t.Description == "午餐" &&
			t.CategoryID == category.CategoryID
	})).Return(nil).Once()

	newAmount := decimal.RequireFromString("150.00")
	updated, err := suite.service.UpdateTransaction(ctx, suite.userID, transactionID, dto.UpdateTransactionRequest{
		Amount: &newAmount,
	})

	suite.Require().NoError(err)
	suite.True(updated.Amount.Equal(newAmount))
	suite.Equal("午餐", updated.Description, "omitted fields are untouched")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_ChangeCategory() {
	ctx := context.Background()
	oldCategory := suite.expenseCategory("餐飲")
	newCategory := suite.expenseCategory("交通")
	transactionID := uuid.NewString()
	existing := &domain.TransactionWithCategory{
		Transaction: domain.Transaction{
			TransactionID:   transactionID,
			UserID:          suite.userID,
			CategoryID:      oldCategory.CategoryID,
			Amount:          decimal.RequireFromString("30.00"),
			TransactionDate: time.Now().UTC(),
		},
		Category: *oldCategory,
	}
	suite.mockRepo.On("FindTransactionByID", ctx, suite.userID, transactionID).
		Return(existing, nil).Once()
	suite.mockCategorySvc.On("GetCategoryByID", ctx, suite.userID, newCategory.CategoryID).
		Return(newCategory, nil).Once()
	suite.mockRepo.On("UpdateTransaction", ctx, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.CategoryID == newCategory.CategoryID
	})).Return(nil).Once()

	updated, err := suite.service.UpdateTransaction(ctx, suite.userID, transactionID, dto.UpdateTransactionRequest{
		CategoryID: &newCategory.CategoryID,
	})

	suite.Require().NoError(err)
	suite.Equal(newCategory.CategoryID, updated.Category.CategoryID)
	suite.mockCategorySvc.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_NotFound() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	suite.mockRepo.On("FindTransactionByID", ctx, suite.userID, transactionID).
		Return(nil, apperrors.ErrNotFound).Once()

	newAmount := decimal.RequireFromString("150.00")
	_, err := suite.service.UpdateTransaction(ctx, suite.userID, transactionID, dto.UpdateTransactionRequest{
		Amount: &newAmount,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_NotFound() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	suite.mockRepo.On("DeleteTransaction", ctx, suite.userID, transactionID).
		Return(apperrors.ErrNotFound).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, transactionID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
