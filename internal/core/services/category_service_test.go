package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
	"github.com/jizhangapp/pft_backend/internal/core/services"
	"github.com/jizhangapp/pft_backend/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CategoryRepository ---
type MockCategoryRepository struct {
	mock.Mock
}

var _ portsrepo.CategoryRepositoryFacade = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindCategoryByName(ctx context.Context, userID, name string, categoryType domain.CategoryType) (*domain.Category, error) {
	args := m.Called(ctx, userID, name, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.CategoryWithUsage, error) {
	args := m.Called(ctx, userID, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryWithUsage), args.Error(1)
}

func (m *MockCategoryRepository) CountTransactions(ctx context.Context, userID, categoryID string) (int64, error) {
	args := m.Called(ctx, userID, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	args := m.Called(ctx, userID, categoryID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type CategoryServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCategoryRepository
	service  portssvc.CategorySvcFacade
	userID   string
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCategoryRepository)
	suite.service = services.NewCategoryService(suite.mockRepo, services.NewClassificationService())
	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *CategoryServiceTestSuite) TestCreateCategory_Success() {
	ctx := context.Background()
	suite.mockRepo.On("SaveCategory", ctx, mock.MatchedBy(func(c domain.Category) bool {
		return c.UserID == suite.userID &&
			c.Name == "房租" &&
			c.Type == domain.CategoryTypeExpense &&
			c.Color == "#FFC107" &&
			c.CategoryID != "" &&
			c.CreatedBy == suite.userID
	})).Return(nil).Once()

	category, err := suite.service.CreateCategory(ctx, suite.userID, dto.CreateCategoryRequest{
		Name:  "  房租  ",
		Type:  domain.CategoryTypeExpense,
		Color: "#FFC107",
	})

	suite.Require().NoError(err)
	suite.Equal("房租", category.Name, "name is trimmed before persisting")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestCreateCategory_ColorDefaultsFromName() {
	ctx := context.Background()
	var saved domain.Category
	suite.mockRepo.On("SaveCategory", ctx, mock.AnythingOfType("domain.Category")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Category) }).
		Return(nil).Once()

	category, err := suite.service.CreateCategory(ctx, suite.userID, dto.CreateCategoryRequest{
		Name: "薪資",
		Type: domain.CategoryTypeIncome,
	})

	suite.Require().NoError(err)
	// Omitted color falls back to the recommended color for the name.
	suite.Equal("#4A90D9", category.Color)
	suite.Equal("#4A90D9", saved.Color)
}

func (suite *CategoryServiceTestSuite) TestCreateCategory_ColorDefaultWhenNameUnknown() {
	ctx := context.Background()
	suite.mockRepo.On("SaveCategory", ctx, mock.AnythingOfType("domain.Category")).Return(nil).Once()

	category, err := suite.service.CreateCategory(ctx, suite.userID, dto.CreateCategoryRequest{
		Name: "某個冷門分類",
		Type: domain.CategoryTypeExpense,
	})

	suite.Require().NoError(err)
	suite.Equal("#E57373", category.Color)
}

func (suite *CategoryServiceTestSuite) TestCreateCategory_EmptyName() {
	ctx := context.Background()

	_, err := suite.service.CreateCategory(ctx, suite.userID, dto.CreateCategoryRequest{
		Name: "   ",
		Type: domain.CategoryTypeExpense,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCategory")
}

func (suite *CategoryServiceTestSuite) TestCreateCategory_InvalidType() {
	ctx := context.Background()

	_, err := suite.service.CreateCategory(ctx, suite.userID, dto.CreateCategoryRequest{
		Name: "旅遊",
		Type: domain.CategoryType("transfer"),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CategoryServiceTestSuite) TestCreateCategory_Duplicate() {
	ctx := context.Background()
	suite.mockRepo.On("SaveCategory", ctx, mock.AnythingOfType("domain.Category")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateCategory(ctx, suite.userID, dto.CreateCategoryRequest{
		Name: "房租",
		Type: domain.CategoryTypeExpense,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Contains(err.Error(), "already exists")
}

func (suite *CategoryServiceTestSuite) TestResolveOrCreateCategory_Found() {
	ctx := context.Background()
	existing := &domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     suite.userID,
		Name:       "餐飲",
		Type:       domain.CategoryTypeExpense,
	}
	suite.mockRepo.On("FindCategoryByName", ctx, suite.userID, "餐飲", domain.CategoryTypeExpense).
		Return(existing, nil).Once()

	category, err := suite.service.ResolveOrCreateCategory(ctx, suite.userID, "餐飲", domain.CategoryTypeExpense)

	suite.Require().NoError(err)
	suite.Equal(existing.CategoryID, category.CategoryID)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCategory")
}

func (suite *CategoryServiceTestSuite) TestResolveOrCreateCategory_Creates() {
	ctx := context.Background()
	suite.mockRepo.On("FindCategoryByName", ctx, suite.userID, "餐飲", domain.CategoryTypeExpense).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCategory", ctx, mock.MatchedBy(func(c domain.Category) bool {
		return c.Name == "餐飲" && c.Type == domain.CategoryTypeExpense
	})).Return(nil).Once()

	category, err := suite.service.ResolveOrCreateCategory(ctx, suite.userID, "餐飲", domain.CategoryTypeExpense)

	suite.Require().NoError(err)
	suite.Equal("餐飲", category.Name)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestResolveOrCreateCategory_LostRaceRefinds() {
	ctx := context.Background()
	winner := &domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     suite.userID,
		Name:       "餐飲",
		Type:       domain.CategoryTypeExpense,
	}
	suite.mockRepo.On("FindCategoryByName", ctx, suite.userID, "餐飲", domain.CategoryTypeExpense).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCategory", ctx, mock.AnythingOfType("domain.Category")).
		Return(apperrors.ErrDuplicate).Once()
	// Second lookup absorbs the concurrent insert.
	suite.mockRepo.On("FindCategoryByName", ctx, suite.userID, "餐飲", domain.CategoryTypeExpense).
		Return(winner, nil).Once()

	category, err := suite.service.ResolveOrCreateCategory(ctx, suite.userID, "餐飲", domain.CategoryTypeExpense)

	suite.Require().NoError(err)
	suite.Equal(winner.CategoryID, category.CategoryID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestListCategories_TypeFilter() {
	ctx := context.Background()
	expense := domain.CategoryTypeExpense
	rows := []domain.CategoryWithUsage{
		{Category: domain.Category{CategoryID: uuid.NewString(), Name: "餐飲", Type: expense}, UsageCount: 12},
	}
	suite.mockRepo.On("ListCategories", ctx, suite.userID, &expense).Return(rows, nil).Once()

	got, err := suite.service.ListCategories(ctx, suite.userID, &expense)

	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal(int64(12), got[0].UsageCount)
}

func (suite *CategoryServiceTestSuite) TestGetCategoryWithUsage_ReportsCount() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	current := &domain.Category{
		CategoryID: categoryID,
		UserID:     suite.userID,
		Name:       "餐飲",
		Type:       domain.CategoryTypeExpense,
	}
	suite.mockRepo.On("FindCategoryByID", ctx, suite.userID, categoryID).Return(current, nil).Once()
	suite.mockRepo.On("CountTransactions", ctx, suite.userID, categoryID).
		Return(int64(12), nil).Once()

	got, err := suite.service.GetCategoryWithUsage(ctx, suite.userID, categoryID)

	suite.Require().NoError(err)
	suite.Equal(categoryID, got.CategoryID)
	suite.Equal(int64(12), got.UsageCount)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestGetCategoryWithUsage_NotFound() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	suite.mockRepo.On("FindCategoryByID", ctx, suite.userID, categoryID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetCategoryWithUsage(ctx, suite.userID, categoryID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "CountTransactions")
}

func (suite *CategoryServiceTestSuite) TestUpdateCategory_PartialNameOnly() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	current := &domain.Category{
		CategoryID: categoryID,
		UserID:     suite.userID,
		Name:       "餐飲",
		Type:       domain.CategoryTypeExpense,
		Color:      "#FF9800",
	}
	suite.mockRepo.On("FindCategoryByID", ctx, suite.userID, categoryID).Return(current, nil).Once()
	suite.mockRepo.On("UpdateCategory", ctx, mock.MatchedBy(func(c domain.Category) bool {
		return c.Name == "外食" && c.Color == "#FF9800" && c.Type == domain.CategoryTypeExpense
	})).Return(nil).Once()
	suite.mockRepo.On("CountTransactions", ctx, suite.userID, categoryID).
		Return(int64(3), nil).Once()

	newName := "外食"
	updated, err := suite.service.UpdateCategory(ctx, suite.userID, categoryID, dto.UpdateCategoryRequest{Name: &newName})

	suite.Require().NoError(err)
	suite.Equal("外食", updated.Name)
	suite.Equal("#FF9800", updated.Color, "omitted fields are untouched")
	suite.Equal(int64(3), updated.UsageCount)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestUpdateCategory_TypeChangeRejected() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	current := &domain.Category{
		CategoryID: categoryID,
		UserID:     suite.userID,
		Name:       "薪資",
		Type:       domain.CategoryTypeIncome,
	}
	suite.mockRepo.On("FindCategoryByID", ctx, suite.userID, categoryID).Return(current, nil).Once()

	expense := domain.CategoryTypeExpense
	_, err := suite.service.UpdateCategory(ctx, suite.userID, categoryID, dto.UpdateCategoryRequest{Type: &expense})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrImmutableCategoryType)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCategory")
}

func (suite *CategoryServiceTestSuite) TestUpdateCategory_NotFound() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	suite.mockRepo.On("FindCategoryByID", ctx, suite.userID, categoryID).
		Return(nil, apperrors.ErrNotFound).Once()

	newName := "外食"
	_, err := suite.service.UpdateCategory(ctx, suite.userID, categoryID, dto.UpdateCategoryRequest{Name: &newName})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CategoryServiceTestSuite) TestDeleteCategory_Success() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	suite.mockRepo.On("DeleteCategory", ctx, suite.userID, categoryID).Return(nil).Once()

	err := suite.service.DeleteCategory(ctx, suite.userID, categoryID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestDeleteCategory_InUseReportsCount() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	suite.mockRepo.On("DeleteCategory", ctx, suite.userID, categoryID).
		Return(apperrors.ErrCategoryInUse).Once()
	suite.mockRepo.On("CountTransactions", ctx, suite.userID, categoryID).
		Return(int64(7), nil).Once()

	err := suite.service.DeleteCategory(ctx, suite.userID, categoryID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCategoryInUse)
	suite.Contains(err.Error(), "7 transactions attached")
}

func (suite *CategoryServiceTestSuite) TestDeleteCategory_InUseCountUnavailable() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	suite.mockRepo.On("DeleteCategory", ctx, suite.userID, categoryID).
		Return(apperrors.ErrCategoryInUse).Once()
	suite.mockRepo.On("CountTransactions", ctx, suite.userID, categoryID).
		Return(int64(0), errors.New("connection reset")).Once()

	err := suite.service.DeleteCategory(ctx, suite.userID, categoryID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCategoryInUse)
	// A failed count must not surface as "0 transactions attached".
	suite.Contains(err.Error(), "transactions attached")
	suite.NotContains(err.Error(), "0 transactions")
}

func (suite *CategoryServiceTestSuite) TestDeleteCategory_NotFound() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	suite.mockRepo.On("DeleteCategory", ctx, suite.userID, categoryID).
		Return(apperrors.ErrNotFound).Once()

	err := suite.service.DeleteCategory(ctx, suite.userID, categoryID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "CountTransactions")
}

func (suite *CategoryServiceTestSuite) TestDeleteCategory_RepositoryError() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	repoErr := errors.New("connection reset")
	suite.mockRepo.On("DeleteCategory", ctx, suite.userID, categoryID).Return(repoErr).Once()

	err := suite.service.DeleteCategory(ctx, suite.userID, categoryID)

	suite.Require().Error(err)
	suite.ErrorIs(err, repoErr)
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}
