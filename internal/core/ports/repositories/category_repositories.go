package repositories

import (
	"context"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
)

// CategoryReader defines read operations for category data
type CategoryReader interface {
	// FindCategoryByID retrieves a category by its ID, scoped to the owning user.
	FindCategoryByID(ctx context.Context, userID, categoryID string) (*domain.Category, error)

	// FindCategoryByName retrieves a category by its (name, type) pair for one user.
	FindCategoryByName(ctx context.Context, userID, name string, categoryType domain.CategoryType) (*domain.Category, error)

	// ListCategories retrieves all of a user's categories with derived usage
	// counts, optionally filtered by type (nil = both types).
	ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.CategoryWithUsage, error)

	// CountTransactions returns the number of transactions referencing the category.
	CountTransactions(ctx context.Context, userID, categoryID string) (int64, error)
}

// CategoryWriter defines write operations for category data
type CategoryWriter interface {
	// SaveCategory persists a new category. Returns apperrors.ErrDuplicate when
	// (user, name, type) already exists.
	SaveCategory(ctx context.Context, category domain.Category) error

	// UpdateCategory updates a category's name and color. Type is immutable.
	UpdateCategory(ctx context.Context, category domain.Category) error

	// DeleteCategory removes a category iff no transactions reference it; the
	// check and delete happen in one statement. Returns apperrors.ErrCategoryInUse
	// when blocked and apperrors.ErrNotFound when the row does not exist.
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
