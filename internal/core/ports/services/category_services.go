package services

import (
	"context"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
	"github.com/jizhangapp/pft_backend/internal/dto"
)

// CategoryReaderSvc defines read operations for category data
type CategoryReaderSvc interface {
	// GetCategoryByID retrieves one of the user's categories.
	GetCategoryByID(ctx context.Context, userID, categoryID string) (*domain.Category, error)

	// GetCategoryWithUsage retrieves one of the user's categories together
	// with the number of transactions that reference it.
	GetCategoryWithUsage(ctx context.Context, userID, categoryID string) (*domain.CategoryWithUsage, error)

	// ListCategories retrieves the user's categories with usage counts,
	// optionally filtered by type.
	ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.CategoryWithUsage, error)
}

// CategoryWriterSvc defines write operations for category data
type CategoryWriterSvc interface {
	// CreateCategory creates a category for the user.
	CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error)

	// ResolveOrCreateCategory finds the user's category by (name, type) or
	// creates it with the recommended color. Used by the auto-classification
	// transaction path.
	ResolveOrCreateCategory(ctx context.Context, userID, name string, categoryType domain.CategoryType) (*domain.Category, error)

	// UpdateCategory updates an owned category's name and/or color and
	// returns it with its current transaction count.
	UpdateCategory(ctx context.Context, userID, categoryID string, req dto.UpdateCategoryRequest) (*domain.CategoryWithUsage, error)

	// DeleteCategory deletes an owned category; blocked with
	// apperrors.ErrCategoryInUse while transactions reference it.
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

// CategorySvcFacade combines all category-related service interfaces
type CategorySvcFacade interface {
	CategoryReaderSvc
	CategoryWriterSvc
}
