package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
	"github.com/jizhangapp/pft_backend/internal/dto"
)

// categoryService implements the CategorySvcFacade interface
type categoryService struct {
	BaseService
	categoryRepo   portsrepo.CategoryRepositoryFacade
	classification portssvc.ClassificationSvc
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo portsrepo.CategoryRepositoryFacade, classification portssvc.ClassificationSvc) portssvc.CategorySvcFacade {
	return &categoryService{
		categoryRepo:   repo,
		classification: classification,
	}
}

// Ensure categoryService implements the CategorySvcFacade interface
var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

// CreateCategory creates a category for the user. An omitted color falls back
// to the recommended color for the category's name and type.
func (s *categoryService) CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name must not be empty", apperrors.ErrValidation)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid category type %q", apperrors.ErrValidation, req.Type)
	}

	color := req.Color
	if color == "" {
		color = s.classification.RecommendedColor(req.Type, name)
	}

	now := time.Now().UTC()
	category := domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     userID,
		Name:       name,
		Type:       req.Type,
		Color:      color,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("category %q (%s) already exists: %w", name, req.Type, apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to create category",
			slog.String("user_id", userID),
			slog.String("name", name))
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.LogInfo(ctx, "Category created",
		slog.String("user_id", userID),
		slog.String("category_id", category.CategoryID),
		slog.String("type", string(category.Type)))
	return &category, nil
}

// ResolveOrCreateCategory finds the user's category by (name, type) or creates
// it with the recommended color. A concurrent create of the same pair is
// absorbed by re-reading after a duplicate error.
func (s *categoryService) ResolveOrCreateCategory(ctx context.Context, userID, name string, categoryType domain.CategoryType) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	existing, err := s.categoryRepo.FindCategoryByName(ctx, userID, name, categoryType)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}

	created, err := s.CreateCategory(ctx, userID, dto.CreateCategoryRequest{
		Name: name,
		Type: categoryType,
	})
	if err == nil {
		return created, nil
	}
	if errors.Is(err, apperrors.ErrDuplicate) {
		// Lost the race to a concurrent insert of the same (name, type).
		return s.categoryRepo.FindCategoryByName(ctx, userID, name, categoryType)
	}
	return nil, err
}

// GetCategoryByID retrieves one of the user's categories.
func (s *categoryService) GetCategoryByID(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to get category",
			slog.String("user_id", userID),
			slog.String("category_id", categoryID))
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// GetCategoryWithUsage retrieves one of the user's categories together with
// the number of transactions that reference it.
func (s *categoryService) GetCategoryWithUsage(ctx context.Context, userID, categoryID string) (*domain.CategoryWithUsage, error) {
	category, err := s.GetCategoryByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	count, err := s.categoryRepo.CountTransactions(ctx, userID, categoryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count category transactions",
			slog.String("user_id", userID),
			slog.String("category_id", categoryID))
		return nil, fmt.Errorf("failed to count category transactions: %w", err)
	}
	return &domain.CategoryWithUsage{Category: *category, UsageCount: count}, nil
}

// ListCategories retrieves the user's categories with usage counts.
func (s *categoryService) ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.CategoryWithUsage, error) {
	categories, err := s.categoryRepo.ListCategories(ctx, userID, categoryType)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory updates an owned category's name and/or color and returns it
// with its current transaction count. The type is immutable after creation.
func (s *categoryService) UpdateCategory(ctx context.Context, userID, categoryID string, req dto.UpdateCategoryRequest) (*domain.CategoryWithUsage, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil && *req.Type != category.Type {
		return nil, fmt.Errorf("category type is fixed at creation: %w", apperrors.ErrImmutableCategoryType)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category name must not be empty", apperrors.ErrValidation)
		}
		category.Name = name
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	category.LastUpdatedAt = time.Now().UTC()
	category.LastUpdatedBy = userID

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("category %q (%s) already exists: %w", category.Name, category.Type, apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to update category",
			slog.String("user_id", userID),
			slog.String("category_id", categoryID))
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	count, err := s.categoryRepo.CountTransactions(ctx, userID, categoryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count category transactions",
			slog.String("user_id", userID),
			slog.String("category_id", categoryID))
		return nil, fmt.Errorf("failed to count category transactions: %w", err)
	}
	return &domain.CategoryWithUsage{Category: *category, UsageCount: count}, nil
}

// DeleteCategory deletes an owned category. Deletion is rejected while any
// transaction still references the category; the repository performs the
// usage check and the delete in a single statement so a concurrent insert
// cannot slip between them.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	err := s.categoryRepo.DeleteCategory(ctx, userID, categoryID)
	if err == nil {
		s.LogInfo(ctx, "Category deleted",
			slog.String("user_id", userID),
			slog.String("category_id", categoryID))
		return nil
	}

	if errors.Is(err, apperrors.ErrCategoryInUse) {
		count, countErr := s.categoryRepo.CountTransactions(ctx, userID, categoryID)
		if countErr != nil {
			// The count is informational; don't report a bogus zero.
			return fmt.Errorf("cannot delete category with transactions attached: %w", apperrors.ErrCategoryInUse)
		}
		return fmt.Errorf("cannot delete category, %d transactions attached: %w", count, apperrors.ErrCategoryInUse)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	s.LogError(ctx, err, "Failed to delete category",
		slog.String("user_id", userID),
		slog.String("category_id", categoryID))
	return fmt.Errorf("failed to delete category: %w", err)
}
