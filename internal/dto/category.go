package dto

import (
	"time"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a new category.
type CreateCategoryRequest struct {
	Name  string              `json:"name" binding:"required,max=50"`
	Type  domain.CategoryType `json:"type" binding:"required,oneof=income expense"`
	Color string              `json:"color" binding:"omitempty,hexcolor"` // Optional, defaulted when empty
}

// UpdateCategoryRequest defines the data allowed for updating a category.
// Type is accepted only so a mismatch can be rejected explicitly: it is
// immutable after creation.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateCategoryRequest struct {
	Name  *string              `json:"name" binding:"omitempty,max=50"`
	Color *string              `json:"color" binding:"omitempty,hexcolor"`
	Type  *domain.CategoryType `json:"type" binding:"omitempty,oneof=income expense"`
}

// ListCategoriesParams defines query parameters for listing categories.
type ListCategoriesParams struct {
	Type *domain.CategoryType `form:"type" binding:"omitempty,oneof=income expense"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID    string              `json:"categoryID"`
	Name          string              `json:"name"`
	Type          domain.CategoryType `json:"type"`
	Color         string              `json:"color"`
	UsageCount    int64               `json:"usageCount"`
	CreatedAt     time.Time           `json:"createdAt"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
}

// ListCategoriesResponse wraps the list of categories.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// SuggestTypeRequest carries a category display name for type inference.
type SuggestTypeRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// SuggestTypeResponse is the classification result for a category name.
// Type is null when the name matched neither vocabulary.
type SuggestTypeResponse struct {
	Type            *domain.CategoryType `json:"type"`
	Confidence      float64              `json:"confidence"`
	Reason          string               `json:"reason"`
	MatchedKeywords []string             `json:"matchedKeywords,omitempty"`
	SuggestedColor  string               `json:"suggestedColor,omitempty"`
}

// ToCategoryResponse converts a domain category to its response DTO.
func ToCategoryResponse(c domain.Category, usageCount int64) CategoryResponse {
	return CategoryResponse{
		CategoryID:    c.CategoryID,
		Name:          c.Name,
		Type:          c.Type,
		Color:         c.Color,
		UsageCount:    usageCount,
		CreatedAt:     c.CreatedAt,
		LastUpdatedAt: c.LastUpdatedAt,
	}
}

// ToListCategoriesResponse converts categories with usage counts to the list DTO.
func ToListCategoriesResponse(categories []domain.CategoryWithUsage) ListCategoriesResponse {
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = ToCategoryResponse(c.Category, c.UsageCount)
	}
	return ListCategoriesResponse{Categories: out}
}
