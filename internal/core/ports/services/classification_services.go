package services

import (
	"github.com/jizhangapp/pft_backend/internal/core/domain"
)

// ClassificationSvc infers a category's type from its display name. All
// methods are pure text functions with no persistence side effects; they never
// return an error, a name that matches nothing simply yields no type.
type ClassificationSvc interface {
	// Classify returns the inferred type, or nil when the name matches neither
	// vocabulary. Expense keywords win over income keywords on conflict.
	Classify(name string) *domain.CategoryType

	// SuggestType returns the inferred type with a confidence score, the
	// matched keywords and a human-readable reason.
	SuggestType(name string) domain.TypeSuggestion

	// RecommendedColor returns a deterministic display color for a category
	// name of the given type.
	RecommendedColor(categoryType domain.CategoryType, name string) string
}
