package domain

// TypeSuggestion is the result of inferring a category type from its name.
// A nil Type means the name matched neither vocabulary; that is a soft
// outcome, not an error, and Confidence is 0 in that case.
type TypeSuggestion struct {
	Type            *CategoryType `json:"type"`
	Confidence      float64       `json:"confidence"` // 0, or in [0.6, 0.9]
	Reason          string        `json:"reason"`
	MatchedKeywords []string      `json:"matchedKeywords,omitempty"`
}
