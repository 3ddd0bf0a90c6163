package domain

// CategoryType defines whether a category groups income or expense records.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is one of the two supported category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category represents a user-defined transaction label within the core domain.
// Name is unique per (owner, type); Type is immutable after creation.
type Category struct {
	CategoryID string       `json:"categoryID"` // Primary Key (e.g., UUID)
	UserID     string       `json:"userID"`     // FK -> users.user_id (NON-NULL)
	Name       string       `json:"name"`
	Type       CategoryType `json:"type"`
	Color      string       `json:"color"` // Display hex color, e.g. "#4A90D9"
	AuditFields
}

// CategoryWithUsage pairs a category with the number of transactions that
// reference it. UsageCount is derived at read time, never stored.
type CategoryWithUsage struct {
	Category
	UsageCount int64 `json:"usageCount"`
}
