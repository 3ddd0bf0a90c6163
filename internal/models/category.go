package models

// Category represents a row in the categories table.
// Uniqueness on (user_id, name, type) is enforced by the schema.
type Category struct {
	CategoryID string `db:"category_id"`
	UserID     string `db:"user_id"`
	Name       string `db:"name"`
	Type       string `db:"type"` // 'income' or 'expense'
	Color      string `db:"color"`
	AuditFields
}
