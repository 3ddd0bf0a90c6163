package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single dated income or expense record.
// Amount is always positive; the sign of its effect on the balance comes from
// the referenced category's type.
type Transaction struct {
	TransactionID   string          `json:"transactionID"` // Primary Key (e.g., UUID)
	UserID          string          `json:"userID"`        // FK -> users.user_id (NON-NULL)
	CategoryID      string          `json:"categoryID"`    // FK -> categories.category_id (NON-NULL)
	Amount          decimal.Decimal `json:"amount"`        // > 0, < 10,000,000, 2-decimal precision
	Description     string          `json:"description"`   // Optional free text
	TransactionDate time.Time       `json:"transactionDate"`
	AuditFields
}

// TransactionWithCategory joins a transaction with its owning category, as
// fetched in a single read for statistics and list responses.
type TransactionWithCategory struct {
	Transaction
	Category Category `json:"category"`
}

// MaxTransactionAmount is the exclusive upper bound on a transaction amount.
var MaxTransactionAmount = decimal.NewFromInt(10_000_000)
