package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a row in the transactions table.
// Amount is stored as NUMERIC(12,2); transaction_date is a DATE column.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	UserID          string          `db:"user_id"`
	CategoryID      string          `db:"category_id"`
	Amount          decimal.Decimal `db:"amount"`
	Description     string          `db:"description"`
	TransactionDate time.Time       `db:"transaction_date"`
	AuditFields
}
