package repositories

import (
	"context"
	"time"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
)

// TransactionListFilter narrows a transaction listing. Nil fields are ignored.
type TransactionListFilter struct {
	CategoryID *string
	Type       *domain.CategoryType
	StartDate  *time.Time
	EndDate    *time.Time
}

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its category, scoped to
	// the owning user.
	FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.TransactionWithCategory, error)

	// ListTransactions retrieves one page of a user's transactions ordered by
	// transaction_date descending, plus the total row count for the filter.
	// limit/offset paging; offset is derived from a 1-indexed page by the caller.
	ListTransactions(ctx context.Context, userID string, filter TransactionListFilter, limit, offset int) ([]domain.TransactionWithCategory, int64, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction inserts a transaction. The insert verifies category
	// ownership in the same statement; a category not owned by userID yields
	// apperrors.ErrForbidden. Foreign-key enforcement guards against a
	// concurrent category delete.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction updates amount, description, date and category of an
	// owned transaction.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes an owned transaction.
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
