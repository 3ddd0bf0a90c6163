package services

import (
	"context"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
	"github.com/jizhangapp/pft_backend/internal/dto"
)

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves one of the user's transactions with its category.
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*domain.TransactionWithCategory, error)

	// ListTransactions retrieves one page of the user's transactions.
	ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for transaction data
type TransactionWriterSvc interface {
	// CreateTransaction records a transaction. When the request carries a
	// category name without an explicit type, the classification engine infers
	// it (unknown falls back to expense) and the category is resolved or
	// created on the fly.
	CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.TransactionWithCategory, error)

	// UpdateTransaction applies a partial update to an owned transaction.
	UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.TransactionWithCategory, error)

	// DeleteTransaction deletes an owned transaction.
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
