package dto

import (
	"time"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionDateFormat is the wire format for transaction dates (date only).
const TransactionDateFormat = "2006-01-02"

// CreateTransactionRequest defines the data needed to record a transaction.
// Either CategoryID references an existing category, or CategoryName is given
// and the category's type is taken from Type — or inferred by the
// classification engine when Type is omitted.
type CreateTransactionRequest struct {
	Amount          decimal.Decimal      `json:"amount" binding:"required"`
	Description     string               `json:"description" binding:"max=255"`
	TransactionDate string               `json:"transactionDate" binding:"required,datetime=2006-01-02"`
	CategoryID      *string              `json:"categoryID"`
	CategoryName    *string              `json:"categoryName" binding:"omitempty,max=50"`
	Type            *domain.CategoryType `json:"type" binding:"omitempty,oneof=income expense"`
}

// UpdateTransactionRequest defines the partial field set allowed for updates.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	Description     *string          `json:"description" binding:"omitempty,max=255"`
	TransactionDate *string          `json:"transactionDate" binding:"omitempty,datetime=2006-01-02"`
	CategoryID      *string          `json:"categoryID"`
}

// ListTransactionsParams defines query parameters for listing transactions.
// Page is 1-indexed.
type ListTransactionsParams struct {
	Page       int                  `form:"page,default=1" binding:"omitempty,min=1"`
	Limit      int                  `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	CategoryID *string              `form:"categoryID"`
	Type       *domain.CategoryType `form:"type" binding:"omitempty,oneof=income expense"`
	StartDate  *string              `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate    *string              `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string           `json:"transactionID"`
	Amount          decimal.Decimal  `json:"amount"`
	Description     string           `json:"description"`
	TransactionDate string           `json:"transactionDate"`
	Category        CategoryResponse `json:"category"`
	CreatedAt       time.Time        `json:"createdAt"`
	LastUpdatedAt   time.Time        `json:"lastUpdatedAt"`
}

// PaginationMeta describes one page of a listing. HasMore is computed with
// exact integer arithmetic: page*limit < total.
type PaginationMeta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// ListTransactionsResponse wraps one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationMeta        `json:"pagination"`
}

// ToTransactionResponse converts a joined transaction row to its response DTO.
func ToTransactionResponse(t domain.TransactionWithCategory) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionDate: t.TransactionDate.Format(TransactionDateFormat),
		Category:        ToCategoryResponse(t.Category, 0),
		CreatedAt:       t.CreatedAt,
		LastUpdatedAt:   t.LastUpdatedAt,
	}
}
