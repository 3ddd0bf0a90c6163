package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
	"github.com/jizhangapp/pft_backend/internal/dto"
	"github.com/jizhangapp/pft_backend/internal/utils/accounting"
	"github.com/jizhangapp/pft_backend/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// maxTransactionAge is how far in the past a transaction date may lie.
const maxTransactionAge = 366 * 24 * time.Hour

// transactionService implements the TransactionSvcFacade interface
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	categoryService portssvc.CategorySvcFacade
	classification  portssvc.ClassificationSvc
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithClassification sets the classification engine used when a transaction
// arrives with a category name but no explicit type.
func WithClassification(classification portssvc.ClassificationSvc) TransactionServiceOption {
	return func(s *transactionService) {
		s.classification = classification
	}
}

// NewTransactionService creates a new transaction service with the provided options
func NewTransactionService(repo portsrepo.TransactionRepositoryFacade, categoryService portssvc.CategorySvcFacade, options ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		transactionRepo: repo,
		categoryService: categoryService,
		classification:  NewClassificationService(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure transactionService implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validateAmount enforces the amount bounds: positive, below ten million,
// at most two decimal places.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if amount.GreaterThanOrEqual(domain.MaxTransactionAmount) {
		return fmt.Errorf("%w: amount must be below %s", apperrors.ErrValidation, domain.MaxTransactionAmount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount precision is limited to 2 decimal places", apperrors.ErrValidation)
	}
	return nil
}

// validateTransactionDate enforces the date policy: not in the future, not
// more than a year in the past.
func validateTransactionDate(date time.Time) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return fmt.Errorf("%w: transaction date must not be in the future", apperrors.ErrValidation)
	}
	if today.Sub(date) > maxTransactionAge {
		return fmt.Errorf("%w: transaction date must not be more than 1 year in the past", apperrors.ErrValidation)
	}
	return nil
}

// resolveCategory picks the category for a new transaction. An explicit
// categoryID is verified to belong to the user. A category name without a
// type goes through the classification engine; an unclassifiable name
// defaults to expense, which is the product's fallback policy.
func (s *transactionService) resolveCategory(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Category, error) {
	if req.CategoryID != nil {
		return s.categoryService.GetCategoryByID(ctx, userID, *req.CategoryID)
	}
	if req.CategoryName == nil {
		return nil, fmt.Errorf("%w: either categoryID or categoryName is required", apperrors.ErrValidation)
	}

	categoryType := req.Type
	if categoryType == nil {
		suggestion := s.classification.SuggestType(*req.CategoryName)
		if suggestion.Type != nil {
			categoryType = suggestion.Type
			s.LogDebug(ctx, "Category type inferred",
				slog.String("name", *req.CategoryName),
				slog.String("type", string(*suggestion.Type)),
				slog.Float64("confidence", suggestion.Confidence))
		} else {
			fallback := domain.CategoryTypeExpense
			categoryType = &fallback
			s.LogDebug(ctx, "Category type unknown, defaulting to expense",
				slog.String("name", *req.CategoryName))
		}
	}

	return s.categoryService.ResolveOrCreateCategory(ctx, userID, *req.CategoryName, *categoryType)
}

// CreateTransaction records a transaction for the user.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.TransactionWithCategory, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	date, err := time.ParseInLocation(dto.TransactionDateFormat, req.TransactionDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid transaction date %q", apperrors.ErrValidation, req.TransactionDate)
	}
	if err := validateTransactionDate(date); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		UserID:          userID,
		CategoryID:      category.CategoryID,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.transactionRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save transaction",
			slog.String("user_id", userID),
			slog.String("category_id", category.CategoryID))
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("user_id", userID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("category_id", category.CategoryID),
		slog.String("amount", accounting.FormatAmount(txn.Amount)))
	return &domain.TransactionWithCategory{Transaction: txn, Category: *category}, nil
}

// GetTransactionByID retrieves one of the user's transactions.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*domain.TransactionWithCategory, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to get transaction",
			slog.String("user_id", userID),
			slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions retrieves one page of the user's transactions, newest
// first. Pages are 1-indexed; hasMore uses exact integer arithmetic.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}

	filter := portsrepo.TransactionListFilter{
		CategoryID: params.CategoryID,
		Type:       params.Type,
	}
	if params.StartDate != nil {
		start, err := time.ParseInLocation(dto.TransactionDateFormat, *params.StartDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start date %q", apperrors.ErrValidation, *params.StartDate)
		}
		filter.StartDate = &start
	}
	if params.EndDate != nil {
		end, err := time.ParseInLocation(dto.TransactionDateFormat, *params.EndDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid end date %q", apperrors.ErrValidation, *params.EndDate)
		}
		filter.EndDate = &end
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrInvalidRange)
	}

	offset := pagination.Offset(params.Page, params.Limit)
	txns, total, err := s.transactionRepo.ListTransactions(ctx, userID, filter, params.Limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	resp := &dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, len(txns)),
		Pagination: dto.PaginationMeta{
			Page:    params.Page,
			Limit:   params.Limit,
			Total:   total,
			HasMore: pagination.HasMore(params.Page, params.Limit, total),
		},
	}
	for i, t := range txns {
		resp.Transactions[i] = dto.ToTransactionResponse(t)
	}
	return resp, nil
}

// UpdateTransaction applies a partial update to an owned transaction.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.TransactionWithCategory, error) {
	existing, err := s.transactionRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	txn := existing.Transaction
	category := existing.Category

	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return nil, err
		}
		txn.Amount = *req.Amount
	}
	if req.Description != nil {
		txn.Description = *req.Description
	}
	if req.TransactionDate != nil {
		date, err := time.ParseInLocation(dto.TransactionDateFormat, *req.TransactionDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid transaction date %q", apperrors.ErrValidation, *req.TransactionDate)
		}
		if err := validateTransactionDate(date); err != nil {
			return nil, err
		}
		txn.TransactionDate = date
	}
	if req.CategoryID != nil && *req.CategoryID != txn.CategoryID {
		newCategory, err := s.categoryService.GetCategoryByID(ctx, userID, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		txn.CategoryID = newCategory.CategoryID
		category = *newCategory
	}

	txn.LastUpdatedAt = time.Now().UTC()
	txn.LastUpdatedBy = userID

	if err := s.transactionRepo.UpdateTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to update transaction",
			slog.String("user_id", userID),
			slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return &domain.TransactionWithCategory{Transaction: txn, Category: category}, nil
}

// DeleteTransaction deletes an owned transaction. A transaction deletion is
// always permitted when owned; nothing references transactions.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if err := s.transactionRepo.DeleteTransaction(ctx, userID, transactionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.LogError(ctx, err, "Failed to delete transaction",
			slog.String("user_id", userID),
			slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	s.LogInfo(ctx, "Transaction deleted",
		slog.String("user_id", userID),
		slog.String("transaction_id", transactionID))
	return nil
}
