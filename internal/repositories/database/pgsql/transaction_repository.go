package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	"github.com/jizhangapp/pft_backend/internal/models"
	"github.com/jizhangapp/pft_backend/internal/utils/mapping"
)

const transactionWithCategoryColumns = `
	t.transaction_id, t.user_id, t.category_id, t.amount, t.description, t.transaction_date,
	t.created_at, t.created_by, t.last_updated_at, t.last_updated_by,
	c.category_id, c.user_id, c.name, c.type, c.color,
	c.created_at, c.created_by, c.last_updated_at, c.last_updated_by`

type PgxTransactionRepository struct {
	db *pgxpool.Pool
}

func newPgxTransactionRepository(db *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{db: db}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransactionWithCategory(rows pgx.Row) (*domain.TransactionWithCategory, error) {
	var mt models.Transaction
	var mc models.Category
	err := rows.Scan(
		&mt.TransactionID,
		&mt.UserID,
		&mt.CategoryID,
		&mt.Amount,
		&mt.Description,
		&mt.TransactionDate,
		&mt.CreatedAt,
		&mt.CreatedBy,
		&mt.LastUpdatedAt,
		&mt.LastUpdatedBy,
		&mc.CategoryID,
		&mc.UserID,
		&mc.Name,
		&mc.Type,
		&mc.Color,
		&mc.CreatedAt,
		&mc.CreatedBy,
		&mc.LastUpdatedAt,
		&mc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &domain.TransactionWithCategory{
		Transaction: mapping.ToDomainTransaction(mt),
		Category:    mapping.ToDomainCategory(mc),
	}, nil
}

// SaveTransaction inserts a transaction. Category ownership is verified inside
// the INSERT itself: the row only materializes when the category belongs to
// the same user, so a foreign category can never be referenced.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)
	query := `
        INSERT INTO transactions (transaction_id, user_id, category_id, amount, description, transaction_date,
            created_at, created_by, last_updated_at, last_updated_by)
        SELECT $1, $2, c.category_id, $4, $5, $6, $7, $8, $9, $10
        FROM categories c
        WHERE c.category_id = $3 AND c.user_id = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		modelTxn.TransactionID,
		modelTxn.UserID,
		modelTxn.CategoryID,
		modelTxn.Amount,
		modelTxn.Description,
		modelTxn.TransactionDate,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("category %s not owned by user: %w", txn.CategoryID, apperrors.ErrForbidden)
	}
	return nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.TransactionWithCategory, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions t
		JOIN categories c ON c.category_id = t.category_id
		WHERE t.transaction_id = $1 AND t.user_id = $2;
	`, transactionWithCategoryColumns)
	result, err := scanTransactionWithCategory(r.db.QueryRow(ctx, query, transactionID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return result, nil
}

func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, userID string, filter portsrepo.TransactionListFilter, limit, offset int) ([]domain.TransactionWithCategory, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	// Filter arguments use the ($n IS NULL OR ...) pattern so one statement
	// covers every filter combination.
	var typeArg *string
	if filter.Type != nil {
		s := string(*filter.Type)
		typeArg = &s
	}
	where := `
        WHERE t.user_id = $1
          AND ($2::text IS NULL OR t.category_id = $2)
          AND ($3::text IS NULL OR c.type = $3)
          AND ($4::date IS NULL OR t.transaction_date >= $4)
          AND ($5::date IS NULL OR t.transaction_date <= $5)`
	args := []any{userID, filter.CategoryID, typeArg, filter.StartDate, filter.EndDate}

	countQuery := `
        SELECT COUNT(*)
        FROM transactions t
        JOIN categories c ON c.category_id = t.category_id` + where + `;`
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	listQuery := fmt.Sprintf(`
        SELECT %s
        FROM transactions t
        JOIN categories c ON c.category_id = t.category_id`+where+`
        ORDER BY t.transaction_date DESC, t.created_at DESC, t.transaction_id DESC
        LIMIT $6 OFFSET $7;`, transactionWithCategoryColumns)
	rows, err := r.db.Query(ctx, listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	result := []domain.TransactionWithCategory{}
	for rows.Next() {
		item, err := scanTransactionWithCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		result = append(result, *item)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}

	return result, total, nil
}

func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)
	query := `
        UPDATE transactions t
        SET category_id = $1, amount = $2, description = $3, transaction_date = $4,
            last_updated_at = $5, last_updated_by = $6
        FROM categories c
        WHERE t.transaction_id = $7 AND t.user_id = $8
          AND c.category_id = $1 AND c.user_id = $8;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		modelTxn.CategoryID,
		modelTxn.Amount,
		modelTxn.Description,
		modelTxn.TransactionDate,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
		modelTxn.TransactionID,
		modelTxn.UserID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("category %s does not exist: %w", txn.CategoryID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to execute update transaction query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found or category not owned: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	query := `DELETE FROM transactions WHERE transaction_id = $1 AND user_id = $2;`
	cmdTag, err := r.db.Exec(ctx, query, transactionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
