package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
)

type PgxStatisticsRepository struct {
	db *pgxpool.Pool
}

func newPgxStatisticsRepository(db *pgxpool.Pool) portsrepo.StatisticsRepository {
	return &PgxStatisticsRepository{db: db}
}

// Ensure PgxStatisticsRepository implements portsrepo.StatisticsRepository
var _ portsrepo.StatisticsRepository = (*PgxStatisticsRepository)(nil)

// ListTransactionDetails fetches the full set of a user's transactions inside
// the date range in one query. The statistics service derives its summary,
// breakdown and time series from this single result set.
func (r *PgxStatisticsRepository) ListTransactionDetails(ctx context.Context, userID string, startDate, endDate *time.Time) ([]domain.TransactionWithCategory, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM transactions t
        JOIN categories c ON c.category_id = t.category_id
        WHERE t.user_id = $1
          AND ($2::date IS NULL OR t.transaction_date >= $2)
          AND ($3::date IS NULL OR t.transaction_date <= $3)
        ORDER BY t.transaction_date DESC, t.created_at DESC, t.transaction_id DESC;
    `, transactionWithCategoryColumns)
	rows, err := r.db.Query(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transaction details", err)
	}
	defer rows.Close()

	result := []domain.TransactionWithCategory{}
	for rows.Next() {
		item, err := scanTransactionWithCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction detail row: %w", err)
		}
		result = append(result, *item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction detail rows: %w", rows.Err())
	}

	return result, nil
}
