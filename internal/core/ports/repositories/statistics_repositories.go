package repositories

import (
	"context"
	"time"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
)

// StatisticsRepository exposes the single snapshot read the statistics service
// derives all of its outputs from. Fetching once keeps the summary, breakdown
// and time series consistent with each other under concurrent writes.
type StatisticsRepository interface {
	// ListTransactionDetails returns every transaction of the user inside
	// [startDate, endDate] joined with its category, ordered by
	// transaction_date descending. A nil bound is unbounded on that side.
	ListTransactionDetails(ctx context.Context, userID string, startDate, endDate *time.Time) ([]domain.TransactionWithCategory, error)
}
