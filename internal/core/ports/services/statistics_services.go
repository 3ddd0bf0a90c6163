package services

import (
	"context"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
)

// StatisticsSvc computes read-only financial summaries for one user over an
// optional date window. All methods assume a pre-authorized userID.
type StatisticsSvc interface {
	// Summarize returns income/expense totals and the balance.
	Summarize(ctx context.Context, userID string, window domain.StatisticsRange) (*domain.Summary, error)

	// CategoryBreakdown returns per-category aggregates sorted by total descending.
	CategoryBreakdown(ctx context.Context, userID string, window domain.StatisticsRange) ([]domain.CategoryBreakdownRow, error)

	// TimeSeries returns a sparse per-period series split by type, most recent first.
	TimeSeries(ctx context.Context, userID string, window domain.StatisticsRange, groupBy domain.TimeSeriesGroupBy) ([]domain.TimeSeriesEntry, error)

	// GetStatistics bundles all three views, derived from one snapshot read.
	GetStatistics(ctx context.Context, userID string, window domain.StatisticsRange, groupBy domain.TimeSeriesGroupBy) (*domain.Statistics, error)
}
