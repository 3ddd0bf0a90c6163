package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portsrepo "github.com/jizhangapp/pft_backend/internal/core/ports/repositories"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
	"github.com/jizhangapp/pft_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// maxStatisticsSpan is the policy limit on a statistics date window. The
// handler validates this first; the service re-checks defensively.
const maxStatisticsSpan = 2 * 366 * 24 * time.Hour

// statisticsService implements the StatisticsSvc interface. Each call fetches
// the filtered transaction set once and derives every output from that single
// in-memory snapshot, so the summary, breakdown and series of one request can
// never disagree with each other under concurrent writes.
type statisticsService struct {
	BaseService
	statisticsRepo portsrepo.StatisticsRepository
}

// NewStatisticsService creates a new statistics service.
func NewStatisticsService(repo portsrepo.StatisticsRepository) portssvc.StatisticsSvc {
	return &statisticsService{
		statisticsRepo: repo,
	}
}

// Ensure statisticsService implements the StatisticsSvc interface
var _ portssvc.StatisticsSvc = (*statisticsService)(nil)

// validateRange rejects windows where the end precedes the start or the span
// exceeds the 2-year policy limit.
func validateRange(window domain.StatisticsRange) error {
	if window.StartDate == nil || window.EndDate == nil {
		return nil
	}
	if window.EndDate.Before(*window.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", apperrors.ErrInvalidRange)
	}
	if window.EndDate.Sub(*window.StartDate) > maxStatisticsSpan {
		return fmt.Errorf("%w: span exceeds 2 years", apperrors.ErrInvalidRange)
	}
	return nil
}

// fetchSnapshot runs the single range query all derivations share.
func (s *statisticsService) fetchSnapshot(ctx context.Context, userID string, window domain.StatisticsRange) ([]domain.TransactionWithCategory, error) {
	if err := validateRange(window); err != nil {
		return nil, err
	}
	txns, err := s.statisticsRepo.ListTransactionDetails(ctx, userID, window.StartDate, window.EndDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch transactions for statistics",
			slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to fetch transactions for statistics: %w", err)
	}
	return txns, nil
}

// Summarize computes income/expense totals and the balance for the window.
// Both type keys are always populated; a type with no transactions reads as
// zero, not absent.
func (s *statisticsService) Summarize(ctx context.Context, userID string, window domain.StatisticsRange) (*domain.Summary, error) {
	txns, err := s.fetchSnapshot(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	summary := summarize(txns)
	return &summary, nil
}

// CategoryBreakdown computes per-category aggregates sorted by total
// descending, stable on equal totals.
func (s *statisticsService) CategoryBreakdown(ctx context.Context, userID string, window domain.StatisticsRange) ([]domain.CategoryBreakdownRow, error) {
	txns, err := s.fetchSnapshot(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	return categoryBreakdown(txns), nil
}

// TimeSeries computes the sparse per-period series split by type, most
// recent period first. Periods with no transactions produce no entry.
func (s *statisticsService) TimeSeries(ctx context.Context, userID string, window domain.StatisticsRange, groupBy domain.TimeSeriesGroupBy) ([]domain.TimeSeriesEntry, error) {
	txns, err := s.fetchSnapshot(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	return timeSeries(txns, groupBy), nil
}

// GetStatistics bundles summary, breakdown and time series. All three are
// derived from one snapshot read.
func (s *statisticsService) GetStatistics(ctx context.Context, userID string, window domain.StatisticsRange, groupBy domain.TimeSeriesGroupBy) (*domain.Statistics, error) {
	txns, err := s.fetchSnapshot(ctx, userID, window)
	if err != nil {
		return nil, err
	}

	stats := &domain.Statistics{
		Summary:   summarize(txns),
		Breakdown: categoryBreakdown(txns),
		Series:    timeSeries(txns, groupBy),
	}

	s.LogInfo(ctx, "Statistics computed",
		slog.String("user_id", userID),
		slog.Int("transaction_count", len(txns)),
		slog.String("group_by", string(groupBy)))
	return stats, nil
}

func summarize(txns []domain.TransactionWithCategory) domain.Summary {
	summary := domain.Summary{
		Income:  domain.TypeTotal{Total: decimal.Zero},
		Expense: domain.TypeTotal{Total: decimal.Zero},
		Balance: decimal.Zero,
	}
	for _, t := range txns {
		switch t.Category.Type {
		case domain.CategoryTypeIncome:
			summary.Income.Total = summary.Income.Total.Add(t.Amount)
			summary.Income.Count++
		case domain.CategoryTypeExpense:
			summary.Expense.Total = summary.Expense.Total.Add(t.Amount)
			summary.Expense.Count++
		}
		if signed, err := accounting.SignedAmount(t.Amount, t.Category.Type); err == nil {
			summary.Balance = summary.Balance.Add(signed)
		}
	}
	return summary
}

func categoryBreakdown(txns []domain.TransactionWithCategory) []domain.CategoryBreakdownRow {
	byCategory := make(map[string]*domain.CategoryBreakdownRow)
	order := make([]string, 0)

	for _, t := range txns {
		row, ok := byCategory[t.CategoryID]
		if !ok {
			row = &domain.CategoryBreakdownRow{
				Category: t.Category,
				Total:    decimal.Zero,
			}
			byCategory[t.CategoryID] = row
			order = append(order, t.CategoryID)
		}
		row.Total = row.Total.Add(t.Amount)
		row.Count++
	}

	rows := make([]domain.CategoryBreakdownRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byCategory[id])
	}

	// Largest categories first; stable so equal totals keep first-seen order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	return rows
}

// seriesKey identifies one (period, type) bucket. For daily grouping the
// period is the calendar date; for monthly it is (year, month).
type seriesKey struct {
	year  int
	month time.Month
	day   int
	typ   domain.CategoryType
}

func timeSeries(txns []domain.TransactionWithCategory, groupBy domain.TimeSeriesGroupBy) []domain.TimeSeriesEntry {
	if groupBy != domain.GroupByDay {
		groupBy = domain.GroupByMonth
	}

	totals := make(map[seriesKey]decimal.Decimal)
	for _, t := range txns {
		key := seriesKey{
			year:  t.TransactionDate.Year(),
			month: t.TransactionDate.Month(),
			typ:   t.Category.Type,
		}
		if groupBy == domain.GroupByDay {
			key.day = t.TransactionDate.Day()
		}
		totals[key] = totals[key].Add(t.Amount)
	}

	keys := make([]seriesKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	// Most recent period first; type breaks ties within a period.
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.year != b.year {
			return a.year > b.year
		}
		if a.month != b.month {
			return a.month > b.month
		}
		if a.day != b.day {
			return a.day > b.day
		}
		return a.typ < b.typ
	})

	entries := make([]domain.TimeSeriesEntry, 0, len(keys))
	for _, k := range keys {
		entry := domain.TimeSeriesEntry{
			Type:  k.typ,
			Total: totals[k],
		}
		if groupBy == domain.GroupByDay {
			date := time.Date(k.year, k.month, k.day, 0, 0, 0, 0, time.UTC)
			entry.Date = &date
		} else {
			entry.Year = k.year
			entry.Month = k.month
		}
		entries = append(entries, entry)
	}
	return entries
}
