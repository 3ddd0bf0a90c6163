package dto

import (
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GetStatisticsParams defines query parameters for the statistics endpoint.
type GetStatisticsParams struct {
	StartDate *string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
	GroupBy   string  `form:"groupBy,default=month" binding:"omitempty,oneof=day month"`
}

// TypeTotalResponse is one category type's aggregate.
type TypeTotalResponse struct {
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// SummaryResponse holds income/expense totals and the balance.
type SummaryResponse struct {
	Income  TypeTotalResponse `json:"income"`
	Expense TypeTotalResponse `json:"expense"`
	Balance decimal.Decimal   `json:"balance"`
}

// BreakdownRowResponse is one category's aggregate within the window.
type BreakdownRowResponse struct {
	Category CategoryResponse `json:"category"`
	Total    decimal.Decimal  `json:"total"`
	Count    int64            `json:"count"`
}

// TimeSeriesEntryResponse is one (period, type) bucket. Date is set for daily
// grouping, Year/Month for monthly grouping.
type TimeSeriesEntryResponse struct {
	Date  string              `json:"date,omitempty"`
	Year  int                 `json:"year,omitempty"`
	Month int                 `json:"month,omitempty"`
	Type  domain.CategoryType `json:"type"`
	Total decimal.Decimal     `json:"total"`
}

// StatisticsResponse bundles the summary, breakdown and time series.
type StatisticsResponse struct {
	Summary   SummaryResponse           `json:"summary"`
	Breakdown []BreakdownRowResponse    `json:"breakdown"`
	Series    []TimeSeriesEntryResponse `json:"series"`
}

// ToStatisticsResponse converts the domain statistics bundle to its DTO.
func ToStatisticsResponse(s *domain.Statistics) StatisticsResponse {
	resp := StatisticsResponse{
		Summary: SummaryResponse{
			Income:  TypeTotalResponse{Total: s.Summary.Income.Total, Count: s.Summary.Income.Count},
			Expense: TypeTotalResponse{Total: s.Summary.Expense.Total, Count: s.Summary.Expense.Count},
			Balance: s.Summary.Balance,
		},
		Breakdown: make([]BreakdownRowResponse, len(s.Breakdown)),
		Series:    make([]TimeSeriesEntryResponse, len(s.Series)),
	}
	for i, row := range s.Breakdown {
		resp.Breakdown[i] = BreakdownRowResponse{
			Category: ToCategoryResponse(row.Category, 0),
			Total:    row.Total,
			Count:    row.Count,
		}
	}
	for i, e := range s.Series {
		entry := TimeSeriesEntryResponse{
			Type:  e.Type,
			Total: e.Total,
		}
		if e.Date != nil {
			entry.Date = e.Date.Format(TransactionDateFormat)
		} else {
			entry.Year = e.Year
			entry.Month = int(e.Month)
		}
		resp.Series[i] = entry
	}
	return resp
}
