package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TypeTotal aggregates one category type over a date window.
type TypeTotal struct {
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// Summary holds income/expense totals and the resulting balance for one user.
// Both Income and Expense are always populated, zero-valued when the window
// holds no records of that type.
type Summary struct {
	Income  TypeTotal       `json:"income"`
	Expense TypeTotal       `json:"expense"`
	Balance decimal.Decimal `json:"balance"` // income.Total - expense.Total
}

// CategoryBreakdownRow is one category's aggregate within a date window.
type CategoryBreakdownRow struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// TimeSeriesGroupBy selects the bucketing granularity of a time series.
type TimeSeriesGroupBy string

const (
	GroupByDay   TimeSeriesGroupBy = "day"
	GroupByMonth TimeSeriesGroupBy = "month"
)

// TimeSeriesEntry is one (period, type) bucket of a sparse time series.
// Date is set for daily grouping; Year/Month for monthly grouping.
type TimeSeriesEntry struct {
	Date  *time.Time      `json:"date,omitempty"`
	Year  int             `json:"year,omitempty"`
	Month time.Month      `json:"month,omitempty"`
	Type  CategoryType    `json:"type"`
	Total decimal.Decimal `json:"total"`
}

// Statistics bundles the three aggregate views computed from one consistent
// snapshot of a user's transactions.
type Statistics struct {
	Summary   Summary                `json:"summary"`
	Breakdown []CategoryBreakdownRow `json:"breakdown"`
	Series    []TimeSeriesEntry      `json:"series"`
}

// StatisticsRange is an optional date window; a nil bound is unbounded on
// that side.
type StatisticsRange struct {
	StartDate *time.Time
	EndDate   *time.Time
}
