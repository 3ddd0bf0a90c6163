package accounting

import (
	"fmt"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the correct sign to a transaction amount based on its
// category type: income adds to the balance, expense subtracts from it.
// Used wherever balances are folded so the sign convention lives in one place.
func SignedAmount(amount decimal.Decimal, categoryType domain.CategoryType) (decimal.Decimal, error) {
	switch categoryType {
	case domain.CategoryTypeIncome:
		return amount, nil
	case domain.CategoryTypeExpense:
		return amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown category type: %s", categoryType)
	}
}

// FormatAmount formats a monetary amount with the fixed 2-decimal precision
// all transaction amounts are stored with.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
