package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyTotal is the sum of abs(amount) for one calendar month
type MonthlyTotal struct {
	YearMonth string          `json:"yearMonth"`
	Total     decimal.Decimal `json:"total"`
}

// SpendGroup is a distinct (category, sub_category) pair with eligible spend
type SpendGroup struct {
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
}

// SubcategorySpend is the lifetime eligible spend of one subcategory
type SubcategorySpend struct {
	SubCategory string          `json:"subCategory"`
	Total       decimal.Decimal `json:"total"`
}

// MonthlySumFilter selects eligible ledger rows for monthly aggregation.
// Since is inclusive and Until is exclusive. Nil bounds are open.
type MonthlySumFilter struct {
	Category      string
	SubCategories []string
	Since         *time.Time
	Until         *time.Time
	Owner         *string
}

// LedgerRepository is the read-only view of the transaction ledger.
// Every method only considers eligible entries (active, spending type).
type LedgerRepository interface {
	MonthlySums(ctx context.Context, filter MonthlySumFilter) ([]MonthlyTotal, error)
	DistinctGroups(ctx context.Context, owner *string) ([]SpendGroup, error)
	SubcategorySpend(ctx context.Context, category string) ([]SubcategorySpend, error)
}

// SumMonthlyTotals adds up a list of monthly totals
func SumMonthlyTotals(totals []MonthlyTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range totals {
		sum = sum.Add(m.Total)
	}
	return sum
}
