package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/shopspring/decimal"
)

// Amounts are TEXT decimals, so rows are summed in Go rather than with SQL SUM.
// Set filters are bound as JSON arrays and expanded with json_each.
const (
	monthlySpendRowsQuery = `
SELECT substr(transaction_date, 1, 7) AS year_month, amount
FROM transactions
WHERE is_active = 1
  AND type IN (SELECT value FROM json_each(?1))
  AND category = ?2
  AND (json_array_length(?3) = 0 OR COALESCE(sub_category, '') IN (SELECT value FROM json_each(?3)))
  AND (?4 IS NULL OR transaction_date >= ?4)
  AND (?5 IS NULL OR transaction_date < ?5)
  AND (?6 IS NULL OR owner = ?6)
ORDER BY year_month`

	distinctGroupsQuery = `
SELECT DISTINCT category, COALESCE(sub_category, '') AS sub_category
FROM transactions
WHERE is_active = 1
  AND type IN (SELECT value FROM json_each(?1))
  AND (?2 IS NULL OR owner = ?2)
ORDER BY category, sub_category`

	subcategorySpendRowsQuery = `
SELECT sub_category, amount
FROM transactions
WHERE is_active = 1
  AND type IN (SELECT value FROM json_each(?1))
  AND category = ?2
  AND sub_category IS NOT NULL
  AND sub_category <> ''
ORDER BY sub_category`
)

// LedgerRepository implements domain.LedgerRepository using SQLite
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func spendingTypesJSON() (string, error) {
	b, err := json.Marshal(domain.SpendingTypeStrings())
	if err != nil {
		return "", fmt.Errorf("encode spending types: %w", err)
	}
	return string(b), nil
}

// MonthlySums returns eligible spend per calendar month for the filter
func (r *LedgerRepository) MonthlySums(ctx context.Context, filter domain.MonthlySumFilter) ([]domain.MonthlyTotal, error) {
	types, err := spendingTypesJSON()
	if err != nil {
		return nil, err
	}

	subs := filter.SubCategories
	if subs == nil {
		subs = []string{}
	}
	subsJSON, err := json.Marshal(subs)
	if err != nil {
		return nil, fmt.Errorf("encode subcategories: %w", err)
	}

	var since, until *string
	if filter.Since != nil {
		s := filter.Since.UTC().Format(dateLayout)
		since = &s
	}
	if filter.Until != nil {
		u := exclusiveDateBound(*filter.Until)
		until = &u
	}

	rows, err := r.db.QueryContext(ctx, monthlySpendRowsQuery,
		types,
		filter.Category,
		string(subsJSON),
		since,
		until,
		filter.Owner,
	)
	if err != nil {
		return nil, wrapQueryErr("query monthly sums", err)
	}
	defer rows.Close()

	result := make([]domain.MonthlyTotal, 0)
	for rows.Next() {
		var yearMonth, amount string
		if err := rows.Scan(&yearMonth, &amount); err != nil {
			return nil, wrapQueryErr("scan monthly sum", err)
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}

		// rows arrive ordered by month, so a new month starts a new bucket
		if n := len(result); n > 0 && result[n-1].YearMonth == yearMonth {
			result[n-1].Total = result[n-1].Total.Add(value.Abs())
			continue
		}
		result = append(result, domain.MonthlyTotal{YearMonth: yearMonth, Total: value.Abs()})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate monthly sums", err)
	}
	return result, nil
}

// DistinctGroups lists (category, sub_category) pairs with eligible spend
func (r *LedgerRepository) DistinctGroups(ctx context.Context, owner *string) ([]domain.SpendGroup, error) {
	types, err := spendingTypesJSON()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, distinctGroupsQuery, types, owner)
	if err != nil {
		return nil, wrapQueryErr("query spend groups", err)
	}
	defer rows.Close()

	result := make([]domain.SpendGroup, 0)
	for rows.Next() {
		var g domain.SpendGroup
		if err := rows.Scan(&g.Category, &g.SubCategory); err != nil {
			return nil, wrapQueryErr("scan spend group", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate spend groups", err)
	}
	return result, nil
}

// SubcategorySpend totals lifetime eligible spend per named subcategory
func (r *LedgerRepository) SubcategorySpend(ctx context.Context, category string) ([]domain.SubcategorySpend, error) {
	types, err := spendingTypesJSON()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, subcategorySpendRowsQuery, types, category)
	if err != nil {
		return nil, wrapQueryErr("query subcategory spend", err)
	}
	defer rows.Close()

	result := make([]domain.SubcategorySpend, 0)
	for rows.Next() {
		var sub, amount string
		if err := rows.Scan(&sub, &amount); err != nil {
			return nil, wrapQueryErr("scan subcategory spend", err)
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}

		if n := len(result); n > 0 && result[n-1].SubCategory == sub {
			result[n-1].Total = result[n-1].Total.Add(value.Abs())
			continue
		}
		result = append(result, domain.SubcategorySpend{SubCategory: sub, Total: value.Abs()})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate subcategory spend", err)
	}
	return result, nil
}
