package postgres

import (
	"context"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Optional filters are bound as NULL and short-circuited in SQL, so every
// query below is static text.
const (
	monthlySumsQuery = `
SELECT to_char(transaction_date, 'YYYY-MM') AS year_month,
       SUM(ABS(amount)) AS total
FROM transactions
WHERE is_active
  AND type = ANY($1::text[])
  AND category = $2
  AND (cardinality($3::text[]) = 0 OR COALESCE(sub_category, '') = ANY($3::text[]))
  AND ($4::date IS NULL OR transaction_date >= $4::date)
  AND ($5::timestamp IS NULL OR transaction_date < $5::timestamp)
  AND ($6::text IS NULL OR owner = $6::text)
GROUP BY year_month
ORDER BY year_month`

	distinctGroupsQuery = `
SELECT DISTINCT category, COALESCE(sub_category, '') AS sub_category
FROM transactions
WHERE is_active
  AND type = ANY($1::text[])
  AND ($2::text IS NULL OR owner = $2::text)
ORDER BY category, sub_category`

	subcategorySpendQuery = `
SELECT sub_category, SUM(ABS(amount)) AS total
FROM transactions
WHERE is_active
  AND type = ANY($1::text[])
  AND category = $2
  AND sub_category IS NOT NULL
  AND sub_category <> ''
GROUP BY sub_category
ORDER BY sub_category`
)

// LedgerRepository implements domain.LedgerRepository using PostgreSQL
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// MonthlySums returns eligible spend per calendar month for the filter
func (r *LedgerRepository) MonthlySums(ctx context.Context, filter domain.MonthlySumFilter) ([]domain.MonthlyTotal, error) {
	subs := filter.SubCategories
	if subs == nil {
		// nil would bind as NULL and match nothing
		subs = []string{}
	}

	var since, until *time.Time
	if filter.Since != nil {
		s := filter.Since.UTC()
		since = &s
	}
	if filter.Until != nil {
		u := filter.Until.UTC()
		until = &u
	}

	rows, err := r.pool.Query(ctx, monthlySumsQuery,
		domain.SpendingTypeStrings(),
		filter.Category,
		subs,
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
		var yearMonth string
		var total pgtype.Numeric
		if err := rows.Scan(&yearMonth, &total); err != nil {
			return nil, wrapQueryErr("scan monthly sum", err)
		}
		result = append(result, domain.MonthlyTotal{
			YearMonth: yearMonth,
			Total:     pgNumericToDecimal(total),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate monthly sums", err)
	}
	return result, nil
}

// DistinctGroups lists (category, sub_category) pairs with eligible spend
func (r *LedgerRepository) DistinctGroups(ctx context.Context, owner *string) ([]domain.SpendGroup, error) {
	rows, err := r.pool.Query(ctx, distinctGroupsQuery, domain.SpendingTypeStrings(), owner)
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
	rows, err := r.pool.Query(ctx, subcategorySpendQuery, domain.SpendingTypeStrings(), category)
	if err != nil {
		return nil, wrapQueryErr("query subcategory spend", err)
	}
	defer rows.Close()

	result := make([]domain.SubcategorySpend, 0)
	for rows.Next() {
		var sub string
		var total pgtype.Numeric
		if err := rows.Scan(&sub, &total); err != nil {
			return nil, wrapQueryErr("scan subcategory spend", err)
		}
		result = append(result, domain.SubcategorySpend{
			SubCategory: sub,
			Total:       pgNumericToDecimal(total),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate subcategory spend", err)
	}
	return result, nil
}
