package postgres

import (
	"context"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	activeCategoryBudgetsQuery = `
SELECT category, budget_amount, is_active
FROM budget_templates
WHERE is_active AND budget_amount > $1
ORDER BY category`

	upsertSubcategoryBudgetQuery = `
INSERT INTO subcategory_budget_templates (category, sub_category, budget_amount, notes, is_active, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (category, sub_category) DO UPDATE
SET budget_amount = EXCLUDED.budget_amount,
    notes         = EXCLUDED.notes,
    is_active     = EXCLUDED.is_active,
    updated_at    = NOW()`

	budgetByCategoryQuery = `
SELECT COALESCE(BOOL_OR(budget_by_category), FALSE)
FROM subcategory_budget_templates
WHERE category = $1`

	setCategoryBudgetQuery = `
INSERT INTO budget_templates (category, budget_amount, is_active, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (category) DO UPDATE
SET budget_amount = EXCLUDED.budget_amount,
    is_active     = EXCLUDED.is_active,
    updated_at    = NOW()`

	setBudgetByCategoryQuery = `
UPDATE subcategory_budget_templates
SET budget_by_category = $2, updated_at = NOW()
WHERE category = $1`

	subcategoryBudgetsQuery = `
SELECT category, sub_category, budget_amount, notes, is_active, budget_by_category, updated_at
FROM subcategory_budget_templates
WHERE category = $1
ORDER BY sub_category`
)

// BudgetTemplateRepository implements domain.BudgetTemplateRepository using PostgreSQL
type BudgetTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetTemplateRepository creates a new BudgetTemplateRepository
func NewBudgetTemplateRepository(pool *pgxpool.Pool) *BudgetTemplateRepository {
	return &BudgetTemplateRepository{pool: pool}
}

// ActiveCategoryBudgets returns active category budgets above minAmount
func (r *BudgetTemplateRepository) ActiveCategoryBudgets(ctx context.Context, minAmount decimal.Decimal) ([]domain.CategoryBudget, error) {
	threshold, err := decimalToPgNumeric(minAmount)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, activeCategoryBudgetsQuery, threshold)
	if err != nil {
		return nil, wrapQueryErr("query category budgets", err)
	}
	defer rows.Close()

	result := make([]domain.CategoryBudget, 0)
	for rows.Next() {
		var b domain.CategoryBudget
		var amount pgtype.Numeric
		if err := rows.Scan(&b.Category, &amount, &b.IsActive); err != nil {
			return nil, wrapQueryErr("scan category budget", err)
		}
		b.BudgetAmount = pgNumericToDecimal(amount)
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate category budgets", err)
	}
	return result, nil
}

// UpsertSubcategoryBudgets creates or updates subcategory budgets atomically
func (r *BudgetTemplateRepository) UpsertSubcategoryBudgets(ctx context.Context, budgets []domain.SubcategoryBudget) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapQueryErr("begin upsert", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range budgets {
		amount, err := decimalToPgNumeric(b.BudgetAmount)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, upsertSubcategoryBudgetQuery,
			b.Category,
			b.SubCategory,
			amount,
			b.Notes,
			b.IsActive,
		); err != nil {
			return wrapQueryErr("upsert subcategory budget", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapQueryErr("commit upsert", err)
	}
	return nil
}

// IsBudgetByCategory reports whether any of the category's rows pool its subcategories
func (r *BudgetTemplateRepository) IsBudgetByCategory(ctx context.Context, category string) (bool, error) {
	var merged bool
	if err := r.pool.QueryRow(ctx, budgetByCategoryQuery, category).Scan(&merged); err != nil {
		return false, wrapQueryErr("query grouping flag", err)
	}
	return merged, nil
}

// GetSubcategoryBudgets returns the category's subcategory budgets
func (r *BudgetTemplateRepository) GetSubcategoryBudgets(ctx context.Context, category string) ([]domain.SubcategoryBudget, error) {
	rows, err := r.pool.Query(ctx, subcategoryBudgetsQuery, category)
	if err != nil {
		return nil, wrapQueryErr("query subcategory budgets", err)
	}
	defer rows.Close()

	result := make([]domain.SubcategoryBudget, 0)
	for rows.Next() {
		var b domain.SubcategoryBudget
		var amount pgtype.Numeric
		if err := rows.Scan(&b.Category, &b.SubCategory, &amount, &b.Notes, &b.IsActive, &b.BudgetByCategory, &b.UpdatedAt); err != nil {
			return nil, wrapQueryErr("scan subcategory budget", err)
		}
		b.BudgetAmount = pgNumericToDecimal(amount)
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate subcategory budgets", err)
	}
	return result, nil
}

// SetCategoryBudget creates or replaces a legacy category budget
func (r *BudgetTemplateRepository) SetCategoryBudget(ctx context.Context, budget domain.CategoryBudget) error {
	if budget.BudgetAmount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	amount, err := decimalToPgNumeric(budget.BudgetAmount)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, setCategoryBudgetQuery, budget.Category, amount, budget.IsActive); err != nil {
		return wrapQueryErr("set category budget", err)
	}
	return nil
}

// SetBudgetByCategory flags every subcategory budget row of the category as pooled or not
func (r *BudgetTemplateRepository) SetBudgetByCategory(ctx context.Context, category string, merged bool) error {
	if _, err := r.pool.Exec(ctx, setBudgetByCategoryQuery, category, merged); err != nil {
		return wrapQueryErr("set grouping flag", err)
	}
	return nil
}
