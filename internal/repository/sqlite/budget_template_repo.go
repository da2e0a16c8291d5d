package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/shopspring/decimal"
)

const upsertSubcategoryBudgetQuery = `
INSERT INTO subcategory_budget_templates (category, sub_category, budget_amount, notes, is_active, updated_at)
VALUES (?1, ?2, ?3, ?4, ?5, CURRENT_TIMESTAMP)
ON CONFLICT (category, sub_category) DO UPDATE
SET budget_amount = excluded.budget_amount,
    notes         = excluded.notes,
    is_active     = excluded.is_active,
    updated_at    = CURRENT_TIMESTAMP`

// BudgetTemplateRepository implements domain.BudgetTemplateRepository using SQLite
type BudgetTemplateRepository struct {
	db *sql.DB
}

// NewBudgetTemplateRepository creates a new BudgetTemplateRepository
func NewBudgetTemplateRepository(db *sql.DB) *BudgetTemplateRepository {
	return &BudgetTemplateRepository{db: db}
}

// ActiveCategoryBudgets returns active category budgets above minAmount
func (r *BudgetTemplateRepository) ActiveCategoryBudgets(ctx context.Context, minAmount decimal.Decimal) ([]domain.CategoryBudget, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT category, budget_amount
FROM budget_templates
WHERE is_active = 1
ORDER BY category`)
	if err != nil {
		return nil, wrapQueryErr("query category budgets", err)
	}
	defer rows.Close()

	result := make([]domain.CategoryBudget, 0)
	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, wrapQueryErr("scan category budget", err)
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse budget amount %q: %w", amount, err)
		}
		// TEXT amounts do not compare numerically in SQL
		if !value.GreaterThan(minAmount) {
			continue
		}
		result = append(result, domain.CategoryBudget{Category: category, BudgetAmount: value, IsActive: true})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate category budgets", err)
	}
	return result, nil
}

// UpsertSubcategoryBudgets creates or updates subcategory budgets atomically
func (r *BudgetTemplateRepository) UpsertSubcategoryBudgets(ctx context.Context, budgets []domain.SubcategoryBudget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapQueryErr("begin upsert", err)
	}
	defer tx.Rollback()

	for _, b := range budgets {
		if _, err := tx.ExecContext(ctx, upsertSubcategoryBudgetQuery,
			b.Category,
			b.SubCategory,
			b.BudgetAmount.StringFixed(2),
			b.Notes,
			b.IsActive,
		); err != nil {
			return wrapQueryErr("upsert subcategory budget", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapQueryErr("commit upsert", err)
	}
	return nil
}

// IsBudgetByCategory reports whether any of the category's rows pool its subcategories
func (r *BudgetTemplateRepository) IsBudgetByCategory(ctx context.Context, category string) (bool, error) {
	var merged int
	err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(MAX(budget_by_category), 0)
FROM subcategory_budget_templates
WHERE category = ?1`, category).Scan(&merged)
	if err != nil {
		return false, wrapQueryErr("query grouping flag", err)
	}
	return merged != 0, nil
}

// GetSubcategoryBudgets returns the category's subcategory budgets
func (r *BudgetTemplateRepository) GetSubcategoryBudgets(ctx context.Context, category string) ([]domain.SubcategoryBudget, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT category, sub_category, budget_amount, notes, is_active, budget_by_category, updated_at
FROM subcategory_budget_templates
WHERE category = ?1
ORDER BY sub_category`, category)
	if err != nil {
		return nil, wrapQueryErr("query subcategory budgets", err)
	}
	defer rows.Close()

	result := make([]domain.SubcategoryBudget, 0)
	for rows.Next() {
		var b domain.SubcategoryBudget
		var amount, updatedAt string
		if err := rows.Scan(&b.Category, &b.SubCategory, &amount, &b.Notes, &b.IsActive, &b.BudgetByCategory, &updatedAt); err != nil {
			return nil, wrapQueryErr("scan subcategory budget", err)
		}
		if b.BudgetAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse budget amount %q: %w", amount, err)
		}
		if b.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
		}
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
	_, err := r.db.ExecContext(ctx, `
INSERT INTO budget_templates (category, budget_amount, is_active, updated_at)
VALUES (?1, ?2, ?3, CURRENT_TIMESTAMP)
ON CONFLICT (category) DO UPDATE
SET budget_amount = excluded.budget_amount,
    is_active     = excluded.is_active,
    updated_at    = CURRENT_TIMESTAMP`,
		budget.Category,
		budget.BudgetAmount.StringFixed(2),
		budget.IsActive,
	)
	if err != nil {
		return wrapQueryErr("set category budget", err)
	}
	return nil
}

// SetBudgetByCategory flags every subcategory budget row of the category as pooled or not
func (r *BudgetTemplateRepository) SetBudgetByCategory(ctx context.Context, category string, merged bool) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE subcategory_budget_templates
SET budget_by_category = ?2, updated_at = CURRENT_TIMESTAMP
WHERE category = ?1`, category, merged); err != nil {
		return wrapQueryErr("set grouping flag", err)
	}
	return nil
}
