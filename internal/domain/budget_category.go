package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryBudget is a legacy category-level budget template
type CategoryBudget struct {
	Category     string          `json:"category"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	IsActive     bool            `json:"isActive"`
}

// SubcategoryBudget is a budget template keyed by (category, sub_category)
type SubcategoryBudget struct {
	Category         string          `json:"category"`
	SubCategory      string          `json:"subCategory"`
	BudgetAmount     decimal.Decimal `json:"budgetAmount"`
	Notes            string          `json:"notes"`
	IsActive         bool            `json:"isActive"`
	BudgetByCategory bool            `json:"budgetByCategory"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// MigrationStats summarizes one category-to-subcategory budget migration run
type MigrationStats struct {
	CategoriesProcessed  int             `json:"categoriesProcessed"`
	SubcategoriesCreated int             `json:"subcategoriesCreated"`
	TotalBudgetMigrated  decimal.Decimal `json:"totalBudgetMigrated"`
}

// BudgetTemplateRepository stores category and subcategory budget templates
type BudgetTemplateRepository interface {
	// ActiveCategoryBudgets returns active category budgets with amount strictly above minAmount
	ActiveCategoryBudgets(ctx context.Context, minAmount decimal.Decimal) ([]CategoryBudget, error)
	// UpsertSubcategoryBudgets writes all rows in a single transaction, overwriting
	// existing rows with the same (category, sub_category)
	UpsertSubcategoryBudgets(ctx context.Context, budgets []SubcategoryBudget) error
	// IsBudgetByCategory reports whether any subcategory budget row of the category is pooled
	IsBudgetByCategory(ctx context.Context, category string) (bool, error)
	GetSubcategoryBudgets(ctx context.Context, category string) ([]SubcategoryBudget, error)
	// SetCategoryBudget creates or replaces a category-level budget
	SetCategoryBudget(ctx context.Context, budget CategoryBudget) error
	// SetBudgetByCategory sets the grouping flag on every subcategory budget row of the category
	SetBudgetByCategory(ctx context.Context, category string, merged bool) error
}
